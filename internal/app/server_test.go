package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Vivid/internal/api/middlewares"
	"github.com/markdave123-py/Vivid/internal/config"
	db "github.com/markdave123-py/Vivid/internal/core/database"
	"github.com/markdave123-py/Vivid/internal/core/llm/llmtest"
	objectclient "github.com/markdave123-py/Vivid/internal/core/object-client"
	"github.com/markdave123-py/Vivid/internal/core/profiles"
	"github.com/markdave123-py/Vivid/internal/services"
)

type apiHarness struct {
	srv    *httptest.Server
	fake   *llmtest.Fake
	client *http.Client
	token  string
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	objects, err := objectclient.NewLocalClient(t.TempDir())
	require.NoError(t, err)
	kv := db.NewMemoryKV()
	store := profiles.NewStore(kv, logger)
	require.NoError(t, store.Load(ctx))

	fake := llmtest.New()
	deps := &Deps{
		Config:      &config.Config{BucketName: "videos", GenTimeout: time.Minute},
		Logger:      logger,
		KV:          kv,
		Objects:     objects,
		Provider:    fake,
		Profiles:    store,
		Preferences: services.NewPreferenceService(kv, logger),
	}
	tokens, err := appMiddleware.NewSessionTokens("test-secret", time.Hour, false, logger)
	require.NoError(t, err)

	ws := services.NewWorkspaces(deps.NewDescribeService, logger)
	router := NewRouter(RouterDeps{
		Sessions:       handlers.NewSessionHandler(ws, logger),
		Profiles:       handlers.NewProfileHandler(store, logger),
		Preferences:    handlers.NewPreferencesHandler(deps.Preferences, logger),
		Tokens:         tokens,
		AllowedOrigins: []string{"http://localhost:5173"},
		Timeout:        time.Minute,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &apiHarness{srv: srv, fake: fake, client: srv.Client()}
}

func (h *apiHarness) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if h.token != "" {
		req.Header.Set(appMiddleware.HeaderName, h.token)
	}
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if tok := resp.Header.Get(appMiddleware.HeaderName); tok != "" {
		h.token = tok
	}
	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (h *apiHarness) doJSON(t *testing.T, method, path string, v any) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return h.do(t, method, path, bytes.NewReader(b), "application/json")
}

func (h *apiHarness) upload(t *testing.T, filename, contentType string, data []byte) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return h.do(t, http.MethodPost, "/api/session/video", &buf, mw.FormDataContentType())
}

func TestHealth(t *testing.T) {
	h := newAPIHarness(t)
	resp, body := h.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestSessionFlow(t *testing.T) {
	h := newAPIHarness(t)

	resp, body := h.do(t, http.MethodGet, "/api/session", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "idle", body["status"])
	require.NotEmpty(t, h.token, "first contact mints a context token")

	resp, body = h.upload(t, "clip.mp4", "video/mp4", []byte("not really a video"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "file-selected", body["status"])

	resp, _ = h.doJSON(t, http.MethodPut, "/api/session/detail", map[string]string{"level": "brief"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = h.doJSON(t, http.MethodPost, "/api/session/focus", map[string]string{"label": "product review"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "brief", settings["detail_level"])
	assert.Equal(t, []any{"product review"}, settings["focus"])

	h.fake.Script(llmtest.Reply{Text: "A hand unboxes a phone."})
	resp, body = h.do(t, http.MethodPost, "/api/session/generate", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "A hand unboxes a phone.", body["latest_description"])
	assert.Len(t, body["transcript"], 2)
	assert.Contains(t, h.fake.Calls()[0].Text, "product review")

	h.fake.Script(llmtest.Reply{Err: errors.New("boom")})
	resp, body = h.doJSON(t, http.MethodPost, "/api/session/refine", map[string]string{"message": "shorter"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["notice"])
	assert.Equal(t, "success", body["status"])
	assert.Len(t, body["transcript"], 2)

	h.fake.Script(llmtest.Reply{Text: "A phone is unboxed."})
	resp, body = h.doJSON(t, http.MethodPost, "/api/session/refine", map[string]string{"message": "shorter"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["notice"])
	assert.Len(t, body["transcript"], 4)
	assert.Equal(t, "A phone is unboxed.", body["latest_description"])

	resp, body = h.doJSON(t, http.MethodPost, "/api/session/refine", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	resp, body = h.do(t, http.MethodPost, "/api/session/generate", nil, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = h.do(t, http.MethodPost, "/api/session/reset", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "idle", body["status"])
	assert.Empty(t, body["transcript"])
	assert.Equal(t, "average", body["settings"].(map[string]any)["detail_level"])
}

func TestSessionUploadGuards(t *testing.T) {
	h := newAPIHarness(t)

	resp, body := h.upload(t, "cat.png", "image/png", []byte("png"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["last_error"], "Invalid file type")

	resp, body = h.upload(t, "clip.webm", "application/octet-stream", []byte("webm"))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "type is guessed from the extension")
	assert.Equal(t, "video/webm", body["video"].(map[string]any)["mime_type"])
}

func TestGenerationFailureIsBadGateway(t *testing.T) {
	h := newAPIHarness(t)
	h.upload(t, "clip.mp4", "video/mp4", []byte("x"))

	h.fake.Script(llmtest.Reply{Err: errors.New("503")})
	resp, body := h.do(t, http.MethodPost, "/api/session/generate", nil, "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["last_error"], "Failed to generate description")
}

func TestContextsAreIsolated(t *testing.T) {
	a := newAPIHarness(t)
	a.upload(t, "clip.mp4", "video/mp4", []byte("x"))

	b := &apiHarness{srv: a.srv, fake: a.fake, client: a.client}
	_, body := b.do(t, http.MethodGet, "/api/session", nil, "")
	assert.Equal(t, "idle", body["status"])
	assert.NotEqual(t, a.token, b.token)
}

func TestFocusRoutes(t *testing.T) {
	h := newAPIHarness(t)

	_, body := h.do(t, http.MethodGet, "/api/focus/suggestions", nil, "")
	assert.Contains(t, body["suggestions"], "dance")

	h.doJSON(t, http.MethodPost, "/api/session/focus", map[string]string{"label": "product review"})
	resp, body := h.do(t, http.MethodDelete, "/api/session/focus/product%20review", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["settings"].(map[string]any)["focus"])

	resp, _ = h.do(t, http.MethodDelete, "/api/session/focus/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = h.doJSON(t, http.MethodPost, "/api/session/focus", map[string]string{"label": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileRoutes(t *testing.T) {
	h := newAPIHarness(t)

	resp, body := h.doJSON(t, http.MethodPost, "/api/profiles", map[string]string{"name": "Ana"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = h.doJSON(t, http.MethodPost, "/api/profiles", map[string]string{
		"id": "ignored", "name": " Ana ", "pronouns": "she/her", "description": "Red jacket",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)
	assert.NotEqual(t, "ignored", id)
	assert.Equal(t, "Ana", body["name"])

	resp, body = h.doJSON(t, http.MethodPut, "/api/profiles/"+id, map[string]string{"name": "Ana", "description": "Blue jacket"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Blue jacket", body["description"])

	resp, _ = h.doJSON(t, http.MethodPut, "/api/profiles/nope", map[string]string{"name": "X", "description": "Y"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = h.doJSON(t, http.MethodPut, "/api/session/profiles/"+id, map[string]bool{"selected": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{id}, body["settings"].(map[string]any)["selected_profiles"])

	resp, _ = h.doJSON(t, http.MethodPut, "/api/session/profiles/ghost", map[string]bool{"selected": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = h.do(t, http.MethodGet, "/api/profiles", nil, "")
	assert.Len(t, body["profiles"], 1)

	resp, _ = h.do(t, http.MethodDelete, "/api/profiles/"+id, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = h.do(t, http.MethodDelete, "/api/profiles/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestThemeRoutes(t *testing.T) {
	h := newAPIHarness(t)

	_, body := h.do(t, http.MethodGet, "/api/preferences/theme", nil, "")
	assert.Equal(t, "dark", body["theme"])

	resp, body := h.doJSON(t, http.MethodPut, "/api/preferences/theme", map[string]string{"theme": "Light"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "light", body["theme"])

	resp, _ = h.doJSON(t, http.MethodPut, "/api/preferences/theme", map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = h.do(t, http.MethodGet, "/api/preferences/theme", nil, "")
	assert.Equal(t, "light", body["theme"])
}

func TestBusySessionConflicts(t *testing.T) {
	h := newAPIHarness(t)
	h.upload(t, "clip.mp4", "video/mp4", []byte("x"))
	h.fake.Gate = make(chan struct{})

	done := make(chan int, 1)
	go func() {
		req, _ := http.NewRequest(http.MethodPost, h.srv.URL+"/api/session/generate", nil)
		req.Header.Set(appMiddleware.HeaderName, h.token)
		resp, err := h.client.Do(req)
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	require.Eventually(t, func() bool {
		_, body := h.do(t, http.MethodGet, "/api/session", nil, "")
		return body["status"] == "processing"
	}, 2*time.Second, 5*time.Millisecond)

	resp, body := h.upload(t, "other.mp4", "video/mp4", []byte("y"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.True(t, strings.Contains(body["error"].(string), "in flight"))

	close(h.fake.Gate)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestApp_RunEvictionReturnsOnCancel(t *testing.T) {
	logger := zap.NewNop()
	deps := &Deps{Config: &config.Config{ContextTTL: time.Hour}, Logger: logger}
	application := &App{Deps: deps, Workspaces: services.NewWorkspaces(deps.NewDescribeService, logger)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		application.RunEviction(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunEviction did not return after cancel")
	}
}
