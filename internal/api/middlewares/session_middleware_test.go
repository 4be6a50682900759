package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoContextID(w http.ResponseWriter, r *http.Request) {
	id, _ := ContextID(r.Context())
	_, _ = w.Write([]byte(id))
}

func TestSessionTokens_MintParse(t *testing.T) {
	tokens, err := NewSessionTokens("secret", time.Hour, false, nil)
	require.NoError(t, err)

	tok, err := tokens.Mint("ctx-1")
	require.NoError(t, err)
	sid, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "ctx-1", sid)

	other, err := NewSessionTokens("other", time.Hour, false, nil)
	require.NoError(t, err)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokens_RejectsNoneAlg(t *testing.T) {
	tokens, err := NewSessionTokens("secret", time.Hour, false, nil)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims{
		SID:              "forged",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: tokenIssuer},
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokens_Middleware(t *testing.T) {
	tokens, err := NewSessionTokens("", time.Hour, false, nil)
	require.NoError(t, err)
	h := tokens.Middleware(http.HandlerFunc(echoContextID))

	t.Run("mints on first contact", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, rec.Body.String())
		tok := rec.Header().Get(HeaderName)
		require.NotEmpty(t, tok)
		sid, err := tokens.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, rec.Body.String(), sid)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("reuses a valid cookie", func(t *testing.T) {
		tok, err := tokens.Mint("known")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tok})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "known", rec.Body.String())
		assert.Empty(t, rec.Header().Get(HeaderName))
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		fromHeader, _ := tokens.Mint("header")
		fromCookie, _ := tokens.Mint("cookie")
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderName, fromHeader)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: fromCookie})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "header", rec.Body.String())
	})

	t.Run("replaces a bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderName, "nope")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEmpty(t, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get(HeaderName))
	})
}
