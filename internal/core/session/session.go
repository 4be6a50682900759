// Package session implements the generation session: video selection, the
// initial description call and the refinement conversation that follows it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/Vivid/internal/core"
	"github.com/markdave123-py/Vivid/internal/core/prompt"
	"github.com/markdave123-py/Vivid/internal/core/transcript"
	"github.com/markdave123-py/Vivid/internal/models"
	"github.com/markdave123-py/Vivid/internal/validation"
)

const (
	// PlaceholderPrompt stands in for the first user turn in the transcript;
	// the real instruction and the video are not replayed for display.
	PlaceholderPrompt = "Generate the description for the provided video."

	MsgGenerationFailed = "Failed to generate description. The video format may not be supported or an API error occurred. Please try again."

	DefaultTimeout = 5 * time.Minute
)

var (
	ErrGenerationFailed  = errors.New("generation failed")
	ErrRefinementFailed  = errors.New("refinement failed; the message was discarded")
	ErrBusy              = errors.New("a request to the model is already in flight")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrSuperseded        = errors.New("session was reset while the request was in flight")
)

type Options struct {
	// Objects stages selected videos under Bucket/KeyPrefix.
	Objects   core.ObjectClient
	Bucket    string
	KeyPrefix string
	// Timeout bounds every remote call. Zero means DefaultTimeout.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Session is safe for concurrent use. The mutex is never held across a remote
// call; the Processing and Refining states act as the in-flight lock instead.
type Session struct {
	provider core.ConversationProvider
	objects  core.ObjectClient
	bucket   string
	prefix   string
	timeout  time.Duration
	logger   *zap.Logger

	mu         sync.Mutex
	state      State
	transcript transcript.Transcript
	// epoch changes whenever the session is reset or gets a new video, so
	// late results of superseded calls can be recognized and dropped.
	epoch uint64
}

func New(provider core.ConversationProvider, opts Options) *Session {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{
		provider: provider,
		objects:  opts.Objects,
		bucket:   opts.Bucket,
		prefix:   opts.KeyPrefix,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		state:    Idle{},
	}
}

// Snapshot is a consistent, read-only view for presentation.
type Snapshot struct {
	Status            Status        `json:"status"`
	Video             *Video        `json:"video,omitempty"`
	Transcript        []models.Turn `json:"transcript"`
	LatestDescription string        `json:"latest_description"`
	LastError         string        `json:"last_error,omitempty"`
	HasConversation   bool          `json:"has_conversation"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Status:            s.state.Status(),
		Transcript:        s.transcript.Turns(),
		LatestDescription: s.transcript.LatestModelText(),
	}
	o := ownedBy(s.state)
	if o.video != nil {
		v := *o.video
		snap.Video = &v
	}
	snap.HasConversation = o.conversation != ""
	if f, ok := s.state.(Failed); ok {
		snap.LastError = f.Message
	}
	return snap
}

// SelectFile validates and stages a new video. Selection is refused while a
// call is in flight. A video that fails the guard moves the session to the
// error state with a user-facing message and returns the validation error.
// Any previous video and conversation are released.
func (s *Session) SelectFile(ctx context.Context, name, contentType string, size int64, r io.Reader) error {
	s.mu.Lock()
	if isBusy(s.state) {
		s.mu.Unlock()
		return ErrBusy
	}
	if err := validation.ValidateVideo(contentType, size); err != nil {
		s.mu.Unlock()
		return s.Reject(ctx, err)
	}
	epoch := s.epoch
	s.mu.Unlock()

	video := Video{Name: name, MIMEType: contentType, Size: size, Key: s.objectKey(name)}

	// The declared size already passed the guard; the counter catches bodies
	// that turn out larger than declared.
	lr := &io.LimitedReader{R: r, N: validation.MaxVideoSize + 1}
	if _, err := s.objects.UploadFile(ctx, s.bucket, video.Key, lr, contentType); err != nil {
		return fmt.Errorf("stage video: %w", err)
	}
	if lr.N == 0 {
		s.deleteVideo(ctx, video)
		return s.Reject(ctx, validation.ErrFileTooLarge)
	}

	s.mu.Lock()
	if s.epoch != epoch || isBusy(s.state) {
		s.mu.Unlock()
		s.deleteVideo(ctx, video)
		return ErrSuperseded
	}
	prev := ownedBy(s.state)
	s.transcript.Clear()
	s.state = FileSelected{Video: video}
	s.epoch++
	s.mu.Unlock()

	s.release(ctx, prev)
	s.logger.Info("video selected",
		zap.String("name", name),
		zap.String("mime_type", contentType),
		zap.Int64("size", size))
	return nil
}

// Reject moves the session to the error state for input refused at the
// selection boundary. It returns err so callers can propagate it.
func (s *Session) Reject(ctx context.Context, err error) error {
	s.mu.Lock()
	if isBusy(s.state) {
		s.mu.Unlock()
		return ErrBusy
	}
	prev := ownedBy(s.state)
	s.transcript.Clear()
	s.state = Failed{Message: err.Error()}
	s.epoch++
	s.mu.Unlock()

	s.release(ctx, prev)
	s.logger.Info("video rejected", zap.Error(err))
	return err
}

// Generate opens a fresh conversation with ins.System and sends the staged
// video with ins.User. On success it returns the description.
func (s *Session) Generate(ctx context.Context, ins prompt.Instructions) (string, error) {
	s.mu.Lock()
	st, ok := s.state.(FileSelected)
	if !ok {
		err := s.transitionErrLocked("generate")
		s.mu.Unlock()
		return "", err
	}
	s.transcript.Clear()
	s.state = Processing{Video: st.Video}
	epoch := s.epoch
	s.mu.Unlock()

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	var (
		data   []byte
		handle core.ConversationHandle
	)
	g, gctx := errgroup.WithContext(callCtx)
	g.Go(func() error {
		b, err := s.objects.GetFile(gctx, s.bucket, st.Video.Key)
		if err != nil {
			return fmt.Errorf("load video: %w", err)
		}
		data = b
		return nil
	})
	g.Go(func() error {
		h, err := s.provider.CreateConversation(gctx, ins.System)
		if err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
		handle = h
		return nil
	})
	err := g.Wait()

	var text string
	if err == nil {
		text, err = s.provider.SendTurn(callCtx, handle, core.Content{
			Media: &core.Media{MIMEType: st.Video.MIMEType, Data: data},
			Text:  ins.User,
		})
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.release(ctx, owned{conversation: handle})
		return "", ErrSuperseded
	}
	if err != nil {
		prev := owned{video: &st.Video, conversation: handle}
		s.state = Failed{Message: MsgGenerationFailed}
		s.mu.Unlock()

		s.logger.Warn("generation failed", zap.String("video", st.Video.Name), zap.Error(err))
		s.release(ctx, prev)
		return "", ErrGenerationFailed
	}
	s.transcript.Append(models.Turn{Role: models.RoleUser, Text: PlaceholderPrompt})
	s.transcript.Append(models.Turn{Role: models.RoleModel, Text: text})
	s.state = Success{Video: st.Video, Conversation: handle}
	s.mu.Unlock()

	s.logger.Info("description generated", zap.String("video", st.Video.Name), zap.Int("chars", len(text)))
	return text, nil
}

// Refine sends a follow-up instruction on the open conversation. A failed
// call removes the pending user turn and leaves the session in success with
// the previous description; the caller gets ErrRefinementFailed as a notice.
func (s *Session) Refine(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()
	st, ok := s.state.(Success)
	if !ok {
		err := s.transitionErrLocked("refine")
		s.mu.Unlock()
		return "", err
	}
	s.transcript.Append(models.Turn{Role: models.RoleUser, Text: text})
	s.state = Refining{Video: st.Video, Conversation: st.Conversation}
	epoch := s.epoch
	s.mu.Unlock()

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	reply, err := s.provider.SendTurn(callCtx, st.Conversation, core.Content{Text: text})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return "", ErrSuperseded
	}
	s.state = Success{Video: st.Video, Conversation: st.Conversation}
	if err != nil {
		s.transcript.DropPendingUser()
		s.logger.Warn("refinement failed, message rolled back", zap.Error(err))
		return "", ErrRefinementFailed
	}
	s.transcript.Append(models.Turn{Role: models.RoleModel, Text: reply})
	return reply, nil
}

// Reset returns to idle from any state, releasing the video and conversation.
// A call still in flight finishes with ErrSuperseded.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	prev := ownedBy(s.state)
	s.transcript.Clear()
	s.state = Idle{}
	s.epoch++
	s.mu.Unlock()

	s.release(ctx, prev)
}

func (s *Session) transitionErrLocked(op string) error {
	if isBusy(s.state) {
		return ErrBusy
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, s.state.Status())
}

func (s *Session) release(ctx context.Context, o owned) {
	if o.conversation != "" {
		if r, ok := s.provider.(core.ConversationReleaser); ok {
			r.ReleaseConversation(o.conversation)
		}
	}
	if o.video != nil {
		s.deleteVideo(ctx, *o.video)
	}
}

func (s *Session) deleteVideo(ctx context.Context, v Video) {
	if err := s.objects.DeleteFile(context.WithoutCancel(ctx), s.bucket, v.Key); err != nil {
		s.logger.Warn("failed to release staged video", zap.String("key", v.Key), zap.Error(err))
	}
}

func (s *Session) objectKey(name string) string {
	return path.Join(s.prefix, uuid.NewString()+strings.ToLower(filepath.Ext(name)))
}
