package services

import (
	"context"
	"io"
	"sync"

	"github.com/markdave123-py/Vivid/internal/core/focus"
	"github.com/markdave123-py/Vivid/internal/core/profiles"
	"github.com/markdave123-py/Vivid/internal/core/prompt"
	"github.com/markdave123-py/Vivid/internal/core/session"
	"github.com/markdave123-py/Vivid/internal/models"
)

// Settings are the session-scoped choices that shape the next prompt.
type Settings struct {
	DetailLevel      models.DetailLevel `json:"detail_level"`
	Focus            []string           `json:"focus"`
	SelectedProfiles []string           `json:"selected_profiles"`
}

// View is what presentation layers render for one interaction context.
type View struct {
	session.Snapshot
	Settings Settings `json:"settings"`
}

// DescribeService drives one generation session together with its settings.
type DescribeService struct {
	sess     *session.Session
	profiles *profiles.Store

	mu       sync.Mutex
	detail   models.DetailLevel
	focus    focus.List
	selected map[string]bool
}

func NewDescribeService(sess *session.Session, store *profiles.Store) *DescribeService {
	return &DescribeService{
		sess:     sess,
		profiles: store,
		detail:   models.DefaultDetailLevel,
		selected: make(map[string]bool),
	}
}

func (s *DescribeService) SelectVideo(ctx context.Context, name, contentType string, size int64, r io.Reader) error {
	return s.sess.SelectFile(ctx, name, contentType, size, r)
}

// RejectVideo records input refused before it could be read, e.g. a body
// that overflowed the transport limit.
func (s *DescribeService) RejectVideo(ctx context.Context, err error) error {
	return s.sess.Reject(ctx, err)
}

// Generate builds the prompt from the current settings and requests the
// initial description. Selected ids that no longer exist are skipped.
func (s *DescribeService) Generate(ctx context.Context) (string, error) {
	s.mu.Lock()
	level := s.detail
	labels := s.focus.Labels()
	ids := make(map[string]bool, len(s.selected))
	for id, on := range s.selected {
		ids[id] = on
	}
	s.mu.Unlock()

	return s.sess.Generate(ctx, prompt.Assemble(level, labels, s.profiles.Select(ids)))
}

func (s *DescribeService) Refine(ctx context.Context, message string) (string, error) {
	return s.sess.Refine(ctx, message)
}

// Reset returns the session to idle and the settings to their defaults.
func (s *DescribeService) Reset(ctx context.Context) {
	s.sess.Reset(ctx)

	s.mu.Lock()
	s.detail = models.DefaultDetailLevel
	s.focus.Clear()
	s.selected = make(map[string]bool)
	s.mu.Unlock()
}

func (s *DescribeService) SetDetailLevel(level models.DetailLevel) {
	s.mu.Lock()
	s.detail = level
	s.mu.Unlock()
}

func (s *DescribeService) AddFocus(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus.Add(label)
}

func (s *DescribeService) RemoveFocus(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus.Remove(label)
}

// SelectProfile toggles whether a stored profile is included in the prompt.
func (s *DescribeService) SelectProfile(id string, selected bool) error {
	if _, ok := s.profiles.Get(id); !ok && selected {
		return profiles.ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if selected {
		s.selected[id] = true
	} else {
		delete(s.selected, id)
	}
	return nil
}

func (s *DescribeService) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Report selections in store order and only for profiles that still exist.
	var ids []string
	for _, p := range s.profiles.Select(s.selected) {
		ids = append(ids, p.ID)
	}
	if ids == nil {
		ids = []string{}
	}
	return Settings{DetailLevel: s.detail, Focus: s.focus.Labels(), SelectedProfiles: ids}
}

func (s *DescribeService) View() View {
	return View{Snapshot: s.sess.Snapshot(), Settings: s.Settings()}
}
