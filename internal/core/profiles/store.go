// Package profiles persists the reusable person descriptors that enrich prompts.
package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markdave123-py/Vivid/internal/core"
	"github.com/markdave123-py/Vivid/internal/models"
)

// StorageKey is the KV record holding the full profile array.
const StorageKey = "vvd-profiles"

var (
	ErrIncompleteProfile = errors.New("profile needs a name and a description")
	ErrNotFound          = errors.New("profile not found")
)

// Store keeps profiles in creation order and writes the whole list through
// to the KV collaborator on every change.
type Store struct {
	mu       sync.RWMutex
	kv       core.KVStore
	logger   *zap.Logger
	profiles []models.Profile
	newID    func() string
}

func NewStore(kv core.KVStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: kv, logger: logger, newID: uuid.NewString}
}

// Load replaces the in-memory list with the persisted one. An absent or
// unreadable record yields an empty list.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	var loaded []models.Profile
	if ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &loaded); err != nil {
			s.logger.Warn("ignoring malformed profile record", zap.Error(err))
			loaded = nil
		}
	}

	s.mu.Lock()
	s.profiles = loaded
	s.mu.Unlock()
	return nil
}

// List returns a copy of all profiles in enumeration order.
func (s *Store) List() []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Profile, len(s.profiles))
	copy(out, s.profiles)
	return out
}

func (s *Store) Get(id string) (models.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.profiles[i], true
	}
	return models.Profile{}, false
}

// Upsert trims the fields and then either replaces the profile with the same
// id in place or appends a new one. An empty id gets a fresh one.
func (s *Store) Upsert(ctx context.Context, p models.Profile) (models.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Pronouns = strings.TrimSpace(p.Pronouns)
	p.Description = strings.TrimSpace(p.Description)
	p.ID = strings.TrimSpace(p.ID)
	if p.Name == "" || p.Description == "" {
		return models.Profile{}, ErrIncompleteProfile
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Profile, len(s.profiles), len(s.profiles)+1)
	copy(next, s.profiles)

	if p.ID == "" {
		p.ID = s.newID()
	}
	if i := s.indexOf(p.ID); i >= 0 {
		next[i] = p
	} else {
		next = append(next, p)
	}

	if err := s.persist(ctx, next); err != nil {
		return models.Profile{}, err
	}
	s.profiles = next
	return p, nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	next := make([]models.Profile, 0, len(s.profiles)-1)
	next = append(next, s.profiles[:i]...)
	next = append(next, s.profiles[i+1:]...)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.profiles = next
	return nil
}

// Select returns the profiles whose ids are in ids, in store order.
// Unknown ids are ignored.
func (s *Store) Select(ids map[string]bool) []models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Profile
	for _, p := range s.profiles {
		if ids[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// indexOf must be called with s.mu held.
func (s *Store) indexOf(id string) int {
	for i, p := range s.profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persist(ctx context.Context, list []models.Profile) error {
	if list == nil {
		list = []models.Profile{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	return nil
}
