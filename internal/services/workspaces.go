package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Factory builds the service for a newly seen interaction context.
type Factory func(id string) *DescribeService

type workspace struct {
	svc      *DescribeService
	lastSeen time.Time
}

// Workspaces maps interaction-context ids to their DescribeService.
type Workspaces struct {
	mu      sync.Mutex
	byID    map[string]*workspace
	factory Factory
	logger  *zap.Logger
	now     func() time.Time
}

func NewWorkspaces(factory Factory, logger *zap.Logger) *Workspaces {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workspaces{byID: make(map[string]*workspace), factory: factory, logger: logger, now: time.Now}
}

// Get returns the service for id, creating it on first use, and marks the
// context as recently used.
func (w *Workspaces) Get(id string) *DescribeService {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ws, ok := w.byID[id]; ok {
		ws.lastSeen = w.now()
		return ws.svc
	}
	ws := &workspace{svc: w.factory(id), lastSeen: w.now()}
	w.byID[id] = ws
	w.logger.Debug("workspace created", zap.String("context_id", id))
	return ws.svc
}

// Drop resets and forgets the workspace for id.
func (w *Workspaces) Drop(ctx context.Context, id string) {
	w.mu.Lock()
	ws, ok := w.byID[id]
	delete(w.byID, id)
	w.mu.Unlock()
	if ok {
		ws.svc.Reset(ctx)
	}
}

// EvictIdle drops every workspace not used within ttl, releasing its staged
// video and conversation. It returns the number evicted.
func (w *Workspaces) EvictIdle(ctx context.Context, ttl time.Duration) int {
	cutoff := w.now().Add(-ttl)

	w.mu.Lock()
	var stale []*workspace
	for id, ws := range w.byID {
		if ws.lastSeen.Before(cutoff) {
			stale = append(stale, ws)
			delete(w.byID, id)
		}
	}
	w.mu.Unlock()

	for _, ws := range stale {
		ws.svc.Reset(ctx)
	}
	if len(stale) > 0 {
		w.logger.Info("evicted idle workspaces", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (w *Workspaces) RunEviction(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.EvictIdle(context.WithoutCancel(ctx), ttl)
		}
	}
}

func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.byID)
}

// Close resets every workspace so staged videos and open conversations are
// released.
func (w *Workspaces) Close(ctx context.Context) {
	w.mu.Lock()
	all := w.byID
	w.byID = make(map[string]*workspace)
	w.mu.Unlock()

	for _, ws := range all {
		ws.svc.Reset(ctx)
	}
}
