// Package llmtest provides a deterministic in-memory ConversationProvider.
package llmtest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/markdave123-py/Vivid/internal/core"
)

var ErrUnknownConversation = errors.New("llmtest: unknown conversation")

// Reply is one scripted answer to SendTurn.
type Reply struct {
	Text string
	Err  error
}

// Call records one SendTurn invocation.
type Call struct {
	Handle core.ConversationHandle
	Text   string
	Media  *core.Media
}

// Fake hands out handles conv-1, conv-2, ... and answers turns from Replies in
// order. When the script runs out it answers "reply to: <text>".
// If Gate is set, SendTurn blocks until Gate is closed or ctx is done.
type Fake struct {
	mu        sync.Mutex
	Replies   []Reply
	CreateErr error
	Gate      chan struct{}

	systems  map[core.ConversationHandle]string
	calls    []Call
	released []core.ConversationHandle
	created  int
}

func New(replies ...Reply) *Fake {
	return &Fake{Replies: replies}
}

// Script appends replies.
func (f *Fake) Script(replies ...Reply) {
	f.mu.Lock()
	f.Replies = append(f.Replies, replies...)
	f.mu.Unlock()
}

func (f *Fake) CreateConversation(_ context.Context, systemInstruction string) (core.ConversationHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	f.created++
	h := core.ConversationHandle(fmt.Sprintf("conv-%d", f.created))
	if f.systems == nil {
		f.systems = make(map[core.ConversationHandle]string)
	}
	f.systems[h] = systemInstruction
	return h, nil
}

func (f *Fake) SendTurn(ctx context.Context, handle core.ConversationHandle, content core.Content) (string, error) {
	f.mu.Lock()
	gate := f.Gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.systems[handle]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConversation, handle)
	}
	f.calls = append(f.calls, Call{Handle: handle, Text: content.Text, Media: content.Media})

	if len(f.Replies) == 0 {
		return "reply to: " + content.Text, nil
	}
	r := f.Replies[0]
	f.Replies = f.Replies[1:]
	return r.Text, r.Err
}

func (f *Fake) ReleaseConversation(handle core.ConversationHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.systems, handle)
	f.released = append(f.released, handle)
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

func (f *Fake) Released() []core.ConversationHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.ConversationHandle(nil), f.released...)
}

// Created is the number of conversations opened so far.
func (f *Fake) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

// SystemInstruction returns the instruction a live conversation was opened with.
func (f *Fake) SystemInstruction(h core.ConversationHandle) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.systems[h]
	return s, ok
}

var (
	_ core.ConversationProvider = (*Fake)(nil)
	_ core.ConversationReleaser = (*Fake)(nil)
)
