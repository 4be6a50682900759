package llm

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/markdave123-py/Vivid/internal/core"
)

// DefaultModel is used when GEN_MODEL is empty.
const DefaultModel = "gemini-2.5-pro"

var (
	ErrUnknownConversation = errors.New("unknown conversation")
	ErrEmptyResponse       = errors.New("model returned no text")
)

// registry maps opaque handles to SDK chat objects.
type registry[T any] struct {
	mu    sync.Mutex
	chats map[core.ConversationHandle]T
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{chats: make(map[core.ConversationHandle]T)}
}

func (r *registry[T]) add(chat T) core.ConversationHandle {
	h := core.ConversationHandle(uuid.NewString())
	r.mu.Lock()
	r.chats[h] = chat
	r.mu.Unlock()
	return h
}

func (r *registry[T]) get(h core.ConversationHandle) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[h]
	return chat, ok
}

func (r *registry[T]) remove(h core.ConversationHandle) {
	r.mu.Lock()
	delete(r.chats, h)
	r.mu.Unlock()
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chats)
}
