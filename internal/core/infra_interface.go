package core

import (
	"context"
	"io"
)

// KVStore is the durable key-value collaborator used for preferences and profiles.
// Values are JSON documents; Get reports ok=false for absent keys.
type KVStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// Selected videos are staged here until the session releases them.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// ConversationHandle identifies an open, stateful exchange with the remote model.
type ConversationHandle string

// Media is inline binary content sent alongside a turn.
type Media struct {
	MIMEType string
	Data     []byte
}

// Content is one outgoing turn. The first turn of a conversation carries the
// video; refinements are plain text.
type Content struct {
	Media *Media
	Text  string
}

// ConversationProvider is the remote generation capability.
type ConversationProvider interface {
	CreateConversation(ctx context.Context, systemInstruction string) (ConversationHandle, error)
	SendTurn(ctx context.Context, handle ConversationHandle, content Content) (string, error)
}

// ConversationReleaser is implemented by providers that hold per-conversation
// state which should be dropped once a session no longer needs it.
type ConversationReleaser interface {
	ReleaseConversation(handle ConversationHandle)
}
