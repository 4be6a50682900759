package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/markdave123-py/Vivid/internal/core"
)

func TestGeminiChat_FailedTurnIsNotKeptInHistory(t *testing.T) {
	ctx := context.Background()
	g, err := newGeminiChat(ctx, "test-key", "", option.WithEndpoint("127.0.0.1:1"))
	require.NoError(t, err)
	defer g.Close()

	h, err := g.CreateConversation(ctx, "describe videos")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		callCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := g.SendTurn(callCtx, h, core.Content{Text: "make it funnier"})
		cancel()
		require.Error(t, err)

		cs, ok := g.chats.get(h)
		require.True(t, ok)
		assert.Empty(t, cs.History, "attempt %d left a dangling user turn", i+1)
	}
}

func TestGeminiChat_UnknownConversation(t *testing.T) {
	ctx := context.Background()
	g, err := newGeminiChat(ctx, "test-key", "", option.WithEndpoint("127.0.0.1:1"))
	require.NoError(t, err)
	defer g.Close()

	_, err = g.SendTurn(ctx, "missing", core.Content{Text: "hi"})
	assert.ErrorIs(t, err, ErrUnknownConversation)
}
