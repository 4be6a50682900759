package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/Vivid/internal/core"
)

// GeminiChat opens one genai.ChatSession per conversation handle. The chat
// session keeps the history, so every refinement is sent as a single turn.
type GeminiChat struct {
	client    *genai.Client
	modelName string
	chats     *registry[*genai.ChatSession]
}

func NewGeminiChat(ctx context.Context, apiKey, modelName string) (*GeminiChat, error) {
	return newGeminiChat(ctx, apiKey, modelName)
}

func newGeminiChat(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiChat, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &GeminiChat{client: cl, modelName: modelName, chats: newRegistry[*genai.ChatSession]()}, nil
}

func (g *GeminiChat) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiChat) CreateConversation(_ context.Context, systemInstruction string) (core.ConversationHandle, error) {
	m := g.client.GenerativeModel(g.modelName)
	if systemInstruction != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}
	return g.chats.add(m.StartChat()), nil
}

func (g *GeminiChat) SendTurn(ctx context.Context, handle core.ConversationHandle, content core.Content) (string, error) {
	cs, ok := g.chats.get(handle)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConversation, handle)
	}

	var parts []genai.Part
	if content.Media != nil {
		parts = append(parts, genai.Blob{MIMEType: content.Media.MIMEType, Data: content.Media.Data})
	}
	if content.Text != "" {
		parts = append(parts, genai.Text(content.Text))
	}

	// SendMessage records the user turn before calling the API and keeps it
	// on failure; a failed turn must not stay in the remote history.
	n := len(cs.History)
	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		cs.History = cs.History[:n]
		return "", fmt.Errorf("gemini send: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		cs.History = cs.History[:n]
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		cs.History = cs.History[:n]
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

func (g *GeminiChat) ReleaseConversation(handle core.ConversationHandle) {
	g.chats.remove(handle)
}

var (
	_ core.ConversationProvider = (*GeminiChat)(nil)
	_ core.ConversationReleaser = (*GeminiChat)(nil)
)
