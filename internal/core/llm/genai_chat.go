package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/markdave123-py/Vivid/internal/core"
)

// GenAIOptions selects the backend of the unified Google GenAI SDK.
type GenAIOptions struct {
	APIKey   string
	Model    string
	Vertex   bool
	Project  string
	Location string
}

// GenAIChat is the conversation provider on google.golang.org/genai. Unlike
// GeminiChat it can also target Vertex AI.
type GenAIChat struct {
	client *genai.Client
	model  string
	chats  *registry[*genai.Chat]
}

func NewGenAIChat(ctx context.Context, opts GenAIOptions) (*GenAIChat, error) {
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.Vertex {
		cc = &genai.ClientConfig{
			Project:  opts.Project,
			Location: opts.Location,
			Backend:  genai.BackendVertexAI,
		}
	} else if opts.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &GenAIChat{client: client, model: model, chats: newRegistry[*genai.Chat]()}, nil
}

func (g *GenAIChat) CreateConversation(ctx context.Context, systemInstruction string) (core.ConversationHandle, error) {
	var cfg *genai.GenerateContentConfig
	if systemInstruction != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		}
	}
	chat, err := g.client.Chats.Create(ctx, g.model, cfg, nil)
	if err != nil {
		return "", fmt.Errorf("GenAI chat create failed: %w", err)
	}
	return g.chats.add(chat), nil
}

func (g *GenAIChat) SendTurn(ctx context.Context, handle core.ConversationHandle, content core.Content) (string, error) {
	chat, ok := g.chats.get(handle)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConversation, handle)
	}

	var parts []genai.Part
	if content.Media != nil {
		parts = append(parts, *genai.NewPartFromBytes(content.Media.Data, content.Media.MIMEType))
	}
	if content.Text != "" {
		parts = append(parts, *genai.NewPartFromText(content.Text))
	}

	resp, err := chat.SendMessage(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("GenAI send failed: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GenAIChat) ReleaseConversation(handle core.ConversationHandle) {
	g.chats.remove(handle)
}

var (
	_ core.ConversationProvider = (*GenAIChat)(nil)
	_ core.ConversationReleaser = (*GenAIChat)(nil)
)
