package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient completes prompts with the Gemini API. Each call opens a
// fresh chat seeded with the caller's history; the client keeps no state
// between calls and never retries.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiClient builds a client for apiKey. An empty key yields a
// Completer that reports ErrAssistantUnavailable without touching the
// network.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (Completer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(apiKey) == "" {
		logger.Warn("assistant disabled", "reason", "api key missing")
		return Unavailable{}, nil
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, logger: logger.With("component", "assistant")}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, prompt string, history []Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	chat, err := g.client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	}, contents)
	if err != nil {
		g.logger.Error("assistant chat failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		g.logger.Error("assistant request failed", "model", g.model, "error", err)
		return "", fmt.Errorf("%w: %v", ErrAssistantUnavailable, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrAssistantUnavailable)
	}
	return text, nil
}
