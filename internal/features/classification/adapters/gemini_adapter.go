package adapters

import (
	"context"
	"fmt"

	"shipment-sentinel/internal/core/config"
	"shipment-sentinel/internal/core/logger"

	"google.golang.org/genai"
)

// GeminiAdapter implements ports.TextGenerator backed by the Gemini API.
type GeminiAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiAdapter creates a Gemini-backed text generator. Returns nil when
// no API key is configured, which disables the model-assisted classifier.
func NewGeminiAdapter(ctx context.Context, cfg config.GeminiConfig) (*GeminiAdapter, error) {
	if cfg.APIKey == "" {
		logger.Get().Info("No Gemini API key configured, model-assisted classification disabled")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiAdapter{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Generate returns the raw model reply for the given prompt.
func (a *GeminiAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	content := genai.NewContentFromText(prompt, genai.RoleUser)

	resp, err := a.client.Models.GenerateContent(ctx, a.model, []*genai.Content{content}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty reply")
	}

	return text, nil
}
