package oracle

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini calls the Google GenAI API.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGemini creates a Gemini oracle.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model, maxTokens: int32(cfg.MaxTokens)}, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

// Transform sends raw text with the route-description prompts.
func (g *Gemini) Transform(ctx context.Context, raw string) (string, error) {
	conf := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
	}
	if g.maxTokens > 0 {
		conf.MaxOutputTokens = g.maxTokens
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(UserPrompt(raw)), conf)
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return cleanOutput(resp.Text())
}
