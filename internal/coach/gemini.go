package coach

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"codeberg.org/snonux/accentcoach/internal/feedback"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiCoach asks a Gemini model for tips
type GeminiCoach struct {
	client *genai.Client
	model  string
}

// NewGeminiCoach creates a coach backed by the Gemini API. An empty model
// selects gemini-2.5-flash.
func NewGeminiCoach(ctx context.Context, apiKey, model string) (*GeminiCoach, error) {
	return newGeminiCoach(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}, model)
}

// NewGeminiCoachWithURL creates a coach talking to a Gemini compatible
// endpoint at baseURL.
func NewGeminiCoachWithURL(ctx context.Context, baseURL, apiKey, model string) (*GeminiCoach, error) {
	return newGeminiCoach(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	}, model)
}

func newGeminiCoach(ctx context.Context, config *genai.ClientConfig, model string) (*GeminiCoach, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiCoach{client: client, model: model}, nil
}

// Tips implements Coach
func (c *GeminiCoach) Tips(ctx context.Context, report feedback.Report, reference string) (string, error) {
	if report.IsEmpty() {
		return "", nil
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   maxTipTokens,
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(buildPrompt(report, reference)), config)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	tips := cleanOutput(resp.Text())
	if tips == "" {
		return "", fmt.Errorf("no response from Gemini")
	}
	return tips, nil
}

// Name implements Coach
func (c *GeminiCoach) Name() string {
	return "gemini"
}
