package coach

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/accentcoach/internal/feedback"
)

// OpenAICoach asks an OpenAI chat model for tips
type OpenAICoach struct {
	client *openai.Client
	model  string
}

// NewOpenAICoach creates a coach backed by the OpenAI chat API. An empty
// model selects GPT-4o mini.
func NewOpenAICoach(apiKey, model string) (*OpenAICoach, error) {
	return newOpenAICoach(openai.DefaultConfig(apiKey), apiKey, model)
}

// NewOpenAICoachWithURL creates a coach talking to an OpenAI compatible
// endpoint at baseURL.
func NewOpenAICoachWithURL(baseURL, apiKey, model string) (*OpenAICoach, error) {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return newOpenAICoach(config, apiKey, model)
}

func newOpenAICoach(config openai.ClientConfig, apiKey, model string) (*OpenAICoach, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICoach{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// Tips implements Coach
func (c *OpenAICoach) Tips(ctx context.Context, report feedback.Report, reference string) (string, error) {
	if report.IsEmpty() {
		return "", nil
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(report, reference),
			},
		},
		Temperature: 0.3,
		MaxTokens:   maxTipTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return cleanOutput(resp.Choices[0].Message.Content), nil
}

// Name implements Coach
func (c *OpenAICoach) Name() string {
	return "openai"
}
