package audio

import (
	"context"
	"fmt"
	"log/slog"
)

// Provider defines the interface for text-to-speech providers that render
// model readings of reference sentences
type Provider interface {
	// GenerateAudio reads text aloud and saves the audio to outputFile.
	// Stress indicators in text are removed before synthesis.
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider string // "openai", "espeak" or "auto"

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "ash", "coral", "echo", "fable", "nova", "onyx", "sage", "shimmer"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts model

	// espeak-ng settings
	ESpeakVoice string // e.g. "en-us", "en-gb"
	ESpeakSpeed int    // words per minute

	CacheDir    string
	EnableCache bool
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "auto",
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAIVoice:       "alloy",
		OpenAISpeed:       0.9,
		OpenAIInstruction: "Read the sentence in clear General American English for a language learner. Speak slowly and place lexical stress naturally.",
		ESpeakVoice:       "en-us",
		ESpeakSpeed:       140,
	}
}

// NewProvider creates the provider named by config.Provider. "auto" uses
// OpenAI when a key is configured, falling back to espeak-ng.
func NewProvider(config *Config, logger *slog.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai":
		return NewOpenAIProvider(config, logger)
	case "espeak":
		return NewESpeakProvider(config)
	case "", "auto":
		espeak, espeakErr := NewESpeakProvider(config)
		if config.OpenAIKey == "" {
			if espeakErr != nil {
				return nil, fmt.Errorf("no audio provider available: OpenAI API key not configured and %w", espeakErr)
			}
			return espeak, nil
		}
		openai, err := NewOpenAIProvider(config, logger)
		if err != nil {
			return nil, err
		}
		if espeakErr != nil {
			return openai, nil
		}
		return NewProviderWithFallback(openai, espeak, logger), nil
	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   *slog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, outputFile)
	if err != nil {
		p.logger.Warn("audio provider failed, falling back",
			slog.String("primary", p.primary.Name()),
			slog.String("fallback", p.fallback.Name()),
			slog.String("error", err.Error()),
		)
		return p.fallback.GenerateAudio(ctx, text, outputFile)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
