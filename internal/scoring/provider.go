package scoring

import (
	"context"
	"io"
)

// Request is one scoring request: the spoken reference text and the
// learner's recording.
type Request struct {
	Text        string
	Audio       io.Reader
	FileName    string
	ContentType string
}

// Provider defines the interface for pronunciation scoring services
type Provider interface {
	// Score uploads the recording and returns the result document. A result
	// whose Err is non-nil is returned together with that error.
	Score(ctx context.Context, req Request) (*Result, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured
	IsAvailable() error
}

// Config holds the scoring provider settings
type Config struct {
	APIKey  string
	BaseURL string
	Dialect string // "en-us" or "en-gb"
	UserID  string
}

// DefaultConfig returns the default scoring configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Dialect: "en-us",
		UserID:  "accentcoach",
	}
}
