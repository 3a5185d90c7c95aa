package coach

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/snonux/accentcoach/internal/feedback"
)

// Coach generates pronunciation tips for the words flagged in a report
type Coach interface {
	// Tips returns advice for the flagged words of report. reference is the
	// annotated sentence the learner read. An empty report yields "" without
	// calling the backend.
	Tips(ctx context.Context, report feedback.Report, reference string) (string, error)

	// Name returns the backend name
	Name() string
}

// Config selects and configures a coach backend
type Config struct {
	Provider  string // "openai", "gemini" or "auto"
	OpenAIKey string
	GeminiKey string
	Model     string // overrides the default model of the primary backend
}

// New creates the coach named by config.Provider. "auto" uses OpenAI when
// both keys are set, falling back to Gemini. In "auto" mode Model applies to
// the primary backend only; the fallback keeps its default model.
func New(ctx context.Context, config Config, logger *slog.Logger) (Coach, error) {
	switch config.Provider {
	case "openai":
		return NewOpenAICoach(config.OpenAIKey, config.Model)
	case "gemini":
		return NewGeminiCoach(ctx, config.GeminiKey, config.Model)
	case "", "auto":
		var coaches []Coach
		if config.OpenAIKey != "" {
			c, err := NewOpenAICoach(config.OpenAIKey, config.Model)
			if err != nil {
				return nil, err
			}
			coaches = append(coaches, c)
		}
		if config.GeminiKey != "" {
			model := config.Model
			if len(coaches) > 0 {
				model = ""
			}
			c, err := NewGeminiCoach(ctx, config.GeminiKey, model)
			if err != nil {
				return nil, err
			}
			coaches = append(coaches, c)
		}
		switch len(coaches) {
		case 0:
			return nil, fmt.Errorf("no coach API key configured (set coach.openai_key or coach.gemini_key)")
		case 1:
			return coaches[0], nil
		default:
			return WithFallback(coaches[0], coaches[1], logger), nil
		}
	default:
		return nil, fmt.Errorf("unknown coach provider: %s", config.Provider)
	}
}

type fallbackCoach struct {
	primary  Coach
	fallback Coach
	logger   *slog.Logger
}

// WithFallback returns a coach that asks fallback when primary fails
func WithFallback(primary, fallback Coach, logger *slog.Logger) Coach {
	if logger == nil {
		logger = slog.Default()
	}
	return &fallbackCoach{primary: primary, fallback: fallback, logger: logger}
}

func (c *fallbackCoach) Tips(ctx context.Context, report feedback.Report, reference string) (string, error) {
	tips, err := c.primary.Tips(ctx, report, reference)
	if err == nil {
		return tips, nil
	}

	c.logger.Warn("coach failed, falling back",
		slog.String("primary", c.primary.Name()),
		slog.String("fallback", c.fallback.Name()),
		slog.String("error", err.Error()),
	)
	return c.fallback.Tips(ctx, report, reference)
}

func (c *fallbackCoach) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", c.primary.Name(), c.fallback.Name())
}
