package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes when the breaker opens and how long it stays open.
type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// DefaultBreakerConfig opens after 3 consecutive failures for 30 seconds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxFailures: 3, OpenTimeout: 30 * time.Second}
}

// Breaker wraps a Provider with a circuit breaker. Transport failures and
// 5xx responses count as failures. 4xx responses and an error document
// returned by a healthy service do not.
type Breaker struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next with a circuit breaker.
func NewBreaker(next Provider, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultBreakerConfig().MaxFailures
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "scoring_breaker")

	settings := gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return !isBreakerFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				slog.String("provider", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// isBreakerFailure reports whether err means the service itself is unhealthy
func isBreakerFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return false
	}
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.StatusCode >= 500
	}
	return true
}

// Score forwards to the wrapped provider unless the breaker is open.
func (b *Breaker) Score(ctx context.Context, req Request) (*Result, error) {
	var res *Result
	_, err := b.cb.Execute(func() (interface{}, error) {
		var err error
		res, err = b.next.Score(ctx, req)
		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	return res, err
}

// Name returns the wrapped provider name
func (b *Breaker) Name() string {
	return fmt.Sprintf("%s (breaker)", b.next.Name())
}

// IsAvailable reports the wrapped provider's availability, or ErrUnavailable while open.
func (b *Breaker) IsAvailable() error {
	if b.cb.State() == gobreaker.StateOpen {
		return ErrUnavailable
	}
	return b.next.IsAvailable()
}

// State returns the breaker state name: "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}
