package scoring

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("scoring service unavailable")

// ProviderError is the error indicator returned inside a result document,
// e.g. "error_unknown_words". The service was reachable; the request was not
// scoreable.
type ProviderError struct {
	Short  string
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("scoring provider: %s", e.Short)
	}
	return fmt.Sprintf("scoring provider: %s: %s", e.Short, e.Detail)
}

// HTTPError reports a non-2xx response from the scoring service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("scoring service returned status %d: %s", e.StatusCode, e.Body)
}
