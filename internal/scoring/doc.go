// Package scoring talks to the external pronunciation scoring service. It
// defines the result document returned by Speechace, a Provider interface,
// an HTTP client for the text scoring endpoint, and a circuit breaker that
// keeps a failing service from being hammered.
package scoring
