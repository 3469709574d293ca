package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrNoAPIKey      = errors.New("api key is required")
	ErrEmptyResponse = errors.New("empty response from provider")
	ErrNoProviders   = errors.New("no text generation provider configured")
)

// GenerateRequest is a single system+user prompt exchange.
type GenerateRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// GeneratedText is the provider-neutral result of a generation call.
type GeneratedText struct {
	Text     string
	Provider string
	Model    string
}

// TextGenerator is implemented by every LLM provider adapter.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (GeneratedText, error)
}

// StatusError carries the HTTP status reported by a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

// IsRetryable reports whether a generation error is transient: rate limits,
// server errors, timeouts and transport failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrNoAPIKey) || errors.Is(err, ErrEmptyResponse) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == 429 || statusErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return !errors.Is(err, context.DeadlineExceeded)
}
