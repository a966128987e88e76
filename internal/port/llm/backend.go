// Package llm defines the language-generation backend port and the registry
// of named backends the model router selects from.
package llm

import (
	"context"
	"errors"

	"github.com/Strob0t/Hearth/internal/domain/session"
)

// ErrRefused indicates the model declined to answer (safety refusal or an
// explicit empty/garbage completion). The router treats it as a route
// failure, distinct from transport errors.
var ErrRefused = errors.New("model refused")

// ErrUnavailable indicates the backend could not serve the request at all
// (connection refused, non-2xx, timeout).
var ErrUnavailable = errors.New("model unavailable")

// Params controls a single generation call.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// StreamFunc receives incremental token chunks when streaming is requested.
// It must not block; slow consumers drop chunks at the adapter's discretion.
type StreamFunc func(chunk string)

// Request is one generation call.
type Request struct {
	Prompt  string
	History []session.Message
	Params  Params
	Stream  StreamFunc // nil for blocking delivery
}

// Result is the completed generation.
type Result struct {
	Text string
}

// Backend is the port interface one LLM provider implements.
// Generate returns ErrRefused or ErrUnavailable (possibly wrapped) for the
// distinguishable failure outcomes; any other error is treated as
// unavailable by the router.
type Backend interface {
	// Name returns the provider identifier used in route configuration.
	Name() string

	// Generate produces a completion for the request.
	Generate(ctx context.Context, req Request) (Result, error)
}
