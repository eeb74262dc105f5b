// Package embedding turns text into fixed-length vectors for semantic search.
//
// The Provider interface is the only thing the rest of the system depends
// on; the Ollama implementation is the default backend. Providers must be
// safe for concurrent use — context reports run request-parallel.
package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the embedding backend could not be reached or
// could not produce a vector. Callers treat this as recoverable: reports
// fall back to keyword search or omit the semantic section, they never
// abort on it.
var ErrUnavailable = errors.New("embedding unavailable")

// Provider computes an embedding vector for a text string.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
