// Package llm is the text-generation boundary for crewline.
//
// Everything that talks to a language model goes through Generator. A call
// either succeeds with the generated text or fails with an error matching
// ErrUnavailable; callers never see transport details and never distinguish
// failure sub-kinds.
package llm

import (
	"context"
	"errors"
)

// ErrUnavailable reports that the backend could not produce a response for
// any reason: transport failure, auth rejection, timeout, or an empty reply.
// Compare with errors.Is.
var ErrUnavailable = errors.New("llm: backend unavailable")

// Request carries one prompt and its sampling parameters.
type Request struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function into a Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate executes f(ctx, req).
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	if f == nil {
		return "", ErrUnavailable
	}
	return f(ctx, req)
}
