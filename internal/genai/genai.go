// Package genai talks to an external generative-text model. Callers treat every
// failure as the feature being unavailable.
package genai

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable is returned when no generator is configured.
var ErrUnavailable = errors.New("genai: generator unavailable")

// Options tune a single generation.
type Options struct {
	// StructuredOutput asks the model for a JSON object. The result's JSON field is
	// set only when the reply parses.
	StructuredOutput bool
}

// Result is a model reply.
type Result struct {
	Text string          `json:"text"`
	JSON json.RawMessage `json:"json,omitempty"`
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (Result, error)
}

// Disabled is the generator used when no model is configured.
type Disabled struct{}

// Generate always fails with ErrUnavailable.
func (Disabled) Generate(context.Context, string, Options) (Result, error) {
	return Result{}, ErrUnavailable
}
