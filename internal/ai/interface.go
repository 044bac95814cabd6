package ai

import (
	"context"
)

// Provider defines the contract for the upstream text-generation service.
// This interface allows for swapping different backends (OpenRouter, Gemini, etc.)
// and for stubbing the upstream entirely in tests.
type Provider interface {
	// Generate sends the prompt to the upstream model and returns its raw text reply.
	// Failures are classified into the sentinel errors in errors.go where possible.
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend for logs and metrics labels.
	Name() string
}
