// Package llm holds the oracle clients used by the chatbot: Gemini over REST,
// Gemini on Vertex AI, and a Disabled stand-in when neither is configured.
package llm

import "context"

// Provider is a one-shot text generator: one prompt in, one text out.
// Failures are *Error values (or ErrNotConfigured) so callers can tell them apart.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// Func adapts a plain function to Provider.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Generate(ctx context.Context, prompt string) (string, error) { return f(ctx, prompt) }

func (Func) Close() error { return nil }
