package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
	KindShape     Kind = "shape"
	KindTimeout   Kind = "timeout"
)

type notConfiguredError struct{}

func (notConfiguredError) Error() string       { return "llm: no provider configured" }
func (notConfiguredError) NotConfigured() bool { return true }

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured error = notConfiguredError{}

// Error describes a failed oracle call. Each Kind renders a distinct message.
type Error struct {
	Kind   Kind
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("API Error: status %d: %s", e.Status, e.Body)
	case KindDecode:
		return fmt.Sprintf("JSON Error: %v", e.Err)
	case KindShape:
		return "I didn't get a proper response. Please try again."
	case KindTimeout:
		return "API Error: request timed out"
	default:
		return fmt.Sprintf("API Error: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Timeout() bool { return e.Kind == KindTimeout }

// KindOf returns the kind of an oracle error, or "" when err is not one.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// Disabled is used when no API key or Vertex project is set.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) { return "", ErrNotConfigured }

func (Disabled) Close() error { return nil }

// Deadline bounds every Generate call of p, for providers without their own request timeout.
type Deadline struct {
	Provider
	Timeout time.Duration
}

func (d Deadline) Generate(ctx context.Context, prompt string) (string, error) {
	if d.Timeout <= 0 {
		return d.Provider.Generate(ctx, prompt)
	}
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()
	out, err := d.Provider.Generate(ctx, prompt)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", &Error{Kind: KindTimeout, Err: err}
	}
	return out, err
}
