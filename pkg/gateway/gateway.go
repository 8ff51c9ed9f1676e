// Package gateway turns a prompt into model output or a typed failure. A
// gateway makes exactly one attempt per call, bounded by a timeout, and never
// returns a Go error or panics past its boundary.
package gateway

import (
	"context"
	"time"
)

// DefaultTimeout bounds a generation when the caller passes no timeout.
const DefaultTimeout = 60 * time.Second

// Kind tags a Response.
type Kind int

const (
	KindOK Kind = iota
	KindTimeout
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindTimeout:
		return "timeout"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Response is the normalized outcome of a generation.
type Response struct {
	Kind Kind

	// Text is the trimmed completion, set only for KindOK.
	Text string

	// Err is the underlying failure, set only for KindError.
	Err error
}

// OK wraps a completion.
func OK(text string) Response {
	return Response{Kind: KindOK, Text: text}
}

// Timeout reports that the call ran out of time.
func Timeout() Response {
	return Response{Kind: KindTimeout}
}

// Failure reports any other invocation failure.
func Failure(err error) Response {
	return Response{Kind: KindError, Err: err}
}

// Message is the failure description of a KindError response.
func (r Response) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Generator produces a completion for prompt with model.
// Implementations must be safe for concurrent use across sessions.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, timeout time.Duration) Response
}

// Prober reports whether a model is available to the runtime.
type Prober interface {
	Available(ctx context.Context, model string) bool
}

// Resolve returns primary when the runtime has it, otherwise fallback. An
// empty fallback always yields primary.
func Resolve(ctx context.Context, p Prober, primary, fallback string) string {
	if fallback == "" || fallback == primary {
		return primary
	}
	if p.Available(ctx, primary) {
		return primary
	}
	return fallback
}

func effectiveTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
