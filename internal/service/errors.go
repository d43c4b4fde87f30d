package service

import (
	"context"
	"errors"
)

// Upstream failure kinds. Every one of them is recovered by falling back to
// the heuristic extractor; they only surface in logs and resolution records.
var (
	ErrNotConfigured     = errors.New("groq api key not configured")
	ErrUpstreamStatus    = errors.New("upstream returned non-success status")
	ErrMalformedEnvelope = errors.New("upstream envelope is not valid json")
	ErrMissingContent    = errors.New("upstream response has no message content")
	ErrMalformedContent  = errors.New("message content is not valid json")
	ErrInvalidIntent     = errors.New("message content is not an intent object")
)

// FailureStage names the step of the remote call that failed
func FailureStage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotConfigured):
		return "credentials"
	case errors.Is(err, ErrUpstreamStatus):
		return "status"
	case errors.Is(err, ErrMalformedEnvelope):
		return "envelope"
	case errors.Is(err, ErrMissingContent):
		return "content"
	case errors.Is(err, ErrMalformedContent):
		return "payload"
	case errors.Is(err, ErrInvalidIntent):
		return "normalize"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "transport"
	}
}
