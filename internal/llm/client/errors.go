package llmclient

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an upstream call failed.
type ErrorKind string

const (
	KindUnreachable       ErrorKind = "unreachable"
	KindTimeout           ErrorKind = "timeout"
	KindBadStatus         ErrorKind = "bad_status"
	KindMalformedResponse ErrorKind = "malformed_response"
	KindEmptyContent      ErrorKind = "empty_content"
	KindCanceled          ErrorKind = "canceled"
)

// maxErrorBody caps how much of a non-2xx body is kept on the error.
const maxErrorBody = 2048

// UpstreamError is returned for every failed call to a chat backend. It names
// the backend and URL so an operator can tell which server misbehaved.
type UpstreamError struct {
	Backend    string
	URL        string
	Kind       ErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindBadStatus:
		return fmt.Sprintf("%s server error (%d) at %s: %s", e.Backend, e.StatusCode, e.URL, e.Body)
	case KindEmptyContent:
		return fmt.Sprintf("invalid response from %s server at %s: missing generated content", e.Backend, e.URL)
	case KindMalformedResponse:
		return fmt.Sprintf("invalid JSON response from %s server at %s: %v", e.Backend, e.URL, e.Err)
	case KindCanceled:
		return fmt.Sprintf("%s request to %s canceled: %v", e.Backend, e.URL, e.Err)
	case KindTimeout:
		return fmt.Sprintf("%s server at %s timed out: %v", e.Backend, e.URL, e.Err)
	default:
		return fmt.Sprintf("failed to reach %s server at %s: %v", e.Backend, e.URL, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Temporary reports whether resubmitting the same request may succeed.
// Everything except cancellation and a 4xx status other than 408/429 is
// considered transient.
func (e *UpstreamError) Temporary() bool {
	if e.Kind == KindCanceled {
		return false
	}
	if e.Kind != KindBadStatus {
		return true
	}
	if e.StatusCode == 408 || e.StatusCode == 429 {
		return true
	}
	return e.StatusCode >= 500
}

// IsUpstream reports whether err came from a chat backend.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

func truncateBody(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return string(b)
}
