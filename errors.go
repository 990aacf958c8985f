package resqtalk

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to check.
var (
	ErrToolNotFound  = errors.New("tool not found")
	ErrAmbiguousTool = errors.New("ambiguous tool name")
	ErrSessionBusy   = errors.New("a prompt is already in flight")
	ErrRecorderState = errors.New("invalid recorder state transition")
	ErrValidation    = errors.New("validation failed")
)

// ClientError reports invalid tool input (bad JSON, schema violation).
// Its message is safe to surface to the model for self-correction; it never
// carries stack traces or internals. Err optionally wraps a sentinel
// (e.g. ErrValidation) for errors.Is/errors.As.
type ClientError struct {
	Reason string
	Err    error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("invalid tool input: %s", e.Reason)
}

func (e *ClientError) Unwrap() error { return e.Err }

// SystemError represents an internal failure during dispatch or tool
// execution (including recovered panics).
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string {
	return "internal error during tool dispatch"
}

func (e *SystemError) Unwrap() error { return e.Err }

// TransportError reports a failed exchange with the backend: a non-OK HTTP
// status or a network error mid-stream. Partial holds whatever reply text
// was accumulated before the failure so the caller can keep it on display.
type TransportError struct {
	Status  int    // HTTP status, 0 when the request never completed
	Partial string // reply text gathered before the failure
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("backend request failed with status %d", e.Status)
	case e.Partial != "":
		return fmt.Sprintf("stream failed after %d chars: %v", len(e.Partial), e.Err)
	default:
		return fmt.Sprintf("backend request failed: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsClientError returns true if err is or wraps a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// IsTransportError returns true if err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// wrapJSONParseError returns a ClientError for JSON unmarshal failures so
// typed tools report parse errors consistently.
func wrapJSONParseError(err error) error {
	return &ClientError{Reason: "json parse error: " + err.Error()}
}

// panicError wraps a recovered panic value for SystemError.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
