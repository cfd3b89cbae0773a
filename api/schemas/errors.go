package schemas

import (
	"fmt"
	"time"
)

// -- Error Taxonomy --
// Every failure the SDK can surface maps onto exactly one of these types so
// that callers can branch with errors.As without string matching.

// TimeoutError indicates that an operation exceeded its deadline: CDP connect
// retries exhausted, a DOM marker wait that never resolved, or a server-side
// soft timeout (HTTP 504) on an extension action.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "narada: operation timed out"
	}
	return "narada: " + e.Message
}

// AgentTimeoutError indicates that a dispatched agent task did not reach a
// terminal status within the caller-supplied budget. This is distinct from a
// transport timeout: the task may still be running server-side.
type AgentTimeoutError struct {
	Timeout time.Duration
}

func (e *AgentTimeoutError) Error() string {
	return fmt.Sprintf("narada: agent did not finish within %s", e.Timeout)
}

// UnsupportedBrowserError indicates the attached browser is not a supported
// browser or version.
type UnsupportedBrowserError struct{}

func (e *UnsupportedBrowserError) Error() string {
	return "narada: unsupported browser"
}

// ExtensionMissingError indicates the Narada extension is not installed in
// the target browser.
type ExtensionMissingError struct{}

func (e *ExtensionMissingError) Error() string {
	return "narada: extension is not installed"
}

// ExtensionUnauthenticatedError indicates the extension is installed but the
// user has not signed in.
type ExtensionUnauthenticatedError struct{}

func (e *ExtensionUnauthenticatedError) Error() string {
	return "narada: extension is not signed in"
}

// InitializationError is the catch-all for handshake failures that do not fit
// a more specific type, e.g. an empty browser-window-id marker or an explicit
// initialization-error indicator rendered by the extension.
type InitializationError struct {
	Message string
}

func (e *InitializationError) Error() string {
	if e.Message == "" {
		return "narada: initialization failed"
	}
	return "narada: initialization failed: " + e.Message
}

// ApplicationError carries a server-reported failure (status "error") for a
// dispatch or extension action call.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	return e.Message
}

// HTTPStatusError is returned when the API answers with a non-2xx status that
// has no domain-specific mapping.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("narada: %s returned %s", e.URL, e.Status)
}
