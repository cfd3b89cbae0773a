package narada

import "github.com/NaradaAI/narada-go/api/schemas"

// Error types surfaced by the SDK, re-exported so callers can branch with
// errors.As without importing api/schemas.
type (
	// TimeoutError is a generic operation deadline: connect retries
	// exhausted, handshake marker never appeared, or a server-side soft
	// timeout on an extension action.
	TimeoutError = schemas.TimeoutError
	// AgentTimeoutError means a dispatched agent task did not reach a
	// terminal status within the caller's budget.
	AgentTimeoutError = schemas.AgentTimeoutError
	// UnsupportedBrowserError means the attached browser cannot run the
	// extension.
	UnsupportedBrowserError = schemas.UnsupportedBrowserError
	// ExtensionMissingError means the extension is not installed.
	ExtensionMissingError = schemas.ExtensionMissingError
	// ExtensionUnauthenticatedError means the extension is installed but not
	// signed in.
	ExtensionUnauthenticatedError = schemas.ExtensionUnauthenticatedError
	// InitializationError is the catch-all handshake failure.
	InitializationError = schemas.InitializationError
	// ApplicationError carries a server-reported failure message.
	ApplicationError = schemas.ApplicationError
	// HTTPStatusError is a non-2xx API answer with no domain mapping.
	HTTPStatusError = schemas.HTTPStatusError
)
