// Package browser owns the lifecycle of the automated browser window: it
// launches or attaches to a Chrome process over the DevTools protocol, drives
// the extension's initialization handshake, and hands back a live Connection
// carrying the browser window ID that the API uses to address the window.
package browser

import (
	"context"
	"time"

	"github.com/NaradaAI/narada-go/api/schemas"
)

// Markers the initialization page renders. Exactly one of these appears once
// the extension has made up its mind about the window.
const (
	markerBrowserWindowID        = "#narada-browser-window-id"
	markerUnsupportedBrowser     = "#narada-unsupported-browser"
	markerExtensionMissing       = "#narada-extension-missing"
	markerExtensionUnauthedState = "#narada-extension-unauthenticated"
	markerInitializationError    = "#narada-initialization-error"
)

// Outcome is the result of the marker race on the initialization page.
type Outcome int

const (
	OutcomeReady Outcome = iota
	OutcomeUnsupportedBrowser
	OutcomeExtensionMissing
	OutcomeExtensionUnauthenticated
	OutcomeInitializationError
)

// markerWait pairs an outcome with a blocking predicate that resolves when
// the corresponding DOM marker attaches. Wait must return nil exactly when
// the marker appeared, and honor cancellation of its context.
type markerWait struct {
	Outcome Outcome
	Wait    func(ctx context.Context) error
}

// raceMarkers runs all waits concurrently and returns the outcome of the
// first one to resolve. Losers are cancelled. A wait that fails with a
// non-cancellation error is retried until the deadline; transient DevTools
// hiccups while the page is still settling must not decide the race. If no
// marker attaches within timeout, a *schemas.TimeoutError is returned.
func raceMarkers(ctx context.Context, timeout time.Duration, waits []markerWait) (Outcome, error) {
	raceCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	winner := make(chan Outcome, len(waits))
	for _, w := range waits {
		go func(w markerWait) {
			for {
				err := w.Wait(raceCtx)
				if err == nil {
					winner <- w.Outcome
					return
				}
				// Only the race ending abandons a marker; a predicate error
				// that merely wraps a cancellation of its own is still
				// transient from the race's point of view.
				if raceCtx.Err() != nil {
					return
				}
				select {
				case <-raceCtx.Done():
					return
				case <-time.After(50 * time.Millisecond):
				}
			}
		}(w)
	}

	select {
	case outcome := <-winner:
		return outcome, nil
	case <-raceCtx.Done():
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &schemas.TimeoutError{Message: "timed out waiting for browser window ID"}
	}
}

// outcomeError maps a non-ready outcome to its error type.
func outcomeError(o Outcome) error {
	switch o {
	case OutcomeUnsupportedBrowser:
		return &schemas.UnsupportedBrowserError{}
	case OutcomeExtensionMissing:
		return &schemas.ExtensionMissingError{}
	case OutcomeExtensionUnauthenticated:
		return &schemas.ExtensionUnauthenticatedError{}
	case OutcomeInitializationError:
		return &schemas.InitializationError{}
	default:
		return nil
	}
}
