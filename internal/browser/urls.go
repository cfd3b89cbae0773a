package browser

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// newWindowTag generates the opaque tag appended to the initialization URL.
// The tag lets us find our own initialization page among any number of tabs,
// including other concurrently initializing windows in the same browser.
func newWindowTag() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// taggedInitializationURL appends the window tag to the initialization URL.
func taggedInitializationURL(initURL, tag string) string {
	sep := "?"
	if strings.Contains(initURL, "?") {
		sep = "&"
	}
	return initURL + sep + "t=" + tag
}

// sidePanelURL is the address of the extension's side panel page for one
// browser window. Its presence among the browser's targets is the signal
// that the handshake completed end to end.
func sidePanelURL(extensionID, browserWindowID string) string {
	return fmt.Sprintf("chrome-extension://%s/sidepanel.html?browserWindowId=%s", extensionID, browserWindowID)
}
