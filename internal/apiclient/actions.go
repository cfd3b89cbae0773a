package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/api/schemas"
)

type extensionActionBody struct {
	Action          json.RawMessage `json:"action"`
	BrowserWindowID string          `json:"browserWindowId"`
	// Soft timeout in whole seconds, enforced server-side. Omitted when the
	// caller passes no budget.
	Timeout *int64 `json:"timeout,omitempty"`
}

// RunExtensionAction relays one action envelope to the extension through the
// API and returns the raw data payload of a successful response. A server
// 504 means the soft timeout elapsed and maps to *schemas.TimeoutError; a
// response with status "error" maps to *schemas.ApplicationError. The HTTP
// round trip itself is not deadline-bounded beyond ctx, because the server
// owns the timeout.
func (c *Client) RunExtensionAction(ctx context.Context, windowID string, action schemas.ExtensionAction, timeout time.Duration) (string, error) {
	raw, err := json.Marshal(action)
	if err != nil {
		return "", fmt.Errorf("encoding %s action: %w", action.ActionName(), err)
	}

	body := extensionActionBody{
		Action:          raw,
		BrowserWindowID: windowID,
	}
	if timeout > 0 {
		secs := int64(timeout / time.Second)
		body.Timeout = &secs
	}

	c.logger.Debug("running extension action",
		zap.String("action", action.ActionName()),
		zap.String("browser_window_id", windowID))

	var resp schemas.ExtensionActionResponse
	if _, err := c.doJSON(ctx, "POST", "/extension-actions", body, &resp); err != nil {
		var statusErr *schemas.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusGatewayTimeout {
			return "", &schemas.TimeoutError{Message: action.ActionName() + " action timed out"}
		}
		return "", err
	}

	if resp.Status == "error" {
		return "", &schemas.ApplicationError{Message: resp.Error}
	}
	return resp.Data, nil
}
