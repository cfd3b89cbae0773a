package apiclient

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/api/schemas"
)

// cloudSessionStartupTimeout bounds session creation; provisioning a fresh
// browser container can take a while.
const cloudSessionStartupTimeout = 3 * time.Minute

type createCloudSessionBody struct {
	SessionName    string `json:"session_name,omitempty"`
	SessionTimeout int64  `json:"session_timeout,omitempty"` // seconds
}

type stopCloudSessionBody struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status,omitempty"`
}

// CreateCloudBrowserSession provisions a managed browser in the Narada cloud
// and returns its pre-authorized CDP endpoint plus the login URL that seeds
// the extension handshake.
func (c *Client) CreateCloudBrowserSession(ctx context.Context, sessionName string, sessionTimeout time.Duration) (*schemas.CloudBrowserSession, error) {
	ctx, cancel := context.WithTimeout(ctx, cloudSessionStartupTimeout)
	defer cancel()

	body := createCloudSessionBody{SessionName: sessionName}
	if sessionTimeout > 0 {
		body.SessionTimeout = int64(sessionTimeout / time.Second)
	}

	var session schemas.CloudBrowserSession
	if _, err := c.doJSON(ctx, "POST", "/cloud-browser/create-cloud-browser-session", body, &session); err != nil {
		return nil, err
	}
	c.logger.Info("cloud browser session created", zap.String("session_id", session.SessionID))
	return &session, nil
}

// StopCloudBrowserSession terminates a cloud browser session. The status is
// reported to the backend for bookkeeping ("completed", or "failed" when the
// session never finished initializing).
func (c *Client) StopCloudBrowserSession(ctx context.Context, sessionID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body := stopCloudSessionBody{SessionID: sessionID, Status: status}
	_, err := c.doJSON(ctx, "POST", "/cloud-browser/stop-cloud-browser-session", body, nil)
	if err != nil {
		return err
	}
	c.logger.Info("cloud browser session stopped",
		zap.String("session_id", sessionID),
		zap.String("status", status))
	return nil
}
