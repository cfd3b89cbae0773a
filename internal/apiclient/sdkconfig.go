package apiclient

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NaradaAI/narada-go/api/schemas"
)

// FetchSDKConfig retrieves the server-declared SDK compatibility floors. A
// failed fetch returns (nil, nil): the check is advisory and must never block
// a client that can otherwise work, e.g. behind a partial network outage.
func (c *Client) FetchSDKConfig(ctx context.Context) (*schemas.SDKConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var cfg schemas.SDKConfig
	if _, err := c.doJSON(ctx, "GET", "/sdk/config", nil, &cfg); err != nil {
		c.logger.Warn("failed to fetch SDK config", zap.Error(err))
		return nil, nil
	}
	return &cfg, nil
}
