package sdk

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Healthcheck reports the version of the IPFS node, which proves the RPC
// endpoint is reachable and the credentials are accepted.
func (c *Core) Healthcheck(ctx context.Context) (string, error) {
	v, err := c.storage.Version(ctx)
	if err != nil {
		c.log.Warn("ipfs node health check failed", zap.String("url", c.cfg.IPFS.APIURL), zap.Error(err))
		return "", fmt.Errorf("ipfs heartbeat failed: %w", err)
	}
	c.log.Debug("ipfs node healthy", zap.String("version", v))
	return v, nil
}
