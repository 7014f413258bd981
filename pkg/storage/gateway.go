package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// gatewayPath is the path segment public gateways serve content under.
const gatewayPath = "/ipfs/"

// GetGatewayFile fetches a blob from an HTTP gateway.
//
// It performs a GET to {gatewayURL}{cid} and returns the response body.
// The CID is concatenated directly to gatewayURL, so the base must end with
// a slash. Non-2xx responses are reported as errors.
func GetGatewayFile(ctx context.Context, client *http.Client, gatewayURL, cid string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	zap.L().Debug("getting gateway file", zap.String("cid", cid))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gatewayURL+cid, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			zap.L().Debug("failed to close gateway response", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned status %d for %s", resp.StatusCode, cid)
	}
	return io.ReadAll(resp.Body)
}

// ReadFile fetches content identified by ref. Plain http(s) links are read
// from the gateway they point at (they must contain an /ipfs/ segment);
// anything else is treated as a CID or ipfs:// URL and read through Cat.
func (c *Client) ReadFile(ctx context.Context, ref string) ([]byte, error) {
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return c.Cat(ctx, ref)
	}

	i := strings.Index(ref, gatewayPath)
	if i < 0 {
		return nil, errors.New("gateway link has no /ipfs/ segment: " + ref)
	}
	base, id := ref[:i+len(gatewayPath)], ref[i+len(gatewayPath):]
	if id == "" {
		return nil, errors.New("gateway link has no content identifier: " + ref)
	}

	var client *http.Client
	if c != nil {
		client = c.http
	}
	return GetGatewayFile(ctx, client, base, id)
}
