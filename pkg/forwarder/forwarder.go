// Package forwarder posts signed event notifications to the event forwarder
// webhook through the resilient fetcher.
package forwarder

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shamank/pinkit/pkg/fetch"
	"github.com/shamank/pinkit/pkg/model"
	"github.com/shamank/pinkit/pkg/sign"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no forwarder URL was configured.
var ErrNotConfigured = errors.New("event forwarder not configured")

// NewRequest builds the POST request for body: the JSON payload, its content
// type, and the HMAC-SHA256 signature of those exact bytes keyed by token.
func NewRequest(url, token string, body any) (fetch.Request, error) {
	payload, signature, err := sign.Sign(body, token)
	if err != nil {
		return fetch.Request{}, err
	}
	header := make(http.Header)
	header.Set("content-type", "application/json")
	header.Set(sign.Header, signature)
	return fetch.Request{
		URL:    url,
		Method: http.MethodPost,
		Body:   payload,
		Header: header,
	}, nil
}

// Client sends events to a single forwarder endpoint.
type Client struct {
	url     string
	token   string
	fetcher *fetch.Fetcher
	log     *zap.Logger
}

// New returns a Client for url signing with token. Requests go through f,
// so they inherit its retry bounds.
func New(url, token string, f *fetch.Fetcher, log *zap.Logger) *Client {
	if log == nil {
		log = zap.L()
	}
	return &Client{url: url, token: token, fetcher: f, log: log}
}

// Send posts body and decodes the JSON answer into out (nil to discard it).
func (c *Client) Send(ctx context.Context, body any, out any) error {
	if c == nil || c.url == "" || c.fetcher == nil {
		return ErrNotConfigured
	}
	req, err := NewRequest(c.url, c.token, body)
	if err != nil {
		return err
	}
	if err := c.fetcher.Fetch(ctx, req, out); err != nil {
		c.log.Error("event forwarding failed", zap.String("url", c.url), zap.Error(err))
		return fmt.Errorf("forward event: %w", err)
	}
	return nil
}

// NotifyImageUpdate tells the forwarder that new content is available at
// ipfsURL and returns the decoded acknowledgement.
func (c *Client) NotifyImageUpdate(ctx context.Context, ipfsURL string) (map[string]any, error) {
	var ack map[string]any
	if err := c.Send(ctx, model.ImageUpdate{IPFSURL: ipfsURL}, &ack); err != nil {
		return nil, err
	}
	c.log.Debug("image update forwarded", zap.String("ipfs_url", ipfsURL))
	return ack, nil
}
