package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"github.com/shamank/pinkit/pkg/config"
	"go.uber.org/zap"
)

// ErrClientNotConfigured is returned when a Client was built without an RPC handle.
var ErrClientNotConfigured = errors.New("ipfs client not configured")

// Client is an authenticated handle to the remote storage service. It is
// created once by the caller and shared; all methods are safe for
// concurrent use.
type Client struct {
	api        *rpc.HttpApi
	http       *http.Client
	gatewayURL string
	log        *zap.Logger
}

// NewClient builds a Client from the IPFS section of the configuration.
// cfg is expected to be validated already. A nil log falls back to zap.L().
func NewClient(cfg config.IPFS, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.L()
	}
	api, err := NewIPFSClient(cfg.APIURL, cfg.ProjectID, cfg.ProjectSecret, cfg.Timeout)
	if err != nil {
		log.Error("connection failed to IPFS", zap.String("url", cfg.APIURL), zap.Error(err))
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		api:        api,
		http:       &http.Client{Timeout: timeout},
		gatewayURL: cfg.GatewayURL,
		log:        log,
	}, nil
}

// GatewayBase returns the configured HTTP gateway prefix.
func (c *Client) GatewayBase() string {
	return c.gatewayURL
}

// Link maps an ipfs:// URL onto the configured public gateway.
func (c *Client) Link(ipfsURL string) string {
	return GatewayURL(ipfsURL, c.gatewayURL)
}

// BasicAuth builds the Authorization header value for a project ID/secret pair.
func BasicAuth(projectID, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(projectID+":"+secret))
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url. When
// projectID is non-empty every request carries a Basic authorization header.
func NewIPFSClient(url, projectID, secret string, timeout time.Duration) (*rpc.HttpApi, error) {
	if url == "" {
		return nil, errors.New("ipfs api url is required")
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: http.DefaultTransport,
	}
	if projectID != "" {
		httpClient.Transport = &authTransport{
			base:          http.DefaultTransport,
			authorization: BasicAuth(projectID, secret),
		}
	}
	api, err := rpc.NewURLApiWithClient(strings.TrimSuffix(url, "/"), httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create ipfs client: %w", err)
	}
	return api, nil
}

// authTransport adds a fixed Authorization header to every request.
type authTransport struct {
	base          http.RoundTripper
	authorization string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", t.authorization)
	return t.base.RoundTrip(r)
}

// parseRef accepts a bare CID, an ipfs:// URL or a gateway link and returns
// the parsed content identifier.
func (c *Client) parseRef(ref string) (cid.Cid, error) {
	s := strings.TrimSpace(ref)
	if c.gatewayURL != "" && strings.HasPrefix(s, c.gatewayURL) {
		s = strings.TrimPrefix(s, c.gatewayURL)
	}
	s = strings.TrimSuffix(CIDString(s), "/")
	id, err := cid.Decode(s)
	if err != nil {
		c.logger().Error("error parsing the ipfs hash", zap.String("ref", ref), zap.Error(err))
		return cid.Undef, fmt.Errorf("invalid content identifier %q: %w", ref, err)
	}
	return id, nil
}
