// Package config defines the runtime configuration: the IPFS RPC endpoint and
// its credentials, the public gateway, the event forwarder webhook, and the
// retry bounds of outbound fetches. It also provides validation, defaulting
// and YAML loading helpers.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIURL is the Infura IPFS RPC endpoint.
	DefaultAPIURL = "https://ipfs.infura.io:5001"
	// DefaultGatewayURL resolves CIDs to content over plain HTTP.
	DefaultGatewayURL = "https://ipfs.infura.io/ipfs/"
)

// Config holds every setting needed to build the storage, fetch and
// forwarder clients. Use Validate to fill implicit defaults and to check
// for malformed fields.
type Config struct {
	// IPFS configures the pinning service RPC client.
	IPFS IPFS `json:"ipfs" yaml:"ipfs"`
	// Forwarder configures the signed webhook notified after uploads (optional).
	Forwarder Forwarder `json:"forwarder" yaml:"forwarder"`
	// Retry bounds every fetch made through the resilient fetcher.
	Retry Retry `json:"retry" yaml:"retry"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
}

// IPFS describes the remote storage service. ProjectID and ProjectSecret are
// combined into a Basic authorization header; both may be empty for a local
// node without authentication.
type IPFS struct {
	APIURL        string        `json:"api_url" yaml:"api_url"`
	ProjectID     string        `json:"project_id" yaml:"project_id"`
	ProjectSecret string        `json:"project_secret" yaml:"project_secret"`
	GatewayURL    string        `json:"gateway_url" yaml:"gateway_url"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout"`
}

// Forwarder is the event-forwarder webhook endpoint and its shared secret.
type Forwarder struct {
	URL       string `json:"url" yaml:"url"`
	AuthToken string `json:"auth_token" yaml:"auth_token"`
}

// Retry bounds the resilient fetcher.
// A negative MaxAttempts disables outbound fetches entirely. A nil Delay
// means unset; an explicit zero retries without waiting.
type Retry struct {
	MaxAttempts int            `json:"max_attempts" yaml:"max_attempts"`
	Delay       *time.Duration `json:"delay" yaml:"delay"`
}

// DefaultRetryDelay is used when Retry.Delay is unset.
const DefaultRetryDelay = 2 * time.Second

// Duration returns a pointer to d, for filling Retry.Delay in code.
func Duration(d time.Duration) *time.Duration {
	return &d
}

// DelayOrDefault returns the configured delay, or DefaultRetryDelay when unset.
func (r Retry) DelayOrDefault() time.Duration {
	if r.Delay == nil {
		return DefaultRetryDelay
	}
	return *r.Delay
}

// Validate normalizes the configuration by applying implicit defaults for the
// IPFS API and gateway URLs, the IPFS timeout and the retry bounds, then checks
// that every URL is absolute http(s) and that a forwarder URL comes with a token.
func (c *Config) Validate() error {
	if c.IPFS.APIURL == "" {
		c.IPFS.APIURL = DefaultAPIURL
	}
	if c.IPFS.GatewayURL == "" {
		c.IPFS.GatewayURL = DefaultGatewayURL
	}
	if !strings.HasSuffix(c.IPFS.GatewayURL, "/") {
		c.IPFS.GatewayURL += "/"
	}
	if c.IPFS.Timeout == 0 {
		c.IPFS.Timeout = 60 * time.Second
	}
	c.Retry = c.Retry.WithDefaults()

	if err := checkHTTPURL("ipfs.api_url", c.IPFS.APIURL); err != nil {
		return err
	}
	if err := checkHTTPURL("ipfs.gateway_url", c.IPFS.GatewayURL); err != nil {
		return err
	}
	if c.IPFS.Timeout < 0 {
		return errors.New("ipfs.timeout must not be negative")
	}
	if (c.IPFS.ProjectID == "") != (c.IPFS.ProjectSecret == "") {
		return errors.New("ipfs.project_id and ipfs.project_secret must be set together")
	}
	if c.Forwarder.URL != "" {
		if err := checkHTTPURL("forwarder.url", c.Forwarder.URL); err != nil {
			return err
		}
		if c.Forwarder.AuthToken == "" {
			return errors.New("forwarder.auth_token is required when forwarder.url is set")
		}
	}
	if c.Retry.DelayOrDefault() < 0 {
		return errors.New("retry.delay must not be negative")
	}
	return nil
}

// WithDefaults returns a copy of r with unset values replaced by defaults:
//
//	MaxAttempts: 3  (when zero)
//	Delay:       2s (when nil)
func (r Retry) WithDefaults() Retry {
	rr := r
	if rr.MaxAttempts == 0 {
		rr.MaxAttempts = 3
	}
	if rr.Delay == nil {
		rr.Delay = Duration(DefaultRetryDelay)
	}
	return rr
}

// Load reads a YAML configuration file, rejecting unknown keys, and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func checkHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: unsupported scheme %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: missing host", field)
	}
	return nil
}
