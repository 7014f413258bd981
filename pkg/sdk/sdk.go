package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shamank/pinkit/pkg/config"
	"github.com/shamank/pinkit/pkg/event"
	"github.com/shamank/pinkit/pkg/fetch"
	"github.com/shamank/pinkit/pkg/forwarder"
	"github.com/shamank/pinkit/pkg/storage"
	"go.uber.org/zap"
)

// Option customises Core construction.
type Option func(*Core)

// WithLogger makes Core log to log instead of building its own console logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Core) {
		c.log = log
	}
}

// Core owns every client built from one Config. It is created once at
// startup and shared; all accessors are safe for concurrent use.
type Core struct {
	cfg       *config.Config
	log       *zap.Logger
	ownLog    bool
	storage   *storage.Client
	fetcher   *fetch.Fetcher
	forwarder *forwarder.Client
	events    *event.Tracker
}

// Publication is the outcome of PublishImage.
type Publication struct {
	// IPFSURL is the ipfs:// URL of the stored content.
	IPFSURL string
	// GatewayURL is the same content behind the configured HTTP gateway.
	GatewayURL string
	// Response is the forwarder acknowledgement; nil when no forwarder is configured.
	Response map[string]any
}

// NewLogger builds the console logger used when no logger is supplied:
// info level, or debug level when debug is set.
func NewLogger(debug bool) (*zap.Logger, error) {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	return c.Build()
}

// New validates cfg, applies its defaults and builds the storage client,
// the resilient fetcher and, when a forwarder URL is set, the forwarder client.
func New(cfg *config.Config, opts ...Option) (*Core, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Core{cfg: cfg}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		log, err := NewLogger(cfg.Debug)
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		c.log = log
		c.ownLog = true
	}

	st, err := storage.NewClient(cfg.IPFS, c.log.Named("storage"))
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}
	c.storage = st

	c.fetcher = fetch.New(
		&http.Client{Timeout: cfg.IPFS.Timeout},
		fetch.Options{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.DelayOrDefault()},
		fetch.WithLogger(c.log.Named("fetch")),
	)
	if cfg.Forwarder.URL != "" {
		c.forwarder = forwarder.New(cfg.Forwarder.URL, cfg.Forwarder.AuthToken, c.fetcher, c.log.Named("forwarder"))
	}
	c.events = event.NewTracker(c.log)

	c.log.Debug("pinkit initialised",
		zap.String("ipfs_api", cfg.IPFS.APIURL),
		zap.String("gateway", cfg.IPFS.GatewayURL),
		zap.Bool("forwarder", c.forwarder != nil),
		zap.Int("max_attempts", cfg.Retry.MaxAttempts),
		zap.Duration("delay", cfg.Retry.DelayOrDefault()))
	return c, nil
}

// Config returns the validated configuration.
func (c *Core) Config() *config.Config { return c.cfg }

// Storage returns the IPFS storage client.
func (c *Core) Storage() *storage.Client { return c.storage }

// Fetcher returns the resilient fetcher bounded by the retry settings.
func (c *Core) Fetcher() *fetch.Fetcher { return c.fetcher }

// Forwarder returns the event forwarder client, or nil when none is configured.
func (c *Core) Forwarder() *forwarder.Client { return c.forwarder }

// Events returns the analytics tracker.
func (c *Core) Events() *event.Tracker { return c.events }

// Logger returns the logger shared by every client.
func (c *Core) Logger() *zap.Logger { return c.log }

// PublishImage stores the document at sourceURL, then notifies the forwarder
// (when configured) that it is available under its ipfs:// URL.
func (c *Core) PublishImage(ctx context.Context, sourceURL string) (*Publication, error) {
	ipfsURL, err := c.storage.AddURL(ctx, sourceURL)
	if err != nil {
		c.events.Track("publish_image", event.Params{ErrorReason: "upload", ErrorMessage: err.Error()})
		return nil, fmt.Errorf("publish %s: %w", sourceURL, err)
	}
	pub := &Publication{IPFSURL: ipfsURL, GatewayURL: c.storage.Link(ipfsURL)}

	if c.forwarder != nil {
		ack, err := c.forwarder.NotifyImageUpdate(ctx, ipfsURL)
		if err != nil {
			c.events.Track("publish_image", event.Params{ErrorReason: "forward", ErrorMessage: err.Error()})
			return pub, fmt.Errorf("publish %s: %w", sourceURL, err)
		}
		pub.Response = ack
	}
	c.events.Track("publish_image", event.Params{})
	c.log.Info("image published", zap.String("ipfs_url", pub.IPFSURL), zap.String("gateway_url", pub.GatewayURL))
	return pub, nil
}

// Close flushes the logger if Core built it.
func (c *Core) Close() {
	if c.ownLog {
		_ = c.log.Sync()
	}
}
