package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts is the number of attempts made when Options are not customised.
	DefaultMaxAttempts = 3
	// DefaultDelay is the pause between two consecutive attempts.
	DefaultDelay = 2 * time.Second
)

// Options bounds the retry loop. Values are used verbatim: MaxAttempts <= 0
// makes every Fetch fail with ErrFetchExhausted without touching the network.
type Options struct {
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `json:"delay" yaml:"delay"`
}

// DefaultOptions returns three attempts spaced two seconds apart.
func DefaultOptions() Options {
	return Options{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// Request describes one logical call. The fetcher never mutates it; every
// attempt is built from a fresh copy of Body.
type Request struct {
	URL    string
	Method string
	Body   []byte
	Header http.Header
}

// NewJSONRequest serializes body to JSON and returns a Request carrying it
// with the matching content type. A nil body produces a request without payload.
func NewJSONRequest(method, url string, body any) (Request, error) {
	req := Request{
		URL:    url,
		Method: method,
		Header: make(http.Header),
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return Request{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.Body = b
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Option customises a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// WithTimer replaces the timer used to wait between attempts. A new timer is
// requested for every Fetch call so the factory may hand out fakes in tests.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(f *Fetcher) {
		f.newTimer = newTimer
	}
}

// Fetcher performs JSON requests with a bounded, sequential retry loop.
// A Fetcher holds no per-call state and is safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	opts     Options
	log      *zap.Logger
	newTimer func() backoff.Timer
}

// New returns a Fetcher using client for transport. A nil client falls back
// to http.DefaultClient.
func New(client *http.Client, opts Options, options ...Option) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &Fetcher{
		client: client,
		opts:   opts,
		log:    zap.L(),
	}
	for _, o := range options {
		o(f)
	}
	return f
}

// Options returns the retry bounds the fetcher was built with.
func (f *Fetcher) Options() Options {
	return f.opts
}

// Fetch issues req until it gets a 2xx response, then decodes the body into
// out (skipped when out is nil).
//
// Network errors and non-2xx statuses each consume one attempt. When the
// attempts run out the result is an *ExhaustedError; when ctx is done first it
// is a *CancelledError. A body that fails to decode after a successful status
// is returned immediately as a *DecodeError and is not retried.
func (f *Fetcher) Fetch(ctx context.Context, req Request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if req.URL == "" {
		return errors.New("fetch: empty url")
	}
	if f.opts.MaxAttempts <= 0 {
		return &ExhaustedError{URL: req.URL}
	}
	if err := ctx.Err(); err != nil {
		return &CancelledError{URL: req.URL, Err: err}
	}

	attempts := 0
	operation := func() error {
		attempts++
		err := f.attempt(ctx, req, out)
		if err == nil {
			return nil
		}
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return backoff.Permanent(err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return backoff.Permanent(cerr)
		}
		f.log.Warn("fetch attempt failed",
			zap.String("url", req.URL),
			zap.Int("attempt", attempts),
			zap.Int("max_attempts", f.opts.MaxAttempts),
			zap.Error(err))
		return err
	}
	notify := func(err error, wait time.Duration) {
		f.log.Debug("retrying fetch", zap.String("url", req.URL), zap.Duration("wait", wait))
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.opts.Delay), uint64(f.opts.MaxAttempts-1)),
		ctx,
	)
	var timer backoff.Timer
	if f.newTimer != nil {
		timer = f.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, timer)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return &CancelledError{URL: req.URL, Attempts: attempts, Err: ctx.Err()}
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return err
	}
	f.log.Error("fetch exhausted", zap.String("url", req.URL), zap.Int("attempts", attempts), zap.Error(err))
	return &ExhaustedError{URL: req.URL, Attempts: attempts, Err: err}
}

// attempt runs a single request/response cycle.
func (f *Fetcher) attempt(ctx context.Context, req Request, out any) (err error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			f.log.Debug("failed to close response body", zap.String("url", req.URL), zap.Error(cerr))
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DecodeError{URL: req.URL, Err: err}
	}
	return nil
}

// FetchJSON is a typed convenience around Fetcher.Fetch.
func FetchJSON[T any](ctx context.Context, f *Fetcher, req Request) (T, error) {
	var out T
	if err := f.Fetch(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
