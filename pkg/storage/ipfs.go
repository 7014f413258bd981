package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"os"

	"github.com/ipfs/boxo/files"
	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"github.com/shamank/pinkit/pkg/model"
	"go.uber.org/zap"
)

// ErrContentMismatch is returned by Cat when raw content does not hash to
// the requested CID.
var ErrContentMismatch = errors.New("content does not match its content identifier")

// Add stores the content read from r and returns its ipfs:// URL.
// The node pins added content by default.
func (c *Client) Add(ctx context.Context, r io.Reader) (string, error) {
	if c == nil || c.api == nil {
		return "", ErrClientNotConfigured
	}

	var res model.AddResult
	err := c.api.Request("add").
		Option("pin", true).
		FileBody(r).
		Exec(ctx, &res)
	if err != nil {
		c.logger().Error("error uploading to ipfs", zap.Error(err))
		return "", fmt.Errorf("ipfs add failed: %w", err)
	}
	if res.Hash == "" {
		return "", errors.New("ipfs add returned no hash")
	}

	c.logger().Debug("successfully uploaded to IPFS", zap.String("hash", res.Hash), zap.String("size", res.Size))
	return FromCID(res.Hash), nil
}

// AddBytes stores data and returns its ipfs:// URL.
func (c *Client) AddBytes(ctx context.Context, data []byte) (string, error) {
	return c.Add(ctx, bytes.NewReader(data))
}

// UploadJSON serializes data to JSON and stores it.
// Returns the IPFS URI (ipfs://<hash>) on success.
func (c *Client) UploadJSON(ctx context.Context, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		c.logger().Error("error marshaling data to json", zap.Error(err))
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return c.Add(ctx, bytes.NewReader(jsonData))
}

// AddURL streams the document at sourceURL into the storage node and
// returns its ipfs:// URL. The source is downloaded with ctx and the client
// timeout while the upload request is being written; a non-2xx source
// status aborts before anything is sent to the node.
func (c *Client) AddURL(ctx context.Context, sourceURL string) (string, error) {
	if c == nil || c.api == nil {
		return "", ErrClientNotConfigured
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", fmt.Errorf("invalid source url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid source url %q: unsupported scheme", sourceURL)
	}
	c.logger().Debug("adding remote content", zap.String("source", sourceURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch source %s: %w", sourceURL, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger().Debug("error closing source body", zap.String("source", sourceURL), zap.Error(err))
		}
	}(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("failed to fetch source %s: status %d", sourceURL, resp.StatusCode)
	}
	return c.Add(ctx, resp.Body)
}

// AddFile stores the regular file at path and returns its ipfs:// URL.
func (c *Client) AddFile(ctx context.Context, path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	node, err := files.NewSerialFile(path, false, st)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer node.Close()

	f := files.ToFile(node)
	if f == nil {
		return "", fmt.Errorf("%s is not a regular file", path)
	}
	return c.Add(ctx, f)
}

// Pin asks the node to retain the content referenced by ref, which may be a
// bare CID, an ipfs:// URL or a gateway link.
func (c *Client) Pin(ctx context.Context, ref string) (cid.Cid, error) {
	if c == nil || c.api == nil {
		return cid.Undef, ErrClientNotConfigured
	}
	id, err := c.parseRef(ref)
	if err != nil {
		return cid.Undef, err
	}

	var res struct {
		Pins []string `json:"Pins"`
	}
	if err := c.api.Request("pin/add", id.String()).Option("recursive", true).Exec(ctx, &res); err != nil {
		c.logger().Error("error pinning content", zap.String("cid", id.String()), zap.Error(err))
		return cid.Undef, fmt.Errorf("ipfs pin add %s failed: %w", id, err)
	}
	return firstPin(res.Pins, id), nil
}

// Unpin removes the recursive pin on ref and returns the unpinned CID.
func (c *Client) Unpin(ctx context.Context, ref string) (cid.Cid, error) {
	if c == nil || c.api == nil {
		return cid.Undef, ErrClientNotConfigured
	}
	id, err := c.parseRef(ref)
	if err != nil {
		return cid.Undef, err
	}

	var res struct {
		Pins []string `json:"Pins"`
	}
	if err := c.api.Request("pin/rm", id.String()).Exec(ctx, &res); err != nil {
		c.logger().Error("error removing pin", zap.String("cid", id.String()), zap.Error(err))
		return cid.Undef, fmt.Errorf("ipfs pin rm %s failed: %w", id, err)
	}
	return firstPin(res.Pins, id), nil
}

// firstPin returns the first CID echoed back by a pin command, or fallback
// when the node echoed nothing parseable.
func firstPin(pins []string, fallback cid.Cid) cid.Cid {
	if len(pins) == 0 {
		return fallback
	}
	id, err := cid.Decode(pins[0])
	if err != nil {
		return fallback
	}
	return id
}

// pinLsRecord is one object of the streamed `pin/ls` output.
type pinLsRecord struct {
	Cid  string `json:"Cid"`
	Type string `json:"Type"`
	Name string `json:"Name"`
}

// Pins lists the pins held by the node as a lazy sequence. typ restricts
// the listing to one pin type; the empty value lists every pin. The request
// is sent when iteration starts and closed when the consumer stops. A decode
// failure is yielded once as an error and ends the sequence.
func (c *Client) Pins(ctx context.Context, typ model.PinType) iter.Seq2[model.Pin, error] {
	return func(yield func(model.Pin, error) bool) {
		if c == nil || c.api == nil {
			yield(model.Pin{}, ErrClientNotConfigured)
			return
		}

		req := c.api.Request("pin/ls").Option("stream", true)
		if typ != "" {
			req = req.Option("type", string(typ))
		}
		resp, err := req.Send(ctx)
		if err != nil {
			c.logger().Error("error listing pins", zap.Error(err))
			yield(model.Pin{}, fmt.Errorf("ipfs pin ls failed: %w", err))
			return
		}
		defer func(resp *rpc.Response) {
			if err := resp.Close(); err != nil {
				c.logger().Debug("error closing ipfs response", zap.Error(err))
			}
		}(resp)
		if resp.Error != nil {
			yield(model.Pin{}, fmt.Errorf("ipfs pin ls failed: %w", resp.Error))
			return
		}

		dec := json.NewDecoder(resp.Output)
		for {
			var rec pinLsRecord
			if err := dec.Decode(&rec); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				yield(model.Pin{}, fmt.Errorf("failed to decode pin record: %w", err))
				return
			}
			p, err := rec.pin()
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}

func (r pinLsRecord) pin() (model.Pin, error) {
	id, err := cid.Decode(r.Cid)
	if err != nil {
		return model.Pin{}, fmt.Errorf("invalid pin cid %q: %w", r.Cid, err)
	}
	typ, err := model.ParsePinType(r.Type)
	if err != nil {
		return model.Pin{}, err
	}
	return model.Pin{CID: id, Type: typ, Name: r.Name}, nil
}

// Cat reads the content referenced by ref through the RPC API. Content
// addressed by a raw-codec CID is re-hashed and must match the requested
// identifier; other codecs wrap the bytes in DAG nodes and are returned
// unverified.
func (c *Client) Cat(ctx context.Context, ref string) ([]byte, error) {
	if c == nil || c.api == nil {
		return nil, ErrClientNotConfigured
	}
	id, err := c.parseRef(ref)
	if err != nil {
		return nil, err
	}
	c.logger().Debug("hash used to retrieve from IPFS", zap.String("cid", id.String()))

	resp, err := c.api.Request("cat", id.String()).Send(ctx)
	if err != nil {
		c.logger().Error("error executing the cat command in ipfs", zap.String("cid", id.String()), zap.Error(err))
		return nil, fmt.Errorf("ipfs cat %s failed: %w", id, err)
	}
	defer func(resp *rpc.Response) {
		if err := resp.Close(); err != nil {
			c.logger().Debug("error closing response in ipfs", zap.String("cid", id.String()), zap.Error(err))
		}
	}(resp)
	if resp.Error != nil {
		c.logger().Error("error executing the cat command in ipfs", zap.String("cid", id.String()), zap.Error(resp.Error))
		return nil, fmt.Errorf("ipfs cat %s failed: %w", id, resp.Error)
	}

	content, err := io.ReadAll(resp.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to read ipfs content: %w", err)
	}
	if err := verifyRaw(id, content); err != nil {
		c.logger().Error("IPFS hash verification failed", zap.String("expectedHash", id.String()), zap.Error(err))
		return nil, err
	}
	return content, nil
}

// verifyRaw re-hashes content addressed by a raw-codec CID.
func verifyRaw(id cid.Cid, content []byte) error {
	if id.Type() != cid.Raw {
		return nil
	}
	got, err := id.Prefix().Sum(content)
	if err != nil {
		return fmt.Errorf("failed to hash content: %w", err)
	}
	if !got.Equals(id) {
		return fmt.Errorf("%w: expected %s, got %s", ErrContentMismatch, id, got)
	}
	return nil
}

// Version reports the version string of the remote node.
func (c *Client) Version(ctx context.Context) (string, error) {
	if c == nil || c.api == nil {
		return "", ErrClientNotConfigured
	}
	var res struct {
		Version string `json:"Version"`
	}
	if err := c.api.Request("version").Exec(ctx, &res); err != nil {
		return "", fmt.Errorf("ipfs version failed: %w", err)
	}
	return res.Version, nil
}

func (c *Client) httpClient() *http.Client {
	if c.http == nil {
		return http.DefaultClient
	}
	return c.http
}

func (c *Client) logger() *zap.Logger {
	if c == nil || c.log == nil {
		return zap.L()
	}
	return c.log
}
