package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/shamank/pinkit/pkg/model"
)

func rawCID(t *testing.T, data []byte) cid.Cid {
	t.Helper()
	pref := cid.Prefix{Version: 1, Codec: cid.Raw, MhType: multihash.SHA2_256, MhLength: -1}
	c, err := pref.Sum(data)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	return c
}

func TestClient_Add(t *testing.T) {
	node := newFakeNode(t)
	var uploaded string
	node.handle("add", func(w http.ResponseWriter, r *http.Request) {
		body, err := readMultipart(r)
		if err != nil {
			writeRPCError(w, http.StatusBadRequest, err.Error())
			return
		}
		uploaded = body
		writeJSON(w, model.AddResult{Name: testCIDv0, Hash: testCIDv0, Size: "19"})
	})
	c := newTestClient(t, node)

	got, err := c.AddBytes(t.Context(), []byte("hello from pinkit"))
	if err != nil {
		t.Fatalf("AddBytes returned error: %v", err)
	}
	if got != "ipfs://"+testCIDv0 {
		t.Fatalf("unexpected ipfs url %q", got)
	}
	if uploaded != "hello from pinkit" {
		t.Fatalf("node received %q", uploaded)
	}
	if q := node.query("add"); len(q["pin"]) != 1 || q["pin"][0] != "true" {
		t.Fatalf("expected pin=true, got %v", q)
	}
}

func TestClient_AddError(t *testing.T) {
	node := newFakeNode(t)
	node.handle("add", func(w http.ResponseWriter, r *http.Request) {
		writeRPCError(w, http.StatusInternalServerError, "quota exceeded")
	})
	c := newTestClient(t, node)

	_, err := c.AddBytes(t.Context(), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected quota error from node, got %v", err)
	}
	if n := node.count("add"); n != 1 {
		t.Fatalf("expected one add call, got %d", n)
	}
}

func TestClient_UploadJSON(t *testing.T) {
	node := newFakeNode(t)
	var uploaded string
	node.handle("add", func(w http.ResponseWriter, r *http.Request) {
		uploaded, _ = readMultipart(r)
		writeJSON(w, model.AddResult{Hash: testCIDv1})
	})
	c := newTestClient(t, node)

	got, err := c.UploadJSON(t.Context(), map[string]string{"name": "cat.png"})
	if err != nil {
		t.Fatalf("UploadJSON returned error: %v", err)
	}
	if got != "ipfs://"+testCIDv1 {
		t.Fatalf("unexpected ipfs url %q", got)
	}
	if uploaded != `{"name":"cat.png"}` {
		t.Fatalf("node received %q", uploaded)
	}
}

func TestClient_UploadJSON_MarshalError(t *testing.T) {
	data := map[string]any{
		"channel": make(chan int),
	}

	client := &Client{}

	_, err := client.UploadJSON(context.Background(), data)
	if err == nil {
		t.Fatal("expected error for unmarshalable data")
	}
	if !strings.Contains(err.Error(), "failed to marshal JSON") {
		t.Fatalf("expected marshal error, got: %v", err)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	client := &Client{}
	ctx := context.Background()

	if _, err := client.UploadJSON(ctx, map[string]string{"test": "data"}); !errors.Is(err, ErrClientNotConfigured) {
		t.Fatalf("UploadJSON: expected ErrClientNotConfigured, got %v", err)
	}
	if _, err := client.Pin(ctx, testCIDv0); !errors.Is(err, ErrClientNotConfigured) {
		t.Fatalf("Pin: expected ErrClientNotConfigured, got %v", err)
	}
	if _, err := client.Unpin(ctx, testCIDv0); !errors.Is(err, ErrClientNotConfigured) {
		t.Fatalf("Unpin: expected ErrClientNotConfigured, got %v", err)
	}
	if _, err := client.Cat(ctx, testCIDv0); !errors.Is(err, ErrClientNotConfigured) {
		t.Fatalf("Cat: expected ErrClientNotConfigured, got %v", err)
	}
	for _, err := range client.Pins(ctx, "") {
		if !errors.Is(err, ErrClientNotConfigured) {
			t.Fatalf("Pins: expected ErrClientNotConfigured, got %v", err)
		}
	}
}

func TestClient_AddURL(t *testing.T) {
	source := startHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/cat.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("PNG-BYTES"))
	}))
	defer source.Close()

	node := newFakeNode(t)
	var uploaded string
	node.handle("add", func(w http.ResponseWriter, r *http.Request) {
		body, err := readMultipart(r)
		if err != nil {
			writeRPCError(w, http.StatusBadRequest, err.Error())
			return
		}
		uploaded = body
		writeJSON(w, model.AddResult{Hash: testCIDv1})
	})
	c := newTestClient(t, node)

	got, err := c.AddURL(t.Context(), source.URL+"/images/cat.png")
	if err != nil {
		t.Fatalf("AddURL returned error: %v", err)
	}
	if got != "ipfs://"+testCIDv1 {
		t.Fatalf("unexpected ipfs url %q", got)
	}
	if uploaded != "PNG-BYTES" {
		t.Fatalf("node received %q", uploaded)
	}
}

func TestClient_AddURL_MissingSource(t *testing.T) {
	source := startHTTPServer(t, http.NotFoundHandler())
	defer source.Close()

	node := newFakeNode(t)
	node.handle("add", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, model.AddResult{Hash: testCIDv1})
	})
	c := newTestClient(t, node)

	_, err := c.AddURL(t.Context(), source.URL+"/gone.png")
	if err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Fatalf("expected source status error, got %v", err)
	}
	if n := node.count("add"); n != 0 {
		t.Fatalf("node must not be called for a missing source, got %d add calls", n)
	}
}

func TestClient_AddURL_StalledSourceHonoursContext(t *testing.T) {
	release := make(chan struct{})
	source := startHTTPServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer source.Close()
	defer close(release)

	node := newFakeNode(t)
	node.handle("add", func(w http.ResponseWriter, r *http.Request) {
		if _, err := readMultipart(r); err != nil {
			writeRPCError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, model.AddResult{Hash: testCIDv1})
	})
	c := newTestClient(t, node)

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.AddURL(ctx, source.URL+"/slow.png")
	if err == nil {
		t.Fatal("expected error for stalled source")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded in chain, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("AddURL returned after %v", elapsed)
	}
}

func TestClient_AddFile(t *testing.T) {
	node := newFakeNode(t)
	var uploaded string
	node.handle("add", func(w http.ResponseWriter, r *http.Request) {
		body, err := readMultipart(r)
		if err != nil {
			writeRPCError(w, http.StatusBadRequest, err.Error())
			return
		}
		uploaded = body
		writeJSON(w, model.AddResult{Hash: testCIDv0})
	})
	c := newTestClient(t, node)

	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("local bytes"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := c.AddFile(t.Context(), path)
	if err != nil {
		t.Fatalf("AddFile returned error: %v", err)
	}
	if got != "ipfs://"+testCIDv0 {
		t.Fatalf("unexpected ipfs url %q", got)
	}
	if uploaded != "local bytes" {
		t.Fatalf("node received %q", uploaded)
	}
}

func TestClient_AddFile_Errors(t *testing.T) {
	c := newTestClient(t, newFakeNode(t))
	dir := t.TempDir()

	if _, err := c.AddFile(t.Context(), filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := c.AddFile(t.Context(), dir); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestClient_AddURL_RejectsScheme(t *testing.T) {
	c := newTestClient(t, newFakeNode(t))
	if _, err := c.AddURL(t.Context(), "file:///etc/passwd"); err == nil {
		t.Fatal("expected error for non-http source")
	}
}

func TestClient_PinAndUnpin(t *testing.T) {
	node := newFakeNode(t)
	node.handle("pin/add", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string][]string{"Pins": {r.URL.Query().Get("arg")}})
	})
	node.handle("pin/rm", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string][]string{"Pins": {r.URL.Query().Get("arg")}})
	})
	c := newTestClient(t, node)

	pinned, err := c.Pin(t.Context(), "ipfs://"+testCIDv1)
	if err != nil {
		t.Fatalf("Pin returned error: %v", err)
	}
	if pinned.String() != testCIDv1 {
		t.Fatalf("Pin returned %s", pinned)
	}
	if q := node.query("pin/add"); len(q["recursive"]) != 1 || q["recursive"][0] != "true" {
		t.Fatalf("expected recursive=true, got %v", q)
	}

	removed, err := c.Unpin(t.Context(), testGW+testCIDv0)
	if err != nil {
		t.Fatalf("Unpin returned error: %v", err)
	}
	if removed.String() != testCIDv0 {
		t.Fatalf("Unpin returned %s", removed)
	}
	if q := node.query("pin/rm"); len(q["arg"]) != 1 || q["arg"][0] != testCIDv0 {
		t.Fatalf("pin/rm sent arg %v", q["arg"])
	}
}

func TestClient_UnpinErrors(t *testing.T) {
	node := newFakeNode(t)
	node.handle("pin/rm", func(w http.ResponseWriter, r *http.Request) {
		writeRPCError(w, http.StatusInternalServerError, "not pinned or pinned indirectly")
	})
	c := newTestClient(t, node)

	if _, err := c.Unpin(t.Context(), testCIDv0); err == nil {
		t.Fatal("expected error from node")
	}
	if _, err := c.Unpin(t.Context(), "ipfs://nope"); err == nil {
		t.Fatal("expected error for invalid cid")
	}
	if n := node.count("pin/rm"); n != 1 {
		t.Fatalf("node saw %d pin/rm calls, want 1", n)
	}
}

func streamPins(records ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Stream-Output", "1")
		for _, rec := range records {
			fmt.Fprintln(w, rec)
		}
	}
}

func TestClient_Pins(t *testing.T) {
	node := newFakeNode(t)
	node.handle("pin/ls", streamPins(
		`{"Cid":"`+testCIDv0+`","Type":"recursive","Name":""}`,
		`{"Cid":"`+testCIDv1+`","Type":"direct","Name":"avatar"}`,
		`{"Cid":"`+testCIDv1+`","Type":"indirect through `+testCIDv0+`"}`,
	))
	c := newTestClient(t, node)

	var pins []model.Pin
	for p, err := range c.Pins(t.Context(), "") {
		if err != nil {
			t.Fatalf("Pins yielded error: %v", err)
		}
		pins = append(pins, p)
	}

	if len(pins) != 3 {
		t.Fatalf("expected 3 pins, got %d", len(pins))
	}
	if pins[0].CID.String() != testCIDv0 || pins[0].Type != model.PinRecursive {
		t.Fatalf("unexpected first pin: %+v", pins[0])
	}
	if pins[1].Type != model.PinDirect || pins[1].Name != "avatar" {
		t.Fatalf("unexpected second pin: %+v", pins[1])
	}
	if pins[2].Type != model.PinIndirect {
		t.Fatalf("unexpected third pin: %+v", pins[2])
	}
	q := node.query("pin/ls")
	if len(q["stream"]) != 1 || q["stream"][0] != "true" {
		t.Fatalf("expected stream=true, got %v", q)
	}
	if _, ok := q["type"]; ok {
		t.Fatalf("unexpected type filter: %v", q["type"])
	}
}

func TestClient_PinsTypeFilterAndEarlyStop(t *testing.T) {
	node := newFakeNode(t)
	node.handle("pin/ls", streamPins(
		`{"Cid":"`+testCIDv0+`","Type":"recursive"}`,
		`{"Cid":"`+testCIDv1+`","Type":"recursive"}`,
	))
	c := newTestClient(t, node)

	seen := 0
	for _, err := range c.Pins(t.Context(), model.PinRecursive) {
		if err != nil {
			t.Fatalf("Pins yielded error: %v", err)
		}
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("consumer saw %d pins, want 1", seen)
	}
	if q := node.query("pin/ls"); len(q["type"]) != 1 || q["type"][0] != "recursive" {
		t.Fatalf("expected type=recursive, got %v", q)
	}
}

func TestClient_PinsBadRecord(t *testing.T) {
	node := newFakeNode(t)
	node.handle("pin/ls", streamPins(
		`{"Cid":"`+testCIDv0+`","Type":"recursive"}`,
		`{"Cid":"garbage","Type":"recursive"}`,
		`{"Cid":"`+testCIDv1+`","Type":"recursive"}`,
	))
	c := newTestClient(t, node)

	var (
		good int
		errs int
	)
	for _, err := range c.Pins(t.Context(), "") {
		if err != nil {
			errs++
			continue
		}
		good++
	}
	if good != 1 || errs != 1 {
		t.Fatalf("expected 1 pin then 1 error, got %d pins and %d errors", good, errs)
	}
}

func TestClient_PinsNodeError(t *testing.T) {
	node := newFakeNode(t)
	node.handle("pin/ls", func(w http.ResponseWriter, r *http.Request) {
		writeRPCError(w, http.StatusInternalServerError, "boom")
	})
	c := newTestClient(t, node)

	var errs int
	for _, err := range c.Pins(t.Context(), "") {
		if err == nil {
			t.Fatal("expected only errors")
		}
		errs++
	}
	if errs != 1 {
		t.Fatalf("expected exactly one error, got %d", errs)
	}
}

func TestClient_CatVerifiesRawContent(t *testing.T) {
	content := []byte("raw leaf content")
	id := rawCID(t, content)

	node := newFakeNode(t)
	var served []byte
	node.handle("cat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(served)
	})
	c := newTestClient(t, node)

	served = content
	got, err := c.Cat(t.Context(), "ipfs://"+id.String())
	if err != nil {
		t.Fatalf("Cat returned error: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("Cat returned %q", got)
	}
	if q := node.query("cat"); len(q["arg"]) != 1 || q["arg"][0] != id.String() {
		t.Fatalf("cat sent arg %v", q["arg"])
	}

	served = []byte("tampered content")
	if _, err := c.Cat(t.Context(), id.String()); !errors.Is(err, ErrContentMismatch) {
		t.Fatalf("expected ErrContentMismatch, got %v", err)
	}
}

func TestClient_CatDagContentUnverified(t *testing.T) {
	node := newFakeNode(t)
	node.handle("cat", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("unixfs file"))
	})
	c := newTestClient(t, node)

	got, err := c.Cat(t.Context(), testCIDv0)
	if err != nil {
		t.Fatalf("Cat returned error: %v", err)
	}
	if string(got) != "unixfs file" {
		t.Fatalf("Cat returned %q", got)
	}
}
