// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package client implements the conversion client: it dials the server
// with retry, frames one request, and reads back the result.
package client

import (
	"context"
	"fmt"
	"math"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/convertd/internal/protocol"
	"github.com/pdiddy/convertd/pkg/types"
)

// DialBaseDelay controls the base duration for exponential backoff on
// failed dial attempts. Tests override this to avoid real sleeps.
var DialBaseDelay = 500 * time.Millisecond

// ConnectError reports that the server could not be reached. It is the
// client-side connectivity failure class; it never travels on the wire.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("cannot reach server at %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Client submits conversion requests to a server.
type Client struct {
	cfg types.ClientConfig
}

// New builds a Client; zero config fields get defaults.
func New(cfg types.ClientConfig) *Client {
	cfg.Normalize()
	return &Client{cfg: cfg}
}

// Do submits one request and returns the server's result. The returned
// error covers client-side problems only (validation, connectivity,
// framing); a server-side failure arrives as a Result with failure
// status and a nil error.
func (c *Client) Do(ctx context.Context, req *types.Request) (*types.Result, error) {
	if !req.Op.Valid() {
		return nil, fmt.Errorf("unknown operation %q", req.Op)
	}
	if len(req.Files) == 0 {
		return nil, fmt.Errorf("no input files for operation %s", req.Op)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Token == "" {
		req.Token = c.cfg.Token
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.cfg.Timeout))

	if err := protocol.WriteRequest(conn, req); err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	res, err := protocol.ReadResponse(conn, 0)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return res, nil
}

// dial connects to the server, retrying failed attempts with exponential
// backoff: DialBaseDelay, then double per attempt. If the context is
// cancelled during a backoff wait it returns ctx.Err().
func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		conn, err := d.DialContext(ctx, "tcp", c.cfg.Addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		if attempt == c.cfg.MaxRetries {
			break
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * DialBaseDelay
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, &ConnectError{Addr: c.cfg.Addr, Err: lastErr}
}

// SaveFiles materializes result files to disk. A single file goes to
// outPath directly (or into it, when outPath is an existing directory);
// multiple files always go into outPath as a directory, created if
// needed. Returns the written paths.
func SaveFiles(files []types.File, outPath string) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to save")
	}

	info, statErr := os.Stat(outPath)
	isDir := statErr == nil && info.IsDir()

	if len(files) == 1 && !isDir {
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := os.WriteFile(outPath, files[0].Data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", outPath, err)
		}
		return []string{outPath}, nil
	}

	if err := os.MkdirAll(outPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		p := filepath.Join(outPath, filepath.Base(f.Name))
		if err := os.WriteFile(p, f.Data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}
