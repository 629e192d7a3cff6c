// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server implements the conversion server: a TCP listener that
// reads one framed request per connection, dispatches it, and writes one
// framed response. Connections are independent; each is handled in its
// own goroutine against its own workspace, and no error escalates past
// the connection that caused it.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pdiddy/convertd/internal/history"
	"github.com/pdiddy/convertd/internal/protocol"
	"github.com/pdiddy/convertd/pkg/types"
)

// Executor runs one request to completion. It must always return a
// Result, converting every internal error into a failure status.
type Executor interface {
	Execute(ctx context.Context, req *types.Request) *types.Result
}

// Server accepts connections and serves conversion requests.
type Server struct {
	cfg   types.ServerConfig
	exec  Executor
	store *history.Store
	logw  io.Writer

	ln net.Listener
	wg sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithHistory records every served request in the given store.
func WithHistory(store *history.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithLogWriter redirects the per-connection status lines (default stderr).
func WithLogWriter(w io.Writer) Option {
	return func(s *Server) { s.logw = w }
}

// New builds a Server around an Executor.
func New(cfg types.ServerConfig, exec Executor, opts ...Option) *Server {
	cfg.Normalize()
	s := &Server{cfg: cfg, exec: exec, logw: os.Stderr}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the configured address. It must be called before Serve.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}
	s.ln = ln
	fmt.Fprintf(s.logw, "listening on %s\n", ln.Addr())
	return nil
}

// Addr returns the bound address, valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until ctx is cancelled, then closes the
// listener and waits for in-flight connections to finish.
func (s *Server) Serve(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.ln.Close()
		case <-done:
		}
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// ListenAndServe combines Listen and Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// handleConn serves exactly one request/response exchange. Protocol
// faults, auth failures, and execution failures all become failure
// responses; only the write of the response itself can end the exchange
// without one.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	start := time.Now()
	remote := conn.RemoteAddr().String()

	// Last resort. The engine contains its own panics; this keeps a fault
	// anywhere else in the exchange from taking the whole process down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(s.logw, "failed:  %s (panic: %v)\n", remote, r)
		}
	}()

	conn.SetReadDeadline(start.Add(s.cfg.ReadTimeout))
	req, readErr := protocol.ReadRequest(conn, s.cfg.MaxPayload)

	var res *types.Result
	switch {
	case readErr != nil:
		res = types.FailureResult("", types.BadRequest("reading request: %v", readErr))
	case s.cfg.Token != "" && req.Token != s.cfg.Token:
		res = &types.Result{
			ID:     req.ID,
			Status: types.StatusFailure,
			Code:   types.CodeUnauthorized,
			Error:  "invalid or missing token",
		}
	default:
		res = s.exec.Execute(ctx, req)
	}

	conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := protocol.WriteResponse(conn, res); err != nil {
		fmt.Fprintf(s.logw, "failed:  %s (writing response: %v)\n", remote, err)
	}

	s.record(ctx, req, res, remote, time.Since(start))

	op := types.Operation("unknown")
	if req != nil {
		op = req.Op
	}
	if res.Failed() {
		fmt.Fprintf(s.logw, "failed:  %s %s (%s: %s) in %v\n", remote, op, res.Code, res.Error, time.Since(start).Round(time.Millisecond))
	} else {
		fmt.Fprintf(s.logw, "served:  %s %s (%d file(s)) in %v\n", remote, op, len(res.Files), time.Since(start).Round(time.Millisecond))
	}
}

func (s *Server) record(ctx context.Context, req *types.Request, res *types.Result, remote string, d time.Duration) {
	if s.store == nil {
		return
	}

	rec := history.Record{
		Status:      res.Status,
		Code:        res.Code,
		Error:       res.Error,
		OutputBytes: totalBytes(res.Files),
		Duration:    d,
		RemoteAddr:  remote,
	}
	if req != nil {
		rec.ID = req.ID
		rec.Op = req.Op
		rec.InputBytes = totalBytes(req.Files)
	} else {
		rec.Op = "unknown"
	}

	if err := s.store.Append(ctx, rec); err != nil {
		fmt.Fprintf(s.logw, "warning: history write failed: %v\n", err)
	}
}

func totalBytes(files []types.File) int64 {
	var n int64
	for _, f := range files {
		n += int64(len(f.Data))
	}
	return n
}
