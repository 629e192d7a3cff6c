// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/convertd/internal/client"
	"github.com/pdiddy/convertd/internal/history"
	"github.com/pdiddy/convertd/internal/protocol"
	"github.com/pdiddy/convertd/pkg/types"
)

// echoExecutor is a stand-in Executor: it validates the operation and
// echoes the input files back under new names.
type echoExecutor struct{}

func (echoExecutor) Execute(ctx context.Context, req *types.Request) *types.Result {
	if !req.Op.Valid() {
		return types.FailureResult(req.ID, types.Unsupported(req.Op))
	}
	files := make([]types.File, len(req.Files))
	for i, f := range req.Files {
		files[i] = types.File{Name: "out_" + f.Name, Data: f.Data}
	}
	return &types.Result{ID: req.ID, Status: types.StatusSuccess, Files: files}
}

// startServer runs a server on an ephemeral port and returns its address.
func startServer(t *testing.T, cfg types.ServerConfig, exec Executor, opts ...Option) string {
	t.Helper()
	cfg.Listen = "127.0.0.1:0"

	opts = append(opts, WithLogWriter(io.Discard))
	s := New(cfg, exec, opts...)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := s.Serve(ctx); err != nil {
			t.Errorf("Serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return s.Addr().String()
}

func testClient(addr string) *client.Client {
	return client.New(types.ClientConfig{Addr: addr, Timeout: 10 * time.Second, MaxRetries: 1})
}

func TestServeRoundTrip(t *testing.T) {
	addr := startServer(t, types.ServerConfig{}, echoExecutor{})

	res, err := testClient(addr).Do(context.Background(), &types.Request{
		Op:    types.OpCompress,
		Files: []types.File{{Name: "a.pdf", Data: []byte("%PDF-1.7 body")}},
	})
	require.NoError(t, err)

	assert.Equal(t, types.StatusSuccess, res.Status)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "out_a.pdf", res.Files[0].Name)
	assert.Equal(t, []byte("%PDF-1.7 body"), res.Files[0].Data)
}

// rawExchange writes req bytes directly and reads one response, bypassing
// the client's local validation.
func rawExchange(t *testing.T, addr string, frame []byte) *types.Result {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	_, err = conn.Write(frame)
	require.NoError(t, err)
	// Half-close so a server reading a truncated frame sees EOF.
	if tc, ok := conn.(*net.TCPConn); ok {
		require.NoError(t, tc.CloseWrite())
	}

	res, err := protocol.ReadResponse(conn, 0)
	require.NoError(t, err)
	return res
}

func TestUnsupportedOperationKeepsServing(t *testing.T) {
	addr := startServer(t, types.ServerConfig{}, echoExecutor{})

	var frame bytes.Buffer
	require.NoError(t, protocol.WriteRequest(&frame, &types.Request{
		ID:    "bad-op",
		Op:    types.Operation("frobnicate"),
		Files: []types.File{{Name: "a.pdf", Data: []byte("x")}},
	}))

	res := rawExchange(t, addr, frame.Bytes())
	assert.Equal(t, types.StatusFailure, res.Status)
	assert.Equal(t, types.CodeUnsupportedOperation, res.Code)

	// The listener must survive and serve the next request.
	res2, err := testClient(addr).Do(context.Background(), &types.Request{
		Op:    types.OpCompress,
		Files: []types.File{{Name: "b.pdf", Data: []byte("y")}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, res2.Status)
}

func TestMalformedFrameKeepsServing(t *testing.T) {
	addr := startServer(t, types.ServerConfig{}, echoExecutor{})

	tests := []struct {
		name  string
		frame []byte
	}{
		{name: "not the protocol at all", frame: []byte("GET / HTTP/1.1\r\n\r\n")},
		{name: "truncated frame", frame: []byte{'C', 'V', 'D', '1', 0x01, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rawExchange(t, addr, tt.frame)
			assert.Equal(t, types.StatusFailure, res.Status)
			assert.Equal(t, types.CodeBadRequest, res.Code)
		})
	}

	res, err := testClient(addr).Do(context.Background(), &types.Request{
		Op:    types.OpCompress,
		Files: []types.File{{Name: "c.pdf", Data: []byte("z")}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, res.Status)
}

func TestOverflowingFileTableKeepsServing(t *testing.T) {
	addr := startServer(t, types.ServerConfig{}, echoExecutor{})

	// Hand-built frame whose file table sums past MaxInt64. The read must
	// classify it as bad_request, not allocate or bring the server down.
	hdr := []byte(`{"id":"evil","op":"merge","files":[{"name":"a.pdf","size":1},{"name":"b.pdf","size":9223372036854775807}]}`)
	var frame bytes.Buffer
	frame.Write([]byte{'C', 'V', 'D', '1', 0x01})
	require.NoError(t, binary.Write(&frame, binary.BigEndian, uint32(len(hdr))))
	frame.Write(hdr)

	res := rawExchange(t, addr, frame.Bytes())
	assert.Equal(t, types.StatusFailure, res.Status)
	assert.Equal(t, types.CodeBadRequest, res.Code)

	res2, err := testClient(addr).Do(context.Background(), &types.Request{
		Op:    types.OpCompress,
		Files: []types.File{{Name: "d.pdf", Data: []byte("w")}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, res2.Status)
}

func TestPayloadLimit(t *testing.T) {
	addr := startServer(t, types.ServerConfig{MaxPayload: 64}, echoExecutor{})

	res, err := testClient(addr).Do(context.Background(), &types.Request{
		Op:    types.OpCompress,
		Files: []types.File{{Name: "big.pdf", Data: bytes.Repeat([]byte{1}, 256)}},
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailure, res.Status)
	assert.Equal(t, types.CodeBadRequest, res.Code)
}

func TestTokenAuth(t *testing.T) {
	addr := startServer(t, types.ServerConfig{Token: "hunter2"}, echoExecutor{})

	req := func() *types.Request {
		return &types.Request{
			Op:    types.OpCompress,
			Files: []types.File{{Name: "a.pdf", Data: []byte("x")}},
		}
	}

	res, err := testClient(addr).Do(context.Background(), req())
	require.NoError(t, err)
	assert.Equal(t, types.CodeUnauthorized, res.Code)

	authed := client.New(types.ClientConfig{Addr: addr, Timeout: 10 * time.Second, MaxRetries: 1, Token: "hunter2"})
	res, err = authed.Do(context.Background(), req())
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuccess, res.Status)
}

func TestHistoryRecording(t *testing.T) {
	store, err := history.NewStore(filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer store.Close()

	addr := startServer(t, types.ServerConfig{}, echoExecutor{}, WithHistory(store))

	c := testClient(addr)
	_, err = c.Do(context.Background(), &types.Request{
		Op:    types.OpMerge,
		Files: []types.File{{Name: "a.pdf", Data: []byte("aaaa")}, {Name: "b.pdf", Data: []byte("bb")}},
	})
	require.NoError(t, err)

	// History writes happen after the response is sent; poll briefly.
	var records []history.Record
	require.Eventually(t, func() bool {
		records, err = store.Recent(context.Background(), 10)
		return err == nil && len(records) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, types.OpMerge, records[0].Op)
	assert.Equal(t, types.StatusSuccess, records[0].Status)
	assert.Equal(t, int64(6), records[0].InputBytes)
	assert.NotEmpty(t, records[0].RemoteAddr)
}

func TestConcurrentConnections(t *testing.T) {
	addr := startServer(t, types.ServerConfig{}, echoExecutor{})

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := testClient(addr).Do(context.Background(), &types.Request{
				Op:    types.OpCompress,
				Files: []types.File{{Name: "a.pdf", Data: []byte("x")}},
			})
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}
}
