// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine dispatches conversion requests to typed operation
// handlers. Each request runs in its own workspace; every failure —
// missing option, library fault, handler panic — is converted into a
// failure Result at the Execute boundary so the caller can keep serving.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/convertd/internal/tool"
	"github.com/pdiddy/convertd/pkg/types"
)

// Handler implements one operation. Inputs are already staged in the
// workspace; the returned files are the operation's products.
type Handler func(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error)

// Engine holds the operation registry and the external tool runtimes.
type Engine struct {
	handlers map[types.Operation]Handler
	tempDir  string
	office   tool.Office     // nil when no office suite was detected
	raster   tool.Rasterizer // nil when no rasterizer was detected
}

// Option configures an Engine.
type Option func(*Engine)

// WithTempDir sets the base directory for request workspaces.
func WithTempDir(dir string) Option {
	return func(e *Engine) { e.tempDir = dir }
}

// WithOffice injects the office suite runtime.
func WithOffice(o tool.Office) Option {
	return func(e *Engine) { e.office = o }
}

// WithRasterizer injects the PDF rasterizer runtime.
func WithRasterizer(r tool.Rasterizer) Option {
	return func(e *Engine) { e.raster = r }
}

// WithHandler overrides the handler for one operation.
func WithHandler(op types.Operation, h Handler) Option {
	return func(e *Engine) { e.handlers[op] = h }
}

// New builds an Engine with the full handler registry. Tool runtimes are
// optional; operations that need a missing tool fail per request instead
// of preventing startup.
func New(opts ...Option) *Engine {
	e := &Engine{handlers: make(map[types.Operation]Handler)}

	e.handlers[types.OpConvert] = e.handleConvert
	e.handlers[types.OpPDFToJPG] = e.handlePDFToJPG
	e.handlers[types.OpPDFToWord] = e.officeExport("docx")
	e.handlers[types.OpPDFToPPTX] = e.officeExport("pptx")
	e.handlers[types.OpPDFToText] = handlePDFToText
	e.handlers[types.OpMerge] = handleMerge
	e.handlers[types.OpSplit] = handleSplit
	e.handlers[types.OpCompress] = handleCompress
	e.handlers[types.OpEncrypt] = handleEncrypt
	e.handlers[types.OpDecrypt] = handleDecrypt
	e.handlers[types.OpRotate] = handleRotate
	e.handlers[types.OpWatermark] = handleWatermark
	e.handlers[types.OpAddNumbers] = handleAddNumbers

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one request and always returns a Result; it never panics
// and never returns an error. This is the dispatch boundary required to
// keep the server process alive across faulty inputs and library bugs.
func (e *Engine) Execute(ctx context.Context, req *types.Request) *types.Result {
	files, err := e.run(ctx, req)
	if err != nil {
		return types.FailureResult(req.ID, err)
	}
	return &types.Result{ID: req.ID, Status: types.StatusSuccess, Files: files}
}

func (e *Engine) run(ctx context.Context, req *types.Request) (files []types.File, err error) {
	// PDF libraries have panicked on corrupt input before; a panic here
	// must become a failure Result, not a dead server.
	defer func() {
		if r := recover(); r != nil {
			files = nil
			err = types.ConversionFailed(fmt.Errorf("operation %s panicked: %v", req.Op, r))
		}
	}()

	h, ok := e.handlers[req.Op]
	if !ok || !req.Op.Valid() {
		return nil, types.Unsupported(req.Op)
	}
	if len(req.Files) == 0 {
		return nil, types.BadRequest("operation %s requires at least one input file", req.Op)
	}

	ws, err := NewWorkspace(e.tempDir)
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	defer ws.Close()

	if err := ws.Stage(req.Files); err != nil {
		return nil, types.ConversionFailed(err)
	}

	out, err := h(ctx, ws, req)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, types.ConversionFailed(fmt.Errorf("operation %s produced no output", req.Op))
	}
	return out, nil
}

// sourceFormat resolves the request's source format, falling back to the
// first input file's extension.
func sourceFormat(req *types.Request) string {
	if req.SourceFormat != "" {
		return strings.ToLower(req.SourceFormat)
	}
	ext := strings.TrimPrefix(filepath.Ext(req.Files[0].Name), ".")
	return strings.ToLower(ext)
}
