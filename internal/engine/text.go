// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/convertd/pkg/types"
)

// handlePDFToText extracts the plain text of the input PDF.
func handlePDFToText(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	in := ws.Input()

	f, r, err := pdf.Open(in)
	if err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("opening PDF: %w", err))
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("extracting text: %w", err))
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("reading extracted text: %w", err))
	}

	return []types.File{{Name: baseName(in) + ".txt", Data: buf.Bytes()}}, nil
}
