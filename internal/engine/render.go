// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"

	"github.com/pdiddy/convertd/pkg/types"
)

// renderDPI is the resolution for PDF page rendering.
const renderDPI = 150

// handlePDFToJPG renders every page of the input PDF to a JPG image. The
// rasterizer picks its own numbering scheme; outputs are renamed to the
// stable page_NNN.jpg form, one per page in order.
func (e *Engine) handlePDFToJPG(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	if e.raster == nil {
		return nil, types.ConversionFailed(fmt.Errorf("no PDF rasterizer available"))
	}

	if err := e.raster.RenderJPEG(ws.Input(), ws.OutDir(), renderDPI); err != nil {
		return nil, types.ConversionFailed(err)
	}

	rendered, err := ws.CollectGlob("*.jpg")
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	if len(rendered) == 0 {
		return nil, types.ConversionFailed(fmt.Errorf("%s rendered no pages", e.raster.Name()))
	}

	for i := range rendered {
		rendered[i].Name = fmt.Sprintf("page_%03d.jpg", i+1)
	}
	return rendered, nil
}
