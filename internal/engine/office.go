// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/convertd/pkg/types"
)

// officeFormats lists the source formats routed through the office suite
// for conversion to PDF.
var officeFormats = map[string]bool{
	"doc": true, "docx": true, "odt": true,
	"ppt": true, "pptx": true, "odp": true,
	"xls": true, "xlsx": true, "ods": true,
	"html": true, "htm": true,
}

// imageFormats lists the source formats converted to PDF by image import.
var imageFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true,
}

// handleConvert converts the input to PDF, picking the backend from the
// source format: images go through the PDF library's image import,
// everything else through the office suite.
func (e *Engine) handleConvert(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	format := sourceFormat(req)

	switch {
	case imageFormats[format]:
		return importImages(ws)

	case officeFormats[format]:
		if e.office == nil {
			return nil, types.ConversionFailed(fmt.Errorf("no office suite available for %s conversion", format))
		}
		return e.officeConvert(ws, "pdf")

	default:
		return nil, types.BadRequest("unsupported source format %q for convert", format)
	}
}

// officeExport returns a handler that converts a PDF to the given Office
// format.
func (e *Engine) officeExport(format string) Handler {
	return func(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
		if e.office == nil {
			return nil, types.ConversionFailed(fmt.Errorf("no office suite available for pdf to %s conversion", format))
		}
		return e.officeConvert(ws, format)
	}
}

// officeConvert runs the office suite on every input, one output per
// input. The suite writes <base>.<format> into the output directory;
// anything else is a conversion failure.
func (e *Engine) officeConvert(ws *Workspace, format string) ([]types.File, error) {
	files := make([]types.File, 0, len(ws.Inputs()))
	for _, in := range ws.Inputs() {
		if err := e.office.ConvertTo(format, in, ws.OutDir()); err != nil {
			return nil, types.ConversionFailed(err)
		}

		name := baseName(in) + "." + format
		out := ws.OutPath(name)
		if _, err := os.Stat(out); err != nil {
			return nil, types.ConversionFailed(fmt.Errorf("%s produced no %s output for %s", e.office.Name(), format, name))
		}

		f, err := ws.CollectFile(out, name)
		if err != nil {
			return nil, types.ConversionFailed(err)
		}
		files = append(files, f)
	}
	return files, nil
}
