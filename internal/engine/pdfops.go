// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/convertd/pkg/types"
)

// watermarkDesc renders a translucent diagonal stamp across the page.
const watermarkDesc = "fontname:Helvetica, points:48, scalefactor:0.5 rel, rotation:45, opacity:0.35"

// pageNumberPositions maps the client-facing position names onto the PDF
// library's anchor tokens. The short anchor spellings are accepted too.
var pageNumberPositions = map[string]string{
	"bottom-center": "bc",
	"bottom-left":   "bl",
	"bottom-right":  "br",
	"top-center":    "tc",
	"top-left":      "tl",
	"top-right":     "tr",
	"bc":            "bc",
	"bl":            "bl",
	"br":            "br",
	"tc":            "tc",
	"tl":            "tl",
	"tr":            "tr",
}

func pdfConf() *model.Configuration {
	return model.NewDefaultConfiguration()
}

func handleMerge(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	if len(req.Files) < 2 {
		return nil, types.BadRequest("merge requires at least two input files, got %d", len(req.Files))
	}

	out := ws.OutPath("merged.pdf")
	if err := api.MergeCreateFile(ws.Inputs(), out, false, pdfConf()); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("merging %d files: %w", len(req.Files), err))
	}

	f, err := ws.CollectFile(out, "merged.pdf")
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	return []types.File{f}, nil
}

func handleSplit(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	rangesStr := req.Option(types.OptRanges)
	if rangesStr == "" {
		return nil, types.BadRequest("split requires the %q option, e.g. \"1-3,5\"", types.OptRanges)
	}
	ranges, err := ParseRanges(rangesStr)
	if err != nil {
		return nil, types.BadRequest("split: %v", err)
	}

	in := ws.Input()
	pageCount, err := api.PageCountFile(in)
	if err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("reading page count: %w", err))
	}

	base := baseName(in)
	files := make([]types.File, 0, len(ranges))
	for i, r := range ranges {
		v, err := r.Validate(pageCount)
		if err != nil {
			return nil, types.BadRequest("split: %v", err)
		}

		name := fmt.Sprintf("split_%03d_%s.pdf", i+1, base)
		out := ws.OutPath(name)
		if err := api.TrimFile(in, out, []string{v.Selection()}, pdfConf()); err != nil {
			return nil, types.ConversionFailed(fmt.Errorf("extracting pages %s: %w", v, err))
		}

		f, err := ws.CollectFile(out, name)
		if err != nil {
			return nil, types.ConversionFailed(err)
		}
		files = append(files, f)
	}
	return files, nil
}

func handleCompress(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	in := ws.Input()
	name := baseName(in) + "_compressed.pdf"
	out := ws.OutPath(name)

	if err := api.OptimizeFile(in, out, pdfConf()); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("optimizing: %w", err))
	}

	f, err := ws.CollectFile(out, name)
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	return []types.File{f}, nil
}

func handleEncrypt(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	pw := req.Option(types.OptPassword)
	if pw == "" {
		return nil, types.BadRequest("encrypt requires the %q option", types.OptPassword)
	}

	in := ws.Input()
	name := baseName(in) + "_encrypted.pdf"
	out := ws.OutPath(name)

	// Re-encrypting an already encrypted file fails here: the library
	// cannot open it without its current password.
	conf := pdfConf()
	conf.UserPW = pw
	conf.OwnerPW = pw
	if err := api.EncryptFile(in, out, conf); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("encrypting: %w", err))
	}

	f, err := ws.CollectFile(out, name)
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	return []types.File{f}, nil
}

func handleDecrypt(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	pw := req.Option(types.OptPassword)
	if pw == "" {
		return nil, types.BadRequest("decrypt requires the %q option", types.OptPassword)
	}

	in := ws.Input()
	name := baseName(in) + "_decrypted.pdf"
	out := ws.OutPath(name)

	conf := pdfConf()
	conf.UserPW = pw
	conf.OwnerPW = pw
	if err := api.DecryptFile(in, out, conf); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("decrypting (wrong password?): %w", err))
	}

	f, err := ws.CollectFile(out, name)
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	return []types.File{f}, nil
}

func handleRotate(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	angleStr := req.Option(types.OptAngle)
	if angleStr == "" {
		return nil, types.BadRequest("rotate requires the %q option", types.OptAngle)
	}
	angle, err := strconv.Atoi(angleStr)
	if err != nil || angle == 0 || angle%90 != 0 {
		return nil, types.BadRequest("rotation angle must be a non-zero multiple of 90, got %q", angleStr)
	}

	in := ws.Input()
	pageCount, err := api.PageCountFile(in)
	if err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("reading page count: %w", err))
	}

	sel, err := ParsePageSelection(req.Option(types.OptPages), pageCount)
	if err != nil {
		return nil, types.BadRequest("rotate: %v", err)
	}

	name := baseName(in) + "_rotated.pdf"
	out := ws.OutPath(name)
	if err := api.RotateFile(in, out, angle, sel, pdfConf()); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("rotating by %d: %w", angle, err))
	}

	f, err := ws.CollectFile(out, name)
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	return []types.File{f}, nil
}

func handleWatermark(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	text := req.Option(types.OptText)
	if text == "" {
		return nil, types.BadRequest("watermark requires the %q option", types.OptText)
	}

	in := ws.Input()
	name := baseName(in) + "_watermarked.pdf"
	out := ws.OutPath(name)

	if err := api.AddTextWatermarksFile(in, out, nil, false, text, watermarkDesc, pdfConf()); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("watermarking: %w", err))
	}

	f, err := ws.CollectFile(out, name)
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	return []types.File{f}, nil
}

func handleAddNumbers(ctx context.Context, ws *Workspace, req *types.Request) ([]types.File, error) {
	position := req.Option(types.OptPosition)
	if position == "" {
		position = "bottom-center"
	}
	anchor, ok := pageNumberPositions[position]
	if !ok {
		return nil, types.BadRequest("unknown page-number position %q", position)
	}

	in := ws.Input()
	name := baseName(in) + "_numbered.pdf"
	out := ws.OutPath(name)

	// %p and %P expand to the page number and page count per page.
	desc := fmt.Sprintf("fontname:Helvetica, points:9, scalefactor:1 abs, rotation:0, position:%s, offset:0 15", anchor)
	if err := api.AddTextWatermarksFile(in, out, nil, true, "Page %p of %P", desc, pdfConf()); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("adding page numbers: %w", err))
	}

	f, err := ws.CollectFile(out, name)
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	return []types.File{f}, nil
}

// importImages converts the staged image inputs into a single PDF.
func importImages(ws *Workspace) ([]types.File, error) {
	name := baseName(ws.Input()) + ".pdf"
	out := ws.OutPath(name)

	if err := api.ImportImagesFile(ws.Inputs(), out, nil, pdfConf()); err != nil {
		return nil, types.ConversionFailed(fmt.Errorf("importing images: %w", err))
	}

	f, err := ws.CollectFile(out, name)
	if err != nil {
		return nil, types.ConversionFailed(err)
	}
	return []types.File{f}, nil
}
