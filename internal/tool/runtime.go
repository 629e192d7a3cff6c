// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tool implements detection and execution of the external
// conversion tools: an office suite for Office-format conversions and a
// rasterizer for rendering PDF pages to images. The tools are opaque
// collaborators; convertd only stages files, runs them, and collects
// their output.
package tool

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
)

const (
	binSoffice     = "soffice"
	binLibreOffice = "libreoffice"
	binPdftoppm    = "pdftoppm"
	binMutool      = "mutool"
)

// Office converts documents between Office formats and PDF.
type Office interface {
	// Name returns the binary name ("soffice" or "libreoffice").
	Name() string

	// Available reports whether the binary exists on PATH and responds
	// to a version query.
	Available() bool

	// ConvertTo converts inPath to the given target format ("pdf",
	// "docx", "pptx"), writing the output into outDir with the same base
	// name and the new extension.
	ConvertTo(format, inPath, outDir string) error
}

// Rasterizer renders PDF pages to JPG images.
type Rasterizer interface {
	// Name returns the binary name ("pdftoppm" or "mutool").
	Name() string

	// Available reports whether the binary exists on PATH.
	Available() bool

	// RenderJPEG renders every page of inPath at the given DPI, writing
	// outDir/page_NNN.jpg files numbered from 1.
	RenderJPEG(inPath, outDir string, dpi int) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// office implements Office for a specific binary. soffice and libreoffice
// take identical arguments; they differ only in name.
type office struct {
	bin  string
	exec executor
}

func (o *office) Name() string { return o.bin }

func (o *office) Available() bool {
	if _, err := o.exec.LookPath(o.bin); err != nil {
		return false
	}
	return o.exec.RunSilent(o.bin, "--version") == nil
}

func (o *office) ConvertTo(format, inPath, outDir string) error {
	args := []string{"--headless", "--norestore", "--convert-to", format, "--outdir", outDir, inPath}
	if err := o.exec.RunSilent(o.bin, args...); err != nil {
		return fmt.Errorf("%s convert-to %s failed for %s: %w", o.bin, format, inPath, err)
	}
	return nil
}

// jpegArgs builds the rasterizer invocation; pdftoppm and mutool disagree
// on argument shape, so each carries its own builder.
type jpegArgs func(inPath, outDir string, dpi int) []string

// rasterizer implements Rasterizer for a specific binary.
type rasterizer struct {
	bin  string
	args jpegArgs
	exec executor
}

func (r *rasterizer) Name() string { return r.bin }

// Available checks PATH only: neither pdftoppm nor mutool has a version
// subcommand that exits zero on every packaged build.
func (r *rasterizer) Available() bool {
	_, err := r.exec.LookPath(r.bin)
	return err == nil
}

func (r *rasterizer) RenderJPEG(inPath, outDir string, dpi int) error {
	if err := r.exec.RunSilent(r.bin, r.args(inPath, outDir, dpi)...); err != nil {
		return fmt.Errorf("%s render failed for %s: %w", r.bin, inPath, err)
	}
	return nil
}

func newSoffice(exec executor) *office     { return &office{bin: binSoffice, exec: exec} }
func newLibreOffice(exec executor) *office { return &office{bin: binLibreOffice, exec: exec} }

func newPdftoppm(exec executor) *rasterizer {
	return &rasterizer{
		bin: binPdftoppm,
		// pdftoppm appends -NNN.jpg to the output prefix.
		args: func(inPath, outDir string, dpi int) []string {
			return []string{"-jpeg", "-r", strconv.Itoa(dpi), inPath, filepath.Join(outDir, "page")}
		},
		exec: exec,
	}
}

func newMutool(exec executor) *rasterizer {
	return &rasterizer{
		bin: binMutool,
		args: func(inPath, outDir string, dpi int) []string {
			return []string{"draw", "-r", strconv.Itoa(dpi), "-o", filepath.Join(outDir, "page-%03d.jpg"), inPath}
		},
		exec: exec,
	}
}

var defaultExec = &osExecutor{}

// DetectOffice tries soffice first, falls back to libreoffice. Returns an
// error if neither is available.
func DetectOffice() (Office, error) {
	return detectOffice(defaultExec)
}

func detectOffice(exec executor) (Office, error) {
	soffice := newSoffice(exec)
	if soffice.Available() {
		return soffice, nil
	}

	libre := newLibreOffice(exec)
	if libre.Available() {
		return libre, nil
	}

	return nil, fmt.Errorf(
		"no office suite available: neither %s nor %s found or operational",
		binSoffice, binLibreOffice,
	)
}

// DetectRasterizer tries pdftoppm first, falls back to mutool. Returns an
// error if neither is available.
func DetectRasterizer() (Rasterizer, error) {
	return detectRasterizer(defaultExec)
}

func detectRasterizer(exec executor) (Rasterizer, error) {
	ppm := newPdftoppm(exec)
	if ppm.Available() {
		return ppm, nil
	}

	mu := newMutool(exec)
	if mu.Available() {
		return mu, nil
	}

	return nil, fmt.Errorf(
		"no PDF rasterizer available: neither %s nor %s found",
		binPdftoppm, binMutool,
	)
}
