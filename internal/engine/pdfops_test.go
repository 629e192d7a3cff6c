// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/convertd/pkg/types"
)

// fixturePDF builds a real PDF with the given page count by importing
// generated JPEGs, one page per image.
func fixturePDF(t *testing.T, pages int) []byte {
	t.Helper()
	dir := t.TempDir()

	imgs := make([]string, pages)
	for i := range imgs {
		p := filepath.Join(dir, fmt.Sprintf("p%d.jpg", i))
		f, err := os.Create(p)
		if err != nil {
			t.Fatal(err)
		}
		if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 40)), nil); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
		imgs[i] = p
	}

	out := filepath.Join(dir, "fixture.pdf")
	if err := api.ImportImagesFile(imgs, out, nil, pdfConf()); err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// pageCount writes data to disk and counts its pages.
func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	p := filepath.Join(t.TempDir(), "count.pdf")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := api.PageCountFile(p)
	if err != nil {
		t.Fatalf("counting pages: %v", err)
	}
	return n
}

func execOp(t *testing.T, op types.Operation, options map[string]string, files ...types.File) *types.Result {
	t.Helper()
	e := New(WithTempDir(t.TempDir()))
	return e.Execute(context.Background(), &types.Request{
		ID:      "fixture-req",
		Op:      op,
		Options: options,
		Files:   files,
	})
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	doc := types.File{Name: "doc.pdf", Data: fixturePDF(t, 2)}
	password := map[string]string{types.OptPassword: "s3cret"}

	enc := execOp(t, types.OpEncrypt, password, doc)
	if enc.Failed() {
		t.Fatalf("encrypt failed: %s", enc.Error)
	}
	if len(enc.Files) != 1 || enc.Files[0].Name != "doc_encrypted.pdf" {
		t.Fatalf("encrypt files = %v, want single doc_encrypted.pdf", enc.Files)
	}

	dec := execOp(t, types.OpDecrypt, password, enc.Files[0])
	if dec.Failed() {
		t.Fatalf("decrypt with correct password failed: %s", dec.Error)
	}
	if got := pageCount(t, dec.Files[0].Data); got != 2 {
		t.Errorf("decrypted page count = %d, want 2", got)
	}

	wrong := execOp(t, types.OpDecrypt, map[string]string{types.OptPassword: "nope"}, enc.Files[0])
	if !wrong.Failed() {
		t.Fatal("decrypt with wrong password must fail")
	}
	if wrong.Code != types.CodeConversionFailed {
		t.Errorf("code = %q, want conversion_failed", wrong.Code)
	}
}

func TestSplitThenMergeKeepsPages(t *testing.T) {
	doc := types.File{Name: "doc.pdf", Data: fixturePDF(t, 3)}

	split := execOp(t, types.OpSplit, map[string]string{types.OptRanges: "1-2,3"}, doc)
	if split.Failed() {
		t.Fatalf("split failed: %s", split.Error)
	}
	if len(split.Files) != 2 {
		t.Fatalf("split produced %d files, want 2", len(split.Files))
	}
	if got := pageCount(t, split.Files[0].Data); got != 2 {
		t.Errorf("first part page count = %d, want 2", got)
	}
	if got := pageCount(t, split.Files[1].Data); got != 1 {
		t.Errorf("second part page count = %d, want 1", got)
	}

	merged := execOp(t, types.OpMerge, nil, split.Files...)
	if merged.Failed() {
		t.Fatalf("merge failed: %s", merged.Error)
	}
	if got := pageCount(t, merged.Files[0].Data); got != 3 {
		t.Errorf("merged page count = %d, want 3", got)
	}
}

func TestAddNumbersPositions(t *testing.T) {
	doc := types.File{Name: "doc.pdf", Data: fixturePDF(t, 1)}

	tests := []struct {
		position string
		wantCode types.ErrorCode
	}{
		{position: ""},
		{position: "bottom-center"},
		{position: "top-right"},
		{position: "bc"},
		{position: "tr"},
		{position: "middle", wantCode: types.CodeBadRequest},
	}

	for _, tt := range tests {
		name := tt.position
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			var opts map[string]string
			if tt.position != "" {
				opts = map[string]string{types.OptPosition: tt.position}
			}
			res := execOp(t, types.OpAddNumbers, opts, doc)
			if tt.wantCode != "" {
				if !res.Failed() || res.Code != tt.wantCode {
					t.Fatalf("code = %q, want %q", res.Code, tt.wantCode)
				}
				return
			}
			if res.Failed() {
				t.Fatalf("add_numbers position %q failed: %s", tt.position, res.Error)
			}
			if len(res.Files) != 1 || res.Files[0].Name != "doc_numbered.pdf" {
				t.Fatalf("files = %v, want single doc_numbered.pdf", res.Files)
			}
		})
	}
}
