// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tool

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	m.calls = append(m.calls, key)
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func TestDetectOffice(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "soffice available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"soffice": true},
				runnableCmds:  map[string]bool{"soffice --version": true},
			},
			wantName: "soffice",
		},
		{
			name: "libreoffice fallback when soffice missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"libreoffice": true},
				runnableCmds:  map[string]bool{"libreoffice --version": true},
			},
			wantName: "libreoffice",
		},
		{
			name: "soffice on PATH but version fails, libreoffice works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"soffice": true, "libreoffice": true},
				runnableCmds:  map[string]bool{"libreoffice --version": true},
			},
			wantName: "libreoffice",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := detectOffice(tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no office suite available") {
					t.Errorf("error should mention no office suite, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if o.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", o.Name(), tt.wantName)
			}
		})
	}
}

func TestDetectRasterizer(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name:     "pdftoppm preferred",
			exec:     &mockExecutor{availableBins: map[string]bool{"pdftoppm": true, "mutool": true}},
			wantName: "pdftoppm",
		},
		{
			name:     "mutool fallback",
			exec:     &mockExecutor{availableBins: map[string]bool{"mutool": true}},
			wantName: "mutool",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{availableBins: map[string]bool{}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := detectRasterizer(tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", r.Name(), tt.wantName)
			}
		})
	}
}

func TestOfficeConvertToArgs(t *testing.T) {
	exec := &mockExecutor{
		availableBins: map[string]bool{"soffice": true},
		runnableCmds: map[string]bool{
			"soffice --headless --norestore --convert-to pdf --outdir /tmp/ws /tmp/ws/in.docx": true,
		},
	}
	o := newSoffice(exec)

	if err := o.ConvertTo("pdf", "/tmp/ws/in.docx", "/tmp/ws"); err != nil {
		t.Fatalf("ConvertTo: %v", err)
	}

	if err := o.ConvertTo("pptx", "/tmp/ws/in.pdf", "/tmp/ws"); err == nil {
		t.Error("expected error for unconfigured command")
	}
}

func TestRasterizerArgs(t *testing.T) {
	outDir := "/tmp/ws/out"

	exec := &mockExecutor{runnableCmds: map[string]bool{
		"pdftoppm -jpeg -r 150 /tmp/ws/in.pdf " + filepath.Join(outDir, "page"):                true,
		"mutool draw -r 150 -o " + filepath.Join(outDir, "page-%03d.jpg") + " /tmp/ws/in.pdf": true,
	}}

	if err := newPdftoppm(exec).RenderJPEG("/tmp/ws/in.pdf", outDir, 150); err != nil {
		t.Errorf("pdftoppm args: %v", err)
	}
	if err := newMutool(exec).RenderJPEG("/tmp/ws/in.pdf", outDir, 150); err != nil {
		t.Errorf("mutool args: %v", err)
	}
}
