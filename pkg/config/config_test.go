package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pyhub-apps/databuddies-golang/pkg/normalize"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dbextract.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if !cfg.Outputs.JSON || !cfg.Outputs.TSV || cfg.Outputs.XLSX || cfg.Outputs.SQLite {
		t.Errorf("unexpected default outputs: %+v", cfg.Outputs)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
institution: Purdue
workers: 4
backend: dslipak
outputs:
  xlsx: true
header_rewrites:
  - name: percent-2021
    match: ["", "{own_label} {peer_label}\n(%) (%)", ""]
    replace: ["", "{institution} (%)", "{peer} (%)"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if cfg.Institution != "Purdue" || cfg.Workers != 4 || cfg.Backend != "dslipak" {
		t.Errorf("loaded values not applied: %+v", cfg)
	}
	if cfg.PeerPrefix != "Similar" || cfg.XTolerance != 3 {
		t.Errorf("defaults not kept: %+v", cfg)
	}
	if !cfg.Outputs.XLSX || !cfg.Outputs.JSON || !cfg.Outputs.TSV {
		t.Errorf("outputs = %+v, want json, tsv and xlsx", cfg.Outputs)
	}

	opts := cfg.NormalizeOptions()
	builtin := len(normalize.DefaultRewrites())
	if len(opts.Rewrites) != builtin+1 {
		t.Fatalf("got %d rewrites, want %d", len(opts.Rewrites), builtin+1)
	}
	if opts.Rewrites[builtin].Name != "percent-2021" {
		t.Errorf("configured rewrite should come last, got %q", opts.Rewrites[builtin].Name)
	}
	if opts.Institution != "Purdue" {
		t.Errorf("normalize institution = %q", opts.Institution)
	}

	ext := cfg.ExtractOptions()
	if ext.Workers != 4 || ext.Heading.Anchor != "Table" || ext.Heading.FontMarker != "CMSSBX10-" {
		t.Errorf("extract options = %+v", ext)
	}
	if len(cfg.PDFOptions()) == 0 {
		t.Error("PDFOptions returned nothing")
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
		want    string
	}{
		{
			name:    "unknown key",
			content: "institutoin: Purdue\n",
			want:    "institutoin",
		},
		{
			name:    "bad yaml",
			content: "workers: [\n",
			want:    "failed to parse config",
		},
		{
			name:    "zero workers",
			content: "workers: 0\n",
			invalid: true,
			want:    "workers",
		},
		{
			name:    "unknown backend",
			content: "backend: pdfcpu\n",
			invalid: true,
			want:    "pdfcpu",
		},
		{
			name:    "empty institution",
			content: "institution: \"\"\n",
			invalid: true,
			want:    "institution",
		},
		{
			name:    "negative tolerance",
			content: "snap_tolerance: -1\n",
			invalid: true,
			want:    "tolerances",
		},
		{
			name:    "rewrite shadows a built-in rule",
			content: "header_rewrites:\n  - name: percent-with-sig\n    match: [a]\n    replace: [b]\n",
			invalid: true,
			want:    "duplicate",
		},
		{
			name:    "rewrite without replace",
			content: "header_rewrites:\n  - name: empty\n    match: [a]\n",
			invalid: true,
			want:    "match and replace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.Is(err, ErrInvalidConfig) != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalidConfig) = %v, want %v (%v)", !tt.invalid, tt.invalid, err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() = %v, want a not-exist error", err)
	}
}
