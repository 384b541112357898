// Package config holds the extractor settings and loads them from YAML.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/pyhub-apps/databuddies-golang/pkg/extract"
	"github.com/pyhub-apps/databuddies-golang/pkg/heading"
	"github.com/pyhub-apps/databuddies-golang/pkg/normalize"
	"github.com/pyhub-apps/databuddies-golang/pkg/pdf"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings of an extraction run
type Config struct {
	// Report vocabulary
	Institution       string `yaml:"institution"`
	PeerPrefix        string `yaml:"peer_prefix"`
	OwnGroupLabel     string `yaml:"own_group_label"`
	PeerGroupLabel    string `yaml:"peer_group_label"`
	QuestionLabel     string `yaml:"question_label"`
	CountMarker       string `yaml:"count_marker"`
	AnchorWord        string `yaml:"anchor_word"`
	HeadingFontMarker string `yaml:"heading_font_marker"`

	// HeaderRewrites are tried after the built-in rules
	HeaderRewrites []normalize.Rewrite `yaml:"header_rewrites"`

	// Layout source
	Backend          string  `yaml:"backend"` // auto, ledongthuc, dslipak
	XTolerance       float64 `yaml:"x_tolerance"`
	YTolerance       float64 `yaml:"y_tolerance"`
	SnapTolerance    float64 `yaml:"snap_tolerance"`
	NormalizeUnicode bool    `yaml:"normalize_unicode"`

	// Workers is the number of pages processed at once
	Workers int `yaml:"workers"`

	Outputs Outputs `yaml:"outputs"`
}

// Outputs selects the files written next to the report
type Outputs struct {
	JSON   bool `yaml:"json"`
	TSV    bool `yaml:"tsv"`
	XLSX   bool `yaml:"xlsx"`
	SQLite bool `yaml:"sqlite"`
}

// Default returns the configuration for the Illinois 2018-2020 reports
func Default() Config {
	norm := normalize.DefaultOptions()
	head := heading.DefaultOptions()
	return Config{
		Institution:       norm.Institution,
		PeerPrefix:        norm.PeerPrefix,
		OwnGroupLabel:     norm.OwnGroupLabel,
		PeerGroupLabel:    norm.PeerGroupLabel,
		QuestionLabel:     norm.QuestionLabel,
		CountMarker:       norm.CountMarker,
		AnchorWord:        head.Anchor,
		HeadingFontMarker: head.FontMarker,
		Backend:           string(pdf.BackendAuto),
		XTolerance:        3,
		YTolerance:        3,
		SnapTolerance:     3,
		Workers:           1,
		Outputs: Outputs{
			JSON: true,
			TSV:  true,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config")
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings for values the pipeline cannot work with
func (c Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"institution", c.Institution},
		{"peer_prefix", c.PeerPrefix},
		{"own_group_label", c.OwnGroupLabel},
		{"peer_group_label", c.PeerGroupLabel},
		{"question_label", c.QuestionLabel},
		{"count_marker", c.CountMarker},
		{"anchor_word", c.AnchorWord},
		{"heading_font_marker", c.HeadingFontMarker},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Wrapf(ErrInvalidConfig, "%s must not be empty", r.key)
		}
	}

	if !pdf.Backend(c.Backend).Valid() {
		return errors.Wrapf(ErrInvalidConfig, "unknown backend %q", c.Backend)
	}
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "workers must be at least 1, got %d", c.Workers)
	}
	if c.XTolerance <= 0 || c.YTolerance <= 0 || c.SnapTolerance <= 0 {
		return errors.Wrap(ErrInvalidConfig, "tolerances must be positive")
	}

	names := map[string]bool{}
	for _, rw := range normalize.DefaultRewrites() {
		names[rw.Name] = true
	}
	for i, rw := range c.HeaderRewrites {
		if rw.Name == "" {
			return errors.Wrapf(ErrInvalidConfig, "header rewrite %d has no name", i+1)
		}
		if names[rw.Name] {
			return errors.Wrapf(ErrInvalidConfig, "duplicate header rewrite %q", rw.Name)
		}
		names[rw.Name] = true
		if len(rw.Match) == 0 || len(rw.Replace) == 0 {
			return errors.Wrapf(ErrInvalidConfig, "header rewrite %q needs match and replace cells", rw.Name)
		}
	}
	return nil
}

// HeadingOptions returns the heading extractor settings
func (c Config) HeadingOptions() heading.Options {
	return heading.Options{
		Anchor:     c.AnchorWord,
		FontMarker: c.HeadingFontMarker,
	}
}

// NormalizeOptions returns the normalizer settings; configured rewrites
// follow the built-in ones
func (c Config) NormalizeOptions() normalize.Options {
	rewrites := normalize.DefaultRewrites()
	rewrites = append(rewrites, c.HeaderRewrites...)
	return normalize.Options{
		Institution:    c.Institution,
		PeerPrefix:     c.PeerPrefix,
		OwnGroupLabel:  c.OwnGroupLabel,
		PeerGroupLabel: c.PeerGroupLabel,
		QuestionLabel:  c.QuestionLabel,
		CountMarker:    c.CountMarker,
		Anchor:         c.AnchorWord,
		Rewrites:       rewrites,
	}
}

// ExtractOptions returns the page processor settings
func (c Config) ExtractOptions() extract.Options {
	return extract.Options{
		Heading:   c.HeadingOptions(),
		Normalize: c.NormalizeOptions(),
		Workers:   c.Workers,
	}
}

// PDFOptions returns the layout source settings
func (c Config) PDFOptions() []pdf.Option {
	return []pdf.Option{
		pdf.WithBackend(pdf.Backend(c.Backend)),
		pdf.WithXTolerance(c.XTolerance),
		pdf.WithYTolerance(c.YTolerance),
		pdf.WithSnapTolerance(c.SnapTolerance),
		pdf.WithUnicodeNormalization(c.NormalizeUnicode),
	}
}
