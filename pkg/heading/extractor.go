// Package heading recovers the "Table <index> <description>" headings of a
// page from its token stream.
//
// Headings and body text differ only by font, so a heading is a run of
// tokens that starts at the anchor word and continues while the font key
// stays the same.
package heading

import (
	"strings"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

// Options configures an Extractor
type Options struct {
	// Anchor is the word that starts every heading
	Anchor string

	// FontMarker must be a substring of the font key of every anchor token.
	// An anchor in any other font means the report layout is unsupported.
	FontMarker string
}

// DefaultOptions returns the options for the 2018-2020 report family
func DefaultOptions() Options {
	return Options{
		Anchor:     "Table",
		FontMarker: "CMSSBX10-",
	}
}

// Extractor turns a page's token stream into its table headings
type Extractor struct {
	opts Options
}

// New creates an Extractor, filling empty options with defaults
func New(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.Anchor == "" {
		opts.Anchor = def.Anchor
	}
	if opts.FontMarker == "" {
		opts.FontMarker = def.FontMarker
	}
	return &Extractor{opts: opts}
}

// run is the Building state: an open heading run
type run struct {
	fontKey string
	top     float64
	words   []string
}

// scanner is the two-state machine. A nil current run is the Idle state.
type scanner struct {
	opts     Options
	current  *run
	lastFont string
	tops     []float64
	headings []string
}

func (s *scanner) feed(tok model.Token) error {
	if s.current == nil && tok.Text == s.opts.Anchor {
		if !strings.Contains(tok.FontKey, s.opts.FontMarker) {
			return model.Errorf(model.ErrUnrecognizedFont, "",
				"anchor %q at top %.2f uses font %q, expected one containing %q",
				tok.Text, tok.Top, tok.FontKey, s.opts.FontMarker)
		}
		s.current = &run{fontKey: tok.FontKey, top: tok.Top}
		s.lastFont = tok.FontKey
		s.tops = append(s.tops, tok.Top)
	}

	if tok.FontKey != s.lastFont {
		s.end()
	}
	if s.current != nil {
		s.current.words = append(s.current.words, tok.Text)
	}
	return nil
}

// end closes the open run, if any, and records its heading
func (s *scanner) end() {
	if s.current == nil {
		return
	}
	if len(s.current.words) > 0 {
		s.headings = append(s.headings, strings.Join(s.current.words, " "))
	}
	s.current = nil
}

// Extract returns the table headings of one page in top-to-bottom order.
//
// Only runs closed by a font change are headings; a run still open when the
// tokens run out is discarded, though its top still takes part in the
// ordering check. Runs whose second word does not start with a digit are
// dropped too; they share the heading font but are not table headings (the
// table of contents title, for example).
func (e *Extractor) Extract(tokens []model.Token) ([]string, error) {
	s := &scanner{opts: e.opts}
	for _, tok := range tokens {
		if err := s.feed(tok); err != nil {
			return nil, err
		}
	}
	s.current = nil

	if !model.IsIncreasing(s.tops) {
		return nil, model.Errorf(model.ErrOrderingViolation, "",
			"heading tops %v are not strictly increasing", s.tops)
	}

	results := make([]string, 0, len(s.headings))
	for _, h := range s.headings {
		if IsTableHeading(h) {
			results = append(results, h)
		}
	}
	return results, nil
}

// IsTableHeading reports whether the second word of h starts with a digit
func IsTableHeading(h string) bool {
	fields := strings.Fields(h)
	if len(fields) < 2 {
		return false
	}
	c := fields[1][0]
	return c >= '0' && c <= '9'
}

