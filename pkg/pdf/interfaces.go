package pdf

import (
	"io"
)

// Backend selects the library that reads page text
type Backend string

const (
	// BackendAuto reads with ledongthuc/pdf and falls back to dslipak/pdf
	// for documents or pages it cannot read
	BackendAuto       Backend = "auto"
	BackendLedongthuc Backend = "ledongthuc"
	BackendDslipak    Backend = "dslipak"
)

// Valid reports whether b names a known backend
func (b Backend) Valid() bool {
	switch b {
	case BackendAuto, BackendLedongthuc, BackendDslipak:
		return true
	}
	return false
}

// glyphReader produces the glyphs of a page in content stream order
type glyphReader interface {
	io.Closer

	// Name identifies the backend in errors and logs
	Name() string

	// NumPage returns the number of pages the backend sees
	NumPage() int

	// Glyphs returns the glyphs of the 1-based page pageNum. pageTop is the
	// upper edge of the media box, used to flip coordinates to top-left.
	Glyphs(pageNum int, pageTop float64) ([]CharObject, error)
}
