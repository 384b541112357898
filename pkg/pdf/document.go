// Package pdf is the layout source of the extractor: it opens a report,
// reads the glyphs of a page with a text backend and the rulings with
// pdfcpu, and turns them into words and ruled table grids.
package pdf

import (
	"log/slog"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"

	"github.com/pyhub-apps/databuddies-golang/internal/logger"
)

var disableConfigDir sync.Once

// Option configures how a document is read
type Option func(*options)

type options struct {
	backend          Backend
	xTolerance       float64
	yTolerance       float64
	table            TableSettings
	normalizeUnicode bool
}

func defaultOptions() options {
	return options{
		backend:    BackendAuto,
		xTolerance: 3,
		yTolerance: 3,
		table:      DefaultTableSettings(),
	}
}

// WithBackend selects the text backend
func WithBackend(b Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithXTolerance sets the horizontal gap that separates words
func WithXTolerance(tolerance float64) Option {
	return func(o *options) {
		o.xTolerance = tolerance
	}
}

// WithYTolerance sets the baseline shift that separates words
func WithYTolerance(tolerance float64) Option {
	return func(o *options) {
		o.yTolerance = tolerance
	}
}

// WithSnapTolerance sets how far apart rulings may be and still be joined
// into one grid line
func WithSnapTolerance(tolerance float64) Option {
	return func(o *options) {
		o.table.SnapTolerance = tolerance
		o.table.JoinTolerance = tolerance
	}
}

// WithUnicodeNormalization applies NFKC to glyph text
func WithUnicodeNormalization(enabled bool) Option {
	return func(o *options) {
		o.normalizeUnicode = enabled
	}
}

// PDFDocument is an open report. Loading pages is serialized; the returned
// pages are independent of the document.
type PDFDocument struct {
	mu       sync.Mutex
	ctx      *model.Context
	filepath string
	readers  []glyphReader
	opts     options
	log      *slog.Logger
}

// Open validates the PDF file with pdfcpu and opens the text backend
func Open(filepath string, opts ...Option) (*PDFDocument, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if !o.backend.Valid() {
		return nil, errors.Errorf("unknown backend %q", o.backend)
	}

	disableConfigDir.Do(api.DisableConfigDir)

	ctx, err := api.ReadContextFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read PDF context")
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, errors.Wrap(err, "invalid PDF")
	}

	doc := &PDFDocument{
		ctx:      ctx,
		filepath: filepath,
		opts:     o,
		log:      logger.GetLogger("pdf"),
	}
	if err := doc.openReaders(); err != nil {
		return nil, err
	}
	return doc, nil
}

// openReaders opens the configured backends, most preferred first
func (d *PDFDocument) openReaders() error {
	var errs []error

	if d.opts.backend == BackendAuto || d.opts.backend == BackendLedongthuc {
		r, err := openLedongthuc(d.filepath)
		if err == nil {
			d.readers = append(d.readers, r)
		} else {
			errs = append(errs, err)
		}
	}
	if d.opts.backend == BackendAuto || d.opts.backend == BackendDslipak {
		r, err := openDslipak(d.filepath)
		if err == nil {
			d.readers = append(d.readers, r)
		} else {
			errs = append(errs, err)
		}
	}

	if len(d.readers) == 0 {
		return errors.Errorf("no text backend could open %s: %v", d.filepath, errs)
	}
	for _, err := range errs {
		d.log.Warn("text backend unavailable", "error", err)
	}
	for _, r := range d.readers {
		if n := r.NumPage(); n != d.ctx.PageCount {
			d.log.Warn("backend page count differs", "backend", r.Name(), "pages", n, "expected", d.ctx.PageCount)
		}
	}
	return nil
}

// PageCount returns the total number of pages
func (d *PDFDocument) PageCount() int {
	return d.ctx.PageCount
}

// GetPage loads a specific page by index (0-based)
func (d *PDFDocument) GetPage(index int) (*Page, error) {
	if index < 0 || index >= d.ctx.PageCount {
		return nil, errors.Errorf("page index %d out of range [0, %d)", index, d.ctx.PageCount)
	}
	pageNr := index + 1

	d.mu.Lock()
	defer d.mu.Unlock()

	g, err := readGeometry(d.ctx, pageNr)
	if err != nil {
		return nil, err
	}
	objects := NewContentStreamParser(g.top).Parse(g.content)

	chars, err := d.glyphs(pageNr, g.top)
	if err != nil {
		return nil, err
	}
	if d.opts.normalizeUnicode {
		foldCompatibility(chars)
	}
	objects.Chars = chars

	d.log.Debug("loaded page", "page", pageNr, "chars", len(chars),
		"lines", len(objects.Lines), "rects", len(objects.Rects))

	return &Page{
		Number:  pageNr,
		Width:   g.width,
		Height:  g.height,
		Objects: objects,
		opts:    &d.opts,
	}, nil
}

// glyphs reads a page with the first backend that can
func (d *PDFDocument) glyphs(pageNr int, top float64) ([]CharObject, error) {
	var errs []error
	for _, r := range d.readers {
		chars, err := r.Glyphs(pageNr, top)
		if err == nil {
			if len(errs) > 0 {
				d.log.Warn("page read with fallback backend", "page", pageNr, "backend", r.Name())
			}
			return chars, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Errorf("no backend could read page %d: %v", pageNr, errs)
}

// Close releases resources associated with the document
func (d *PDFDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var first error
	for _, r := range d.readers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	d.readers = nil
	d.ctx = nil
	return first
}
