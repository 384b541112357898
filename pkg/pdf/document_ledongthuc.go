package pdf

import (
	"io"

	lpdf "github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

// ledongthucReader reads glyphs with the ledongthuc/pdf library
type ledongthucReader struct {
	file   io.Closer
	reader *lpdf.Reader
}

func openLedongthuc(path string) (*ledongthucReader, error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF with ledongthuc")
	}
	return &ledongthucReader{file: f, reader: r}, nil
}

func (r *ledongthucReader) Name() string {
	return string(BackendLedongthuc)
}

func (r *ledongthucReader) NumPage() int {
	return r.reader.NumPage()
}

func (r *ledongthucReader) Glyphs(pageNum int, pageTop float64) (chars []CharObject, err error) {
	if pageNum < 1 || pageNum > r.reader.NumPage() {
		return nil, errors.Errorf("invalid page number: %d", pageNum)
	}

	// Content panics on some malformed streams
	defer func() {
		if rec := recover(); rec != nil {
			chars = nil
			err = errors.Errorf("ledongthuc failed to read page %d: %v", pageNum, rec)
		}
	}()

	page := r.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, errors.Errorf("page %d not found", pageNum)
	}
	for _, text := range page.Content().Text {
		chars = appendGlyphs(chars, text.S, text.Font, text.FontSize, text.X, text.Y, text.W, pageTop)
	}
	return chars, nil
}

func (r *ledongthucReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
