package pdf

import (
	"os"

	gopdf "github.com/dslipak/pdf"
	"github.com/pkg/errors"
)

// dslipakReader reads glyphs with the dslipak/pdf library
type dslipakReader struct {
	file   *os.File
	reader *gopdf.Reader
}

func openDslipak(path string) (*dslipakReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to stat file")
	}
	r, err := gopdf.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to open PDF with dslipak")
	}
	return &dslipakReader{file: f, reader: r}, nil
}

func (r *dslipakReader) Name() string {
	return string(BackendDslipak)
}

func (r *dslipakReader) NumPage() int {
	return r.reader.NumPage()
}

func (r *dslipakReader) Glyphs(pageNum int, pageTop float64) (chars []CharObject, err error) {
	if pageNum < 1 || pageNum > r.reader.NumPage() {
		return nil, errors.Errorf("invalid page number: %d", pageNum)
	}

	defer func() {
		if rec := recover(); rec != nil {
			chars = nil
			err = errors.Errorf("dslipak failed to read page %d: %v", pageNum, rec)
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

func (r *dslipakReader) Close() error {
	return r.file.Close()
}
