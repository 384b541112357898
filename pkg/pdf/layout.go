package pdf

import (
	"context"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

// Layout presents a document as pages of tokens and raw table grids
type Layout struct {
	doc *PDFDocument
}

// NewLayout wraps doc. The layout does not own the document; the caller
// still closes it.
func NewLayout(doc *PDFDocument) *Layout {
	return &Layout{doc: doc}
}

// PageCount returns the number of pages in the document
func (l *Layout) PageCount() int {
	return l.doc.PageCount()
}

// LoadPage reads the page at the 0-based index
func (l *Layout) LoadPage(ctx context.Context, index int) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := l.doc.GetPage(index)
	if err != nil {
		return nil, err
	}

	return &model.Page{
		Number: page.Number,
		Tokens: Tokens(page.ExtractWords()),
		Tables: RawTables(page.ExtractTables()),
	}, nil
}

// Tokens converts words to pipeline tokens, keeping their order
func Tokens(words []Word) []model.Token {
	tokens := make([]model.Token, len(words))
	for i, w := range words {
		tokens[i] = model.Token{Text: w.Text, FontKey: w.FontKey(), Top: w.Y0}
	}
	return tokens
}

// RawTables converts found grids to raw tables, keeping their order
func RawTables(tables []Table) []model.RawTable {
	raw := make([]model.RawTable, len(tables))
	for i, t := range tables {
		raw[i] = model.RawTable{Top: t.BBox.Y0, Rows: t.Rows}
	}
	return raw
}
