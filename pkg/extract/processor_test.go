package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pyhub-apps/databuddies-golang/internal/logger"
	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

const (
	headFont = "CMSSBX10-10"
	bodyFont = "CMR10-10"
)

func words(font string, top float64, texts ...string) []model.Token {
	tokens := make([]model.Token, len(texts))
	for i, text := range texts {
		tokens[i] = model.Token{Text: text, FontKey: font, Top: top}
	}
	return tokens
}

func rows(values ...[]string) [][]model.Cell {
	grid := make([][]model.Cell, len(values))
	for i, row := range values {
		for _, v := range row {
			grid[i] = append(grid[i], model.TextCell(v))
		}
	}
	return grid
}

// simpleTable is a minimal three-row data grid
func simpleTable(top float64, question string) model.RawTable {
	return model.RawTable{
		Top: top,
		Rows: rows(
			[]string{"", "Percent"},
			[]string{question, "45%"},
			[]string{"n", "12"},
		),
	}
}

func sentinel(top float64) model.RawTable {
	return model.RawTable{
		Top:  top,
		Rows: [][]model.Cell{{model.AbsentCell(), model.TextCell("")}},
	}
}

// pageWith builds a page holding the given headings at increasing tops
func pageWith(number int, headings []string, tables ...model.RawTable) *model.Page {
	var tokens []model.Token
	for i, h := range headings {
		top := float64(100 * (i + 1))
		tokens = append(tokens, words(headFont, top, strings.Fields(h)...)...)
		tokens = append(tokens, words(bodyFont, top+10, "body", "text")...)
	}
	return &model.Page{Number: number, Tokens: tokens, Tables: tables}
}

func quietLogger() *slog.Logger {
	return logger.New(&bytes.Buffer{}, slog.LevelInfo)
}

func TestProcessPage(t *testing.T) {
	p := New(Options{}, quietLogger())

	page := pageWith(3,
		[]string{"Table 1.1 Foo", "Table 1.2 Bar"},
		sentinel(20),
		simpleTable(110, "Q1"),
		simpleTable(210, "Q2"),
	)
	got, err := p.ProcessPage(page)
	if err != nil {
		t.Fatalf("ProcessPage() error: %v", err)
	}

	expected := []model.Table{
		{Index: "1.1", Description: "Foo", Header: []string{"Question", "Percent"}, Data: [][]string{{"Q1", "45"}, {"n", "12"}}},
		{Index: "1.2", Description: "Bar", Header: []string{"Question", "Percent"}, Data: [][]string{{"Q2", "45"}, {"n", "12"}}},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ProcessPage() =\n%#v\nexpected\n%#v", got, expected)
	}
}

func TestProcessPageEmpty(t *testing.T) {
	p := New(Options{}, quietLogger())

	got, err := p.ProcessPage(&model.Page{Number: 1, Tokens: words(bodyFont, 10, "Introduction")})
	if err != nil {
		t.Fatalf("ProcessPage() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tables, got %d", len(got))
	}
}

func TestProcessPageEndingInHeadingFont(t *testing.T) {
	p := New(Options{}, quietLogger())

	var tokens []model.Token
	tokens = append(tokens, words(headFont, 100, "Table", "1.1", "Foo")...)
	tokens = append(tokens, words(bodyFont, 110, "x")...)
	tokens = append(tokens, words(headFont, 300, "Table", "1.2", "Bar")...)

	got, err := p.ProcessPage(&model.Page{
		Number: 2,
		Tokens: tokens,
		Tables: []model.RawTable{simpleTable(110, "Q1")},
	})
	if err != nil {
		t.Fatalf("ProcessPage() error: %v", err)
	}
	if len(got) != 1 || got[0].Index != "1.1" || got[0].Description != "Foo" {
		t.Errorf("ProcessPage() = %#v, expected only table 1.1 Foo", got)
	}
}

func TestProcessPageFailures(t *testing.T) {
	tests := []struct {
		name   string
		page   *model.Page
		kind   error
		detail []string
	}{
		{
			name: "table tops out of order",
			page: pageWith(4,
				[]string{"Table 1.1 Foo", "Table 1.2 Bar"},
				simpleTable(50, "Q1"),
				simpleTable(40, "Q2"),
			),
			kind:   model.ErrOrderingViolation,
			detail: []string{"[50 40]"},
		},
		{
			name:   "more headings than tables",
			page:   pageWith(5, []string{"Table 1.1 Foo", "Table 1.2 Bar"}, simpleTable(110, "Q1")),
			kind:   model.ErrCountMismatch,
			detail: []string{"Table 1.1 Foo", "Table 1.2 Bar", "top 110.00"},
		},
		{
			name:   "table without heading",
			page:   pageWith(6, nil, simpleTable(110, "Q1")),
			kind:   model.ErrCountMismatch,
			detail: []string{"0 heading(s) for 1 table(s)"},
		},
		{
			name: "short grid that is not blank",
			page: pageWith(7, []string{"Table 1.1 Foo"}, model.RawTable{
				Top:  110,
				Rows: rows([]string{"", "Percent"}, []string{"Q1", "45%"}),
			}),
			kind: model.ErrUnknownHeaderShape,
		},
		{
			name: "heading anchor in an unknown font",
			page: &model.Page{
				Number: 8,
				Tokens: words("Helvetica-10", 10, "Table", "1.1", "Foo"),
			},
			kind: model.ErrUnrecognizedFont,
		},
		{
			name: "normalizer failure",
			page: pageWith(9, []string{"Table 1.1 Foo"}, model.RawTable{
				Top:  110,
				Rows: rows([]string{"", "A", "B", "C"}, []string{"Q1", "1"}, []string{"Q2", "2"}),
			}),
			kind:   model.ErrShapeRepairFailure,
			detail: []string{"Table 1.1 Foo"},
		},
	}

	p := New(Options{}, quietLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ProcessPage(tt.page)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			var e *model.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *model.Error, got %T", err)
			}
			if e.Page != tt.page.Number {
				t.Errorf("error page = %d, expected %d", e.Page, tt.page.Number)
			}
			for _, want := range tt.detail {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

type fakeSource struct {
	pages []*model.Page
	fail  map[int]error
	loads atomic.Int32
}

func (f *fakeSource) PageCount() int { return len(f.pages) }

func (f *fakeSource) LoadPage(ctx context.Context, index int) (*model.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.loads.Add(1)
	if err, ok := f.fail[index]; ok {
		return nil, err
	}
	return f.pages[index], nil
}

func documentPages(n int) []*model.Page {
	pages := make([]*model.Page, n)
	for i := range pages {
		h1 := fmt.Sprintf("Table %d.1 First", i+1)
		h2 := fmt.Sprintf("Table %d.2 Second", i+1)
		pages[i] = pageWith(i+1, []string{h1, h2}, simpleTable(110, "A"), simpleTable(210, "B"))
	}
	return pages
}

func TestProcessDocumentOrder(t *testing.T) {
	for _, workers := range []int{0, 1, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			src := &fakeSource{pages: documentPages(12)}
			p := New(Options{Workers: workers}, quietLogger())

			got, err := p.ProcessDocument(context.Background(), src)
			if err != nil {
				t.Fatalf("ProcessDocument() error: %v", err)
			}
			if len(got) != 24 {
				t.Fatalf("expected 24 tables, got %d", len(got))
			}
			for i, table := range got {
				expected := fmt.Sprintf("%d.%d", i/2+1, i%2+1)
				if table.Index != expected {
					t.Errorf("table %d has index %q, expected %q", i, table.Index, expected)
				}
			}
		})
	}
}

func TestProcessDocumentFailure(t *testing.T) {
	pages := documentPages(6)
	pages[3] = pageWith(4, []string{"Table 4.1 Only"})
	pages[3].Tables = []model.RawTable{simpleTable(110, "A"), simpleTable(210, "B")}

	src := &fakeSource{pages: pages}
	got, err := New(Options{}, quietLogger()).ProcessDocument(context.Background(), src)
	if !errors.Is(err, model.ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no partial result, got %d tables", len(got))
	}
	if n := src.loads.Load(); n != 4 {
		t.Errorf("sequential run loaded %d pages after failing on page 4", n)
	}
}

func TestProcessDocumentLoadError(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{pages: documentPages(3), fail: map[int]error{1: boom}}

	_, err := New(Options{Workers: 2}, quietLogger()).ProcessDocument(context.Background(), src)
	if !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if !strings.Contains(err.Error(), "page 2") {
		t.Errorf("error %q does not name the page", err)
	}
}

func TestProcessDocumentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{pages: documentPages(3)}
	_, err := New(Options{}, quietLogger()).ProcessDocument(ctx, src)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestProcessDocumentEmpty(t *testing.T) {
	got, err := New(Options{}, quietLogger()).ProcessDocument(context.Background(), &fakeSource{})
	if err != nil {
		t.Fatalf("ProcessDocument() error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
}
