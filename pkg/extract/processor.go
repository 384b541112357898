// Package extract drives the page pipeline: it pairs the headings of a page
// with its data tables and normalizes each pair.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pyhub-apps/databuddies-golang/internal/logger"
	"github.com/pyhub-apps/databuddies-golang/pkg/heading"
	"github.com/pyhub-apps/databuddies-golang/pkg/model"
	"github.com/pyhub-apps/databuddies-golang/pkg/normalize"
)

// Source is the layout source: the pages of one document with their tokens
// and raw table grids.
type Source interface {
	PageCount() int
	// LoadPage returns the page at the 0-based index
	LoadPage(ctx context.Context, index int) (*model.Page, error)
}

// Options configures a Processor
type Options struct {
	Heading   heading.Options
	Normalize normalize.Options

	// Workers is the number of pages processed at once. Values below 2 mean
	// strictly sequential processing.
	Workers int
}

// Processor turns pages into normalized tables. It is safe for concurrent
// use; pages share no state.
type Processor struct {
	headings   *heading.Extractor
	normalizer *normalize.Normalizer
	workers    int
	log        *slog.Logger
}

// New creates a Processor. A nil log uses the "extract" module logger.
func New(opts Options, log *slog.Logger) *Processor {
	if log == nil {
		log = logger.GetLogger("extract")
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		headings:   heading.New(opts.Heading),
		normalizer: normalize.New(opts.Normalize),
		workers:    workers,
		log:        log,
	}
}

// ProcessPage returns the normalized tables of page in top-to-bottom order
func (p *Processor) ProcessPage(page *model.Page) ([]model.Table, error) {
	headings, err := p.headings.Extract(page.Tokens)
	if err != nil {
		return nil, model.WithPage(err, page.Number)
	}

	tables, err := dataTables(page.Tables)
	if err != nil {
		return nil, model.WithPage(err, page.Number)
	}

	tops := make([]float64, len(tables))
	for i, t := range tables {
		tops[i] = t.Top
	}
	if !model.IsIncreasing(tops) {
		return nil, &model.Error{
			Kind:   model.ErrOrderingViolation,
			Page:   page.Number,
			Detail: fmt.Sprintf("table tops %v are not strictly increasing", tops),
		}
	}

	if len(headings) != len(tables) {
		return nil, &model.Error{
			Kind: model.ErrCountMismatch,
			Page: page.Number,
			Detail: fmt.Sprintf("%d heading(s) for %d table(s)\nheadings:\n%s\ntables:\n%s",
				len(headings), len(tables), describeHeadings(headings), describeTables(tables)),
		}
	}

	p.log.Debug("processing page", "page", page.Number, "tables", len(tables))

	results := make([]model.Table, 0, len(tables))
	for i, h := range headings {
		table, err := p.normalizer.Normalize(h, tables[i])
		if err != nil {
			return nil, model.WithPage(err, page.Number)
		}
		results = append(results, table)
	}
	return results, nil
}

// ProcessDocument processes every page of src and returns the tables in
// page-then-table order. The first failure stops the run; no partial result
// is returned.
func (p *Processor) ProcessDocument(ctx context.Context, src Source) ([]model.Table, error) {
	count := src.PageCount()
	pages := make([][]model.Table, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < count; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			page, err := src.LoadPage(gctx, i)
			if err != nil {
				return fmt.Errorf("failed to load page %d: %w", i+1, err)
			}
			tables, err := p.ProcessPage(page)
			if err != nil {
				return err
			}
			pages[i] = tables
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []model.Table
	for _, tables := range pages {
		results = append(results, tables...)
	}
	if results == nil {
		results = []model.Table{}
	}
	p.log.Info("document processed", "pages", count, "tables", len(results))
	return results, nil
}

// dataTables drops the blank sentinel grids the layout source reports for
// decorative boxes. Any grid of more than two rows is data; a shorter one
// must have a blank first row.
func dataTables(raw []model.RawTable) ([]model.RawTable, error) {
	tables := make([]model.RawTable, 0, len(raw))
	for _, t := range raw {
		if len(t.Rows) > 2 {
			tables = append(tables, t)
			continue
		}
		if len(t.Rows) == 0 || !model.IsBlankRow(t.Rows[0]) {
			return nil, &model.Error{
				Kind:   model.ErrUnknownHeaderShape,
				Detail: fmt.Sprintf("%d-row grid at top %.2f is neither data nor a blank sentinel: %q", len(t.Rows), t.Top, t.Strings()),
			}
		}
	}
	return tables, nil
}

func describeHeadings(headings []string) string {
	var b strings.Builder
	for _, h := range headings {
		fmt.Fprintf(&b, "  %s\n", h)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func describeTables(tables []model.RawTable) string {
	var b strings.Builder
	for _, t := range tables {
		var first []string
		if rows := t.Strings(); len(rows) > 0 {
			first = rows[0]
		}
		fmt.Fprintf(&b, "  top %.2f, %d rows, first row %q\n", t.Top, len(t.Rows), first)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
