// Command dbpage dumps what the extractor sees on one page of a report: the
// words with their font keys, the ruled grids, the headings found and the
// outcome of processing the page. It is meant for working out why a page
// fails.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pyhub-apps/databuddies-golang/pkg/config"
	"github.com/pyhub-apps/databuddies-golang/pkg/extract"
	"github.com/pyhub-apps/databuddies-golang/pkg/heading"
	"github.com/pyhub-apps/databuddies-golang/pkg/model"
	"github.com/pyhub-apps/databuddies-golang/pkg/pdf"
)

func main() {
	var (
		pdfPath    = flag.String("pdf", "", "Path to PDF file")
		pageNum    = flag.Int("page", 1, "Page number (1-based)")
		configPath = flag.String("config", "", "YAML config file")
		library    = flag.String("lib", "", "Text backend (auto, ledongthuc, dslipak)")
		maxWords   = flag.Int("words", 40, "Number of words to print, 0 for all")
	)
	flag.Parse()

	if *pdfPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *library != "" {
		cfg.Backend = *library
	}

	doc, err := pdf.Open(*pdfPath, cfg.PDFOptions()...)
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	fmt.Printf("Pages: %d\n", doc.PageCount())

	start := time.Now()
	page, err := doc.GetPage(*pageNum - 1)
	if err != nil {
		log.Fatalf("Failed to get page: %v", err)
	}
	words := page.ExtractWords()
	grids := page.ExtractTables()
	fmt.Printf("Page %d: %.2f x %.2f, loaded in %v\n", page.Number, page.Width, page.Height, time.Since(start))
	fmt.Printf("  %d chars, %d lines, %d rects\n\n",
		len(page.Objects.Chars), len(page.Objects.Lines), len(page.Objects.Rects))

	printWords(words, *maxWords)
	printGrids(grids)

	tokens := pdf.Tokens(words)
	headings, err := heading.New(cfg.HeadingOptions()).Extract(tokens)
	if err != nil {
		fmt.Printf("Headings: %v\n\n", err)
	} else {
		fmt.Printf("Headings (%d):\n", len(headings))
		for _, h := range headings {
			fmt.Printf("  %s\n", h)
		}
		fmt.Println()
	}

	p := extract.New(cfg.ExtractOptions(), nil)
	tables, err := p.ProcessPage(&model.Page{
		Number: page.Number,
		Tokens: tokens,
		Tables: pdf.RawTables(grids),
	})
	if err != nil {
		fmt.Printf("Processing failed:\n  %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Processed %d table(s):\n", len(tables))
	for _, t := range tables {
		fmt.Printf("  %s %s\n    header: %q\n    %d rows\n", t.Index, t.Description, t.Header, len(t.Data))
	}
}

func printWords(words []pdf.Word, limit int) {
	n := len(words)
	if limit > 0 && limit < n {
		n = limit
	}
	fmt.Printf("Words (%d of %d):\n", n, len(words))
	for _, w := range words[:n] {
		fmt.Printf("  %-24s %-20s top=%.2f x=%.2f\n", w.Text, w.FontKey(), w.Y0, w.X0)
	}
	fmt.Println()
}

func printGrids(grids []pdf.Table) {
	fmt.Printf("Grids (%d):\n", len(grids))
	for i, g := range grids {
		cols := 0
		for _, row := range g.Rows {
			cols = max(cols, len(row))
		}
		fmt.Printf("  Grid %d: %d rows x %d columns, top=%.2f\n", i+1, len(g.Rows), cols, g.BBox.Y0)
		for _, row := range g.Rows {
			cells := make([]string, len(row))
			for j, c := range row {
				if c.Absent {
					cells[j] = "-"
				} else {
					cells[j] = fmt.Sprintf("%q", c.Text)
				}
			}
			fmt.Printf("    [%s]\n", strings.Join(cells, " "))
		}
	}
	fmt.Println()
}
