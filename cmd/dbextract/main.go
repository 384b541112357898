// Command dbextract extracts the tables of a DataBuddies report.
//
// Usage:
//
//	dbextract [-config dbextract.yaml] [-xlsx] [-sqlite] [-workers N] [-backend auto] [-v] report.pdf
//
// It writes report.json beside the input and one TSV file plus one title
// file per table into report-tsv/.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pyhub-apps/databuddies-golang"
	"github.com/pyhub-apps/databuddies-golang/internal/logger"
	"github.com/pyhub-apps/databuddies-golang/pkg/config"
	"github.com/pyhub-apps/databuddies-golang/pkg/output"
)

const usageText = `Example Usage: %s mydata.pdf
    Extracts the tables of a DataBuddies report.
    Do not trust the output without manually verifying data in the pdf.
    It creates a single json file in the same directory as the input file
    and one tsv file per table in a new sub-directory (e.g. mydata-tsv).

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout io.Writer) int {
	log := logger.GetLogger("dbextract")

	fs := flag.NewFlagSet("dbextract", flag.ContinueOnError)
	fs.SetOutput(stdout)
	var (
		configPath = fs.String("config", "", "YAML config file")
		xlsx       = fs.Bool("xlsx", false, "Also write an Excel workbook")
		sqlite     = fs.Bool("sqlite", false, "Also write a SQLite database")
		workers    = fs.Int("workers", 0, "Pages processed at once (default from config)")
		backend    = fs.String("backend", "", "Text backend: auto, ledongthuc, dslipak (default from config)")
		verbose    = fs.Bool("v", false, "Debug logging")
	)
	fs.Usage = func() {
		fmt.Fprintf(stdout, usageText, fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 0
	}
	if *verbose {
		logger.SetDebug(true)
	}

	inputPath := fs.Arg(0)
	if !strings.HasSuffix(inputPath, ".pdf") {
		log.Error("input must be a .pdf file", "path", inputPath)
		return 1
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Error("failed to load config", "error", err)
			return 1
		}
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	cfg.Outputs.XLSX = cfg.Outputs.XLSX || *xlsx
	cfg.Outputs.SQLite = cfg.Outputs.SQLite || *sqlite
	if err := cfg.Validate(); err != nil {
		log.Error("invalid settings", "error", err)
		return 1
	}

	tables, err := databuddies.ExtractFile(ctx, inputPath, cfg)
	if err != nil {
		log.Error("extraction failed", "path", inputPath, "error", err)
		return 1
	}

	if err := write(ctx, stdout, inputPath, cfg.Outputs, tables); err != nil {
		log.Error("failed to write output", "error", err)
		return 1
	}
	return 0
}

// write produces the configured output files next to the input
func write(ctx context.Context, stdout io.Writer, inputPath string, outputs config.Outputs, tables []databuddies.Table) error {
	stem := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	source := filepath.Base(stem)

	if outputs.JSON {
		path := stem + ".json"
		fmt.Fprintf(stdout, "Writing %s\n", path)
		if err := output.WriteJSON(path, tables); err != nil {
			return err
		}
	}

	if outputs.TSV {
		dir := stem + "-tsv"
		if _, err := output.WriteTSV(dir, source, tables); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%d tables written to %s\n", len(tables), dir)
	}

	if outputs.XLSX {
		path := stem + ".xlsx"
		fmt.Fprintf(stdout, "Writing %s\n", path)
		if err := output.WriteXLSX(path, tables); err != nil {
			return err
		}
	}

	if outputs.SQLite {
		path := stem + ".sqlite"
		fmt.Fprintf(stdout, "Writing %s\n", path)
		if err := output.WriteSQLite(ctx, path, source, tables); err != nil {
			return err
		}
	}
	return nil
}
