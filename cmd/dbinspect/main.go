// Command dbinspect summarizes extracted DataBuddies tables.
//
// Usage:
//
//	dbinspect [-v] [-rows N] [-dir .] tsv|json
//
// tsv reads every */*.tsv file with its title file, json reads every *.json
// file. Both print the sorted union of column names; -v also prints every
// table.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/pyhub-apps/databuddies-golang/internal/logger"
	"github.com/pyhub-apps/databuddies-golang/pkg/model"
	"github.com/pyhub-apps/databuddies-golang/pkg/output"
)

const maxColumnWidth = 30

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

type inspector struct {
	out     io.Writer
	dir     string
	verbose bool
	rows    int
	columns map[string]bool
}

func run(args []string, stdout io.Writer) int {
	log := logger.GetLogger("dbinspect")

	fs := flag.NewFlagSet("dbinspect", flag.ContinueOnError)
	fs.SetOutput(stdout)
	verbose := fs.Bool("v", false, "Print summary information about every table")
	rows := fs.Int("rows", 0, "With -v, preview this many data rows per table")
	dir := fs.String("dir", ".", "Directory to read")
	fs.Usage = func() {
		fmt.Fprintf(stdout, "Usage: %s [-v] [-rows N] [-dir .] tsv|json\n", fs.Name())
		fmt.Fprintln(stdout, "Reads all tsv files in subdirectories or json files in the directory")
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

	in := &inspector{
		out:     stdout,
		dir:     *dir,
		verbose: *verbose,
		rows:    *rows,
		columns: map[string]bool{},
	}

	var err error
	switch fs.Arg(0) {
	case "tsv":
		err = in.readTSV()
	case "json":
		err = in.readJSON()
	default:
		fs.Usage()
		return 0
	}
	if err != nil {
		log.Error("inspection failed", "error", err)
		return 1
	}
	return 0
}

func (in *inspector) readTSV() error {
	files, err := filepath.Glob(filepath.Join(in.dir, "*", "*.tsv"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		source, t, err := output.ReadTSV(file)
		if err != nil {
			return err
		}
		in.add(source, t)
	}
	in.printColumns()
	return nil
}

func (in *inspector) readJSON() error {
	files, err := filepath.Glob(filepath.Join(in.dir, "*.json"))
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintln(in.out, file)
		tables, err := output.ReadJSON(file)
		if err != nil {
			return err
		}
		source := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		for _, t := range tables {
			in.add(source, t)
		}
		fmt.Fprintf(in.out, "%d tables loaded\n", len(tables))
		in.printColumns()
	}
	return nil
}

func (in *inspector) add(source string, t model.Table) {
	for _, c := range t.Header {
		in.columns[c] = true
	}
	if !in.verbose {
		return
	}
	fmt.Fprintf(in.out, "%s %s %s %d rows\n", source, t.Index, t.Description, len(t.Data))
	fmt.Fprintf(in.out, "%q\n", t.Header)
	if in.rows > 0 {
		rows := append([][]string{t.Header}, t.Data[:min(in.rows, len(t.Data))]...)
		printTable(in.out, rows)
	}
	fmt.Fprintln(in.out)
}

func (in *inspector) printColumns() {
	names := make([]string, 0, len(in.columns))
	for c := range in.columns {
		names = append(names, c)
	}
	sort.Strings(names)
	fmt.Fprintf(in.out, "%q\n", names)
}

// printTable prints rows in a box, the first row as header. Widths are
// display widths, so wide characters stay aligned.
func printTable(w io.Writer, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	colWidths := make([]int, cols)
	for _, row := range rows {
		for j, cell := range row {
			colWidths[j] = max(colWidths[j], runewidth.StringWidth(flatten(cell)))
		}
	}
	for i := range colWidths {
		colWidths[i] = min(max(colWidths[i], 3), maxColumnWidth)
	}

	printSeparator(w, colWidths)
	for i, row := range rows {
		fmt.Fprint(w, "    |")
		for j, width := range colWidths {
			cell := ""
			if j < len(row) {
				cell = runewidth.Truncate(flatten(row[j]), width, "...")
			}
			fmt.Fprintf(w, " %s |", runewidth.FillRight(cell, width))
		}
		fmt.Fprintln(w)

		if i == 0 {
			printSeparator(w, colWidths)
		}
	}
	printSeparator(w, colWidths)
}

// flatten puts a multi-line cell on one line
func flatten(cell string) string {
	return strings.Join(strings.Fields(cell), " ")
}

func printSeparator(w io.Writer, colWidths []int) {
	fmt.Fprint(w, "    +")
	for _, width := range colWidths {
		fmt.Fprint(w, strings.Repeat("-", width+2)+"+")
	}
	fmt.Fprintln(w)
}
