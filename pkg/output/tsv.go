package output

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

const (
	tableInfix  = "-table-"
	titleSuffix = "-title.txt"
)

// cellReplacer keeps a cell on its line and in its column
var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// TSVPath returns the file a table is written to: base, the table infix
// and the index with dots turned into underscores
func TSVPath(base string, t model.Table) string {
	return base + tableInfix + t.FileIndex() + ".tsv"
}

// TitlePath returns the description file that accompanies a TSV file
func TitlePath(tsvPath string) string {
	return strings.TrimSuffix(tsvPath, filepath.Ext(tsvPath)) + titleSuffix
}

// WriteTSV writes one TSV file and one title file per table into dir and
// returns the TSV paths. File names start with base.
//
// Tabs and line breaks inside header and data cells are written as spaces,
// so ReadTSV returns a multi-line header such as "Illinois\nSig." as
// "Illinois Sig."; use the JSON output when the exact text matters.
func WriteTSV(dir, base string, tables []model.Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create TSV directory")
	}

	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := TSVPath(filepath.Join(dir, base), t)
		if err := writeTable(path, t); err != nil {
			return paths, err
		}
		if err := os.WriteFile(TitlePath(path), []byte(t.Description+"\n"), 0o644); err != nil {
			return paths, errors.Wrap(err, "failed to write title file")
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTable(path string, t model.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create TSV file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	writeLine(w, t.Header)
	for _, row := range t.Data {
		writeLine(w, row)
	}
	if err := w.Flush(); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}

func writeLine(w *bufio.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			w.WriteByte('\t')
		}
		w.WriteString(cellReplacer.Replace(c))
	}
	w.WriteByte('\n')
}

// ReadTSV reads a table written by WriteTSV together with its title file.
// It returns the base the file names start with.
func ReadTSV(path string) (string, model.Table, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	source, index, ok := strings.Cut(name, tableInfix)
	if !ok {
		return "", model.Table{}, errors.Errorf("%s is not a table file", path)
	}
	t := model.Table{Index: strings.ReplaceAll(index, "_", ".")}

	title, err := os.ReadFile(TitlePath(path))
	if err != nil {
		return "", model.Table{}, errors.Wrap(err, "failed to read title file")
	}
	t.Description = strings.TrimSpace(string(title))

	data, err := os.ReadFile(path)
	if err != nil {
		return "", model.Table{}, errors.Wrap(err, "failed to read TSV file")
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return "", model.Table{}, errors.Errorf("%s has no header", path)
	}
	t.Header = strings.Split(lines[0], "\t")
	t.Data = [][]string{}
	for _, line := range lines[1:] {
		t.Data = append(t.Data, strings.Split(line, "\t"))
	}
	return source, t, nil
}
