package output

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

const (
	contentsSheet = "Contents"
	maxSheetName  = 31
)

// WriteXLSX writes a workbook with a contents sheet listing every table and
// one sheet per table holding its header and data
func WriteXLSX(path string, tables []model.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", contentsSheet); err != nil {
		return errors.Wrap(err, "failed to name contents sheet")
	}
	if err := setRow(f, contentsSheet, 1, []string{"Index", "Description", "Sheet", "Rows"}); err != nil {
		return err
	}

	used := map[string]bool{contentsSheet: true}
	for i, t := range tables {
		sheet := sheetName(t, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "failed to add sheet for table %s", t.Index)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WithStack(err)
		}
		row := []interface{}{t.Index, t.Description, sheet, len(t.Data)}
		if err := f.SetSheetRow(contentsSheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to list table %s", t.Index)
		}

		if err := setRow(f, sheet, 1, t.Header); err != nil {
			return err
		}
		for r, data := range t.Data {
			if err := setRow(f, sheet, r+2, data); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "failed to save workbook")
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return errors.Wrapf(err, "failed to write row %d of %s", row, sheet)
	}
	return nil
}

// sheetName derives a unique sheet name from the table index. Sheet names
// are limited to 31 characters and may not contain []:*?/\.
func sheetName(t model.Table, used map[string]bool) string {
	name := "T" + strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, t.FileIndex())
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}

	candidate := name
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		candidate = name[:min(len(name), maxSheetName-len(suffix))] + suffix
	}
	used[candidate] = true
	return candidate
}
