// Package model holds the data types shared by the extraction pipeline:
// positioned tokens and raw grids coming from the layout source, and the
// normalized tables going out to the writers.
package model

import (
	"fmt"
	"math"
	"strings"
)

// Token is one word of page text as delivered by the layout source
type Token struct {
	Text    string
	FontKey string
	Top     float64
}

// FontKey combines a font name with its point size rounded to the nearest
// integer. Layout engines report sizes like 9.9626 for a 10pt font, so the
// rounding keeps a heading run from being split by measurement noise.
// Halves round to even.
func FontKey(fontName string, size float64) string {
	return fmt.Sprintf("%s-%d", fontName, int(math.RoundToEven(size)))
}

// Cell is one position of a raw table grid. Absent marks a position that the
// layout source could not attribute to its own cell, typically because a
// neighbouring cell spans over it.
type Cell struct {
	Text   string
	Absent bool
}

// TextCell returns a present cell holding s
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// AbsentCell returns the absent-value marker
func AbsentCell() Cell {
	return Cell{Absent: true}
}

// RawTable is a detected table region: its top offset on the page and the
// cell grid in reading order.
type RawTable struct {
	Top  float64
	Rows [][]Cell
}

// IsBlankRow reports whether every cell of row is absent or empty
func IsBlankRow(row []Cell) bool {
	for _, c := range row {
		if !c.Absent && c.Text != "" {
			return false
		}
	}
	return true
}

// Strings returns the grid with absent cells replaced by empty strings
func (t RawTable) Strings() [][]string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, c := range row {
			if !c.Absent {
				rows[i][j] = c.Text
			}
		}
	}
	return rows
}

// Page is the content of one page: its 1-based number, the token stream in
// reading order, and the detected table regions.
type Page struct {
	Number int
	Tokens []Token
	Tables []RawTable
}

// Table is a normalized table record, the durable output unit
type Table struct {
	Index       string     `json:"index"`
	Description string     `json:"description"`
	Header      []string   `json:"header"`
	Data        [][]string `json:"data"`
}

// FileIndex returns the index with dots replaced by underscores, the form
// used in per-table file names.
func (t Table) FileIndex() string {
	return strings.ReplaceAll(t.Index, ".", "_")
}

// IsIncreasing reports whether values are strictly increasing
func IsIncreasing(values []float64) bool {
	for i := 1; i < len(values); i++ {
		if !(values[i-1] < values[i]) {
			return false
		}
	}
	return true
}
