package pdf

import (
	"math"
	"sort"
	"strings"

	"github.com/tidwall/rtree"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

// TableSettings tunes the ruled-grid table finder
type TableSettings struct {
	// SnapTolerance aligns rulings drawn a fraction of a point apart
	SnapTolerance float64
	// JoinTolerance merges collinear rulings separated by a small gap
	JoinTolerance float64
	// IntersectionTolerance decides whether two rulings touch
	IntersectionTolerance float64
	// MinEdgeLength drops rulings shorter than this
	MinEdgeLength float64
	// TextTolerance separates lines and words inside a cell
	TextTolerance float64
}

// DefaultTableSettings returns the settings used for the reports
func DefaultTableSettings() TableSettings {
	return TableSettings{
		SnapTolerance:         3,
		JoinTolerance:         3,
		IntersectionTolerance: 3,
		MinEdgeLength:         3,
		TextTolerance:         3,
	}
}

type tableExtractor struct {
	settings TableSettings
	chars    []CharObject
	index    rtree.RTreeG[int]
}

func newTableExtractor(chars []CharObject, settings TableSettings) *tableExtractor {
	te := &tableExtractor{settings: settings, chars: chars}
	for i, ch := range chars {
		cx, cy := (ch.X0+ch.X1)/2, (ch.Y0+ch.Y1)/2
		te.index.Insert([2]float64{cx, cy}, [2]float64{cx, cy}, i)
	}
	return te
}

// ExtractTables finds the ruled grids on a page and fills them with the
// page's characters. Tables are ordered top to bottom, then left to right.
func ExtractTables(objects Objects, settings TableSettings) []Table {
	edges := edgesFromObjects(objects, settings.SnapTolerance, settings.MinEdgeLength)
	edges = joinEdges(snapEdges(edges, settings.SnapTolerance), settings.JoinTolerance)

	te := newTableExtractor(objects.Chars, settings)
	tables := []Table{}
	for _, group := range groupEdges(edges, settings.IntersectionTolerance) {
		if table, ok := te.extractGrid(group); ok {
			tables = append(tables, table)
		}
	}

	sort.SliceStable(tables, func(i, j int) bool {
		a, b := tables[i].BBox, tables[j].BBox
		if math.Abs(a.Y0-b.Y0) > FloatTolerance {
			return a.Y0 < b.Y0
		}
		return a.X0 < b.X0
	})
	return tables
}

// extractGrid builds the table described by one connected group of edges.
// Grid lines are the distinct edge positions. A position without a ruling
// on its left belongs to the cell on its left; failing that, a position
// without a ruling above belongs to the cell above. Either way it is absent
// and its text goes to the spanning cell.
func (te *tableExtractor) extractGrid(group []edge) (Table, bool) {
	xs := positions(group, vertical)
	ys := positions(group, horizontal)
	if len(xs) < 2 || len(ys) < 2 {
		return Table{}, false
	}

	var hEdges, vEdges []edge
	for _, e := range group {
		if e.orient == horizontal {
			hEdges = append(hEdges, e)
		} else {
			vEdges = append(vEdges, e)
		}
	}

	tol := te.settings.IntersectionTolerance
	nRows, nCols := len(ys)-1, len(xs)-1
	type pos struct{ i, j int }
	anchor := make([][]pos, nRows)
	for i := range anchor {
		anchor[i] = make([]pos, nCols)
		for j := range anchor[i] {
			switch {
			case j > 0 && !covers(vEdges, xs[j], ys[i], ys[i+1], tol):
				anchor[i][j] = anchor[i][j-1]
			case i > 0 && !covers(hEdges, ys[i], xs[j], xs[j+1], tol):
				anchor[i][j] = anchor[i-1][j]
			default:
				anchor[i][j] = pos{i, j}
			}
		}
	}

	bbox := BoundingBox{X0: xs[0], Y0: ys[0], X1: xs[nCols], Y1: ys[nRows]}

	cellChars := map[pos][]int{}
	te.index.Search([2]float64{bbox.X0, bbox.Y0}, [2]float64{bbox.X1, bbox.Y1},
		func(pt, _ [2]float64, idx int) bool {
			i := cellIndex(ys, pt[1])
			j := cellIndex(xs, pt[0])
			a := anchor[i][j]
			cellChars[a] = append(cellChars[a], idx)
			return true
		})

	rows := make([][]model.Cell, nRows)
	for i := range rows {
		rows[i] = make([]model.Cell, nCols)
		for j := range rows[i] {
			if anchor[i][j] != (pos{i, j}) {
				rows[i][j] = model.AbsentCell()
				continue
			}
			rows[i][j] = model.TextCell(te.cellText(cellChars[pos{i, j}]))
		}
	}

	return Table{BBox: bbox, Rows: rows}, true
}

// cellIndex returns the band of bounds that v falls in, clamped to the grid
func cellIndex(bounds []float64, v float64) int {
	i := sort.SearchFloat64s(bounds, v) - 1
	return max(0, min(i, len(bounds)-2))
}

// cellText joins the characters of one cell, line by line, inserting a
// space wherever the horizontal gap exceeds the text tolerance
func (te *tableExtractor) cellText(indexes []int) string {
	sort.Ints(indexes)
	chars := make([]CharObject, len(indexes))
	for k, idx := range indexes {
		chars[k] = te.chars[idx]
	}

	tol := te.settings.TextTolerance
	sort.SliceStable(chars, func(i, j int) bool {
		if math.Abs(chars[i].Y0-chars[j].Y0) > tol {
			return chars[i].Y0 < chars[j].Y0
		}
		return chars[i].X0 < chars[j].X0
	})

	var text strings.Builder
	for k, ch := range chars {
		if k > 0 {
			prev := chars[k-1]
			if math.Abs(ch.Y0-prev.Y0) > tol {
				text.WriteByte('\n')
			} else if ch.X0-prev.X1 > tol {
				text.WriteByte(' ')
			}
		}
		text.WriteString(ch.Text)
	}
	return strings.TrimSpace(text.String())
}
