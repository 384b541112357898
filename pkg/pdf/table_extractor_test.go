package pdf

import (
	"testing"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

// hrule and vrule draw rules the way reports do, as thin filled rectangles
func hrule(y, x0, x1 float64) RectObject {
	return RectObject{X0: x0, Y0: y - 0.25, X1: x1, Y1: y + 0.25}
}

func vrule(x, y0, y1 float64) RectObject {
	return RectObject{X0: x - 0.25, Y0: y0, X1: x + 0.25, Y1: y1}
}

func glyph(text string, x0, y0 float64) CharObject {
	return CharObject{Text: text, Font: "F", FontSize: 5, X0: x0, Y0: y0, X1: x0 + 6, Y1: y0 + 5}
}

func TestExtractTables(t *testing.T) {
	objects := Objects{
		Rects: []RectObject{
			// a boxed single cell below the grid
			{X0: 0, Y0: 100, X1: 50, Y1: 120},

			hrule(0, 0, 300),
			hrule(20, 0, 300),
			hrule(40, 0, 300),
			hrule(60, 0, 300),
			vrule(0, 0, 60),
			vrule(100, 0, 60),
			vrule(200, 20, 60),
			vrule(300, 0, 60),
		},
		Chars: []CharObject{
			glyph("A", 10, 5),
			glyph("a", 150, 5),
			glyph("b", 156, 5),
			glyph("c", 199, 5),
			glyph("d", 205, 5),
			glyph("x", 10, 25),
			glyph("y", 10, 32),
			glyph("z", 220, 45),
			glyph("q", 20, 105),
			glyph("!", 500, 500),
		},
	}

	tables := ExtractTables(objects, DefaultTableSettings())
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}

	grid := tables[0]
	wantBBox := BoundingBox{X0: 0, Y0: 0, X1: 300, Y1: 60}
	if grid.BBox != wantBBox {
		t.Errorf("BBox = %+v, want %+v", grid.BBox, wantBBox)
	}

	absent := model.AbsentCell()
	want := [][]model.Cell{
		{model.TextCell("A"), model.TextCell("ab cd"), absent},
		{model.TextCell("x\ny"), model.TextCell(""), model.TextCell("")},
		{model.TextCell(""), model.TextCell(""), model.TextCell("z")},
	}
	if len(grid.Rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(grid.Rows), len(want))
	}
	for i := range want {
		if len(grid.Rows[i]) != len(want[i]) {
			t.Fatalf("row %d has %d cells, want %d", i, len(grid.Rows[i]), len(want[i]))
		}
		for j := range want[i] {
			if grid.Rows[i][j] != want[i][j] {
				t.Errorf("cell (%d, %d) = %+v, want %+v", i, j, grid.Rows[i][j], want[i][j])
			}
		}
	}

	box := tables[1]
	if box.BBox.Y0 != 100 {
		t.Errorf("second table top = %v, want 100", box.BBox.Y0)
	}
	if len(box.Rows) != 1 || len(box.Rows[0]) != 1 || box.Rows[0][0].Text != "q" {
		t.Errorf("second table rows = %v, want [[q]]", box.Rows)
	}
}

func TestExtractTablesWithoutRulings(t *testing.T) {
	tables := ExtractTables(Objects{Chars: []CharObject{glyph("a", 0, 0)}}, DefaultTableSettings())
	if tables == nil || len(tables) != 0 {
		t.Errorf("got %v, want an empty list", tables)
	}
}

func TestSnapAndJoinEdges(t *testing.T) {
	edges := []edge{
		{orient: horizontal, pos: 10, start: 0, end: 50},
		{orient: horizontal, pos: 11, start: 52, end: 100},
		{orient: horizontal, pos: 40, start: 0, end: 100},
		{orient: vertical, pos: 0, start: 10, end: 40},
	}

	snapped := snapEdges(edges, 3)
	if snapped[0].pos != 10.5 || snapped[1].pos != 10.5 {
		t.Errorf("snapped positions = %v, %v, want 10.5", snapped[0].pos, snapped[1].pos)
	}
	if edges[0].pos != 10 {
		t.Error("snapEdges modified its input")
	}

	joined := joinEdges(snapped, 3)
	if len(joined) != 3 {
		t.Fatalf("got %d edges after join, want 3: %v", len(joined), joined)
	}
	first := joined[0]
	if first.orient != horizontal || first.pos != 10.5 || first.start != 0 || first.end != 100 {
		t.Errorf("joined edge = %+v, want horizontal 10.5 from 0 to 100", first)
	}

	groups := groupEdges(joined, 3)
	if len(groups) != 1 {
		t.Errorf("got %d groups, want 1", len(groups))
	}
}

func TestEdgesFromObjects(t *testing.T) {
	objects := Objects{
		Lines: []LineObject{
			{X0: 0, Y0: 10, X1: 100, Y1: 10},
			{X0: 5, Y0: 0, X1: 5, Y1: 1},
			{X0: 0, Y0: 0, X1: 50, Y1: 50},
		},
		Rects: []RectObject{
			{X0: 0, Y0: 0, X1: 1, Y1: 1},
			{X0: 0, Y0: 20, X1: 40, Y1: 60},
		},
	}

	edges := edgesFromObjects(objects, 3, 3)
	var h, v int
	for _, e := range edges {
		if e.orient == horizontal {
			h++
		} else {
			v++
		}
	}
	if h != 3 || v != 2 {
		t.Errorf("got %d horizontal and %d vertical edges, want 3 and 2", h, v)
	}
}

func TestCellIndex(t *testing.T) {
	bounds := []float64{0, 10, 20}
	tests := []struct {
		v    float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{5, 0},
		{15, 1},
		{20, 1},
		{25, 1},
	}
	for _, tt := range tests {
		if got := cellIndex(bounds, tt.v); got != tt.want {
			t.Errorf("cellIndex(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}
