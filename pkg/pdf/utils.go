package pdf

import (
	"math"
	"sort"
)

// Tolerance for floating point comparisons
const FloatTolerance = 0.1

type orientation int

const (
	horizontal orientation = iota
	vertical
)

// edge is an axis-aligned ruling. pos is the y of a horizontal edge or the x
// of a vertical one; start and end span the other axis.
type edge struct {
	orient orientation
	pos    float64
	start  float64
	end    float64
}

func (e edge) length() float64 {
	return e.end - e.start
}

// edgesFromObjects collects the rulings drawn as lines or rectangles. A
// rectangle thinner than thin is a single rule; a larger one contributes its
// four sides. Diagonal lines and rulings shorter than minLength are dropped.
func edgesFromObjects(objects Objects, thin, minLength float64) []edge {
	var edges []edge
	add := func(e edge) {
		if e.length() >= minLength {
			edges = append(edges, e)
		}
	}

	for _, line := range objects.Lines {
		b := line.GetBBox()
		switch {
		case b.Height() < FloatTolerance:
			add(edge{orient: horizontal, pos: b.Y0, start: b.X0, end: b.X1})
		case b.Width() < FloatTolerance:
			add(edge{orient: vertical, pos: b.X0, start: b.Y0, end: b.Y1})
		}
	}

	for _, rect := range objects.Rects {
		b := rect.GetBBox()
		switch {
		case b.Height() <= thin && b.Width() <= thin:
			// dot
		case b.Height() <= thin:
			add(edge{orient: horizontal, pos: (b.Y0 + b.Y1) / 2, start: b.X0, end: b.X1})
		case b.Width() <= thin:
			add(edge{orient: vertical, pos: (b.X0 + b.X1) / 2, start: b.Y0, end: b.Y1})
		default:
			add(edge{orient: horizontal, pos: b.Y0, start: b.X0, end: b.X1})
			add(edge{orient: horizontal, pos: b.Y1, start: b.X0, end: b.X1})
			add(edge{orient: vertical, pos: b.X0, start: b.Y0, end: b.Y1})
			add(edge{orient: vertical, pos: b.X1, start: b.Y0, end: b.Y1})
		}
	}
	return edges
}

// snapEdges moves edges of one orientation whose positions lie within
// tolerance of each other onto their mean position
func snapEdges(edges []edge, tolerance float64) []edge {
	result := make([]edge, len(edges))
	copy(result, edges)

	for _, orient := range []orientation{horizontal, vertical} {
		var idx []int
		for i, e := range result {
			if e.orient == orient {
				idx = append(idx, i)
			}
		}
		sort.Slice(idx, func(a, b int) bool {
			return result[idx[a]].pos < result[idx[b]].pos
		})

		for lo := 0; lo < len(idx); {
			hi := lo + 1
			for hi < len(idx) && result[idx[hi]].pos-result[idx[hi-1]].pos <= tolerance {
				hi++
			}
			sum := 0.0
			for _, i := range idx[lo:hi] {
				sum += result[i].pos
			}
			mean := sum / float64(hi-lo)
			for _, i := range idx[lo:hi] {
				result[i].pos = mean
			}
			lo = hi
		}
	}
	return result
}

// joinEdges merges collinear edges that overlap or are separated by at most
// tolerance
func joinEdges(edges []edge, tolerance float64) []edge {
	if len(edges) == 0 {
		return edges
	}

	sorted := make([]edge, len(edges))
	copy(sorted, edges)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.orient != b.orient {
			return a.orient < b.orient
		}
		if math.Abs(a.pos-b.pos) > FloatTolerance {
			return a.pos < b.pos
		}
		return a.start < b.start
	})

	result := []edge{}
	current := sorted[0]
	for _, e := range sorted[1:] {
		if e.orient == current.orient &&
			math.Abs(e.pos-current.pos) < FloatTolerance &&
			e.start <= current.end+tolerance {
			current.end = math.Max(current.end, e.end)
			continue
		}
		result = append(result, current)
		current = e
	}
	result = append(result, current)
	return result
}

// intersects reports whether horizontal edge h and vertical edge v cross or
// touch within tolerance
func intersects(h, v edge, tolerance float64) bool {
	return v.pos >= h.start-tolerance && v.pos <= h.end+tolerance &&
		h.pos >= v.start-tolerance && h.pos <= v.end+tolerance
}

// covers reports whether one of edges rules position pos over [from, to]
func covers(edges []edge, pos, from, to, tolerance float64) bool {
	for _, e := range edges {
		if math.Abs(e.pos-pos) <= tolerance && e.start <= from+tolerance && e.end >= to-tolerance {
			return true
		}
	}
	return false
}

// groupEdges splits edges into connected groups; two edges are connected
// when they intersect
func groupEdges(edges []edge, tolerance float64) [][]edge {
	parent := make([]int, len(edges))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i, a := range edges {
		if a.orient != horizontal {
			continue
		}
		for j, b := range edges {
			if b.orient == vertical && intersects(a, b, tolerance) {
				if ri, rj := find(i), find(j); ri != rj {
					parent[ri] = rj
				}
			}
		}
	}

	byRoot := map[int]int{}
	var groups [][]edge
	for i, e := range edges {
		root := find(i)
		g, ok := byRoot[root]
		if !ok {
			g = len(groups)
			byRoot[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], e)
	}
	return groups
}

// positions returns the sorted distinct positions of the edges with the
// given orientation
func positions(edges []edge, orient orientation) []float64 {
	var result []float64
	for _, e := range edges {
		if e.orient == orient {
			result = append(result, e.pos)
		}
	}
	sort.Float64s(result)

	unique := result[:0]
	for i, p := range result {
		if i == 0 || p-unique[len(unique)-1] > FloatTolerance {
			unique = append(unique, p)
		}
	}
	return unique
}
