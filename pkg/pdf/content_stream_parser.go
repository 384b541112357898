package pdf

import (
	"bytes"
	"math"
	"strconv"
)

// ContentStreamParser scans a page content stream for path painting. Text
// operators are skipped; glyphs come from the text backends.
type ContentStreamParser struct {
	pageTop   float64
	ctm       Matrix
	lineWidth float64
	stack     []graphicsState
	path      []subpath
	objects   Objects
}

type graphicsState struct {
	ctm       Matrix
	lineWidth float64
}

// subpath holds points already transformed to top-left page coordinates
type subpath struct {
	points []Point
	closed bool
}

// Point is a 2D point
type Point struct {
	X, Y float64
}

// NewContentStreamParser creates a parser for a page whose media box has
// its upper edge at pageTop
func NewContentStreamParser(pageTop float64) *ContentStreamParser {
	return &ContentStreamParser{
		pageTop:   pageTop,
		ctm:       IdentityMatrix(),
		lineWidth: 1,
	}
}

// Parse returns the lines and filled rectangles painted by content
func (p *ContentStreamParser) Parse(content []byte) Objects {
	tokens := p.tokenize(content)

	var operands []string
	for _, token := range tokens {
		if isOperator(token) {
			p.processOperator(token, operands)
			operands = operands[:0]
		} else {
			operands = append(operands, token)
		}
	}
	return p.objects
}

// tokenize splits content stream into tokens. Strings, arrays and inline
// image data only matter to text and image operators, so they are reduced
// to placeholders.
func (p *ContentStreamParser) tokenize(content []byte) []string {
	var tokens []string
	reader := bytes.NewReader(content)

	for reader.Len() > 0 {
		b, err := reader.ReadByte()
		if err != nil {
			break
		}
		if isWhitespace(b) {
			continue
		}

		switch b {
		case '(':
			p.readStringLiteral(reader)
			tokens = append(tokens, "()")
		case '<':
			next, _ := reader.ReadByte()
			if next == '<' {
				tokens = append(tokens, "<<")
			} else {
				reader.UnreadByte()
				p.readHexString(reader)
				tokens = append(tokens, "<>")
			}
		case '>':
			next, _ := reader.ReadByte()
			if next == '>' {
				tokens = append(tokens, ">>")
			} else {
				reader.UnreadByte()
			}
		case '[', ']', '{', '}':
			tokens = append(tokens, string(b))
		case '/':
			tokens = append(tokens, "/"+p.readToken(reader))
		case '%':
			p.skipComment(reader)
		default:
			reader.UnreadByte()
			token := p.readToken(reader)
			if token == "" {
				// stray delimiter
				reader.ReadByte()
				continue
			}
			tokens = append(tokens, token)
			if token == "ID" {
				p.skipInlineImage(reader)
			}
		}
	}
	return tokens
}

// readStringLiteral consumes a string literal up to its balancing ')'
func (p *ContentStreamParser) readStringLiteral(reader *bytes.Reader) {
	depth := 1
	for reader.Len() > 0 {
		b, _ := reader.ReadByte()
		switch b {
		case '\\':
			reader.ReadByte()
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// readHexString consumes a hex string up to '>'
func (p *ContentStreamParser) readHexString(reader *bytes.Reader) {
	for reader.Len() > 0 {
		if b, _ := reader.ReadByte(); b == '>' {
			return
		}
	}
}

// readToken reads a number, operator or name body
func (p *ContentStreamParser) readToken(reader *bytes.Reader) string {
	var result []byte
	for reader.Len() > 0 {
		b, _ := reader.ReadByte()
		if isDelimiter(b) || isWhitespace(b) {
			reader.UnreadByte()
			break
		}
		result = append(result, b)
	}
	return string(result)
}

// skipComment skips a comment line
func (p *ContentStreamParser) skipComment(reader *bytes.Reader) {
	for reader.Len() > 0 {
		b, _ := reader.ReadByte()
		if b == '\n' || b == '\r' {
			break
		}
	}
}

// skipInlineImage skips binary image data up to a whitespace-delimited EI
func (p *ContentStreamParser) skipInlineImage(reader *bytes.Reader) {
	var prev2, prev1 byte = ' ', ' '
	for reader.Len() > 0 {
		b, _ := reader.ReadByte()
		if isWhitespace(prev2) && prev1 == 'E' && b == 'I' {
			if reader.Len() == 0 {
				return
			}
			next, _ := reader.ReadByte()
			if isWhitespace(next) || isDelimiter(next) {
				reader.UnreadByte()
				return
			}
		}
		prev2, prev1 = prev1, b
	}
}

// isWhitespace checks if a byte is whitespace
func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

// isDelimiter checks if a byte is a delimiter
func isDelimiter(b byte) bool {
	return b == '(' || b == ')' || b == '<' || b == '>' || b == '[' || b == ']' ||
		b == '{' || b == '}' || b == '/' || b == '%'
}

var operators = map[string]bool{
	// Text
	"BT": true, "ET": true, "Td": true, "TD": true, "Tm": true, "T*": true, "Tj": true, "TJ": true,
	"'": true, "\"": true, "Tc": true, "Tw": true, "Tz": true, "TL": true, "Tf": true, "Tr": true, "Ts": true,
	// Graphics state
	"q": true, "Q": true, "cm": true, "w": true, "J": true, "j": true, "M": true, "d": true,
	"ri": true, "i": true, "gs": true,
	// Path construction
	"m": true, "l": true, "c": true, "v": true, "y": true, "h": true, "re": true,
	// Path painting
	"S": true, "s": true, "f": true, "F": true, "f*": true, "B": true, "B*": true, "b": true, "b*": true, "n": true,
	// Color
	"CS": true, "cs": true, "SC": true, "SCN": true, "sc": true, "scn": true,
	"G": true, "g": true, "RG": true, "rg": true, "K": true, "k": true,
	// Other
	"W": true, "W*": true, "BX": true, "EX": true, "Do": true, "MP": true, "DP": true,
	"BMC": true, "BDC": true, "EMC": true, "BI": true, "ID": true, "EI": true, "sh": true,
	"d0": true, "d1": true,
}

// isOperator checks if a token is a PDF operator
func isOperator(token string) bool {
	return operators[token]
}

// processOperator processes a PDF operator with its operands
func (p *ContentStreamParser) processOperator(operator string, operands []string) {
	switch operator {
	case "q":
		p.stack = append(p.stack, graphicsState{ctm: p.ctm, lineWidth: p.lineWidth})
	case "Q":
		if n := len(p.stack); n > 0 {
			p.ctm, p.lineWidth = p.stack[n-1].ctm, p.stack[n-1].lineWidth
			p.stack = p.stack[:n-1]
		}
	case "cm":
		if nums, ok := numbers(operands, 6); ok {
			m := Matrix{A: nums[0], B: nums[1], C: nums[2], D: nums[3], E: nums[4], F: nums[5]}
			p.ctm = MultiplyMatrix(m, p.ctm)
		}
	case "w":
		if nums, ok := numbers(operands, 1); ok {
			p.lineWidth = nums[0]
		}

	case "m":
		if nums, ok := numbers(operands, 2); ok {
			p.path = append(p.path, subpath{points: []Point{p.transform(nums[0], nums[1])}})
		}
	case "l":
		if nums, ok := numbers(operands, 2); ok {
			p.lineTo(p.transform(nums[0], nums[1]))
		}
	case "c":
		if nums, ok := numbers(operands, 6); ok {
			p.lineTo(p.transform(nums[4], nums[5]))
		}
	case "v", "y":
		if nums, ok := numbers(operands, 4); ok {
			p.lineTo(p.transform(nums[2], nums[3]))
		}
	case "h":
		p.closeLast()
	case "re":
		if nums, ok := numbers(operands, 4); ok {
			x, y, w, h := nums[0], nums[1], nums[2], nums[3]
			p.path = append(p.path, subpath{
				points: []Point{
					p.transform(x, y),
					p.transform(x+w, y),
					p.transform(x+w, y+h),
					p.transform(x, y+h),
				},
				closed: true,
			})
		}

	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*":
		if operator == "s" || operator == "b" || operator == "b*" {
			p.closeLast()
		}
		if operator != "S" && operator != "s" {
			p.fill()
		}
		if operator != "f" && operator != "F" && operator != "f*" {
			p.stroke()
		}
		p.path = nil
	case "n":
		p.path = nil
	}
}

func (p *ContentStreamParser) transform(x, y float64) Point {
	tx, ty := p.ctm.Apply(x, y)
	return Point{X: tx, Y: p.pageTop - ty}
}

func (p *ContentStreamParser) lineTo(pt Point) {
	n := len(p.path)
	if n == 0 {
		p.path = append(p.path, subpath{points: []Point{pt}})
		return
	}
	p.path[n-1].points = append(p.path[n-1].points, pt)
}

func (p *ContentStreamParser) closeLast() {
	if n := len(p.path); n > 0 {
		p.path[n-1].closed = true
	}
}

// stroke turns every segment of the current path into a line
func (p *ContentStreamParser) stroke() {
	for _, sp := range p.path {
		pts := sp.points
		for i := 1; i < len(pts); i++ {
			p.addLine(pts[i-1], pts[i])
		}
		if sp.closed && len(pts) > 2 {
			p.addLine(pts[len(pts)-1], pts[0])
		}
	}
}

func (p *ContentStreamParser) addLine(a, b Point) {
	p.objects.Lines = append(p.objects.Lines, LineObject{
		X0: a.X, Y0: a.Y, X1: b.X, Y1: b.Y,
		Width: p.lineWidth,
	})
}

// fill records every rectangular subpath as a filled rectangle
func (p *ContentStreamParser) fill() {
	for _, sp := range p.path {
		if bbox, ok := rectBounds(sp); ok {
			p.objects.Rects = append(p.objects.Rects, RectObject(bbox))
		}
	}
}

// rectBounds reports the bounds of an axis-aligned four-corner subpath.
// Filling closes open subpaths, so closed is not required.
func rectBounds(sp subpath) (BoundingBox, bool) {
	pts := sp.points
	if n := len(pts); n == 5 && pts[4] == pts[0] {
		pts = pts[:4]
	}
	if len(pts) != 4 {
		return BoundingBox{}, false
	}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%4]
		if math.Abs(a.X-b.X) > FloatTolerance && math.Abs(a.Y-b.Y) > FloatTolerance {
			return BoundingBox{}, false
		}
	}
	bbox := BoundingBox{X0: pts[0].X, Y0: pts[0].Y, X1: pts[0].X, Y1: pts[0].Y}
	for _, pt := range pts[1:] {
		bbox.X0 = min(bbox.X0, pt.X)
		bbox.Y0 = min(bbox.Y0, pt.Y)
		bbox.X1 = max(bbox.X1, pt.X)
		bbox.Y1 = max(bbox.Y1, pt.Y)
	}
	return bbox, true
}

// numbers parses the last n operands as numbers
func numbers(operands []string, n int) ([]float64, bool) {
	if len(operands) < n {
		return nil, false
	}
	nums := make([]float64, n)
	for i, s := range operands[len(operands)-n:] {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = f
	}
	return nums, true
}
