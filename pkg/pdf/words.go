package pdf

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

// ascent is the share of the font size above the baseline
const ascent = 0.8

// appendGlyphs converts one positioned text item of a glyph backend into
// characters. The item width is spread evenly over its runes; spaces only
// advance the position.
func appendGlyphs(chars []CharObject, s, font string, size, x, y, w, pageTop float64) []CharObject {
	runes := []rune(s)
	if len(runes) == 0 {
		return chars
	}
	charWidth := w / float64(len(runes))
	top := pageTop - (y + size*ascent)
	for _, ch := range runes {
		if ch != ' ' {
			chars = append(chars, CharObject{
				Text:     string(ch),
				Font:     font,
				FontSize: size,
				X0:       x,
				Y0:       top,
				X1:       x + charWidth,
				Y1:       top + size,
			})
		}
		x += charWidth
	}
	return chars
}

// foldCompatibility applies NFKC to every glyph, splitting ligatures such
// as "ﬁ" into their letters
func foldCompatibility(chars []CharObject) {
	for i := range chars {
		chars[i].Text = norm.NFKC.String(chars[i].Text)
	}
}

// ExtractWords groups chars into words in content stream order. A word ends
// at a font key change, a baseline jump beyond yTolerance, a horizontal gap
// beyond xTolerance, or a move back to the left.
func ExtractWords(chars []CharObject, xTolerance, yTolerance float64) []Word {
	var words []Word
	var current []CharObject

	flush := func() {
		if len(current) > 0 {
			words = append(words, createWord(current))
			current = current[:0]
		}
	}

	for _, ch := range chars {
		if strings.TrimSpace(ch.Text) == "" {
			flush()
			continue
		}
		if n := len(current); n > 0 {
			prev := current[n-1]
			if model.FontKey(ch.Font, ch.FontSize) != model.FontKey(prev.Font, prev.FontSize) ||
				math.Abs(ch.Y0-prev.Y0) > yTolerance ||
				ch.X0-prev.X1 > xTolerance ||
				ch.X0 < prev.X0 {
				flush()
			}
		}
		current = append(current, ch)
	}
	flush()

	return words
}

// createWord creates a Word from a group of characters
func createWord(chars []CharObject) Word {
	var text strings.Builder
	w := Word{
		Font:     chars[0].Font,
		FontSize: chars[0].FontSize,
		X0:       chars[0].X0,
		Y0:       chars[0].Y0,
		X1:       chars[0].X1,
		Y1:       chars[0].Y1,
	}
	for _, ch := range chars {
		text.WriteString(ch.Text)
		w.X0 = min(w.X0, ch.X0)
		w.Y0 = min(w.Y0, ch.Y0)
		w.X1 = max(w.X1, ch.X1)
		w.Y1 = max(w.Y1, ch.Y1)
	}
	w.Text = text.String()
	return w
}
