package heading

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

const (
	headFont = "CMSSBX10-10"
	tocFont  = "CMSSBX10-25"
	bodyFont = "CMR10-10"
)

// words builds tokens sharing one font and top offset
func words(font string, top float64, texts ...string) []model.Token {
	tokens := make([]model.Token, len(texts))
	for i, text := range texts {
		tokens[i] = model.Token{Text: text, FontKey: font, Top: top}
	}
	return tokens
}

func page(parts ...[]model.Token) []model.Token {
	var tokens []model.Token
	for _, p := range parts {
		tokens = append(tokens, p...)
	}
	return tokens
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		tokens   []model.Token
		expected []string
	}{
		{
			name: "two headings separated by body text",
			tokens: page(
				words(headFont, 50, "Table", "1.1", "Foo"),
				words(bodyFont, 60, "Some", "table", "text"),
				words(headFont, 300, "Table", "1.2", "Bar", "baz?"),
				words(bodyFont, 310, "More"),
			),
			expected: []string{"Table 1.1 Foo", "Table 1.2 Bar baz?"},
		},
		{
			name: "table of contents title is filtered",
			tokens: page(
				words(tocFont, 20, "Table", "of", "Contents"),
				words(bodyFont, 40, "1", "Introduction"),
			),
			expected: []string{},
		},
		{
			name: "run open at end of page is dropped",
			tokens: page(
				words(bodyFont, 10, "Intro"),
				words(headFont, 700, "Table", "2.3.1", "Last", "one"),
			),
			expected: []string{},
		},
		{
			name: "only the closed run survives when the page ends in a heading",
			tokens: page(
				words(headFont, 50, "Table", "1.1", "Foo"),
				words(bodyFont, 60, "x"),
				words(headFont, 300, "Table", "1.2", "Bar"),
			),
			expected: []string{"Table 1.1 Foo"},
		},
		{
			name: "body text anchor word does not start a run",
			tokens: page(
				words(bodyFont, 10, "see", "Table"),
			),
			expected: []string{},
		},
		{
			name: "heading-font words after a run do not extend it",
			tokens: page(
				words(headFont, 50, "Table", "3.1", "Alpha"),
				words(bodyFont, 55, "x"),
				words(headFont, 60, "Stray"),
			),
			expected: []string{"Table 3.1 Alpha"},
		},
		{
			name:     "no tokens",
			tokens:   nil,
			expected: []string{},
		},
	}

	ex := New(DefaultOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ex.Extract(tt.tokens)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Extract() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestExtractRunEndsOnFontChange(t *testing.T) {
	// A size change inside the run ends it even though the family is the same
	tokens := page(
		words(headFont, 50, "Table", "4.2", "Sized"),
		words("CMSSBX10-12", 50, "bigger"),
	)

	got, err := New(DefaultOptions()).Extract(tokens)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Table 4.2 Sized"}) {
		t.Errorf("Extract() = %q", got)
	}
}

func TestExtractUnrecognizedFont(t *testing.T) {
	tokens := words("Helvetica-Bold-10", 50, "Table", "1.1", "Foo")

	_, err := New(DefaultOptions()).Extract(tokens)
	if !errors.Is(err, model.ErrUnrecognizedFont) {
		t.Fatalf("expected ErrUnrecognizedFont, got %v", err)
	}
}

func TestExtractOrderingViolation(t *testing.T) {
	tokens := page(
		words(headFont, 300, "Table", "1.2", "Lower"),
		words(bodyFont, 310, "text"),
		words(headFont, 100, "Table", "1.1", "Upper"),
		words(bodyFont, 110, "text"),
	)

	_, err := New(DefaultOptions()).Extract(tokens)
	if !errors.Is(err, model.ErrOrderingViolation) {
		t.Fatalf("expected ErrOrderingViolation, got %v", err)
	}
}

func TestExtractOrderingIncludesDroppedRun(t *testing.T) {
	tokens := page(
		words(headFont, 300, "Table", "1.2", "Lower"),
		words(bodyFont, 310, "text"),
		words(headFont, 100, "Table", "1.3", "Unclosed"),
	)

	_, err := New(DefaultOptions()).Extract(tokens)
	if !errors.Is(err, model.ErrOrderingViolation) {
		t.Fatalf("expected ErrOrderingViolation, got %v", err)
	}
}

func TestExtractCustomOptions(t *testing.T) {
	ex := New(Options{Anchor: "Tabelle", FontMarker: "Bold-"})
	tokens := page(
		words("Arial-Bold-11", 10, "Tabelle", "5.1", "Umfrage"),
		words("Arial-11", 20, "Text"),
	)

	got, err := ex.Extract(tokens)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"Tabelle 5.1 Umfrage"}) {
		t.Errorf("Extract() = %q", got)
	}
}

func TestIsTableHeading(t *testing.T) {
	tests := map[string]bool{
		"Table 1.2.3 What is your favorite subject?": true,
		"Table of Contents":                          false,
		"Table":                                      false,
		"Table 9 Nine":                               true,
		"Table A.1 Appendix":                         false,
	}
	for h, expected := range tests {
		if got := IsTableHeading(h); got != expected {
			t.Errorf("IsTableHeading(%q) = %v, expected %v", h, got, expected)
		}
	}
}
