package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every pipeline failure wraps exactly one of these; none of
// them is recovered inside the pipeline.
var (
	// ErrUnrecognizedFont is returned when a heading anchor uses a font that
	// the report family is not known to use for headings.
	ErrUnrecognizedFont = errors.New("unrecognized heading font")

	// ErrOrderingViolation is returned when headings or tables on a page are
	// not strictly top-to-bottom.
	ErrOrderingViolation = errors.New("vertical ordering violation")

	// ErrCountMismatch is returned when a page has a different number of
	// headings than data tables.
	ErrCountMismatch = errors.New("heading/table count mismatch")

	// ErrUnknownHeaderShape is returned for header layouts none of the known
	// rules cover.
	ErrUnknownHeaderShape = errors.New("unknown header shape")

	// ErrHeaderLeak is returned when raw group labels survive header rewriting.
	ErrHeaderLeak = errors.New("raw header text leaked")

	// ErrShapeRepairFailure is returned when a row or column cannot be made
	// consistent with the header.
	ErrShapeRepairFailure = errors.New("shape repair failure")

	// ErrMalformedHeading is returned when a heading does not split into
	// anchor, dotted index and description.
	ErrMalformedHeading = errors.New("malformed heading")
)

// Error carries the offending data of a pipeline failure
type Error struct {
	Kind    error
	Page    int
	Heading string
	Detail  string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Page > 0 {
		fmt.Fprintf(&b, " on page %d", e.Page)
	}
	if e.Heading != "" {
		fmt.Fprintf(&b, " in %q", e.Heading)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap exposes the kind to errors.Is
func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an *Error of the given kind with a formatted detail
func Errorf(kind error, heading string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Heading: heading,
		Detail:  fmt.Sprintf(format, args...),
	}
}

// WithPage stamps the page number onto err when it is an *Error that does not
// have one yet. Other errors are returned unchanged.
func WithPage(err error, page int) error {
	var e *Error
	if errors.As(err, &e) && e.Page == 0 {
		e.Page = page
	}
	return err
}
