// Package databuddies extracts the survey tables of DataBuddies PDF reports
// into normalized records
package databuddies

import (
	"context"

	"github.com/pyhub-apps/databuddies-golang/pkg/config"
	"github.com/pyhub-apps/databuddies-golang/pkg/extract"
	"github.com/pyhub-apps/databuddies-golang/pkg/model"
	"github.com/pyhub-apps/databuddies-golang/pkg/pdf"
)

// Re-export types for the public API
type (
	Table    = model.Table
	Error    = model.Error
	Config   = config.Config
	Document = pdf.PDFDocument
	Option   = pdf.Option
	Backend  = pdf.Backend
)

// Re-export error kinds
var (
	ErrUnrecognizedFont   = model.ErrUnrecognizedFont
	ErrOrderingViolation  = model.ErrOrderingViolation
	ErrCountMismatch      = model.ErrCountMismatch
	ErrUnknownHeaderShape = model.ErrUnknownHeaderShape
	ErrHeaderLeak         = model.ErrHeaderLeak
	ErrShapeRepairFailure = model.ErrShapeRepairFailure
	ErrMalformedHeading   = model.ErrMalformedHeading
)

// Re-export option functions
var (
	WithBackend              = pdf.WithBackend
	WithXTolerance           = pdf.WithXTolerance
	WithYTolerance           = pdf.WithYTolerance
	WithSnapTolerance        = pdf.WithSnapTolerance
	WithUnicodeNormalization = pdf.WithUnicodeNormalization
	DefaultConfig            = config.Default
	LoadConfig               = config.Load
)

var _ extract.Source = (*pdf.Layout)(nil)

// Open opens a report for page-level access
func Open(filepath string, opts ...Option) (*Document, error) {
	return pdf.Open(filepath, opts...)
}

// ExtractFile reads every table of the report at filepath, in page order.
// The first table that breaks an assumption about the report layout stops
// the extraction with a *model.Error.
func ExtractFile(ctx context.Context, filepath string, cfg Config) ([]Table, error) {
	doc, err := pdf.Open(filepath, cfg.PDFOptions()...)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	p := extract.New(cfg.ExtractOptions(), nil)
	return p.ProcessDocument(ctx, pdf.NewLayout(doc))
}
