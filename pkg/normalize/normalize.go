// Package normalize turns a raw report table grid into a flat header and
// rows of equal length.
//
// The rewrites only cover shapes seen in the DataBuddies reports. Anything
// else fails with a typed error so the shape can be inspected and a rule
// added; nothing is approximated.
package normalize

import (
	"slices"
	"strings"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

// Options configures a Normalizer
type Options struct {
	// Institution prefixes columns describing the reporting institution
	Institution string

	// PeerPrefix prefixes columns describing the comparison group
	PeerPrefix string

	// OwnGroupLabel and PeerGroupLabel are the raw group captions of
	// compound headers. Neither may survive normalization.
	OwnGroupLabel  string
	PeerGroupLabel string

	// QuestionLabel names a blank first column
	QuestionLabel string

	// CountMarker is the first cell of a raw-count row
	CountMarker string

	// Anchor is the first word of every heading
	Anchor string

	// Rewrites are tried in order against single-row headers
	Rewrites []Rewrite
}

// DefaultOptions returns the options used for the Illinois reports
func DefaultOptions() Options {
	return Options{
		Institution:    "Illinois",
		PeerPrefix:     "Similar",
		OwnGroupLabel:  "Your Institution",
		PeerGroupLabel: "Similar Institutions",
		QuestionLabel:  "Question",
		CountMarker:    "n",
		Anchor:         "Table",
		Rewrites:       DefaultRewrites(),
	}
}

// Normalizer applies the header and row rewrites to one table at a time.
// It holds no per-table state and is safe for concurrent use.
type Normalizer struct {
	opts     Options
	rewrites rewriteTable
}

// New creates a Normalizer. Empty string options take their defaults; a nil
// Rewrites slice means the default rules, an empty one means none.
func New(opts Options) *Normalizer {
	def := DefaultOptions()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&opts.Institution, def.Institution)
	fill(&opts.PeerPrefix, def.PeerPrefix)
	fill(&opts.OwnGroupLabel, def.OwnGroupLabel)
	fill(&opts.PeerGroupLabel, def.PeerGroupLabel)
	fill(&opts.QuestionLabel, def.QuestionLabel)
	fill(&opts.CountMarker, def.CountMarker)
	fill(&opts.Anchor, def.Anchor)
	if opts.Rewrites == nil {
		opts.Rewrites = def.Rewrites
	}

	r := strings.NewReplacer(
		"{institution}", opts.Institution,
		"{peer}", opts.PeerPrefix,
		"{own_label}", opts.OwnGroupLabel,
		"{peer_label}", opts.PeerGroupLabel,
	)
	return &Normalizer{
		opts:     opts,
		rewrites: compileRewrites(opts.Rewrites, r),
	}
}

// Normalize converts the raw grid introduced by heading into a table record
func (n *Normalizer) Normalize(heading string, raw model.RawTable) (model.Table, error) {
	rows := TrimFootnotes(raw.Rows)
	if len(rows) == 0 {
		return model.Table{}, model.Errorf(model.ErrShapeRepairFailure, heading,
			"no rows left after dropping footnotes from %d rows", len(raw.Rows))
	}
	grid := model.RawTable{Rows: rows}.Strings()

	header, data, err := n.splitHeader(heading, grid)
	if err != nil {
		return model.Table{}, err
	}

	header = n.rewrites.apply(header)
	if len(header) == 0 {
		return model.Table{}, model.Errorf(model.ErrUnknownHeaderShape, heading, "empty header row")
	}
	if header[0] == "" {
		header[0] = n.opts.QuestionLabel
	}

	header = ExpandHeaderMeanSD(header)
	for i, row := range data {
		row = ExpandMeanSDFromRow(row)
		for j := range row {
			row[j] = StripTrailingPercent(row[j])
		}
		data[i] = row
	}

	if err := n.repairRows(heading, header, data); err != nil {
		return model.Table{}, err
	}

	joined := strings.Join(header, " ")
	for _, label := range []string{n.opts.OwnGroupLabel, n.opts.PeerGroupLabel} {
		if strings.Contains(joined, label) {
			return model.Table{}, model.Errorf(model.ErrHeaderLeak, heading,
				"header %q still contains %q", header, label)
		}
	}

	header = AddPlaceholderNames(header)
	if dup, ok := duplicate(header); ok {
		return model.Table{}, model.Errorf(model.ErrShapeRepairFailure, heading,
			"duplicate column %q in %q", dup, header)
	}

	index, description, err := SplitHeading(heading, n.opts.Anchor)
	if err != nil {
		return model.Table{}, err
	}

	return model.Table{
		Index:       index,
		Description: description,
		Header:      header,
		Data:        data,
	}, nil
}

// splitHeader separates header and data rows. A blank first cell in the
// second row marks the three-row compound header; otherwise the first row
// is the header.
func (n *Normalizer) splitHeader(heading string, grid [][]string) ([]string, [][]string, error) {
	if len(grid) < 2 {
		return nil, nil, model.Errorf(model.ErrUnknownHeaderShape, heading,
			"%d row(s), expected a header and data", len(grid))
	}
	if len(grid[1]) == 0 || grid[1][0] != "" {
		return grid[0], grid[1:], nil
	}
	header, err := n.compoundHeader(heading, grid)
	if err != nil {
		return nil, nil, err
	}
	return header, grid[3:], nil
}

// compoundHeader merges the only observed three-row layout:
//
//	["", own, "", "", peer, "", ""]
//	["", "Women", "Men", "", "Women", "Men", ""]
//	["", "(%)", "(%)", "Sig.", "(%)", "(%)", "Sig."]
func (n *Normalizer) compoundHeader(heading string, grid [][]string) ([]string, error) {
	if len(grid) < 3 {
		return nil, model.Errorf(model.ErrUnknownHeaderShape, heading,
			"compound header needs 3 rows, got %d", len(grid))
	}

	top := []string{"", n.opts.OwnGroupLabel, "", "", n.opts.PeerGroupLabel, "", ""}
	if !slices.Equal(grid[0], top) {
		return nil, model.Errorf(model.ErrUnknownHeaderShape, heading,
			"first header row %q, expected %q", grid[0], top)
	}

	groups := grid[1]
	if len(groups) != 7 || groups[1] != groups[4] || groups[2] != groups[5] {
		return nil, model.Errorf(model.ErrUnknownHeaderShape, heading,
			"second header row %q does not mirror its groups", groups)
	}

	own, peer := n.opts.Institution+"-", n.opts.PeerPrefix+"-"
	header := []string{
		"",
		own + groups[1],
		own + groups[2],
		own,
		peer + groups[4],
		peer + groups[5],
		peer,
	}

	suffix := grid[2]
	if len(suffix) != len(header) || suffix[0] != "" {
		return nil, model.Errorf(model.ErrUnknownHeaderShape, heading,
			"third header row %q does not fit %d columns", suffix, len(header))
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i] + suffix[i])
	}
	return header, nil
}

// repairRows checks every data row against the header and pads short rows.
// Rows may lack the last column when there is no significance marker;
// raw-count rows are exempt from the length check but are still padded.
// The exemption only covers short count rows: a count row longer than the
// header fails like any other.
func (n *Normalizer) repairRows(heading string, header []string, data [][]string) error {
	width := len(header)
	for i, row := range data {
		isCount := len(row) > 0 && row[0] == n.opts.CountMarker
		if !isCount && len(row) != width && len(row)+1 != width {
			return model.Errorf(model.ErrShapeRepairFailure, heading,
				"row %d has %d cells for %d columns: header %q, row %q", i, len(row), width, header, row)
		}
		for len(row) < width {
			row = append(row, "")
		}
		if len(row) > width {
			return model.Errorf(model.ErrShapeRepairFailure, heading,
				"count row %d has %d cells for %d columns: %q", i, len(row), width, row)
		}
		data[i] = row
	}
	return nil
}
