package normalize

import (
	"slices"
	"strings"
)

// Rewrite replaces one exact single-row header with its intended columns.
//
// The layout source sometimes reads a compound two-group header as one cell.
// Such headers are matched verbatim, so supporting another report year means
// adding a Rewrite, not a code path. Match and Replace entries may use the
// placeholders {institution}, {peer}, {own_label} and {peer_label}.
type Rewrite struct {
	Name    string   `yaml:"name"`
	Match   []string `yaml:"match"`
	Replace []string `yaml:"replace"`
}

// DefaultRewrites returns the rules observed in the 2018-2020 reports
func DefaultRewrites() []Rewrite {
	return []Rewrite{
		{
			Name:    "percent-with-sig",
			Match:   []string{"", "{own_label} {peer_label}\nSig.\n(%) (%)", "", ""},
			Replace: []string{"", "{institution} (%)", "{peer} (%)", "Sig."},
		},
		{
			Name:    "mean-sd-with-sig",
			Match:   []string{"", "{own_label} {peer_label}\nSig.\nMean (SD) Mean (SD)", "", ""},
			Replace: []string{"", "{institution}-Mean", "{institution}-SD", "{peer}-Mean", "{peer}-SD", "Sig"},
		},
	}
}

// rewriteTable is the compiled form: placeholders already expanded
type rewriteTable []Rewrite

func compileRewrites(rules []Rewrite, r *strings.Replacer) rewriteTable {
	table := make(rewriteTable, len(rules))
	for i, rule := range rules {
		table[i] = Rewrite{
			Name:    rule.Name,
			Match:   expandAll(rule.Match, r),
			Replace: expandAll(rule.Replace, r),
		}
	}
	return table
}

func expandAll(values []string, r *strings.Replacer) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = r.Replace(v)
	}
	return out
}

// apply returns the replacement for header, or header itself when no rule
// matches.
func (t rewriteTable) apply(header []string) []string {
	for _, rule := range t {
		if slices.Equal(header, rule.Match) {
			out := make([]string, len(rule.Replace))
			copy(out, rule.Replace)
			return out
		}
	}
	return header
}
