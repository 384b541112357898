package normalize

import (
	"fmt"
	"strings"

	"github.com/pyhub-apps/databuddies-golang/pkg/model"
)

const meanSDSuffix = "Mean (SD)"

// TrimFootnotes drops trailing rows whose cells beyond the first are all
// absent. Footnotes such as "(*) p≤.05 and Cohen's d or h≥.30" span the
// whole table width, so only their first cell is attributed.
func TrimFootnotes(rows [][]model.Cell) [][]model.Cell {
	for len(rows) > 0 {
		last := rows[len(rows)-1]
		if len(last) > 0 && !allAbsent(last[1:]) {
			break
		}
		rows = rows[:len(rows)-1]
	}
	return rows
}

func allAbsent(cells []model.Cell) bool {
	for _, c := range cells {
		if !c.Absent {
			return false
		}
	}
	return true
}

// ExpandMeanSDFromRow splits every "<mean> (<sd>)" cell after the first
// into separate cells. The first cell holds question text and is left alone.
//
//	ExpandMeanSDFromRow([]string{"a", "1 (2)", "b"}) // ["a", "1", "2", "b"]
func ExpandMeanSDFromRow(row []string) []string {
	if len(row) == 0 {
		return []string{}
	}
	result := make([]string, 0, len(row))
	result = append(result, row[0])
	for _, item := range row[1:] {
		if strings.Contains(item, " (") && strings.HasSuffix(item, ")") {
			result = append(result, strings.Split(item[:len(item)-1], " (")...)
		} else {
			result = append(result, item)
		}
	}
	return result
}

// ExpandHeaderMeanSD splits every header cell ending in "Mean (SD)" into a
// "-Mean" and a "-SD" column that keep the text before the suffix.
func ExpandHeaderMeanSD(header []string) []string {
	result := make([]string, 0, len(header))
	for _, h := range header {
		if strings.HasSuffix(h, meanSDSuffix) {
			prefix := strings.TrimSuffix(h, meanSDSuffix)
			result = append(result, prefix+"-Mean", prefix+"-SD")
		} else {
			result = append(result, h)
		}
	}
	return result
}

// StripTrailingPercent removes a trailing '%' when a digit precedes it
func StripTrailingPercent(item string) string {
	n := len(item)
	if n < 2 || item[n-1] != '%' {
		return item
	}
	if c := item[n-2]; c >= '0' && c <= '9' {
		return item[:n-1]
	}
	return item
}

// AddPlaceholderNames names empty header cells Column<i>, 1-based
func AddPlaceholderNames(header []string) []string {
	result := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("Column%d", i+1)
		}
		result[i] = h
	}
	return result
}

// SplitHeading decomposes "<anchor> <dotted index> <description...>"
func SplitHeading(heading, anchor string) (index, description string, err error) {
	words := strings.Fields(heading)
	if len(words) < 2 || words[0] != anchor {
		return "", "", model.Errorf(model.ErrMalformedHeading, heading,
			"expected %q followed by an index, got %q", anchor, words)
	}
	index = words[1]
	if !strings.Contains(index, ".") || index[0] < '0' || index[0] > '9' {
		return "", "", model.Errorf(model.ErrMalformedHeading, heading,
			"index %q is not a dotted number", index)
	}
	return index, strings.Join(words[2:], " "), nil
}

func duplicate(header []string) (string, bool) {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return h, true
		}
		seen[h] = true
	}
	return "", false
}
