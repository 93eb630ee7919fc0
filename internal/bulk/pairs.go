// Package bulk drives batch schema comparisons over a list of project pairs.
package bulk

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Pair is one (source, target) project comparison.
type Pair struct {
	SourceID string
	TargetID string
}

// LoadPairs reads project pairs from a CSV file: first column source project
// id, second column target project id. A header row is tolerated, blank or
// incomplete rows are dropped, and an Excel-style leading apostrophe before a
// numeric id is stripped so exported spreadsheets keep working.
func LoadPairs(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pairs file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse pairs file: %w", err)
	}

	var pairs []Pair
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		src := normalizeCell(row[0])
		tgt := normalizeCell(row[1])
		if src == "" || tgt == "" {
			continue
		}
		if i == 0 && looksLikeHeader(src, tgt) {
			continue
		}
		pairs = append(pairs, Pair{SourceID: src, TargetID: tgt})
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no valid project pairs found in %s", path)
	}
	return pairs, nil
}

func normalizeCell(val string) string {
	s := strings.TrimSpace(val)
	if strings.HasPrefix(s, "'") && len(s) > 1 && isNumeric(s[1:]) {
		s = s[1:]
	}
	return s
}

func isNumeric(s string) bool {
	stripped := strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), "-", "")
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func looksLikeHeader(src, tgt string) bool {
	lower := strings.ToLower(src + " " + tgt)
	return strings.Contains(lower, "source") || strings.Contains(lower, "target") ||
		strings.Contains(lower, "project")
}
