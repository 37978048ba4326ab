package compare

import "github.com/quotewise/quotewise-backend/pkg/enums"

// Summary tallies classifications by result.
type Summary struct {
	Total  int                            `json:"total"`
	Counts map[enums.ComparisonResult]int `json:"counts"`
}

// Summarize counts each result. Every known result is present in Counts.
func Summarize(items []Classification) Summary {
	counts := make(map[enums.ComparisonResult]int, len(enums.ComparisonResults()))
	for _, result := range enums.ComparisonResults() {
		counts[result] = 0
	}
	for _, item := range items {
		counts[item.Result]++
	}
	return Summary{Total: len(items), Counts: counts}
}

// ByLabel returns the counts keyed by string result, for metrics.
func (s Summary) ByLabel() map[string]int {
	out := make(map[string]int, len(s.Counts))
	for result, n := range s.Counts {
		out[result.String()] = n
	}
	return out
}
