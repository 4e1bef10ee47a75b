package scoring

import (
	"math"
	"strings"
	"unicode/utf8"
)

// ShareOf returns total scaled to a dimension ceiling, rounded to the nearest
// integer with halves rounded up. Each dimension is rounded on its own, so the
// shares of a total need not add back up to it.
func ShareOf(total, ceiling int) int {
	return int(math.Round(float64(total*ceiling) / 100))
}

// newResult builds a Result for the rubric from per-dimension scores and comments
func newResult(r Rubric, total int, scores map[string]int, comments map[string]string) Result {
	res := Result{Score: total, MessageKey: r.MessageKey}
	for _, d := range r.Dimensions {
		res.Dimensions = append(res.Dimensions, DimensionScore{
			Name:    d.Name,
			Label:   d.Label,
			Score:   scores[d.Name],
			Max:     d.Max,
			Comment: comments[d.Name],
		})
	}
	return res
}

// textLen counts characters, not bytes
func textLen(s string) int {
	return utf8.RuneCountInString(s)
}

// countNonBlank counts entries that contain something other than whitespace
func countNonBlank(items []string) int {
	n := 0
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			n++
		}
	}
	return n
}

// pick returns a when cond holds, b otherwise
func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
