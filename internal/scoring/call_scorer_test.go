package scoring

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dimensionScores(res Result) map[string]int {
	out := make(map[string]int, len(res.Dimensions))
	for _, d := range res.Dimensions {
		out[d.Name] = d.Score
	}
	return out
}

func TestScoreCallFallback_Totals(t *testing.T) {
	tests := []struct {
		name     string
		outcome  Outcome
		duration int
		want     int
	}{
		{"success no bonus", OutcomeSuccess, 30, 75},
		{"success with bonus", OutcomeSuccess, 200, 85},
		{"partial no bonus", OutcomePartial, 30, 50},
		{"partial with bonus", OutcomePartial, 150, 60},
		{"failure no bonus", OutcomeFailure, 0, 30},
		{"failure with bonus", OutcomeFailure, 120, 40},
		{"unknown outcome scores as failure", Outcome("hung-up"), 0, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreCallFallback(CallInput{Outcome: tt.outcome, DurationSeconds: tt.duration})
			assert.Equal(t, tt.want, res.Score)
		})
	}
}

func TestScoreCallFallback_DurationBoundaries(t *testing.T) {
	tests := []struct {
		duration int
		want     int
	}{
		{119, 75},
		{120, 85},
		{300, 85},
		{301, 75},
	}
	for _, tt := range tests {
		res := ScoreCallFallback(CallInput{Outcome: OutcomeSuccess, DurationSeconds: tt.duration})
		assert.Equal(t, tt.want, res.Score, "duration %d", tt.duration)
	}
}

func TestScoreCallFallback_IndependentRounding(t *testing.T) {
	res := ScoreCallFallback(CallInput{Outcome: OutcomeSuccess, DurationSeconds: 45})
	require.Equal(t, 75, res.Score)

	want := map[string]int{
		"opening":         15,
		"value":           19,
		"objection":       19,
		"professionalism": 11,
		"outcome":         11,
	}
	assert.Equal(t, want, dimensionScores(res))

	// 15+19+19+11+11 = 75 here by coincidence of rounding; check a total that drifts
	partial := ScoreCallFallback(CallInput{Outcome: OutcomeFailure, DurationSeconds: 0})
	require.Equal(t, 30, partial.Score)
	got := dimensionScores(partial)
	assert.Equal(t, map[string]int{
		"opening":         6,
		"value":           8,
		"objection":       8,
		"professionalism": 5,
		"outcome":         5,
	}, got)
	sum := 0
	for _, v := range got {
		sum += v
	}
	assert.Equal(t, 32, sum, "sub-scores are rounded independently and are not re-summed")
}

func TestScoreCallFallback_WithinCeilings(t *testing.T) {
	for _, outcome := range []Outcome{OutcomeSuccess, OutcomePartial, OutcomeFailure} {
		for _, duration := range []int{0, 119, 120, 300, 301, 3600} {
			res := ScoreCallFallback(CallInput{Outcome: outcome, DurationSeconds: duration})
			assert.GreaterOrEqual(t, res.Score, 0)
			assert.LessOrEqual(t, res.Score, 100)
			for _, d := range res.Dimensions {
				assert.LessOrEqual(t, d.Score, d.Max, "%s %s", outcome, d.Name)
				assert.GreaterOrEqual(t, d.Score, 0)
			}
		}
	}
}

func TestScoreCallFallback_Deterministic(t *testing.T) {
	in := CallInput{
		ScenarioID:      "cfo-budget-freeze",
		Transcript:      []Turn{{Role: "user", Content: "Hi"}, {Role: "agent", Content: "Who is this?"}},
		Outcome:         OutcomePartial,
		DurationSeconds: 210,
	}
	first := ScoreCallFallback(in)
	second := ScoreCallFallback(in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("fallback is not deterministic (-first +second):\n%s", diff)
	}
}

func TestScoreCallFallback_Comments(t *testing.T) {
	success := ScoreCallFallback(CallInput{Outcome: OutcomeSuccess})
	partial := ScoreCallFallback(CallInput{Outcome: OutcomePartial})
	failure := ScoreCallFallback(CallInput{Outcome: OutcomeFailure})

	comment := func(r Result, name string) string {
		d, ok := r.Dimension(name)
		require.True(t, ok)
		return d.Comment
	}

	// opening, value and outcome switch on success
	for _, name := range []string{"opening", "value", "outcome"} {
		assert.NotEqual(t, comment(success, name), comment(partial, name), name)
		assert.Equal(t, comment(partial, name), comment(failure, name), name)
	}

	// objection switches on failure
	assert.Equal(t, comment(success, "objection"), comment(partial, "objection"))
	assert.NotEqual(t, comment(partial, "objection"), comment(failure, "objection"))

	// professionalism never changes
	assert.Equal(t, comment(success, "professionalism"), comment(failure, "professionalism"))

	assert.Contains(t, success.Overall, "75")
	assert.Contains(t, success.Message, "75")
	assert.Contains(t, failure.Overall, "30")
	assert.NotEqual(t, success.Message, partial.Message)
	assert.Equal(t, "coach_message", success.MessageKey)
}

func TestShareOf(t *testing.T) {
	tests := []struct {
		total, ceiling, want int
	}{
		{75, 20, 15},
		{75, 25, 19},
		{75, 15, 11},
		{30, 15, 5}, // 4.5 rounds up
		{50, 15, 8}, // 7.5 rounds up
		{100, 25, 25},
		{0, 40, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShareOf(tt.total, tt.ceiling), "ShareOf(%d, %d)", tt.total, tt.ceiling)
	}
}
