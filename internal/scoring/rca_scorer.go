package scoring

import (
	"fmt"
	"math"
	"strings"
)

const keyTermMinLen = 5 // key terms are longer than 4 characters

// KeyTerms splits the lower-cased reference root cause on whitespace and keeps
// the tokens longer than four characters. Punctuation stays attached.
func KeyTerms(reference string) []string {
	var terms []string
	for _, tok := range strings.Fields(strings.ToLower(reference)) {
		if textLen(tok) >= keyTermMinLen {
			terms = append(terms, tok)
		}
	}
	return terms
}

// MatchRatio is the fraction of key terms found as substrings of the lower-cased
// submission. It is 0 when the reference has no key terms.
func MatchRatio(reference, submission string) float64 {
	terms := KeyTerms(reference)
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(submission)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// ScoreRCAFallback scores a root-cause submission without the AI provider.
// Unlike the call variant, the dimension scores always sum to the total.
func ScoreRCAFallback(in RCAInput) Result {
	rootCause := int(math.Round(MatchRatio(in.CorrectRootCause, in.SubmittedRootCause) * 40))

	reasoning := 10
	if textLen(in.SubmittedReasoning) > 50 {
		reasoning = 20
	}

	whys := countNonBlank(in.FiveWhys)
	methodology := 5
	if whys > 2 {
		methodology = 10
	}
	if in.Fishbone != nil {
		methodology += 10
	}

	clarity := 5
	if textLen(in.SubmittedRootCause) > 20 {
		clarity = 8
	}

	total := rootCause + reasoning + methodology + clarity
	good := total >= GoodScore
	thorough := textLen(in.SubmittedReasoning) > 100

	scores := map[string]int{
		"root_cause":  rootCause,
		"reasoning":   reasoning,
		"methodology": methodology,
		"clarity":     clarity,
	}
	comments := map[string]string{
		"root_cause": pick(good,
			"You landed close to the real underlying cause.",
			"Your answer describes a symptom. Keep asking why until you reach the process or decision behind it."),
		"reasoning": pick(thorough,
			"Your reasoning walks through the evidence step by step.",
			"Expand your reasoning. Show which evidence rules the other explanations out."),
		"methodology": pick(whys > 2,
			"Good use of the 5 Whys to dig past the first explanation.",
			"Use all five whys. Stopping after one or two usually leaves you at a symptom."),
		"clarity": pick(good,
			"The root cause is stated clearly enough to act on.",
			"State the root cause in one precise sentence that a team could act on."),
	}

	res := newResult(RCARubric, total, scores, comments)
	if good {
		res.Overall = fmt.Sprintf("Solid investigation. You scored %d/100 and your conclusion is close to the reference answer.", total)
		res.Message = fmt.Sprintf("Nice detective work! %d/100. Try a harder case next.", total)
	} else {
		res.Overall = fmt.Sprintf("You scored %d/100. The analysis stopped before reaching the underlying cause.", total)
		res.Message = fmt.Sprintf("Root-cause analysis takes practice. %d/100 is a starting point, so revisit the evidence and push one more why.", total)
	}
	return res
}
