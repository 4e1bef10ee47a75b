package scoring

import "fmt"

// Duration window, in seconds, that earns the call-length bonus
const (
	callBonusMinSeconds = 120
	callBonusMaxSeconds = 300
	callDurationBonus   = 10
)

// callBase is the starting score for each outcome. Anything that is not
// success or partial scores as a failure.
func callBase(o Outcome) int {
	switch o {
	case OutcomeSuccess:
		return 75
	case OutcomePartial:
		return 50
	default:
		return 30
	}
}

// ScoreCallFallback scores a cold call without the AI provider.
// It is deterministic and never fails.
func ScoreCallFallback(in CallInput) Result {
	total := callBase(in.Outcome)
	if in.DurationSeconds >= callBonusMinSeconds && in.DurationSeconds <= callBonusMaxSeconds {
		total += callDurationBonus
	}
	total = min(100, total)

	success := in.Outcome == OutcomeSuccess
	failure := in.Outcome == OutcomeFailure

	scores := make(map[string]int, len(CallRubric.Dimensions))
	for _, d := range CallRubric.Dimensions {
		scores[d.Name] = ShareOf(total, d.Max)
	}

	comments := map[string]string{
		"opening": pick(success,
			"Your opening earned you the prospect's attention and a reason to keep listening.",
			"Work on a sharper opening: say who you are and why you're calling within the first two sentences."),
		"value": pick(success,
			"You tied the offer to something the prospect cares about.",
			"Make the value concrete. Connect the product to a problem this prospect actually has."),
		"objection": pick(failure,
			"The objections ended the call. Acknowledge the concern, ask a question, then respond.",
			"You kept the conversation going through the prospect's pushback."),
		"professionalism": "You stayed courteous and respectful of the prospect's time.",
		"outcome": pick(success,
			"You secured a clear next step. That's the goal of every cold call.",
			"The call ended without a firm commitment. Always ask for a specific next step."),
	}

	res := newResult(CallRubric, total, scores, comments)
	if success {
		res.Overall = fmt.Sprintf("Strong call. You moved the prospect to a clear next step and scored %d/100.", total)
		res.Message = fmt.Sprintf("Great work! %d/100 is a score to build on. Try the next level when you're ready.", total)
	} else {
		res.Overall = fmt.Sprintf("You scored %d/100. There were promising moments, but the prospect did not commit to a next step.", total)
		res.Message = fmt.Sprintf("Every call is practice. %d/100 is your baseline, so replay the scenario and focus on the first objection.", total)
	}
	return res
}
