package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dotcommander/praxy/internal/scenarios"
)

const (
	callPersona = "You are an experienced B2B sales coach reviewing a learner's cold-call practice session. " +
		"Score it honestly and give specific, encouraging feedback."
	rcaPersona = "You are a senior operations consultant mentoring a learner on root-cause analysis. " +
		"Compare their investigation with the reference answer and give specific, encouraging feedback."
)

// BuildCallPrompt renders the scoring prompt for a cold call. scenario may be nil
// when the scenario id is not in the catalog.
func BuildCallPrompt(in CallInput, scenario *scenarios.ScenarioMeta) string {
	var b strings.Builder
	b.WriteString(callPersona)
	b.WriteString("\n\n")

	writeRubric(&b, CallRubric)

	b.WriteString("## Scenario\n")
	if scenario != nil {
		fmt.Fprintf(&b, "Company: %s\n", scenario.Company)
		fmt.Fprintf(&b, "Prospect: %s, %s\n", scenario.ProspectName, scenario.ProspectRole)
		fmt.Fprintf(&b, "Objective: %s\n", scenario.Objective)
		fmt.Fprintf(&b, "Difficulty: %s\n", scenario.Difficulty)
	} else {
		fmt.Fprintf(&b, "Scenario id: %s\n", in.ScenarioID)
	}
	b.WriteString("\n")

	b.WriteString("## Call\n")
	fmt.Fprintf(&b, "Reported outcome: %s\n", in.Outcome)
	fmt.Fprintf(&b, "Duration: %d seconds\n\n", in.DurationSeconds)
	b.WriteString("Transcript:\n")
	if len(in.Transcript) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, turn := range in.Transcript {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(turn.Role), turn.Content)
	}
	b.WriteString("\n")

	writeResponseFormat(&b, CallRubric)
	return b.String()
}

// BuildRCAPrompt renders the scoring prompt for a root-cause submission.
// c may be nil when the submission is not tied to a catalog case.
func BuildRCAPrompt(in RCAInput, c *scenarios.CaseMeta) string {
	var b strings.Builder
	b.WriteString(rcaPersona)
	b.WriteString("\n\n")

	writeRubric(&b, RCARubric)

	if c != nil {
		b.WriteString("## Case\n")
		fmt.Fprintf(&b, "%s (%s)\n%s\n\n", c.Title, c.Company, c.Brief)
	}

	b.WriteString("## Reference answer\n")
	fmt.Fprintf(&b, "Root cause: %s\n", in.CorrectRootCause)
	fmt.Fprintf(&b, "Reasoning: %s\n\n", in.CorrectReasoning)

	b.WriteString("## Learner submission\n")
	fmt.Fprintf(&b, "Root cause: %s\n", in.SubmittedRootCause)
	fmt.Fprintf(&b, "Reasoning: %s\n", in.SubmittedReasoning)
	b.WriteString("5 Whys:\n")
	if countNonBlank(in.FiveWhys) == 0 {
		b.WriteString("(none)\n")
	}
	for i, why := range in.FiveWhys {
		if strings.TrimSpace(why) == "" {
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, why)
	}
	if in.Fishbone != nil {
		b.WriteString("Fishbone categories:\n")
		for _, category := range sortedKeys(in.Fishbone) {
			fmt.Fprintf(&b, "- %s: %s\n", category, strings.Join(in.Fishbone[category], "; "))
		}
	}
	b.WriteString("\n")

	writeResponseFormat(&b, RCARubric)
	return b.String()
}

func writeRubric(b *strings.Builder, r Rubric) {
	fmt.Fprintf(b, "## Rubric (%d points total)\n", r.Total())
	for _, d := range r.Dimensions {
		fmt.Fprintf(b, "- %s (%s): 0-%d points. %s.\n", d.Label, d.Name, d.Max, capitalize(d.Criteria))
	}
	b.WriteString("The overall score is the sum of the dimension scores.\n\n")
}

func writeResponseFormat(b *strings.Builder, r Rubric) {
	b.WriteString("## Response format\n")
	b.WriteString("Respond with ONLY a JSON object. No prose before or after it, no markdown, no code fences. Use exactly this shape:\n")
	b.WriteString("{\"score\": <integer 0-100>, \"feedback\": {")
	for _, d := range r.Dimensions {
		fmt.Fprintf(b, "\"%s\": {\"score\": <integer 0-%d>, \"comment\": \"<one or two sentences>\"}, ", d.Name, d.Max)
	}
	fmt.Fprintf(b, "\"overall\": \"<two or three sentence summary>\", \"%s\": \"<short encouragement>\", \"top_tip\": \"<single most useful improvement>\"}}\n", r.MessageKey)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
