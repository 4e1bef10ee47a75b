package scoring

import (
	"encoding/json"
	"fmt"
)

// Domain identifies which practice mode a submission belongs to
type Domain string

const (
	DomainCall Domain = "call"
	DomainRCA  Domain = "rca"
)

// Outcome is the result of a simulated cold call
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

// Valid reports whether o is one of the three known outcomes
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSuccess, OutcomePartial, OutcomeFailure:
		return true
	}
	return false
}

// Turn is a single utterance in a call transcript
type Turn struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// CallInput is a finished cold-call session ready to be scored
type CallInput struct {
	ScenarioID      string  `json:"scenario_id" yaml:"scenario_id"`
	Transcript      []Turn  `json:"transcript" yaml:"transcript"`
	Outcome         Outcome `json:"outcome" yaml:"outcome"`
	DurationSeconds int     `json:"duration_seconds" yaml:"duration_seconds"`
}

// RCAInput is a root-cause analysis submission together with the reference answer
type RCAInput struct {
	CaseID             string              `json:"case_id,omitempty" yaml:"case_id,omitempty"`
	SubmittedRootCause string              `json:"submitted_root_cause" yaml:"submitted_root_cause"`
	SubmittedReasoning string              `json:"submitted_reasoning" yaml:"submitted_reasoning"`
	CorrectRootCause   string              `json:"correct_root_cause" yaml:"correct_root_cause"`
	CorrectReasoning   string              `json:"correct_reasoning" yaml:"correct_reasoning"`
	FiveWhys           []string            `json:"five_whys" yaml:"five_whys"`
	Fishbone           map[string][]string `json:"fishbone,omitempty" yaml:"fishbone,omitempty"` // nil when not supplied
}

// Dimension is one rubric criterion and its point ceiling
type Dimension struct {
	Name     string // wire key, e.g. "opening"
	Label    string // human-readable name
	Max      int    // point ceiling
	Criteria string // what earns the points, used in AI prompts
}

// Rubric is the ordered set of dimensions for a domain.
// Ceilings always sum to 100.
type Rubric struct {
	Domain     Domain
	Dimensions []Dimension
	MessageKey string // feedback key holding the encouragement message
}

// CallRubric scores cold-call simulations
var CallRubric = Rubric{
	Domain:     DomainCall,
	MessageKey: "coach_message",
	Dimensions: []Dimension{
		{Name: "opening", Label: "Opening", Max: 20, Criteria: "introduced themselves clearly, earned the right to continue, stated the reason for the call"},
		{Name: "value", Label: "Value proposition", Max: 25, Criteria: "connected the offer to the prospect's situation with a specific, relevant benefit"},
		{Name: "objection", Label: "Objection handling", Max: 25, Criteria: "acknowledged objections, asked clarifying questions, responded without arguing"},
		{Name: "professionalism", Label: "Professionalism", Max: 15, Criteria: "polite, concise, respectful of the prospect's time"},
		{Name: "outcome", Label: "Outcome", Max: 15, Criteria: "secured a concrete next step such as a meeting or a follow-up"},
	},
}

// RCARubric scores root-cause analysis investigations
var RCARubric = Rubric{
	Domain:     DomainRCA,
	MessageKey: "mentor_message",
	Dimensions: []Dimension{
		{Name: "root_cause", Label: "Root cause", Max: 40, Criteria: "identified the same underlying cause as the reference answer, not a symptom"},
		{Name: "reasoning", Label: "Reasoning", Max: 30, Criteria: "supported the conclusion with evidence and a logical chain"},
		{Name: "methodology", Label: "Methodology", Max: 20, Criteria: "used the 5 Whys and categorized contributing causes systematically"},
		{Name: "clarity", Label: "Clarity", Max: 10, Criteria: "stated the root cause precisely and concisely"},
	},
}

// RubricFor returns the rubric for a domain
func RubricFor(d Domain) (Rubric, error) {
	switch d {
	case DomainCall:
		return CallRubric, nil
	case DomainRCA:
		return RCARubric, nil
	default:
		return Rubric{}, fmt.Errorf("unknown scoring domain: %q", d)
	}
}

// Total returns the sum of the dimension ceilings
func (r Rubric) Total() int {
	total := 0
	for _, d := range r.Dimensions {
		total += d.Max
	}
	return total
}

// DimensionScore is the points earned on one dimension
type DimensionScore struct {
	Name    string
	Label   string
	Score   int
	Max     int
	Comment string
}

// Result is the outcome of scoring one submission
type Result struct {
	Score      int // 0-100 total score
	Dimensions []DimensionScore
	Overall    string
	Message    string // encouragement message, keyed by MessageKey on the wire
	MessageKey string
	TopTip     string
}

// Dimension returns the named dimension score
func (r Result) Dimension(name string) (DimensionScore, bool) {
	for _, d := range r.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return DimensionScore{}, false
}

// Tier returns the letter tier for the total score
func (r Result) Tier() string {
	return TierFromScore(r.Score)
}

type wireDimension struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

type wireResult struct {
	Score    int                        `json:"score"`
	Feedback map[string]json.RawMessage `json:"feedback"`
}

// MarshalJSON renders the result as {score, feedback: {<dimension>: {score, comment}, overall, <message key>, top_tip?}}
func (r Result) MarshalJSON() ([]byte, error) {
	feedback := make(map[string]any, len(r.Dimensions)+3)
	for _, d := range r.Dimensions {
		feedback[d.Name] = wireDimension{Score: d.Score, Comment: d.Comment}
	}
	feedback["overall"] = r.Overall
	key := r.MessageKey
	if key == "" {
		key = "message"
	}
	feedback[key] = r.Message
	if r.TopTip != "" {
		feedback["top_tip"] = r.TopTip
	}
	return json.Marshal(struct {
		Score    int            `json:"score"`
		Feedback map[string]any `json:"feedback"`
	}{Score: r.Score, Feedback: feedback})
}

// Decode parses the wire form of a result using the rubric's dimensions.
// Dimensions missing from data decode as zero scores with empty comments.
func (r Rubric) Decode(data []byte) (Result, error) {
	var wire wireResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return Result{}, err
	}

	res := Result{Score: wire.Score, MessageKey: r.MessageKey}
	for _, d := range r.Dimensions {
		ds := DimensionScore{Name: d.Name, Label: d.Label, Max: d.Max}
		if raw, ok := wire.Feedback[d.Name]; ok {
			var wd wireDimension
			if err := json.Unmarshal(raw, &wd); err != nil {
				return Result{}, fmt.Errorf("feedback.%s: %w", d.Name, err)
			}
			ds.Score = wd.Score
			ds.Comment = wd.Comment
		}
		res.Dimensions = append(res.Dimensions, ds)
	}

	var err error
	if res.Overall, err = decodeText(wire.Feedback, "overall"); err != nil {
		return Result{}, err
	}
	if res.Message, err = decodeText(wire.Feedback, r.MessageKey); err != nil {
		return Result{}, err
	}
	if res.TopTip, err = decodeText(wire.Feedback, "top_tip"); err != nil {
		return Result{}, err
	}
	return res, nil
}

func decodeText(feedback map[string]json.RawMessage, key string) (string, error) {
	raw, ok := feedback[key]
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("feedback.%s: %w", key, err)
	}
	return s, nil
}

// GoodScore is the total at which an attempt counts as good
const GoodScore = 60

// TierFromScore returns the quality tier based on score
func TierFromScore(score int) string {
	switch {
	case score >= 85:
		return "A"
	case score >= 70:
		return "B"
	case score >= 50:
		return "C"
	case score >= 30:
		return "D"
	default:
		return "F"
	}
}
