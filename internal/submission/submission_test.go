package submission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/praxy/internal/scoring"
)

const callYAML = `kind: call
user: learner-42
scenario_id: cfo-budget-freeze
outcome: partial
duration_seconds: 185
transcript:
  - role: user
    content: Hi Priya, this is Sam from Ledgerly.
  - role: agent
    content: We are in a budget freeze.
`

const rcaJSON = `{
  "kind": "rca",
  "case_id": "checkout-timeouts",
  "submitted_root_cause": "Connection pool ran out during the sale",
  "submitted_reasoning": "Servers idle, requests queued on DB.",
  "five_whys": ["timeouts", "queued", "no connections"],
  "fishbone": {"process": ["no load test"]}
}`

func TestParse_CallYAML(t *testing.T) {
	doc, err := Parse([]byte(callYAML))
	require.NoError(t, err)

	assert.Equal(t, scoring.DomainCall, doc.Kind)
	assert.Equal(t, "learner-42", doc.User)
	assert.Equal(t, "cfo-budget-freeze", doc.Call.ScenarioID)
	assert.Equal(t, scoring.OutcomePartial, doc.Call.Outcome)
	assert.Equal(t, 185, doc.Call.DurationSeconds)
	require.Len(t, doc.Call.Transcript, 2)
	assert.Equal(t, "agent", doc.Call.Transcript[1].Role)
	assert.Equal(t, "cfo-budget-freeze", doc.Subject())
	assert.NoError(t, Validate(doc))
}

func TestParse_RCAJSON(t *testing.T) {
	doc, err := Parse([]byte(rcaJSON))
	require.NoError(t, err)

	assert.Equal(t, scoring.DomainRCA, doc.Kind)
	assert.Equal(t, "checkout-timeouts", doc.RCA.CaseID)
	assert.Equal(t, []string{"timeouts", "queued", "no connections"}, doc.RCA.FiveWhys)
	assert.Equal(t, map[string][]string{"process": {"no load test"}}, doc.RCA.Fishbone)
	assert.Equal(t, "checkout-timeouts", doc.Subject())
	assert.NoError(t, Validate(doc))
}

func TestParse_FishboneAbsentIsNil(t *testing.T) {
	doc, err := Parse([]byte(`{"kind": "rca", "submitted_root_cause": "x", "correct_root_cause": "y"}`))
	require.NoError(t, err)
	assert.Nil(t, doc.RCA.Fishbone)
}

func TestParse_InfersKind(t *testing.T) {
	tests := []struct {
		name string
		data string
		want scoring.Domain
	}{
		{"call fields", `{"scenario_id": "x", "outcome": "success"}`, scoring.DomainCall},
		{"rca fields", `{"submitted_root_cause": "pool", "correct_root_cause": "pool"}`, scoring.DomainRCA},
		{"nothing", `{"user": "u"}`, ""},
		{"explicit wins", `{"kind": "call", "five_whys": ["a"]}`, scoring.DomainCall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Kind)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("kind: [unterminated"))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"duration_seconds": "long"}`))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(callYAML), 0644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, scoring.DomainCall, doc.Kind)

	_, err = ParseFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr []string
	}{
		{
			name: "valid call",
			doc:  Document{Kind: scoring.DomainCall, Call: scoring.CallInput{ScenarioID: "s", Outcome: scoring.OutcomeSuccess}},
		},
		{
			name: "call problems are all reported",
			doc: Document{Kind: scoring.DomainCall, Call: scoring.CallInput{
				Outcome:         "won",
				DurationSeconds: -1,
				Transcript:      []scoring.Turn{{Content: "hello"}},
			}},
			wantErr: []string{"scenario_id", "outcome", "duration_seconds", "transcript[0]"},
		},
		{
			name: "rca too many whys",
			doc: Document{Kind: scoring.DomainRCA, RCA: scoring.RCAInput{
				SubmittedRootCause: "x",
				CorrectRootCause:   "y",
				FiveWhys:           []string{"1", "2", "3", "4", "5", "6"},
			}},
			wantErr: []string{"five_whys"},
		},
		{
			name:    "rca without reference or case",
			doc:     Document{Kind: scoring.DomainRCA, RCA: scoring.RCAInput{SubmittedRootCause: "x"}},
			wantErr: []string{"case_id or correct_root_cause"},
		},
		{
			name:    "rca blank root cause",
			doc:     Document{Kind: scoring.DomainRCA, RCA: scoring.RCAInput{SubmittedRootCause: "  ", CaseID: "c"}},
			wantErr: []string{"submitted_root_cause"},
		},
		{
			name:    "missing kind",
			doc:     Document{},
			wantErr: []string{"kind is required"},
		},
		{
			name:    "unknown kind",
			doc:     Document{Kind: "quiz"},
			wantErr: []string{"unknown kind"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.doc)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestValidationErrorIncludesPath(t *testing.T) {
	err := Validate(&Document{Path: "sessions/a.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessions/a.yaml")
}
