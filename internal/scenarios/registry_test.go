package scenarios

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := Load()
	require.NoError(t, err)
	return reg
}

func TestLoad_EmbeddedCatalog(t *testing.T) {
	reg := loadRegistry(t)

	scenarios := reg.ListScenarios()
	require.Len(t, scenarios, 5)
	for i, s := range scenarios {
		assert.Equal(t, i+1, s.Level, "scenarios must be in level order")
		assert.NotEmpty(t, s.AgentID)
		assert.NotEmpty(t, s.Tips)
	}

	cases := reg.ListCases()
	require.Len(t, cases, 5)
	for _, c := range cases {
		assert.NotEmpty(t, c.RootCause, c.ID)
		assert.NotEmpty(t, c.Reasoning, c.ID)
	}
}

func TestGetScenario(t *testing.T) {
	reg := loadRegistry(t)

	byID, ok := reg.GetScenario("cfo-budget-freeze")
	require.True(t, ok)
	assert.Equal(t, 3, byID.Level)

	byLevel, ok := reg.GetScenario("3")
	require.True(t, ok)
	assert.Equal(t, byID, byLevel)

	_, ok = reg.GetScenario("missing")
	assert.False(t, ok)
	_, ok = reg.GetScenario("42")
	assert.False(t, ok)
}

func TestGetCase(t *testing.T) {
	reg := loadRegistry(t)

	c, ok := reg.GetCase("checkout-timeouts")
	require.True(t, ok)
	assert.Equal(t, "Database connection pool exhausted under load", c.RootCause)

	c2, ok := reg.GetCase("1")
	require.True(t, ok)
	assert.Equal(t, c.ID, c2.ID)

	_, ok = reg.GetCase("nope")
	assert.False(t, ok)
}

func TestAgentID_FallsBackToLevelOne(t *testing.T) {
	reg := loadRegistry(t)

	assert.Equal(t, reg.AgentID(1), reg.AgentID(99))
	assert.Equal(t, reg.AgentID(1), reg.AgentID(0))
	assert.Equal(t, reg.AgentID(1), reg.AgentID(-3))
	assert.NotEqual(t, reg.AgentID(1), reg.AgentID(2))
}

func TestListScenarios_ReturnsCopy(t *testing.T) {
	reg := loadRegistry(t)

	list := reg.ListScenarios()
	list[0].Company = "mutated"

	again := reg.ListScenarios()
	assert.NotEqual(t, "mutated", again[0].Company)
}

func TestParse_Validation(t *testing.T) {
	validCases := []byte(`
cases:
  - id: c1
    level: 1
    difficulty: beginner
    root_cause: something broke
`)

	tests := []struct {
		name      string
		scenarios string
		cases     []byte
		wantErr   string
	}{
		{
			name: "duplicate level",
			scenarios: `
scenarios:
  - {id: a, level: 1, difficulty: beginner, agent_id: x}
  - {id: b, level: 1, difficulty: beginner, agent_id: y}
`,
			cases:   validCases,
			wantErr: "duplicate level",
		},
		{
			name: "bad difficulty",
			scenarios: `
scenarios:
  - {id: a, level: 1, difficulty: expert, agent_id: x}
`,
			cases:   validCases,
			wantErr: "invalid difficulty",
		},
		{
			name: "missing agent id",
			scenarios: `
scenarios:
  - {id: a, level: 1, difficulty: beginner}
`,
			cases:   validCases,
			wantErr: "missing agent_id",
		},
		{
			name: "level out of range",
			scenarios: `
scenarios:
  - {id: a, level: 6, difficulty: beginner, agent_id: x}
`,
			cases:   validCases,
			wantErr: "out of range",
		},
		{
			name: "no level one",
			scenarios: `
scenarios:
  - {id: a, level: 2, difficulty: beginner, agent_id: x}
`,
			cases:   validCases,
			wantErr: "default agent",
		},
		{
			name: "case without root cause",
			scenarios: `
scenarios:
  - {id: a, level: 1, difficulty: beginner, agent_id: x}
`,
			cases:   []byte("cases:\n  - {id: c1, level: 1, difficulty: beginner}\n"),
			wantErr: "missing root_cause",
		},
		{
			name:      "malformed yaml",
			scenarios: "scenarios: [",
			cases:     validCases,
			wantErr:   "parse scenarios",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.scenarios), tt.cases)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefault_LoadsOnce(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
}
