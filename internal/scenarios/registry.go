// Package scenarios holds the fixed catalog of cold-call scenarios and
// root-cause cases. The catalog is embedded in the binary and read-only.
package scenarios

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// ErrNotFound is returned when a scenario or case id is unknown
var ErrNotFound = errors.New("not found")

// Difficulty tiers
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// defaultAgentLevel is the level whose agent answers for unmapped levels
const defaultAgentLevel = 1

// ScenarioMeta describes a cold-call practice scenario
type ScenarioMeta struct {
	ID           string   `yaml:"id" json:"id"`
	Level        int      `yaml:"level" json:"level"`
	Company      string   `yaml:"company" json:"company"`
	ProspectName string   `yaml:"prospect_name" json:"prospect_name"`
	ProspectRole string   `yaml:"prospect_role" json:"prospect_role"`
	Objective    string   `yaml:"objective" json:"objective"`
	Difficulty   string   `yaml:"difficulty" json:"difficulty"`
	Tips         []string `yaml:"tips" json:"tips"`
	AgentID      string   `yaml:"agent_id" json:"agent_id"` // voice-agent identifier, opaque to us
}

// CaseMeta describes a root-cause analysis investigation and its reference answer
type CaseMeta struct {
	ID         string   `yaml:"id" json:"id"`
	Level      int      `yaml:"level" json:"level"`
	Title      string   `yaml:"title" json:"title"`
	Company    string   `yaml:"company" json:"company"`
	Difficulty string   `yaml:"difficulty" json:"difficulty"`
	Brief      string   `yaml:"brief" json:"brief"`
	RootCause  string   `yaml:"root_cause" json:"-"`
	Reasoning  string   `yaml:"reasoning" json:"-"`
	Tips       []string `yaml:"tips" json:"tips"`
}

// Registry is an immutable lookup over scenarios and cases
type Registry struct {
	scenarios []ScenarioMeta
	cases     []CaseMeta
	agents    map[int]string
}

type scenarioFile struct {
	Scenarios []ScenarioMeta `yaml:"scenarios"`
}

type caseFile struct {
	Cases []CaseMeta `yaml:"cases"`
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the registry built from the embedded catalog.
// It is loaded once per process.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Load()
	})
	return defaultReg, defaultErr
}

// Load parses and validates the embedded catalog
func Load() (*Registry, error) {
	scenarioData, err := dataFS.ReadFile("data/scenarios.yaml")
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	caseData, err := dataFS.ReadFile("data/cases.yaml")
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	return Parse(scenarioData, caseData)
}

// Parse builds a registry from scenario and case YAML documents
func Parse(scenarioData, caseData []byte) (*Registry, error) {
	var sf scenarioFile
	if err := yaml.Unmarshal(scenarioData, &sf); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	var cf caseFile
	if err := yaml.Unmarshal(caseData, &cf); err != nil {
		return nil, fmt.Errorf("parse cases: %w", err)
	}

	if err := validateScenarios(sf.Scenarios); err != nil {
		return nil, err
	}
	if err := validateCases(cf.Cases); err != nil {
		return nil, err
	}

	sort.Slice(sf.Scenarios, func(i, j int) bool { return sf.Scenarios[i].Level < sf.Scenarios[j].Level })
	sort.Slice(cf.Cases, func(i, j int) bool { return cf.Cases[i].Level < cf.Cases[j].Level })

	agents := make(map[int]string, len(sf.Scenarios))
	for _, s := range sf.Scenarios {
		agents[s.Level] = s.AgentID
	}
	if _, ok := agents[defaultAgentLevel]; !ok {
		return nil, fmt.Errorf("scenarios: no level %d scenario to use as the default agent", defaultAgentLevel)
	}

	return &Registry{scenarios: sf.Scenarios, cases: cf.Cases, agents: agents}, nil
}

func validateScenarios(list []ScenarioMeta) error {
	ids := make(map[string]bool)
	levels := make(map[int]bool)
	for _, s := range list {
		if s.ID == "" {
			return fmt.Errorf("scenario at level %d: missing id", s.Level)
		}
		if ids[s.ID] {
			return fmt.Errorf("scenario %s: duplicate id", s.ID)
		}
		if levels[s.Level] {
			return fmt.Errorf("scenario %s: duplicate level %d", s.ID, s.Level)
		}
		if s.Level < 1 || s.Level > 5 {
			return fmt.Errorf("scenario %s: level %d out of range 1-5", s.ID, s.Level)
		}
		if !validDifficulty(s.Difficulty) {
			return fmt.Errorf("scenario %s: invalid difficulty %q", s.ID, s.Difficulty)
		}
		if s.AgentID == "" {
			return fmt.Errorf("scenario %s: missing agent_id", s.ID)
		}
		ids[s.ID] = true
		levels[s.Level] = true
	}
	return nil
}

func validateCases(list []CaseMeta) error {
	ids := make(map[string]bool)
	for _, c := range list {
		if c.ID == "" {
			return fmt.Errorf("case at level %d: missing id", c.Level)
		}
		if ids[c.ID] {
			return fmt.Errorf("case %s: duplicate id", c.ID)
		}
		if !validDifficulty(c.Difficulty) {
			return fmt.Errorf("case %s: invalid difficulty %q", c.ID, c.Difficulty)
		}
		if c.RootCause == "" {
			return fmt.Errorf("case %s: missing root_cause", c.ID)
		}
		ids[c.ID] = true
	}
	return nil
}

func validDifficulty(d string) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ListScenarios returns all scenarios in level order
func (r *Registry) ListScenarios() []ScenarioMeta {
	out := make([]ScenarioMeta, len(r.scenarios))
	copy(out, r.scenarios)
	return out
}

// GetScenario looks a scenario up by id or by level number
func (r *Registry) GetScenario(id string) (ScenarioMeta, bool) {
	level, levelErr := strconv.Atoi(id)
	for _, s := range r.scenarios {
		if s.ID == id || (levelErr == nil && s.Level == level) {
			return s, true
		}
	}
	return ScenarioMeta{}, false
}

// ListCases returns all root-cause cases in level order
func (r *Registry) ListCases() []CaseMeta {
	out := make([]CaseMeta, len(r.cases))
	copy(out, r.cases)
	return out
}

// GetCase looks a case up by id or by level number
func (r *Registry) GetCase(id string) (CaseMeta, bool) {
	level, levelErr := strconv.Atoi(id)
	for _, c := range r.cases {
		if c.ID == id || (levelErr == nil && c.Level == level) {
			return c, true
		}
	}
	return CaseMeta{}, false
}

// AgentID returns the voice-agent identifier for a level. Levels without a
// mapping get the level-1 agent so callers always have something usable.
func (r *Registry) AgentID(level int) string {
	if id, ok := r.agents[level]; ok {
		return id
	}
	return r.agents[defaultAgentLevel]
}
