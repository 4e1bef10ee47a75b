// Package submission reads practice sessions saved as JSON or YAML files.
package submission

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/praxy/internal/scoring"
)

// MaxWhys is the number of prompts in a 5 Whys chain
const MaxWhys = 5

// Document is one saved practice session. Exactly one of Call and RCA is
// meaningful, selected by Kind.
type Document struct {
	Path string         `yaml:"-"`
	Kind scoring.Domain `yaml:"kind"`
	User string         `yaml:"user,omitempty"`

	Call scoring.CallInput `yaml:",inline"`
	RCA  scoring.RCAInput  `yaml:",inline"`
}

// Subject is the scenario or case the document refers to
func (d *Document) Subject() string {
	if d.Kind == scoring.DomainRCA {
		return d.RCA.CaseID
	}
	return d.Call.ScenarioID
}

// ValidationError lists every problem found in a document
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	prefix := "invalid submission"
	if e.Path != "" {
		prefix += " " + e.Path
	}
	return prefix + ": " + strings.Join(e.Problems, "; ")
}

// Parse decodes a document. JSON input is accepted as YAML. When kind is
// omitted it is inferred from the fields present.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing submission: %w", err)
	}
	if doc.Kind == "" {
		doc.Kind = inferKind(&doc)
	}
	return &doc, nil
}

// ParseFile reads and decodes the document at path
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading submission: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.Path = path
	return doc, nil
}

func inferKind(doc *Document) scoring.Domain {
	switch {
	case doc.RCA.SubmittedRootCause != "" || doc.RCA.CaseID != "" || len(doc.RCA.FiveWhys) > 0:
		return scoring.DomainRCA
	case doc.Call.ScenarioID != "" || len(doc.Call.Transcript) > 0 || doc.Call.Outcome != "":
		return scoring.DomainCall
	}
	return ""
}

// Validate checks a document before it is scored. Scorers accept anything;
// this is where malformed sessions are rejected.
func Validate(doc *Document) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch doc.Kind {
	case scoring.DomainCall:
		call := doc.Call
		if strings.TrimSpace(call.ScenarioID) == "" {
			add("scenario_id is required")
		}
		if !call.Outcome.Valid() {
			add("outcome must be success, partial or failure, got %q", call.Outcome)
		}
		if call.DurationSeconds < 0 {
			add("duration_seconds must not be negative")
		}
		for i, turn := range call.Transcript {
			if strings.TrimSpace(turn.Role) == "" {
				add("transcript[%d]: role is required", i)
			}
		}
	case scoring.DomainRCA:
		rca := doc.RCA
		if strings.TrimSpace(rca.SubmittedRootCause) == "" {
			add("submitted_root_cause is required")
		}
		if len(rca.FiveWhys) > MaxWhys {
			add("five_whys has %d entries, at most %d allowed", len(rca.FiveWhys), MaxWhys)
		}
		if rca.CaseID == "" && strings.TrimSpace(rca.CorrectRootCause) == "" {
			add("either case_id or correct_root_cause is required")
		}
	case "":
		add("kind is required (call or rca)")
	default:
		add("unknown kind %q", doc.Kind)
	}

	if len(problems) > 0 {
		return &ValidationError{Path: doc.Path, Problems: problems}
	}
	return nil
}

// IsValidationError reports whether err came from Validate
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
