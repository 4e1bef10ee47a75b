// Package cue validates AI scoring output against embedded CUE schemas.
package cue

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// ErrUnknownSchema is returned when no schema is loaded for a domain
var ErrUnknownSchema = errors.New("unknown schema")

// ValidationError describes why a document did not match its schema
type ValidationError struct {
	Schema  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s schema validation failed: %s", e.Schema, e.Message)
}

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas loads all CUE schema files from the embedded filesystem
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}

		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if instErr := inst.Err(); instErr != nil {
			return fmt.Errorf("compile schema %s: %w", entry.Name(), instErr)
		}

		// call.cue -> call
		v.schemas[strings.TrimSuffix(entry.Name(), ".cue")] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return errors.New("no CUE schemas loaded")
	}
	return nil
}

// MustLoad returns a validator with the embedded schemas loaded
func MustLoad() *Validator {
	v := NewValidator()
	if err := v.LoadSchemas(); err != nil {
		panic(err)
	}
	return v
}

// Validate checks a JSON document against the schema for domain.
// The definition is looked up as #<Domain>, e.g. #Call for "call".
func (v *Validator) Validate(domain string, data []byte) error {
	schema, ok := v.schemas[domain]
	if !ok || domain == "" {
		return fmt.Errorf("%w: %q", ErrUnknownSchema, domain)
	}

	def := schema.LookupPath(cue.ParsePath("#" + strings.ToUpper(domain[:1]) + domain[1:]))
	if !def.Exists() {
		return fmt.Errorf("%w: %q has no definition", ErrUnknownSchema, domain)
	}

	expr, err := cuejson.Extract(domain+".json", data)
	if err != nil {
		return &ValidationError{Schema: domain, Message: err.Error()}
	}
	dataValue := v.ctx.BuildExpr(expr)
	if err := dataValue.Err(); err != nil {
		return &ValidationError{Schema: domain, Message: err.Error()}
	}

	unified := def.Unify(dataValue)
	if err := unified.Err(); err != nil {
		return &ValidationError{Schema: domain, Message: err.Error()}
	}

	// Concreteness catches required fields that are missing from data
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Schema: domain, Message: err.Error()}
	}
	return nil
}
