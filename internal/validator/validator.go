package validator

// =============================================================================
// VALIDATOR PHILOSOPHY: CRASH EARLY, CRASH LOUD
// =============================================================================
//
// The CUE validator is the contract guard between the extractors and the
// build that consumes the definitions.
//
// Without validation, a label with a stray character or a base address
// formatted as decimal reaches a generated header and the build fails far
// away from the cause, or worse, compiles with the wrong constant.
//
// WHEN VALIDATION FAILS:
// 1. DON'T relax the schema to make the error go away
// 2. DO trace back: is the hardware description wrong, or the extractor?
// =============================================================================

import (
	"embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed definitions_schema.cue
var schemaFS embed.FS

// Validator validates emitted definitions and layouts against the embedded
// CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// New creates a new Validator with the embedded CUE schema
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schemaBytes, err := schemaFS.ReadFile("definitions_schema.cue")
	if err != nil {
		return nil, fmt.Errorf("loading embedded schema: %w", err)
	}

	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate checks a definitions snapshot against #Definitions.
func (v *Validator) Validate(snapshot interface{}) error {
	if err := v.validate(snapshot, "#Definitions"); err != nil {
		return fmt.Errorf("definitions schema validation failed: %w", err)
	}
	return nil
}

// ValidateLayout checks a flash layout against #Layout.
func (v *Validator) ValidateLayout(layout interface{}) error {
	if err := v.validate(layout, "#Layout"); err != nil {
		return fmt.Errorf("layout schema validation failed: %w", err)
	}
	return nil
}

// ValidateJSON validates JSON bytes directly against #Definitions
func (v *Validator) ValidateJSON(jsonBytes []byte) error {
	unified, err := v.unify(jsonBytes, "#Definitions")
	if err != nil {
		return err
	}
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("definitions schema validation failed: %w", err)
	}
	return nil
}

// ValidationErrors returns every individual schema error for a definitions
// snapshot, or nil if it is valid.
func (v *Validator) ValidationErrors(snapshot interface{}) []string {
	jsonBytes, err := json.Marshal(snapshot)
	if err != nil {
		return []string{fmt.Sprintf("marshal error: %v", err)}
	}
	unified, err := v.unify(jsonBytes, "#Definitions")
	if err != nil {
		return []string{err.Error()}
	}
	err = unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []string
	for _, e := range errors.Errors(err) {
		errs = append(errs, e.Error())
	}
	return errs
}

func (v *Validator) validate(data interface{}, path string) error {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling data to JSON: %w", err)
	}
	unified, err := v.unify(jsonBytes, path)
	if err != nil {
		return err
	}
	return unified.Validate(cue.Concrete(true))
}

func (v *Validator) unify(jsonBytes []byte, path string) (cue.Value, error) {
	dataValue := v.ctx.CompileBytes(jsonBytes)
	if dataValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("compiling data as CUE: %w", dataValue.Err())
	}

	def := v.schema.LookupPath(cue.ParsePath(path))
	if def.Err() != nil {
		return cue.Value{}, fmt.Errorf("looking up %s definition: %w", path, def.Err())
	}

	return def.Unify(dataValue), nil
}
