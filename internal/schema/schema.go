// Package schema validates shared-state payloads and scenario files against
// the embedded CUE schema.
//
// CUE checks shape (types, enums, unknown fields); Go checks the semantics
// CUE cannot express well, like case-insensitive privacy parsing and the
// exactly-one-directive rule for scenario steps. Validators collect every
// error instead of failing fast.
package schema

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/solaria-labs/herald/internal/privacy"
	"github.com/solaria-labs/herald/internal/state"
)

//go:embed schema.cue
var schemaCUE string

// Schema holds the compiled CUE definitions.
// Load once and reuse; compilation is not free.
type Schema struct {
	configuration cue.Value
	identity      cue.Value
	scenario      cue.Value
}

// Load compiles the embedded schema.
// Uses CUE SDK's Go API directly (not CLI subprocess).
func Load() (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	s := &Schema{
		configuration: v.LookupPath(cue.ParsePath("#Configuration")),
		identity:      v.LookupPath(cue.ParsePath("#Identity")),
		scenario:      v.LookupPath(cue.ParsePath("#Scenario")),
	}
	for name, def := range map[string]cue.Value{
		"#Configuration": s.configuration,
		"#Identity":      s.identity,
		"#Scenario":      s.scenario,
	} {
		if !def.Exists() {
			return nil, fmt.Errorf("embedded schema is missing %s", name)
		}
	}

	return s, nil
}

// ValidateConfiguration checks a Configuration shared-state payload.
// Returns all errors found (does not fail-fast); nil means valid.
func (s *Schema) ValidateConfiguration(data map[string]any) []ValidationError {
	errs := s.check(s.configuration, data)

	// Semantic checks on top of shape. Values the transform would silently
	// skip at runtime are surfaced loudly here; validation exists to catch
	// exactly the mistakes the pipeline is built to tolerate.
	if raw, ok := data[state.KeyPrivacyStatus].(string); ok {
		if _, parsed := privacy.Parse(raw); !parsed {
			errs = append(errs, ValidationError{
				Field:   state.KeyPrivacyStatus,
				Message: fmt.Sprintf("unrecognized privacy status %q", raw),
				Code:    ErrPrivacyValue,
			})
		}
	}
	if raw, ok := data[state.KeyDatasetID].(string); ok && strings.TrimSpace(raw) == "" {
		errs = append(errs, ValidationError{
			Field:   state.KeyDatasetID,
			Message: "dataset id must not be blank when present",
			Code:    ErrDatasetEmpty,
		})
	}

	return errs
}

// ValidateIdentity checks an Identity shared-state payload.
func (s *Schema) ValidateIdentity(data map[string]any) []ValidationError {
	return s.check(s.identity, data)
}

// ValidateScenario checks a YAML-decoded scenario document.
// The input is the generic map form, not the typed harness struct, so shape
// errors are caught before any struct decoding runs.
func (s *Schema) ValidateScenario(doc map[string]any) []ValidationError {
	errs := s.check(s.scenario, doc)

	steps, _ := doc["steps"].([]any)
	if len(steps) == 0 {
		errs = append(errs, ValidationError{
			Field:   "steps",
			Message: "scenario needs at least one step",
			Code:    ErrScenarioEmpty,
		})
	}

	for i, raw := range steps {
		step, ok := raw.(map[string]any)
		if !ok {
			continue // shape error already reported by CUE
		}

		_, hasPublish := step["publish"]
		_, hasEnqueue := step["enqueue"]
		if hasPublish == hasEnqueue {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("steps[%d]", i),
				Message: "step must carry exactly one of publish or enqueue",
				Code:    ErrStepChoice,
			})
			continue
		}

		// Published state gets the same scrutiny the host payloads get.
		if pub, ok := step["publish"].(map[string]any); ok {
			data, _ := pub["data"].(map[string]any)
			if data == nil {
				continue
			}
			var nested []ValidationError
			switch pub["owner"] {
			case state.OwnerConfiguration:
				nested = s.ValidateConfiguration(data)
			case state.OwnerIdentity:
				nested = s.ValidateIdentity(data)
			}
			for _, ne := range nested {
				ne.Field = prefixField(fmt.Sprintf("steps[%d].publish.data", i), ne.Field)
				errs = append(errs, ne)
			}
		}
	}

	return errs
}

// check unifies a Go value with a schema definition and collects every
// validation failure.
func (s *Schema) check(def cue.Value, data any) []ValidationError {
	if data == nil {
		data = map[string]any{}
	}

	v := def.Context().Encode(data)
	if err := v.Err(); err != nil {
		return []ValidationError{{
			Message: err.Error(),
			Code:    ErrEncode,
		}}
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return collectCUEErrors(err)
	}

	return nil
}

func prefixField(prefix, field string) string {
	if field == "" {
		return prefix
	}
	return prefix + "." + field
}
