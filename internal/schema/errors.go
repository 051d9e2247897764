package schema

import (
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Validation error codes (E200-E219)
const (
	// Shape errors (E200)
	ErrSchemaShape = "E200" // value does not satisfy the schema
	ErrEncode      = "E201" // value could not be encoded for checking

	// Configuration semantics (E202-E209)
	ErrPrivacyValue = "E202" // privacy.status present but unparsable
	ErrDatasetEmpty = "E203" // dataset id present but blank

	// Scenario semantics (E210-E219)
	ErrScenarioEmpty = "E210" // scenario has no steps
	ErrStepChoice    = "E211" // step needs exactly one directive
)

// ValidationError describes one way a value fails the schema.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// LoadError reports a broken embedded schema with source position.
// Seeing one means the binary shipped with a bad schema.cue.
type LoadError struct {
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &LoadError{
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

// collectCUEErrors flattens a CUE validation error into one ValidationError
// per underlying failure, so callers see every problem at once.
func collectCUEErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		out = append(out, ValidationError{
			Field:   strings.Join(e.Path(), "."),
			Message: e.Error(),
			Code:    ErrSchemaShape,
		})
	}
	if len(out) == 0 {
		out = append(out, ValidationError{
			Message: err.Error(),
			Code:    ErrSchemaShape,
		})
	}
	return out
}
