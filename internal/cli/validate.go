package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/solaria-labs/herald/internal/harness"
	"github.com/solaria-labs/herald/internal/schema"
)

// FileValidation holds validation results for one scenario file.
type FileValidation struct {
	Path   string                   `json:"path"`
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results across all checked files.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml|dir>",
		Short: "Validate scenario files against the schema",
		Long: `Validate scenario YAML files without running them.

Checks shape against the embedded CUE schema (unknown fields, wrong enums,
bad types) plus the semantic rules the runtime tolerates silently, like an
unparsable privacy status in published configuration. A directory argument
validates every .yaml file in it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

// loadValidateSchema compiles the embedded CUE schema once per process.
var loadValidateSchema = sync.OnceValues(schema.Load)

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	paths, err := collectScenarioPaths(path)
	if err != nil {
		_ = formatter.Error("E101", err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot read scenarios", err)
	}

	result := ValidationResult{Valid: true, Files: []FileValidation{}}
	for _, p := range paths {
		formatter.VerboseLog("Validating %s", p)
		errs := validateScenarioFile(p)
		fv := FileValidation{Path: p, Valid: len(errs) == 0, Errors: errs}
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	return outputValidationResult(formatter, result)
}

// collectScenarioPaths expands a file or directory argument into the list
// of scenario files to check, sorted for stable output.
func collectScenarioPaths(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .yaml files in %s", path)
	}
	sort.Strings(paths)
	return paths, nil
}

// validateScenarioFile runs the schema pass over one file, then the strict
// loader for what CUE cannot see (duplicate keys, YAML tab soup).
func validateScenarioFile(path string) []schema.ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []schema.ValidationError{{
			Message: err.Error(),
			Code:    schema.ErrEncode,
		}}
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return []schema.ValidationError{{
			Message: fmt.Sprintf("not valid YAML: %v", err),
			Code:    schema.ErrEncode,
		}}
	}

	sch, err := loadValidateSchema()
	if err != nil {
		return []schema.ValidationError{{
			Message: fmt.Sprintf("schema load: %v", err),
			Code:    schema.ErrEncode,
		}}
	}
	if errs := sch.ValidateScenario(doc); len(errs) > 0 {
		return errs
	}

	// The schema passed; the strict loader catches anything left, like
	// decode-level surprises the generic map form hides.
	if _, err := harness.LoadScenario(path); err != nil {
		return []schema.ValidationError{{
			Message: err.Error(),
			Code:    schema.ErrSchemaShape,
		}}
	}

	return nil
}

func outputValidationResult(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			response.Status = "error"
			response.Error = &CLIError{
				Code:    firstErrorCode(result),
				Message: "validation failed",
			}
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(formatter.Writer, "✓ %s\n", fv.Path)
				continue
			}
			fmt.Fprintf(formatter.Writer, "✗ %s\n", fv.Path)
			for _, e := range fv.Errors {
				fmt.Fprintf(formatter.Writer, "  %s\n", e.Error())
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %s", strings.Join(invalidPaths(result), ", ")))
	}
	return nil
}

func firstErrorCode(result ValidationResult) string {
	for _, fv := range result.Files {
		if len(fv.Errors) > 0 {
			return fv.Errors[0].Code
		}
	}
	return schema.ErrSchemaShape
}

func invalidPaths(result ValidationResult) []string {
	var paths []string
	for _, fv := range result.Files {
		if !fv.Valid {
			paths = append(paths, fv.Path)
		}
	}
	return paths
}
