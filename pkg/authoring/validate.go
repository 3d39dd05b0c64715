// Package authoring provides the editor-facing services of the formula
// engine: validation, autocomplete and syntax highlighting. Every function
// is pure; nothing is retained between calls.
package authoring

import (
	"fmt"

	"github.com/gridformula/gridformula/pkg/evaluator"
	"github.com/gridformula/gridformula/pkg/parser"
	"github.com/gridformula/gridformula/pkg/types"
)

// ValidationResult is the outcome of validating a formula against a column
// schema. Warnings are advisory and never make the formula invalid.
type ValidationResult struct {
	Valid        bool     `json:"valid"`
	Error        string   `json:"error,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// ValidateOptions configures ValidateFormula.
type ValidateOptions struct {
	// OwnColumn is the display name of the column the formula belongs to.
	// It enables the direct circular-dependency check.
	OwnColumn string
	// SampleContext, when set, is used for a trial evaluation whose
	// failure becomes a warning.
	SampleContext *types.EvaluationContext
}

// ValidateOption customizes validation.
type ValidateOption func(*ValidateOptions)

// WithOwnColumn sets the display name of the column being edited.
func WithOwnColumn(name string) ValidateOption {
	return func(o *ValidateOptions) {
		o.OwnColumn = name
	}
}

// WithSampleContext provides a context for a trial evaluation.
func WithSampleContext(ctx *types.EvaluationContext) ValidateOption {
	return func(o *ValidateOptions) {
		o.SampleContext = ctx
	}
}

const (
	maxAdvisedDependencies = 10
	maxAdvisedCalls        = 5
)

// lookupStyleFunctions names functions that reach across tables. They are
// not part of the built-in library; formulas mentioning them get a warning
// so editors can surface the cost before the evaluation error does.
var lookupStyleFunctions = map[string]bool{
	"LOOKUP":  true,
	"VLOOKUP": true,
	"HLOOKUP": true,
	"ROLLUP":  true,
}

// ValidateFormula checks a formula against the column schema. Syntax errors
// and unresolved field references make the result invalid; everything else
// (too many dependencies, too many calls, lookup-style functions, a failing
// trial evaluation, a direct cycle found without an own-column name) is
// reported but does not block.
//
// The circular-dependency check is one hop deep: for every dependency that
// is itself a formula column, that column's formula is parsed and searched
// for the name of the column being edited. Multi-hop cycles are not
// detected.
func ValidateFormula(formula string, columns []types.ColumnMetadata, opts ...ValidateOption) ValidationResult {
	var options ValidateOptions
	for _, opt := range opts {
		opt(&options)
	}

	expr, err := parser.Parse(formula)
	if err != nil {
		return ValidationResult{Valid: false, Error: errorMessage(err)}
	}

	deps := expr.Dependencies()
	byName := make(map[string]types.ColumnMetadata, len(columns))
	for _, col := range columns {
		byName[col.Name] = col
	}

	for _, dep := range deps {
		if _, ok := byName[dep]; !ok {
			return ValidationResult{
				Valid:        false,
				Error:        fmt.Sprintf("Field %q not found", dep),
				Dependencies: deps,
			}
		}
	}

	if options.OwnColumn != "" {
		if cyclic, other := hasDirectCycle(options.OwnColumn, deps, byName); cyclic {
			return ValidationResult{
				Valid:        false,
				Error:        fmt.Sprintf("Circular dependency: %q and %q reference each other", options.OwnColumn, other),
				Dependencies: deps,
			}
		}
	}

	var warnings []string
	if len(deps) > maxAdvisedDependencies {
		warnings = append(warnings, fmt.Sprintf("Formula depends on %d fields; consider splitting it", len(deps)))
	}
	if calls := parser.CountCalls(expr.AST()); calls > maxAdvisedCalls {
		warnings = append(warnings, fmt.Sprintf("Formula contains %d function calls; consider splitting it", calls))
	}
	for _, name := range parser.CalledFunctions(expr.AST()) {
		if lookupStyleFunctions[name] {
			warnings = append(warnings, fmt.Sprintf("%s reads from linked tables and may be slow", name))
		}
	}

	if options.SampleContext != nil {
		result := evaluator.New().Evaluate(expr, options.SampleContext)
		if !result.OK() {
			warnings = append(warnings, fmt.Sprintf("Sample evaluation failed: %s", result.Error))
		}
	}

	return ValidationResult{
		Valid:        true,
		Warnings:     warnings,
		Dependencies: deps,
	}
}

// hasDirectCycle reports whether any dependency is a formula column whose
// own dependency set contains the edited column's name. Unparseable
// dependency formulas are skipped; they fail their own validation.
func hasDirectCycle(ownName string, deps []string, byName map[string]types.ColumnMetadata) (bool, string) {
	for _, dep := range deps {
		col := byName[dep]
		if col.Type != types.FieldFormula || col.Options.Formula == "" {
			continue
		}
		other, err := parser.Parse(col.Options.Formula)
		if err != nil {
			continue
		}
		for _, back := range other.Dependencies() {
			if back == ownName {
				return true, dep
			}
		}
	}
	return false, ""
}

// errorMessage extracts the human-readable message from an engine error.
func errorMessage(err error) string {
	if e, ok := err.(*types.Error); ok {
		return e.Message
	}
	return err.Error()
}
