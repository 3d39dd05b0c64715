// Package gridformula implements the formula subsystem of a database-backed
// spreadsheet: a tokenizer and parser for the Excel-like formula language,
// a dependency extractor, an evaluator with a built-in function library,
// and the authoring services a formula editor needs (validation,
// autocomplete, syntax highlighting).
//
// # Quick Start
//
//	// Parse once, evaluate many times
//	expr, err := gridformula.Parse("[Price] * [Quantity]")
//	result := gridformula.Evaluate("[Price] * [Quantity]", ctx)
//
//	// Evaluation never returns a Go error; failures are tagged results
//	if result.Type == types.ResultError {
//	    fmt.Println(result.Error)
//	}
//
// # Concurrency
//
// Every operation is a pure function of its arguments. Parsed expressions
// and evaluators are immutable and safe for concurrent use.
//
// For detailed documentation, see:
//   - Parser: github.com/gridformula/gridformula/pkg/parser
//   - Evaluator: github.com/gridformula/gridformula/pkg/evaluator
//   - Authoring: github.com/gridformula/gridformula/pkg/authoring
//   - Types: github.com/gridformula/gridformula/pkg/types
package gridformula

import (
	"fmt"

	"github.com/gridformula/gridformula/pkg/authoring"
	"github.com/gridformula/gridformula/pkg/evaluator"
	"github.com/gridformula/gridformula/pkg/parser"
	"github.com/gridformula/gridformula/pkg/types"
)

// Version returns the current version of the engine.
func Version() string {
	return "v0.1.0-dev"
}

// Parse parses a formula for repeated evaluation. The returned expression
// carries the AST and the extracted dependency list and is safe for
// concurrent use.
func Parse(formula string, opts ...parser.ParseOption) (*types.Expression, error) {
	return parser.Parse(formula, opts...)
}

// MustParse is like Parse but panics on error. It simplifies variable
// initialization with known-good formulas.
func MustParse(formula string, opts ...parser.ParseOption) *types.Expression {
	expr, err := parser.Parse(formula, opts...)
	if err != nil {
		panic(fmt.Sprintf("gridformula: parse %q: %v", formula, err))
	}
	return expr
}

// Evaluate parses and evaluates a formula against a context. It never
// returns a Go error: parse and evaluation failures alike come back as the
// error variant of the result, so one bad row never aborts a batch loop.
func Evaluate(formula string, ctx *types.EvaluationContext, opts ...evaluator.EvalOption) types.EvalResult {
	return evaluator.New(opts...).EvaluateFormula(formula, ctx)
}

// GetDependencies returns the columns a formula reads from, in source
// order, deduplicated. An unparseable formula has no dependencies.
func GetDependencies(formula string) []types.FormulaDependency {
	expr, err := parser.Parse(formula)
	if err != nil {
		return nil
	}
	names := expr.Dependencies()
	deps := make([]types.FormulaDependency, len(names))
	for i, name := range names {
		deps[i] = types.FormulaDependency{
			FieldName: name,
			Kind:      types.DependencyDirect,
		}
	}
	return deps
}

// ValidateFormula checks a formula against the column schema of its table.
func ValidateFormula(formula string, columns []types.ColumnMetadata, opts ...authoring.ValidateOption) authoring.ValidationResult {
	return authoring.ValidateFormula(formula, columns, opts...)
}

// GetAutoComplete suggests completions for the formula text at the cursor.
func GetAutoComplete(formula string, cursor int, columns []types.ColumnMetadata) authoring.AutoCompleteResult {
	return authoring.AutoComplete(formula, cursor, columns)
}

// GetSyntaxHighlighting classifies a formula into highlight spans, falling
// back to a best-effort scan for formulas still being typed.
func GetSyntaxHighlighting(formula string) []authoring.SyntaxToken {
	return authoring.SyntaxHighlighting(formula)
}
