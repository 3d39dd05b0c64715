// Package types defines the core type system of the formula engine.
//
// This package contains type definitions for:
//   - Expression: parsed formulas
//   - ASTNode: abstract syntax tree nodes
//   - Value: runtime values with type information
//   - ColumnMetadata and EvaluationContext: evaluation inputs
//   - EvalResult: tagged evaluation outcomes
//   - Error types: structured errors with codes
package types

// Expression represents a parsed formula.
//
// An Expression can be evaluated any number of times against different
// contexts. It is immutable after parsing and safe for concurrent use by
// multiple goroutines.
type Expression struct {
	ast          *ASTNode
	source       string
	dependencies []string
}

// NewExpression creates a new Expression from an AST.
func NewExpression(ast *ASTNode, source string, dependencies []string) *Expression {
	return &Expression{
		ast:          ast,
		source:       source,
		dependencies: dependencies,
	}
}

// AST returns the abstract syntax tree of the expression.
func (e *Expression) AST() *ASTNode {
	return e.ast
}

// Source returns the original formula text.
func (e *Expression) Source() string {
	return e.source
}

// Dependencies returns the column names the formula reads from, deduplicated
// and in source order. The returned slice must not be modified.
func (e *Expression) Dependencies() []string {
	return e.dependencies
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	return e.source
}
