// Package parser implements the formula tokenizer and parser.
//
// The parser is a hand-written recursive descent parser that climbs the
// fixed precedence ladder of the formula language, from logical OR at the
// bottom to primaries at the top. It performs no semantic validation beyond
// syntactic well-formedness: unknown fields and functions are evaluation
// concerns.
//
// # Example
//
//	expr, err := parser.Parse(`IF([Qty] > 0, [Qty] * [Unit Price], 0)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	deps := expr.Dependencies() // ["Qty", "Unit Price"]
package parser

import (
	"github.com/gridformula/gridformula/pkg/types"
)

// Parse parses a formula and returns the compiled Expression, including its
// extracted dependency set.
//
// Lexing and syntax failures are returned as a single *types.Error with
// position information; a partial AST is never returned.
func Parse(formula string, opts ...ParseOption) (*types.Expression, error) {
	p := NewParser(formula, opts...)
	return p.Parse()
}

// ParseOption configures parsing behavior.
type ParseOption func(*ParseOptions)

// ParseOptions holds parser configuration.
type ParseOptions struct {
	// MaxDepth limits recursion depth, converting pathologically deep
	// input into a syntax error instead of a stack overflow.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) ParseOption {
	return func(opts *ParseOptions) {
		opts.MaxDepth = depth
	}
}
