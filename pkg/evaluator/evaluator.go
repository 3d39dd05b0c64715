// Package evaluator implements the formula evaluation engine.
//
// The evaluator receives a parsed abstract syntax tree from the parser and
// walks it against an evaluation context (current row, column metadata,
// optionally all rows). It never returns a Go error to the caller: every
// internal failure (unknown field, unknown function, division by zero,
// malformed date, out-of-range argument) is converted to the error variant
// of types.EvalResult, so a formula error in one row never aborts a batch
// loop in calling code.
//
// # Example
//
//	eval := evaluator.New()
//	result := eval.EvaluateFormula(`SUM(1, 2, 3)`, ctx)
//	if result.OK() {
//	    fmt.Println(result.Value.ToText()) // "6"
//	}
//
// # Concurrency
//
// An Evaluator holds no mutable state of its own; one instance may be used
// concurrently from any number of goroutines.
package evaluator

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/gridformula/gridformula/pkg/cache"
	"github.com/gridformula/gridformula/pkg/parser"
	"github.com/gridformula/gridformula/pkg/types"
)

// Evaluator evaluates formulas against evaluation contexts.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
	cache  *cache.Cache // non-nil when caching is enabled
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits recursion depth during evaluation.
	MaxDepth int
	// Cache is an optional parsed-formula cache used by EvaluateFormula.
	Cache *cache.Cache
	// Debug enables debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// Now supplies the current time for TODAY/NOW; overridable in tests.
	Now func() time.Time
	// Rand supplies random numbers for RAND/RANDBETWEEN; overridable in tests.
	Rand func() float64
}

// New creates a new Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth: 1000,
		Now:      time.Now,
		Rand:     rand.Float64,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Rand == nil {
		options.Rand = rand.Float64
	}

	return &Evaluator{
		opts:   options,
		logger: options.Logger,
		cache:  options.Cache,
	}
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithMaxDepth sets the maximum recursion depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithCache attaches a parsed-formula cache used by EvaluateFormula.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithClock fixes the time source for TODAY and NOW.
func WithClock(now func() time.Time) EvalOption {
	return func(opts *EvalOptions) {
		opts.Now = now
	}
}

// WithRand fixes the random source for RAND and RANDBETWEEN.
func WithRand(r func() float64) EvalOption {
	return func(opts *EvalOptions) {
		opts.Rand = r
	}
}

// Evaluate evaluates a parsed expression against a context.
func (e *Evaluator) Evaluate(expr *types.Expression, ctx *types.EvaluationContext) types.EvalResult {
	if expr == nil || expr.AST() == nil {
		return types.ErrorResult("Invalid expression")
	}
	return e.evaluateAST(expr.AST(), ctx)
}

// EvaluateFormula parses and evaluates a formula in one call. Parse failures
// are reported as an error result like any evaluation failure.
func (e *Evaluator) EvaluateFormula(formula string, ctx *types.EvaluationContext) types.EvalResult {
	var expr *types.Expression
	var err error

	if e.cache != nil {
		expr, err = e.cache.GetOrParse(formula, func() (*types.Expression, error) {
			return parser.Parse(formula)
		})
	} else {
		expr, err = parser.Parse(formula)
	}
	if err != nil {
		return types.ErrorResult(errMessage(err))
	}

	return e.evaluateAST(expr.AST(), ctx)
}

// evaluateAST walks the tree and converts any internal failure into an
// error-tagged result.
func (e *Evaluator) evaluateAST(ast *types.ASTNode, ctx *types.EvaluationContext) types.EvalResult {
	if ctx == nil {
		ctx = &types.EvaluationContext{}
	}

	s := &evalState{e: e, ctx: ctx}
	value, err := s.evalNode(ast)
	if err != nil {
		if e.opts.Debug {
			e.logger.Debug("formula evaluation failed", "error", err)
		}
		return types.ErrorResult(errMessage(err))
	}

	return types.ResultOf(value)
}

// errMessage extracts the user-facing message from an engine error.
func errMessage(err error) string {
	if engineErr, ok := err.(*types.Error); ok {
		return engineErr.Message
	}
	return err.Error()
}
