package evaluator

import (
	"fmt"
	"strings"

	"github.com/gridformula/gridformula/pkg/types"
)

// evalState carries the per-evaluation state of one tree walk: the owning
// evaluator, the read-only context and the recursion depth. A fresh state is
// created for every evaluation, which keeps the Evaluator itself reentrant.
type evalState struct {
	e     *Evaluator
	ctx   *types.EvaluationContext
	depth int
}

// evalErr creates an evaluation error. The message is what callers see in
// the error variant of the result.
func evalErr(code types.ErrorCode, format string, args ...interface{}) error {
	return &types.Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: -1,
	}
}

// evalNode evaluates one AST node.
func (s *evalState) evalNode(n *types.ASTNode) (types.Value, error) {
	if n == nil {
		return types.NullValue, nil
	}

	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.e.opts.MaxDepth {
		return types.NullValue, evalErr(types.ErrEvalTooDeep, "Formula is nested too deeply")
	}

	switch n.Type {
	case types.NodeNumber:
		return types.Number(n.NumValue), nil
	case types.NodeString:
		return types.Text(n.StrValue), nil
	case types.NodeField:
		return s.evalField(n)
	case types.NodeUnary:
		return s.evalUnary(n)
	case types.NodeBinary:
		return s.evalBinary(n)
	case types.NodeCall:
		return s.evalCall(n)
	default:
		return types.NullValue, evalErr(types.ErrInvalidArgument, "Unknown node type: %s", n.Type)
	}
}

// evalField resolves a field reference: the display name selects the column,
// the column's ID reads the value from the current row. A column that exists
// but has no value in the row yields null.
func (s *evalState) evalField(n *types.ASTNode) (types.Value, error) {
	col, ok := s.ctx.ColumnByName(n.Name)
	if !ok {
		return types.NullValue, evalErr(types.ErrUnknownField, "Field not found: %s", n.Name)
	}

	if s.ctx.Row == nil {
		return types.NullValue, nil
	}
	value, ok := s.ctx.Row[col.ID]
	if !ok {
		return types.NullValue, nil
	}
	return value, nil
}

// evalUnary evaluates prefix - and !/NOT.
func (s *evalState) evalUnary(n *types.ASTNode) (types.Value, error) {
	operand, err := s.evalNode(n.Operand)
	if err != nil {
		return types.NullValue, err
	}

	switch n.Op {
	case "-":
		return types.Number(-operand.ToNumber()), nil
	case "!", "NOT":
		return types.Boolean(!operand.ToBool()), nil
	default:
		return types.NullValue, evalErr(types.ErrInvalidArgument, "Unknown unary operator: %s", n.Op)
	}
}

// evalBinary evaluates a binary operation. AND and OR short-circuit: the
// right operand is not evaluated when the left already decides the result.
func (s *evalState) evalBinary(n *types.ASTNode) (types.Value, error) {
	left, err := s.evalNode(n.Left)
	if err != nil {
		return types.NullValue, err
	}

	switch n.Op {
	case "OR":
		if left.ToBool() {
			return types.Boolean(true), nil
		}
		right, err := s.evalNode(n.Right)
		if err != nil {
			return types.NullValue, err
		}
		return types.Boolean(right.ToBool()), nil
	case "AND":
		if !left.ToBool() {
			return types.Boolean(false), nil
		}
		right, err := s.evalNode(n.Right)
		if err != nil {
			return types.NullValue, err
		}
		return types.Boolean(right.ToBool()), nil
	}

	right, err := s.evalNode(n.Right)
	if err != nil {
		return types.NullValue, err
	}

	switch n.Op {
	case "+":
		return types.Number(left.ToNumber() + right.ToNumber()), nil
	case "-":
		return types.Number(left.ToNumber() - right.ToNumber()), nil
	case "*":
		return types.Number(left.ToNumber() * right.ToNumber()), nil
	case "/":
		divisor := right.ToNumber()
		if divisor == 0 {
			return types.NullValue, evalErr(types.ErrDivisionByZero, "Division by zero")
		}
		return types.Number(left.ToNumber() / divisor), nil
	case "&":
		return types.Text(left.ToText() + right.ToText()), nil
	case "==":
		return types.Boolean(valuesEqual(left, right)), nil
	case "!=":
		return types.Boolean(!valuesEqual(left, right)), nil
	case "<":
		return types.Boolean(compareValues(left, right) < 0), nil
	case "<=":
		return types.Boolean(compareValues(left, right) <= 0), nil
	case ">":
		return types.Boolean(compareValues(left, right) > 0), nil
	case ">=":
		return types.Boolean(compareValues(left, right) >= 0), nil
	default:
		return types.NullValue, evalErr(types.ErrInvalidArgument, "Unknown operator: %s", n.Op)
	}
}

// evalCall dispatches a function call to the built-in library. Arguments
// are evaluated eagerly, left to right.
func (s *evalState) evalCall(n *types.ASTNode) (types.Value, error) {
	fn, ok := GetFunction(n.Name)
	if !ok {
		return types.NullValue, evalErr(types.ErrUnknownFunction, "Unknown function: %s", n.Name)
	}

	if len(n.Args) < fn.MinArgs {
		return types.NullValue, evalErr(types.ErrArgumentCount, "%s expects at least %d argument(s), got %d", fn.Name, fn.MinArgs, len(n.Args))
	}
	if fn.MaxArgs >= 0 && len(n.Args) > fn.MaxArgs {
		return types.NullValue, evalErr(types.ErrArgumentCount, "%s expects at most %d argument(s), got %d", fn.Name, fn.MaxArgs, len(n.Args))
	}

	args := make([]types.Value, len(n.Args))
	for i, argNode := range n.Args {
		arg, err := s.evalNode(argNode)
		if err != nil {
			return types.NullValue, err
		}
		args[i] = arg
	}

	return fn.Impl(s, args)
}

// valuesEqual implements the == operator: numeric comparison when either
// side is a number or boolean, date comparison for two dates, otherwise
// text comparison.
func valuesEqual(a, b types.Value) bool {
	if a.Kind == types.KindNumber || b.Kind == types.KindNumber ||
		a.Kind == types.KindBool || b.Kind == types.KindBool {
		return a.ToNumber() == b.ToNumber()
	}
	if a.Kind == types.KindDate && b.Kind == types.KindDate {
		return a.Time.Equal(b.Time)
	}
	return a.ToText() == b.ToText()
}

// compareValues implements the ordering operators: lexicographic when both
// sides are text, numeric otherwise.
func compareValues(a, b types.Value) int {
	if a.Kind == types.KindText && b.Kind == types.KindText {
		return strings.Compare(a.Str, b.Str)
	}
	an, bn := a.ToNumber(), b.ToNumber()
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	default:
		return 0
	}
}
