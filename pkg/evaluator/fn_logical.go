package evaluator

import (
	"github.com/gridformula/gridformula/pkg/types"
)

// fnIf returns the second argument when the condition is truthy, otherwise
// the third. The false branch defaults to the empty string when omitted.
func fnIf(s *evalState, args []types.Value) (types.Value, error) {
	if args[0].ToBool() {
		return args[1], nil
	}
	if len(args) == 3 {
		return args[2], nil
	}
	return types.Text(""), nil
}

func fnAnd(s *evalState, args []types.Value) (types.Value, error) {
	for _, arg := range args {
		if !arg.ToBool() {
			return types.Boolean(false), nil
		}
	}
	return types.Boolean(true), nil
}

func fnOr(s *evalState, args []types.Value) (types.Value, error) {
	for _, arg := range args {
		if arg.ToBool() {
			return types.Boolean(true), nil
		}
	}
	return types.Boolean(false), nil
}

func fnNot(s *evalState, args []types.Value) (types.Value, error) {
	return types.Boolean(!args[0].ToBool()), nil
}

// fnCount counts the arguments that carry a value: nulls and empty strings
// do not count, array arguments count their non-empty elements.
func fnCount(s *evalState, args []types.Value) (types.Value, error) {
	count := 0
	var tally func(v types.Value)
	tally = func(v types.Value) {
		switch v.Kind {
		case types.KindNull:
		case types.KindText:
			if v.Str != "" {
				count++
			}
		case types.KindArray:
			for _, item := range v.Items {
				tally(item)
			}
		default:
			count++
		}
	}
	for _, arg := range args {
		tally(arg)
	}
	return types.Number(float64(count)), nil
}
