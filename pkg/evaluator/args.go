package evaluator

import (
	"time"

	"github.com/gridformula/gridformula/pkg/types"
)

// numericValues flattens the arguments into a list of numbers. Array values
// (multi-value cells, SPLIT output) contribute one number per element; null
// arguments are skipped.
func numericValues(args []types.Value) []float64 {
	var nums []float64
	for _, arg := range args {
		switch arg.Kind {
		case types.KindNull:
			// skip
		case types.KindArray:
			for _, item := range arg.Items {
				if item.Kind != types.KindNull {
					nums = append(nums, item.ToNumber())
				}
			}
		default:
			nums = append(nums, arg.ToNumber())
		}
	}
	return nums
}

// intArg coerces an argument to an integer, truncating toward zero.
func intArg(v types.Value) int {
	return int(v.ToNumber())
}

// dateArg coerces an argument to a point in time. Dates pass through, text
// is parsed via the accepted layouts, numbers are Unix millisecond
// timestamps. Anything else is a coercion failure.
func dateArg(name string, v types.Value) (time.Time, error) {
	switch v.Kind {
	case types.KindDate:
		return v.Time, nil
	case types.KindText:
		if t, ok := types.ParseDate(v.Str); ok {
			return t, nil
		}
		return time.Time{}, evalErr(types.ErrInvalidDate, "%s: invalid date: %q", name, v.Str)
	case types.KindNumber:
		return time.UnixMilli(int64(v.Num)), nil
	default:
		return time.Time{}, evalErr(types.ErrInvalidDate, "%s: invalid date", name)
	}
}
