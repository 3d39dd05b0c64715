package evaluator

import (
	"math"

	"github.com/gridformula/gridformula/pkg/types"
)

func fnSum(s *evalState, args []types.Value) (types.Value, error) {
	total := 0.0
	for _, n := range numericValues(args) {
		total += n
	}
	return types.Number(total), nil
}

func fnAverage(s *evalState, args []types.Value) (types.Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "AVERAGE: no values")
	}
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return types.Number(total / float64(len(nums))), nil
}

func fnMin(s *evalState, args []types.Value) (types.Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "MIN: no values")
	}
	min := nums[0]
	for _, n := range nums[1:] {
		if n < min {
			min = n
		}
	}
	return types.Number(min), nil
}

func fnMax(s *evalState, args []types.Value) (types.Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "MAX: no values")
	}
	max := nums[0]
	for _, n := range nums[1:] {
		if n > max {
			max = n
		}
	}
	return types.Number(max), nil
}

// fnRound rounds half away from zero, optionally to a number of digits.
func fnRound(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	digits := 0
	if len(args) == 2 {
		digits = intArg(args[1])
	}
	shift := math.Pow(10, float64(digits))
	return types.Number(math.Round(num*shift) / shift), nil
}

func fnAbs(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.Abs(args[0].ToNumber())), nil
}

func fnSqrt(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	if num < 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "SQRT: negative number")
	}
	return types.Number(math.Sqrt(num)), nil
}

func fnPower(s *evalState, args []types.Value) (types.Value, error) {
	result := math.Pow(args[0].ToNumber(), args[1].ToNumber())
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "POWER: out of domain")
	}
	return types.Number(result), nil
}

func fnMod(s *evalState, args []types.Value) (types.Value, error) {
	divisor := args[1].ToNumber()
	if divisor == 0 {
		return types.NullValue, evalErr(types.ErrDivisionByZero, "Division by zero")
	}
	return types.Number(math.Mod(args[0].ToNumber(), divisor)), nil
}

// fnCeiling rounds up, optionally to a multiple of significance.
func fnCeiling(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	if len(args) == 2 {
		sig := args[1].ToNumber()
		if sig == 0 {
			return types.Number(0), nil
		}
		return types.Number(math.Ceil(num/sig) * sig), nil
	}
	return types.Number(math.Ceil(num)), nil
}

// fnFloor rounds down, optionally to a multiple of significance.
func fnFloor(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	if len(args) == 2 {
		sig := args[1].ToNumber()
		if sig == 0 {
			return types.Number(0), nil
		}
		return types.Number(math.Floor(num/sig) * sig), nil
	}
	return types.Number(math.Floor(num)), nil
}

func fnTrunc(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	digits := 0
	if len(args) == 2 {
		digits = intArg(args[1])
	}
	shift := math.Pow(10, float64(digits))
	return types.Number(math.Trunc(num*shift) / shift), nil
}

func fnSign(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	switch {
	case num > 0:
		return types.Number(1), nil
	case num < 0:
		return types.Number(-1), nil
	default:
		return types.Number(0), nil
	}
}

func gcd2(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func fnGCD(s *evalState, args []types.Value) (types.Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "GCD: no values")
	}
	result := int64(nums[0])
	for _, n := range nums[1:] {
		result = gcd2(result, int64(n))
	}
	return types.Number(float64(result)), nil
}

func fnLCM(s *evalState, args []types.Value) (types.Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "LCM: no values")
	}
	result := int64(nums[0])
	for _, n := range nums[1:] {
		b := int64(n)
		if result == 0 || b == 0 {
			result = 0
			continue
		}
		result = result / gcd2(result, b) * b
		if result < 0 {
			result = -result
		}
	}
	return types.Number(float64(result)), nil
}

func fnFact(s *evalState, args []types.Value) (types.Value, error) {
	n := intArg(args[0])
	if n < 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "FACT: negative number")
	}
	// 170! is the largest factorial representable as a float64.
	if n > 170 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "FACT: number too large")
	}
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return types.Number(result), nil
}

// fnLog computes the logarithm in an optional base, defaulting to base 10.
func fnLog(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	if num <= 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "LOG: out of domain")
	}
	base := 10.0
	if len(args) == 2 {
		base = args[1].ToNumber()
		if base <= 0 || base == 1 {
			return types.NullValue, evalErr(types.ErrInvalidArgument, "LOG: invalid base")
		}
	}
	return types.Number(math.Log(num) / math.Log(base)), nil
}

func fnLn(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	if num <= 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "LN: out of domain")
	}
	return types.Number(math.Log(num)), nil
}

func fnExp(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.Exp(args[0].ToNumber())), nil
}

func fnSin(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.Sin(args[0].ToNumber())), nil
}

func fnCos(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.Cos(args[0].ToNumber())), nil
}

func fnTan(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.Tan(args[0].ToNumber())), nil
}

func fnAsin(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	if num < -1 || num > 1 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "ASIN: out of domain")
	}
	return types.Number(math.Asin(num)), nil
}

func fnAcos(s *evalState, args []types.Value) (types.Value, error) {
	num := args[0].ToNumber()
	if num < -1 || num > 1 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "ACOS: out of domain")
	}
	return types.Number(math.Acos(num)), nil
}

func fnAtan(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.Atan(args[0].ToNumber())), nil
}

func fnAtan2(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.Atan2(args[0].ToNumber(), args[1].ToNumber())), nil
}

func fnPi(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.Pi), nil
}

func fnE(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(math.E), nil
}

func fnRand(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(s.e.opts.Rand()), nil
}

func fnRandBetween(s *evalState, args []types.Value) (types.Value, error) {
	lo := math.Floor(args[0].ToNumber())
	hi := math.Floor(args[1].ToNumber())
	if lo > hi {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "RANDBETWEEN: lower bound above upper bound")
	}
	return types.Number(lo + math.Floor(s.e.opts.Rand()*(hi-lo+1))), nil
}
