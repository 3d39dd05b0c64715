package evaluator

import (
	"math"
	"sort"

	"github.com/gridformula/gridformula/pkg/types"
)

// variance computes the population or sample variance of the numeric
// values in args.
func variance(name string, args []types.Value, sample bool) (float64, error) {
	nums := numericValues(args)
	need := 1
	if sample {
		need = 2
	}
	if len(nums) < need {
		return 0, evalErr(types.ErrInvalidArgument, "%s: not enough values", name)
	}

	mean := 0.0
	for _, n := range nums {
		mean += n
	}
	mean /= float64(len(nums))

	sum := 0.0
	for _, n := range nums {
		d := n - mean
		sum += d * d
	}
	if sample {
		return sum / float64(len(nums)-1), nil
	}
	return sum / float64(len(nums)), nil
}

func fnStdev(s *evalState, args []types.Value) (types.Value, error) {
	v, err := variance("STDEV", args, true)
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(math.Sqrt(v)), nil
}

func fnStdevP(s *evalState, args []types.Value) (types.Value, error) {
	v, err := variance("STDEVP", args, false)
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(math.Sqrt(v)), nil
}

func fnVar(s *evalState, args []types.Value) (types.Value, error) {
	v, err := variance("VAR", args, true)
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(v), nil
}

func fnVarP(s *evalState, args []types.Value) (types.Value, error) {
	v, err := variance("VARP", args, false)
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(v), nil
}

func fnMedian(s *evalState, args []types.Value) (types.Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "MEDIAN: no values")
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return types.Number(nums[mid]), nil
	}
	return types.Number((nums[mid-1] + nums[mid]) / 2), nil
}

// fnMode returns the most frequent value. Ties go to the value seen first.
func fnMode(s *evalState, args []types.Value) (types.Value, error) {
	nums := numericValues(args)
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "MODE: no values")
	}
	counts := make(map[float64]int, len(nums))
	best := nums[0]
	bestCount := 0
	for _, n := range nums {
		counts[n]++
		if counts[n] > bestCount {
			best = n
			bestCount = counts[n]
		}
	}
	return types.Number(best), nil
}

// interpolatedRank returns the value at fractional rank p*(n-1) of the
// sorted values, linearly interpolating between neighbors.
func interpolatedRank(nums []float64, p float64) float64 {
	sort.Float64s(nums)
	if len(nums) == 1 {
		return nums[0]
	}
	rank := p * float64(len(nums)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return nums[lo]
	}
	frac := rank - float64(lo)
	return nums[lo] + frac*(nums[hi]-nums[lo])
}

// fnPercentile takes the values followed by the percentile in [0, 1] as the
// last argument.
func fnPercentile(s *evalState, args []types.Value) (types.Value, error) {
	p := args[len(args)-1].ToNumber()
	if p < 0 || p > 1 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "PERCENTILE: percentile must be between 0 and 1")
	}
	nums := numericValues(args[:len(args)-1])
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "PERCENTILE: no values")
	}
	return types.Number(interpolatedRank(nums, p)), nil
}

// fnQuartile takes the values followed by the quartile number 0 through 4
// as the last argument.
func fnQuartile(s *evalState, args []types.Value) (types.Value, error) {
	q := intArg(args[len(args)-1])
	if q < 0 || q > 4 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "QUARTILE: quartile must be between 0 and 4")
	}
	nums := numericValues(args[:len(args)-1])
	if len(nums) == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "QUARTILE: no values")
	}
	return types.Number(interpolatedRank(nums, float64(q)/4)), nil
}

// pairedSeries extracts two equal-length numeric series from the two
// arguments of COVAR and CORREL.
func pairedSeries(name string, args []types.Value) ([]float64, []float64, error) {
	xs := numericValues(args[:1])
	ys := numericValues(args[1:])
	if len(xs) == 0 || len(xs) != len(ys) {
		return nil, nil, evalErr(types.ErrInvalidArgument, "%s: series must have the same non-zero length", name)
	}
	return xs, ys, nil
}

func covariance(xs, ys []float64) float64 {
	n := float64(len(xs))
	meanX, meanY := 0.0, 0.0
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	sum := 0.0
	for i := range xs {
		sum += (xs[i] - meanX) * (ys[i] - meanY)
	}
	return sum / n
}

func fnCovar(s *evalState, args []types.Value) (types.Value, error) {
	xs, ys, err := pairedSeries("COVAR", args)
	if err != nil {
		return types.NullValue, err
	}
	return types.Number(covariance(xs, ys)), nil
}

func fnCorrel(s *evalState, args []types.Value) (types.Value, error) {
	xs, ys, err := pairedSeries("CORREL", args)
	if err != nil {
		return types.NullValue, err
	}
	sx := math.Sqrt(covariance(xs, xs))
	sy := math.Sqrt(covariance(ys, ys))
	if sx == 0 || sy == 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "CORREL: series has zero variance")
	}
	return types.Number(covariance(xs, ys) / (sx * sy)), nil
}
