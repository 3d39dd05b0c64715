package evaluator

import (
	"sort"
	"sync"

	"github.com/gridformula/gridformula/pkg/types"
)

// FunctionDef defines a built-in function.
type FunctionDef struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 for unlimited
	Impl    FunctionImpl
}

// FunctionImpl is the implementation of a function. Arguments arrive
// already evaluated; returning an error aborts the whole evaluation and
// surfaces as the error variant of the result.
type FunctionImpl func(s *evalState, args []types.Value) (types.Value, error)

var (
	builtinFunctions     map[string]*FunctionDef
	builtinFunctionsOnce sync.Once
)

// initBuiltinFunctions initializes the built-in function registry.
// Function names are upper-case; the tokenizer upper-cases call names so
// lookup is exact.
func initBuiltinFunctions() {
	builtinFunctionsOnce.Do(func() {
		builtinFunctions = map[string]*FunctionDef{
			// Math functions
			"SUM":         {Name: "SUM", MinArgs: 1, MaxArgs: -1, Impl: fnSum},
			"AVERAGE":     {Name: "AVERAGE", MinArgs: 1, MaxArgs: -1, Impl: fnAverage},
			"MIN":         {Name: "MIN", MinArgs: 1, MaxArgs: -1, Impl: fnMin},
			"MAX":         {Name: "MAX", MinArgs: 1, MaxArgs: -1, Impl: fnMax},
			"ROUND":       {Name: "ROUND", MinArgs: 1, MaxArgs: 2, Impl: fnRound},
			"ABS":         {Name: "ABS", MinArgs: 1, MaxArgs: 1, Impl: fnAbs},
			"SQRT":        {Name: "SQRT", MinArgs: 1, MaxArgs: 1, Impl: fnSqrt},
			"POWER":       {Name: "POWER", MinArgs: 2, MaxArgs: 2, Impl: fnPower},
			"MOD":         {Name: "MOD", MinArgs: 2, MaxArgs: 2, Impl: fnMod},
			"CEILING":     {Name: "CEILING", MinArgs: 1, MaxArgs: 2, Impl: fnCeiling},
			"FLOOR":       {Name: "FLOOR", MinArgs: 1, MaxArgs: 2, Impl: fnFloor},
			"TRUNC":       {Name: "TRUNC", MinArgs: 1, MaxArgs: 2, Impl: fnTrunc},
			"SIGN":        {Name: "SIGN", MinArgs: 1, MaxArgs: 1, Impl: fnSign},
			"GCD":         {Name: "GCD", MinArgs: 1, MaxArgs: -1, Impl: fnGCD},
			"LCM":         {Name: "LCM", MinArgs: 1, MaxArgs: -1, Impl: fnLCM},
			"FACT":        {Name: "FACT", MinArgs: 1, MaxArgs: 1, Impl: fnFact},
			"LOG":         {Name: "LOG", MinArgs: 1, MaxArgs: 2, Impl: fnLog},
			"LN":          {Name: "LN", MinArgs: 1, MaxArgs: 1, Impl: fnLn},
			"EXP":         {Name: "EXP", MinArgs: 1, MaxArgs: 1, Impl: fnExp},
			"SIN":         {Name: "SIN", MinArgs: 1, MaxArgs: 1, Impl: fnSin},
			"COS":         {Name: "COS", MinArgs: 1, MaxArgs: 1, Impl: fnCos},
			"TAN":         {Name: "TAN", MinArgs: 1, MaxArgs: 1, Impl: fnTan},
			"ASIN":        {Name: "ASIN", MinArgs: 1, MaxArgs: 1, Impl: fnAsin},
			"ACOS":        {Name: "ACOS", MinArgs: 1, MaxArgs: 1, Impl: fnAcos},
			"ATAN":        {Name: "ATAN", MinArgs: 1, MaxArgs: 1, Impl: fnAtan},
			"ATAN2":       {Name: "ATAN2", MinArgs: 2, MaxArgs: 2, Impl: fnAtan2},
			"PI":          {Name: "PI", MinArgs: 0, MaxArgs: 0, Impl: fnPi},
			"E":           {Name: "E", MinArgs: 0, MaxArgs: 0, Impl: fnE},
			"RAND":        {Name: "RAND", MinArgs: 0, MaxArgs: 0, Impl: fnRand},
			"RANDBETWEEN": {Name: "RANDBETWEEN", MinArgs: 2, MaxArgs: 2, Impl: fnRandBetween},

			// Text functions
			"CONCATENATE": {Name: "CONCATENATE", MinArgs: 1, MaxArgs: -1, Impl: fnConcatenate},
			"CONCAT":      {Name: "CONCAT", MinArgs: 1, MaxArgs: -1, Impl: fnConcatenate},
			"LEFT":        {Name: "LEFT", MinArgs: 1, MaxArgs: 2, Impl: fnLeft},
			"RIGHT":       {Name: "RIGHT", MinArgs: 1, MaxArgs: 2, Impl: fnRight},
			"MID":         {Name: "MID", MinArgs: 3, MaxArgs: 3, Impl: fnMid},
			"LEN":         {Name: "LEN", MinArgs: 1, MaxArgs: 1, Impl: fnLen},
			"UPPER":       {Name: "UPPER", MinArgs: 1, MaxArgs: 1, Impl: fnUpper},
			"LOWER":       {Name: "LOWER", MinArgs: 1, MaxArgs: 1, Impl: fnLower},
			"TRIM":        {Name: "TRIM", MinArgs: 1, MaxArgs: 1, Impl: fnTrim},
			"FIND":        {Name: "FIND", MinArgs: 2, MaxArgs: 3, Impl: fnFind},
			"SEARCH":      {Name: "SEARCH", MinArgs: 2, MaxArgs: 3, Impl: fnSearch},
			"SUBSTITUTE":  {Name: "SUBSTITUTE", MinArgs: 3, MaxArgs: 4, Impl: fnSubstitute},
			"REPLACE":     {Name: "REPLACE", MinArgs: 4, MaxArgs: 4, Impl: fnReplace},
			"REPT":        {Name: "REPT", MinArgs: 2, MaxArgs: 2, Impl: fnRept},
			"REVERSE":     {Name: "REVERSE", MinArgs: 1, MaxArgs: 1, Impl: fnReverse},
			"PROPER":      {Name: "PROPER", MinArgs: 1, MaxArgs: 1, Impl: fnProper},
			"CLEAN":       {Name: "CLEAN", MinArgs: 1, MaxArgs: 1, Impl: fnClean},
			"EXACT":       {Name: "EXACT", MinArgs: 2, MaxArgs: 2, Impl: fnExact},
			"SPLIT":       {Name: "SPLIT", MinArgs: 2, MaxArgs: 2, Impl: fnSplit},
			"JOIN":        {Name: "JOIN", MinArgs: 1, MaxArgs: -1, Impl: fnJoin},

			// Date/time functions
			"TODAY":       {Name: "TODAY", MinArgs: 0, MaxArgs: 0, Impl: fnToday},
			"NOW":         {Name: "NOW", MinArgs: 0, MaxArgs: 0, Impl: fnNow},
			"YEAR":        {Name: "YEAR", MinArgs: 1, MaxArgs: 1, Impl: fnYear},
			"MONTH":       {Name: "MONTH", MinArgs: 1, MaxArgs: 1, Impl: fnMonth},
			"DAY":         {Name: "DAY", MinArgs: 1, MaxArgs: 1, Impl: fnDay},
			"HOUR":        {Name: "HOUR", MinArgs: 1, MaxArgs: 1, Impl: fnHour},
			"MINUTE":      {Name: "MINUTE", MinArgs: 1, MaxArgs: 1, Impl: fnMinute},
			"SECOND":      {Name: "SECOND", MinArgs: 1, MaxArgs: 1, Impl: fnSecond},
			"DATEADD":     {Name: "DATEADD", MinArgs: 3, MaxArgs: 3, Impl: fnDateAdd},
			"DATEDIFF":    {Name: "DATEDIFF", MinArgs: 3, MaxArgs: 3, Impl: fnDateDiff},
			"WEEKDAY":     {Name: "WEEKDAY", MinArgs: 1, MaxArgs: 1, Impl: fnWeekday},
			"WEEKNUM":     {Name: "WEEKNUM", MinArgs: 1, MaxArgs: 1, Impl: fnWeekNum},
			"EOMONTH":     {Name: "EOMONTH", MinArgs: 2, MaxArgs: 2, Impl: fnEOMonth},
			"WORKDAY":     {Name: "WORKDAY", MinArgs: 2, MaxArgs: 2, Impl: fnWorkday},
			"NETWORKDAYS": {Name: "NETWORKDAYS", MinArgs: 2, MaxArgs: 2, Impl: fnNetworkdays},
			"YEARFRAC":    {Name: "YEARFRAC", MinArgs: 2, MaxArgs: 3, Impl: fnYearFrac},

			// Logical functions
			"IF":    {Name: "IF", MinArgs: 2, MaxArgs: 3, Impl: fnIf},
			"AND":   {Name: "AND", MinArgs: 1, MaxArgs: -1, Impl: fnAnd},
			"OR":    {Name: "OR", MinArgs: 1, MaxArgs: -1, Impl: fnOr},
			"NOT":   {Name: "NOT", MinArgs: 1, MaxArgs: 1, Impl: fnNot},
			"COUNT": {Name: "COUNT", MinArgs: 0, MaxArgs: -1, Impl: fnCount},

			// Statistical functions
			"STDEV":      {Name: "STDEV", MinArgs: 1, MaxArgs: -1, Impl: fnStdev},
			"STDEVP":     {Name: "STDEVP", MinArgs: 1, MaxArgs: -1, Impl: fnStdevP},
			"VAR":        {Name: "VAR", MinArgs: 1, MaxArgs: -1, Impl: fnVar},
			"VARP":       {Name: "VARP", MinArgs: 1, MaxArgs: -1, Impl: fnVarP},
			"MEDIAN":     {Name: "MEDIAN", MinArgs: 1, MaxArgs: -1, Impl: fnMedian},
			"MODE":       {Name: "MODE", MinArgs: 1, MaxArgs: -1, Impl: fnMode},
			"PERCENTILE": {Name: "PERCENTILE", MinArgs: 2, MaxArgs: -1, Impl: fnPercentile},
			"QUARTILE":   {Name: "QUARTILE", MinArgs: 2, MaxArgs: -1, Impl: fnQuartile},
			"COVAR":      {Name: "COVAR", MinArgs: 2, MaxArgs: 2, Impl: fnCovar},
			"CORREL":     {Name: "CORREL", MinArgs: 2, MaxArgs: 2, Impl: fnCorrel},
		}
	})
}

// GetFunction retrieves a built-in function by (upper-case) name.
func GetFunction(name string) (*FunctionDef, bool) {
	initBuiltinFunctions()
	fn, ok := builtinFunctions[name]
	return fn, ok
}

// FunctionNames returns the names of all built-in functions, sorted. The
// authoring service uses it for autocomplete suggestions.
func FunctionNames() []string {
	initBuiltinFunctions()
	names := make([]string, 0, len(builtinFunctions))
	for name := range builtinFunctions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
