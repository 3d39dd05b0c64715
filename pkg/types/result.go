package types

// ResultType tags the outcome of a formula evaluation.
type ResultType string

const (
	ResultNumber  ResultType = "number"
	ResultText    ResultType = "text"
	ResultBoolean ResultType = "boolean"
	ResultDate    ResultType = "date"
	ResultError   ResultType = "error"
)

// EvalResult is the outcome of evaluating one formula against one row.
//
// Exactly one of Value and Error is meaningful, selected by Type: for
// ResultError the Error string describes the failure, for every other type
// Value holds the computed value.
type EvalResult struct {
	Value Value
	Type  ResultType
	Error string
}

// OK reports whether the evaluation produced a value.
func (r EvalResult) OK() bool {
	return r.Type != ResultError
}

// ErrorResult creates an error-tagged result.
func ErrorResult(message string) EvalResult {
	return EvalResult{Type: ResultError, Error: message}
}

// ResultOf wraps a value in a result tagged with the value's type. Arrays
// surface as their comma-joined text, null as empty text.
func ResultOf(v Value) EvalResult {
	switch v.Kind {
	case KindNumber:
		return EvalResult{Value: v, Type: ResultNumber}
	case KindBool:
		return EvalResult{Value: v, Type: ResultBoolean}
	case KindDate:
		return EvalResult{Value: v, Type: ResultDate}
	case KindArray, KindNull:
		return EvalResult{Value: Text(v.ToText()), Type: ResultText}
	default:
		return EvalResult{Value: v, Type: ResultText}
	}
}
