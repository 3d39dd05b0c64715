package evaluator

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/gridformula/gridformula/pkg/types"
)

// evalNumber evaluates a formula expected to produce a number.
func evalNumber(t *testing.T, formula string) float64 {
	t.Helper()
	result := New().EvaluateFormula(formula, nil)
	if !result.OK() {
		t.Fatalf("%s: unexpected error: %s", formula, result.Error)
	}
	if result.Type != types.ResultNumber {
		t.Fatalf("%s: type = %s, want number", formula, result.Type)
	}
	return result.Value.Num
}

// evalText evaluates a formula and returns the textual result.
func evalText(t *testing.T, formula string) string {
	t.Helper()
	result := New().EvaluateFormula(formula, nil)
	if !result.OK() {
		t.Fatalf("%s: unexpected error: %s", formula, result.Error)
	}
	return result.Value.ToText()
}

// evalError evaluates a formula expected to fail and returns the message.
func evalError(t *testing.T, formula string) string {
	t.Helper()
	result := New().EvaluateFormula(formula, nil)
	if result.OK() {
		t.Fatalf("%s: got %q, want error", formula, result.Value.ToText())
	}
	return result.Error
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMathFunctions(t *testing.T) {
	tests := []struct {
		formula string
		want    float64
	}{
		{"SUM(1, 2, 3)", 6},
		{"AVERAGE(2, 4, 6)", 4},
		{"MIN(3, 1, 2)", 1},
		{"MAX(3, 1, 2)", 3},
		{"ROUND(2.5)", 3},
		{"ROUND(-2.5)", -3},
		{"ROUND(3.14159, 2)", 3.14},
		{"ABS(-7)", 7},
		{"SQRT(16)", 4},
		{"POWER(2, 10)", 1024},
		{"MOD(10, 3)", 1},
		{"CEILING(1.1)", 2},
		{"CEILING(7, 5)", 10},
		{"FLOOR(1.9)", 1},
		{"FLOOR(7, 5)", 5},
		{"TRUNC(3.99)", 3},
		{"TRUNC(3.14159, 2)", 3.14},
		{"SIGN(-9)", -1},
		{"SIGN(0)", 0},
		{"GCD(12, 18)", 6},
		{"LCM(4, 6)", 12},
		{"FACT(5)", 120},
		{"LOG(100)", 2},
		{"LOG(8, 2)", 3},
		{"LN(E())", 1},
		{"EXP(0)", 1},
		{"SIN(0)", 0},
		{"COS(0)", 1},
		{"TAN(0)", 0},
		{"ASIN(1)", math.Pi / 2},
		{"ACOS(1)", 0},
		{"ATAN(0)", 0},
		{"ATAN2(0, 1)", 0},
		{"PI()", math.Pi},
	}
	for _, test := range tests {
		t.Run(test.formula, func(t *testing.T) {
			if got := evalNumber(t, test.formula); !almostEqual(got, test.want) {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}
}

func TestMathDomainErrors(t *testing.T) {
	tests := []struct {
		formula string
		message string
	}{
		{"SQRT(-1)", "SQRT: negative number"},
		{"MOD(1, 0)", "Division by zero"},
		{"FACT(-1)", "FACT: negative number"},
		{"FACT(171)", "FACT: number too large"},
		{"LOG(0)", "LOG: out of domain"},
		{"LOG(10, 1)", "LOG: invalid base"},
		{"LN(0)", "LN: out of domain"},
		{"ASIN(2)", "ASIN: out of domain"},
		{"POWER(-1, 0.5)", "POWER: out of domain"},
		{"RANDBETWEEN(5, 1)", "RANDBETWEEN: lower bound above upper bound"},
		{"AVERAGE([x])", "Field not found"},
	}
	for _, test := range tests {
		t.Run(test.formula, func(t *testing.T) {
			if got := evalError(t, test.formula); !strings.Contains(got, test.message) {
				t.Errorf("error = %q, want it to contain %q", got, test.message)
			}
		})
	}
}

func TestTextFunctions(t *testing.T) {
	tests := []struct {
		formula string
		want    string
	}{
		{`CONCATENATE("a", "b", "c")`, "abc"},
		{`CONCAT("a", 1)`, "a1"},
		{`LEFT("hello")`, "h"},
		{`LEFT("hello", 3)`, "hel"},
		{`LEFT("hi", 99)`, "hi"},
		{`RIGHT("hello", 3)`, "llo"},
		{`MID("hello", 2, 3)`, "ell"},
		{`MID("hello", 99, 3)`, ""},
		{`LEN("hello")`, "5"},
		{`UPPER("hello")`, "HELLO"},
		{`LOWER("HELLO")`, "hello"},
		{`TRIM("  padded  ")`, "padded"},
		{`FIND("lo", "hello")`, "4"},
		{`FIND("l", "hello", 4)`, "4"},
		{`SEARCH("HE*O", "hello")`, "1"},
		{`SEARCH("l?", "hello")`, "3"},
		{`SUBSTITUTE("a-b-c", "-", "+")`, "a+b+c"},
		{`SUBSTITUTE("a-b-c", "-", "+", 2)`, "a-b+c"},
		{`REPLACE("hello", 2, 3, "ipp")`, "hippo"},
		{`REPT("ab", 3)`, "ababab"},
		{`REVERSE("abc")`, "cba"},
		{`PROPER("hello wORLD")`, "Hello World"},
		{`EXACT("a", "a")`, "true"},
		{`EXACT("a", "A")`, "false"},
		{`SPLIT("a,b,c", ",")`, "a, b, c"},
		{`JOIN("-", "a", "b")`, "a-b"},
		{`JOIN("-", SPLIT("a,b,c", ","))`, "a-b-c"},
	}
	for _, test := range tests {
		t.Run(test.formula, func(t *testing.T) {
			if got := evalText(t, test.formula); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestTextFunctionsUnicode(t *testing.T) {
	// Slicing is rune-based, not byte-based.
	tests := []struct {
		formula string
		want    string
	}{
		{`LEFT("héllo", 2)`, "hé"},
		{`RIGHT("héllo", 4)`, "éllo"},
		{`LEN("héllo")`, "5"},
		{`REVERSE("héllo")`, "olléh"},
	}
	for _, test := range tests {
		t.Run(test.formula, func(t *testing.T) {
			if got := evalText(t, test.formula); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestTextFunctionErrors(t *testing.T) {
	if got := evalError(t, `FIND("z", "hello")`); !strings.Contains(got, "FIND: text not found") {
		t.Errorf("error = %q", got)
	}
	if got := evalError(t, `SEARCH("z", "hello")`); !strings.Contains(got, "SEARCH: text not found") {
		t.Errorf("error = %q", got)
	}
	if got := evalError(t, `LEFT("x", -1)`); !strings.Contains(got, "LEFT: negative count") {
		t.Errorf("error = %q", got)
	}
}

func TestDateFunctions(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	eval := New(WithClock(func() time.Time { return fixed }))

	tests := []struct {
		formula string
		want    string
	}{
		{"TODAY()", "2024-03-15"},
		{"NOW()", "2024-03-15 10:30:45"},
		{"YEAR(NOW())", "2024"},
		{"MONTH(NOW())", "3"},
		{"DAY(NOW())", "15"},
		{"HOUR(NOW())", "10"},
		{"MINUTE(NOW())", "30"},
		{"SECOND(NOW())", "45"},
		{`YEAR("2023-06-01")`, "2023"},
		{`DATEADD("2024-01-31", "month", 1)`, "2024-03-02"},
		{`DATEADD("2024-03-15", "days", -14)`, "2024-03-01"},
		{`DATEADD("2024-03-15", "week", 1)`, "2024-03-22"},
		{`DATEDIFF("2024-01-01", "2024-03-01", "month")`, "2"},
		{`DATEDIFF("2024-01-01", "2024-01-31", "days")`, "30"},
		{`DATEDIFF("2024-03-01", "2024-01-01", "day")`, "-60"},
		{`WEEKDAY("2024-03-15")`, "5"},
		{`WEEKDAY("2024-03-17")`, "0"},
		{`WEEKNUM("2024-01-01")`, "1"},
		{`EOMONTH("2024-02-10", 0)`, "2024-02-29"},
		{`EOMONTH("2024-01-15", 1)`, "2024-02-29"},
		{`WORKDAY("2024-03-15", 1)`, "2024-03-18"},
		{`WORKDAY("2024-03-18", -1)`, "2024-03-15"},
		{`NETWORKDAYS("2024-03-11", "2024-03-15")`, "5"},
		{`NETWORKDAYS("2024-03-15", "2024-03-11")`, "-5"},
		{`NETWORKDAYS("2024-03-16", "2024-03-17")`, "0"},
		{`YEARFRAC("2024-01-01", "2024-07-01")`, "0.5"},
		{`YEARFRAC("2023-01-01", "2024-01-01", 3)`, "1"},
	}
	for _, test := range tests {
		t.Run(test.formula, func(t *testing.T) {
			result := eval.EvaluateFormula(test.formula, nil)
			if !result.OK() {
				t.Fatalf("unexpected error: %s", result.Error)
			}
			if got := result.Value.ToText(); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestDateFunctionErrors(t *testing.T) {
	if got := evalError(t, `YEAR("not a date")`); !strings.Contains(got, "invalid date") {
		t.Errorf("error = %q", got)
	}
	if got := evalError(t, `DATEADD("2024-01-01", "fortnight", 1)`); !strings.Contains(got, "unknown unit") {
		t.Errorf("error = %q", got)
	}
	if got := evalError(t, `YEARFRAC("2024-01-01", "2024-02-01", 9)`); !strings.Contains(got, "invalid basis") {
		t.Errorf("error = %q", got)
	}
	// Day-by-day walks reject counts and ranges too large to iterate.
	if got := evalError(t, `WORKDAY("2024-01-01", 10000000000)`); !strings.Contains(got, "WORKDAY: count out of range") {
		t.Errorf("error = %q", got)
	}
	if got := evalError(t, `NETWORKDAYS("1000-01-01", "9999-12-31")`); !strings.Contains(got, "NETWORKDAYS: date range too large") {
		t.Errorf("error = %q", got)
	}
}

func TestLogicalFunctions(t *testing.T) {
	tests := []struct {
		formula string
		want    string
	}{
		{`IF(1, "yes", "no")`, "yes"},
		{`IF(0, "yes", "no")`, "no"},
		{`IF(0, "yes")`, ""},
		{`IF("", "yes", "no")`, "no"},
		{`AND(1, 2, 3)`, "true"},
		{`AND(1, 0)`, "false"},
		{`OR(0, 0, 1)`, "true"},
		{`OR(0, "")`, "false"},
		{`NOT(0)`, "true"},
		{`COUNT(1, "", 3)`, "2"},
		{`COUNT("a", 0, 2)`, "3"},
		{`COUNT()`, "0"},
		{`COUNT(SPLIT("a,b", ","))`, "2"},
	}
	for _, test := range tests {
		t.Run(test.formula, func(t *testing.T) {
			if got := evalText(t, test.formula); got != test.want {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestStatFunctions(t *testing.T) {
	tests := []struct {
		formula string
		want    float64
	}{
		{"MEDIAN(1, 3, 2)", 2},
		{"MEDIAN(1, 2, 3, 4)", 2.5},
		{"MODE(1, 2, 2, 3)", 2},
		{"MODE(1, 1, 2, 2)", 1},
		{"VARP(2, 4, 4, 4, 5, 5, 7, 9)", 4},
		{"STDEVP(2, 4, 4, 4, 5, 5, 7, 9)", 2},
		{"VAR(1, 2, 3, 4)", 5.0 / 3.0},
		{"STDEV(1, 2, 3, 4)", math.Sqrt(5.0 / 3.0)},
		{"PERCENTILE(1, 2, 3, 4, 0.5)", 2.5},
		{"PERCENTILE(1, 2, 3, 4, 0)", 1},
		{"PERCENTILE(1, 2, 3, 4, 1)", 4},
		{"QUARTILE(1, 2, 3, 4, 5, 2)", 3},
		{"QUARTILE(1, 2, 3, 4, 5, 4)", 5},
		{`COVAR(SPLIT("1,2,3", ","), SPLIT("4,5,6", ","))`, 2.0 / 3.0},
		{`CORREL(SPLIT("1,2,3", ","), SPLIT("6,5,4", ","))`, -1},
	}
	for _, test := range tests {
		t.Run(test.formula, func(t *testing.T) {
			if got := evalNumber(t, test.formula); !almostEqual(got, test.want) {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}
}

func TestStatFunctionErrors(t *testing.T) {
	tests := []struct {
		formula string
		message string
	}{
		{"STDEV(1)", "STDEV: not enough values"},
		{"PERCENTILE(1, 2, 1.5)", "PERCENTILE: percentile must be between 0 and 1"},
		{"QUARTILE(1, 2, 5)", "QUARTILE: quartile must be between 0 and 4"},
		{`COVAR(SPLIT("1,2", ","), SPLIT("1", ","))`, "COVAR: series must have the same non-zero length"},
	}
	for _, test := range tests {
		t.Run(test.formula, func(t *testing.T) {
			if got := evalError(t, test.formula); !strings.Contains(got, test.message) {
				t.Errorf("error = %q, want it to contain %q", got, test.message)
			}
		})
	}
}

func TestFunctionNamesSorted(t *testing.T) {
	names := FunctionNames()
	if len(names) < 70 {
		t.Fatalf("library has %d functions, expected the full set", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted at %q >= %q", names[i-1], names[i])
		}
	}
	for _, want := range []string{"SUM", "IF", "LEFT", "TODAY", "STDEV"} {
		if _, ok := GetFunction(want); !ok {
			t.Errorf("function %s missing from registry", want)
		}
	}
}
