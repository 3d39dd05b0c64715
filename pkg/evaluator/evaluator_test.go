package evaluator

import (
	"strings"
	"testing"
	"time"

	"github.com/gridformula/gridformula/pkg/cache"
	"github.com/gridformula/gridformula/pkg/parser"
	"github.com/gridformula/gridformula/pkg/types"
)

// testContext builds a context with Qty=5, Unit Price=19.99, Name="Widget",
// Active=true, Due=2024-03-15 and an empty Notes cell.
func testContext() *types.EvaluationContext {
	return &types.EvaluationContext{
		Columns: []types.ColumnMetadata{
			{ID: "c1", Name: "Qty", Type: types.FieldNumber},
			{ID: "c2", Name: "Unit Price", Type: types.FieldNumber},
			{ID: "c3", Name: "Name", Type: types.FieldText},
			{ID: "c4", Name: "Active", Type: types.FieldCheckbox},
			{ID: "c5", Name: "Due", Type: types.FieldDate},
			{ID: "c6", Name: "Notes", Type: types.FieldText},
		},
		Row: map[string]types.Value{
			"c1": types.Number(5),
			"c2": types.Number(19.99),
			"c3": types.Text("Widget"),
			"c4": types.Boolean(true),
			"c5": types.Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
		},
	}
}

type evalTestCase struct {
	name      string
	formula   string
	wantText  string
	wantType  types.ResultType
	wantError string // non-empty: expect an error result containing this
}

func runEvalTests(t *testing.T, tests []evalTestCase) {
	t.Helper()
	eval := New()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := eval.EvaluateFormula(test.formula, testContext())

			if test.wantError != "" {
				if result.OK() {
					t.Fatalf("got %q (%s), want error containing %q",
						result.Value.ToText(), result.Type, test.wantError)
				}
				if !strings.Contains(result.Error, test.wantError) {
					t.Errorf("error = %q, want it to contain %q", result.Error, test.wantError)
				}
				return
			}

			if !result.OK() {
				t.Fatalf("unexpected error result: %q", result.Error)
			}
			if got := result.Value.ToText(); got != test.wantText {
				t.Errorf("value = %q, want %q", got, test.wantText)
			}
			if result.Type != test.wantType {
				t.Errorf("type = %s, want %s", result.Type, test.wantType)
			}
		})
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "addition", formula: "1 + 2", wantText: "3", wantType: types.ResultNumber},
		{name: "precedence", formula: "2+3*4", wantText: "14", wantType: types.ResultNumber},
		{name: "grouping", formula: "(2+3)*4", wantText: "20", wantType: types.ResultNumber},
		{name: "division", formula: "10 / 4", wantText: "2.5", wantType: types.ResultNumber},
		{name: "negation", formula: "-(1 + 2)", wantText: "-3", wantType: types.ResultNumber},
		{name: "division by zero", formula: "10/0", wantError: "Division by zero"},
		{name: "division by zero nested", formula: "1 + 10/(2-2)", wantError: "Division by zero"},
	})
}

func TestEvaluateText(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "concat", formula: `"a"&"b"`, wantText: "ab", wantType: types.ResultText},
		{name: "concat coerces numbers", formula: `"total: " & 42`, wantText: "total: 42", wantType: types.ResultText},
		{name: "string literal", formula: `"hello"`, wantText: "hello", wantType: types.ResultText},
	})
}

func TestEvaluateComparisons(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "equal numbers", formula: "1 == 1", wantText: "true", wantType: types.ResultBoolean},
		{name: "not equal", formula: "1 != 2", wantText: "true", wantType: types.ResultBoolean},
		{name: "numeric equality with text", formula: `1 == "1"`, wantText: "true", wantType: types.ResultBoolean},
		{name: "text equality", formula: `"a" == "a"`, wantText: "true", wantType: types.ResultBoolean},
		{name: "text ordering is lexicographic", formula: `"b" > "a"`, wantText: "true", wantType: types.ResultBoolean},
		{name: "mixed ordering is numeric", formula: `"10" > 9`, wantText: "true", wantType: types.ResultBoolean},
		{name: "less or equal", formula: "2 <= 2", wantText: "true", wantType: types.ResultBoolean},
	})
}

func TestEvaluateLogical(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "and true", formula: "1 AND 2", wantText: "true", wantType: types.ResultBoolean},
		{name: "and false", formula: "1 AND 0", wantText: "false", wantType: types.ResultBoolean},
		{name: "or", formula: "0 OR 1", wantText: "true", wantType: types.ResultBoolean},
		{name: "not keyword", formula: "NOT 0", wantText: "true", wantType: types.ResultBoolean},
		{name: "bang", formula: "!1", wantText: "false", wantType: types.ResultBoolean},
		{name: "empty text is falsy", formula: `"" OR 0`, wantText: "false", wantType: types.ResultBoolean},
		{name: "non-empty text is truthy", formula: `"no" AND 1`, wantText: "true", wantType: types.ResultBoolean},
	})
}

func TestEvaluateShortCircuit(t *testing.T) {
	// The right operand of a decided AND/OR is never evaluated, so the
	// division by zero must not surface.
	runEvalTests(t, []evalTestCase{
		{name: "and short-circuits", formula: "0 AND 1/0", wantText: "false", wantType: types.ResultBoolean},
		{name: "or short-circuits", formula: "1 OR 1/0", wantText: "true", wantType: types.ResultBoolean},
		{name: "undecided and evaluates right", formula: "1 AND 1/0", wantError: "Division by zero"},
	})
}

func TestEvaluateFields(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "number field", formula: "[Qty]", wantText: "5", wantType: types.ResultNumber},
		{name: "field arithmetic", formula: "[Qty] * [Unit Price]", wantText: "99.95", wantType: types.ResultNumber},
		{name: "text field", formula: "[Name]", wantText: "Widget", wantType: types.ResultText},
		{name: "boolean field", formula: "[Active]", wantText: "true", wantType: types.ResultBoolean},
		{name: "date field", formula: "[Due]", wantText: "2024-03-15", wantType: types.ResultDate},
		{name: "empty cell renders empty", formula: "[Notes]", wantText: "", wantType: types.ResultText},
		{name: "empty cell coerces to zero", formula: "[Notes] + 1", wantText: "1", wantType: types.ResultNumber},
		{name: "unknown field", formula: "[Missing]", wantError: "Field not found: Missing"},
	})
}

func TestEvaluateCalls(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "sum", formula: "SUM(1,2,3)", wantText: "6", wantType: types.ResultNumber},
		{name: "if true branch", formula: `IF(1>0, "a", "b")`, wantText: "a", wantType: types.ResultText},
		{name: "left", formula: `LEFT("hello",3)`, wantText: "hel", wantType: types.ResultText},
		{name: "unknown function", formula: "NOPE(1)", wantError: "Unknown function: NOPE"},
		{name: "too few arguments", formula: "POWER(2)", wantError: "POWER expects at least 2 argument(s), got 1"},
		{name: "too many arguments", formula: "ABS(1, 2)", wantError: "ABS expects at most 1 argument(s), got 2"},
		{name: "argument error propagates", formula: "SUM(1, 1/0)", wantError: "Division by zero"},
	})
}

func TestEvaluateCoercion(t *testing.T) {
	runEvalTests(t, []evalTestCase{
		{name: "numeric text", formula: `"2" + 3`, wantText: "5", wantType: types.ResultNumber},
		{name: "non-numeric text is zero", formula: `"abc" + 3`, wantText: "3", wantType: types.ResultNumber},
		{name: "boolean is one", formula: "[Active] + 1", wantText: "2", wantType: types.ResultNumber},
		{name: "split renders comma-joined", formula: `SPLIT("a-b-c", "-")`, wantText: "a, b, c", wantType: types.ResultText},
	})
}

func TestEvaluateParseFailure(t *testing.T) {
	// EvaluateFormula folds parse errors into the result.
	eval := New()
	result := eval.EvaluateFormula("1 +", testContext())
	if result.OK() {
		t.Fatal("expected error result for malformed formula")
	}
	if !strings.Contains(result.Error, "Unexpected end of formula") {
		t.Errorf("error = %q", result.Error)
	}
}

func TestEvaluateNilContext(t *testing.T) {
	eval := New()
	result := eval.EvaluateFormula("SUM(1,2,3)", nil)
	if !result.OK() || result.Value.ToText() != "6" {
		t.Errorf("got %+v, want 6", result)
	}
	result = eval.EvaluateFormula("[Qty]", nil)
	if result.OK() {
		t.Error("field lookup in empty context should fail")
	}
}

func TestEvaluateDepthLimit(t *testing.T) {
	eval := New(WithMaxDepth(10))
	deep := strings.Repeat("ABS(", 20) + "1" + strings.Repeat(")", 20)
	expr, err := parser.Parse(deep)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	result := eval.Evaluate(expr, testContext())
	if result.OK() || !strings.Contains(result.Error, "nested too deeply") {
		t.Errorf("got %+v, want depth error", result)
	}
}

func TestEvaluateWithCache(t *testing.T) {
	c := cache.New(4)
	eval := New(WithCache(c))

	for i := 0; i < 3; i++ {
		result := eval.EvaluateFormula("[Qty] + 1", testContext())
		if !result.OK() || result.Value.ToText() != "6" {
			t.Fatalf("iteration %d: got %+v", i, result)
		}
	}
	if c.Len() != 1 {
		t.Errorf("cache length = %d, want 1", c.Len())
	}
}

func TestEvaluateDeterministicClock(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	eval := New(WithClock(func() time.Time { return fixed }))

	result := eval.EvaluateFormula("YEAR(NOW())", nil)
	if !result.OK() || result.Value.ToText() != "2024" {
		t.Errorf("YEAR(NOW()) = %+v, want 2024", result)
	}
	result = eval.EvaluateFormula("TODAY()", nil)
	if !result.OK() || result.Value.ToText() != "2024-03-15" {
		t.Errorf("TODAY() = %+v, want 2024-03-15", result)
	}
}

func TestEvaluateDeterministicRand(t *testing.T) {
	eval := New(WithRand(func() float64 { return 0.5 }))

	result := eval.EvaluateFormula("RAND()", nil)
	if !result.OK() || result.Value.ToText() != "0.5" {
		t.Errorf("RAND() = %+v, want 0.5", result)
	}
	result = eval.EvaluateFormula("RANDBETWEEN(1, 10)", nil)
	if !result.OK() || result.Value.ToText() != "6" {
		t.Errorf("RANDBETWEEN(1, 10) = %+v, want 6", result)
	}
}
