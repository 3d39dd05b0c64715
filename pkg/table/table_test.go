package table

import (
	"os"
	"path/filepath"
	"testing"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/gridformula/gridformula/pkg/evaluator"
	"github.com/gridformula/gridformula/pkg/types"
)

func testFrame() *dataframe.DataFrame {
	return dataframe.NewDataFrame(
		dataframe.NewSeriesString("name", nil, "Widget", "Gadget", "Gizmo"),
		dataframe.NewSeriesFloat64("price", nil, 19.99, 5.0, 12.5),
		dataframe.NewSeriesInt64("qty", nil, 5, 0, 2),
	)
}

func TestFromFrame(t *testing.T) {
	tbl := FromFrame(testFrame())

	columns := tbl.Columns()
	if len(columns) != 3 {
		t.Fatalf("got %d columns, want 3", len(columns))
	}

	wantTypes := map[string]types.FieldType{
		"name":  types.FieldText,
		"price": types.FieldNumber,
		"qty":   types.FieldNumber,
	}
	seenIDs := make(map[string]bool)
	for _, col := range columns {
		if col.ID == "" {
			t.Errorf("column %s has no ID", col.Name)
		}
		if seenIDs[col.ID] {
			t.Errorf("duplicate column ID %s", col.ID)
		}
		seenIDs[col.ID] = true
		if col.Type != wantTypes[col.Name] {
			t.Errorf("column %s type = %s, want %s", col.Name, col.Type, wantTypes[col.Name])
		}
	}

	if tbl.NRows() != 3 {
		t.Errorf("NRows = %d, want 3", tbl.NRows())
	}
}

func TestContext(t *testing.T) {
	tbl := FromFrame(testFrame())

	ctx := tbl.Context(0)
	col, ok := ctx.ColumnByName("price")
	if !ok {
		t.Fatal("price column missing from context")
	}
	if got := ctx.Row[col.ID]; got.ToNumber() != 19.99 {
		t.Errorf("price = %v, want 19.99", got)
	}
}

func TestEvaluateColumn(t *testing.T) {
	tbl := FromFrame(testFrame())
	eval := evaluator.New()

	results := tbl.EvaluateColumn(eval, "[price] * [qty]")
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	want := []string{"99.95", "0", "25"}
	for i, result := range results {
		if !result.OK() {
			t.Fatalf("row %d: unexpected error %q", i, result.Error)
		}
		if got := result.Value.ToText(); got != want[i] {
			t.Errorf("row %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestEvaluateColumnRowErrorsDoNotAbort(t *testing.T) {
	tbl := FromFrame(testFrame())
	eval := evaluator.New()

	// Row 1 has qty 0; its division fails while the others succeed.
	results := tbl.EvaluateColumn(eval, "[price] / [qty]")
	if results[0].OK() != true || results[2].OK() != true {
		t.Errorf("good rows failed: %+v", results)
	}
	if results[1].OK() {
		t.Errorf("row 1 = %+v, want division error", results[1])
	}
	if results[1].Error != "Division by zero" {
		t.Errorf("row 1 error = %q", results[1].Error)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.csv")
	data := "name,price,qty\nWidget,19.99,5\nGadget,5,0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if tbl.NRows() != 2 {
		t.Fatalf("NRows = %d, want 2", tbl.NRows())
	}

	results := tbl.EvaluateColumn(evaluator.New(), "[price] * [qty]")
	if !results[0].OK() || results[0].Value.ToText() != "99.95" {
		t.Errorf("row 0 = %+v, want 99.95", results[0])
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
