// Package table bridges tabular data files into the formula engine. It
// loads CSV and Parquet files into dataframes, derives column metadata and
// builds per-row evaluation contexts, so a formula can be computed down a
// whole table.
package table

import (
	"github.com/google/uuid"
	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/gridformula/gridformula/pkg/evaluator"
	"github.com/gridformula/gridformula/pkg/types"
)

// Table wraps a dataframe with the column metadata the engine needs.
type Table struct {
	frame   *dataframe.DataFrame
	columns []types.ColumnMetadata
}

// FromFrame builds a Table from a dataframe. Every series becomes a column
// with a fresh ID and a field type derived from the series type.
func FromFrame(frame *dataframe.DataFrame) *Table {
	columns := make([]types.ColumnMetadata, len(frame.Series))
	for i, s := range frame.Series {
		columns[i] = types.ColumnMetadata{
			ID:   uuid.NewString(),
			Name: s.Name(),
			Type: seriesFieldType(s),
		}
	}
	return &Table{frame: frame, columns: columns}
}

// seriesFieldType maps a dataframe series type to a field type.
func seriesFieldType(s dataframe.Series) types.FieldType {
	switch s.(type) {
	case *dataframe.SeriesInt64, *dataframe.SeriesFloat64:
		return types.FieldNumber
	case *dataframe.SeriesTime:
		return types.FieldDate
	default:
		return types.FieldText
	}
}

// Columns returns the column metadata of the table.
func (t *Table) Columns() []types.ColumnMetadata {
	return t.columns
}

// NRows returns the number of rows.
func (t *Table) NRows() int {
	return t.frame.NRows()
}

// Context builds the evaluation context of one row.
func (t *Table) Context(row int) *types.EvaluationContext {
	values := make(map[string]types.Value, len(t.columns))
	for i, s := range t.frame.Series {
		values[t.columns[i].ID] = types.FromAny(s.Value(row))
	}
	return &types.EvaluationContext{
		Row:     values,
		Columns: t.columns,
	}
}

// EvaluateColumn evaluates a formula against every row and returns one
// result per row. A failing row yields its error result and the batch
// continues.
func (t *Table) EvaluateColumn(eval *evaluator.Evaluator, formula string) []types.EvalResult {
	results := make([]types.EvalResult, t.NRows())
	for row := range results {
		results[row] = eval.EvaluateFormula(formula, t.Context(row))
	}
	return results
}
