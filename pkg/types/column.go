package types

// FieldType identifies the storage type of a column.
type FieldType string

const (
	FieldText         FieldType = "text"
	FieldNumber       FieldType = "number"
	FieldSingleSelect FieldType = "single-select"
	FieldMultiSelect  FieldType = "multi-select"
	FieldDate         FieldType = "date"
	FieldCheckbox     FieldType = "checkbox"
	FieldAttachment   FieldType = "attachment"
	FieldFormula      FieldType = "formula"
	FieldLookup       FieldType = "lookup"
	FieldRollup       FieldType = "rollup"
	FieldLink         FieldType = "link"
)

// ColumnOptions holds type-specific column configuration.
type ColumnOptions struct {
	// Choices are the allowed values of select columns.
	Choices []string
	// Precision is the number of decimal digits of number columns.
	Precision int
	// Formula is the formula text of formula columns.
	Formula string
}

// ColumnMetadata describes one column of the owning table.
//
// Formulas reference columns by display Name at parse time; the evaluator
// resolves the name to the column and reads the row value by ID.
type ColumnMetadata struct {
	ID      string
	Name    string
	Type    FieldType
	Options ColumnOptions
}

// EvaluationContext supplies the data a single evaluation reads from.
//
// The context is read-only for the duration of one evaluation and is never
// mutated by the engine. Callers construct a fresh context per row.
type EvaluationContext struct {
	// Row maps column ID to the stored cell value of the current row.
	Row map[string]Value
	// Columns is the full, current column metadata of the owning table.
	Columns []ColumnMetadata
	// Rows optionally holds every row of the table, for cross-row
	// aggregation. The base evaluator does not require it.
	Rows []map[string]Value
}

// ColumnByName returns the column whose display name equals name.
func (c *EvaluationContext) ColumnByName(name string) (ColumnMetadata, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnMetadata{}, false
}

// DependencyKind classifies how a formula depends on a column.
type DependencyKind string

const (
	// DependencyDirect marks a column referenced by the formula itself.
	DependencyDirect DependencyKind = "direct"
	// DependencyIndirect is reserved for multi-hop graph traversal; the
	// base extractor never produces it.
	DependencyIndirect DependencyKind = "indirect"
)

// FormulaDependency records one column a formula reads from.
type FormulaDependency struct {
	FieldName string
	Kind      DependencyKind
}
