package table

import (
	"context"
	"errors"
	"os"

	"github.com/rocketlaunchr/dataframe-go/imports"
)

// ErrEmptyFile reports a data file with no columns.
var ErrEmptyFile = errors.New("data file has no columns")

// LoadCSV reads a CSV file into a Table. The first row is the header; column
// types are inferred from the data.
func LoadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	df, err := imports.LoadFromCSV(context.Background(), file, imports.CSVLoadOptions{
		InferDataTypes: true,
	})
	if err != nil {
		return nil, err
	}
	if df == nil || len(df.Series) == 0 {
		return nil, ErrEmptyFile
	}

	return FromFrame(df), nil
}
