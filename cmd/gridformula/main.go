// Package main provides the gridformula developer CLI.
//
// Usage:
//
//	gridformula eval -file data.csv '[Price] * [Quantity]'   # compute a column
//	gridformula eval 'SUM(1, 2, 3)'                          # evaluate without data
//	gridformula validate -file data.csv '[Price] * 2'        # validate against a schema
//	gridformula deps '[Price] * [Quantity]'                  # list dependencies
//	gridformula suggest -cursor 3 'SU'                       # autocomplete
//	gridformula highlight 'IF([Qty] > 0, "yes", "no")'       # highlight spans
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gridformula/gridformula"
	"github.com/gridformula/gridformula/pkg/authoring"
	"github.com/gridformula/gridformula/pkg/evaluator"
	"github.com/gridformula/gridformula/pkg/table"
	"github.com/gridformula/gridformula/pkg/types"
)

func main() {
	configureLogging()

	if err := run(); err != nil {
		logrus.WithError(err).Fatal("command failed")
	}
}

func configureLogging() {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "15:04:05",
	})
}

func run() error {
	if len(os.Args) < 2 {
		return printUsage()
	}

	switch cmd := os.Args[1]; cmd {
	case "eval":
		return evalCommand(os.Args[2:])
	case "validate":
		return validateCommand(os.Args[2:])
	case "deps":
		return depsCommand(os.Args[2:])
	case "suggest":
		return suggestCommand(os.Args[2:])
	case "highlight":
		return highlightCommand(os.Args[2:])
	case "version":
		fmt.Printf("gridformula %s\n", gridformula.Version())
		return nil
	case "help", "-h", "--help":
		return printUsage()
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() error {
	fmt.Println(`gridformula - formula engine developer tool

Commands:
  eval      [-file data.csv|data.parquet] <formula>   evaluate a formula
  validate  [-file data.csv|data.parquet] <formula>   validate against a schema
  deps      <formula>                                 list field dependencies
  suggest   -cursor <n> <formula>                     autocomplete suggestions
  highlight <formula>                                 syntax highlight spans
  version                                             print version

Environment:
  LOG_LEVEL   debug | info | warn | error (default info)`)
	return nil
}

// loadTable opens a CSV or Parquet file, chosen by extension.
func loadTable(path string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return table.LoadParquet(path)
	default:
		return table.LoadCSV(path)
	}
}

func evalCommand(args []string) error {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	file := fs.String("file", "", "CSV or Parquet file to evaluate against")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: gridformula eval [-file data.csv] <formula>")
	}
	formula := fs.Arg(0)

	if *file == "" {
		result := gridformula.Evaluate(formula, nil)
		printResult(result)
		return nil
	}

	tbl, err := loadTable(*file)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"file": *file,
		"rows": tbl.NRows(),
	}).Debug("table loaded")

	eval := evaluator.New()
	for row, result := range tbl.EvaluateColumn(eval, formula) {
		fmt.Printf("%d\t", row)
		printResult(result)
	}
	return nil
}

func printResult(result types.EvalResult) {
	if !result.OK() {
		fmt.Printf("#ERROR: %s\n", result.Error)
		return
	}
	fmt.Printf("%s\t(%s)\n", result.Value.ToText(), result.Type)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	file := fs.String("file", "", "CSV or Parquet file supplying the column schema")
	column := fs.String("column", "", "name of the column being edited (enables cycle check)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: gridformula validate [-file data.csv] <formula>")
	}
	formula := fs.Arg(0)

	var columns []types.ColumnMetadata
	var opts []authoring.ValidateOption
	if *file != "" {
		tbl, err := loadTable(*file)
		if err != nil {
			return err
		}
		columns = tbl.Columns()
		if tbl.NRows() > 0 {
			opts = append(opts, authoring.WithSampleContext(tbl.Context(0)))
		}
	}
	if *column != "" {
		opts = append(opts, authoring.WithOwnColumn(*column))
	}

	return printJSON(gridformula.ValidateFormula(formula, columns, opts...))
}

func depsCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gridformula deps <formula>")
	}
	expr, err := gridformula.Parse(args[0])
	if err != nil {
		return err
	}
	for _, dep := range expr.Dependencies() {
		fmt.Println(dep)
	}
	return nil
}

func suggestCommand(args []string) error {
	fs := flag.NewFlagSet("suggest", flag.ExitOnError)
	cursor := fs.Int("cursor", -1, "cursor position (defaults to end of formula)")
	file := fs.String("file", "", "CSV or Parquet file supplying field names")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: gridformula suggest -cursor <n> <formula>")
	}
	formula := fs.Arg(0)
	if *cursor < 0 {
		*cursor = len(formula)
	}

	var columns []types.ColumnMetadata
	if *file != "" {
		tbl, err := loadTable(*file)
		if err != nil {
			return err
		}
		columns = tbl.Columns()
	}

	return printJSON(gridformula.GetAutoComplete(formula, *cursor, columns))
}

func highlightCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: gridformula highlight <formula>")
	}
	return printJSON(gridformula.GetSyntaxHighlighting(args[0]))
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
