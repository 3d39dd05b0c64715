package authoring

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gridformula/gridformula/pkg/evaluator"
	"github.com/gridformula/gridformula/pkg/types"
)

// AutoCompleteResult holds the suggestions for a cursor position. Position
// is the offset where the suggested text would be inserted, the start of
// the prefix being completed.
type AutoCompleteResult struct {
	Suggestions []string `json:"suggestions"`
	Position    int      `json:"position"`
}

// operatorSuggestions are offered after a completed operand.
var operatorSuggestions = []string{
	"&", "!=", "*", "+", "-", "/", "<", "<=", "==", ">", ">=", "AND", "OR",
}

// AutoComplete suggests completions for the formula text at the cursor.
// The text immediately before the cursor decides the category: field names
// inside an unclosed bracket, function names while typing an identifier,
// operators right after an operand, otherwise the full function list.
func AutoComplete(formula string, cursor int, columns []types.ColumnMetadata) AutoCompleteResult {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(formula) {
		cursor = len(formula)
	}
	before := formula[:cursor]

	// Inside an open field reference: the last '[' with no ']' after it.
	if open := strings.LastIndexByte(before, '['); open >= 0 && strings.LastIndexByte(before, ']') < open {
		prefix := before[open+1:]
		return AutoCompleteResult{
			Suggestions: filterPrefix(columnNames(columns), prefix),
			Position:    open + 1,
		}
	}

	// In the middle of an identifier: complete function names. A run that
	// starts with a digit is a number literal, not an identifier.
	start := cursor
	for start > 0 {
		r, width := utf8.DecodeLastRuneInString(before[:start])
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			start -= width
			continue
		}
		break
	}
	if start < cursor && !isDigitByte(before[start]) {
		return AutoCompleteResult{
			Suggestions: filterPrefix(evaluator.FunctionNames(), before[start:cursor]),
			Position:    start,
		}
	}

	// Right after an operand: offer operators.
	if trimmed := strings.TrimRight(before, " \t\n\r"); trimmed != "" {
		switch last := trimmed[len(trimmed)-1]; {
		case last == ']' || last == ')' || last == '"' || isDigitByte(last):
			return AutoCompleteResult{
				Suggestions: operatorSuggestions,
				Position:    cursor,
			}
		}
	}

	return AutoCompleteResult{
		Suggestions: evaluator.FunctionNames(),
		Position:    cursor,
	}
}

func columnNames(columns []types.ColumnMetadata) []string {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	return names
}

// filterPrefix keeps the candidates matching the prefix case-insensitively,
// sorted alphabetically.
func filterPrefix(candidates []string, prefix string) []string {
	lower := strings.ToLower(prefix)
	matched := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			matched = append(matched, c)
		}
	}
	sort.Strings(matched)
	return matched
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}
