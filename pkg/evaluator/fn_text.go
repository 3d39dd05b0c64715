package evaluator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/gridformula/gridformula/pkg/types"
)

func fnConcatenate(s *evalState, args []types.Value) (types.Value, error) {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(arg.ToText())
	}
	return types.Text(b.String()), nil
}

func fnLeft(s *evalState, args []types.Value) (types.Value, error) {
	runes := []rune(args[0].ToText())
	count := 1
	if len(args) == 2 {
		count = intArg(args[1])
	}
	if count < 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "LEFT: negative count")
	}
	if count > len(runes) {
		count = len(runes)
	}
	return types.Text(string(runes[:count])), nil
}

func fnRight(s *evalState, args []types.Value) (types.Value, error) {
	runes := []rune(args[0].ToText())
	count := 1
	if len(args) == 2 {
		count = intArg(args[1])
	}
	if count < 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "RIGHT: negative count")
	}
	if count > len(runes) {
		count = len(runes)
	}
	return types.Text(string(runes[len(runes)-count:])), nil
}

// fnMid extracts count characters starting at a 1-based index.
func fnMid(s *evalState, args []types.Value) (types.Value, error) {
	runes := []rune(args[0].ToText())
	start := intArg(args[1])
	count := intArg(args[2])
	if start < 1 || count < 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "MID: start index and count must be positive")
	}
	from := start - 1
	if from >= len(runes) {
		return types.Text(""), nil
	}
	to := from + count
	if to > len(runes) {
		to = len(runes)
	}
	return types.Text(string(runes[from:to])), nil
}

func fnLen(s *evalState, args []types.Value) (types.Value, error) {
	return types.Number(float64(len([]rune(args[0].ToText())))), nil
}

func fnUpper(s *evalState, args []types.Value) (types.Value, error) {
	return types.Text(strings.ToUpper(args[0].ToText())), nil
}

func fnLower(s *evalState, args []types.Value) (types.Value, error) {
	return types.Text(strings.ToLower(args[0].ToText())), nil
}

func fnTrim(s *evalState, args []types.Value) (types.Value, error) {
	return types.Text(strings.TrimSpace(args[0].ToText())), nil
}

// fnFind is the case-sensitive substring search: 1-based result, optional
// 1-based start offset, error when not found.
func fnFind(s *evalState, args []types.Value) (types.Value, error) {
	needle := args[0].ToText()
	hay := []rune(args[1].ToText())
	start := 1
	if len(args) == 3 {
		start = intArg(args[2])
	}
	if start < 1 || start > len(hay)+1 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "FIND: start out of range")
	}
	idx := strings.Index(string(hay[start-1:]), needle)
	if idx < 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "FIND: text not found")
	}
	// Convert the byte offset back to a rune offset.
	runeIdx := len([]rune(string(hay[start-1:])[:idx]))
	return types.Number(float64(start + runeIdx)), nil
}

// fnSearch is the case-insensitive variant of FIND with `*` (any run) and
// `?` (any single character) wildcards in the needle.
func fnSearch(s *evalState, args []types.Value) (types.Value, error) {
	pattern := wildcardPattern(args[0].ToText())
	hay := []rune(args[1].ToText())
	start := 1
	if len(args) == 3 {
		start = intArg(args[2])
	}
	if start < 1 || start > len(hay)+1 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "SEARCH: start out of range")
	}

	re, err := regexp.Compile("(?is)" + pattern)
	if err != nil {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "SEARCH: invalid pattern")
	}
	loc := re.FindStringIndex(string(hay[start-1:]))
	if loc == nil {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "SEARCH: text not found")
	}
	runeIdx := len([]rune(string(hay[start-1:])[:loc[0]]))
	return types.Number(float64(start + runeIdx)), nil
}

// wildcardPattern converts a `*`/`?` wildcard expression into a regexp.
func wildcardPattern(s string) string {
	quoted := regexp.QuoteMeta(s)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\?`, `.`)
	return quoted
}

// fnSubstitute replaces all occurrences of old with new, or only the n-th
// (1-based) occurrence when the fourth argument is given.
func fnSubstitute(s *evalState, args []types.Value) (types.Value, error) {
	text := args[0].ToText()
	old := args[1].ToText()
	repl := args[2].ToText()
	if old == "" {
		return types.Text(text), nil
	}

	if len(args) == 3 {
		return types.Text(strings.ReplaceAll(text, old, repl)), nil
	}

	occurrence := intArg(args[3])
	if occurrence < 1 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "SUBSTITUTE: occurrence must be positive")
	}

	seen := 0
	offset := 0
	for {
		idx := strings.Index(text[offset:], old)
		if idx < 0 {
			return types.Text(text), nil
		}
		seen++
		at := offset + idx
		if seen == occurrence {
			return types.Text(text[:at] + repl + text[at+len(old):]), nil
		}
		offset = at + len(old)
	}
}

// fnReplace splices new text over count characters starting at a 1-based
// index.
func fnReplace(s *evalState, args []types.Value) (types.Value, error) {
	runes := []rune(args[0].ToText())
	start := intArg(args[1])
	count := intArg(args[2])
	repl := args[3].ToText()
	if start < 1 || count < 0 {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "REPLACE: start index and count must be positive")
	}
	from := start - 1
	if from > len(runes) {
		from = len(runes)
	}
	to := from + count
	if to > len(runes) {
		to = len(runes)
	}
	return types.Text(string(runes[:from]) + repl + string(runes[to:])), nil
}

const maxReptCount = 100000

func fnRept(s *evalState, args []types.Value) (types.Value, error) {
	count := intArg(args[1])
	if count < 0 || count > maxReptCount {
		return types.NullValue, evalErr(types.ErrInvalidArgument, "REPT: count out of range")
	}
	return types.Text(strings.Repeat(args[0].ToText(), count)), nil
}

func fnReverse(s *evalState, args []types.Value) (types.Value, error) {
	runes := []rune(args[0].ToText())
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return types.Text(string(runes)), nil
}

// fnProper title-cases the text: the first letter of every word is
// upper-cased, the rest lower-cased.
func fnProper(s *evalState, args []types.Value) (types.Value, error) {
	var b strings.Builder
	startOfWord := true
	for _, r := range args[0].ToText() {
		if unicode.IsLetter(r) {
			if startOfWord {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
			startOfWord = false
		} else {
			b.WriteRune(r)
			startOfWord = true
		}
	}
	return types.Text(b.String()), nil
}

// fnClean strips control characters.
func fnClean(s *evalState, args []types.Value) (types.Value, error) {
	var b strings.Builder
	for _, r := range args[0].ToText() {
		if r >= 0x20 && r != 0x7f {
			b.WriteRune(r)
		}
	}
	return types.Text(b.String()), nil
}

func fnExact(s *evalState, args []types.Value) (types.Value, error) {
	return types.Boolean(args[0].ToText() == args[1].ToText()), nil
}

func fnSplit(s *evalState, args []types.Value) (types.Value, error) {
	parts := strings.Split(args[0].ToText(), args[1].ToText())
	items := make([]types.Value, len(parts))
	for i, part := range parts {
		items[i] = types.Text(part)
	}
	return types.Array(items), nil
}

// fnJoin joins its arguments with the first argument as separator. Array
// arguments contribute one element per item.
func fnJoin(s *evalState, args []types.Value) (types.Value, error) {
	sep := args[0].ToText()
	var parts []string
	for _, arg := range args[1:] {
		if arg.Kind == types.KindArray {
			for _, item := range arg.Items {
				parts = append(parts, item.ToText())
			}
			continue
		}
		parts = append(parts, arg.ToText())
	}
	return types.Text(strings.Join(parts, sep)), nil
}
