package authoring

import (
	"strings"

	"github.com/gridformula/gridformula/pkg/parser"
)

// TokenKind classifies a span of formula text for an editor highlighter.
type TokenKind string

const (
	KindNumber      TokenKind = "number"
	KindString      TokenKind = "string"
	KindField       TokenKind = "field"
	KindFunction    TokenKind = "function"
	KindIdentifier  TokenKind = "identifier"
	KindOperator    TokenKind = "operator"
	KindPunctuation TokenKind = "punctuation"
)

// SyntaxToken is one highlighted span. Offsets are byte offsets into the
// formula; End is exclusive.
type SyntaxToken struct {
	Kind  TokenKind `json:"kind"`
	Text  string    `json:"text"`
	Start int       `json:"start"`
	End   int       `json:"end"`
}

// SyntaxHighlighting classifies the formula into highlight spans. Complete
// formulas go through the real tokenizer; when tokenization fails, as it
// does for a formula still being typed, a best-effort scanner classifies
// what it can so the editor highlights something rather than nothing.
func SyntaxHighlighting(formula string) []SyntaxToken {
	tokens, err := parser.Tokenize(formula)
	if err != nil {
		return fallbackHighlight(formula)
	}

	out := make([]SyntaxToken, 0, len(tokens))
	for _, t := range tokens {
		start := t.Position
		end := t.Position + len(t.Value)
		switch t.Type {
		// String and field tokens carry the content only; grow the span
		// to cover the delimiters.
		case parser.TokenString, parser.TokenFieldRef:
			start--
			end++
		}
		out = append(out, SyntaxToken{
			Kind:  tokenKind(t),
			Text:  formula[start:end],
			Start: start,
			End:   end,
		})
	}
	return out
}

func tokenKind(t parser.Token) TokenKind {
	switch t.Type {
	case parser.TokenNumber:
		return KindNumber
	case parser.TokenString:
		return KindString
	case parser.TokenFieldRef:
		return KindField
	case parser.TokenFuncName:
		return KindFunction
	case parser.TokenIdent:
		return KindIdentifier
	case parser.TokenParenOpen, parser.TokenParenClose, parser.TokenComma:
		return KindPunctuation
	default:
		return KindOperator
	}
}

const operatorChars = "+-*/&=!<>"

// fallbackHighlight scans left to right without failing: bracketed spans
// are fields, quoted spans are strings, digit runs are numbers, upper-case
// letter runs followed by '(' are functions, operator characters are
// operators. Unterminated spans extend to the end of the input.
func fallbackHighlight(formula string) []SyntaxToken {
	var out []SyntaxToken
	emit := func(kind TokenKind, start, end int) {
		out = append(out, SyntaxToken{
			Kind:  kind,
			Text:  formula[start:end],
			Start: start,
			End:   end,
		})
	}

	i := 0
	for i < len(formula) {
		c := formula[i]
		switch {
		case c == '[':
			end := strings.IndexByte(formula[i:], ']')
			if end < 0 {
				emit(KindField, i, len(formula))
				return out
			}
			emit(KindField, i, i+end+1)
			i += end + 1
		case c == '"':
			end := strings.IndexByte(formula[i+1:], '"')
			if end < 0 {
				emit(KindString, i, len(formula))
				return out
			}
			emit(KindString, i, i+end+2)
			i += end + 2
		case c >= '0' && c <= '9':
			end := i
			for end < len(formula) && (formula[end] >= '0' && formula[end] <= '9' || formula[end] == '.') {
				end++
			}
			emit(KindNumber, i, end)
			i = end
		case c >= 'A' && c <= 'Z':
			end := i
			for end < len(formula) && formula[end] >= 'A' && formula[end] <= 'Z' {
				end++
			}
			if end < len(formula) && formula[end] == '(' {
				emit(KindFunction, i, end)
			} else {
				emit(KindIdentifier, i, end)
			}
			i = end
		case strings.IndexByte(operatorChars, c) >= 0:
			emit(KindOperator, i, i+1)
			i++
		case c == '(' || c == ')' || c == ',':
			emit(KindPunctuation, i, i+1)
			i++
		default:
			i++
		}
	}
	return out
}
