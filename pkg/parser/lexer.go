package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gridformula/gridformula/pkg/types"
)

const eof = -1

// Lexer converts a formula string into a sequence of tokens.
// The implementation is based on Rob Pike's "Lexical Scanning in Go"
// technique: rune-at-a-time scanning with a one-rune backup, no further
// lookahead.
type Lexer struct {
	input   string // Input string being scanned
	length  int    // Length of input string
	start   int    // Start position of current token
	current int    // Current position in input
	width   int    // Width of last rune read
	err     error  // First error encountered
}

// NewLexer creates a new lexer from the provided input string.
// The input is tokenized by successive calls to the Next method.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
	}
}

// Next returns the next token from the input.
// When the end of the input is reached, Next returns TokenEOF for all
// subsequent calls. After a lexing error it returns TokenError; the error
// itself is available from Error.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	ch := l.nextRune()
	if ch == eof {
		return l.eof()
	}

	// Check for two-character symbols first (==, !=, <=, >=)
	if rts := lookupSymbol2(ch); rts != nil {
		for _, rt := range rts {
			if l.acceptRune(rt.r) {
				return l.newToken(rt.tt)
			}
		}
	}

	// Check for single-character symbols
	if tt := lookupSymbol1(ch); tt > 0 {
		return l.newToken(tt)
	}

	// String literals. No escape sequences: the literal ends at the next
	// double quote, so a string cannot contain a literal quote.
	if ch == '"' {
		l.ignore()
		return l.scanString(ch)
	}

	// Field references: the content between brackets is the column's
	// display name, taken verbatim.
	if ch == '[' {
		l.ignore()
		return l.scanFieldRef()
	}

	// Number literals
	if ch >= '0' && ch <= '9' {
		l.backup()
		return l.scanNumber()
	}

	// Identifiers and function names
	if isIdentStart(ch) {
		l.backup()
		return l.scanIdent()
	}

	return l.error(types.ErrUnexpectedChar, fmt.Sprintf("Unexpected character %q", ch))
}

// Error returns the first error encountered during lexing, if any.
func (l *Lexer) Error() error {
	return l.err
}

// Tokenize scans the whole input and returns the token list, excluding the
// trailing EOF token. It fails on the first lexing error.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		t := l.Next()
		switch t.Type {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return nil, l.Error()
		}
		tokens = append(tokens, t)
	}
}

// scanString reads a string literal from the current position.
// The opening quote has already been consumed.
func (l *Lexer) scanString(quote rune) Token {
Loop:
	for {
		switch l.nextRune() {
		case quote:
			break Loop
		case eof:
			return l.error(types.ErrStringNotClosed, "Unterminated string literal")
		}
	}

	l.backup()
	t := l.newToken(TokenString)
	l.acceptRune(quote)
	l.ignore()
	return t
}

// scanFieldRef reads a field reference from the current position.
// The opening bracket has already been consumed.
func (l *Lexer) scanFieldRef() Token {
Loop:
	for {
		switch l.nextRune() {
		case ']':
			break Loop
		case eof:
			return l.error(types.ErrFieldRefNotClosed, "Unterminated field reference")
		}
	}

	l.backup()
	t := l.newToken(TokenFieldRef)
	l.acceptRune(']')
	l.ignore()
	return t
}

// scanNumber reads a number literal from the current position.
// A digit starts the literal, which also consumes embedded dots. There is
// no exponent or sign handling; a leading '-' is lexed as a separate
// operator token and resolved by the parser as unary negation.
func (l *Lexer) scanNumber() Token {
	l.acceptAll(func(r rune) bool {
		return isDigit(r) || r == '.'
	})
	return l.newToken(TokenNumber)
}

// scanIdent reads an identifier from the current position.
// An identifier is one or more letters/digits/underscores starting with a
// letter or underscore. If it is immediately followed by '(' it is a
// function name and is upper-cased; AND/OR/NOT are NOT reserved words here,
// the parser disambiguates them by text.
func (l *Lexer) scanIdent() Token {
	l.accept(isIdentStart)
	l.acceptAll(isIdentPart)

	t := l.newToken(TokenIdent)
	if l.current < l.length && l.input[l.current] == '(' {
		t.Type = TokenFuncName
		t.Value = strings.ToUpper(t.Value)
	}
	return t
}

// Helper methods

func (l *Lexer) eof() Token {
	return Token{
		Type:     TokenEOF,
		Position: l.current,
	}
}

func (l *Lexer) error(code types.ErrorCode, message string) Token {
	t := l.newToken(TokenError)
	l.err = &types.Error{
		Code:     code,
		Message:  message,
		Position: t.Position,
		Token:    t.Value,
	}
	return t
}

func (l *Lexer) newToken(tt TokenType) Token {
	t := Token{
		Type:     tt,
		Value:    l.input[l.start:l.current],
		Position: l.start,
	}
	l.width = 0
	l.start = l.current
	return t
}

func (l *Lexer) nextRune() rune {
	if l.err != nil || l.current >= l.length {
		l.width = 0
		return eof
	}

	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.current
}

func (l *Lexer) acceptRune(r rune) bool {
	return l.accept(func(c rune) bool {
		return c == r
	})
}

func (l *Lexer) accept(isValid func(rune) bool) bool {
	if isValid(l.nextRune()) {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) bool {
	var matched bool
	for l.accept(isValid) {
		matched = true
	}
	return matched
}

func (l *Lexer) skipWhitespace() {
	l.acceptAll(isWhitespace)
	l.ignore()
}

// Character classification functions

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || isDigit(r)
}
