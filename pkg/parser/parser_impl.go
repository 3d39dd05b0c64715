package parser

import (
	"fmt"
	"strconv"

	"github.com/gridformula/gridformula/pkg/types"
)

// Parser implements a recursive descent parser for formulas. Each grammar
// level parses the next-higher level on both sides and loops while the
// current token matches its own operator set, which makes every binary
// level left-associative.
type Parser struct {
	lexer   *Lexer
	current Token
	opts    ParseOptions
	depth   int
}

// NewParser creates a new parser for the given formula.
func NewParser(formula string, opts ...ParseOption) *Parser {
	options := ParseOptions{
		MaxDepth: 100,
	}
	for _, opt := range opts {
		opt(&options)
	}

	p := &Parser{
		lexer: NewLexer(formula),
		opts:  options,
	}

	// Read the first token
	p.advance()

	return p
}

// Parse parses the entire formula and returns the compiled Expression.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}

	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrSyntaxError, "Empty formula")
	}

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.current.Type == TokenError {
		return nil, p.lexer.Error()
	}
	if p.current.Type != TokenEOF {
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected token: %s", p.tokenText()))
	}

	return types.NewExpression(node, p.lexer.input, ExtractDependencies(node)), nil
}

// advance moves to the next token.
func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

// expect checks that the current token matches the expected type and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(types.ErrExpectedToken, fmt.Sprintf("Expected %s but got %s", tt.String(), p.tokenText()))
	}
	p.advance()
	return nil
}

// tokenText describes the current token for error messages.
func (p *Parser) tokenText() string {
	switch p.current.Type {
	case TokenEOF:
		return "end of formula"
	case TokenError:
		return "(error)"
	default:
		if p.current.Value != "" {
			return fmt.Sprintf("%q", p.current.Value)
		}
		return p.current.Type.String()
	}
}

// error creates a parser error at the current token.
func (p *Parser) error(code types.ErrorCode, message string) error {
	return &types.Error{
		Code:     code,
		Message:  message,
		Position: p.current.Position,
		Token:    p.current.Value,
	}
}

// enter guards against pathologically deep input. Every recursive descent
// into a sub-expression passes through here.
func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return p.error(types.ErrTooDeep, "Formula is nested too deeply")
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// isKeyword reports whether the current token is a bare identifier with the
// given exact text. AND, OR and NOT are not reserved words at the lexer
// stage; they are recognized here by identifier-text comparison.
func (p *Parser) isKeyword(word string) bool {
	return p.current.Type == TokenIdent && p.current.Value == word
}

// parseOr parses the lowest-precedence level: logical OR.
func (p *Parser) parseOr() (*types.ASTNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.isKeyword("OR") {
		pos := p.current.Position
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = binaryNode("OR", pos, left, right)
	}

	return left, nil
}

// parseAnd parses logical AND.
func (p *Parser) parseAnd() (*types.ASTNode, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	for p.isKeyword("AND") {
		pos := p.current.Position
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = binaryNode("AND", pos, left, right)
	}

	return left, nil
}

// parseEquality parses == and !=.
func (p *Parser) parseEquality() (*types.ASTNode, error) {
	return p.parseBinaryLevel(p.parseComparison, TokenEqual, TokenNotEqual)
}

// parseComparison parses <, <=, > and >=.
func (p *Parser) parseComparison() (*types.ASTNode, error) {
	return p.parseBinaryLevel(p.parseConcat, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual)
}

// parseConcat parses the & text concatenation operator.
func (p *Parser) parseConcat() (*types.ASTNode, error) {
	return p.parseBinaryLevel(p.parseAdditive, TokenConcat)
}

// parseAdditive parses + and -.
func (p *Parser) parseAdditive() (*types.ASTNode, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, TokenPlus, TokenMinus)
}

// parseMultiplicative parses * and /.
func (p *Parser) parseMultiplicative() (*types.ASTNode, error) {
	return p.parseBinaryLevel(p.parseUnary, TokenMult, TokenDiv)
}

// parseBinaryLevel parses one left-associative binary precedence level.
func (p *Parser) parseBinaryLevel(next func() (*types.ASTNode, error), ops ...TokenType) (*types.ASTNode, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for matchesAny(p.current.Type, ops) {
		op := p.current
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = binaryNode(op.Type.String(), op.Position, left, right)
	}

	return left, nil
}

// parseUnary parses the prefix operators - and !/NOT.
func (p *Parser) parseUnary() (*types.ASTNode, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	var op string
	switch {
	case p.current.Type == TokenMinus:
		op = "-"
	case p.current.Type == TokenNot:
		op = "!"
	case p.isKeyword("NOT"):
		op = "NOT"
	default:
		return p.parsePrimary()
	}

	pos := p.current.Position
	p.advance()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	node := types.NewASTNode(types.NodeUnary, pos)
	node.Op = op
	node.Operand = operand
	return node, nil
}

// parsePrimary parses a literal, field reference, function call or
// parenthesized expression.
func (p *Parser) parsePrimary() (*types.ASTNode, error) {
	token := p.current

	switch token.Type {
	case TokenNumber:
		return p.parseNumber()
	case TokenString:
		node := types.NewASTNode(types.NodeString, token.Position)
		node.StrValue = token.Value
		p.advance()
		return node, nil
	case TokenFieldRef:
		node := types.NewASTNode(types.NodeField, token.Position)
		node.Name = token.Value
		p.advance()
		return node, nil
	case TokenFuncName:
		return p.parseCall()
	case TokenParenOpen:
		return p.parseGrouping()
	case TokenError:
		return nil, p.lexer.Error()
	case TokenEOF:
		return nil, p.error(types.ErrSyntaxError, "Unexpected end of formula")
	default:
		// A bare identifier lands here too: AND/OR/NOT used where an
		// operand is expected is rejected like any other stray word.
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected token: %s", p.tokenText()))
	}
}

// parseNumber parses a number literal.
func (p *Parser) parseNumber() (*types.ASTNode, error) {
	val, err := strconv.ParseFloat(p.current.Value, 64)
	if err != nil {
		return nil, p.error(types.ErrInvalidNumber, fmt.Sprintf("Invalid number: %s", p.current.Value))
	}

	node := types.NewASTNode(types.NodeNumber, p.current.Position)
	node.NumValue = val
	p.advance()
	return node, nil
}

// parseCall parses a function call: NAME(arg, arg, ...), zero or more
// comma-separated arguments. The lexer guarantees the '(' is adjacent.
func (p *Parser) parseCall() (*types.ASTNode, error) {
	node := types.NewASTNode(types.NodeCall, p.current.Position)
	node.Name = p.current.Value
	node.Args = []*types.ASTNode{}
	p.advance()

	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	if p.current.Type != TokenParenClose {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			node.Args = append(node.Args, arg)

			if p.current.Type == TokenParenClose {
				break
			}
			if err := p.expect(TokenComma); err != nil {
				return nil, err
			}
		}
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return node, nil
}

// parseGrouping parses a parenthesized expression.
func (p *Parser) parseGrouping() (*types.ASTNode, error) {
	p.advance() // Skip '('

	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}

	return node, nil
}

func binaryNode(op string, pos int, left, right *types.ASTNode) *types.ASTNode {
	node := types.NewASTNode(types.NodeBinary, pos)
	node.Op = op
	node.Left = left
	node.Right = right
	return node
}

func matchesAny(tt TokenType, ops []TokenType) bool {
	for _, op := range ops {
		if tt == op {
			return true
		}
	}
	return false
}
