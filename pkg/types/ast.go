package types

// NodeType identifies the type of an AST node.
//
// The node set is closed: every consumer (evaluator, dependency extractor,
// highlighter) switches exhaustively over these six kinds.
type NodeType uint8

const (
	// NodeNumber is a numeric literal, e.g. 3.14.
	NodeNumber NodeType = iota
	// NodeString is a string literal, e.g. "hello".
	NodeString
	// NodeField is a field reference, e.g. [Unit Price].
	NodeField
	// NodeBinary is a binary operation, e.g. a + b, a AND b.
	NodeBinary
	// NodeUnary is a prefix operation, e.g. -a, !a, NOT a.
	NodeUnary
	// NodeCall is a function call, e.g. SUM(1, 2, 3).
	NodeCall
)

// String returns a string representation of the node type.
func (nt NodeType) String() string {
	switch nt {
	case NodeNumber:
		return "number"
	case NodeString:
		return "string"
	case NodeField:
		return "field"
	case NodeBinary:
		return "binary"
	case NodeUnary:
		return "unary"
	case NodeCall:
		return "call"
	default:
		return "unknown"
	}
}

// ASTNode represents a node in the abstract syntax tree of a formula.
//
// Nodes own their children exclusively; a tree produced by the parser is
// never shared between expressions and never contains cycles. Which fields
// are meaningful depends on Type:
//
//	NodeNumber: NumValue
//	NodeString: StrValue
//	NodeField:  Name
//	NodeBinary: Op, Left, Right
//	NodeUnary:  Op, Operand
//	NodeCall:   Name (upper-cased), Args
type ASTNode struct {
	Type     NodeType
	Position int // byte offset of the node's first token in the source

	NumValue float64 // NodeNumber
	StrValue string  // NodeString
	Name     string  // NodeField (display name) or NodeCall (function name)
	Op       string  // NodeBinary / NodeUnary operator symbol ("+", "==", "OR", ...)

	Left    *ASTNode   // NodeBinary
	Right   *ASTNode   // NodeBinary
	Operand *ASTNode   // NodeUnary
	Args    []*ASTNode // NodeCall, ordered
}

// NewASTNode creates a new AST node of the specified type.
func NewASTNode(nodeType NodeType, position int) *ASTNode {
	return &ASTNode{
		Type:     nodeType,
		Position: position,
	}
}

// String returns a string representation of the node type.
func (n *ASTNode) String() string {
	return n.Type.String()
}
