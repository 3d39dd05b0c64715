package parser

import (
	"github.com/gridformula/gridformula/pkg/types"
)

// ExtractDependencies collects the set of column names referenced by the
// formula: a pure traversal over the tree that records the name of every
// field-reference node, deduplicated, in source order. A nil tree yields
// nil.
func ExtractDependencies(node *types.ASTNode) []string {
	var names []string
	seen := make(map[string]struct{})

	var walk func(n *types.ASTNode)
	walk = func(n *types.ASTNode) {
		if n == nil {
			return
		}
		switch n.Type {
		case types.NodeField:
			if _, ok := seen[n.Name]; !ok {
				seen[n.Name] = struct{}{}
				names = append(names, n.Name)
			}
		case types.NodeBinary:
			walk(n.Left)
			walk(n.Right)
		case types.NodeUnary:
			walk(n.Operand)
		case types.NodeCall:
			for _, arg := range n.Args {
				walk(arg)
			}
		}
	}
	walk(node)

	return names
}

// CountCalls returns the number of function-call nodes in the tree. The
// authoring service uses it for its complexity warnings.
func CountCalls(node *types.ASTNode) int {
	if node == nil {
		return 0
	}
	count := 0
	switch node.Type {
	case types.NodeCall:
		count = 1
		for _, arg := range node.Args {
			count += CountCalls(arg)
		}
	case types.NodeBinary:
		count = CountCalls(node.Left) + CountCalls(node.Right)
	case types.NodeUnary:
		count = CountCalls(node.Operand)
	}
	return count
}

// CalledFunctions returns the distinct function names called by the tree.
func CalledFunctions(node *types.ASTNode) []string {
	var names []string
	seen := make(map[string]struct{})

	var walk func(n *types.ASTNode)
	walk = func(n *types.ASTNode) {
		if n == nil {
			return
		}
		switch n.Type {
		case types.NodeCall:
			if _, ok := seen[n.Name]; !ok {
				seen[n.Name] = struct{}{}
				names = append(names, n.Name)
			}
			for _, arg := range n.Args {
				walk(arg)
			}
		case types.NodeBinary:
			walk(n.Left)
			walk(n.Right)
		case types.NodeUnary:
			walk(n.Operand)
		}
	}
	walk(node)

	return names
}
