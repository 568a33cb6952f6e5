package types

import "math/big"

// NodeKind identifies the type of an AST node.
type NodeKind string

// AST node kinds.
const (
	NodeNumber   NodeKind = "number"   // numeric or percent literal
	NodeVariable NodeKind = "variable" // named constant reference
	NodeExpr     NodeKind = "expr"     // operator application
	NodeBinding  NodeKind = "binding"  // name := body (zero parameters)
	NodeSet      NodeKind = "set"      // vector literal {...}
	NodeMatrix   NodeKind = "matrix"   // matrix literal [...]
	NodeFuncDef  NodeKind = "funcdef"  // name(params) := body
)

// Node represents anything parseable: a literal, a variable reference, an
// operator application, an assignment, a vector/matrix literal, or a
// function definition.
type Node struct {
	Kind NodeKind

	// NodeNumber
	Num       float64
	Rat       *big.Rat // set for exact integer literals
	IsPercent bool

	// NodeVariable, NodeBinding, NodeFuncDef
	Name string

	// NodeExpr. Op holds the operator resolved at parse time; it is typed
	// loosely so this package stays a leaf (the concrete type satisfies
	// operator.Operator). OpName is the canonical alias for display and
	// errors.
	Op       any
	OpName   string
	Operands []*Node

	// NodeSet, NodeMatrix
	Elems []*Node

	// NodeBinding, NodeFuncDef
	Body   *Node
	Params []string

	// Pos is the offset of the node's fragment in the normalized source.
	Pos int
}

// NumberNode creates a floating-point literal node.
func NumberNode(f float64, pos int) *Node {
	return &Node{Kind: NodeNumber, Num: f, Pos: pos}
}

// RationalNode creates an exact integer literal node.
func RationalNode(r *big.Rat, pos int) *Node {
	f, _ := r.Float64()
	return &Node{Kind: NodeNumber, Num: f, Rat: r, Pos: pos}
}

// VariableNode creates a named-constant reference node.
func VariableNode(name string, pos int) *Node {
	return &Node{Kind: NodeVariable, Name: name, Pos: pos}
}

// ExprNode creates an operator application node.
func ExprNode(op any, opName string, pos int, operands ...*Node) *Node {
	return &Node{Kind: NodeExpr, Op: op, OpName: opName, Operands: operands, Pos: pos}
}
