package types

// Expression represents a compiled Calque expression.
//
// An Expression can be evaluated many times against the same session context
// without re-parsing; solvers and integrators rely on this path. Because the
// grammar grows with the session (user-defined operators), an Expression is
// only meaningful against the context it was compiled with.
type Expression struct {
	root    *Node
	source  string
	version uint64
}

// NewExpression creates a new Expression from a parsed tree. version is the
// operator-registry version the source was parsed against.
func NewExpression(root *Node, source string, version uint64) *Expression {
	return &Expression{
		root:    root,
		source:  source,
		version: version,
	}
}

// Root returns the root node of the tree.
func (e *Expression) Root() *Node {
	return e.root
}

// Source returns the original source text of the expression.
func (e *Expression) Source() string {
	return e.source
}

// Version returns the registry version the expression was compiled against.
// Cached expressions are discarded when the registry has grown since.
func (e *Expression) Version() uint64 {
	return e.version
}

// String returns the source text.
func (e *Expression) String() string {
	return e.source
}
