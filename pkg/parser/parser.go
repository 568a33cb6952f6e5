// Package parser implements the Calque expression parser.
//
// The parser is a single-pass operator-precedence scanner with no separate
// tokenizer: operators are recognized by longest-alias match against a live,
// mutable registry, and operand boundaries are decided by look-back
// disambiguation rather than a lexer. The grammar grows during a parse —
// defining "f(x) := x^2" registers f as an operator usable for the rest of
// the same expression and for all future expressions in the session.
//
// # Architecture
//
//   - Normalization: source is lowercased and stripped of whitespace, making
//     alias matching case- and space-insensitive.
//   - Structural rules: assignment, parenthesised groups, brace (vector) and
//     bracket (matrix) literals, numeric and variable probes — tried in a
//     fixed order.
//   - Operator-precedence scan: the fallback that resolves everything else,
//     over indexable byte slices to avoid substring allocation.
//
// # Example
//
//	expr, err := parser.Compile("2 + 3 * 4", ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tree := expr.Root()
package parser

import (
	"strings"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Registry is the parser's view of the evaluation context's operator table.
// The table is owned by the context, passed by reference for the duration of
// one parse, and may grow mid-parse.
type Registry interface {
	// LookupOperator resolves a normalized alias.
	LookupOperator(alias string) (operator.Operator, bool)
	// MaxAliasLength bounds the lookahead scan.
	MaxAliasLength() int
	// IsSystemAlias reports whether name belongs to a built-in operator.
	IsSystemAlias(name string) bool
	// IsConstant reports whether name is a bound constant.
	IsConstant(name string) bool
	// RegisterCustom registers a user-synthesized operator mid-parse.
	RegisterCustom(op operator.Operator)
	// Unregister rolls back a registration whose defining expression failed.
	Unregister(aliases ...string)
	// Version is the registry mutation counter, recorded on compiled
	// expressions for cache invalidation.
	Version() uint64
}

// Compile parses an expression against the registry and returns the
// compiled Expression.
func Compile(src string, reg Registry, opts ...CompileOption) (*types.Expression, error) {
	return NewParser(src, reg, opts...).Parse()
}

// CompileOption configures parsing behavior.
type CompileOption func(*CompileOptions)

// CompileOptions holds parser configuration.
type CompileOptions struct {
	// MaxDepth limits grammar recursion depth to prevent stack exhaustion
	// on pathological input.
	MaxDepth int
}

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) CompileOption {
	return func(o *CompileOptions) { o.MaxDepth = depth }
}

// Parser parses one expression. It is single-use.
type Parser struct {
	src  string // normalized source
	orig string // source as given
	reg  Registry
	opts CompileOptions
}

// NewParser creates a parser for the given input.
func NewParser(input string, reg Registry, opts ...CompileOption) *Parser {
	options := CompileOptions{MaxDepth: 200}
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{
		src:  normalize(input),
		orig: input,
		reg:  reg,
		opts: options,
	}
}

// Parse parses the entire expression and returns the compiled Expression.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.src == "" {
		return nil, types.NewError(types.ErrEmptyExpression, "empty expression", 0)
	}
	node, err := p.parseNode(0, len(p.src), 0)
	if err != nil {
		return nil, err
	}
	return types.NewExpression(node, p.orig, p.reg.Version()), nil
}

// normalize lowercases the source and strips whitespace; aliases and names
// are matched case- and space-insensitively.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '\t', '\n', '\r', '\v':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
