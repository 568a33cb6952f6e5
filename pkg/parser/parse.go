package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// parseNode parses src[lo:hi] with the full grammar, trying each structural
// rule in fixed order before falling back to the operator-precedence scan.
func (p *Parser) parseNode(lo, hi, depth int) (*types.Node, error) {
	if depth > p.opts.MaxDepth {
		return nil, types.NewError(types.ErrDepthExceeded, "expression nested too deeply", lo)
	}
	if lo >= hi {
		return nil, types.NewError(types.ErrMissingOperand, "missing operand", lo)
	}

	// 1. Assignment.
	if idx := p.findAssign(lo, hi); idx >= 0 {
		return p.parseAssignment(lo, idx, hi, depth)
	}

	// 2. Parenthesised group spanning the whole fragment.
	if p.src[lo] == '(' && p.matchingClose(lo, hi) == hi-1 {
		if p.hasTopLevelComma(lo+1, hi-1) {
			return p.parseSet(lo+1, hi-1, depth, types.NodeSet)
		}
		return p.parseNode(lo+1, hi-1, depth+1)
	}

	// 3. Brace group: vector literal.
	if p.src[lo] == '{' && p.matchingClose(lo, hi) == hi-1 {
		return p.parseSet(lo+1, hi-1, depth, types.NodeSet)
	}

	// 4. Bracket group: matrix literal.
	if p.src[lo] == '[' && p.matchingClose(lo, hi) == hi-1 {
		return p.parseSet(lo+1, hi-1, depth, types.NodeMatrix)
	}

	// 5. Numeric literal.
	if n := p.parseNumber(lo, hi); n != nil {
		return n, nil
	}

	// 6. Variable probe.
	if p.isVariable(lo, hi) {
		return types.VariableNode(p.src[lo:hi], lo), nil
	}

	// 7. Operator-precedence scan.
	return p.parseScan(lo, hi, depth)
}

// findAssign returns the index of a top-level ":=", or -1.
func (p *Parser) findAssign(lo, hi int) int {
	depth := 0
	for i := lo; i < hi-1; i++ {
		switch p.src[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		case ':':
			if depth == 0 && p.src[i+1] == '=' {
				return i
			}
		}
	}
	return -1
}

// parseAssignment parses "target := body". A function-call-shaped target
// with at least one formal parameter defines a custom operator, registered
// immediately so it is usable for the remainder of this parse and the rest
// of the session; a bare name binds a constant at evaluation time. A body
// that fails to parse rolls the registration back, leaving the context
// unmodified.
func (p *Parser) parseAssignment(lo, at, hi, depth int) (*types.Node, error) {
	target := p.src[lo:at]
	bodyLo := at + 2
	if bodyLo >= hi {
		return nil, types.NewError(types.ErrMissingOperand, "missing right-hand side of :=", at)
	}

	name := target
	var params []string
	if open := strings.IndexByte(target, '('); open >= 0 {
		if !strings.HasSuffix(target, ")") {
			return nil, types.NewError(types.ErrBadAssignTarget,
				fmt.Sprintf("malformed assignment target %q", target), lo).WithToken(target)
		}
		name = target[:open]
		inner := target[open+1 : len(target)-1]
		if inner != "" {
			for _, param := range strings.Split(inner, ",") {
				if !isName(param) {
					return nil, types.NewError(types.ErrBadAssignTarget,
						fmt.Sprintf("invalid parameter name %q", param), lo).WithToken(param)
				}
				params = append(params, param)
			}
		}
	}

	if !isName(name) {
		return nil, types.NewError(types.ErrBadAssignTarget,
			fmt.Sprintf("invalid assignment target %q", name), lo).WithToken(name)
	}
	if p.reg.IsSystemAlias(name) {
		return nil, types.NewError(types.ErrVariableIsOperator,
			fmt.Sprintf("%q is an operator name", name), lo).WithToken(name)
	}

	if len(params) == 0 {
		body, err := p.parseNode(bodyLo, hi, depth+1)
		if err != nil {
			return nil, err
		}
		return &types.Node{Kind: types.NodeBinding, Name: name, Body: body, Pos: lo}, nil
	}

	// Register before parsing the body so the definition can be used by the
	// rest of this parse (including self-reference). A redefinition must
	// restore the prior operator if the body fails, so a failed := leaves
	// the context unmodified.
	prior, hadPrior := p.reg.LookupOperator(name)
	fn := &types.Function{Name: name, Params: params}
	p.reg.RegisterCustom(operator.NewCustom(fn))
	body, err := p.parseNode(bodyLo, hi, depth+1)
	if err != nil {
		if hadPrior {
			p.reg.RegisterCustom(prior)
		} else {
			p.reg.Unregister(name)
		}
		return nil, err
	}
	fn.Body = body
	return &types.Node{Kind: types.NodeFuncDef, Name: name, Params: params, Body: body, Pos: lo}, nil
}

// parseSet parses a comma-separated element list into a Set (vector) or
// Matrix node. Elements are split by scanning bracket depth so nested
// vectors, matrices, and function calls inside elements are respected.
func (p *Parser) parseSet(lo, hi, depth int, kind types.NodeKind) (*types.Node, error) {
	segs, err := p.splitTopLevel(lo, hi)
	if err != nil {
		return nil, err
	}
	elems := make([]*types.Node, len(segs))
	for i, seg := range segs {
		el, err := p.parseNode(seg[0], seg[1], depth+1)
		if err != nil {
			return nil, err
		}
		elems[i] = el
	}
	return &types.Node{Kind: kind, Elems: elems, Pos: lo}, nil
}

// splitTopLevel splits src[lo:hi] into comma-separated segments at bracket
// depth zero.
func (p *Parser) splitTopLevel(lo, hi int) ([][2]int, error) {
	var segs [][2]int
	depth := 0
	start := lo
	for i := lo; i < hi; i++ {
		switch p.src[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth < 0 {
				return nil, types.NewError(types.ErrUnmatchedBracket, "unmatched closing bracket", i)
			}
		case ',':
			if depth == 0 {
				segs = append(segs, [2]int{start, i})
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, types.NewError(types.ErrUnmatchedBracket, "unmatched opening bracket", lo)
	}
	segs = append(segs, [2]int{start, hi})
	return segs, nil
}

// hasTopLevelComma reports whether src[lo:hi] has a depth-zero comma,
// distinguishing call tuples from plain groups.
func (p *Parser) hasTopLevelComma(lo, hi int) bool {
	depth := 0
	for i := lo; i < hi; i++ {
		switch p.src[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		case ',':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}

// matchingClose returns the index of the bracket closing src[lo], or -1.
func (p *Parser) matchingClose(lo, hi int) int {
	depth := 0
	for i := lo; i < hi; i++ {
		switch p.src[i] {
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseNumber probes src[lo:hi] as a numeric literal. Plain integers become
// exact rationals; decimals and scientific notation become floats; a
// trailing % yields a percent literal.
func (p *Parser) parseNumber(lo, hi int) *types.Node {
	seg := p.src[lo:hi]
	percent := false
	if strings.HasSuffix(seg, "%") {
		percent = true
		seg = seg[:len(seg)-1]
	}
	if seg == "" {
		return nil
	}
	f, err := strconv.ParseFloat(seg, 64)
	if err != nil {
		return nil
	}
	if percent {
		return &types.Node{Kind: types.NodeNumber, Num: f, IsPercent: true, Pos: lo}
	}
	if isAllDigits(strings.TrimPrefix(seg, "-")) {
		if r, ok := new(big.Rat).SetString(seg); ok {
			return types.RationalNode(r, lo)
		}
	}
	return types.NumberNode(f, lo)
}

// isVariable implements the variable probe: a name-like run with no
// disallowed symbols that either is a known constant or contains no
// operator alias at all.
func (p *Parser) isVariable(lo, hi int) bool {
	seg := p.src[lo:hi]
	if !isName(seg) {
		return false
	}
	if p.reg.IsConstant(seg) {
		return true
	}
	return !p.containsAlias(lo, hi)
}

// containsAlias reports whether any registered operator alias occurs as a
// substring of src[lo:hi].
func (p *Parser) containsAlias(lo, hi int) bool {
	for i := lo; i < hi; i++ {
		max := p.reg.MaxAliasLength()
		if max > hi-i {
			max = hi - i
		}
		for l := max; l >= 1; l-- {
			if _, ok := p.reg.LookupOperator(p.src[i : i+l]); ok {
				return true
			}
		}
	}
	return false
}

// isName reports whether s is a valid variable or parameter name: letters,
// digits and underscores, not starting with a digit. The disallowed symbols
// ()[]{}.<>&=| are excluded by construction.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c == '_':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}
