package parser

import (
	"fmt"
	"math"
	"math/big"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// parseScan is the general operator-precedence scan: walk left to right,
// recognizing operators by longest-alias match and greedily collecting
// balanced-bracket-aware argument runs between them. Operators that bind
// more tightly than the active one are consumed into the argument and
// resolved by recursion; equal or looser ones end it. A leading + or - with
// no left operand is rewritten as 0 <op> rhs.
func (p *Parser) parseScan(lo, hi, depth int) (*types.Node, error) {
	var left *types.Node
	var pending operator.Operator
	var pendingAlias string
	var pendingPos int

	i := lo
	for i < hi {
		if op, n, alias := p.matchOperator(i, hi); op != nil {
			switch {
			case left == nil && pending == nil:
				if operator.IsBinary(op) {
					if alias != "+" && alias != "-" {
						return nil, types.NewError(types.ErrMissingOperand,
							fmt.Sprintf("operator %q is missing its left operand", alias), i).WithToken(alias)
					}
					left = types.RationalNode(new(big.Rat), i) // implicit zero
				}
				pending, pendingAlias, pendingPos = op, alias, i
				i += n
				continue
			case pending == nil:
				// Have a left operand; only a binary operator may follow.
				if !operator.IsBinary(op) {
					return nil, types.NewError(types.ErrUnknownToken,
						fmt.Sprintf("unexpected operator %q", alias), i).WithToken(alias)
				}
				pending, pendingAlias, pendingPos = op, alias, i
				i += n
				continue
			}
			// pending != nil: the operator starts the argument run and is
			// consumed by the collection below.
		}

		j, err := p.collectArgument(i, hi, pending)
		if err != nil {
			return nil, err
		}
		if pending == nil && left == nil && i == lo && j == hi {
			// No operator anywhere in the fragment: every structural rule
			// already failed and the scan cannot split it further.
			return nil, types.NewError(types.ErrUnknownToken,
				fmt.Sprintf("unrecognized token %q", p.src[lo:hi]), lo).WithToken(p.src[lo:hi])
		}
		arg, err := p.parseNode(i, j, depth+1)
		if err != nil {
			return nil, err
		}

		switch {
		case pending == nil:
			left = arg
		case operator.IsBinary(pending):
			left = types.ExprNode(pending, pendingAlias, pendingPos, left, arg)
		default:
			left = types.ExprNode(pending, pendingAlias, pendingPos, arg)
		}
		pending, pendingAlias = nil, ""
		i = j
	}

	if pending != nil {
		return nil, types.NewError(types.ErrMissingOperand,
			fmt.Sprintf("operator %q is missing its right operand", pendingAlias), pendingPos).WithToken(pendingAlias)
	}
	if left == nil {
		return nil, types.NewError(types.ErrMissingOperand, "missing operand", lo)
	}
	return left, nil
}

// collectArgument returns the end of the argument run starting at start: a
// balanced-bracket-aware span that ends at the first top-level operator
// binding no more tightly than the active one. The look-back check keeps
// the run open when its own trailing alias is a binary operator (the
// boundary is then a sign on the next operand, as in "3*-4"), and a +/-
// directly after a numeric exponent marker stays part of the literal.
func (p *Parser) collectArgument(start, hi int, active operator.Operator) (int, error) {
	activePrec := math.MaxInt
	if active != nil {
		activePrec = active.Precedence()
	}

	depth := 0
	j := start
	for j < hi {
		switch p.src[j] {
		case '(', '{', '[':
			depth++
			j++
			continue
		case ')', '}', ']':
			depth--
			if depth < 0 {
				return 0, types.NewError(types.ErrUnmatchedBracket, "unmatched closing bracket", j)
			}
			j++
			continue
		}
		if depth > 0 {
			j++
			continue
		}
		if op, n, alias := p.matchOperator(j, hi); op != nil {
			if j == start {
				// A leading operator (sign, function) belongs to the
				// argument and is resolved by recursion.
				j += n
				continue
			}
			if op.Precedence() <= activePrec {
				if p.trailingBinaryAlias(start, j) || p.looksLikeExponent(start, j, alias) {
					j += n
					continue
				}
				break
			}
			j += n
			continue
		}
		j++
	}
	if depth != 0 {
		return 0, types.NewError(types.ErrUnmatchedBracket, "unmatched opening bracket", start)
	}
	return j, nil
}

// matchOperator finds the longest registered alias starting at i. A
// name-shaped alias embedded in a longer name run that is a known constant
// does not match: look-back disambiguation keeps constants like "insight"
// usable even though "in" is an operator.
func (p *Parser) matchOperator(i, hi int) (operator.Operator, int, string) {
	max := p.reg.MaxAliasLength()
	if max > hi-i {
		max = hi - i
	}
	for l := max; l >= 1; l-- {
		alias := p.src[i : i+l]
		op, ok := p.reg.LookupOperator(alias)
		if !ok {
			continue
		}
		if isName(alias) && p.insideKnownConstant(i, i+l, hi) {
			continue
		}
		return op, l, alias
	}
	return nil, 0, ""
}

// insideKnownConstant reports whether the alias at src[s:e] sits strictly
// inside a longer name run that resolves as a constant.
func (p *Parser) insideKnownConstant(s, e, hi int) bool {
	lo, hi2 := s, e
	for lo > 0 && isNameChar(p.src[lo-1]) {
		lo--
	}
	for hi2 < hi && isNameChar(p.src[hi2]) {
		hi2++
	}
	if lo == s && hi2 == e {
		return false
	}
	return p.reg.IsConstant(p.src[lo:hi2])
}

// trailingBinaryAlias reports whether the run src[start:j] ends with a
// binary operator alias.
func (p *Parser) trailingBinaryAlias(start, j int) bool {
	max := p.reg.MaxAliasLength()
	if max > j-start {
		max = j - start
	}
	for l := max; l >= 1; l-- {
		if op, ok := p.reg.LookupOperator(p.src[j-l : j]); ok && operator.IsBinary(op) {
			return true
		}
	}
	return false
}

// looksLikeExponent reports whether a +/- at j is the sign of a scientific
// notation exponent, as in "1e-9".
func (p *Parser) looksLikeExponent(start, j int, alias string) bool {
	if alias != "+" && alias != "-" {
		return false
	}
	if j-2 < start || p.src[j-1] != 'e' {
		return false
	}
	c := p.src[j-2]
	return c >= '0' && c <= '9' || c == '.'
}
