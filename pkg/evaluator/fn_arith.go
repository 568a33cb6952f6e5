package evaluator

import (
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Arithmetic operators. Exact rational operands stay exact under + - * /
// and integer powers; everything else goes through the broadcasting
// element-wise path.

func opAdd() operator.Operator {
	return operator.NewBinary(operator.PrecAddSub, func(env operator.Env, args ...types.Value) (types.Value, error) {
		a, b := args[0], args[1]
		if ra, rb, ok := bothRats(a, b); ok {
			return types.Rational(new(big.Rat).Add(ra, rb)), nil
		}
		// "200 + 10%" adds ten percent of the left side.
		if b.Kind() == types.KindPercent && a.Kind() != types.KindPercent {
			return a.Map(func(x float64) float64 { return x * (1 + b.Float()) }), nil
		}
		return a.Combine(b, func(x, y float64) float64 { return x + y }), nil
	}, "+", "plus")
}

func opSub() operator.Operator {
	return operator.NewBinary(operator.PrecAddSub, func(env operator.Env, args ...types.Value) (types.Value, error) {
		a, b := args[0], args[1]
		if ra, rb, ok := bothRats(a, b); ok {
			return types.Rational(new(big.Rat).Sub(ra, rb)), nil
		}
		if b.Kind() == types.KindPercent && a.Kind() != types.KindPercent {
			return a.Map(func(x float64) float64 { return x * (1 - b.Float()) }), nil
		}
		return a.Combine(b, func(x, y float64) float64 { return x - y }), nil
	}, "-", "minus")
}

func opMul() operator.Operator {
	return operator.NewBinary(operator.PrecMulDiv, func(env operator.Env, args ...types.Value) (types.Value, error) {
		a, b := args[0], args[1]
		if ra, rb, ok := bothRats(a, b); ok {
			return types.Rational(new(big.Rat).Mul(ra, rb)), nil
		}
		return a.Combine(b, func(x, y float64) float64 { return x * y }), nil
	}, "*", "times")
}

func opDiv() operator.Operator {
	return operator.NewBinary(operator.PrecMulDiv, func(env operator.Env, args ...types.Value) (types.Value, error) {
		a, b := args[0], args[1]
		if ra, rb, ok := bothRats(a, b); ok {
			if rb.Sign() == 0 {
				return types.Empty, types.NewError(types.ErrDivisionByZero, "division by zero", -1)
			}
			return types.Rational(new(big.Rat).Quo(ra, rb)), nil
		}
		if a.IsScalar() && b.IsScalar() && b.Float() == 0 {
			return types.Empty, types.NewError(types.ErrDivisionByZero, "division by zero", -1)
		}
		return a.Combine(b, func(x, y float64) float64 { return x / y }), nil
	}, "/", "over")
}

func opMod() operator.Operator {
	return operator.NewBinary(operator.PrecMulDiv, func(env operator.Env, args ...types.Value) (types.Value, error) {
		a, b := args[0], args[1]
		if a.IsScalar() && b.IsScalar() && b.Float() == 0 {
			return types.Empty, types.NewError(types.ErrDivisionByZero, "modulo by zero", -1)
		}
		return a.Combine(b, math.Mod), nil
	}, "mod")
}

// maxRatExp caps exact integer exponentiation; beyond it the big.Float path
// takes over to bound memory.
const maxRatExp = 4096

func opPow() operator.Operator {
	return operator.NewBinary(operator.PrecPower, func(env operator.Env, args ...types.Value) (types.Value, error) {
		a, b := args[0], args[1]
		if ra, rb, ok := bothRats(a, b); ok {
			if rb.IsInt() {
				if v, ok := ratPowInt(ra, rb); ok {
					return v, nil
				}
			}
			return bigPow(ra, rb, env.Precision())
		}
		return a.Combine(b, math.Pow), nil
	}, "^", "pow")
}

// bothRats extracts exact rational payloads from both operands.
func bothRats(a, b types.Value) (*big.Rat, *big.Rat, bool) {
	ra, ok := a.Rat()
	if !ok {
		return nil, nil, false
	}
	rb, ok := b.Rat()
	if !ok {
		return nil, nil, false
	}
	return ra, rb, true
}

// ratPowInt computes base^exp exactly for integer exponents of moderate
// size. Returns false when the exponent is out of range, deferring to the
// big.Float path.
func ratPowInt(base, exp *big.Rat) (types.Value, bool) {
	e := exp.Num()
	if !e.IsInt64() {
		return types.Empty, false
	}
	n := e.Int64()
	if n > maxRatExp || n < -maxRatExp {
		return types.Empty, false
	}
	neg := n < 0
	if neg {
		if base.Sign() == 0 {
			return types.Empty, false
		}
		n = -n
	}
	num := new(big.Int).Exp(base.Num(), big.NewInt(n), nil)
	den := new(big.Int).Exp(base.Denom(), big.NewInt(n), nil)
	r := new(big.Rat).SetFrac(num, den)
	if neg {
		r.Inv(r)
	}
	return types.Rational(r), true
}

// bigPow computes base^exp for non-integer exponents of exact operands via
// big.Float at the context precision, degrading the result to a float
// number. Negative bases fall back to math.Pow semantics.
func bigPow(base, exp *big.Rat, prec uint) (types.Value, error) {
	if base.Sign() == 0 && exp.Sign() < 0 {
		return types.Empty, types.NewError(types.ErrDivisionByZero, "zero base with negative exponent", -1)
	}
	if base.Sign() < 0 {
		bf, _ := base.Float64()
		ef, _ := exp.Float64()
		r := math.Pow(bf, ef)
		if math.IsNaN(r) {
			return types.Empty, types.NewError(types.ErrMathDomain, "negative base with fractional exponent", -1)
		}
		return types.Number(r), nil
	}
	if prec == 0 {
		prec = 64
	}
	x := new(big.Float).SetPrec(prec).SetRat(base)
	y := new(big.Float).SetPrec(prec).SetRat(exp)
	z := bigfloat.Pow(new(big.Float).SetPrec(prec), x, y)
	f, _ := z.Float64()
	return types.Number(f), nil
}
