package evaluator

import (
	"fmt"
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// General math operators. Exact rational inputs take the big.Float path at
// the context precision where it buys accuracy (sqrt, ln, exp); results
// degrade to float numbers.

func opSqrt() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		if r, ok := args[0].Rat(); ok {
			if r.Sign() < 0 {
				return types.Empty, types.NewError(types.ErrMathDomain, "sqrt of negative number", -1)
			}
			x := new(big.Float).SetPrec(precOf(env)).SetRat(r)
			f, _ := x.Sqrt(x).Float64()
			return types.Number(f), nil
		}
		return checkDomain("sqrt", args[0].Map(math.Sqrt))
	}, "sqrt", "root")
}

func opAbs() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		if r, ok := args[0].Rat(); ok {
			return types.Rational(new(big.Rat).Abs(r)), nil
		}
		return args[0].Map(math.Abs), nil
	}, "abs")
}

func opLn() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		if r, ok := args[0].Rat(); ok {
			if r.Sign() <= 0 {
				return types.Empty, types.NewError(types.ErrMathDomain, "ln of non-positive number", -1)
			}
			x := new(big.Float).SetPrec(precOf(env)).SetRat(r)
			f, _ := bigfloat.Log(new(big.Float).SetPrec(precOf(env)), x).Float64()
			return types.Number(f), nil
		}
		return checkNonFinite("ln", args[0].Map(math.Log))
	}, "ln")
}

func opLog() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		return checkNonFinite("log", args[0].Map(math.Log10))
	}, "log", "log10")
}

func opExp() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		if r, ok := args[0].Rat(); ok {
			x := new(big.Float).SetPrec(precOf(env)).SetRat(r)
			f, _ := bigfloat.Exp(new(big.Float).SetPrec(precOf(env)), x).Float64()
			return types.Number(f), nil
		}
		return args[0].Map(math.Exp), nil
	}, "exp")
}

func opRound() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		return args[0].Map(math.Round), nil
	}, "round")
}

func opFloor() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		return args[0].Map(math.Floor), nil
	}, "floor")
}

func opCeil() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		return args[0].Map(math.Ceil), nil
	}, "ceil", "ceiling")
}

func precOf(env operator.Env) uint {
	if p := env.Precision(); p > 0 {
		return p
	}
	return 64
}

// checkNonFinite rejects -Inf/NaN scalar results from logarithms of
// non-positive scalars.
func checkNonFinite(name string, v types.Value) (types.Value, error) {
	if v.IsScalar() {
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return types.Empty, types.NewError(types.ErrMathDomain,
				fmt.Sprintf("%s: argument out of domain", name), -1)
		}
	}
	return v, nil
}
