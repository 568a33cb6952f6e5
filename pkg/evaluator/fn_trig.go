package evaluator

import (
	"fmt"
	"math"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Trigonometric operators. Inputs are interpreted in the context's angle
// unit; inverse functions convert their results back to it.

func trigOp(name string, f func(float64) float64) operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		u := env.AngleUnit()
		v := args[0].Map(func(x float64) float64 { return f(u.ToRadians(x)) })
		return checkDomain(name, v)
	}, name)
}

func inverseTrigOp(name string, f func(float64) float64) operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		u := env.AngleUnit()
		v := args[0].Map(func(x float64) float64 { return u.FromRadians(f(x)) })
		return checkDomain(name, v)
	}, name)
}

// checkDomain rejects NaN scalar results (e.g. asin(2)); NaNs inside
// vectors propagate so one bad element does not hide the rest.
func checkDomain(name string, v types.Value) (types.Value, error) {
	if v.IsScalar() && math.IsNaN(v.Float()) {
		return types.Empty, types.NewError(types.ErrMathDomain,
			fmt.Sprintf("%s: argument out of domain", name), -1)
	}
	return v, nil
}

func opSin() operator.Operator  { return trigOp("sin", math.Sin) }
func opCos() operator.Operator  { return trigOp("cos", math.Cos) }
func opTan() operator.Operator  { return trigOp("tan", math.Tan) }
func opAsin() operator.Operator { return inverseTrigOp("asin", math.Asin) }
func opAcos() operator.Operator { return inverseTrigOp("acos", math.Acos) }
func opAtan() operator.Operator { return inverseTrigOp("atan", math.Atan) }
