package evaluator

import (
	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Aggregate operators reduce vectors and matrices to scalars.

// opSum relies on the scalar-reduction default: Float on a vector or matrix
// sums all leaves.
func opSum() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		return types.Number(args[0].Float()), nil
	}, "sum", "total")
}

func opMin() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		leaves := scalarLeaves(args[0])
		if len(leaves) == 0 {
			return types.Empty, types.NewError(types.ErrBadOperand, "min of empty set", -1)
		}
		m := leaves[0]
		for _, x := range leaves[1:] {
			if x < m {
				m = x
			}
		}
		return types.Number(m), nil
	}, "min")
}

func opMax() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		leaves := scalarLeaves(args[0])
		if len(leaves) == 0 {
			return types.Empty, types.NewError(types.ErrBadOperand, "max of empty set", -1)
		}
		m := leaves[0]
		for _, x := range leaves[1:] {
			if x > m {
				m = x
			}
		}
		return types.Number(m), nil
	}, "max")
}

func opCount() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		return types.Int(int64(len(scalarLeaves(args[0])))), nil
	}, "count", "len")
}

// scalarLeaves flattens a value into its scalar leaves.
func scalarLeaves(v types.Value) []float64 {
	switch v.Kind() {
	case types.KindVector, types.KindMatrix:
		var out []float64
		for _, e := range v.AsVector() {
			out = append(out, scalarLeaves(e)...)
		}
		return out
	default:
		return []float64{v.Float()}
	}
}
