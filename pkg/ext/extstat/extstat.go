// Package extstat provides descriptive-statistics operators: mean, median,
// variance and standard deviation over vectors and matrices.
package extstat

import (
	"math"
	"sort"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Operators returns the statistics pack.
func Operators() []operator.Operator {
	return []operator.Operator{
		opMean(),
		opMedian(),
		opVariance(),
		opStdev(),
	}
}

func opMean() operator.Operator {
	return reducer(func(xs []float64) float64 {
		sum := 0.0
		for _, x := range xs {
			sum += x
		}
		return sum / float64(len(xs))
	}, 1, "mean", "avg", "average")
}

func opMedian() operator.Operator {
	return reducer(func(xs []float64) float64 {
		s := append([]float64(nil), xs...)
		sort.Float64s(s)
		n := len(s)
		if n%2 == 1 {
			return s[n/2]
		}
		return (s[n/2-1] + s[n/2]) / 2
	}, 1, "median")
}

// opVariance is the sample variance, requiring at least two leaves.
func opVariance() operator.Operator {
	return reducer(variance, 2, "variance", "var")
}

func opStdev() operator.Operator {
	return reducer(func(xs []float64) float64 {
		return math.Sqrt(variance(xs))
	}, 2, "stdev", "sd")
}

func variance(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return ss / float64(len(xs)-1)
}

// reducer wraps a leaf-slice reduction as a unary operator with a minimum
// operand count.
func reducer(fn func([]float64) float64, minLeaves int, aliases ...string) operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		xs := leaves(args[0])
		if len(xs) < minLeaves {
			return types.Empty, types.NewError(types.ErrBadOperand,
				aliases[0]+" needs more values", -1).WithToken(aliases[0])
		}
		return types.Number(fn(xs)), nil
	}, aliases...)
}

// leaves flattens a value into its scalar leaves.
func leaves(v types.Value) []float64 {
	switch v.Kind() {
	case types.KindVector, types.KindMatrix:
		var out []float64
		for _, e := range v.AsVector() {
			out = append(out, leaves(e)...)
		}
		return out
	default:
		return []float64{v.Float()}
	}
}
