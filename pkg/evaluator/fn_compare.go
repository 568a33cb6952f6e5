package evaluator

import (
	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Comparison operators produce boolean values. Exact rationals compare
// exactly; everything else compares on the scalar reduction.

func compareOp(prec int, cmp func(int) bool, aliases ...string) operator.Operator {
	return operator.NewBinary(prec, func(env operator.Env, args ...types.Value) (types.Value, error) {
		a, b := args[0], args[1]
		if ra, rb, ok := bothRats(a, b); ok {
			return types.Bool(cmp(ra.Cmp(rb))), nil
		}
		af, bf := a.Float(), b.Float()
		switch {
		case af < bf:
			return types.Bool(cmp(-1)), nil
		case af > bf:
			return types.Bool(cmp(1)), nil
		default:
			return types.Bool(cmp(0)), nil
		}
	}, aliases...)
}

func opEqual() operator.Operator {
	return compareOp(operator.PrecComparison, func(c int) bool { return c == 0 }, "==", "=")
}

func opNotEqual() operator.Operator {
	return compareOp(operator.PrecComparison, func(c int) bool { return c != 0 }, "!=")
}

func opLess() operator.Operator {
	return compareOp(operator.PrecComparison, func(c int) bool { return c < 0 }, "<")
}

func opLessEqual() operator.Operator {
	return compareOp(operator.PrecComparison, func(c int) bool { return c <= 0 }, "<=")
}

func opGreater() operator.Operator {
	return compareOp(operator.PrecComparison, func(c int) bool { return c > 0 }, ">")
}

func opGreaterEqual() operator.Operator {
	return compareOp(operator.PrecComparison, func(c int) bool { return c >= 0 }, ">=")
}
