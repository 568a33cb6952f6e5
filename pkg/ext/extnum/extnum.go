// Package extnum provides integer and number-theory operators: factorial,
// gcd, lcm, sign and truncation.
package extnum

import (
	"fmt"
	"math"
	"math/big"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Operators returns the number-theory pack.
func Operators() []operator.Operator {
	return []operator.Operator{
		opFact(),
		opGcd(),
		opLcm(),
		opSign(),
		opTrunc(),
	}
}

// maxFact bounds factorial input so a single expression cannot allocate
// unbounded big integers.
const maxFact = 10000

func opFact() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		n, err := wholeArg(args[0], "fact")
		if err != nil {
			return types.Empty, err
		}
		if n < 0 || n > maxFact {
			return types.Empty, types.NewError(types.ErrMathDomain,
				fmt.Sprintf("fact is defined for 0..%d, got %d", maxFact, n), -1)
		}
		f := new(big.Int).MulRange(2, n)
		return types.Rational(new(big.Rat).SetInt(f)), nil
	}, "fact", "factorial")
}

func opGcd() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		ns, err := wholeLeaves(args[0], "gcd")
		if err != nil {
			return types.Empty, err
		}
		acc := int64(0)
		for _, n := range ns {
			acc = gcd(acc, abs(n))
		}
		return types.Int(acc), nil
	}, "gcd")
}

func opLcm() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		ns, err := wholeLeaves(args[0], "lcm")
		if err != nil {
			return types.Empty, err
		}
		acc := int64(1)
		for _, n := range ns {
			n = abs(n)
			if n == 0 {
				return types.Int(0), nil
			}
			acc = acc / gcd(acc, n) * n
		}
		return types.Int(acc), nil
	}, "lcm")
}

func opSign() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		return args[0].Map(func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			default:
				return 0
			}
		}), nil
	}, "sign", "sgn")
}

func opTrunc() operator.Operator {
	return operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
		return args[0].Map(math.Trunc), nil
	}, "trunc")
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// wholeArg requires a scalar whole number.
func wholeArg(v types.Value, name string) (int64, error) {
	if !v.IsScalar() {
		return 0, types.NewError(types.ErrNotScalar, name+" needs a scalar", -1).WithToken(name)
	}
	f := v.Float()
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, types.NewError(types.ErrMathDomain,
			fmt.Sprintf("%s is defined for whole numbers, got %v", name, f), -1)
	}
	return int64(f), nil
}

// wholeLeaves flattens a value and requires every leaf to be whole.
func wholeLeaves(v types.Value, name string) ([]int64, error) {
	var out []int64
	var walk func(types.Value) error
	walk = func(v types.Value) error {
		switch v.Kind() {
		case types.KindVector, types.KindMatrix:
			for _, e := range v.AsVector() {
				if err := walk(e); err != nil {
					return err
				}
			}
			return nil
		default:
			n, err := wholeArg(v, name)
			if err != nil {
				return err
			}
			out = append(out, n)
			return nil
		}
	}
	if err := walk(v); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, types.NewError(types.ErrBadOperand, name+" of empty set", -1)
	}
	return out, nil
}
