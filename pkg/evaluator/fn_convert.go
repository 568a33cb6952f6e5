package evaluator

import (
	"fmt"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Conversion and percentage operators.

// opConvert is the in/to/as/convert operator. It consumes the external
// unit-conversion collaborator: the left side supplies the amount and
// source unit tag, the right side names the target unit (unit names
// resolve to unit values of magnitude one).
func opConvert() operator.Operator {
	return operator.NewBinary(operator.PrecConvert, func(env operator.Env, args ...types.Value) (types.Value, error) {
		conv := env.Converter()
		if conv == nil {
			return types.Empty, types.NewError(types.ErrConversionFailed, "no unit converter configured", -1)
		}
		from, to := args[0], args[1]
		if from.Kind() != types.KindUnit {
			return types.Empty, types.NewError(types.ErrConversionFailed,
				fmt.Sprintf("left side of a conversion must carry a unit, got %s", from.Kind()), -1)
		}
		if to.Kind() != types.KindUnit {
			return types.Empty, types.NewError(types.ErrConversionFailed,
				fmt.Sprintf("right side of a conversion must name a unit, got %s", to.Kind()), -1)
		}
		amount, toName, err := conv.Convert(from.Magnitude().Float(), from.UnitTag(), to.UnitTag())
		if err != nil {
			return types.Empty, types.NewError(types.ErrConversionFailed, err.Error(), -1).WithCause(err)
		}
		return types.Unit(types.Number(amount), toName), nil
	}, "in", "to", "as", "convert")
}

// opPercentOf computes "p %of x": p percent of the right side, preserving
// its shape.
func opPercentOf() operator.Operator {
	return operator.NewBinary(operator.PrecPercentOf, func(env operator.Env, args ...types.Value) (types.Value, error) {
		p := args[0]
		frac := p.Float()
		if p.Kind() != types.KindPercent {
			frac = frac / 100
		}
		return args[1].Map(func(x float64) float64 { return x * frac }), nil
	}, "%of", "percentof")
}
