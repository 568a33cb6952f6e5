package evaluator

import (
	"github.com/calque-lang/calque/pkg/operator"
)

// Builtins returns the system operator set registered into every new
// context. Order matters only for readability; alias collisions within the
// set would resolve last-wins like any other registration.
func Builtins() []operator.Operator {
	return []operator.Operator{
		// arithmetic
		opAdd(),
		opSub(),
		opMul(),
		opDiv(),
		opMod(),
		opPow(),

		// comparison
		opEqual(),
		opNotEqual(),
		opLess(),
		opLessEqual(),
		opGreater(),
		opGreaterEqual(),

		// trigonometry
		opSin(),
		opCos(),
		opTan(),
		opAsin(),
		opAcos(),
		opAtan(),

		// general math
		opSqrt(),
		opAbs(),
		opLn(),
		opLog(),
		opExp(),
		opRound(),
		opFloor(),
		opCeil(),

		// aggregates
		opSum(),
		opMin(),
		opMax(),
		opCount(),

		// conversion and percentages
		opConvert(),
		opPercentOf(),
	}
}
