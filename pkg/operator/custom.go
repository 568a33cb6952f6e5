package operator

import (
	"fmt"

	"github.com/calque-lang/calque/pkg/types"
)

// Custom is an operator synthesized from a user function definition such as
// "f(x) := x^2". It is unary: a one-parameter function binds its scalar
// argument directly, a multi-parameter function requires a vector argument
// whose length equals the parameter count. Arguments are bound positionally
// into a forked context before the body is evaluated.
type Custom struct {
	fn *types.Function
}

// NewCustom synthesizes a custom operator from a function value. The
// function's Body may still be nil at synthesis time: the parser registers
// the operator before parsing the defining expression's right-hand side so
// the name is usable for the remainder of the parse.
func NewCustom(fn *types.Function) *Custom {
	return &Custom{fn: fn}
}

// Function returns the originating function value.
func (c *Custom) Function() *types.Function {
	return c.fn
}

// Aliases returns the function identifier.
func (c *Custom) Aliases() []string {
	return []string{c.fn.Name}
}

// Precedence of custom operators matches built-in functions.
func (c *Custom) Precedence() int {
	return PrecFunction
}

// UserDefinedOperator marks the operator for shadowing rules.
func (c *Custom) UserDefinedOperator() {}

// Apply binds the call argument(s) positionally and evaluates the body in a
// forked context.
func (c *Custom) Apply(env Env, args ...types.Value) (types.Value, error) {
	if len(args) != 1 {
		return types.Empty, types.NewError(types.ErrArity,
			fmt.Sprintf("%s expects one argument", c.fn.Name), -1)
	}
	arg := args[0]

	var bound []types.Value
	if len(c.fn.Params) == 1 {
		// A one-parameter function takes a scalar; a vector argument is a
		// miscounted call tuple.
		if arg.Kind() == types.KindVector {
			elems := arg.AsVector()
			if len(elems) != 1 {
				return types.Empty, types.NewError(types.ErrArity,
					fmt.Sprintf("%s expects 1 argument, got %d", c.fn.Name, len(elems)), -1)
			}
			arg = elems[0]
		}
		bound = []types.Value{arg}
	} else {
		if arg.Kind() != types.KindVector {
			return types.Empty, types.NewError(types.ErrArity,
				fmt.Sprintf("%s expects %d arguments", c.fn.Name, len(c.fn.Params)), -1)
		}
		bound = arg.AsVector()
	}
	if len(bound) != len(c.fn.Params) {
		return types.Empty, types.NewError(types.ErrArity,
			fmt.Sprintf("%s expects %d arguments, got %d", c.fn.Name, len(c.fn.Params), len(bound)), -1)
	}

	return env.Call(c.fn, bound)
}
