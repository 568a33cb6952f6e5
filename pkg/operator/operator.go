// Package operator defines the contract shared by built-in and
// user-synthesized operators.
//
// An operator is identified by one or more aliases (matched case- and
// space-insensitively by the parser), carries a precedence, and applies to
// evaluated operand values. Arity is decided purely by interface membership:
// an operator is binary if and only if it implements [Binary].
//
// # Example
//
//	double := operator.NewUnary(operator.PrecFunction, func(env operator.Env, args ...types.Value) (types.Value, error) {
//	    return args[0].Map(func(x float64) float64 { return 2 * x }), nil
//	}, "double")
package operator

import (
	"strings"

	"github.com/calque-lang/calque/pkg/types"
)

// Normalize canonicalizes an alias or source fragment: aliases are matched
// case- and space-insensitively.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if strings.ContainsAny(s, " \t") {
		s = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\t' {
				return -1
			}
			return r
		}, s)
	}
	return s
}

// Precedence levels for the built-in grammar. Higher binds more tightly.
const (
	PrecConvert    = 10 // in, to, as, convert
	PrecPercentOf  = 15 // %of
	PrecComparison = 20 // =, !=, <, ...
	PrecAddSub     = 30 // +, -
	PrecMulDiv     = 40 // *, /, mod
	PrecPower      = 50 // ^
	PrecFunction   = 60 // sin, sqrt, user functions, ...
)

// Env is the slice of the evaluation context visible to an operator
// implementation: the active angle unit, the numeric precision for exact
// arithmetic escapes, constant lookup, the unit-conversion collaborator, and
// a way to call function values.
type Env interface {
	// AngleUnit returns the active trigonometric input mode.
	AngleUnit() types.AngleUnit
	// Precision returns the mantissa precision (bits) for big.Float escapes.
	Precision() uint
	// Lookup resolves a named constant.
	Lookup(name string) (types.Value, bool)
	// Converter returns the unit-conversion collaborator, or nil.
	Converter() Converter
	// Call evaluates a function value's body with args bound positionally in
	// a forked context.
	Call(fn *types.Function, args []types.Value) (types.Value, error)
}

// Operator is the contract for anything usable as an operator in an
// expression.
type Operator interface {
	// Aliases returns all spellings of the operator.
	Aliases() []string
	// Precedence returns the binding strength; higher binds more tightly.
	Precedence() int
	// Apply evaluates the operator over its operand values.
	Apply(env Env, args ...types.Value) (types.Value, error)
}

// Binary marks an operator as taking two operands. Operators that do not
// implement Binary are unary.
type Binary interface {
	Operator
	BinaryOperator()
}

// UserDefined marks an operator as synthesized from a user definition,
// affecting constant-name shadowing rules.
type UserDefined interface {
	Operator
	UserDefinedOperator()
}

// IsBinary reports whether op takes two operands.
func IsBinary(op Operator) bool {
	_, ok := op.(Binary)
	return ok
}

// IsUserDefined reports whether op was synthesized from a user definition.
func IsUserDefined(op Operator) bool {
	_, ok := op.(UserDefined)
	return ok
}

// Converter is the narrow interface to the external unit-conversion
// collaborator consumed by the in/to/as/convert operator.
type Converter interface {
	// Convert converts amount from one named unit to another, returning the
	// converted amount and the resolved target unit name.
	Convert(amount float64, from, to string) (float64, string, error)
	// Knows reports whether name is a recognized unit, letting bare unit
	// names resolve to unit values during evaluation.
	Knows(name string) bool
}

// ApplyFunc is the implementation signature for func-backed operators.
type ApplyFunc func(env Env, args ...types.Value) (types.Value, error)

// def is a func-backed operator.
type def struct {
	aliases []string
	prec    int
	fn      ApplyFunc
}

func (d *def) Aliases() []string { return d.aliases }
func (d *def) Precedence() int   { return d.prec }
func (d *def) Apply(env Env, args ...types.Value) (types.Value, error) {
	return d.fn(env, args...)
}

// binaryDef is a func-backed binary operator.
type binaryDef struct {
	def
}

func (*binaryDef) BinaryOperator() {}

// NewUnary creates a unary operator from a function. The first alias is the
// canonical spelling.
func NewUnary(prec int, fn ApplyFunc, aliases ...string) Operator {
	return &def{aliases: aliases, prec: prec, fn: fn}
}

// NewBinary creates a binary operator from a function.
func NewBinary(prec int, fn ApplyFunc, aliases ...string) Operator {
	return &binaryDef{def{aliases: aliases, prec: prec, fn: fn}}
}
