// Package types defines the core type system for Calque.
//
// This package contains type definitions for:
//   - Value: the polymorphic runtime value (number, vector, matrix, unit, ...)
//   - Node: Abstract Syntax Tree nodes
//   - Expression: compiled expressions
//   - AngleUnit: trigonometric input mode
//   - Error types: structured errors with codes
package types

import (
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value variants.
const (
	KindEmpty Kind = iota // no value (result of meta commands such as clearvars)
	KindNumber
	KindRational
	KindVector
	KindMatrix
	KindUnit
	KindPercent
	KindBool
	KindFunction
)

// String returns the variant name, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindRational:
		return "rational"
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	case KindUnit:
		return "unit"
	case KindPercent:
		return "percent"
	case KindBool:
		return "boolean"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Function is a user-defined function value, created by a definition such as
// "f(x) := x^2". The Body pointer is filled by the parser; it is shared with
// the custom operator synthesized from the same definition, so both always
// see the same tree.
type Function struct {
	Name   string
	Params []string
	Body   *Node
}

// Value is the closed tagged union produced by evaluating any expression.
//
// Every Value supports the four shape transforms (Float, AsVector, AsRows,
// Map/Combine) regardless of its variant. Scalars promote to one-element
// vectors and 1x1 matrices; vectors and matrices reduce to a number by
// summing all their leaves. The summing default is intentional: aggregate
// operators such as sum rely on it.
type Value struct {
	kind    Kind
	num     float64 // KindNumber, KindPercent magnitude
	rat     *big.Rat
	boolean bool
	elems   []Value   // KindVector
	rows    [][]Value // KindMatrix
	mag     *Value    // KindUnit magnitude
	unit    string    // KindUnit tag
	fn      *Function
}

// Empty is the no-value result.
var Empty = Value{kind: KindEmpty}

// Number creates a floating-point number value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Rational creates an exact rational number value. A nil rat yields zero.
func Rational(r *big.Rat) Value {
	if r == nil {
		r = new(big.Rat)
	}
	return Value{kind: KindRational, rat: r}
}

// Int creates an exact integer value.
func Int(n int64) Value {
	return Rational(new(big.Rat).SetInt64(n))
}

// Vector creates a vector value from its elements.
func Vector(elems ...Value) Value {
	return Value{kind: KindVector, elems: elems}
}

// Matrix creates a matrix value. Rows must be rectangular; MakeMatrix
// reports ragged input, this constructor trusts its caller.
func Matrix(rows [][]Value) Value {
	return Value{kind: KindMatrix, rows: rows}
}

// MakeMatrix creates a matrix value, validating that all rows have the same
// length.
func MakeMatrix(rows [][]Value) (Value, error) {
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) != len(rows[0]) {
			return Empty, NewError(ErrBadOperand, "ragged matrix rows", -1)
		}
	}
	return Matrix(rows), nil
}

// Unit creates a unit-tagged value with the given magnitude.
func Unit(magnitude Value, tag string) Value {
	return Value{kind: KindUnit, mag: &magnitude, unit: tag}
}

// Percent creates a percentage value; Percent(10) renders as "10%" and
// reduces to 0.1.
func Percent(p float64) Value {
	return Value{kind: KindPercent, num: p}
}

// Bool creates a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

// Func wraps a user-defined function as a value.
func Func(fn *Function) Value {
	return Value{kind: KindFunction, fn: fn}
}

// Kind returns the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value is the no-value result.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// IsScalar reports whether the value is a plain number (floating or exact).
func (v Value) IsScalar() bool {
	return v.kind == KindNumber || v.kind == KindRational
}

// Rat returns the exact rational payload, or false for any other variant.
func (v Value) Rat() (*big.Rat, bool) {
	if v.kind == KindRational {
		return v.rat, true
	}
	return nil, false
}

// BoolVal returns the boolean payload, or false for any other variant.
func (v Value) BoolVal() (bool, bool) {
	if v.kind == KindBool {
		return v.boolean, true
	}
	return false, false
}

// Fn returns the function payload, or nil for any other variant.
func (v Value) Fn() *Function {
	if v.kind == KindFunction {
		return v.fn
	}
	return nil
}

// UnitTag returns the unit tag of a unit value, or "".
func (v Value) UnitTag() string { return v.unit }

// Magnitude returns the magnitude of a unit value; for any other variant it
// returns the value itself.
func (v Value) Magnitude() Value {
	if v.kind == KindUnit && v.mag != nil {
		return *v.mag
	}
	return v
}

// Float reduces the value to a single float64. Vectors and matrices reduce
// by summing all leaves; percents reduce to their fraction; booleans to 0/1;
// functions to 0.
func (v Value) Float() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindRational:
		f, _ := v.rat.Float64()
		return f
	case KindVector:
		var sum float64
		for _, e := range v.elems {
			sum += e.Float()
		}
		return sum
	case KindMatrix:
		var sum float64
		for _, row := range v.rows {
			for _, e := range row {
				sum += e.Float()
			}
		}
		return sum
	case KindUnit:
		return v.mag.Float()
	case KindPercent:
		return v.num / 100
	case KindBool:
		if v.boolean {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsVector promotes the value to a vector. Scalars become one-element
// vectors; matrices flatten row by row.
func (v Value) AsVector() []Value {
	switch v.kind {
	case KindVector:
		return v.elems
	case KindMatrix:
		var out []Value
		for _, row := range v.rows {
			out = append(out, row...)
		}
		return out
	default:
		return []Value{v}
	}
}

// AsRows promotes the value to matrix rows. Scalars become 1x1, vectors a
// single row.
func (v Value) AsRows() [][]Value {
	switch v.kind {
	case KindMatrix:
		return v.rows
	case KindVector:
		return [][]Value{v.elems}
	default:
		return [][]Value{{v}}
	}
}

// Map applies f element-wise, preserving shape. Unit values map their
// magnitude and keep the tag; exactness of rationals is not preserved.
func (v Value) Map(f func(float64) float64) Value {
	switch v.kind {
	case KindVector:
		out := make([]Value, len(v.elems))
		for i, e := range v.elems {
			out[i] = e.Map(f)
		}
		return Vector(out...)
	case KindMatrix:
		out := make([][]Value, len(v.rows))
		for i, row := range v.rows {
			out[i] = make([]Value, len(row))
			for j, e := range row {
				out[i][j] = e.Map(f)
			}
		}
		return Matrix(out)
	case KindUnit:
		return Unit(v.mag.Map(f), v.unit)
	default:
		return Number(f(v.Float()))
	}
}

// Combine applies f element-wise to v and other after shape reconciliation.
//
// Broadcasting: when two vectors differ in length, a side of length one is
// replicated to match; otherwise the shorter side is zero-padded. Matrices
// broadcast independently by row count and then column count with the same
// rule. A unit tag on either side survives onto the result (left wins).
func (v Value) Combine(other Value, f func(a, b float64) float64) Value {
	if v.kind == KindUnit || other.kind == KindUnit {
		tag := v.unit
		if tag == "" {
			tag = other.unit
		}
		return Unit(v.Magnitude().Combine(other.Magnitude(), f), tag)
	}
	if v.kind == KindMatrix || other.kind == KindMatrix {
		a, b := broadcastRows(v.AsRows(), other.AsRows())
		out := make([][]Value, len(a))
		for i := range a {
			ra, rb := broadcastElems(a[i], b[i])
			out[i] = make([]Value, len(ra))
			for j := range ra {
				out[i][j] = ra[j].Combine(rb[j], f)
			}
		}
		return Matrix(out)
	}
	if v.kind == KindVector || other.kind == KindVector {
		a, b := broadcastElems(v.AsVector(), other.AsVector())
		out := make([]Value, len(a))
		for i := range a {
			out[i] = a[i].Combine(b[i], f)
		}
		return Vector(out...)
	}
	return Number(f(v.Float(), other.Float()))
}

// broadcastElems reconciles two element slices: replicate a length-1 side,
// otherwise zero-pad the shorter one.
func broadcastElems(a, b []Value) ([]Value, []Value) {
	switch {
	case len(a) == len(b):
		return a, b
	case len(a) == 1:
		return replicate(a[0], len(b)), b
	case len(b) == 1:
		return a, replicate(b[0], len(a))
	case len(a) < len(b):
		return padZero(a, len(b)), b
	default:
		return a, padZero(b, len(a))
	}
}

// broadcastRows reconciles matrix row counts with the same rule as elements.
// Zero-pad rows are empty; the per-row element broadcast fills them out.
func broadcastRows(a, b [][]Value) ([][]Value, [][]Value) {
	switch {
	case len(a) == len(b):
		return a, b
	case len(a) == 1:
		return replicateRow(a[0], len(b)), b
	case len(b) == 1:
		return a, replicateRow(b[0], len(a))
	case len(a) < len(b):
		return padZeroRows(a, len(b)), b
	default:
		return a, padZeroRows(b, len(a))
	}
}

func replicate(v Value, n int) []Value {
	out := make([]Value, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func replicateRow(row []Value, n int) [][]Value {
	out := make([][]Value, n)
	for i := range out {
		out[i] = row
	}
	return out
}

func padZero(a []Value, n int) []Value {
	out := make([]Value, n)
	copy(out, a)
	for i := len(a); i < n; i++ {
		out[i] = Number(0)
	}
	return out
}

func padZeroRows(a [][]Value, n int) [][]Value {
	width := 0
	if len(a) > 0 {
		width = len(a[0])
	}
	out := make([][]Value, n)
	copy(out, a)
	for i := len(a); i < n; i++ {
		out[i] = padZero(nil, width)
	}
	return out
}

// String renders the value the way a calculator front end displays it.
func (v Value) String() string {
	switch v.kind {
	case KindEmpty:
		return ""
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindRational:
		if v.rat.IsInt() {
			return v.rat.Num().String()
		}
		return v.rat.RatString()
	case KindVector:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindMatrix:
		parts := make([]string, len(v.rows))
		for i, row := range v.rows {
			parts[i] = Vector(row...).String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindUnit:
		return v.mag.String() + " " + v.unit
	case KindPercent:
		return strconv.FormatFloat(v.num, 'g', -1, 64) + "%"
	case KindBool:
		return strconv.FormatBool(v.boolean)
	case KindFunction:
		return v.fn.Name + "(" + strings.Join(v.fn.Params, ", ") + ")"
	default:
		return "?"
	}
}
