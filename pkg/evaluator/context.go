package evaluator

import (
	"fmt"
	"math"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// EvalContext is the mutable session state: the operator registry, the named
// constants, and the active angle unit. A context is created once per
// session and mutated by every := binding and every function definition; it
// is never garbage-collected piecewise. Callers reset it wholesale with
// ResetConstants (the clearvars meta command).
//
// A context is not safe for concurrent use; give each concurrent session its
// own context (cheap to construct).
type EvalContext struct {
	ev        *Evaluator
	operators map[string]operator.Operator
	constants map[string]types.Value
	defaults  map[string]types.Value
	angle     types.AngleUnit
	precision uint
	maxAlias  int
	version   uint64
	converter operator.Converter
	depth     int // current function-call frame depth
}

// NewContext creates a session context bound to the evaluator, with the
// built-in operator set and default constants registered.
func (e *Evaluator) NewContext() *EvalContext {
	c := &EvalContext{
		ev:        e,
		operators: make(map[string]operator.Operator, 64),
		constants: make(map[string]types.Value, 8),
		defaults:  defaultConstants(),
		precision: e.opts.Precision,
	}
	for _, op := range Builtins() {
		c.Register(op)
	}
	c.ResetConstants()
	return c
}

// defaultConstants returns the built-in constants restored by clearvars.
func defaultConstants() map[string]types.Value {
	return map[string]types.Value{
		"pi":  types.Number(math.Pi),
		"e":   types.Number(math.E),
		"tau": types.Number(2 * math.Pi),
		"phi": types.Number(math.Phi),
		"inf": types.Number(math.Inf(1)),
	}
}

// Register inserts every alias of op into the registry, overwriting prior
// bindings. Last registration wins; there is no ambiguity error.
func (c *EvalContext) Register(op operator.Operator) {
	for _, alias := range op.Aliases() {
		alias = operator.Normalize(alias)
		c.operators[alias] = op
		if len(alias) > c.maxAlias {
			c.maxAlias = len(alias)
		}
	}
	c.version++
}

// RegisterCustom registers a user-synthesized operator. The user-defined
// mark lives on the operator itself (see operator.UserDefined), so this is
// the same insertion path as Register; both are kept for call-site clarity.
func (c *EvalContext) RegisterCustom(op operator.Operator) {
	c.Register(op)
}

// Unregister removes aliases from the registry. Used to roll back a custom
// operator whose defining expression failed to parse, leaving the context
// unmodified.
func (c *EvalContext) Unregister(aliases ...string) {
	for _, alias := range aliases {
		delete(c.operators, operator.Normalize(alias))
	}
	c.maxAlias = 0
	for alias := range c.operators {
		if len(alias) > c.maxAlias {
			c.maxAlias = len(alias)
		}
	}
	c.version++
}

// LookupOperator resolves a normalized alias.
func (c *EvalContext) LookupOperator(alias string) (operator.Operator, bool) {
	op, ok := c.operators[alias]
	return op, ok
}

// IsSystemAlias reports whether name is an alias of a built-in (non
// user-defined) operator. Binding a constant over a system alias fails;
// shadowing a custom alias is allowed.
func (c *EvalContext) IsSystemAlias(name string) bool {
	op, ok := c.operators[operator.Normalize(name)]
	return ok && !operator.IsUserDefined(op)
}

// IsConstant reports whether name resolves to a bound constant.
func (c *EvalContext) IsConstant(name string) bool {
	_, ok := c.constants[name]
	return ok
}

// MaxAliasLength bounds the parser's lookahead scan. It is recomputed
// whenever the registry changes.
func (c *EvalContext) MaxAliasLength() int {
	return c.maxAlias
}

// Version is a counter bumped on every change that affects parsing: operator
// registrations and changes to the constant name set. Compiled expressions
// remember the version they were parsed against so caches can discard stale
// entries when the grammar has grown.
func (c *EvalContext) Version() uint64 {
	return c.version
}

// BindConstant binds a value under name. Colliding with a system operator
// alias or the clearvars meta command is an error; colliding with a custom
// operator alias or an existing constant simply overwrites. Introducing a
// new constant name changes how later text parses (the variable probe and
// alias disambiguation consult the constant set), so it advances the
// registry version; rebinding an existing name does not.
func (c *EvalContext) BindConstant(name string, v types.Value) error {
	if c.IsSystemAlias(name) {
		return types.NewError(types.ErrNameCollision,
			fmt.Sprintf("%q is an operator name", name), -1).WithToken(name)
	}
	if name == metaClearVars {
		return types.NewError(types.ErrNameCollision,
			fmt.Sprintf("%q is a reserved command", name), -1).WithToken(name)
	}
	if _, exists := c.constants[name]; !exists {
		c.version++
	}
	c.constants[name] = v
	return nil
}

// Lookup resolves a named constant. Unknown names that the conversion
// collaborator recognizes as units resolve to a unit value of magnitude one.
func (c *EvalContext) Lookup(name string) (types.Value, bool) {
	if v, ok := c.constants[name]; ok {
		return v, true
	}
	if c.converter != nil && c.converter.Knows(name) {
		return types.Unit(types.Number(1), name), true
	}
	return types.Empty, false
}

// ResetConstants restores the built-in constants and drops all user ones.
// The constant name set changes, so the registry version advances.
func (c *EvalContext) ResetConstants() {
	c.constants = make(map[string]types.Value, len(c.defaults))
	for k, v := range c.defaults {
		c.constants[k] = v
	}
	c.version++
}

// Fork returns a child context for one function-call frame: the operator
// table is shared, the outer constants are value-copied, and the overlay
// bindings are applied on top.
func (c *EvalContext) Fork(overlay map[string]types.Value) *EvalContext {
	n := &EvalContext{
		ev:        c.ev,
		operators: c.operators,
		constants: make(map[string]types.Value, len(c.constants)+len(overlay)),
		defaults:  c.defaults,
		angle:     c.angle,
		precision: c.precision,
		maxAlias:  c.maxAlias,
		version:   c.version,
		converter: c.converter,
		depth:     c.depth + 1,
	}
	for k, v := range c.constants {
		n.constants[k] = v
	}
	for k, v := range overlay {
		n.constants[k] = v
	}
	return n
}

// AngleUnit returns the active trigonometric input mode.
func (c *EvalContext) AngleUnit() types.AngleUnit { return c.angle }

// SetAngleUnit switches the trigonometric input mode.
func (c *EvalContext) SetAngleUnit(u types.AngleUnit) { c.angle = u }

// Precision returns the mantissa precision for big.Float escapes.
func (c *EvalContext) Precision() uint { return c.precision }

// SetPrecision sets the mantissa precision for big.Float escapes.
func (c *EvalContext) SetPrecision(p uint) {
	if p > 0 {
		c.precision = p
	}
}

// Converter returns the unit-conversion collaborator, or nil.
func (c *EvalContext) Converter() operator.Converter { return c.converter }

// SetConverter attaches the unit-conversion collaborator.
func (c *EvalContext) SetConverter(conv operator.Converter) { c.converter = conv }

// Call evaluates fn's body with args bound positionally in a forked context.
// It implements the operator.Env callback used by custom operators.
func (c *EvalContext) Call(fn *types.Function, args []types.Value) (types.Value, error) {
	if fn.Body == nil {
		return types.Empty, types.NewError(types.ErrUnresolvedName,
			fmt.Sprintf("function %q has no body", fn.Name), -1)
	}
	if len(args) != len(fn.Params) {
		return types.Empty, types.NewError(types.ErrArity,
			fmt.Sprintf("%s expects %d arguments, got %d", fn.Name, len(fn.Params), len(args)), -1)
	}
	if max := c.ev.opts.MaxDepth; max > 0 && c.depth >= max {
		return types.Empty, types.NewError(types.ErrDepthExceeded,
			fmt.Sprintf("call depth limit %d exceeded in %q", max, fn.Name), -1)
	}
	overlay := make(map[string]types.Value, len(fn.Params))
	for i, p := range fn.Params {
		overlay[p] = args[i]
	}
	return c.ev.evalNode(fn.Body, c.Fork(overlay))
}
