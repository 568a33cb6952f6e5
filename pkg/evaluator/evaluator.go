// Package evaluator implements the Calque tree-walking evaluation engine.
//
// The evaluator receives a parsed tree from the parser and reduces it to a
// value against an [EvalContext]. It supports:
//   - the polymorphic value model with shape coercion and broadcasting
//   - a mutable operator registry grown by user function definitions
//   - angle-unit-sensitive trigonometry
//   - a recursion-depth guard for runaway user-defined operators
//
// # Example
//
//	ev := evaluator.New()
//	ctx := ev.NewContext()
//	result, err := ev.Eval(expr, ctx)
//
// # Concurrency
//
// Evaluation is purely synchronous and CPU-bound. A context must not be
// shared between goroutines; create one context per concurrent session.
package evaluator

import (
	"fmt"
	"log/slog"

	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/types"
)

// Evaluator reduces parsed trees to values.
type Evaluator struct {
	opts   EvalOptions
	logger *slog.Logger
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// MaxDepth limits the function-call frame depth. Zero disables the
	// guard.
	MaxDepth int
	// Precision is the mantissa precision (bits) used when exact rational
	// values escape to big.Float arithmetic (powers, logarithms, roots).
	Precision uint
	// Debug enables per-node debug logging.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
}

// EvalOption configures the evaluator.
type EvalOption func(*EvalOptions)

// WithMaxDepth sets the function-call depth limit.
func WithMaxDepth(depth int) EvalOption {
	return func(o *EvalOptions) { o.MaxDepth = depth }
}

// WithPrecision sets the mantissa precision for big.Float escapes.
func WithPrecision(bits uint) EvalOption {
	return func(o *EvalOptions) { o.Precision = bits }
}

// WithDebug enables per-node debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(o *EvalOptions) { o.Debug = enabled }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(o *EvalOptions) { o.Logger = logger }
}

// New creates an Evaluator with default options.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		MaxDepth:  1000,
		Precision: 64,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Evaluator{opts: options, logger: options.Logger}
}

// Eval reduces a compiled expression to a value against ctx.
func (e *Evaluator) Eval(expr *types.Expression, ctx *EvalContext) (types.Value, error) {
	if expr == nil || expr.Root() == nil {
		return types.Empty, types.NewError(types.ErrEmptyExpression, "invalid expression", -1)
	}
	return e.evalNode(expr.Root(), ctx)
}

// evalNode reduces one node.
func (e *Evaluator) evalNode(n *types.Node, ctx *EvalContext) (types.Value, error) {
	switch n.Kind {
	case types.NodeNumber:
		if n.IsPercent {
			return types.Percent(n.Num), nil
		}
		if n.Rat != nil {
			return types.Rational(n.Rat), nil
		}
		return types.Number(n.Num), nil

	case types.NodeVariable:
		return e.evalVariable(n, ctx)

	case types.NodeSet:
		elems := make([]types.Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := e.evalNode(el, ctx)
			if err != nil {
				return types.Empty, err
			}
			elems[i] = v
		}
		return types.Vector(elems...), nil

	case types.NodeMatrix:
		rows := make([][]types.Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := e.evalNode(el, ctx)
			if err != nil {
				return types.Empty, err
			}
			rows[i] = v.AsVector()
		}
		return types.MakeMatrix(rows)

	case types.NodeFuncDef:
		return e.evalFuncDef(n, ctx)

	case types.NodeBinding:
		v, err := e.evalNode(n.Body, ctx)
		if err != nil {
			return types.Empty, err
		}
		if err := ctx.BindConstant(n.Name, v); err != nil {
			return types.Empty, err
		}
		return v, nil

	case types.NodeExpr:
		return e.evalExpr(n, ctx)

	default:
		return types.Empty, types.NewError(types.ErrUnknownToken,
			fmt.Sprintf("unexpected node kind %q", n.Kind), n.Pos)
	}
}

// metaClearVars is the reset meta command: restore built-in constants, drop
// user ones, return no value.
const metaClearVars = "clearvars"

func (e *Evaluator) evalVariable(n *types.Node, ctx *EvalContext) (types.Value, error) {
	if n.Name == metaClearVars {
		ctx.ResetConstants()
		return types.Empty, nil
	}
	if v, ok := ctx.Lookup(n.Name); ok {
		return v, nil
	}
	return types.Empty, types.NewError(types.ErrUnresolvedName,
		fmt.Sprintf("unknown variable %q", n.Name), n.Pos).WithToken(n.Name)
}

// evalFuncDef binds the function as a value under its own identifier so it
// is referable and returnable, and returns it. The custom operator was
// already registered by the parser; reuse its Function so operator and value
// share one body.
func (e *Evaluator) evalFuncDef(n *types.Node, ctx *EvalContext) (types.Value, error) {
	fn := &types.Function{Name: n.Name, Params: n.Params, Body: n.Body}
	if op, ok := ctx.LookupOperator(operator.Normalize(n.Name)); ok {
		if c, isCustom := op.(*operator.Custom); isCustom {
			fn = c.Function()
			fn.Body = n.Body
		} else {
			return types.Empty, types.NewError(types.ErrNameCollision,
				fmt.Sprintf("%q is an operator name", n.Name), n.Pos).WithToken(n.Name)
		}
	} else {
		// A definition replayed from the compile cache, or one evaluated in
		// a context other than the one it was parsed against: register it
		// now so calls resolve.
		ctx.RegisterCustom(operator.NewCustom(fn))
	}
	if err := ctx.BindConstant(n.Name, types.Func(fn)); err != nil {
		return types.Empty, err
	}
	return types.Func(fn), nil
}

func (e *Evaluator) evalExpr(n *types.Node, ctx *EvalContext) (types.Value, error) {
	op, ok := n.Op.(operator.Operator)
	if !ok {
		return types.Empty, types.NewError(types.ErrUnknownToken,
			fmt.Sprintf("unresolved operator %q", n.OpName), n.Pos)
	}
	args := make([]types.Value, len(n.Operands))
	for i, operand := range n.Operands {
		v, err := e.evalNode(operand, ctx)
		if err != nil {
			return types.Empty, err
		}
		args[i] = v
	}
	if e.opts.Debug {
		e.logger.Debug("apply", "op", n.OpName, "args", len(args))
	}
	return op.Apply(ctx, args...)
}
