// Package calque is an embeddable algebraic expression language.
//
// Calque parses and evaluates calculator-style expressions — arithmetic
// with exact rationals, vectors and matrices with broadcasting, percent
// and unit values, angle-aware trigonometry — against a mutable session:
// `x := 5` binds a constant, `sq(x) := x^2` defines a new operator that is
// immediately part of the grammar, and `ans` always holds the last result.
//
// # Quick Start
//
//	// Simple evaluation
//	v, err := calque.Eval("2 + 3 * 4")
//
//	// A session keeps state between evaluations
//	s := calque.New()
//	s.Evaluate("x := 5")
//	v, _ := s.Evaluate("x^2 + 1")     // 26
//	v, _ = s.Evaluate("ans * 2")      // 52
//
//	// With options
//	s := calque.New(
//	    calque.WithAngleUnit(types.Degrees),
//	    calque.WithCaching(true),
//	)
//
// # Concurrency
//
// A Session is single-threaded: it owns a mutable grammar and constant
// table. Give each goroutine its own session; sessions are cheap to
// construct.
//
// # More Information
//
// For detailed documentation, see:
//   - Parser: github.com/calque-lang/calque/pkg/parser
//   - Evaluator: github.com/calque-lang/calque/pkg/evaluator
//   - Types: github.com/calque-lang/calque/pkg/types
//   - Extension packs: github.com/calque-lang/calque/pkg/ext
package calque

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/calque-lang/calque/pkg/cache"
	"github.com/calque-lang/calque/pkg/config"
	"github.com/calque-lang/calque/pkg/evaluator"
	"github.com/calque-lang/calque/pkg/ext"
	"github.com/calque-lang/calque/pkg/operator"
	"github.com/calque-lang/calque/pkg/parser"
	"github.com/calque-lang/calque/pkg/types"
)

// Version returns the current version of Calque.
func Version() string {
	return "v0.1.0-dev"
}

// ansName is the constant rebound to every non-empty result.
const ansName = "ans"

// Session is a stateful evaluation session: one grammar, one constant
// table, one angle mode. Not safe for concurrent use.
type Session struct {
	id     string
	logger *slog.Logger
	ev     *evaluator.Evaluator
	ctx    *evaluator.EvalContext
	cache  *cache.Cache
	opts   sessionOptions
}

type sessionOptions struct {
	angle      types.AngleUnit
	precision  uint
	maxDepth   int
	parseDepth int
	caching    bool
	cacheSize  int
	debug      bool
	logger     *slog.Logger
	converter  operator.Converter
	operators  []operator.Operator
	constants  map[string]types.Value
	err        error // deferred option error, surfaced by New
}

// Option configures a Session.
type Option func(*sessionOptions)

// WithAngleUnit sets the trigonometric input mode. Default is radians.
func WithAngleUnit(u types.AngleUnit) Option {
	return func(o *sessionOptions) { o.angle = u }
}

// WithPrecision sets the mantissa precision in bits for arbitrary-precision
// escapes (powers, logarithms, roots of exact rationals).
func WithPrecision(bits uint) Option {
	return func(o *sessionOptions) { o.precision = bits }
}

// WithMaxDepth limits function-call recursion depth.
func WithMaxDepth(depth int) Option {
	return func(o *sessionOptions) { o.maxDepth = depth }
}

// WithParseDepth limits grammar recursion depth.
func WithParseDepth(depth int) Option {
	return func(o *sessionOptions) { o.parseDepth = depth }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *sessionOptions) { o.logger = logger }
}

// WithDebug enables per-node debug logging.
func WithDebug(enabled bool) Option {
	return func(o *sessionOptions) { o.debug = enabled }
}

// WithCaching enables the compiled-expression LRU cache.
func WithCaching(enabled bool) Option {
	return func(o *sessionOptions) { o.caching = enabled }
}

// WithCacheSize sets the LRU capacity; implies WithCaching(true).
func WithCacheSize(n int) Option {
	return func(o *sessionOptions) {
		o.caching = true
		o.cacheSize = n
	}
}

// WithConverter attaches the unit-conversion collaborator consumed by the
// in/to/as/convert operator.
func WithConverter(conv operator.Converter) Option {
	return func(o *sessionOptions) { o.converter = conv }
}

// WithOperators registers additional operators, such as the pkg/ext packs.
func WithOperators(ops ...operator.Operator) Option {
	return func(o *sessionOptions) { o.operators = append(o.operators, ops...) }
}

// WithConstants installs named constants at session start.
func WithConstants(constants map[string]types.Value) Option {
	return func(o *sessionOptions) {
		if o.constants == nil {
			o.constants = make(map[string]types.Value, len(constants))
		}
		for k, v := range constants {
			o.constants[k] = v
		}
	}
}

// WithConfig applies a loaded YAML configuration. Later options override
// its fields.
func WithConfig(cfg *config.Config) Option {
	return func(o *sessionOptions) {
		angle, err := cfg.Angle()
		if err != nil {
			o.err = err
			return
		}
		o.angle = angle
		if cfg.Precision > 0 {
			o.precision = cfg.Precision
		}
		if cfg.MaxDepth > 0 {
			o.maxDepth = cfg.MaxDepth
		}
		if cfg.MaxParseDepth > 0 {
			o.parseDepth = cfg.MaxParseDepth
		}
		o.caching = cfg.Caching
		if cfg.CacheSize > 0 {
			o.cacheSize = cfg.CacheSize
		}
		for name, f := range cfg.Constants {
			if o.constants == nil {
				o.constants = make(map[string]types.Value, len(cfg.Constants))
			}
			o.constants[name] = types.Number(f)
		}
		ops, err := ext.Packs(cfg.Extensions...)
		if err != nil {
			o.err = err
			return
		}
		o.operators = append(o.operators, ops...)
	}
}

// New creates a Session.
//
// Option errors (bad configuration) are deferred: the session is still
// returned and usable with defaults, and the error surfaces on the first
// Evaluate. Use NewSession to check them eagerly.
func New(opts ...Option) *Session {
	s, _ := NewSession(opts...)
	return s
}

// NewSession creates a Session and reports configuration errors.
func NewSession(opts ...Option) (*Session, error) {
	options := sessionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	logger = logger.With("session", id)

	var evOpts []evaluator.EvalOption
	evOpts = append(evOpts, evaluator.WithLogger(logger))
	if options.precision > 0 {
		evOpts = append(evOpts, evaluator.WithPrecision(options.precision))
	}
	if options.maxDepth > 0 {
		evOpts = append(evOpts, evaluator.WithMaxDepth(options.maxDepth))
	}
	if options.debug {
		evOpts = append(evOpts, evaluator.WithDebug(true))
	}

	ev := evaluator.New(evOpts...)
	ctx := ev.NewContext()
	ctx.SetAngleUnit(options.angle)
	if options.converter != nil {
		ctx.SetConverter(options.converter)
	}
	for _, op := range options.operators {
		ctx.Register(op)
	}
	for name, v := range options.constants {
		if err := ctx.BindConstant(name, v); err != nil && options.err == nil {
			options.err = err
		}
	}

	s := &Session{
		id:     id,
		logger: logger,
		ev:     ev,
		ctx:    ctx,
		opts:   options,
	}
	if options.caching {
		s.cache = cache.New(options.cacheSize)
	}
	return s, options.err
}

// ID returns the session's unique identifier, also attached to every log
// record the session emits.
func (s *Session) ID() string { return s.id }

// Compile parses an expression against the session's current grammar
// without evaluating it. With caching enabled the compiled tree is reused
// until the grammar changes.
func (s *Session) Compile(src string) (*types.Expression, error) {
	if err := s.configErr(); err != nil {
		return nil, err
	}
	return s.compile(src)
}

func (s *Session) compile(src string) (*types.Expression, error) {
	var popts []parser.CompileOption
	if s.opts.parseDepth > 0 {
		popts = append(popts, parser.WithMaxDepth(s.opts.parseDepth))
	}
	if s.cache == nil {
		return parser.Compile(src, s.ctx, popts...)
	}
	return s.cache.GetOrCompile(src, s.ctx.Version(), func() (*types.Expression, error) {
		return parser.Compile(src, s.ctx, popts...)
	})
}

// Evaluate parses and evaluates one expression. Every non-empty result is
// rebound to the ans constant.
func (s *Session) Evaluate(src string) (types.Value, error) {
	if err := s.configErr(); err != nil {
		return types.Empty, err
	}
	expr, err := s.compile(src)
	if err != nil {
		return types.Empty, err
	}
	v, err := s.ev.Eval(expr, s.ctx)
	if err != nil {
		return types.Empty, err
	}
	if !v.IsEmpty() {
		if err := s.ctx.BindConstant(ansName, v); err != nil {
			return types.Empty, err
		}
	}
	return v, nil
}

// EvaluateFloat evaluates an expression and requires a scalar numeric
// result. Percent values qualify: they reduce to their fraction.
func (s *Session) EvaluateFloat(src string) (float64, error) {
	v, err := s.Evaluate(src)
	if err != nil {
		return 0, err
	}
	if !scalarNumeric(v) {
		return 0, types.NewError(types.ErrNotScalar,
			fmt.Sprintf("result is %s, not a scalar", v.Kind()), -1)
	}
	return v.Float(), nil
}

// scalarNumeric reports whether v reduces cleanly to one number.
func scalarNumeric(v types.Value) bool {
	return v.IsScalar() || v.Kind() == types.KindPercent
}

// BindVariable binds a session constant. v may be a types.Value, a float64,
// an int, or an expression string evaluated in the session.
func (s *Session) BindVariable(name string, v any) error {
	if err := s.configErr(); err != nil {
		return err
	}
	switch x := v.(type) {
	case types.Value:
		return s.ctx.BindConstant(name, x)
	case float64:
		return s.ctx.BindConstant(name, types.Number(x))
	case int:
		return s.ctx.BindConstant(name, types.Int(int64(x)))
	case string:
		val, err := s.Evaluate(x)
		if err != nil {
			return err
		}
		return s.ctx.BindConstant(name, val)
	default:
		return types.NewError(types.ErrBadOperand,
			fmt.Sprintf("cannot bind %T as a variable", v), -1)
	}
}

// SetAngleUnit switches the trigonometric input mode.
func (s *Session) SetAngleUnit(u types.AngleUnit) {
	s.ctx.SetAngleUnit(u)
}

// Reset restores the built-in constants and drops user ones, like the
// clearvars meta command. Custom operators stay registered; the compile
// cache is cleared.
func (s *Session) Reset() {
	s.ctx.ResetConstants()
	if s.cache != nil {
		s.cache.Clear()
	}
}

// Context exposes the session's evaluation context for advanced embedding:
// registering operators directly, attaching converters, inspecting
// constants.
func (s *Session) Context() *evaluator.EvalContext { return s.ctx }

func (s *Session) configErr() error {
	return s.opts.err
}

// Function is a compiled single-variable equation, evaluated repeatedly at
// different points without re-parsing.
type Function struct {
	session  *Session
	expr     *types.Expression
	variable string
}

// CompileFunction compiles an equation in one named variable for repeated
// evaluation:
//
//	f, err := s.CompileFunction("x^2 + 1", "x")
//	y, _ := f.EvaluateAt(3) // 10
func (s *Session) CompileFunction(equation, variable string) (*Function, error) {
	if err := s.configErr(); err != nil {
		return nil, err
	}
	expr, err := s.compile(equation)
	if err != nil {
		return nil, err
	}
	return &Function{session: s, expr: expr, variable: variable}, nil
}

// EvaluateAt rebinds the function's variable and re-walks the compiled
// tree. It never re-parses.
func (f *Function) EvaluateAt(x float64) (float64, error) {
	if err := f.session.ctx.BindConstant(f.variable, types.Number(x)); err != nil {
		return 0, err
	}
	v, err := f.session.ev.Eval(f.expr, f.session.ctx)
	if err != nil {
		return 0, err
	}
	if !scalarNumeric(v) {
		return 0, types.NewError(types.ErrNotScalar,
			fmt.Sprintf("result is %s, not a scalar", v.Kind()), -1)
	}
	return v.Float(), nil
}

// Expression returns the compiled tree.
func (f *Function) Expression() *types.Expression { return f.expr }

// Eval is a convenience function that evaluates one expression in a fresh
// throwaway session.
//
// For stateful work — variables, ans, custom operators — create a Session.
func Eval(src string, opts ...Option) (types.Value, error) {
	s, err := NewSession(opts...)
	if err != nil {
		return types.Empty, err
	}
	return s.Evaluate(src)
}
