package extnum_test

import (
	"testing"

	"github.com/calque-lang/calque/pkg/evaluator"
	"github.com/calque-lang/calque/pkg/ext/extnum"
	"github.com/calque-lang/calque/pkg/parser"
	"github.com/calque-lang/calque/pkg/types"
)

func newContext(t *testing.T) (*evaluator.Evaluator, *evaluator.EvalContext) {
	t.Helper()
	ev := evaluator.New()
	ctx := ev.NewContext()
	for _, op := range extnum.Operators() {
		ctx.Register(op)
	}
	return ev, ctx
}

func evalValue(t *testing.T, ev *evaluator.Evaluator, ctx *evaluator.EvalContext, src string) types.Value {
	t.Helper()
	expr, err := parser.Compile(src, ctx)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", src, err)
	}
	v, err := ev.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("Failed to evaluate %q: %v", src, err)
	}
	return v
}

func evalValueErr(t *testing.T, ev *evaluator.Evaluator, ctx *evaluator.EvalContext, src string, code types.ErrorCode) {
	t.Helper()
	expr, err := parser.Compile(src, ctx)
	if err == nil {
		_, err = ev.Eval(expr, ctx)
	}
	if types.CodeOf(err) != code {
		t.Fatalf("evaluating %q: error = %v, want code %s", src, err, code)
	}
}

func TestNumOperators(t *testing.T) {
	ev, ctx := newContext(t)
	tests := []struct {
		input string
		want  string
	}{
		{"fact(0)", "1"},
		{"fact(5)", "120"},
		{"fact(20)", "2432902008176640000"},
		{"gcd({12,18})", "6"},
		{"gcd(12,18)", "6"},
		{"lcm(4,6)", "12"},
		{"lcm({2,3,4})", "12"},
		{"sign(-3)", "-1"},
		{"sign(0)", "0"},
		{"trunc(2.9)", "2"},
		{"trunc(-2.9)", "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := evalValue(t, ev, ctx, tt.input).String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNumDomainErrors(t *testing.T) {
	ev, ctx := newContext(t)
	evalValueErr(t, ev, ctx, "fact(-1)", types.ErrMathDomain)
	evalValueErr(t, ev, ctx, "fact(2.5)", types.ErrMathDomain)
	evalValueErr(t, ev, ctx, "gcd(1.5, 2)", types.ErrMathDomain)
}

func TestSignMapsElementwise(t *testing.T) {
	ev, ctx := newContext(t)
	v := evalValue(t, ev, ctx, "sign({-2, 0, 7})")
	if v.String() != "{-1, 0, 1}" {
		t.Errorf("got %q", v.String())
	}
}
