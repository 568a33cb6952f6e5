package parser_test

import (
	"testing"

	"github.com/calque-lang/calque/pkg/evaluator"
	"github.com/calque-lang/calque/pkg/parser"
	"github.com/calque-lang/calque/pkg/types"
)

// Helper functions

func newRegistry(t *testing.T) *evaluator.EvalContext {
	t.Helper()
	return evaluator.New().NewContext()
}

func parseExpr(t *testing.T, reg *evaluator.EvalContext, input string) *types.Node {
	t.Helper()
	expr, err := parser.Compile(input, reg)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", input, err)
	}
	return expr.Root()
}

func expectParseError(t *testing.T, reg *evaluator.EvalContext, input string, code types.ErrorCode) {
	t.Helper()
	_, err := parser.Compile(input, reg)
	if err == nil {
		t.Fatalf("Expected error parsing %q but got none", input)
	}
	if got := types.CodeOf(err); got != code {
		t.Fatalf("parsing %q: error code = %s, want %s (err: %v)", input, got, code, err)
	}
}

// Literal tests

func TestParseLiterals(t *testing.T) {
	reg := newRegistry(t)
	tests := []struct {
		name    string
		input   string
		percent bool
		exact   bool
		num     float64
	}{
		{"integer", "42", false, true, 42},
		{"negative integer", "-7", false, true, -7},
		{"decimal", "3.14", false, false, 3.14},
		{"scientific", "1e-9", false, false, 1e-9},
		{"percent", "10%", true, false, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := parseExpr(t, reg, tt.input)
			if node.Kind != types.NodeNumber {
				t.Fatalf("kind = %s, want number", node.Kind)
			}
			if node.IsPercent != tt.percent {
				t.Errorf("IsPercent = %v, want %v", node.IsPercent, tt.percent)
			}
			if tt.exact && node.Rat == nil {
				t.Error("expected exact rational payload")
			}
			if node.Num != tt.num {
				t.Errorf("Num = %v, want %v", node.Num, tt.num)
			}
		})
	}
}

func TestParseNormalization(t *testing.T) {
	reg := newRegistry(t)
	a := parseExpr(t, reg, "2 + 3 * 4")
	b := parseExpr(t, reg, "2+3*4")
	c := parseExpr(t, reg, "2 + 3 * 4\n")
	for i, n := range []*types.Node{a, b, c} {
		if n.Kind != types.NodeExpr || n.OpName != "+" {
			t.Errorf("tree %d: root = %s %q, want expr +", i, n.Kind, n.OpName)
		}
	}
}

// Precedence shapes

func TestParsePrecedence(t *testing.T) {
	reg := newRegistry(t)
	tests := []struct {
		name     string
		input    string
		rootOp   string
		operands int
	}{
		{"mul binds tighter than add", "2+3*4", "+", 2},
		{"pow binds tighter than mul", "2^3*2", "*", 2},
		{"left associative sub", "2-3-4", "-", 2},
		{"comparison loosest", "1+2=3", "=", 2},
		{"unary function", "sin(1)", "sin", 1},
		{"sign on operand", "2*-4", "*", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := parseExpr(t, reg, tt.input)
			if node.Kind != types.NodeExpr {
				t.Fatalf("kind = %s, want expr", node.Kind)
			}
			if node.OpName != tt.rootOp {
				t.Errorf("root op = %q, want %q", node.OpName, tt.rootOp)
			}
			if len(node.Operands) != tt.operands {
				t.Errorf("operands = %d, want %d", len(node.Operands), tt.operands)
			}
		})
	}
}

func TestParseLeftAssociativeChain(t *testing.T) {
	reg := newRegistry(t)
	node := parseExpr(t, reg, "2-3-4")
	// ((2-3)-4): the left operand is itself a subtraction.
	left := node.Operands[0]
	if left.Kind != types.NodeExpr || left.OpName != "-" {
		t.Fatalf("left operand = %s %q, want expr -", left.Kind, left.OpName)
	}
	if node.Operands[1].Kind != types.NodeNumber || node.Operands[1].Num != 4 {
		t.Fatalf("right operand = %+v, want 4", node.Operands[1])
	}
}

func TestParseImplicitZeroSign(t *testing.T) {
	reg := newRegistry(t)
	node := parseExpr(t, reg, "-3+5")
	if node.Kind != types.NodeExpr || node.OpName != "+" {
		t.Fatalf("root = %s %q, want expr +", node.Kind, node.OpName)
	}
}

// Collections

func TestParseCollections(t *testing.T) {
	reg := newRegistry(t)
	tests := []struct {
		name  string
		input string
		kind  types.NodeKind
		elems int
	}{
		{"vector", "{1,2,3}", types.NodeSet, 3},
		{"nested vector", "{{1,2},3}", types.NodeSet, 2},
		{"matrix", "[{1,2},{3,4}]", types.NodeMatrix, 2},
		{"call tuple", "(1,2)", types.NodeSet, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := parseExpr(t, reg, tt.input)
			if node.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", node.Kind, tt.kind)
			}
			if len(node.Elems) != tt.elems {
				t.Errorf("elems = %d, want %d", len(node.Elems), tt.elems)
			}
		})
	}
}

func TestParseParenGroupUnwraps(t *testing.T) {
	reg := newRegistry(t)
	node := parseExpr(t, reg, "(2+3)")
	if node.Kind != types.NodeExpr || node.OpName != "+" {
		t.Fatalf("root = %s %q, want expr +", node.Kind, node.OpName)
	}
}

// Variables and constants

func TestParseVariableProbe(t *testing.T) {
	reg := newRegistry(t)
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "x", "x"},
		{"known constant", "pi", "pi"},
		{"underscore name", "my_var", "my_var"},
		{"name without aliases", "pie", "pie"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := parseExpr(t, reg, tt.input)
			if node.Kind != types.NodeVariable || node.Name != tt.want {
				t.Fatalf("node = %s %q, want variable %q", node.Kind, node.Name, tt.want)
			}
		})
	}
}

// Assignment and function definition

func TestParseBinding(t *testing.T) {
	reg := newRegistry(t)
	node := parseExpr(t, reg, "x := 5")
	if node.Kind != types.NodeBinding || node.Name != "x" {
		t.Fatalf("node = %s %q, want binding x", node.Kind, node.Name)
	}
	if node.Body == nil || node.Body.Kind != types.NodeNumber {
		t.Fatal("binding body missing")
	}
}

func TestParseFuncDefRegistersOperator(t *testing.T) {
	reg := newRegistry(t)
	before := reg.Version()

	node := parseExpr(t, reg, "sq(x) := x^2")
	if node.Kind != types.NodeFuncDef || node.Name != "sq" {
		t.Fatalf("node = %s %q, want funcdef sq", node.Kind, node.Name)
	}
	if len(node.Params) != 1 || node.Params[0] != "x" {
		t.Fatalf("params = %v, want [x]", node.Params)
	}
	if _, ok := reg.LookupOperator("sq"); !ok {
		t.Fatal("sq not registered as an operator")
	}
	if reg.Version() == before {
		t.Error("registry version did not advance")
	}

	// The definition is immediately part of the grammar.
	call := parseExpr(t, reg, "sq(4)")
	if call.Kind != types.NodeExpr || call.OpName != "sq" {
		t.Fatalf("call = %s %q, want expr sq", call.Kind, call.OpName)
	}
}

func TestParseFuncDefRollbackOnBadBody(t *testing.T) {
	reg := newRegistry(t)
	if _, err := parser.Compile("bad(x) := x +", reg); err == nil {
		t.Fatal("expected parse error")
	}
	if _, ok := reg.LookupOperator("bad"); ok {
		t.Fatal("failed definition left operator registered")
	}
}

func TestParseFuncDefRollbackRestoresPriorDefinition(t *testing.T) {
	reg := newRegistry(t)
	parseExpr(t, reg, "f(x) := x+1")
	before, ok := reg.LookupOperator("f")
	if !ok {
		t.Fatal("f not registered")
	}

	if _, err := parser.Compile("f(x) := x*", reg); err == nil {
		t.Fatal("expected parse error")
	}
	after, ok := reg.LookupOperator("f")
	if !ok {
		t.Fatal("failed redefinition erased the prior operator")
	}
	if after != before {
		t.Error("failed redefinition did not restore the prior operator")
	}
}

func TestParseAssignTargetErrors(t *testing.T) {
	reg := newRegistry(t)
	tests := []struct {
		name  string
		input string
		code  types.ErrorCode
	}{
		{"operator name target", "sin := 4", types.ErrVariableIsOperator},
		{"numeric target", "3 := 4", types.ErrBadAssignTarget},
		{"bad parameter", "f(3) := 4", types.ErrBadAssignTarget},
		{"empty body", "x :=", types.ErrMissingOperand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectParseError(t, reg, tt.input, tt.code)
		})
	}
}

// Error cases

func TestParseErrors(t *testing.T) {
	reg := newRegistry(t)
	tests := []struct {
		name  string
		input string
		code  types.ErrorCode
	}{
		{"empty", "", types.ErrEmptyExpression},
		{"whitespace only", "   ", types.ErrEmptyExpression},
		{"missing left operand", "*4", types.ErrMissingOperand},
		{"missing right operand", "2+", types.ErrMissingOperand},
		{"unmatched open", "(2+3", types.ErrUnmatchedBracket},
		{"unmatched close", "2+3)", types.ErrUnmatchedBracket},
		{"unknown token", "2+@", types.ErrUnknownToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectParseError(t, reg, tt.input, tt.code)
		})
	}
}

func TestParseDepthLimit(t *testing.T) {
	reg := newRegistry(t)
	deep := ""
	for i := 0; i < 300; i++ {
		deep += "("
	}
	deep += "1"
	for i := 0; i < 300; i++ {
		deep += ")"
	}
	expectParseError(t, reg, deep, types.ErrDepthExceeded)
}

func TestExpressionMetadata(t *testing.T) {
	reg := newRegistry(t)
	expr, err := parser.Compile("2 + 2", reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if expr.Source() != "2 + 2" {
		t.Errorf("Source = %q", expr.Source())
	}
	if expr.Version() != reg.Version() {
		t.Errorf("Version = %d, want %d", expr.Version(), reg.Version())
	}
}
