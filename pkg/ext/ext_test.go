package ext_test

import (
	"testing"

	"github.com/calque-lang/calque/pkg/ext"
)

func TestPacksResolve(t *testing.T) {
	ops, err := ext.Packs("stat", "num")
	if err != nil {
		t.Fatalf("Packs: %v", err)
	}
	if len(ops) == 0 {
		t.Fatal("no operators returned")
	}
	seen := map[string]bool{}
	for _, op := range ops {
		for _, a := range op.Aliases() {
			seen[a] = true
		}
	}
	for _, want := range []string{"mean", "median", "stdev", "fact", "gcd", "lcm"} {
		if !seen[want] {
			t.Errorf("missing alias %q", want)
		}
	}
}

func TestPacksUnknownName(t *testing.T) {
	if _, err := ext.Packs("statistics"); err == nil {
		t.Fatal("expected error for unknown pack")
	}
}

func TestPacksEmpty(t *testing.T) {
	ops, err := ext.Packs()
	if err != nil || ops != nil {
		t.Fatalf("Packs() = %v, %v", ops, err)
	}
}
