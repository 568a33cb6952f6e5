// Package ext bundles optional operator packs that can be installed into a
// session alongside the built-ins.
//
// Packs are addressed by short name, matching the extensions list of the
// YAML configuration:
//
//	ops, err := ext.Packs("stat", "num")
//	for _, op := range ops {
//	    ctx.Register(op)
//	}
package ext

import (
	"fmt"

	"github.com/calque-lang/calque/pkg/ext/extnum"
	"github.com/calque-lang/calque/pkg/ext/extstat"
	"github.com/calque-lang/calque/pkg/operator"
)

// Packs resolves pack names to their operators, in order.
func Packs(names ...string) ([]operator.Operator, error) {
	var ops []operator.Operator
	for _, name := range names {
		switch name {
		case "stat":
			ops = append(ops, extstat.Operators()...)
		case "num":
			ops = append(ops, extnum.Operators()...)
		default:
			return nil, fmt.Errorf("unknown extension pack %q", name)
		}
	}
	return ops, nil
}
