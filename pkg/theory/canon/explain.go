package canon

import (
	"fmt"
	"strings"

	"github.com/dpllt/seqtheory/pkg/theory/dep"
)

// ExplainEq renders a human-readable justification for why a and b were
// concluded equal, by linearizing d into its literal and enode-pair
// leaves. This is a display-only supplement (the original's explain_eq)
// used by Core.Dump and the CLI's repl; nothing in the solving pipeline
// consumes its output.
func ExplainEq(a, b fmt.Stringer, d *dep.Dependency) string {
	lits, eqs := dep.Linearize(d)

	var b2 strings.Builder

	fmt.Fprintf(&b2, "%s = %s because", a, b)

	if len(lits) == 0 && len(eqs) == 0 {
		b2.WriteString(" <no assumptions>")
		return b2.String()
	}

	for _, l := range lits {
		fmt.Fprintf(&b2, " lit(%d)", l)
	}

	for _, e := range eqs {
		fmt.Fprintf(&b2, " enode(%d)=enode(%d)", e.A, e.B)
	}

	return b2.String()
}

// ExplainEmpty renders a justification for why s was concluded empty
// (the original's explain_empty): the same leaf-set rendering as
// ExplainEq, phrased for the single-term case.
func ExplainEmpty(s fmt.Stringer, d *dep.Dependency) string {
	lits, eqs := dep.Linearize(d)

	var b strings.Builder

	fmt.Fprintf(&b, "%s = ε because", s)

	if len(lits) == 0 && len(eqs) == 0 {
		b.WriteString(" <no assumptions>")
		return b.String()
	}

	for _, l := range lits {
		fmt.Fprintf(&b, " lit(%d)", l)
	}

	for _, e := range eqs {
		fmt.Fprintf(&b, " enode(%d)=enode(%d)", e.A, e.B)
	}

	return b.String()
}
