// Package dep implements the dependency manager of §4.1: a DAG whose
// leaves are assumptions (a currently-true literal, or a pair of enodes
// known equal) and whose internal nodes are binary joins. Dependencies are
// threaded through every inference the core makes, so that a conflict
// clause or propagated literal can cite exactly the subset of current
// assumptions it actually relies on.
package dep

import "github.com/dpllt/seqtheory/pkg/theory/external"

// Dependency is an opaque handle onto a DAG of joined assumptions. A nil
// Dependency is the identity of Join - "no assumptions needed".
type Dependency struct {
	lit    external.Literal // valid when kind == kindLeafLit
	eq     external.EnodePair
	kind   depKind
	left   *Dependency
	right  *Dependency
}

type depKind uint8

const (
	kindLeafLit depKind = iota
	kindLeafEq
	kindJoin
)

// Leaf constructs a new dependency from a literal assumption.
func Leaf(lit external.Literal) *Dependency {
	return &Dependency{kind: kindLeafLit, lit: lit}
}

// LeafEq constructs a new dependency from an enode-pair assumption.
func LeafEq(n1, n2 external.EnodeID) *Dependency {
	return &Dependency{kind: kindLeafEq, eq: external.EnodePair{A: n1, B: n2}}
}

// Join commutatively unions two dependencies; nil is the identity.
func Join(d1, d2 *Dependency) *Dependency {
	if d1 == nil {
		return d2
	}

	if d2 == nil {
		return d1
	}

	return &Dependency{kind: kindJoin, left: d1, right: d2}
}

// JoinAll folds Join over zero or more dependencies.
func JoinAll(ds ...*Dependency) *Dependency {
	var acc *Dependency
	for _, d := range ds {
		acc = Join(acc, d)
	}

	return acc
}

// Linearize flattens a dependency to its leaf set: the literals and
// enode-pairs it rests on, each reported at most once. Every literal
// returned must currently be assigned true in the SAT context; callers
// that linearize before asserting violate that precondition at their own
// risk (the manager itself does not re-check truth values, since by the
// time a dependency reaches linearize its leaves were already true when
// captured).
func Linearize(d *Dependency) ([]external.Literal, []external.EnodePair) {
	var (
		lits []external.Literal
		eqs  []external.EnodePair
	)

	seenLit := make(map[external.Literal]bool)
	seenEq := make(map[external.EnodePair]bool)

	var walk func(d *Dependency)
	walk = func(d *Dependency) {
		if d == nil {
			return
		}

		switch d.kind {
		case kindLeafLit:
			if !seenLit[d.lit] {
				seenLit[d.lit] = true
				lits = append(lits, d.lit)
			}
		case kindLeafEq:
			key := canonicalPair(d.eq)
			if !seenEq[key] {
				seenEq[key] = true
				eqs = append(eqs, key)
			}
		case kindJoin:
			walk(d.left)
			walk(d.right)
		}
	}

	walk(d)

	return lits, eqs
}

func canonicalPair(p external.EnodePair) external.EnodePair {
	if p.A <= p.B {
		return p
	}

	return external.EnodePair{A: p.B, B: p.A}
}

// ToJustification linearizes d into the external.Justification shape the
// theory propagator / axiom sink expects.
func ToJustification(d *Dependency) external.Justification {
	lits, eqs := Linearize(d)
	return external.Justification{Literals: lits, Eqs: eqs}
}
