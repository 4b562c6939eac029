// Package axiom implements the axiom module of §4.6/§2: it emits the
// canonical clauses and defining equalities for every named sequence
// operator (length, indexof, replace, extract, at, itos, stoi, lt, le,
// unit, prefix, suffix, nth) plus the automaton accept/step propagation
// axioms of §4.6 and the not-contains unrolling axiom of §4.8. The
// pipeline calls this module by name; the exact clause shapes are pinned
// down here, grounded directly in the corresponding rule descriptions of
// spec.md §4.4/§4.6/§4.7/§4.8.
package axiom

import (
	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/regexast"
	"github.com/dpllt/seqtheory/pkg/theory/skolem"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

// Equality is a defining equation the axiom module wants the core to treat
// as a fresh pending equation (lhs must equal rhs under dep).
type Equality struct {
	Lhs, Rhs *term.Term
	Dep      *dep.Dependency
}

// Literand is one disjunct of a clause: either a raw external literal, or
// a Boolean-sorted theory atom (resolved to a literal through a
// TheoryAtomSource), optionally negated.
type Literand struct {
	Lit    external.Literal
	Atom   *term.Term
	Negate bool
}

// Pos builds a positive literand from a raw literal.
func Pos(l external.Literal) Literand { return Literand{Lit: l} }

// Neg builds a negative literand from a raw literal.
func Neg(l external.Literal) Literand { return Literand{Lit: l, Negate: true} }

// AtomPos builds a positive literand from a theory atom.
func AtomPos(t *term.Term) Literand { return Literand{Atom: t} }

// AtomNeg builds a negative literand from a theory atom.
func AtomNeg(t *term.Term) Literand { return Literand{Atom: t, Negate: true} }

// Resolve turns a Literand into a concrete external.Literal.
func (l Literand) Resolve(atoms external.TheoryAtomSource) external.Literal {
	base := l.Lit
	if l.Atom != nil {
		base = atoms.LiteralFor(uint64(l.Atom.ID()))
	}

	if l.Negate {
		return base.Negate()
	}

	return base
}

// Emitter bundles the services the axiom module needs to actually hand a
// clause to the host: a source of literals for theory atoms, and the sink
// clauses are asserted into.
type Emitter struct {
	Atoms external.TheoryAtomSource
	Sink  external.AxiomSink
}

// Clause asserts name as the disjunction of lits, after also negating and
// including every literal leaf of guardDep as a hypothesis (so the clause
// reads "¬guards ∨ lits...", i.e. "guards ⇒ ⋁ lits").
func (e *Emitter) Clause(name string, guardDep *dep.Dependency, lits ...Literand) {
	guardLits, _ := dep.Linearize(guardDep)

	out := make([]external.Literal, 0, len(guardLits)+len(lits))
	for _, g := range guardLits {
		out = append(out, g.Negate())
	}

	for _, l := range lits {
		out = append(out, l.Resolve(e.Atoms))
	}

	e.Sink.Assert(name, out)
}

// --- defining equalities (§4.4, §4.7) ---------------------------------

// LengthEpsilon asserts |ε| = 0. The caller must phrase "0" as whatever
// term the arithmetic theory uses for the integer literal zero.
func LengthEpsilon(m *term.Manager, eps, zero *term.Term) Equality {
	return Equality{Lhs: m.Length(eps), Rhs: zero}
}

// LengthUnit asserts |unit(c)| = 1.
func LengthUnit(m *term.Manager, u, one *term.Term) Equality {
	return Equality{Lhs: m.Length(u), Rhs: one}
}

// LengthConcat asserts |x ++ y| = |x| + |y|, where sum is the
// already-built arithmetic sum term |x|+|y| (built by the arithmetic
// theory's term constructors, which this module does not own).
func LengthConcat(m *term.Manager, xy, sum *term.Term) Equality {
	return Equality{Lhs: m.Length(xy), Rhs: sum}
}

// AtDefinition asserts at(s, i) = unit(nth(s, i)) when i is in range; the
// caller is responsible for guarding this with the range check (§8
// boundary behavior: substr/at outside range return ε / are
// unconstrained).
func AtDefinition(m *term.Manager, s, i *term.Term) Equality {
	return Equality{Lhs: m.At(s, i), Rhs: m.Unit(m.Nth(s, i))}
}

// SubstrEmptyGuard returns the defining equality substr(s,i,l) = ε. The
// pipeline only enqueues this once it has established i<0 ∨ i≥|s| ∨ l≤0
// from the arithmetic theory's bounds (§8 boundary behavior); nth(ε,i) is
// likewise left unconstrained by this module for the same reason - no
// equation is ever built for it.
func SubstrEmptyGuard(m *term.Manager, s, i, l *term.Term) Equality {
	return Equality{Lhs: m.Substr(s, i, l), Rhs: m.Epsilon()}
}

// IndexOfDecomposition asserts the standard indexof defining equality:
// when t occurs in s, s = indexof_left(s,t) ++ t ++ indexof_right(s,t) and
// indexof(s,t) = |indexof_left(s,t)|.
func IndexOfDecomposition(m *term.Manager, s, t *term.Term) (decompose, value Equality) {
	left := skolem.IndexOfLeft(m, s, t)
	right := skolem.IndexOfRight(m, s, t)
	decompose = Equality{Lhs: s, Rhs: m.Concat(left, t, right)}
	value = Equality{Lhs: m.IndexOf(s, t), Rhs: m.Length(left)}

	return decompose, value
}

// ReplaceDecomposition asserts: when t occurs in s at indexof_left/right,
// replace(s,t,u) = indexof_left(s,t) ++ u ++ indexof_right(s,t).
func ReplaceDecomposition(m *term.Manager, s, t, u *term.Term) Equality {
	left := skolem.IndexOfLeft(m, s, t)
	right := skolem.IndexOfRight(m, s, t)

	return Equality{Lhs: m.Replace(s, t, u), Rhs: m.Concat(left, u, right)}
}

// PrefixDecomposition asserts: prefix(a,b) ⇒ b = a ++ suffix_inv(a,b).
func PrefixDecomposition(m *term.Manager, a, b *term.Term) Equality {
	return Equality{Lhs: b, Rhs: m.Concat(a, skolem.SuffixInv(m, a, b))}
}

// SuffixDecomposition asserts: suffix(a,b) ⇒ b = prefix_inv(a,b) ++ a.
func SuffixDecomposition(m *term.Manager, a, b *term.Term) Equality {
	return Equality{Lhs: b, Rhs: m.Concat(skolem.PrefixInv(m, a, b), a)}
}

// NthDecomposition is mk_decompose: s = unit(nth(s,0)) ++ tail(s,0) for a
// non-empty s, i.e. the head/tail split the original calls mk_decompose.
// zero is the arithmetic theory's integer-zero term, injected by the
// caller since this module does not own integer literal construction.
func NthDecomposition(m *term.Manager, s, zero *term.Term) Equality {
	head := m.Unit(m.Nth(s, zero))
	tail := skolem.Tail(m, s, zero)

	return Equality{Lhs: s, Rhs: m.Concat(head, tail)}
}

// --- automaton propagation (§4.6) -------------------------------------

// AutomatonState is one state of a compiled regex automaton, identified by
// its index within that automaton's state numbering.
type AutomatonState = int64

// RegexMembership asserts the defining clause for s ∈ R: s is accepted by
// R from position 0 iff s matches starting in one of init's states (the
// ε-closure of the automaton's start state, which may contain more than
// one state when the automaton was built with ε-transitions collapsed
// lazily rather than up front).
//
//	s ∈ R ⇒ ⋁_{q ∈ init} accept(s, 0, R, q)
func RegexMembership(m *term.Manager, e *Emitter, s *term.Term, r regexast.Regex, zero *term.Term, init []AutomatonState) {
	mem := AtomNeg(m.InRegex(s, r))

	lits := make([]Literand, 0, len(init)+1)
	lits = append(lits, mem)

	for _, q := range init {
		lits = append(lits, AtomPos(skolem.Accept(m, s, zero, r, q)))
	}

	e.Clause("regex-membership-init", nil, lits...)
}

// PropagateAccept asserts the defining recursion for accept(s,i,R,q): if q
// is not accepting, then either some step out of q at position i holds (and
// that step's target state itself accepts the remainder), or there is no
// way forward and accept(s,i,R,q) is false. This emits one clause per
// outgoing transition q -> q' (the step atom being true at position i
// implies acceptance continues from q' at position i+1), plus one clause
// tying acceptance at q back to the disjunction over every outgoing step.
//
//	accept(s,i,R,q) ⇒ ⋁_{q->q'} step(s,i,R,q,q')      (q not accepting)
//	step(s,i,R,q,q') ⇒ accept(s,i+1,R,q')
func PropagateAccept(m *term.Manager, e *Emitter, s, i, iPlus1 *term.Term, r regexast.Regex, q AutomatonState, outgoing []AutomatonState, accepting bool) {
	acc := skolem.Accept(m, s, i, r, q)

	if accepting {
		return
	}

	if len(outgoing) == 0 {
		e.Clause("accept-dead-end", nil, AtomNeg(acc))
		return
	}

	lits := make([]Literand, 0, len(outgoing)+1)
	lits = append(lits, AtomNeg(acc))

	for _, qPrime := range outgoing {
		lits = append(lits, AtomPos(skolem.Step(m, s, i, r, q, qPrime)))
	}

	e.Clause("accept-step-disjunction", nil, lits...)

	for _, qPrime := range outgoing {
		step := skolem.Step(m, s, i, r, q, qPrime)
		nextAccept := skolem.Accept(m, s, iPlus1, r, qPrime)
		e.Clause("step-implies-next-accept", nil, AtomNeg(step), AtomPos(nextAccept))
	}
}

// PropagateStep asserts that a step atom implies its transition guard: the
// character at position i (nth(s,i)) must lie in the class guarding the
// q->q' transition. guard is the Boolean atom (built by the caller from
// the class/alphabet theory) standing for "nth(s,i) matches this
// transition's guard".
//
//	step(s,i,R,q,q') ⇒ guard
func PropagateStep(e *Emitter, step, guard Literand) {
	e.Clause("step-guard", nil, step.negated(), guard)
}

// --- comparison transitivity (§4.4 rule 2, check_lts) ------------------

// LtTransitivity instantiates a ◁ b ∧ b ≡ c ◁ d ⇒ a ◁ d for the strict
// lexicographic order, where the middle equality is implicit in b and c
// denoting the same enode (the caller only calls this once it has
// observed that equivalence). The three Lt atoms a<b, c<d and a<d are
// built here from the terms passed in, so the caller chooses which
// representative terms get chained.
func LtTransitivity(m *term.Manager, e *Emitter, a, b, c, d *term.Term, eqDep *dep.Dependency) {
	ab := m.Lt(a, b)
	cd := m.Lt(c, d)
	ad := m.Lt(a, d)

	e.Clause("lt-transitivity", eqDep, AtomNeg(ab), AtomNeg(cd), AtomPos(ad))
}

// LeTransitivity is the non-strict analogue of LtTransitivity.
func LeTransitivity(m *term.Manager, e *Emitter, a, b, c, d *term.Term, eqDep *dep.Dependency) {
	ab := m.Le(a, b)
	cd := m.Le(c, d)
	ad := m.Le(a, d)

	e.Clause("le-transitivity", eqDep, AtomNeg(ab), AtomNeg(cd), AtomPos(ad))
}

// --- int-string digit-sequence axioms (§4.4.7, solve_itos) -------------

// ItoSEmptyImpliesNegative asserts itos(i) = ε ⇒ i < 0 (the only integer
// with no decimal rendering is a negative one).
func ItoSEmptyImpliesNegative(m *term.Manager, e *Emitter, i, zero *term.Term) {
	itosEmpty := AtomNeg(m.Eq(m.ItoS(i), m.Epsilon()))
	negative := AtomPos(m.Lt(i, zero))

	e.Clause("itos-empty-implies-negative", nil, itosEmpty, negative)
}

// ItoSDigitSequence asserts that once itos(i) has been expanded to a
// concrete sequence of unit digits (digits, one term per position, already
// produced by the canonizer's unfolding), each digit is a unit-lifted
// decimal digit and i equals the base-10 evaluation of the sequence. value
// is the arithmetic-theory term for that base-10 evaluation (the
// polynomial sum of digit2int(digits[k]) * 10^(n-1-k)); this module builds
// neither the polynomial nor the digit range-checks, it only asserts the
// two defining equalities tying them to i and to itos(i).
func ItoSDigitSequence(m *term.Manager, i *term.Term, digits []*term.Term, value *term.Term) (decompose, numeric Equality) {
	decompose = Equality{Lhs: m.ItoS(i), Rhs: m.Concat(digits...)}
	numeric = Equality{Lhs: i, Rhs: value}

	return decompose, numeric
}

// DigitRangeGuard returns the two Boolean atoms the pipeline must assert
// unconditionally true for a unit c occurring inside an itos/stoi digit
// sequence: 0 ≤ digit2int(c) and digit2int(c) ≤ 9. zero and nine are the
// arithmetic theory's corresponding integer-literal terms.
func DigitRangeGuard(m *term.Manager, c, zero, nine *term.Term) (lower, upper *term.Term) {
	d := skolem.Digit2Int(m, c)
	return m.Le(zero, d), m.Le(d, nine)
}

// --- not-contains unrolling (§4.8, solve_nc) ----------------------------

// NotContainsUnroll instantiates one step of the not-contains unrolling:
// given ¬contains(hay, needle) and |hay| ≥ |needle| (lenGETrue is the
// literal witnessing the latter), the constraint is hay=ε ∨ (needle is not
// a prefix of hay ∧ the same not-contains constraint holds one element
// further into hay, i.e. over tail(hay,0) in place of hay). The consequent
// is a disjunction of a literal and a conjunction, so correct clausal form
// needs two clauses sharing the guard - one per conjunct - not one clause
// merging both conjuncts into a single, weaker disjunction. The pipeline's
// check_contains calls this once per queued constraint and then drops that
// constraint; no max_unfolding budget is checked there.
func NotContainsUnroll(m *term.Manager, e *Emitter, hay, needle *term.Term, notContains, lenGETrue Literand, zero *term.Term) {
	tail := skolem.Tail(m, hay, zero)
	hayEmpty := AtomPos(m.Eq(hay, m.Epsilon()))
	prefixHeld := AtomNeg(m.PrefixOf(needle, hay))
	recurse := AtomNeg(m.Contains(tail, needle))

	e.Clause("not-contains-unroll-prefix", nil, notContains.negated(), lenGETrue.negated(), hayEmpty, prefixHeld)
	e.Clause("not-contains-unroll-recurse", nil, notContains.negated(), lenGETrue.negated(), hayEmpty, recurse)
}

func (l Literand) negated() Literand {
	return Literand{Lit: l.Lit, Atom: l.Atom, Negate: !l.Negate}
}
