// Package driverdemo implements every interface in pkg/theory/external
// with minimal, deliberately unambitious reference logic: a unit-
// propagation-only SAT engine, a union-find equality graph, a map-backed
// arithmetic theory, a prefix/suffix-cancelling rewriter, a no-opinion
// nested kernel, and a recording theory propagator. None of this is
// part of the theory core itself - a real deployment supplies its own,
// far more capable, versions of each. This package exists only so this
// module's own tests and its CLI have something concrete to run Core
// against.
package driverdemo

import (
	"sort"

	"github.com/dpllt/seqtheory/pkg/theory/external"
)

// SAT is a minimal propositional engine: it auto-decides unit clauses and
// otherwise only records what it is told, with no search and no conflict-
// driven learning. Good enough to drive deterministic theory-only test
// scenarios; not a general SAT solver.
type SAT struct {
	assigned map[external.Literal]bool
	clauses  [][]external.Literal
	trail    []external.Literal

	// Conflicted is set once an empty clause (the unconditional "false") is
	// ever added - the only conflict signal this reference engine tracks.
	Conflicted bool

	// Notify, if set, is called after every assignment this engine makes
	// (whether pushed in directly via AssignLiteral or auto-decided by
	// AddClause's unit-clause shortcut) - the push side of the theory's
	// AssignLiteral consumption a real host is expected to wire up.
	Notify func(lit external.Literal, isTrue bool)
}

// NewSAT returns an empty SAT engine.
func NewSAT() *SAT {
	return &SAT{assigned: make(map[external.Literal]bool)}
}

// Value reports lit's current assignment, Undef if neither lit nor its
// negation has been assigned.
func (s *SAT) Value(lit external.Literal) external.TruthValue {
	if v, ok := s.assigned[lit]; ok {
		if v {
			return external.True
		}

		return external.False
	}

	if v, ok := s.assigned[lit.Negate()]; ok {
		if v {
			return external.False
		}

		return external.True
	}

	return external.Undef
}

// AssignLiteral records lit's truth value and pushes it onto the trail.
func (s *SAT) AssignLiteral(lit external.Literal, isTrue bool) {
	s.assigned[lit] = isTrue
	s.trail = append(s.trail, lit)

	if s.Notify != nil {
		s.Notify(lit, isTrue)
	}
}

// AddClause installs lits; a singleton clause is a forced decision and is
// assigned immediately (the only propagation this reference engine does).
func (s *SAT) AddClause(lits []external.Literal) {
	s.clauses = append(s.clauses, lits)

	switch len(lits) {
	case 0:
		s.Conflicted = true
	case 1:
		s.AssignLiteral(lits[0], true)
	}
}

// PushScope begins a new backtracking scope.
func (s *SAT) PushScope() {
	s.trail = append(s.trail, 0) // sentinel marking the scope boundary
}

// PopScope discards n scopes, undoing every assignment made since.
func (s *SAT) PopScope(n uint) {
	for i := uint(0); i < n; i++ {
		for len(s.trail) > 0 {
			lit := s.trail[len(s.trail)-1]
			s.trail = s.trail[:len(s.trail)-1]

			if lit == 0 {
				break
			}

			delete(s.assigned, lit)
		}
	}
}

// Clauses returns every clause installed so far, for test assertions.
func (s *SAT) Clauses() [][]external.Literal { return s.clauses }

// Atoms hands back a literal for every atom ID on first use, identity-
// mapped (atomID is already a unique term ID, so no further interning is
// needed).
type Atoms struct{}

// LiteralFor implements external.TheoryAtomSource.
func (Atoms) LiteralFor(atomID uint64) external.Literal {
	return external.Literal(atomID) //nolint:gosec // demo-only identity mapping
}

// Sink records every asserted clause by name, and forwards singleton
// clauses straight to sat as a forced unit (mirroring how a real SAT
// engine would immediately propagate a unit clause it is handed).
type Sink struct {
	sat     *SAT
	clauses map[string][][]external.Literal
}

// NewSink returns a Sink that forwards unit clauses to sat.
func NewSink(sat *SAT) *Sink {
	return &Sink{sat: sat, clauses: make(map[string][][]external.Literal)}
}

// Assert implements external.AxiomSink.
func (s *Sink) Assert(name string, lits []external.Literal) {
	s.clauses[name] = append(s.clauses[name], lits)
	s.sat.AddClause(lits)
}

// Clauses returns every clause asserted under name, for test assertions.
func (s *Sink) Clauses(name string) [][]external.Literal { return s.clauses[name] }

// Graph is a union-find equality graph over external.EnodeID.
type Graph struct {
	parent map[external.EnodeID]external.EnodeID
}

// NewGraph returns an empty equality graph.
func NewGraph() *Graph {
	return &Graph{parent: make(map[external.EnodeID]external.EnodeID)}
}

// Find implements external.EqualityGraph.
func (g *Graph) Find(n external.EnodeID) external.EnodeID {
	p, ok := g.parent[n]
	if !ok || p == n {
		return n
	}

	root := g.Find(p)
	g.parent[n] = root

	return root
}

// Merge unions n1 and n2's equivalence classes.
func (g *Graph) Merge(n1, n2 external.EnodeID) {
	r1, r2 := g.Find(n1), g.Find(n2)
	if r1 != r2 {
		g.parent[r1] = r2
	}
}

// AreEqual implements external.EqualityGraph.
func (g *Graph) AreEqual(n1, n2 external.EnodeID) bool {
	return g.Find(n1) == g.Find(n2)
}

// Class implements external.EqualityGraph.
func (g *Graph) Class(n external.EnodeID) []external.EnodeID {
	root := g.Find(n)

	var out []external.EnodeID

	for member := range g.parent {
		if g.Find(member) == root {
			out = append(out, member)
		}
	}

	if len(out) == 0 {
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Arith answers bound/value queries from explicit per-enode maps a test
// sets up directly; it never infers anything.
type Arith struct {
	engine string
	lower  map[external.EnodeID]int64
	upper  map[external.EnodeID]int64
	value  map[external.EnodeID]int64
}

// NewArith returns an empty arithmetic theory reporting engine as its
// Engine() name ("old" or "new").
func NewArith(engine string) *Arith {
	return &Arith{
		engine: engine,
		lower:  make(map[external.EnodeID]int64),
		upper:  make(map[external.EnodeID]int64),
		value:  make(map[external.EnodeID]int64),
	}
}

// SetBounds fixes e's [lo, hi] bound.
func (a *Arith) SetBounds(e external.EnodeID, lo, hi int64) {
	a.lower[e] = lo
	a.upper[e] = hi
}

// SetValue fixes e's exact value (and, equivalently, its bound).
func (a *Arith) SetValue(e external.EnodeID, v int64) {
	a.value[e] = v
	a.SetBounds(e, v, v)
}

// LowerBound implements external.ArithmeticTheory.
func (a *Arith) LowerBound(e external.EnodeID) (int64, bool) { v, ok := a.lower[e]; return v, ok }

// UpperBound implements external.ArithmeticTheory.
func (a *Arith) UpperBound(e external.EnodeID) (int64, bool) { v, ok := a.upper[e]; return v, ok }

// Value implements external.ArithmeticTheory.
func (a *Arith) Value(e external.EnodeID) (int64, bool) { v, ok := a.value[e]; return v, ok }

// Engine implements external.ArithmeticTheory.
func (a *Arith) Engine() string { return a.engine }

// Rewriter cancels a shared, identity-matching prefix and suffix between
// the two sides of a pending sequence equality; it is a real (if simple)
// simplification, not a no-op stand-in.
type Rewriter struct{}

// SimplifySeqEq implements external.Rewriter.
func (Rewriter) SimplifySeqEq(ls, rs []external.RewriteTerm) ([][]external.RewriteTerm, [][]external.RewriteTerm, bool) {
	same := func(a, b external.RewriteTerm) bool {
		if a.ID == b.ID {
			return true
		}

		if a.IsConst && b.IsConst {
			return string(a.ConstVal) == string(b.ConstVal)
		}

		if a.IsUnit && b.IsUnit {
			return a.UnitVal == b.UnitVal
		}

		return false
	}

	lo := 0
	for lo < len(ls) && lo < len(rs) && same(ls[lo], rs[lo]) {
		lo++
	}

	hiL, hiR := len(ls), len(rs)
	for hiL > lo && hiR > lo && same(ls[hiL-1], rs[hiR-1]) {
		hiL--
		hiR--
	}

	if lo == 0 && hiL == len(ls) {
		return nil, nil, false
	}

	return [][]external.RewriteTerm{ls[lo:hiL]}, [][]external.RewriteTerm{rs[lo:hiR]}, true
}

// Nested never has a real second kernel to delegate to; CheckSat always
// reports ok=false, the documented "no opinion" answer.
type Nested struct{}

// CheckSat implements external.NestedKernel.
func (Nested) CheckSat(uint64) (bool, bool) { return false, false }

// Propagator records every Assign/AssignEq/SetConflict call for test
// assertions, instead of forwarding them anywhere.
type Propagator struct {
	Assigned   []external.Literal
	AssignedEq []external.EnodePair
	Conflicts  []external.Justification
}

// NewPropagator returns an empty recording propagator.
func NewPropagator() *Propagator { return &Propagator{} }

// Assign implements external.TheoryPropagator.
func (p *Propagator) Assign(lit external.Literal, j external.Justification) {
	p.Assigned = append(p.Assigned, lit)
}

// AssignEq implements external.TheoryPropagator.
func (p *Propagator) AssignEq(n1, n2 external.EnodeID, j external.Justification) {
	p.AssignedEq = append(p.AssignedEq, external.EnodePair{A: n1, B: n2})
}

// SetConflict implements external.TheoryPropagator.
func (p *Propagator) SetConflict(j external.Justification) {
	p.Conflicts = append(p.Conflicts, j)
}
