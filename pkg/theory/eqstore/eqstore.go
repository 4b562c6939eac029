// Package eqstore holds the pending-work containers of §3/§4.4: the stack
// of pending equations, the disequation store, and the not-contains
// constraint store. All three are scoped via Stamp/Truncate the same way
// as pkg/theory/solution and pkg/theory/exclusion.
package eqstore

import (
	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/term"
	"github.com/dpllt/seqtheory/pkg/util/collection/stack"
)

// EquationID is a fresh monotone identifier assigned to each Equation at
// creation, establishing a stable processing order (spec §3: "Fresh
// monotone id for ordering").
type EquationID uint64

// Equation is a structured equation (id, lhs_seq, rhs_seq, dep): both
// sides are ordered lists of sequence terms whose concatenation must be
// equal.
type Equation struct {
	ID  EquationID
	Lhs []*term.Term
	Rhs []*term.Term
	Dep *dep.Dependency
}

// Partition is one pair of terms that would have to be equal
// simultaneously (along with every other partition pair, and every
// literal) for a Disequation to actually be violated.
type Partition struct {
	Lhs, Rhs *term.Term
}

// Disequation is (lhs_expr, rhs_expr, dep, literals, partitions): violated
// iff every partition pair is satisfied and every literal is true.
type Disequation struct {
	Lhs, Rhs   *term.Term
	Dep        *dep.Dependency
	Literals   []external.Literal
	Partitions []Partition
}

// NotContains is a negative-contains constraint: ¬contains(Needle, Hay) is
// wrong naming-wise versus spec's (contains_expr, len_gt_literal, dep); we
// follow the spec's own field order directly below.
type NotContains struct {
	// Contains is the positive contains(hay, needle) term whose negation is
	// asserted.
	Contains *term.Term
	// LenGT is the literal asserting |hay| > |needle|, whose truth value
	// controls unfolding (§4.8).
	LenGT external.Literal
	Dep   *dep.Dependency

	// ReadyToUnroll records §4.8's three-way branch on LenGT's current SAT
	// value, recomputed every round by the core (which alone can query the
	// SAT engine for it): true only once LenGT is decided false, meaning
	// check_contains (rule 4) may instantiate the unrolling axiom this
	// round. A decided-true or still-undecided guard leaves this false -
	// the former because the core has already seeded both sides' length
	// terms instead, the latter because nothing is due yet.
	ReadyToUnroll bool
}

// Store bundles the three scoped containers the pipeline drains from.
type Store struct {
	nextEqID EquationID

	equations    *stack.Stack[*Equation]
	disequations []*Disequation
	notContains  []*NotContains
}

// NewStore returns an empty equation/disequation/not-contains store.
func NewStore() *Store {
	return &Store{equations: stack.NewStack[*Equation]()}
}

// PushEquation enqueues a new pending equation and returns its fresh id.
func (s *Store) PushEquation(lhs, rhs []*term.Term, d *dep.Dependency) *Equation {
	eq := &Equation{ID: s.nextEqID, Lhs: lhs, Rhs: rhs, Dep: d}
	s.nextEqID++
	s.equations.Push(eq)

	return eq
}

// PopEquation removes and returns the most recently pushed equation.
func (s *Store) PopEquation() *Equation {
	return s.equations.Pop()
}

// HasEquations reports whether any equation is still pending.
func (s *Store) HasEquations() bool {
	return !s.equations.IsEmpty()
}

// Equations returns every pending equation, bottom of the stack first.
func (s *Store) Equations() []*Equation {
	return s.equations.Items()
}

// AddDisequation records a new disequation.
func (s *Store) AddDisequation(d *Disequation) {
	s.disequations = append(s.disequations, d)
}

// Disequations returns every currently tracked disequation.
func (s *Store) Disequations() []*Disequation {
	return s.disequations
}

// RemoveDisequation drops the disequation at index i (already resolved,
// e.g. turned into a conflict or fully discharged).
func (s *Store) RemoveDisequation(i int) {
	s.disequations = append(s.disequations[:i], s.disequations[i+1:]...)
}

// AddNotContains records a new not-contains constraint.
func (s *Store) AddNotContains(nc *NotContains) {
	s.notContains = append(s.notContains, nc)
}

// NotContainsConstraints returns every currently tracked not-contains
// constraint.
func (s *Store) NotContainsConstraints() []*NotContains {
	return s.notContains
}

// RemoveNotContains drops the not-contains constraint at index i.
func (s *Store) RemoveNotContains(i int) {
	s.notContains = append(s.notContains[:i], s.notContains[i+1:]...)
}

// Stamp captures the current store sizes for a later Truncate.
type Stamp struct {
	eq, deq, nc uint
}

// Stamp returns a marker identifying the current store sizes.
func (s *Store) Stamp() Stamp {
	return Stamp{eq: s.equations.Stamp(), deq: uint(len(s.disequations)), nc: uint(len(s.notContains))}
}

// Truncate restores the store to the sizes recorded in stamp, discarding
// anything pushed since.
func (s *Store) Truncate(st Stamp) {
	s.equations.Truncate(st.eq)

	if int(st.deq) < len(s.disequations) {
		s.disequations = s.disequations[:st.deq]
	}

	if int(st.nc) < len(s.notContains) {
		s.notContains = s.notContains[:st.nc]
	}
}
