// Package external declares the thin interfaces through which the
// sequence-theory core talks to its surrounding collaborators: the
// propositional SAT/DPLL engine, the ground term/equality-graph manager,
// the arithmetic theory, the term rewriter, the axiom-clause emitter, and a
// nested SMT kernel used for automaton-emptiness queries. None of these are implemented by this module itself (see
// pkg/theory/driverdemo for a reference implementation used only by this
// module's own tests and CLI); in a real deployment they are supplied by
// the host solver.
package external

// Literal identifies a propositional literal in the surrounding SAT engine.
// A negative value denotes the negation of the literal with the
// corresponding positive value.
type Literal int32

// Negate returns the negation of this literal.
func (l Literal) Negate() Literal {
	return -l
}

// EnodeID identifies a ground term (enode) tracked by the equality graph.
type EnodeID uint32

// EnodePair is an unordered pair of enodes known to be equal.
type EnodePair struct {
	A, B EnodeID
}

// TruthValue is the three-valued result of asking the SAT engine for a
// literal's current assignment.
type TruthValue int8

// The three truth values a literal may currently hold.
const (
	Undef TruthValue = 0
	True  TruthValue = 1
	False TruthValue = -1
)

// SATEngine is the propositional engine driving the search.
type SATEngine interface {
	// Value returns the current truth value of lit.
	Value(lit Literal) TruthValue
	// AssignLiteral is called by the SAT engine to notify the theory of a
	// new assignment; the theory core itself never calls this - it is
	// documented here because driverdemo implements the push side of it.
	AssignLiteral(lit Literal, isTrue bool)
	// AddClause installs a new clause in the SAT engine's database.
	AddClause(lits []Literal)
	// PushScope begins a new backtracking scope.
	PushScope()
	// PopScope discards n scopes, undoing everything pushed since.
	PopScope(n uint)
}

// EqualityGraph exposes enode equivalence-class queries.
type EqualityGraph interface {
	// Find returns the representative enode of n's equivalence class.
	Find(n EnodeID) EnodeID
	// AreEqual reports whether n1 and n2 are currently in the same class.
	AreEqual(n1, n2 EnodeID) bool
	// Class returns every enode currently known equal to n (including n).
	Class(n EnodeID) []EnodeID
}

// ArithmeticTheory supplies integer bounds and values for length and
// int-string terms.
type ArithmeticTheory interface {
	// LowerBound returns the current lower bound on e, if any.
	LowerBound(e EnodeID) (int64, bool)
	// UpperBound returns the current upper bound on e, if any.
	UpperBound(e EnodeID) (int64, bool)
	// Value returns the numeric value of e's equivalence class, if fixed.
	Value(e EnodeID) (int64, bool)
	// Engine names the configured arithmetic engine ("old" or "new").
	Engine() string
}

// Justification carries the leaf-level evidence (literals and enode pairs)
// backing a propagation or conflict, as produced by dependency
// linearization.
type Justification struct {
	Literals []Literal
	Eqs      []EnodePair
}

// TheoryPropagator is where the core reports its conclusions back to the
// surrounding solver.
type TheoryPropagator interface {
	// Assign propagates lit under justification j.
	Assign(lit Literal, j Justification)
	// AssignEq propagates n1 = n2 under justification j.
	AssignEq(n1, n2 EnodeID, j Justification)
	// SetConflict reports unsatisfiability under justification j.
	SetConflict(j Justification)
}

// AxiomSink is where the axiom module emits canonical clauses. Each call
// corresponds to one named axiom instantiation (length, indexof, replace,
// extract, at, itos, stoi, lt, le, unit, prefix, suffix, nth, accept, step,
// ...).
type AxiomSink interface {
	// Assert installs a clause (a disjunction of literals) that must hold.
	Assert(name string, lits []Literal)
}

// TheoryAtomSource hands back the Boolean literal representing a given
// theory atom (an equality, or a Boolean-sorted sequence predicate such as
// contains/prefix/suffix/in-re/lt/le/accept/step), creating and
// internalizing it on first use. This is the standard DPLL(T)
// internalize_atom service every theory plugin needs from its host; the
// axiom module uses it to phrase clause conclusions without needing to
// know how the host represents equality or predicate atoms internally.
type TheoryAtomSource interface {
	// LiteralFor returns the literal for the atom identified by atomID (an
	// opaque identifier the caller is responsible for keeping stable across
	// calls for what it considers "the same atom", e.g. a term ID).
	LiteralFor(atomID uint64) Literal
}

// NestedKernel is a fresh, independent SMT kernel the automaton engine may
// use to decide emptiness of a symmetric difference of two automata. It
// must run in its own scope stack and never observe the outer core's
// state.
type NestedKernel interface {
	// CheckSat decides satisfiability of a formula described by the given
	// opaque term identifier (interpretation is left to the nested kernel's
	// own term manager).
	CheckSat(formulaID uint64) (sat bool, ok bool)
}

// Rewriter is the external algebraic simplifier for sequence and arithmetic
// expressions, used by the pipeline's simplify_eq rule.
type Rewriter interface {
	// SimplifySeqEq attempts to algebraically reduce a pending equality
	// between two concatenation sequences (cancel shared prefixes/suffixes,
	// inspect constants/units, detect contradictions). It returns the
	// resulting sub-equations (possibly the input unchanged) and whether any
	// simplification was performed.
	SimplifySeqEq(ls, rs []RewriteTerm) (subLs, subRs [][]RewriteTerm, changed bool)
}

// RewriteTerm is the minimal view of a term the external rewriter needs: an
// opaque identity plus whatever the core wants to expose for pattern
// matching (constant word, unit symbol, or "other").
type RewriteTerm struct {
	ID       uint64
	IsConst  bool
	ConstVal []rune
	IsUnit   bool
	UnitVal  rune
}
