// Package theory implements the sequence-theory core of §2: Core wires
// every scoped component (equation store, solution map, exclusion table,
// canonizer, length tracker, Skolem index, automaton compiler, axiom
// emitter) together with the pipeline's rule cascade, and is the one type
// a host SMT solver actually talks to. It plays the role the teacher's
// pkg/schema/builder.go plays for trace construction: a single
// orchestration point owning every collaborator's lifecycle.
package theory

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/dpllt/seqtheory/pkg/theory/automaton"
	"github.com/dpllt/seqtheory/pkg/theory/axiom"
	"github.com/dpllt/seqtheory/pkg/theory/canon"
	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/eqstore"
	"github.com/dpllt/seqtheory/pkg/theory/exclusion"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/length"
	"github.com/dpllt/seqtheory/pkg/theory/model"
	"github.com/dpllt/seqtheory/pkg/theory/pipeline"
	"github.com/dpllt/seqtheory/pkg/theory/regexast"
	"github.com/dpllt/seqtheory/pkg/theory/skolem"
	"github.com/dpllt/seqtheory/pkg/theory/solution"
	"github.com/dpllt/seqtheory/pkg/theory/term"
	"github.com/dpllt/seqtheory/pkg/theoryerr"
	"github.com/dpllt/seqtheory/pkg/util/collection/set"
)

// sortedTrackedIDs returns every tracked enode ID in ascending order, so
// that iterating c.trackedTerm (a map) never makes ScanArithmetic's or
// Assumptions' output order depend on map iteration.
func (c *Core) sortedTrackedIDs() []external.EnodeID {
	ids := set.NewSortedSet[external.EnodeID]()

	for e := range c.trackedTerm {
		ids.Insert(e)
	}

	return ids.ToArray()
}

// Config carries the core's tunable parameters, paralleling the teacher's
// checkConfig in pkg/cmd/check.go.
type Config struct {
	// InitialUnfoldingDepth is the starting max_unfolding_depth (§4.6);
	// defaults to 1.
	InitialUnfoldingDepth int64
	// DefaultLengthLimit is the starting length_limit(s,k) budget assigned
	// to a tracked sequence the first time it needs one; defaults to 16.
	DefaultLengthLimit int64
	// EnableLenBasedSplit gates the optional rule 6 heuristic.
	EnableLenBasedSplit bool
	// ArithEngine names the configured arithmetic engine, "old" or "new".
	// Anything else fails NewCore with IncompatibleArithTheoryError.
	ArithEngine string
	// Validate turns on the original's validate_axiom/validate_conflict
	// self-check mode: every asserted clause is additionally cross-checked
	// against the nested kernel, logged at log.Warn on mismatch.
	Validate bool
}

func (c Config) normalized() Config {
	out := c

	if out.InitialUnfoldingDepth <= 0 {
		out.InitialUnfoldingDepth = 1
	}

	if out.DefaultLengthLimit <= 0 {
		out.DefaultLengthLimit = 16
	}

	return out
}

// Stats holds the statistics counters of §6, exposed for the host's own
// diagnostics and the CLI's --verbose solve summary.
type Stats struct {
	NumSplits            int
	NumReductions        int
	CheckLengthCoherence int
	BranchVariable       int
	SolveNqs             int
	SolveEqs             int
	BranchNqs            int
	AddAxiom             int
	Extensionality       int
	FixedLength          int
	IntString            int
	PropagateAutomata    int
}

// Core bundles every collaborator the equation-solving pipeline threads
// work through, plus the scope stack, arithmetic-bound scanning, and
// automaton/length bookkeeping a real deployment needs around it.
type Core struct {
	cfg   Config
	stats Stats

	M    *term.Manager
	Eq   *eqstore.Store
	Sol  *solution.Map
	Excl *exclusion.Table
	Can  *canon.Canonizer
	Len  *length.Tracker
	Skol *skolem.Index
	Auto *automaton.Compiler
	Em   *axiom.Emitter
	Pipe *pipeline.Pipeline

	Sat    external.SATEngine
	Graph  external.EqualityGraph
	Arith  external.ArithmeticTheory
	Nested external.NestedKernel
	Prop   external.TheoryPropagator

	zero, one *term.Term

	unfoldingDepth int64
	lengthLimit    map[term.ID]int64

	trackedTerm  map[external.EnodeID]*term.Term
	trackedEnode map[term.ID]external.EnodeID

	// fixedLengthSeen records enodes a fixed_length axiom has already been
	// queued for, so a bound that stays coincident across rounds does not
	// re-queue (and re-assert) the same defining split every round.
	fixedLengthSeen map[external.EnodeID]bool

	// activeLts is the live set of </≤ facts check_lts (rule 2) chains
	// transitivity through; append-only (see noteActiveLt).
	activeLts []ltFact

	// seenLt dedups transitivity instantiations already queued for a given
	// (a, d, strict) conclusion, the same "once per run" memoization §4.4
	// rule 2 asks for, keyed on the conclusion rather than a scope flag
	// since a conclusion already queued never needs re-queuing regardless
	// of which round noticed it.
	seenLt map[ltPairKey]bool

	atoms *trackingAtoms

	marks []scopeMark
}

// ltFact is one </≤ literal currently asserted true, as recorded by
// noteActiveLt.
type ltFact struct {
	A, B   *term.Term
	Strict bool
	Dep    *dep.Dependency
}

// ltPairKey identifies a transitivity conclusion a◁d (or a≤d) for seenLt's
// dedup table.
type ltPairKey struct {
	a, d   term.ID
	strict bool
}

type scopeMark struct {
	sol  int
	excl int
	eq   eqstore.Stamp
	len  uint
}

// trackingAtoms wraps a host TheoryAtomSource so that Core can later map a
// literal it is told about (via AssignLiteral) back to the theory atom it
// names; LiteralFor is the only place in the whole design where an atom's
// term and its literal are ever in scope together, so this is where the
// inverse mapping has to be built.
type trackingAtoms struct {
	inner   external.TheoryAtomSource
	byLit   map[external.Literal]term.ID
	manager *term.Manager
}

func (a *trackingAtoms) LiteralFor(atomID uint64) external.Literal {
	lit := a.inner.LiteralFor(atomID)
	a.byLit[lit] = term.ID(atomID)

	return lit
}

// validatingSink wraps a host AxiomSink so that, when Config.Validate is
// set, every asserted clause is also checked against the nested kernel.
// The formula identifier handed to CheckSat is necessarily host-specific
// (the nested kernel owns its own term encoding); using the clause's first
// literal as that identifier is a placeholder a real deployment would
// replace with its own clause-to-formula mapping - the point of this
// wrapper is only to demonstrate where that cross-check plugs in.
type validatingSink struct {
	inner  external.AxiomSink
	nested external.NestedKernel
}

func (v *validatingSink) Assert(name string, lits []external.Literal) {
	v.inner.Assert(name, lits)

	if v.nested == nil || len(lits) == 0 {
		return
	}

	if sat, ok := v.nested.CheckSat(uint64(lits[0])); ok && !sat {
		log.Warnf("theory: validate_axiom %q: nested kernel found the asserted clause already unsatisfiable", name)
	}
}

// NewCore wires every collaborator and returns a ready Core, or
// IncompatibleArithTheoryError if cfg names neither recognized arithmetic
// engine (§7's search-initialization failure mode).
func NewCore(
	cfg Config,
	m *term.Manager,
	sat external.SATEngine,
	graph external.EqualityGraph,
	arith external.ArithmeticTheory,
	atoms external.TheoryAtomSource,
	sink external.AxiomSink,
	rewriter external.Rewriter,
	nested external.NestedKernel,
	prop external.TheoryPropagator,
) (*Core, error) {
	cfg = cfg.normalized()

	if cfg.ArithEngine != "old" && cfg.ArithEngine != "new" {
		return nil, &theoryerr.IncompatibleArithTheoryError{Configured: cfg.ArithEngine}
	}

	if cfg.Validate {
		sink = &validatingSink{inner: sink, nested: nested}
	}

	eq := eqstore.NewStore()
	sol := solution.NewMap()
	excl := exclusion.NewTable()
	can := canon.NewCanonizer(m, sat)
	ln := length.NewTracker()
	tracked := &trackingAtoms{inner: atoms, byLit: make(map[external.Literal]term.ID), manager: m}
	em := &axiom.Emitter{Atoms: tracked, Sink: sink}

	zero := m.Var("#zero")
	one := m.Var("#one")

	c := &Core{
		cfg:            cfg,
		M:              m,
		Eq:             eq,
		Sol:            sol,
		Excl:           excl,
		Can:            can,
		Len:            ln,
		Skol:           skolem.NewIndex(),
		Auto:           automaton.NewCompiler(),
		Em:             em,
		Sat:            sat,
		Graph:          graph,
		Arith:          arith,
		Nested:         nested,
		Prop:           prop,
		atoms:          tracked,
		zero:           zero,
		one:            one,
		unfoldingDepth: cfg.InitialUnfoldingDepth,
		lengthLimit:    make(map[term.ID]int64),
		trackedTerm:     make(map[external.EnodeID]*term.Term),
		trackedEnode:    make(map[term.ID]external.EnodeID),
		fixedLengthSeen: make(map[external.EnodeID]bool),
		seenLt:          make(map[ltPairKey]bool),
	}

	c.Pipe = &pipeline.Pipeline{
		M:                   m,
		Eq:                  eq,
		Sol:                 sol,
		Excl:                excl,
		Can:                 can,
		Em:                  em,
		Len:                 ln,
		Rewriter:            rewriter,
		Arith:               arith,
		Graph:               graph,
		Zero:                zero,
		One:                 one,
		IndexTerm:           func(i int64) *term.Term { return indexTerm(m, i) },
		EnableLenBasedSplit: cfg.EnableLenBasedSplit,
	}

	log.Debugf("theory: core initialized, arith_engine=%s unfolding_depth=%d", cfg.ArithEngine, c.unfoldingDepth)

	return c, nil
}

// indexTerm is the module-wide convention for the arithmetic-literal term
// standing for the non-negative integer i; it must match the variable
// naming pipeline's own solve_nth_eq recognizer expects (see pipeline's
// indexVarName), since both sides of that recognizer need to agree on what
// "the literal i" looks like as a term.
func indexTerm(m *term.Manager, i int64) *term.Term {
	return m.Var(fmt.Sprintf("#idx%d", i))
}

// Stats returns a snapshot of the exposed statistics counters.
func (c *Core) Stats() Stats { return c.stats }

// --- scope management (§5) ------------------------------------------------

// PushScope stamps every scoped container, per §5's push_scope.
func (c *Core) PushScope() {
	c.marks = append(c.marks, scopeMark{
		sol:  c.Sol.Stamp(),
		excl: c.Excl.Stamp(),
		eq:   c.Eq.Stamp(),
		len:  c.Len.Stamp(),
	})

	log.Debugf("theory: push_scope depth=%d", len(c.marks))
}

// PopScope discards n scopes, truncating every scoped container back to
// its stamp and clearing the canonizer's cache, per §5's pop_scope(k).
func (c *Core) PopScope(n uint) {
	for i := uint(0); i < n && len(c.marks) > 0; i++ {
		m := c.marks[len(c.marks)-1]
		c.marks = c.marks[:len(c.marks)-1]

		c.Sol.Truncate(m.sol)
		c.Excl.Truncate(m.excl)
		c.Eq.Truncate(m.eq)
		c.Len.Truncate(m.len)
	}

	c.Can.Reset()

	log.Debugf("theory: pop_scope depth=%d", len(c.marks))
}

// --- assertion entry points -----------------------------------------------

// AssertEquation enqueues a new pending equation (solve_eqs).
func (c *Core) AssertEquation(lhs, rhs []*term.Term, d *dep.Dependency) {
	c.Eq.PushEquation(lhs, rhs, d)
	c.stats.SolveEqs++
}

// AssertDisequation records a new disequation (solve_nqs).
func (c *Core) AssertDisequation(deq *eqstore.Disequation) {
	c.Eq.AddDisequation(deq)
	c.stats.SolveNqs++
}

// AssertNotContains records a new ¬contains constraint (§4.8).
func (c *Core) AssertNotContains(nc *eqstore.NotContains) {
	c.Eq.AddNotContains(nc)
}

// AssignLiteral consumes an assign_literal(lit, is_true) notification from
// the SAT engine (§6 "core consumes"): when lit names an equality atom
// this module itself emitted via axiom.AtomPos/AtomNeg (tracked at
// LiteralFor time by trackingAtoms), a true assignment becomes a fresh
// pending equation and a false assignment becomes a fresh disequation -
// the missing half of the round trip axiom.Equality-style clauses need to
// actually reach the equation store once the SAT engine decides them. When
// lit instead names a lt/le atom, a true assignment records it as an
// active ordering fact for noteActiveLt/check_lts (rule 2). When lit names
// a contains atom, a decided-false assignment re-enters solve_nc (§4.8) as
// a fresh NotContains constraint - the step that lets check_contains
// (rule 4) recurse past its first unrolling step, since the recursive
// ¬contains(tail(a,0), b) literal NotContainsUnroll itself introduces has
// no other way back into this module. Atoms over every other operator
// (prefix, in-re, accept, step, ...) are not decision points this
// module's own rules need to react to beyond what
// checkContains/propagate_accept already consult directly from the SAT
// engine each round, so they are ignored here.
//
// The justification attached to whatever this produces must cite the
// literal that is actually true right now: that is lit itself when
// isTrue, and lit.Negate() when !isTrue - never the raw, possibly-false
// lit, which would violate dep.Linearize's own "every literal returned
// must currently be assigned true" precondition.
func (c *Core) AssignLiteral(lit external.Literal, isTrue bool) {
	id, ok := c.atoms.byLit[lit]

	negated := false

	if !ok {
		id, ok = c.atoms.byLit[lit.Negate()]
		negated = true
	}

	if !ok {
		return
	}

	t, ok := c.M.ByID(id)
	if !ok {
		return
	}

	switch t.Kind() {
	case term.KindEq, term.KindLt, term.KindLe, term.KindContains:
	default:
		return
	}

	trueLit := lit
	if !isTrue {
		trueLit = lit.Negate()
	}

	d := dep.Leaf(trueLit)

	switch t.Kind() {
	case term.KindEq:
		a, b := t.Args()[0], t.Args()[1]

		if isTrue != negated {
			c.AssertEquation([]*term.Term{a}, []*term.Term{b}, d)
		} else {
			c.AssertDisequation(&eqstore.Disequation{Lhs: a, Rhs: b, Dep: d})
		}
	case term.KindLt, term.KindLe:
		// Only a genuinely-true ordering fact is "active" for check_lts
		// (rule 2, §4.4): a decided-false comparison gives transitivity
		// nothing to chain through.
		if isTrue == negated {
			return
		}

		a, b := t.Args()[0], t.Args()[1]
		c.noteActiveLt(a, b, t.Kind() == term.KindLt, d)
	case term.KindContains:
		// Only ¬contains is a solve_nc decision point; a decided-true
		// contains atom is left to whatever already-asserted clauses
		// follow from it, same as every other operator this dispatch
		// ignores.
		if isTrue != negated {
			return
		}

		hay, needle := t.Args()[0], t.Args()[1]
		lenGTAtom := c.M.Lt(c.M.Length(needle), c.M.Length(hay))
		lenGT := c.atoms.LiteralFor(uint64(lenGTAtom.ID()))

		c.AssertNotContains(&eqstore.NotContains{Contains: t, LenGT: lenGT, Dep: d})
	}
}

// AssertRegexMembership compiles r (memoized per regex) and emits the
// defining s ∈ R ⇒ accept(s,0,R,start) clause of §4.6 step 3. The
// automaton engine always fully determinizes, so there is exactly one
// start state to branch the initial accept literal over.
func (c *Core) AssertRegexMembership(s *term.Term, r regexast.Regex) *automaton.Automaton {
	a := c.Auto.Compile(r)

	axiom.RegexMembership(c.M, c.Em, s, r, c.zero, []axiom.AutomatonState{int64(a.Start)})

	c.stats.PropagateAutomata++
	c.stats.AddAxiom++

	return a
}

// PropagateAcceptAt instantiates propagate_accept(accept(s,i,R,q)) against
// a's concrete state graph (§4.6): a sink state is an immediate conflict,
// otherwise the usual step-disjunction clauses are emitted, and exceeding
// the current unfolding budget additionally asserts ¬max_unfolding_lit to
// push the outer driver to raise the bound.
func (c *Core) PropagateAcceptAt(a *automaton.Automaton, s *term.Term, i int64, r regexast.Regex, q int) {
	if q < len(a.Sink) && a.Sink[q] {
		c.Em.Clause("accept-sink-conflict", nil, axiom.AtomNeg(skolem.Accept(c.M, s, indexTerm(c.M, i), r, int64(q))))
		c.stats.PropagateAutomata++
		c.stats.AddAxiom++

		return
	}

	outgoing := a.Outgoing(q)
	states := make([]axiom.AutomatonState, len(outgoing))

	for k, o := range outgoing {
		states[k] = int64(o)
	}

	axiom.PropagateAccept(c.M, c.Em, s, indexTerm(c.M, i), indexTerm(c.M, i+1), r, int64(q), states, a.Final[q])

	c.stats.PropagateAutomata++
	c.stats.AddAxiom++

	if i > c.unfoldingDepth {
		budget := skolem.MaxUnfolding(c.M, c.unfoldingDepth)
		c.Em.Clause("max-unfolding-exceeded", nil, axiom.AtomNeg(budget))
	}
}

// --- length / enode tracking (§4.7) ---------------------------------------

// RegisterEnode associates t with its equality-graph enode e, and, if t is
// sequence-valued, registers its length term if it does not already have
// one (add_length_to_eqc, folded down to the single-member case the
// equality graph reports at enode creation; callers merging two classes
// should call it again for every member).
func (c *Core) RegisterEnode(t *term.Term, e external.EnodeID) {
	c.trackedTerm[e] = t
	c.trackedEnode[t.ID()] = e

	if !t.IsSequenceValued() {
		return
	}

	for _, needsAxiom := range c.Len.AddLengthToEqc([]external.EnodeID{e}) {
		c.emitLengthAxiom(c.trackedTerm[needsAxiom])
	}
}

// emitLengthAxiom asserts the defining length equality for t's own shape,
// where that shape alone determines the right-hand side without needing
// an arithmetic-theory-built sum term: |ε|=0 and |unit(c)|=1. |x++y| needs
// the sum |x|+|y| as an already-built arithmetic term (LengthConcat's own
// doc comment), which this module has no way to construct - a caller
// sitting between the arithmetic theory and this core is expected to ask
// for that sum term and call axiom.LengthConcat directly.
func (c *Core) emitLengthAxiom(t *term.Term) {
	if t == nil {
		return
	}

	switch t.Kind() {
	case term.KindEpsilon:
		eq := axiom.LengthEpsilon(c.M, t, c.zero)
		c.Eq.PushEquation([]*term.Term{eq.Lhs}, []*term.Term{eq.Rhs}, nil)
		c.stats.AddAxiom++
	case term.KindUnit:
		eq := axiom.LengthUnit(c.M, t, c.one)
		c.Eq.PushEquation([]*term.Term{eq.Lhs}, []*term.Term{eq.Rhs}, nil)
		c.stats.AddAxiom++
	}
}

// lengthLimitFor returns s's current length_limit(s,k) budget, assigning
// the configured default the first time it is asked for.
func (c *Core) lengthLimitFor(s *term.Term) int64 {
	if k, ok := c.lengthLimit[s.ID()]; ok {
		return k
	}

	c.lengthLimit[s.ID()] = c.cfg.DefaultLengthLimit

	return c.cfg.DefaultLengthLimit
}

// ScanArithmetic asks the arithmetic theory for the current bounds of
// every tracked sequence enode and queues whatever pipeline rule the
// result makes ready: coincident bounds feed fixed_length (rule 5), a
// still-open bound feeds check_length_coherence (rule 12) bounded above by
// the tracked length_limit budget when no upper bound is known yet; it
// also drives scanReduceLength, the analogous readiness check for
// reduce_length_eq (rule 8), and scanNotContains, solve_nc's three-way
// branch on each not-contains constraint's len_gt guard (§4.8). The host
// is expected to call this once per final-check round, mirroring
// add_length_to_eqc/check_length_coherence's own caller discipline (§4.7).
func (c *Core) ScanArithmetic() {
	ids := c.sortedTrackedIDs()

	for _, e := range ids {
		t := c.trackedTerm[e]
		if !t.IsSequenceValued() {
			continue
		}

		lo, okLo := c.Arith.LowerBound(e)
		hi, okHi := c.Arith.UpperBound(e)

		switch {
		case okLo && okHi && lo == hi:
			if c.fixedLengthSeen[e] {
				continue
			}

			c.fixedLengthSeen[e] = true
			c.Pipe.QueueFixedLength(pipeline.FixedLengthCandidate{X: t, N: lo})
			c.stats.FixedLength++
		case okLo || okHi:
			loB, hiB := lo, hi
			if !okLo {
				loB = 0
			}

			if !okHi {
				hiB = c.lengthLimitFor(t)
			}

			if hiB > loB {
				c.Pipe.QueueLengthCoherence(pipeline.LengthCoherenceCandidate{E: t, Lo: loB, Hi: hiB})
				c.stats.CheckLengthCoherence++
			}
		}
	}

	c.scanReduceLength()
	c.scanNotContains()
}

// scanReduceLength walks every still-pending equation and queues a
// reduce_length_eq candidate (rule 8) for the longest prefix whose
// elements are already known, pairwise, to have equal length - the same
// readiness check ScanArithmetic performs for rules 5/12, just over the
// equation store instead of the tracked-enode table.
func (c *Core) scanReduceLength() {
	for _, eqn := range c.Eq.Equations() {
		n := 0

		for n < len(eqn.Lhs) && n < len(eqn.Rhs) {
			lv, lok := c.elementLength(eqn.Lhs[n])
			rv, rok := c.elementLength(eqn.Rhs[n])

			if !lok || !rok || lv != rv {
				break
			}

			n++
		}

		if n == 0 {
			continue
		}

		c.QueueReduceLength(eqn.Lhs, eqn.Rhs, n, eqn.Dep)
	}
}

// elementLength returns the statically-known exact length of a single
// sequence-typed element of an equation side: 1 for a unit, the rune
// count for a literal word, or the arithmetic theory's coincident
// lower/upper bound for anything else already registered with this core
// via RegisterEnode - or false if no exact length is known yet.
func (c *Core) elementLength(t *term.Term) (int64, bool) {
	switch t.Kind() {
	case term.KindUnit:
		return 1, true
	case term.KindLiteral:
		return int64(len(t.LitVal())), true
	}

	e, ok := c.trackedEnode[t.ID()]
	if !ok {
		return 0, false
	}

	lo, okLo := c.Arith.LowerBound(e)
	hi, okHi := c.Arith.UpperBound(e)

	if !okLo || !okHi || lo != hi {
		return 0, false
	}

	return lo, true
}

// scanNotContains resolves each not-contains constraint's len_gt guard
// against the SAT engine and advances it per §4.8's three-way branch: a
// decided-true guard only seeds both sides' length terms (add_length_to_
// eqc, the same step RegisterEnode already performs for a freshly
// registered enode) - nothing is due to unroll yet, so the pipeline never
// even sees it. An undecided guard is left exactly as is; nothing in
// external.SATEngine lets a theory plugin ask the SAT engine to
// prioritize deciding a literal (the same gap canon.Canonizer.Relevant
// documents and leaves unwired), so "mark relevant" is, for now, simply
// "do nothing and wait for the next round". A decided-false guard marks
// the constraint ready for check_contains (rule 4) to instantiate the
// unrolling axiom.
func (c *Core) scanNotContains() {
	for _, nc := range c.Eq.NotContainsConstraints() {
		switch c.Sat.Value(nc.LenGT) {
		case external.True:
			c.seedNotContainsLengths(nc)
			nc.ReadyToUnroll = false
		case external.False:
			nc.ReadyToUnroll = true
		default:
			nc.ReadyToUnroll = false
		}
	}
}

// seedNotContainsLengths runs add_length_to_eqc (§4.7) over both sides of
// a not-contains constraint's contains(hay, needle) term once len_gt is
// known true, the "seed lengths on both" half of §4.8's true branch.
func (c *Core) seedNotContainsLengths(nc *eqstore.NotContains) {
	c.seedLength(nc.Contains.Args()[0])
	c.seedLength(nc.Contains.Args()[1])
}

// seedLength runs add_length_to_eqc over t's whole equivalence class -
// RegisterEnode already does this for the single enode it just registered;
// this generalizes to every class member, since the class may have grown
// by the time a not-contains constraint asks for it.
func (c *Core) seedLength(t *term.Term) {
	e, ok := c.trackedEnode[t.ID()]
	if !ok {
		return
	}

	for _, needsAxiom := range c.Len.AddLengthToEqc(c.Graph.Class(e)) {
		c.emitLengthAxiom(c.trackedTerm[needsAxiom])
	}
}

// noteActiveLt records a newly-true </≤ fact and immediately looks for a
// transitivity instantiation against every other active fact whose
// relevant term is e-graph-equal to this one's (check_lts, rule 2): a◁b
// and c◁d with b≡c yields a◁d. Facts accumulate across backtracking
// rather than being truncated on scope pop - each resulting clause is a
// tautological implication guarded by its own (possibly now-stale)
// literal, exactly the shape axiom.Emitter.Clause always produces, so
// keeping one noted on an abandoned branch costs nothing but a redundant,
// still-valid clause that simply never fires again until its guard
// becomes true a second time.
func (c *Core) noteActiveLt(a, b *term.Term, strict bool, d *dep.Dependency) {
	fact := ltFact{A: a, B: b, Strict: strict, Dep: d}

	for _, other := range c.activeLts {
		if c.ltMiddleEqual(fact.B, other.A) {
			c.queueLt(fact.A, fact.B, other.A, other.B, fact.Strict || other.Strict, dep.Join(fact.Dep, other.Dep))
		}

		if c.ltMiddleEqual(other.B, fact.A) {
			c.queueLt(other.A, other.B, fact.A, fact.B, other.Strict || fact.Strict, dep.Join(other.Dep, fact.Dep))
		}
	}

	c.activeLts = append(c.activeLts, fact)
}

// ltMiddleEqual reports whether x and y are currently known equal - via
// the e-graph once both are registered enodes, or trivially via shared
// term identity, which already implies e-graph equality once registered
// and is cheap to short-circuit here.
func (c *Core) ltMiddleEqual(x, y *term.Term) bool {
	if x.ID() == y.ID() {
		return true
	}

	ex, ok := c.trackedEnode[x.ID()]
	if !ok {
		return false
	}

	ey, ok := c.trackedEnode[y.ID()]
	if !ok {
		return false
	}

	return c.Graph.AreEqual(ex, ey)
}

// queueLt is QueueLt with seenLt's "once per conclusion" dedup applied, so
// a middle-term equivalence that stays live across rounds does not
// re-instantiate the same transitivity clause every round.
func (c *Core) queueLt(a, b, cc, d *term.Term, strict bool, dp *dep.Dependency) {
	key := ltPairKey{a: a.ID(), d: d.ID(), strict: strict}
	if c.seenLt[key] {
		return
	}

	c.seenLt[key] = true

	c.QueueLt(a, b, cc, d, strict, dp)
}

// QueueLt registers an lt/le transitivity instantiation for check_lts
// (rule 2): a◁b and c◁d with b≡c in the e-graph yields a◁d. noteActiveLt
// is what actually notices the shared middle term each round; this is the
// thin pipeline-facing wrapper every other cascade rule already has
// (QueueFixedLength, QueueLengthCoherence, ...).
func (c *Core) QueueLt(a, b, cc, d *term.Term, strict bool, dp *dep.Dependency) {
	c.Pipe.QueueLt(pipeline.LtComparison{A: a, B: b, C: cc, D: d, Strict: strict, Dep: dp})
}

// QueueReduceLength registers a pending equation's known-equal-length
// prefix for reduce_length_eq (rule 8); scanReduceLength is what actually
// detects the prefix each round, mirroring the Queue*/scan split every
// other arithmetic-bound-driven rule (5, 12) already follows.
func (c *Core) QueueReduceLength(lhs, rhs []*term.Term, knownEqualLen int, dp *dep.Dependency) {
	c.Pipe.QueueReduceLength(pipeline.ReduceLengthCandidate{Lhs: lhs, Rhs: rhs, KnownEqualLen: knownEqualLen, Dep: dp})
}

// QueueIntStringObligation registers an itos/stoi pairing for check_int_
// string (rule 7), bumping the int_string counter.
func (c *Core) QueueIntStringObligation(ob length.IntStringObligation) {
	c.Pipe.QueueIntStringObligation(ob)
	c.stats.IntString++
}

// QueueExtensionality registers a pair for check_extensionality (rule 13),
// bumping the extensionality counter.
func (c *Core) QueueExtensionality(a, b *term.Term, d *dep.Dependency) {
	c.Pipe.QueueExtensionality(pipeline.ExtensionalityCandidate{A: a, B: b, Dep: d})
	c.stats.Extensionality++
}

// QueueBranchVariable registers a generic a=b branch candidate (rule 11),
// bumping branch_variable and num_splits.
func (c *Core) QueueBranchVariable(a, b *term.Term, d *dep.Dependency) {
	c.Pipe.QueueBranchVariable(pipeline.BranchVariableCandidate{A: a, B: b, Dep: d})
	c.stats.BranchVariable++
	c.stats.NumSplits++
}

// QueueBranchUnitVariable registers an x=w branch candidate (rule 9),
// bumping num_splits.
func (c *Core) QueueBranchUnitVariable(x, w *term.Term, d *dep.Dependency) {
	c.Pipe.QueueBranchUnitVariable(pipeline.BranchUnitCandidate{X: x, W: w, Dep: d})
	c.stats.NumSplits++
}

// QueueBranchBinaryVariable registers a Nielsen-split candidate (rule 10),
// bumping num_splits.
func (c *Core) QueueBranchBinaryVariable(cand pipeline.BranchBinaryCandidate) {
	c.Pipe.QueueBranchBinaryVariable(cand)
	c.stats.NumSplits++
}

// --- unfolding / length-limit escalation (§4.6) ---------------------------

// Assumptions returns the budget literals the outer driver should inspect
// an unsat core for: one max_unfolding(d) literal, and one length_limit
// (s,k) literal per tracked sequence still missing an exact arithmetic
// upper bound (§6).
func (c *Core) Assumptions() []external.Literal {
	lits := []external.Literal{c.Em.Atoms.LiteralFor(uint64(skolem.MaxUnfolding(c.M, c.unfoldingDepth).ID()))}

	for _, e := range c.sortedTrackedIDs() {
		t := c.trackedTerm[e]
		if !t.IsSequenceValued() {
			continue
		}

		if _, ok := c.Arith.UpperBound(e); ok {
			continue
		}

		k := c.lengthLimitFor(t)
		lits = append(lits, c.Em.Atoms.LiteralFor(uint64(skolem.LengthLimit(c.M, t, k).ID())))
	}

	return lits
}

// EscalateUnfolding raises max_unfolding_depth per §4.6's d ← (1+3d)/2
// schedule, called by the outer driver when an unsat core cites the
// current max_unfolding(d) literal.
func (c *Core) EscalateUnfolding() int64 {
	c.unfoldingDepth = (1 + 3*c.unfoldingDepth) / 2
	log.Debugf("theory: raising max_unfolding_depth to %d", c.unfoldingDepth)

	return c.unfoldingDepth
}

// EscalateLengthLimit doubles s's length_limit(s,k) budget per §4.6's
// k ← 2k schedule, called when an unsat core cites that literal.
func (c *Core) EscalateLengthLimit(s *term.Term) int64 {
	k := c.lengthLimitFor(s) * 2
	c.lengthLimit[s.ID()] = k

	log.Debugf("theory: raising length_limit(%s) to %d", s, k)

	return k
}

// --- direct propagation (§6 "core produces") -------------------------------

// PropagateLiteral reports lit as entailed under the given dependency
// (assign(literal, justification)), linearizing d into the leaf literals
// and enode pairs the host's TheoryPropagator expects.
func (c *Core) PropagateLiteral(lit external.Literal, d *dep.Dependency) {
	lits, eqs := dep.Linearize(d)
	c.Prop.Assign(lit, external.Justification{Literals: lits, Eqs: eqs})
}

// PropagateEq reports n1 = n2 as entailed under the given dependency
// (assign_eq(n1, n2, justification)).
func (c *Core) PropagateEq(n1, n2 external.EnodeID, d *dep.Dependency) {
	lits, eqs := dep.Linearize(d)
	c.Prop.AssignEq(n1, n2, external.Justification{Literals: lits, Eqs: eqs})
}

// Conflict reports unsatisfiability under the given dependency
// (set_conflict(justification)) - the "Contradiction found" outcome of §7,
// which is not itself an error type, only a report back to the SAT engine.
func (c *Core) Conflict(d *dep.Dependency) {
	lits, eqs := dep.Linearize(d)
	c.Prop.SetConflict(external.Justification{Literals: lits, Eqs: eqs})
}

// --- driving the cascade ---------------------------------------------------

// Run drives the pipeline's final-check cascade to a fixed point (Done or
// Giveup), scanning arithmetic bounds before each round. The host is
// expected to call Run again after the next batch of SAT-engine
// assignments or equality-graph merges, exactly as §5 describes the core
// being driven synchronously, round by round, by the outer search.
func (c *Core) Run() pipeline.Result {
	round := 0

	for {
		c.ScanArithmetic()

		res := c.Pipe.Run()
		round++

		if res == pipeline.Continue {
			c.stats.NumReductions++
			log.Debugf("theory: round %d made progress", round)

			continue
		}

		if res == pipeline.Done {
			log.Debugf("theory: round %d reported done", round)
		} else {
			log.Debugf("theory: round %d gave up", round)
		}

		return res
	}
}

// --- diagnostics (§9, supplemented display/explain) ------------------------

// Dump renders every pending constraint, the solution map (with
// explain_eq-style justifications), the composed model, and the current
// statistics counters to w - the original's display_equations/
// display_disequations/display_deps family collapsed into one pass, used
// by the repl and the --verbose solve path.
func (c *Core) Dump(w io.Writer) {
	fmt.Fprintln(w, "-- equations --")

	for _, eq := range c.Eq.Equations() {
		fmt.Fprintf(w, "  [%d] %v = %v\n", eq.ID, eq.Lhs, eq.Rhs)
	}

	fmt.Fprintln(w, "-- disequations --")

	for _, d := range c.Eq.Disequations() {
		fmt.Fprintf(w, "  %v != %v\n", d.Lhs, d.Rhs)
	}

	fmt.Fprintln(w, "-- not-contains --")

	for _, nc := range c.Eq.NotContainsConstraints() {
		fmt.Fprintf(w, "  %v\n", nc.Contains)
	}

	fmt.Fprintln(w, "-- solution map --")

	b := model.NewBuilder(c.M, c.Sol, '?')

	for _, e := range c.Sol.Entries() {
		fmt.Fprintln(w, "  "+canon.ExplainEq(e.Lhs, e.Rhs, e.Dep))
		b.Value(e.Lhs)
	}

	fmt.Fprintln(w, "-- model --")

	for _, e := range b.Dump() {
		fmt.Fprintf(w, "  %s = %s\n", e.Name, e.Value)
	}

	fmt.Fprintln(w, "-- exclusions --")
	fmt.Fprintf(w, "  %d pairs recorded\n", c.Excl.Len())

	fmt.Fprintln(w, "-- stats --")
	fmt.Fprintf(w, "  %+v\n", c.stats)
}
