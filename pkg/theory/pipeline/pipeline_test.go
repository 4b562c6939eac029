package pipeline

import (
	"testing"

	"github.com/dpllt/seqtheory/pkg/theory/axiom"
	"github.com/dpllt/seqtheory/pkg/theory/canon"
	"github.com/dpllt/seqtheory/pkg/theory/eqstore"
	"github.com/dpllt/seqtheory/pkg/theory/exclusion"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/length"
	"github.com/dpllt/seqtheory/pkg/theory/solution"
	"github.com/dpllt/seqtheory/pkg/theory/term"
	"github.com/dpllt/seqtheory/pkg/util/assert"
)

// noopSAT never decides anything; tests that need a decided ITE condition
// build their own small map-backed stand-in instead.
type noopSAT struct{}

func (noopSAT) Value(external.Literal) external.TruthValue { return external.Undef }
func (noopSAT) AssignLiteral(external.Literal, bool)        {}
func (noopSAT) AddClause([]external.Literal)                {}
func (noopSAT) PushScope()                                  {}
func (noopSAT) PopScope(uint)                                {}

// recordingSink captures every asserted clause by name for inspection.
type recordingSink struct {
	clauses map[string][][]external.Literal
}

func newRecordingSink() *recordingSink {
	return &recordingSink{clauses: make(map[string][][]external.Literal)}
}

func (s *recordingSink) Assert(name string, lits []external.Literal) {
	s.clauses[name] = append(s.clauses[name], lits)
}

// identityAtoms resolves every theory atom to its own term id, cast to a
// literal, so tests can inspect clause shapes without a real host.
type identityAtoms struct{}

func (identityAtoms) LiteralFor(atomID uint64) external.Literal {
	return external.Literal(atomID)
}

func newTestPipeline(m *term.Manager) (*Pipeline, *recordingSink) {
	sink := newRecordingSink()
	em := &axiom.Emitter{Atoms: identityAtoms{}, Sink: sink}

	p := &Pipeline{
		M:    m,
		Eq:   eqstore.NewStore(),
		Sol:  solution.NewMap(),
		Excl: exclusion.NewTable(),
		Can:  canon.NewCanonizer(m, noopSAT{}),
		Em:   em,
		Len:  length.NewTracker(),
		Zero: m.Var("#zero"),
		One:  m.Var("#one"),
		IndexTerm: func(i int64) *term.Term {
			return m.Var(indexVarName(i))
		},
	}

	return p, sink
}

func Test_Pipeline_01_SolveUnitEqCommitsBareVariable(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)

	x := m.Var("x")
	rhs := m.LiteralString("hello")
	p.Eq.PushEquation([]*term.Term{x}, []*term.Term{rhs}, nil)

	result := p.Run()

	assert.Equal(t, int(Continue), int(result), "solving the equation makes progress")

	bound, _ := p.Sol.Find(x)
	assert.Equal(t, rhs.ID(), bound.ID(), "x is bound to the literal directly")
}

func Test_Pipeline_02_SolveUnitEqRejectsOccursCheck(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)

	x := m.Var("x")
	selfReferential := m.Concat(x, m.LiteralString("!"))
	p.Eq.PushEquation([]*term.Term{x}, []*term.Term{selfReferential}, nil)

	p.Run()

	bound, _ := p.Sol.Find(x)
	assert.Equal(t, x.ID(), bound.ID(), "occurs-check blocks the unsound binding")
}

func Test_Pipeline_03_SolveNqsFindsConflict(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	a := m.LiteralString("x")
	deq := &eqstore.Disequation{
		Lhs: a, Rhs: a,
		Partitions: []eqstore.Partition{{Lhs: a, Rhs: a}},
	}
	p.Eq.AddDisequation(deq)

	progress := p.solveNqs()

	assert.True(t, progress, "every partition already holding is a conflict")
	assert.Equal(t, 1, len(sink.clauses["disequation-conflict"]), "conflict clause asserted")
	assert.Equal(t, 0, len(p.Eq.Disequations()), "the resolved disequation is removed")
}

func Test_Pipeline_04_CheckContainsUnrollsAndRemoves(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	hay := m.Var("hay")
	needle := m.Var("needle")
	nc := &eqstore.NotContains{Contains: m.Contains(hay, needle), LenGT: 7, ReadyToUnroll: true}
	p.Eq.AddNotContains(nc)

	progress := p.checkContains()

	assert.True(t, progress, "check_contains unrolls the pending constraint")
	assert.Equal(t, 1, len(sink.clauses["not-contains-unroll-prefix"]), "prefix-side unrolling clause asserted")
	assert.Equal(t, 1, len(sink.clauses["not-contains-unroll-recurse"]), "recurse-side unrolling clause asserted")
	assert.Equal(t, 0, len(p.Eq.NotContainsConstraints()), "the constraint is consumed")
}

// a constraint not yet marked ReadyToUnroll - len_gt still undecided, or
// decided true and already seeded by the core instead - is left exactly as
// is; this rule only ever sees the one branch it is equipped to act on.
func Test_Pipeline_04a_CheckContainsDefersUntilReady(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	hay := m.Var("hay")
	needle := m.Var("needle")
	nc := &eqstore.NotContains{Contains: m.Contains(hay, needle), LenGT: 7}
	p.Eq.AddNotContains(nc)

	progress := p.checkContains()

	assert.Equal(t, false, progress, "check_contains has nothing to do while len_gt is undecided")
	assert.Equal(t, 0, len(sink.clauses["not-contains-unroll-prefix"]), "no unrolling clause asserted")
	assert.Equal(t, 1, len(p.Eq.NotContainsConstraints()), "the constraint is left pending")
}

func Test_Pipeline_05_BranchNqsSplitsOnLiteral(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)

	deq := &eqstore.Disequation{Literals: []external.Literal{5}}
	p.Eq.AddDisequation(deq)

	progress := p.branchNqs()

	assert.True(t, progress, "a disequation with literals is split")
	assert.Equal(t, 0, len(p.Eq.Disequations()), "the disequation is consumed by the split")
}

func Test_Pipeline_06_FixedLengthZeroAssertsEpsilon(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	x := m.Var("x")
	p.QueueFixedLength(FixedLengthCandidate{X: x, N: 0})

	progress := p.fixedLengthZero()

	assert.True(t, progress, "a zero-length candidate fires")
	assert.Equal(t, 1, len(sink.clauses["fixed-length-zero"]), "epsilon equality asserted")
	assert.Equal(t, 0, len(p.fixedLength), "the candidate is drained from the queue")
}

func Test_Pipeline_07_FixedLengthGeneralBuildsNthChain(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	x := m.Var("x")
	p.QueueFixedLength(FixedLengthCandidate{X: x, N: 3})

	progress := p.fixedLengthGeneral()

	assert.True(t, progress, "a positive-length candidate fires")
	assert.Equal(t, 1, len(sink.clauses["fixed-length-general"]), "decomposition equality asserted")
}

func Test_Pipeline_08_CheckIntStringMarksPending(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)

	p.QueueIntStringObligation(length.IntStringObligation{IntTerm: m.Var("n"), Other: 42})

	assert.False(t, p.Len.HasLength(42), "not yet tracked before the rule runs")

	progress := p.checkIntString()

	assert.True(t, progress, "an untracked obligation is pending work")
	assert.True(t, p.Len.HasLength(42), "the rule marks it as now having a length term")
}

func Test_Pipeline_09_ReduceLengthEqPeelsPrefix(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)

	la, lb := m.UnitConst('a'), m.UnitConst('a')
	tailL, tailR := m.Var("tl"), m.Var("tr")

	p.QueueReduceLength(ReduceLengthCandidate{
		Lhs:           []*term.Term{la, tailL},
		Rhs:           []*term.Term{lb, tailR},
		KnownEqualLen: 1,
	})

	progress := p.reduceLengthEq()

	assert.True(t, progress, "the candidate is consumed")
	assert.Equal(t, 2, len(p.Eq.Equations()), "one peeled-position equation plus one suffix equation pushed")
}

func Test_Pipeline_10_BranchUnitVariableInternalizesAtom(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	p.QueueBranchUnitVariable(BranchUnitCandidate{X: m.Var("x"), W: m.LiteralString("w")})

	progress := p.branchUnitVariable()

	assert.True(t, progress, "the guess is proposed")
	lits := sink.clauses["branch-unit-variable"][0]
	assert.Equal(t, 2, len(lits), "a tautological atom-or-not-atom clause has exactly two literals")
}

func Test_Pipeline_11_BranchBinaryVariableAssertsDisjunction(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	x, y := m.Var("x"), m.Var("y")
	u1, u2 := m.UnitConst('a'), m.UnitConst('b')
	y1 := m.Var("y1")

	p.QueueBranchBinaryVariable(BranchBinaryCandidate{X: x, Y: y, U1: u1, U2: u2, Y1: y1})

	progress := p.branchBinaryVariable()

	assert.True(t, progress, "the Nielsen split is proposed")
	assert.Equal(t, 1, len(sink.clauses["branch-binary-variable"]), "exactly one disjunction clause asserted")
}

func Test_Pipeline_12_CheckLengthCoherenceAssertsThreeClauses(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	e := m.Var("e")
	p.QueueLengthCoherence(LengthCoherenceCandidate{E: e, Lo: 2, Hi: 5})

	progress := p.checkLengthCoherence()

	assert.True(t, progress, "the bound is coherence-checked")
	assert.Equal(t, 1, len(sink.clauses["length-coherence-decompose"]), "decompose clause asserted")
	assert.Equal(t, 1, len(sink.clauses["length-coherence-tail-empty"]), "tail-empty clause asserted")
	assert.Equal(t, 1, len(sink.clauses["length-coherence-tail-bound"]), "tail-bound clause asserted")
}

func Test_Pipeline_13_CheckExtensionalityExcludesDistinctLiterals(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)

	a := m.LiteralString("ab")
	b := m.LiteralString("cd")
	p.QueueExtensionality(ExtensionalityCandidate{A: a, B: b})

	progress := p.checkExtensionality()

	assert.True(t, progress, "the pair is resolved")
	assert.True(t, p.Excl.Contains(a, b), "distinct literal constants are excluded outright")
}

func Test_Pipeline_14_CheckExtensionalityProposesAssumeEq(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	a := m.Var("a")
	b := m.Var("b")
	p.QueueExtensionality(ExtensionalityCandidate{A: a, B: b})

	progress := p.checkExtensionality()

	assert.True(t, progress, "the pair is resolved")
	assert.False(t, p.Excl.Contains(a, b), "an unrefuted pair is proposed, not excluded")
	assert.Equal(t, 1, len(sink.clauses["extensionality-assume-eq"]), "assume-eq decision atom registered")
}

func Test_Pipeline_15_CheckLtsInstantiatesTransitivity(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	a, b, c, d := m.Var("a"), m.Var("b"), m.Var("c"), m.Var("d")
	p.QueueLt(LtComparison{A: a, B: b, C: c, D: d, Strict: true})

	progress := p.checkLts()

	assert.True(t, progress, "a queued comparison is instantiated")
	assert.Equal(t, 1, len(sink.clauses["lt-transitivity"]), "transitivity clause asserted")
}

func Test_Pipeline_16_RunReportsDoneOnceDrained(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)

	assert.Equal(t, int(Done), int(p.Run()), "an empty store is immediately solved")
}

func Test_Pipeline_17_RunReportsGiveupOnStuckEquation(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)

	// Two multi-term sides with no unit-constant boundary, no nth-run shape,
	// and no itos shape: none of rule 1's sub-rules can fire, and nothing
	// else is queued, so the cascade exhausts without resolving it.
	v1, v2, v3, v4 := m.Var("v1"), m.Var("v2"), m.Var("v3"), m.Var("v4")
	p.Eq.PushEquation([]*term.Term{v1, v2}, []*term.Term{v3, v4}, nil)

	assert.Equal(t, int(Giveup), int(p.Run()), "an unresolvable equation starves every rule")
}

// Test_Pipeline_18_SolveNqsDoesNotConflictOnUnresolvedGeneralPair guards
// against solve_nqs treating an empty, not-yet-derived partition list as
// "already violated": deciding x ≠ w for an unresolved variable x is a
// legitimate way to keep a formula satisfiable, not an automatic
// contradiction, and no rewriter is wired here to prove otherwise.
func Test_Pipeline_18_SolveNqsDoesNotConflictOnUnresolvedGeneralPair(t *testing.T) {
	m := term.NewManager()
	p, sink := newTestPipeline(m)

	x := m.Var("x")
	w := m.LiteralString("w")
	p.Eq.AddDisequation(&eqstore.Disequation{Lhs: x, Rhs: w})

	progress := p.solveNqs()

	assert.False(t, progress, "an unresolved general pair is not yet derivable as violated")
	assert.Equal(t, 0, len(sink.clauses["disequation-conflict"]), "no spurious conflict is raised")
	assert.Equal(t, 1, len(p.Eq.Disequations()), "the disequation stays registered, pending further solving")
}

// Test_Pipeline_19_SolveNqsDerivesPartitionsFromCancellation checks the
// general case actually used for derivation: once a rewriter is wired,
// solve_nqs cancels the shared prefix and turns the residual "x ≠ w" into
// a real partition, rather than leaving Partitions empty forever.
func Test_Pipeline_19_SolveNqsDerivesPartitionsFromCancellation(t *testing.T) {
	m := term.NewManager()
	p, _ := newTestPipeline(m)
	p.Rewriter = cancellingRewriter{}

	a := m.UnitConst('a')
	x := m.Var("x")
	w := m.UnitConst('w')

	lhs := m.Concat(a, x)
	rhs := m.Concat(a, w)

	p.Eq.AddDisequation(&eqstore.Disequation{Lhs: lhs, Rhs: rhs})

	progress := p.solveNqs()

	assert.False(t, progress, "x and w are not yet known equal, so this is not a conflict yet")
	deqs := p.Eq.Disequations()
	assert.Equal(t, 1, len(deqs), "the disequation stays registered with its derived partitions")
	assert.Equal(t, 1, len(deqs[0].Partitions), "the shared prefix a was cancelled down to one partition")
	assert.Equal(t, x.ID(), deqs[0].Partitions[0].Lhs.ID(), "the partition pairs the residual variable")
	assert.Equal(t, w.ID(), deqs[0].Partitions[0].Rhs.ID(), "against the residual unit")
}

// cancellingRewriter cancels a shared leading element between the two
// sides, exactly as driverdemo.Rewriter does, so tests do not need to
// import the driverdemo package just to exercise simplifyEq's call site.
type cancellingRewriter struct{}

func (cancellingRewriter) SimplifySeqEq(ls, rs []external.RewriteTerm) ([][]external.RewriteTerm, [][]external.RewriteTerm, bool) {
	if len(ls) == 0 || len(rs) == 0 || ls[0].ID != rs[0].ID {
		return nil, nil, false
	}

	return [][]external.RewriteTerm{ls[1:]}, [][]external.RewriteTerm{rs[1:]}, true
}
