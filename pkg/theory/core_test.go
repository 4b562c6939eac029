package theory

import (
	"strings"
	"testing"

	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/pipeline"
	"github.com/dpllt/seqtheory/pkg/theory/term"
	"github.com/dpllt/seqtheory/pkg/theoryerr"
	"github.com/dpllt/seqtheory/pkg/util/assert"
)

type noopSAT struct{}

func (noopSAT) Value(external.Literal) external.TruthValue { return external.Undef }
func (noopSAT) AssignLiteral(external.Literal, bool)        {}
func (noopSAT) AddClause([]external.Literal)                {}
func (noopSAT) PushScope()                                  {}
func (noopSAT) PopScope(uint)                                {}

type noopGraph struct{}

func (noopGraph) Find(n external.EnodeID) external.EnodeID      { return n }
func (noopGraph) AreEqual(a, b external.EnodeID) bool           { return a == b }
func (noopGraph) Class(n external.EnodeID) []external.EnodeID   { return []external.EnodeID{n} }

// mapArith answers LowerBound/UpperBound from fixed maps (Value always
// reports unknown), so tests
// can script exactly which tracked enodes look fixed-length, bounded, or
// unknown without a real arithmetic engine.
type mapArith struct {
	lower map[external.EnodeID]int64
	upper map[external.EnodeID]int64
}

func newMapArith() *mapArith {
	return &mapArith{lower: map[external.EnodeID]int64{}, upper: map[external.EnodeID]int64{}}
}

func (a *mapArith) LowerBound(e external.EnodeID) (int64, bool) { v, ok := a.lower[e]; return v, ok }
func (a *mapArith) UpperBound(e external.EnodeID) (int64, bool) { v, ok := a.upper[e]; return v, ok }
func (a *mapArith) Value(external.EnodeID) (int64, bool)        { return 0, false }
func (a *mapArith) Engine() string                              { return "old" }

type identityAtoms struct{}

func (identityAtoms) LiteralFor(atomID uint64) external.Literal {
	return external.Literal(atomID)
}

type recordingSink struct {
	clauses map[string][][]external.Literal
}

func newRecordingSink() *recordingSink {
	return &recordingSink{clauses: make(map[string][][]external.Literal)}
}

func (s *recordingSink) Assert(name string, lits []external.Literal) {
	s.clauses[name] = append(s.clauses[name], lits)
}

type stubNested struct {
	sat bool
	ok  bool
}

func (n stubNested) CheckSat(uint64) (bool, bool) { return n.sat, n.ok }

type recordingProp struct {
	assigned  []external.Literal
	assignedEq []external.EnodePair
	conflicts []external.Justification
}

func (p *recordingProp) Assign(lit external.Literal, j external.Justification) {
	p.assigned = append(p.assigned, lit)
}

func (p *recordingProp) AssignEq(n1, n2 external.EnodeID, j external.Justification) {
	p.assignedEq = append(p.assignedEq, external.EnodePair{A: n1, B: n2})
}

func (p *recordingProp) SetConflict(j external.Justification) {
	p.conflicts = append(p.conflicts, j)
}

func newTestCore(t *testing.T) (*Core, *recordingSink) {
	t.Helper()

	m := term.NewManager()
	sink := newRecordingSink()

	c, err := NewCore(
		Config{ArithEngine: "old"},
		m,
		noopSAT{},
		noopGraph{},
		newMapArith(),
		identityAtoms{},
		sink,
		nil,
		stubNested{},
		&recordingProp{},
	)
	assert.Equal(t, true, err == nil, "a recognized arith engine must not fail construction")

	return c, sink
}

func Test_Core_01_RejectsUnknownArithEngine(t *testing.T) {
	m := term.NewManager()

	_, err := NewCore(Config{ArithEngine: "quantum"}, m, noopSAT{}, noopGraph{}, newMapArith(),
		identityAtoms{}, newRecordingSink(), nil, stubNested{}, &recordingProp{})

	assert.Equal(t, true, err != nil, "an unrecognized arith engine must fail construction")

	var target *theoryerr.IncompatibleArithTheoryError
	assert.Equal(t, true, asIncompatible(err, &target), "the error must be IncompatibleArithTheoryError")
}

func asIncompatible(err error, target **theoryerr.IncompatibleArithTheoryError) bool {
	e, ok := err.(*theoryerr.IncompatibleArithTheoryError)
	if ok {
		*target = e
	}

	return ok
}

func Test_Core_02_DefaultsAppliedWhenUnset(t *testing.T) {
	c, _ := newTestCore(t)

	assert.Equal(t, int64(1), c.unfoldingDepth, "InitialUnfoldingDepth defaults to 1")
	assert.Equal(t, int64(16), c.cfg.DefaultLengthLimit, "DefaultLengthLimit defaults to 16")
}

func Test_Core_03_PushPopScopeRestoresSolutionMap(t *testing.T) {
	c, _ := newTestCore(t)

	x := c.M.Var("x")
	lit := c.M.LiteralString("hi")

	c.PushScope()
	c.Sol.Update(x, lit, nil)
	assert.Equal(t, 1, len(c.Sol.Entries()), "the binding is visible before popping")

	c.PopScope(1)

	assert.Equal(t, 0, len(c.Sol.Entries()), "pop_scope undoes every binding made since the matching push")
}

func Test_Core_04_PopScopeClearsCanonizerCache(t *testing.T) {
	c, _ := newTestCore(t)

	c.PushScope()
	c.Can.Canonize(c.M.Var("x"))
	c.PopScope(1)

	// Reset leaves the canonizer usable; re-canonizing must not panic and
	// must still return a term.
	got, _ := c.Can.Canonize(c.M.Var("x"))
	assert.Equal(t, true, got != nil, "the canonizer remains usable after pop_scope resets its cache")
}

func Test_Core_05_ScanArithmeticQueuesFixedLength(t *testing.T) {
	c, _ := newTestCore(t)
	arith := c.Arith.(*mapArith)

	x := c.M.Var("x")
	e := external.EnodeID(1)
	c.RegisterEnode(x, e)

	arith.lower[e] = 3
	arith.upper[e] = 3

	c.ScanArithmetic()

	assert.Equal(t, 1, c.stats.FixedLength, "a coincident bound queues exactly one fixed_length candidate")
}

func Test_Core_06_ScanArithmeticQueuesLengthCoherenceOnPartialBound(t *testing.T) {
	c, _ := newTestCore(t)
	arith := c.Arith.(*mapArith)

	x := c.M.Var("x")
	e := external.EnodeID(2)
	c.RegisterEnode(x, e)

	arith.lower[e] = 2

	c.ScanArithmetic()

	assert.Equal(t, 1, c.stats.CheckLengthCoherence, "a lower-only bound queues a length_coherence candidate bounded by the default length limit")
}

func Test_Core_07_EscalateUnfoldingFollowsSchedule(t *testing.T) {
	c, _ := newTestCore(t)

	got := c.EscalateUnfolding()

	assert.Equal(t, int64(2), got, "(1+3*1)/2 == 2")
}

func Test_Core_08_EscalateLengthLimitDoubles(t *testing.T) {
	c, _ := newTestCore(t)

	s := c.M.Var("s")
	first := c.lengthLimitFor(s)
	got := c.EscalateLengthLimit(s)

	assert.Equal(t, first*2, got, "length_limit escalation doubles the tracked budget")
}

func Test_Core_09_AssumptionsIncludesUnfoldingAndOpenLengthLimits(t *testing.T) {
	c, _ := newTestCore(t)
	arith := c.Arith.(*mapArith)

	x := c.M.Var("x")
	e := external.EnodeID(3)
	c.RegisterEnode(x, e)

	lits := c.Assumptions()

	assert.Equal(t, true, len(lits) >= 2, "assumptions include max_unfolding plus at least one open length_limit")

	arith.upper[e] = 5

	litsAfter := c.Assumptions()
	assert.Equal(t, true, len(litsAfter) < len(lits), "a tracked sequence with a known upper bound no longer needs a length_limit assumption")
}

func Test_Core_10_PropagateLiteralForwardsJustification(t *testing.T) {
	c, _ := newTestCore(t)
	prop := c.Prop.(*recordingProp)

	lit := external.Literal(7)
	c.PropagateLiteral(lit, dep.Leaf(external.Literal(3)))

	assert.Equal(t, 1, len(prop.assigned), "the literal is forwarded to the propagator")
	assert.Equal(t, int32(lit), int32(prop.assigned[0]), "the forwarded literal matches")
}

func Test_Core_11_ConflictForwardsJustification(t *testing.T) {
	c, _ := newTestCore(t)
	prop := c.Prop.(*recordingProp)

	c.Conflict(dep.Leaf(external.Literal(9)))

	assert.Equal(t, 1, len(prop.conflicts), "set_conflict is reported exactly once")
}

func Test_Core_12_DumpIncludesStatsAndEquations(t *testing.T) {
	c, _ := newTestCore(t)

	x := c.M.Var("x")
	c.AssertEquation([]*term.Term{x}, []*term.Term{c.M.LiteralString("ab")}, nil)

	var buf strings.Builder
	c.Dump(&buf)

	out := buf.String()
	assert.Equal(t, true, strings.Contains(out, "equations"), "the dump lists pending equations")
	assert.Equal(t, true, strings.Contains(out, "stats"), "the dump lists the statistics counters")
}

func Test_Core_13_RunReturnsDoneOnEmptyStore(t *testing.T) {
	c, _ := newTestCore(t)

	res := c.Run()

	assert.Equal(t, int(pipeline.Done), int(res), "an empty equation/not-contains store is immediately solved")
}
