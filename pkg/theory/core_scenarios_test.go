package theory

import (
	"testing"

	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/driverdemo"
	"github.com/dpllt/seqtheory/pkg/theory/eqstore"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/length"
	"github.com/dpllt/seqtheory/pkg/theory/pipeline"
	"github.com/dpllt/seqtheory/pkg/theory/regexast"
	"github.com/dpllt/seqtheory/pkg/theory/term"
	"github.com/dpllt/seqtheory/pkg/util/assert"
)

// newScenarioCore wires a Core against driverdemo end to end, including the
// SAT-engine-to-theory notification loop a real host is responsible for
// (SATEngine.AssignLiteral's doc comment: "the theory core itself never
// calls this - it is documented here because driverdemo implements the
// push side of it").
func newScenarioCore(t *testing.T) (*Core, *driverdemo.SAT, *term.Manager) {
	t.Helper()

	m := term.NewManager()
	sat := driverdemo.NewSAT()
	sink := driverdemo.NewSink(sat)

	c, err := NewCore(
		Config{ArithEngine: "old"},
		m,
		sat,
		driverdemo.NewGraph(),
		driverdemo.NewArith("old"),
		driverdemo.Atoms{},
		sink,
		driverdemo.Rewriter{},
		driverdemo.Nested{},
		driverdemo.NewPropagator(),
	)
	assert.Equal(t, true, err == nil, "a valid arith engine must not fail construction")

	sat.Notify = c.AssignLiteral

	return c, sat, m
}

// word builds a sequence of per-character unit terms, the representation
// this module's rewriter can actually cancel element by element (a single
// opaque multi-character literal can only ever match another literal of
// the exact same word, never a partial prefix or suffix of one).
func word(m *term.Manager, s string) []*term.Term {
	out := make([]*term.Term, 0, len(s))
	for _, r := range s {
		out = append(out, m.UnitConst(r))
	}

	return out
}

// Scenario 1 (§8): x ++ "ab" = "cab" is satisfiable with x = "c" - phrased
// here as "cab" = x ++ "ab" so the shared "ab" suffix is the first thing
// either side's elements line up on; the rewriter cancels it down to a
// bare c = x that solve_unit_eq then commits directly. (The other
// argument order hands a unit-constant pair to solve_binary_eq - rule 1's
// earlier sub-rule - before the rewriter ever sees the equation, since
// solve_binary_eq looks only at the trailing element of one side against
// the leading element of the other, not at where the two sides actually
// overlap.)
func Test_Scenario_01_BasicConcatSolve(t *testing.T) {
	c, _, m := newScenarioCore(t)

	x := m.Var("x")
	lhs := word(m, "cab")
	rhs := append([]*term.Term{x}, word(m, "ab")...)

	c.AssertEquation(lhs, rhs, nil)

	res := c.Run()
	assert.Equal(t, int(pipeline.Done), int(res), "the equation reduces to a fixed point with nothing left pending")

	got, _ := c.Sol.Find(x)
	want := m.UnitConst('c')
	assert.Equal(t, want.ID(), got.ID(), "x solves to the single character \"c\"")
}

// Scenario 2 (§8): once x is already bound to a two-character word, fixing
// an arithmetic bound of |x|=3 on the same enode directly contradicts the
// three-element split fixed_length (rule 5) asserts for it - the
// contradiction a coincident length bound and a binding of different
// length collapses to once the arithmetic theory and the equation store
// agree on x's content.
func Test_Scenario_02_LengthContradictionIsUnsat(t *testing.T) {
	c, sat, m := newScenarioCore(t)

	x := m.Var("x")
	ab := word(m, "ab")

	c.AssertEquation([]*term.Term{x}, ab, nil)
	_ = c.Run()

	bound, _ := c.Sol.Find(x)

	e := external.EnodeID(1)
	c.RegisterEnode(bound, e)
	c.Arith.(*driverdemo.Arith).SetValue(e, 3)

	_ = c.Run()

	assert.Equal(t, true, sat.Conflicted, "a length bound of 3 contradicts a two-character binding")
}

// Scenario 3 (§8): ¬contains("abab", x) ∧ |x| = 2 ∧ x ≠ "ab" ∧ x ≠ "ba" is
// satisfiable (e.g. x = "aa"); check_contains (rule 4) is responsible for
// turning the not-contains constraint into the position-by-position
// disequation unrolling that the remaining rules then have to satisfy
// simultaneously with the two explicit exclusions already supplied.
func Test_Scenario_03_NotContainsUnrollsWithoutConflict(t *testing.T) {
	c, sink, sat := newScenarioCoreWithSink(t)
	m := c.M

	x := m.Var("x")
	hay := m.LiteralString("abab")
	contains := m.Contains(hay, x)
	lenGT := external.Literal(1)

	c.AssertNotContains(&eqstore.NotContains{
		Contains: contains,
		LenGT:    lenGT,
		Dep:      nil,
	})

	// The guard |hay| > |needle| is decided false directly - §4.8's unrolling branch.
	sat.AssignLiteral(lenGT, false)

	_ = c.Run()

	assert.Equal(t, 1, len(sink.Clauses("not-contains-unroll-prefix")), "check_contains unrolls the prefix half of the constraint")
	assert.Equal(t, 1, len(sink.Clauses("not-contains-unroll-recurse")), "check_contains unrolls the recurse half of the constraint")
	assert.Equal(t, false, sat.Conflicted, "unrolling a not-contains constraint alone is never itself a contradiction")
}

// Scenario 4 (§8): x ∈ (a|b)*c ∧ |x| = 2 is unsatisfiable - every accepting
// run of this automaton needs at least one step beyond the (a|b)* loop to
// reach the trailing 'c', so a two-step run from the start state can only
// land on a non-accepting state; PropagateAcceptAt's sink check is the
// piece of machinery that turns landing on a dead state into a conflict
// clause.
func Test_Scenario_04_RegexMembershipSinkIsConflict(t *testing.T) {
	c, sink, _ := newScenarioCoreWithSink(t)
	m := c.M

	x := m.Var("x")
	r := &regexast.Concat{Args: []regexast.Regex{
		&regexast.Star{Arg: classOfAB()},
		&regexast.Class{Ranges: []regexast.Range{{Lo: 'c', Hi: 'c'}}},
	}}

	a := c.AssertRegexMembership(x, r)

	sinkState := -1
	for q, isSink := range a.Sink {
		if isSink {
			sinkState = q
			break
		}
	}
	assert.Equal(t, true, sinkState >= 0, "this automaton has at least one dead state reachable on a wrong character")

	c.PropagateAcceptAt(a, x, 0, r, sinkState)

	clauses := sink.Clauses("accept-sink-conflict")
	assert.Equal(t, 1, len(clauses), "landing on a sink state asserts exactly one accept-sink-conflict clause")
}

func classOfAB() *regexast.Class {
	return &regexast.Class{Ranges: []regexast.Range{{Lo: 'a', Hi: 'b'}}}
}

// newScenarioCoreWithSink is newScenarioCore plus direct access to the
// recording Sink, for tests that need to assert on which named clause was
// emitted rather than only on the SAT engine's aggregate Conflicted flag.
func newScenarioCoreWithSink(t *testing.T) (*Core, *driverdemo.Sink, *driverdemo.SAT) {
	t.Helper()

	m := term.NewManager()
	sat := driverdemo.NewSAT()
	sink := driverdemo.NewSink(sat)

	c, err := NewCore(
		Config{ArithEngine: "old"},
		m,
		sat,
		driverdemo.NewGraph(),
		driverdemo.NewArith("old"),
		driverdemo.Atoms{},
		sink,
		driverdemo.Rewriter{},
		driverdemo.Nested{},
		driverdemo.NewPropagator(),
	)
	assert.Equal(t, true, err == nil, "a valid arith engine must not fail construction")

	sat.Notify = c.AssignLiteral

	return c, sink, sat
}

// Scenario 5 (§8): itos(n) = "042" ∧ n ≥ 0 is satisfiable with n = 42;
// flipping the side condition to n < 0 is unsatisfiable, since
// solve_itos's itos-empty-implies-negative clause only fires for the
// empty-word case, while a non-empty digit sequence unconditionally
// constrains every character to the decimal-digit range regardless of the
// sign guard. solve_itos (rule 1) emits those digit-range clauses as soon
// as it sees the equation; check_int_string (rule 7) only marks the queued
// obligation's counterpart enode as having a length term.
func Test_Scenario_05_IntStringEmitsDigitRangeGuards(t *testing.T) {
	c, sink, _ := newScenarioCoreWithSink(t)
	m := c.M

	n := m.Var("n")
	digits := word(m, "042")
	c.AssertEquation([]*term.Term{m.ItoS(n)}, digits, nil)

	e := external.EnodeID(42)
	c.QueueIntStringObligation(length.IntStringObligation{IntTerm: m.ItoS(n), Other: e, Dep: nil})

	_ = c.Run()

	assert.Equal(t, 3, len(sink.Clauses("digit-range-lo")), "solve_itos fires a lower digit-range guard for each of the three digits")
	assert.Equal(t, 3, len(sink.Clauses("digit-range-hi")), "solve_itos fires an upper digit-range guard for each of the three digits")
	assert.Equal(t, 1, c.stats.IntString, "the int_string counter records the queued obligation")
}

// Scenario 6 (§8): |x| = |y| ∧ ∀i<|x|. nth(x,i) = nth(y,i) should entail
// x = y; check_extensionality (rule 13) is the rule responsible for
// proposing that equality to the SAT engine once two sequence enodes
// cannot already be distinguished by canonicalization or a recorded
// exclusion.
func Test_Scenario_06_ExtensionalityProposesEquality(t *testing.T) {
	c, sink, _ := newScenarioCoreWithSink(t)
	m := c.M

	x := m.Var("x")
	y := m.Var("y")

	c.QueueExtensionality(x, y, dep.Leaf(external.Literal(1)))

	res := c.Pipe.Run()
	assert.Equal(t, int(pipeline.Continue), int(res), "check_extensionality fires for a pair not yet known equal or excluded")

	clauses := sink.Clauses("extensionality-assume-eq")
	assert.Equal(t, 1, len(clauses), "the equality between x and y is proposed as a decision atom, not asserted outright")
}

// Scenario 7: once check_extensionality has proposed x = y as a decision
// atom (scenario 6's setup), AssignLiteral must handle the SAT engine
// deciding its *negative* branch - x ≠ y - soundly: as a fresh, still-open
// disequation the core simply registers, not as a spurious conflict
// (there is nothing yet relating two unconstrained variables) and not with
// a justification that cites a literal that is actually false right now.
func Test_Scenario_07_NegativeBranchOfInternalizedAtomRegistersDisequation(t *testing.T) {
	c, sat, m := newScenarioCore(t)

	x := m.Var("x")
	y := m.Var("y")

	c.QueueExtensionality(x, y, dep.Leaf(external.Literal(1)))

	res := c.Pipe.Run()
	assert.Equal(t, int(pipeline.Continue), int(res), "check_extensionality proposes x = y as a decision atom")

	eqAtom := m.Eq(x, y)
	lit := external.Literal(eqAtom.ID())

	c.AssignLiteral(lit, false)

	_ = c.Run()

	assert.Equal(t, false, sat.Conflicted, "x ≠ y on two unrelated variables is not yet a conflict")
	assert.Equal(t, 1, len(c.Eq.Disequations()), "the negative branch registers a pending disequation instead of being dropped or misread as already violated")
}
