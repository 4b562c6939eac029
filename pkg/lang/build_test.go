package lang

import (
	"testing"

	"github.com/dpllt/seqtheory/pkg/theory"
	"github.com/dpllt/seqtheory/pkg/theory/driverdemo"
	"github.com/dpllt/seqtheory/pkg/theory/pipeline"
	"github.com/dpllt/seqtheory/pkg/theory/term"
	"github.com/dpllt/seqtheory/pkg/util/assert"
)

func newTestBuilder(t *testing.T) (*Builder, *theory.Core, *driverdemo.SAT) {
	t.Helper()

	m := term.NewManager()
	sat := driverdemo.NewSAT()
	sink := driverdemo.NewSink(sat)
	arith := driverdemo.NewArith("old")

	c, err := theory.NewCore(
		theory.Config{ArithEngine: "old"}, m, sat, driverdemo.NewGraph(), arith,
		driverdemo.Atoms{}, sink, driverdemo.Rewriter{}, driverdemo.Nested{},
		driverdemo.NewPropagator(),
	)
	assert.Equal(t, true, err == nil, "a valid arith engine must not fail construction")

	sat.Notify = c.AssignLiteral

	return NewBuilder(m, c, arith), c, sat
}

func Test_Build_00_EqSolves(t *testing.T) {
	b, c, _ := newTestBuilder(t)

	form, err := Parse(`(eq (word "cab") (concat x (word "ab")))`)
	assert.Equal(t, true, err == nil, "the equation form parses")

	assert.Equal(t, true, b.Assert(form) == nil, "asserting the equation succeeds")

	res := c.Run()
	assert.Equal(t, int(pipeline.Done), int(res), "the equation reaches a fixed point")
}

// exercises the immediate-conflict shape: x already bound to "ab" before
// (neq x "ab") is asserted, so both sides resolve to the same term and
// solve_nqs's first-line identity check reports it as already violated.
func Test_Build_01_NeqOnBoundVariable(t *testing.T) {
	b, c, sat := newTestBuilder(t)

	eq, err := Parse(`(eq x (word "ab"))`)
	assert.Equal(t, true, err == nil, "the equation form parses")
	assert.Equal(t, true, b.Assert(eq) == nil, "asserting the equation succeeds")

	_ = c.Run()

	neq, err := Parse(`(neq x (word "ab"))`)
	assert.Equal(t, true, err == nil, "the disequation form parses")
	assert.Equal(t, true, b.Assert(neq) == nil, "asserting the disequation succeeds")

	_ = c.Run()

	assert.Equal(t, true, sat.Conflicted, "x = \"ab\" and x != \"ab\" is an immediate contradiction")
}

func Test_Build_02_NotContainsUnrollsWithoutConflict(t *testing.T) {
	b, c, sat := newTestBuilder(t)

	form, err := Parse(`(notcontains (word "abab") x)`)
	assert.Equal(t, true, err == nil, "the notcontains form parses")
	assert.Equal(t, true, b.Assert(form) == nil, "asserting notcontains succeeds")

	needle := b.M.Var("x")
	lenGT := b.Atoms.LiteralFor(uint64(needle.ID()))
	sat.AssignLiteral(lenGT, false)

	_ = c.Run()
	assert.Equal(t, false, sat.Conflicted, "unrolling a not-contains constraint alone is never a contradiction")
}

func Test_Build_03_InRegexCompiles(t *testing.T) {
	b, c, _ := newTestBuilder(t)

	form, err := Parse(`(inre x (star (class "a" "b")))`)
	assert.Equal(t, true, err == nil, "the inre form parses")
	assert.Equal(t, true, b.Assert(form) == nil, "asserting regex membership succeeds")

	_ = c.Run()
}

func Test_Build_04_LenFixesArithmeticBound(t *testing.T) {
	b, _, _ := newTestBuilder(t)

	form, err := Parse(`(len x 3)`)
	assert.Equal(t, true, err == nil, "the len form parses")
	assert.Equal(t, true, b.Assert(form) == nil, "asserting a fixed length succeeds")

	lo, ok := b.Arith.LowerBound(0)
	assert.Equal(t, true, ok, "the first registered enode carries a lower bound")
	assert.Equal(t, int64(3), lo)
}

func Test_Build_05_UnknownFormRejected(t *testing.T) {
	b, _, _ := newTestBuilder(t)

	form, err := Parse(`(frobnicate x y)`)
	assert.Equal(t, true, err == nil, "the form itself parses fine")
	assert.Equal(t, true, b.Assert(form) != nil, "an unrecognized form name is rejected")
}

func Test_ParseRegex_00_ClassUnion(t *testing.T) {
	form, err := Parse(`(union (class "a" "c") (str "xyz"))`)
	assert.Equal(t, true, err == nil, "the regex form parses")

	r, err := ParseRegex(form)
	assert.Equal(t, true, err == nil, "the regex builds")
	assert.Equal(t, true, r != nil, "a non-nil regex is returned")
}
