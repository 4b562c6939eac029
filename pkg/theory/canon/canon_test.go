package canon

import (
	"testing"

	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/term"
	"github.com/dpllt/seqtheory/pkg/util/assert"
)

type fixedSAT struct {
	values map[external.Literal]external.TruthValue
}

func (f *fixedSAT) Value(lit external.Literal) external.TruthValue {
	if lit < 0 {
		return negateTV(f.Value(-lit))
	}
	if v, ok := f.values[lit]; ok {
		return v
	}
	return external.Undef
}

func negateTV(v external.TruthValue) external.TruthValue {
	switch v {
	case external.True:
		return external.False
	case external.False:
		return external.True
	default:
		return external.Undef
	}
}

func (f *fixedSAT) AssignLiteral(lit external.Literal, isTrue bool) {}
func (f *fixedSAT) AddClause(lits []external.Literal)               {}
func (f *fixedSAT) PushScope()                                      {}
func (f *fixedSAT) PopScope(n uint)                                 {}

func Test_Canon_01_LeafIsFixedPoint(t *testing.T) {
	m := term.NewManager()
	sat := &fixedSAT{values: map[external.Literal]external.TruthValue{}}
	c := NewCanonizer(m, sat)

	x := m.Var("x")
	out, d := c.Canonize(x)

	assert.True(t, out == x, "leaf canonizes to itself")
	assert.True(t, d == nil, "leaf has no dependency")
}

func Test_Canon_02_RecursesIntoChildren(t *testing.T) {
	m := term.NewManager()
	sat := &fixedSAT{values: map[external.Literal]external.TruthValue{}}
	c := NewCanonizer(m, sat)

	x := m.Var("x")
	concat := m.Concat(x, m.Epsilon())

	out, _ := c.Canonize(concat)

	assert.True(t, out == x, "canonize drops ε when it rebuilds the concatenation")
}

func Test_Canon_03_IteSelectsTrueBranch(t *testing.T) {
	m := term.NewManager()
	cond := external.Literal(7)
	sat := &fixedSAT{values: map[external.Literal]external.TruthValue{cond: external.True}}
	c := NewCanonizer(m, sat)

	then := m.Var("then")
	els := m.Var("els")
	ite := m.Ite(cond, then, els)

	out, d := c.Canonize(ite)

	assert.True(t, out == then, "true condition selects then branch")

	lits, _ := dep.Linearize(d)
	assert.Equal(t, 1, len(lits), "dependency carries the deciding literal")
}

func Test_Canon_04_IteUndefMarksRelevant(t *testing.T) {
	m := term.NewManager()
	cond := external.Literal(9)
	sat := &fixedSAT{values: map[external.Literal]external.TruthValue{}}
	c := NewCanonizer(m, sat)

	var marked external.Literal
	c.Relevant = func(lit external.Literal) { marked = lit }

	then := m.Var("then")
	els := m.Var("els")
	ite := m.Ite(cond, then, els)

	out, d := c.Canonize(ite)

	assert.True(t, out == ite, "undef condition defers, returning the ITE unchanged")
	assert.True(t, d == nil, "undef condition carries no dependency")
	assert.Equal(t, int(cond), int(marked), "undef condition is reported relevant")
}

func Test_Canon_05_CacheReturnsSameResult(t *testing.T) {
	m := term.NewManager()
	sat := &fixedSAT{values: map[external.Literal]external.TruthValue{}}
	c := NewCanonizer(m, sat)

	x := m.Var("x")
	concat := m.Concat(x, m.Epsilon())

	out1, _ := c.Canonize(concat)
	out2, _ := c.Canonize(concat)

	assert.True(t, out1 == out2, "repeated canonize hits the cache and agrees")
}
