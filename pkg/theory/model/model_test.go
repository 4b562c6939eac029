package model

import (
	"testing"

	"github.com/dpllt/seqtheory/pkg/theory/solution"
	"github.com/dpllt/seqtheory/pkg/theory/term"
	"github.com/dpllt/seqtheory/pkg/util/assert"
)

func Test_Model_01_LiteralIsItsOwnWitness(t *testing.T) {
	m := term.NewManager()
	sol := solution.NewMap()
	b := NewBuilder(m, sol, 'x')

	lit := m.LiteralString("ab")

	v := b.Value(lit)

	assert.Equal(t, "ab", string(v.Word), "a literal's witness is the literal itself")
}

func Test_Model_02_UnboundVarIsEmpty(t *testing.T) {
	m := term.NewManager()
	sol := solution.NewMap()
	b := NewBuilder(m, sol, 'x')

	v := b.Value(m.Var("s"))

	assert.Equal(t, 0, len(v.Word), "an unconstrained variable defaults to the empty witness")
}

func Test_Model_03_SolvedVarFollowsBinding(t *testing.T) {
	m := term.NewManager()
	sol := solution.NewMap()
	b := NewBuilder(m, sol, 'x')

	x := m.Var("x")
	sol.Update(x, m.LiteralString("hi"), nil)

	v := b.Value(x)

	assert.Equal(t, "hi", string(v.Word), "a solved variable's witness follows the solution map")
}

func Test_Model_04_ConcatComposesChildWitnesses(t *testing.T) {
	m := term.NewManager()
	sol := solution.NewMap()
	b := NewBuilder(m, sol, 'x')

	x := m.Var("x")
	sol.Update(x, m.LiteralString("ab"), nil)

	cat := m.Concat(x, m.LiteralString("cd"))

	v := b.Value(cat)

	assert.Equal(t, "abcd", string(v.Word), "concat's witness is the concatenation of its children's witnesses")
}

func Test_Model_05_UnitWrapsElementWitness(t *testing.T) {
	m := term.NewManager()
	sol := solution.NewMap()
	b := NewBuilder(m, sol, 'x')

	u := m.UnitConst('z')

	v := b.Value(u)

	assert.Equal(t, "z", string(v.Word), "unit's witness is its single element")
}

func Test_Model_06_DumpReflectsComputedWitnesses(t *testing.T) {
	m := term.NewManager()
	sol := solution.NewMap()
	b := NewBuilder(m, sol, 'x')

	lit := m.LiteralString("ok")
	b.Value(lit)

	dump := b.Dump()

	assert.Equal(t, 1, len(dump), "dump has exactly the one requested witness")
	assert.Equal(t, lit.String(), dump[0].Name, "dump exposes the witness keyed by the term's string form")
	assert.Equal(t, `"ok"`, dump[0].Value, "dump exposes the computed witness value")
}
