package automaton

import (
	"testing"

	"github.com/dpllt/seqtheory/pkg/theory/regexast"
	"github.com/dpllt/seqtheory/pkg/util/assert"
)

func classOf(lo, hi rune) *regexast.Class {
	return &regexast.Class{Ranges: []regexast.Range{{Lo: lo, Hi: hi}}}
}

func Test_Automaton_01_LiteralWord(t *testing.T) {
	r := regexast.Lit([]rune("ab"))
	a := NewCompiler().Compile(r)

	assert.True(t, a.Accepts([]rune("ab")), "exact literal is accepted")
	assert.False(t, a.Accepts([]rune("a")), "proper prefix is rejected")
	assert.False(t, a.Accepts([]rune("abc")), "proper extension is rejected")
	assert.False(t, a.Accepts([]rune("ba")), "reordering is rejected")
}

func Test_Automaton_02_Star(t *testing.T) {
	r := &regexast.Star{Arg: classOf('a', 'a')}
	a := NewCompiler().Compile(r)

	assert.True(t, a.Accepts([]rune("")), "zero repetitions accepted")
	assert.True(t, a.Accepts([]rune("aaaa")), "many repetitions accepted")
	assert.False(t, a.Accepts([]rune("aab")), "non-matching suffix rejected")
}

func Test_Automaton_03_Union(t *testing.T) {
	r := &regexast.Union{Args: []regexast.Regex{
		regexast.Lit([]rune("cat")),
		regexast.Lit([]rune("dog")),
	}}
	a := NewCompiler().Compile(r)

	assert.True(t, a.Accepts([]rune("cat")), "first alternative accepted")
	assert.True(t, a.Accepts([]rune("dog")), "second alternative accepted")
	assert.False(t, a.Accepts([]rune("cog")), "non-alternative rejected")
}

func Test_Automaton_04_Intersection(t *testing.T) {
	evenLenA := &regexast.Star{Arg: &regexast.Concat{Args: []regexast.Regex{classOf('a', 'a'), classOf('a', 'a')}}}
	atLeastOne := &regexast.Concat{Args: []regexast.Regex{classOf('a', 'a'), &regexast.Star{Arg: classOf('a', 'a')}}}
	r := &regexast.Inter{Args: []regexast.Regex{evenLenA, atLeastOne}}

	a := NewCompiler().Compile(r)

	assert.False(t, a.Accepts([]rune("")), "empty word has zero length, excluded by atLeastOne")
	assert.False(t, a.Accepts([]rune("a")), "odd length excluded by evenLenA")
	assert.True(t, a.Accepts([]rune("aa")), "even, non-empty length satisfies both")
	assert.False(t, a.Accepts([]rune("aaa")), "odd length excluded by evenLenA")
	assert.True(t, a.Accepts([]rune("aaaa")), "even, non-empty length satisfies both")
}

func Test_Automaton_05_Complement(t *testing.T) {
	r := &regexast.Compl{Arg: regexast.Lit([]rune("a"))}
	a := NewCompiler().Compile(r)

	assert.False(t, a.Accepts([]rune("a")), "the literal itself is excluded")
	assert.True(t, a.Accepts([]rune("")), "everything else, including empty, is included")
	assert.True(t, a.Accepts([]rune("aa")), "everything else, including longer words, is included")
	assert.True(t, a.Accepts([]rune("b")), "everything else, including other letters, is included")
}

func Test_Automaton_06_Sinks(t *testing.T) {
	a := NewCompiler().Compile(regexast.Empty{})

	assert.True(t, len(a.Sink) > 0, "the empty language's automaton has at least one state")
	assert.True(t, a.Sink[a.Start], "the empty language's start state can never reach acceptance")
}

func Test_Automaton_07_CompilerMemoizes(t *testing.T) {
	c := NewCompiler()
	r := regexast.Lit([]rune("xyz"))

	a1 := c.Compile(r)
	a2 := c.Compile(r)

	assert.True(t, a1 == a2, "compiling the same regex twice hits the cache")
}
