package lang

import (
	"testing"

	"github.com/dpllt/seqtheory/pkg/util/assert"
)

func Test_Parser_00_Empty(t *testing.T) {
	e, err := Parse("")
	assert.Equal(t, true, err == nil, "empty input is not an error")
	assert.Equal(t, true, e == nil, "empty input yields no expression")
}

func Test_Parser_01_Symbol(t *testing.T) {
	e, err := Parse("x")
	assert.Equal(t, true, err == nil, "a bare symbol parses")
	assert.Equal(t, "x", e.String())
}

func Test_Parser_02_EmptyList(t *testing.T) {
	e, err := Parse("()")
	assert.Equal(t, true, err == nil, "an empty list parses")
	assert.Equal(t, "()", e.String())
}

func Test_Parser_03_NestedList(t *testing.T) {
	e, err := Parse("(eq x (concat y z))")
	assert.Equal(t, true, err == nil, "a nested list parses")

	l, ok := e.(*List)
	assert.Equal(t, true, ok, "the top level is a list")
	assert.Equal(t, 3, l.Len(), "three elements: eq, x, and the concat subform")
}

func Test_Parser_04_StringLiteral(t *testing.T) {
	e, err := Parse(`(word "a b")`)
	assert.Equal(t, true, err == nil, "a quoted string keeps its internal space")

	l := e.(*List)
	s, ok := l.Elements[1].(*StrLit)
	assert.Equal(t, true, ok, "the second element is a string literal")
	assert.Equal(t, "a b", s.Value)
}

func Test_Parser_05_StringEscapes(t *testing.T) {
	e, err := Parse(`"a\"b"`)
	assert.Equal(t, true, err == nil, "an escaped quote does not end the string early")

	s := e.(*StrLit)
	assert.Equal(t, `a"b`, s.Value)
}

func Test_Parser_06_Comment(t *testing.T) {
	e, err := Parse("; a comment\nx")
	assert.Equal(t, true, err == nil, "a leading comment line is skipped")
	assert.Equal(t, "x", e.String())
}

func Test_Parser_07_UnterminatedList(t *testing.T) {
	_, err := Parse("(eq x")
	assert.Equal(t, true, err != nil, "an unterminated list is a syntax error")
}

func Test_Parser_08_ParseAll(t *testing.T) {
	forms, err := ParseAll("(eq x y)\n(neq x z)")
	assert.Equal(t, true, err == nil, "two top-level forms parse without error")
	assert.Equal(t, 2, len(forms), "both top-level forms are returned")
}
