// Package model implements the model constructor of §2/§4: once the
// pipeline reports DONE, it composes a concrete witness value for every
// sequence-valued enode, respecting the solution map's bindings and the
// equivalence graph's classes.
package model

import (
	"fmt"

	"github.com/dpllt/seqtheory/pkg/theory/solution"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

// Value is a concrete witness for one sequence-valued term: a finite word
// over alphabet elements (runes), each taken from a constant in the term or
// in its solution-map binding; a part with no binding contributes no
// elements.
type Value struct {
	Word []rune
}

// String renders a witness value for diagnostics.
func (v Value) String() string {
	return fmt.Sprintf("%q", string(v.Word))
}

// Builder composes Values for every relevant sequence term, memoizing by
// term so that shared sub-terms produce identical witnesses (a precondition
// for the composed model to actually satisfy the equations it claims to).
type Builder struct {
	m      *term.Manager
	sol    *solution.Map
	filler rune

	cache map[term.ID]Value
	order []*term.Term
}

// NewBuilder returns a model builder over m's terms and sol's bindings.
// filler is stored on the builder; no witness computed here uses it, since
// an unbound variable gets the empty witness.
func NewBuilder(m *term.Manager, sol *solution.Map, filler rune) *Builder {
	return &Builder{m: m, sol: sol, filler: filler, cache: make(map[term.ID]Value)}
}

// Value returns the witness value for t, computing and caching it on first
// use.
func (b *Builder) Value(t *term.Term) Value {
	if v, ok := b.cache[t.ID()]; ok {
		return v
	}

	v := b.compute(t)
	b.cache[t.ID()] = v
	b.order = append(b.order, t)

	return v
}

func (b *Builder) compute(t *term.Term) Value {
	switch t.Kind() {
	case term.KindEpsilon:
		return Value{}

	case term.KindElemConst:
		return Value{Word: []rune{t.ElemConstVal()}}

	case term.KindUnit:
		return Value{Word: b.Value(t.Args()[0]).Word}

	case term.KindLiteral:
		return Value{Word: append([]rune(nil), t.LitVal()...)}

	case term.KindConcat:
		var word []rune
		for _, a := range t.Args() {
			word = append(word, b.Value(a).Word...)
		}
		return Value{Word: word}

	case term.KindVar:
		return b.resolveVar(t)

	case term.KindIte:
		// The model is only ever built after the pipeline has reported
		// DONE, at which point every live ITE's condition has a decided
		// truth value; canon.Canonize is expected to have already replaced
		// every such ITE with its selected branch by that point, so one
		// reaching the builder unresolved is a caller error.
		panic("model: unresolved ite reached the model builder")

	default:
		return b.resolveVar(t)
	}
}

// resolveVar follows the solution map to t's bound value, if any, composing
// a witness from it; otherwise it returns the empty sequence. The filler
// element is not used and no length fixed by the length theory is
// consulted.
func (b *Builder) resolveVar(t *term.Term) Value {
	root, _ := b.sol.Find(t)
	if root == t {
		return Value{}
	}

	return b.Value(root)
}

// Entry is one witness binding, as rendered by Dump.
type Entry struct {
	Name  string
	Value string
}

// Dump renders every witness value computed so far, in the order each term
// was first requested, for diagnostic display (Core.Dump's model section).
// A plain map would discard that order on every range over it, so this
// returns a slice instead.
func (b *Builder) Dump() []Entry {
	out := make([]Entry, 0, len(b.order))

	for _, t := range b.order {
		out = append(out, Entry{Name: t.String(), Value: b.cache[t.ID()].String()})
	}

	return out
}
