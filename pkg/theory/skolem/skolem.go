// Package skolem implements the Skolem module of §4.5: construction and
// recognition of the named Skolem function families (tail, pre, post,
// indexof_left/right, accept, step, prefix_inv, suffix_inv, digit2int,
// length_limit, max_unfolding), plus the inverse "is this term a
// pre/post/tail/...?" queries the pipeline needs.
package skolem

import (
	"github.com/dpllt/seqtheory/pkg/theory/regexast"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

// Tail constructs tail(s, i): the suffix of s starting at position i+1.
func Tail(m *term.Manager, s, i *term.Term) *term.Term {
	return m.Skolem(term.SkTail, []*term.Term{s, i}, nil, nil)
}

// Pre constructs pre(s, i): the prefix of s of length i.
func Pre(m *term.Manager, s, i *term.Term) *term.Term {
	return m.Skolem(term.SkPre, []*term.Term{s, i}, nil, nil)
}

// Post constructs post(s, i): the suffix of s starting at position i.
func Post(m *term.Manager, s, i *term.Term) *term.Term {
	return m.Skolem(term.SkPost, []*term.Term{s, i}, nil, nil)
}

// IndexOfLeft constructs indexof_left(s, t): the prefix of s before the
// first match of t.
func IndexOfLeft(m *term.Manager, s, t *term.Term) *term.Term {
	return m.Skolem(term.SkIndexOfLeft, []*term.Term{s, t}, nil, nil)
}

// IndexOfRight constructs indexof_right(s, t): the suffix of s after the
// first match of t.
func IndexOfRight(m *term.Manager, s, t *term.Term) *term.Term {
	return m.Skolem(term.SkIndexOfRight, []*term.Term{s, t}, nil, nil)
}

// PrefixInv constructs prefix_inv(a, b): the continuation making a a
// prefix of b.
func PrefixInv(m *term.Manager, a, b *term.Term) *term.Term {
	return m.Skolem(term.SkPrefixInv, []*term.Term{a, b}, nil, nil)
}

// SuffixInv constructs suffix_inv(a, b): the prolongation making a a
// suffix of b.
func SuffixInv(m *term.Manager, a, b *term.Term) *term.Term {
	return m.Skolem(term.SkSuffixInv, []*term.Term{a, b}, nil, nil)
}

// SeqFirst constructs seq_first(s): the first element of a non-empty s.
func SeqFirst(m *term.Manager, s *term.Term) *term.Term {
	return m.Skolem(term.SkSeqFirst, []*term.Term{s}, nil, nil)
}

// Digit2Int constructs digit2int(c): the numeric value of a decimal-digit
// unit.
func Digit2Int(m *term.Manager, c *term.Term) *term.Term {
	return m.Skolem(term.SkDigit2Int, []*term.Term{c}, nil, nil)
}

// Accept constructs accept(s, i, R, q): s is accepted by the automaton for
// R from state q, starting at position i.
func Accept(m *term.Manager, s, i *term.Term, r regexast.Regex, q int64) *term.Term {
	return m.Skolem(term.SkAccept, []*term.Term{s, i}, []int64{q}, r)
}

// Step constructs step(s, i, R, q, q'): one automaton transition from q to
// q' at position i, guarded by the transition predicate (carried
// separately as a literal by the caller, since the predicate itself is a
// Boolean combination over the alphabet rather than a sequence term).
func Step(m *term.Manager, s, i *term.Term, r regexast.Regex, q, qPrime int64) *term.Term {
	return m.Skolem(term.SkStep, []*term.Term{s, i}, []int64{q, qPrime}, r)
}

// MaxUnfolding constructs max_unfolding(d): the budget literal term at
// unfolding depth d.
func MaxUnfolding(m *term.Manager, d int64) *term.Term {
	return m.Skolem(term.SkMaxUnfolding, nil, []int64{d}, nil)
}

// LengthLimit constructs length_limit(s, k): the budget literal term
// bounding |s| ≤ k.
func LengthLimit(m *term.Manager, s *term.Term, k int64) *term.Term {
	return m.Skolem(term.SkLengthLimit, []*term.Term{s}, []int64{k}, nil)
}

// As reports whether t is a Skolem application of the given family and, if
// so, returns its term arguments and integer state.
func As(t *term.Term, kind term.SkolemKind) (args []*term.Term, state []int64, re regexast.Regex, ok bool) {
	if t.Kind() != term.KindSkolem || t.SkolemKind() != kind {
		return nil, nil, nil, false
	}

	return t.SkolemArgs(), t.SkolemState(), t.SkolemRegex(), true
}

// Index supports "is this term a pre/post/tail/.../accept/step?" inverse
// queries plus the original's is_safe_to_copy gate: accept/step terms
// depend on the automaton instantiated at the scope they were created in,
// so copying them into a strictly outer scope (e.g. via a cached
// canonization result from a deeper scope that has since been popped) is
// unsound.
type Index struct {
	scopeOf map[term.ID]int
}

// NewIndex returns an empty Skolem index.
func NewIndex() *Index {
	return &Index{scopeOf: make(map[term.ID]int)}
}

// Record notes that t was created at the given scope depth.
func (idx *Index) Record(t *term.Term, atScope int) {
	idx.scopeOf[t.ID()] = atScope
}

// SafeToCopy reports whether an automaton-derived Skolem term (accept or
// step) created at its recorded scope may still be used at the current
// scope depth. Non-automaton Skolems, and automaton Skolems not created
// at a deeper scope than the current one, are always safe.
func (idx *Index) SafeToCopy(t *term.Term, currentScope int) bool {
	if t.Kind() != term.KindSkolem {
		return true
	}

	switch t.SkolemKind() {
	case term.SkAccept, term.SkStep:
		created, ok := idx.scopeOf[t.ID()]
		if !ok {
			return true
		}

		return created <= currentScope
	default:
		return true
	}
}
