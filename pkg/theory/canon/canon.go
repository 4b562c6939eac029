// Package canon implements the canonizer/expander of §4.3: it rewrites a
// term to normal form by recursively normalizing children, resolving
// decided ITE conditions, folding the handful of purely structural
// simplifications the term model itself does not already apply at
// construction time, and memoizing the result alongside the dependency it
// rests on.
package canon

import (
	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/skolem"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

type cacheEntry struct {
	out *term.Term
	dep *dep.Dependency
}

// Canonizer owns the canonization cache and the collaborators canonize
// needs: the term manager, and the SAT engine consulted to decide ITE
// conditions.
type Canonizer struct {
	m   *term.Manager
	sat external.SATEngine

	cache map[term.ID]cacheEntry

	// Relevant is called whenever canonize meets an ITE whose condition is
	// currently undef; the core uses this to ask the SAT engine to decide
	// that literal before the next final-check round (§4.3 step 3: "marks
	// the condition relevant and defers").
	Relevant func(lit external.Literal)
}

// NewCanonizer returns a canonizer over m, consulting sat for ITE
// conditions.
func NewCanonizer(m *term.Manager, sat external.SATEngine) *Canonizer {
	return &Canonizer{m: m, sat: sat, cache: make(map[term.ID]cacheEntry)}
}

// Reset drops the entire cache, e.g. on scope pop when the cache cannot be
// trusted to still reflect the restored search state; canonize is pure
// with respect to the manager so staleness only ever costs recomputation,
// never soundness, but the original still clears it on backtrack and we
// follow suit.
func (c *Canonizer) Reset() {
	c.cache = make(map[term.ID]cacheEntry)
}

// Canonize rewrites e to normal form, returning the rewritten term and the
// dependency the rewriting rested on (ITE branch selections and any
// cached sub-results that themselves carried a dependency).
func (c *Canonizer) Canonize(e *term.Term) (*term.Term, *dep.Dependency) {
	if hit, ok := c.cache[e.ID()]; ok {
		return hit.out, hit.dep
	}

	out, d := c.canonizeUncached(e)
	c.cache[e.ID()] = cacheEntry{out: out, dep: d}

	return out, d
}

func (c *Canonizer) canonizeUncached(e *term.Term) (*term.Term, *dep.Dependency) {
	if e.Kind() == term.KindIte {
		return c.canonizeIte(e)
	}

	children := e.Children()
	if len(children) == 0 {
		return e, nil
	}

	newChildren := make([]*term.Term, len(children))

	var d *dep.Dependency

	for i, ch := range children {
		nc, cd := c.Canonize(ch)
		newChildren[i] = nc
		d = dep.Join(d, cd)
	}

	// Always rebuild through the smart constructors and the node-level
	// rewrite below, even when no child actually changed: it is this
	// rebuild step, not the child recursion, that applies algebraic
	// simplifications such as dropping ε operands from a concatenation.
	// Hash-consing makes the no-op case cheap (a single map lookup).
	return c.rebuild(e, newChildren), d
}

func (c *Canonizer) canonizeIte(e *term.Term) (*term.Term, *dep.Dependency) {
	switch c.sat.Value(e.IteCond()) {
	case external.True:
		branch, bd := c.Canonize(e.IteThen())
		return branch, dep.Join(dep.Leaf(e.IteCond()), bd)
	case external.False:
		branch, bd := c.Canonize(e.IteElse())
		return branch, dep.Join(dep.Leaf(e.IteCond().Negate()), bd)
	default:
		if c.Relevant != nil {
			c.Relevant(e.IteCond())
		}

		return e, nil
	}
}

// rebuild reconstructs a node of e's kind over newArgs, using the term
// manager's own smart constructors so that any structural simplification
// those constructors perform (e.g. Concat's flattening and singleton
// collapse) is applied uniformly rather than duplicated here.
func (c *Canonizer) rebuild(e *term.Term, newArgs []*term.Term) *term.Term {
	m := c.m

	switch e.Kind() {
	case term.KindUnit:
		return m.Unit(newArgs[0])
	case term.KindConcat:
		return m.Concat(dropEpsilon(m, newArgs)...)
	case term.KindLength:
		return m.Length(newArgs[0])
	case term.KindSubstr:
		return m.Substr(newArgs[0], newArgs[1], newArgs[2])
	case term.KindAt:
		return m.At(newArgs[0], newArgs[1])
	case term.KindNth:
		return m.Nth(newArgs[0], newArgs[1])
	case term.KindContains:
		return m.Contains(newArgs[0], newArgs[1])
	case term.KindPrefixOf:
		return m.PrefixOf(newArgs[0], newArgs[1])
	case term.KindSuffixOf:
		return m.SuffixOf(newArgs[0], newArgs[1])
	case term.KindIndexOf:
		return m.IndexOf(newArgs[0], newArgs[1])
	case term.KindIndexOfFrom:
		return m.IndexOfFrom(newArgs[0], newArgs[1], newArgs[2])
	case term.KindReplace:
		return m.Replace(newArgs[0], newArgs[1], newArgs[2])
	case term.KindItoS:
		return m.ItoS(newArgs[0])
	case term.KindStoI:
		return m.StoI(newArgs[0])
	case term.KindInRegex:
		return m.InRegex(newArgs[0], e.Regex())
	case term.KindLt:
		return m.Lt(newArgs[0], newArgs[1])
	case term.KindLe:
		return m.Le(newArgs[0], newArgs[1])
	case term.KindEq:
		return m.Eq(newArgs[0], newArgs[1])
	case term.KindSkolem:
		return m.Skolem(e.SkolemKind(), newArgs, e.SkolemState(), e.SkolemRegex())
	default:
		panic("canon: rebuild called on leaf kind " + e.Kind().String())
	}
}

// dropEpsilon strips ε operands out of a concatenation's argument list (the
// rewriter's job per §4.3 step 4, not the term manager's raw constructor):
// ε is the identity of concatenation, so it never needs to survive in a
// canonical form. An all-ε list degenerates to a single ε, matching
// Manager.Concat's own empty-input convention.
func dropEpsilon(m *term.Manager, args []*term.Term) []*term.Term {
	out := make([]*term.Term, 0, len(args))
	for _, a := range args {
		if a.Kind() != term.KindEpsilon {
			out = append(out, a)
		}
	}

	if len(out) == 0 {
		return []*term.Term{m.Epsilon()}
	}

	return out
}

// Decompose is mk_decompose: it splits a non-empty sequence term s into
// its head/tail form unit(nth(s,0)) ++ tail(s,0), for the caller to
// enqueue as a fresh equation once it has established |s| > 0. zero is the
// arithmetic theory's integer-zero term.
func Decompose(m *term.Manager, s, zero *term.Term) (head, tail *term.Term) {
	return m.Unit(m.Nth(s, zero)), skolem.Tail(m, s, zero)
}
