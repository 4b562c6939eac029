package automaton

import (
	"fmt"
	"sort"

	"github.com/dpllt/seqtheory/pkg/theory/regexast"
)

// symEdge is one Thompson-construction transition guarded by a character
// class predicate, kept as a predicate rather than an enumerated symbol set
// since the alphabet (Unicode code points) is far too large to enumerate.
type symEdge struct {
	class *regexast.Class
	to    int
}

// nfa is an ε-NFA with a single designated accept state, built by Thompson
// construction. It is an internal intermediate representation: the
// automaton engine only ever exposes the determinized Automaton.
type nfa struct {
	n      int
	start  int
	accept int
	eps    [][]int
	sym    [][]symEdge
}

func newNFA() *nfa {
	return &nfa{}
}

func (a *nfa) newState() int {
	a.n++
	a.eps = append(a.eps, nil)
	a.sym = append(a.sym, nil)
	return a.n - 1
}

func (a *nfa) addEps(from, to int) {
	a.eps[from] = append(a.eps[from], to)
}

func (a *nfa) addSym(from int, class *regexast.Class, to int) {
	a.sym[from] = append(a.sym[from], symEdge{class: class, to: to})
}

// fragment is a sub-automaton under construction: an entry and exit state,
// with the convention that the fragment matches exactly the strings taking
// some path of symbol transitions from start to accept.
type fragment struct {
	start, accept int
}

// buildNFA compiles r into a into a freshly allocated nfa's state space,
// returning the fragment's entry/exit pair.
func buildNFA(a *nfa, r regexast.Regex) fragment {
	switch r.Kind() {
	case regexast.KindEmpty:
		s, e := a.newState(), a.newState()
		return fragment{s, e} // no transitions at all: matches nothing

	case regexast.KindEpsilon, regexast.KindAnchorStart, regexast.KindAnchorEnd:
		// Anchors are approximated as ε: this automaton model tracks no
		// absolute position, so ^ and $ only behave correctly when they
		// appear exactly at the start/end of the overall pattern, which is
		// the only place the original spec's own accept/step recursion
		// would ever place them anyway.
		s, e := a.newState(), a.newState()
		a.addEps(s, e)
		return fragment{s, e}

	case regexast.KindClass:
		s, e := a.newState(), a.newState()
		a.addSym(s, r.(*regexast.Class), e)
		return fragment{s, e}

	case regexast.KindConcat:
		c := r.(*regexast.Concat)
		if len(c.Args) == 0 {
			return buildNFA(a, regexast.Eps{})
		}
		frag := buildNFA(a, c.Args[0])
		for _, sub := range c.Args[1:] {
			next := buildNFA(a, sub)
			a.addEps(frag.accept, next.start)
			frag = fragment{frag.start, next.accept}
		}
		return frag

	case regexast.KindUnion:
		u := r.(*regexast.Union)
		s, e := a.newState(), a.newState()
		for _, sub := range u.Args {
			f := buildNFA(a, sub)
			a.addEps(s, f.start)
			a.addEps(f.accept, e)
		}
		return fragment{s, e}

	case regexast.KindStar:
		st := r.(*regexast.Star)
		s, e := a.newState(), a.newState()
		f := buildNFA(a, st.Arg)
		a.addEps(s, f.start)
		a.addEps(f.accept, e)
		a.addEps(e, s)
		a.addEps(s, e) // zero repetitions
		return fragment{s, e}

	case regexast.KindInter, regexast.KindCompl:
		// Intersection and complement are not Thompson-constructible
		// directly; Compile handles them by determinizing the operands
		// first and taking a DFA product/complement. buildNFA is never
		// called on them - see compile.
		panic(fmt.Sprintf("automaton: buildNFA called on regex kind %d", r.Kind()))

	default:
		panic("automaton: unhandled regex kind in buildNFA")
	}
}

// epsClosure returns the set of states reachable from any state in start
// via ε-moves alone, start included.
func (a *nfa) epsClosure(start []int) []int {
	seen := make(map[int]bool, len(start))
	var stack []int

	for _, s := range start {
		if !seen[s] {
			seen[s] = true
			stack = append(stack, s)
		}
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, t := range a.eps[s] {
			if !seen[t] {
				seen[t] = true
				stack = append(stack, t)
			}
		}
	}

	out := make([]int, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}

	sort.Ints(out)

	return out
}
