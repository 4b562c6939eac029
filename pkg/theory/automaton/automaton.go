// Package automaton implements the regex/automaton engine of §4.6: regex
// terms are compiled lazily, memoized per regex, into deterministic finite
// automata with symbolic (interval-guarded) transitions, letting the axiom
// module phrase accept/step Skolems against a concrete state graph.
// Determinization and the intersection/complement operators needed for
// KindInter/KindCompl are implemented via the classic subset and product
// constructions, using a bitset to key the subset-construction's
// state-set-to-DFA-state map.
package automaton

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bits-and-blooms/bitset"
	"github.com/dpllt/seqtheory/pkg/theory/regexast"
)

// Edge is one symbolic, interval-guarded transition out of a DFA state:
// every code point in [Lo,Hi] takes this edge. A state's Edges are kept
// sorted and pairwise disjoint; any code point not covered by any edge
// takes the implicit transition to the automaton's sink state.
type Edge struct {
	Lo, Hi rune
	To     int
}

// Automaton is a deterministic, symbolically-guarded finite automaton
// compiled from a regex.
type Automaton struct {
	NStates int
	Start   int
	Final   []bool
	Edges   [][]Edge

	// Sink marks states from which no accepting run exists (spec §4.6's
	// propagate_accept "if q is a sink ⇒ conflict" case): computed once at
	// compile time by a reverse reachability pass from Final.
	Sink []bool
}

// Step looks up the destination of the transition out of state q guarded
// by code point c, returning ok=false if c falls in none of q's explicit
// edges (i.e. the transition implicitly goes to a sink with no way back to
// acceptance).
func (a *Automaton) Step(q int, c rune) (to int, ok bool) {
	edges := a.Edges[q]
	i := sort.Search(len(edges), func(i int) bool { return edges[i].Hi >= c })

	if i < len(edges) && edges[i].Lo <= c {
		return edges[i].To, true
	}

	return 0, false
}

// Accepts runs word through the automaton from Start, reporting whether it
// ends in a final state. Used by tests and the CLI's automaton subcommand;
// the theory core itself never runs a whole word through an automaton like
// this - it reasons about accept/step Skolems incrementally instead.
func (a *Automaton) Accepts(word []rune) bool {
	q := a.Start

	for _, c := range word {
		to, ok := a.Step(q, c)
		if !ok {
			return false
		}
		q = to
	}

	return a.Final[q]
}

// Outgoing returns every distinct destination state reachable from q by
// some transition, deduplicated - the set the axiom module instantiates
// propagate_step's disjunction over.
func (a *Automaton) Outgoing(q int) []int {
	seen := map[int]bool{}

	var out []int

	for _, e := range a.Edges[q] {
		if !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}

	return out
}

// Compiler memoizes regex -> Automaton compilation per regex AST node, as
// §4.6 requires ("compiled lazily and memoized per term").
type Compiler struct {
	cache map[regexast.Regex]*Automaton
}

// NewCompiler returns an empty compiler cache.
func NewCompiler() *Compiler {
	return &Compiler{cache: make(map[regexast.Regex]*Automaton)}
}

// Compile returns the automaton for r, compiling and caching it on first
// use.
func (c *Compiler) Compile(r regexast.Regex) *Automaton {
	if hit, ok := c.cache[r]; ok {
		return hit
	}

	a := compile(r)
	c.cache[r] = a

	return a
}

func compile(r regexast.Regex) *Automaton {
	switch r.Kind() {
	case regexast.KindInter:
		i := r.(*regexast.Inter)
		if len(i.Args) == 0 {
			return compile(regexast.Eps{})
		}
		acc := compile(i.Args[0])
		for _, sub := range i.Args[1:] {
			acc = product(acc, compile(sub), func(a, b bool) bool { return a && b })
		}
		return acc

	case regexast.KindCompl:
		comp := r.(*regexast.Compl)
		inner := compile(comp.Arg)
		return complement(inner)

	default:
		n := newNFA()
		f := buildNFA(n, r)
		n.start = f.start
		n.accept = f.accept
		return determinize(n)
	}
}

// subsetKey canonicalizes an NFA state subset (represented as a bitset
// during construction) into a hashable map key.
func subsetKey(bs *bitset.BitSet) string {
	var b strings.Builder

	for i, e := bs.NextSet(0); e; i, e = bs.NextSet(i + 1) {
		fmt.Fprintf(&b, ",%d", i)
	}

	return b.String()
}

// determinize converts n into a complete, deterministic Automaton via
// subset construction, adding an explicit sink state for every
// not-otherwise-covered transition so that Step and Outgoing never need to
// special-case "no transition".
func determinize(n *nfa) *Automaton {
	ivals := partitionNFA(n)

	startSet := n.epsClosure([]int{n.start})

	key := func(states []int) string {
		bs := bitset.New(uint(n.n))
		for _, s := range states {
			bs.Set(uint(s))
		}
		return subsetKey(bs)
	}

	type pending struct {
		states []int
	}

	seen := map[string]int{}
	var dfaStates []pending

	startKey := key(startSet)
	seen[startKey] = 0
	dfaStates = append(dfaStates, pending{startSet})

	var edgesOut [][]Edge

	for i := 0; i < len(dfaStates); i++ {
		cur := dfaStates[i].states

		byTo := map[int][]Edge{}

		for _, iv := range ivals {
			var moved []int
			for _, s := range cur {
				for _, e := range n.sym[s] {
					if e.class.Accepts(iv.Lo) {
						moved = append(moved, e.to)
					}
				}
			}

			// An empty move set closes to the empty subset, which becomes
			// the explicit sink state: it loops to itself on every interval.
			closure := n.epsClosure(moved)
			ck := key(closure)

			to, ok := seen[ck]
			if !ok {
				to = len(dfaStates)
				seen[ck] = to
				dfaStates = append(dfaStates, pending{closure})
			}

			byTo[to] = append(byTo[to], Edge{Lo: iv.Lo, Hi: iv.Hi, To: to})
		}

		edgesOut = append(edgesOut, mergeAdjacent(flatten(byTo)))
	}

	final := make([]bool, len(dfaStates))
	for i, ds := range dfaStates {
		for _, s := range ds.states {
			if s == n.accept {
				final[i] = true
				break
			}
		}
	}

	a := &Automaton{NStates: len(dfaStates), Start: 0, Final: final, Edges: edgesOut}
	a.Sink = computeSinks(a)

	return a
}

func partitionNFA(n *nfa) []Edge {
	pts := map[rune]bool{0: true}
	for _, edges := range n.sym {
		for _, e := range edges {
			for _, rg := range e.class.Ranges {
				pts[rg.Lo] = true
				if rg.Hi < utf8.MaxRune {
					pts[rg.Hi+1] = true
				}
			}
		}
	}

	sorted := make([]rune, 0, len(pts))
	for p := range pts {
		sorted = append(sorted, p)
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]Edge, 0, len(sorted))
	for i, lo := range sorted {
		hi := rune(utf8.MaxRune)
		if i+1 < len(sorted) {
			hi = sorted[i+1] - 1
		}
		if lo <= hi {
			out = append(out, Edge{Lo: lo, Hi: hi})
		}
	}

	return out
}

func flatten(byTo map[int][]Edge) []Edge {
	var out []Edge
	for _, es := range byTo {
		out = append(out, es...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })

	return out
}

// mergeAdjacent coalesces consecutive edges sharing a destination into one
// wider interval, keeping the transition table small.
func mergeAdjacent(edges []Edge) []Edge {
	if len(edges) == 0 {
		return edges
	}

	out := edges[:1]
	for _, e := range edges[1:] {
		last := &out[len(out)-1]
		if last.To == e.To && last.Hi+1 == e.Lo {
			last.Hi = e.Hi
			continue
		}
		out = append(out, e)
	}

	return out
}

func computeSinks(a *Automaton) []bool {
	canReachFinal := make([]bool, a.NStates)

	changed := true
	for changed {
		changed = false
		for q := 0; q < a.NStates; q++ {
			if canReachFinal[q] {
				continue
			}
			if a.Final[q] {
				canReachFinal[q] = true
				changed = true
				continue
			}
			for _, e := range a.Edges[q] {
				if canReachFinal[e.To] {
					canReachFinal[q] = true
					changed = true
					break
				}
			}
		}
	}

	sink := make([]bool, a.NStates)
	for q := range sink {
		sink[q] = !canReachFinal[q]
	}

	return sink
}

// product builds the DFA for the combination of a and b under combine
// (conjunction for intersection, disjunction for union), via the standard
// product construction over the union of both automata's interval
// partitions.
func product(a, b *Automaton, combine func(af, bf bool) bool) *Automaton {
	ivals := mergePartitions(a, b)

	type pair struct{ a, b int }

	seen := map[pair]int{{a.Start, b.Start}: 0}
	states := []pair{{a.Start, b.Start}}

	var edgesOut [][]Edge

	for i := 0; i < len(states); i++ {
		cur := states[i]

		byTo := map[int][]Edge{}

		for _, iv := range ivals {
			ta, oka := a.Step(cur.a, iv.Lo)
			tb, okb := b.Step(cur.b, iv.Lo)

			if !oka || !okb {
				continue
			}

			p := pair{ta, tb}

			to, ok := seen[p]
			if !ok {
				to = len(states)
				seen[p] = to
				states = append(states, p)
			}

			byTo[to] = append(byTo[to], Edge{Lo: iv.Lo, Hi: iv.Hi, To: to})
		}

		edgesOut = append(edgesOut, mergeAdjacent(flatten(byTo)))
	}

	final := make([]bool, len(states))
	for i, p := range states {
		final[i] = combine(a.Final[p.a], b.Final[p.b])
	}

	out := &Automaton{NStates: len(states), Start: 0, Final: final, Edges: edgesOut}
	out.Sink = computeSinks(out)

	return out
}

// complement flips a's accepting states in place over a fresh copy,
// relying on a.Step's "no edge ⇒ implicit sink" convention: an automaton
// compiled by this package is never partial in the sense that matters
// here, because every state missing an explicit edge for some interval is
// simply non-accepting dead space, which complement must turn into
// accepting space. To keep that sound we materialize the implicit sink as
// a real state before flipping.
func complement(a *Automaton) *Automaton {
	sinkState := a.NStates

	edges := make([][]Edge, a.NStates+1)
	for q := 0; q < a.NStates; q++ {
		edges[q] = totalize(a.Edges[q], sinkState)
	}
	edges[sinkState] = []Edge{{Lo: 0, Hi: utf8.MaxRune, To: sinkState}}

	final := make([]bool, a.NStates+1)
	for q := 0; q < a.NStates; q++ {
		final[q] = !a.Final[q]
	}
	final[sinkState] = true

	out := &Automaton{NStates: a.NStates + 1, Start: a.Start, Final: final, Edges: edges}
	out.Sink = computeSinks(out)

	return out
}

// totalize fills the gaps in a sorted, disjoint edge list with explicit
// transitions to sink, so the result covers every code point.
func totalize(edges []Edge, sink int) []Edge {
	out := make([]Edge, 0, len(edges)+1)

	next := rune(0)
	for _, e := range edges {
		if e.Lo > next {
			out = append(out, Edge{Lo: next, Hi: e.Lo - 1, To: sink})
		}
		out = append(out, e)
		next = e.Hi + 1
	}

	if next <= utf8.MaxRune {
		out = append(out, Edge{Lo: next, Hi: utf8.MaxRune, To: sink})
	}

	return out
}

func mergePartitions(a, b *Automaton) []Edge {
	pts := map[rune]bool{0: true}

	collect := func(a *Automaton) {
		for _, edges := range a.Edges {
			for _, e := range edges {
				pts[e.Lo] = true
				if e.Hi < utf8.MaxRune {
					pts[e.Hi+1] = true
				}
			}
		}
	}

	collect(a)
	collect(b)

	sorted := make([]rune, 0, len(pts))
	for p := range pts {
		sorted = append(sorted, p)
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	out := make([]Edge, 0, len(sorted))
	for i, lo := range sorted {
		hi := rune(utf8.MaxRune)
		if i+1 < len(sorted) {
			hi = sorted[i+1] - 1
		}
		if lo <= hi {
			out = append(out, Edge{Lo: lo, Hi: hi})
		}
	}

	return out
}
