// Package solution implements the backtrackable solution map of §4.2: a
// mapping from term to (replacement term, dependency), scoped, with a
// transitive Find and a per-scope memoized cache.
package solution

import (
	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

type entry struct {
	lhs *term.Term
	rhs *term.Term
	dep *dep.Dependency
}

type trailOp struct {
	lhs  term.ID
	prev entry // zero value means "was empty"
	had  bool
}

// Map is the scoped term → (replacement, dependency) store.
type Map struct {
	slots map[term.ID]entry
	trail []trailOp
	cache map[term.ID]entry
}

// NewMap returns an empty solution map.
func NewMap() *Map {
	return &Map{
		slots: make(map[term.ID]entry),
		cache: make(map[term.ID]entry),
	}
}

// IsRoot reports whether e currently has no solution-map entry.
func (m *Map) IsRoot(e *term.Term) bool {
	_, ok := m.slots[e.ID()]
	return !ok
}

// Update writes lhs ↦ (rhs, d), recording a trail item so the write can be
// undone by Truncate. Duplicate writes stack: the prior value (possibly
// "no entry") is restored on undo, matching the original's add_trail
// discipline.
func (m *Map) Update(lhs, rhs *term.Term, d *dep.Dependency) {
	prev, had := m.slots[lhs.ID()]
	m.trail = append(m.trail, trailOp{lhs: lhs.ID(), prev: prev, had: had})
	m.slots[lhs.ID()] = entry{lhs: lhs, rhs: rhs, dep: d}
	m.cache = make(map[term.ID]entry)
}

// Find follows the solution-map chain from e to a fixed point, joining
// dependencies along the way. The per-scope cache short-circuits repeated
// finds until the next Update or Truncate invalidates it.
func (m *Map) Find(e *term.Term) (*term.Term, *dep.Dependency) {
	if hit, ok := m.cache[e.ID()]; ok {
		return hit.rhs, hit.dep
	}

	cur := e

	var acc *dep.Dependency

	visited := map[term.ID]bool{}

	for {
		slot, ok := m.slots[cur.ID()]
		if !ok {
			break
		}

		if visited[cur.ID()] {
			// A cycle would violate the chains-terminate invariant of §4.2;
			// callers are required to run the occurs check before Update, so
			// this can only mean a caller bug, not a legitimate state.
			panic("solution map: cycle detected in chain")
		}

		visited[cur.ID()] = true
		acc = dep.Join(acc, slot.dep)
		cur = slot.rhs
	}

	m.cache[e.ID()] = entry{rhs: cur, dep: acc}

	return cur, acc
}

// Stamp returns a marker identifying the current trail position, to be
// passed to Truncate later (e.g. on pop_scope).
func (m *Map) Stamp() int {
	return len(m.trail)
}

// Truncate undoes every Update performed since stamp, replaying inverse
// trail items in LIFO order, and clears the query cache.
func (m *Map) Truncate(stamp int) {
	for i := len(m.trail) - 1; i >= stamp; i-- {
		op := m.trail[i]
		if op.had {
			m.slots[op.lhs] = op.prev
		} else {
			delete(m.slots, op.lhs)
		}
	}

	m.trail = m.trail[:stamp]
	m.cache = make(map[term.ID]entry)
}

// Entries returns every current (lhs, rhs, dep) triple, for diagnostics and
// model construction.
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, len(m.slots))

	for _, e := range m.slots {
		out = append(out, Entry{Lhs: e.lhs, Rhs: e.rhs, Dep: e.dep})
	}

	return out
}

// Entry is a read-only view of one solution-map slot.
type Entry struct {
	Lhs *term.Term
	Rhs *term.Term
	Dep *dep.Dependency
}
