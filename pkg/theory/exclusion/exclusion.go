// Package exclusion implements the exclusion table of §4.3/§4.4.13: an
// unordered set of term pairs known to be disequal after canonicalization,
// used by check_extensionality to avoid re-probing pairs the sequence
// rewriter already refuted.
package exclusion

import (
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

type pairKey struct{ lo, hi term.ID }

func canon(a, b *term.Term) pairKey {
	if a.ID() <= b.ID() {
		return pairKey{a.ID(), b.ID()}
	}

	return pairKey{b.ID(), a.ID()}
}

// Table is the scoped set of excluded (known-disequal) pairs.
type Table struct {
	present map[pairKey]bool
	trail   []pairKey
}

// NewTable returns an empty exclusion table.
func NewTable() *Table {
	return &Table{present: make(map[pairKey]bool)}
}

// Contains reports whether (a, b) is already recorded as excluded.
func (t *Table) Contains(a, b *term.Term) bool {
	return t.present[canon(a, b)]
}

// Update records (a, b) as excluded, unless already present.
func (t *Table) Update(a, b *term.Term) {
	k := canon(a, b)
	if t.present[k] {
		return
	}

	t.present[k] = true
	t.trail = append(t.trail, k)
}

// Stamp returns the current trail length, for later Truncate.
func (t *Table) Stamp() int { return len(t.trail) }

// Truncate undoes every Update performed since stamp.
func (t *Table) Truncate(stamp int) {
	for i := len(t.trail) - 1; i >= stamp; i-- {
		delete(t.present, t.trail[i])
	}

	t.trail = t.trail[:stamp]
}

// Len reports how many pairs are currently excluded.
func (t *Table) Len() int { return len(t.present) }
