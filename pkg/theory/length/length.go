// Package length implements the length-coherence / int-string bridge of
// §4.7: tracking which enodes already have a registered length axiom, and
// deciding when an itos/stoi pair needs its length tied into the same
// equivalence class as the other side.
package length

import (
	"github.com/dpllt/seqtheory/pkg/theory/dep"
	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

// Tracker records which enodes already have a length term registered
// (add_length_to_eqc's has_length set), so the pipeline never emits the
// same length axiom twice for equivalent terms.
type Tracker struct {
	hasLength map[external.EnodeID]bool
	trail     []external.EnodeID
}

// NewTracker returns an empty length tracker.
func NewTracker() *Tracker {
	return &Tracker{hasLength: make(map[external.EnodeID]bool)}
}

// HasLength reports whether e already has a registered length term.
func (t *Tracker) HasLength(e external.EnodeID) bool {
	return t.hasLength[e]
}

// MarkHasLength records that e now has a length term, returning false if
// it was already marked (so the caller knows not to re-emit the axiom).
func (t *Tracker) MarkHasLength(e external.EnodeID) bool {
	if t.hasLength[e] {
		return false
	}

	t.hasLength[e] = true
	t.trail = append(t.trail, e)

	return true
}

// Stamp returns a marker identifying the current trail length.
func (t *Tracker) Stamp() uint {
	return uint(len(t.trail))
}

// Truncate undoes every MarkHasLength call since stamp.
func (t *Tracker) Truncate(stamp uint) {
	for uint(len(t.trail)) > stamp {
		last := t.trail[len(t.trail)-1]
		t.trail = t.trail[:len(t.trail)-1]
		delete(t.hasLength, last)
	}
}

// AddLengthToEqc is add_length_to_eqc: given every member of e's
// equivalence class, it returns the subset that still lacks a length term
// (after marking them as now having one), for the caller to enqueue a
// length axiom (LengthEpsilon/LengthUnit/LengthConcat, depending on each
// member's term kind) against.
func (t *Tracker) AddLengthToEqc(members []external.EnodeID) []external.EnodeID {
	var needsAxiom []external.EnodeID

	for _, m := range members {
		if t.MarkHasLength(m) {
			needsAxiom = append(needsAxiom, m)
		}
	}

	return needsAxiom
}

// IntStringObligation is one itos(n)/stoi(e) pairing the pipeline has
// decided needs its counterpart's length term present before the axiom
// module can bind the digit-sequence equality (check_int_string, §4.7).
type IntStringObligation struct {
	// IntTerm is the itos(n) or stoi(e) term being tracked.
	IntTerm *term.Term
	// Other is the enode whose length must be present in the same
	// equivalence class (the sequence side for itos, the integer side's
	// digit-count expectation for stoi).
	Other external.EnodeID
	Dep   *dep.Dependency
}

// CheckIntString is check_int_string: given every currently tracked itos/
// stoi obligation, it returns the subset whose Other enode still lacks a
// length term, for the caller to register (and, once present, to hand to
// the axiom module's ItoSDigitSequence/DigitRangeGuard).
func (t *Tracker) CheckIntString(obligations []IntStringObligation) []IntStringObligation {
	var pending []IntStringObligation

	for _, ob := range obligations {
		if !t.HasLength(ob.Other) {
			pending = append(pending, ob)
		}
	}

	return pending
}

// ReduceLengthPair is the [EXPANSION] dual-overload reduce_length: given
// two equal-length sides already known equal at the prefix, it computes
// how many leading elements can be peeled before a mismatch in the
// elementwise structure is possible (reduce_length_eq, rule 8 of §4.4),
// returning the number of elements safe to strip from both sides.
func ReduceLengthPair(lhsLen, rhsLen int) int {
	if lhsLen < rhsLen {
		return lhsLen
	}

	return rhsLen
}

// QuickBound is the [EXPANSION] single-sided overload of reduce_length:
// given a known lower bound on a sequence's length and a candidate peel
// count, it caps the peel at the bound so a branch never strips more
// elements than are guaranteed to exist.
func QuickBound(lowerBound, wanted int) int {
	if wanted > lowerBound {
		return lowerBound
	}

	return wanted
}
