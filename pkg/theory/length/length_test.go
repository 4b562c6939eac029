package length

import (
	"testing"

	"github.com/dpllt/seqtheory/pkg/theory/external"
	"github.com/dpllt/seqtheory/pkg/util/assert"
)

func Test_Length_01_MarkHasLengthIsIdempotent(t *testing.T) {
	tr := NewTracker()

	first := tr.MarkHasLength(1)
	second := tr.MarkHasLength(1)

	assert.True(t, first, "first mark reports newly tracked")
	assert.False(t, second, "repeated mark reports already tracked")
}

func Test_Length_02_AddLengthToEqcSkipsAlreadyTracked(t *testing.T) {
	tr := NewTracker()
	tr.MarkHasLength(1)

	needs := tr.AddLengthToEqc([]external.EnodeID{1, 2, 3})

	assert.Equal(t, 2, len(needs), "only the untracked members need a fresh axiom")
}

func Test_Length_03_TruncateUndoesMarks(t *testing.T) {
	tr := NewTracker()
	tr.MarkHasLength(1)
	stamp := tr.Stamp()
	tr.MarkHasLength(2)

	assert.True(t, tr.HasLength(2), "mark applied before truncate")

	tr.Truncate(stamp)

	assert.True(t, tr.HasLength(1), "pre-stamp mark survives truncate")
	assert.False(t, tr.HasLength(2), "post-stamp mark is undone")
}

func Test_Length_04_CheckIntStringFiltersPending(t *testing.T) {
	tr := NewTracker()
	tr.MarkHasLength(10)

	obligations := []IntStringObligation{
		{Other: 10},
		{Other: 20},
	}

	pending := tr.CheckIntString(obligations)

	assert.Equal(t, 1, len(pending), "only the obligation missing a length term is pending")
	assert.Equal(t, 20, int(pending[0].Other), "the pending obligation is the untracked one")
}

func Test_Length_05_ReduceLengthPairTakesMinimum(t *testing.T) {
	assert.Equal(t, 3, ReduceLengthPair(3, 7), "peel is capped by the shorter side")
	assert.Equal(t, 3, ReduceLengthPair(7, 3), "peel is capped by the shorter side, symmetric")
}

func Test_Length_06_QuickBoundCapsToLowerBound(t *testing.T) {
	assert.Equal(t, 4, QuickBound(4, 9), "wanted peel is capped by the known lower bound")
	assert.Equal(t, 2, QuickBound(4, 2), "wanted peel under the bound passes through unchanged")
}
