package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marrowai/finetune/types"
)

func TestCollator_PadsToBatchMax(t *testing.T) {
	t.Parallel()

	col, err := NewCollator(newWordTokenizer())
	require.NoError(t, err)

	feats := &Features{
		InputIDs:      [][]int{{5, 3}, {7, 7, 7, 7}, {1}},
		AttentionMask: [][]int{{1, 1}, {1, 1, 1, 1}, {1}},
		Labels:        []int{0, 1, 0},
	}
	out, err := col.Collate(feats)
	require.NoError(t, err)

	for i := range out.InputIDs {
		assert.Len(t, out.InputIDs[i], 4)
		assert.Len(t, out.AttentionMask[i], 4)
	}
	assert.Equal(t, []int{5, 3, 0, 0}, out.InputIDs[0])
	assert.Equal(t, []int{1, 1, 0, 0}, out.AttentionMask[0])
}

func TestCollator_FixedLength(t *testing.T) {
	t.Parallel()

	col, err := NewCollator(newWordTokenizer())
	require.NoError(t, err)
	col = col.WithFixedLength(6)

	feats := &Features{
		InputIDs:      [][]int{{5, 3}},
		AttentionMask: [][]int{{1, 1}},
		Labels:        []int{0},
	}
	out, err := col.Collate(feats)
	require.NoError(t, err)
	assert.Len(t, out.InputIDs[0], 6)
}

func TestCollator_PadsTargetsToOwnBatchMax(t *testing.T) {
	t.Parallel()

	col, err := NewCollator(newWordTokenizer())
	require.NoError(t, err)

	feats := &Features{
		InputIDs:      [][]int{{5, 3}, {7}},
		AttentionMask: [][]int{{1, 1}, {1}},
		TargetIDs:     [][]int{{9}, {4, 4, 4}},
	}
	out, err := col.Collate(feats)
	require.NoError(t, err)

	// Targets pad to their own maximum, independent of the input length.
	assert.Equal(t, [][]int{{9, 0, 0}, {4, 4, 4}}, out.TargetIDs)
	assert.Len(t, out.InputIDs[0], 2)
	assert.Len(t, out.InputIDs[1], 2)
}

func TestCollator_TargetExceedsFixedLength(t *testing.T) {
	t.Parallel()

	col, err := NewCollator(newWordTokenizer())
	require.NoError(t, err)
	col = col.WithFixedLength(2)

	_, err = col.Collate(&Features{
		InputIDs:      [][]int{{1}},
		AttentionMask: [][]int{{1}},
		TargetIDs:     [][]int{{1, 2, 3}},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrIngestion, types.GetErrorCode(err))
}

func TestCollator_RowExceedsFixedLength(t *testing.T) {
	t.Parallel()

	col, err := NewCollator(newWordTokenizer())
	require.NoError(t, err)
	col = col.WithFixedLength(2)

	_, err = col.Collate(&Features{
		InputIDs:      [][]int{{1, 2, 3}},
		AttentionMask: [][]int{{1, 1, 1}},
		Labels:        []int{0},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrIngestion, types.GetErrorCode(err))
}

func TestCollator_RejectsInvalidBatch(t *testing.T) {
	t.Parallel()

	col, err := NewCollator(newWordTokenizer())
	require.NoError(t, err)

	_, err = col.Collate(&Features{
		InputIDs:      [][]int{{1, 2}},
		AttentionMask: [][]int{{1}}, // mask shorter than its row
		Labels:        []int{0},
	})
	assert.Error(t, err)
}

func TestCollator_NilTokenizer(t *testing.T) {
	t.Parallel()

	_, err := NewCollator(nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))
}
