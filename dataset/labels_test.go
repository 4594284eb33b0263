package dataset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLabelIndex_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	d := FromRecords([]Record{
		{"text": "ok", "label": "pos"},
		{"text": "bad", "label": "neg"},
		{"text": "fine", "label": "pos"},
		{"text": "meh", "label": "neutral"},
	})

	idx, err := BuildLabelIndex(d, "label")
	require.NoError(t, err)

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []string{"pos", "neg", "neutral"}, idx.Labels())

	id, ok := idx.ID("neg")
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestBuildLabelIndex_NumericLabels(t *testing.T) {
	t.Parallel()

	// JSON decodes integer labels as float64.
	d := FromRecords([]Record{
		{"premise": "p", "hypothesis": "h", "label": float64(0)},
		{"premise": "p", "hypothesis": "h", "label": float64(2)},
	})

	idx, err := BuildLabelIndex(d, "label")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2"}, idx.Labels())
}

func TestBuildLabelIndex_MissingField(t *testing.T) {
	t.Parallel()

	d := FromRecords([]Record{{"text": "no label here"}})
	_, err := BuildLabelIndex(d, "label")
	assert.Error(t, err)
}

func TestLabelIndex_RoundTrip(t *testing.T) {
	t.Parallel()

	idx := NewLabelIndex()
	for _, l := range []string{"pos", "neg", "neutral"} {
		idx.Add(l)
	}

	for _, l := range idx.Labels() {
		id, ok := idx.ID(l)
		require.True(t, ok)
		back, ok := idx.Label(id)
		require.True(t, ok)
		assert.Equal(t, l, back)
	}

	_, ok := idx.Label(99)
	assert.False(t, ok)
}

func TestLabelIndexFromMap(t *testing.T) {
	t.Parallel()

	idx, err := LabelIndexFromMap(map[string]int{"pos": 0, "neg": 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"pos", "neg"}, idx.Labels())

	_, err = LabelIndexFromMap(map[string]int{"pos": 0, "neg": 5})
	assert.Error(t, err)

	_, err = LabelIndexFromMap(map[string]int{"pos": 0, "neg": 0})
	assert.Error(t, err)
}

func TestLabelIndex_Equal(t *testing.T) {
	t.Parallel()

	a := NewLabelIndex()
	a.Add("pos")
	a.Add("neg")

	b := NewLabelIndex()
	b.Add("pos")
	b.Add("neg")

	c := NewLabelIndex()
	c.Add("neg")
	c.Add("pos")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c)) // same labels, different IDs
	assert.False(t, a.Equal(nil))
}

func TestLabelIndex_JSON(t *testing.T) {
	t.Parallel()

	idx := NewLabelIndex()
	idx.Add("pos")
	idx.Add("neg")

	data, err := json.Marshal(idx)
	require.NoError(t, err)
	assert.JSONEq(t, `["pos","neg"]`, string(data))

	var restored LabelIndex
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.True(t, idx.Equal(&restored))
}

func TestLabelPolicy_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, LabelPolicyReplace.Valid())
	assert.True(t, LabelPolicyReuse.Valid())
	assert.True(t, LabelPolicyStrict.Valid())
	assert.False(t, LabelPolicy("whatever").Valid())
}
