package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/marrowai/finetune/types"
)

// LabelIndex is a bidirectional mapping between label strings and 0-based
// integer IDs. IDs are assigned in first-seen order.
type LabelIndex struct {
	labelToID map[string]int
	idToLabel []string
}

// NewLabelIndex creates an empty LabelIndex.
func NewLabelIndex() *LabelIndex {
	return &LabelIndex{labelToID: make(map[string]int)}
}

// LabelIndexFromMap reconstructs a LabelIndex from a label-to-ID mapping,
// e.g. one previously attached to a model configuration. IDs must form a
// dense range [0, len).
func LabelIndexFromMap(label2id map[string]int) (*LabelIndex, error) {
	idx := &LabelIndex{
		labelToID: make(map[string]int, len(label2id)),
		idToLabel: make([]string, len(label2id)),
	}
	for label, id := range label2id {
		if id < 0 || id >= len(label2id) {
			return nil, fmt.Errorf("label index: id %d for label %q out of range [0,%d)", id, label, len(label2id))
		}
		if existing := idx.idToLabel[id]; existing != "" && existing != label {
			return nil, fmt.Errorf("label index: duplicate id %d for labels %q and %q", id, existing, label)
		}
		idx.labelToID[label] = id
		idx.idToLabel[id] = label
	}
	return idx, nil
}

// BuildLabelIndex derives a LabelIndex from the distinct values of one field
// across the dataset, in first-seen order.
func BuildLabelIndex(d *Dataset, field string) (*LabelIndex, error) {
	idx := NewLabelIndex()
	for i, rec := range d.Records() {
		v, ok := rec[field]
		if !ok {
			return nil, types.NewError(types.ErrMissingField,
				fmt.Sprintf("record %d is missing label field %q", i, field))
		}
		idx.Add(AsString(v))
	}
	return idx, nil
}

// Add inserts a label if unseen and returns its ID.
func (x *LabelIndex) Add(label string) int {
	if id, ok := x.labelToID[label]; ok {
		return id
	}
	id := len(x.idToLabel)
	x.labelToID[label] = id
	x.idToLabel = append(x.idToLabel, label)
	return id
}

// ID returns the integer ID for a label.
func (x *LabelIndex) ID(label string) (int, bool) {
	id, ok := x.labelToID[label]
	return id, ok
}

// Label returns the label string for an ID.
func (x *LabelIndex) Label(id int) (string, bool) {
	if id < 0 || id >= len(x.idToLabel) {
		return "", false
	}
	return x.idToLabel[id], true
}

// Len returns the number of distinct labels.
func (x *LabelIndex) Len() int {
	return len(x.idToLabel)
}

// Labels returns all labels in ID order.
func (x *LabelIndex) Labels() []string {
	out := make([]string, len(x.idToLabel))
	copy(out, x.idToLabel)
	return out
}

// ToMap returns the label-to-ID mapping as a plain map.
func (x *LabelIndex) ToMap() map[string]int {
	out := make(map[string]int, len(x.labelToID))
	for label, id := range x.labelToID {
		out[label] = id
	}
	return out
}

// Inverse returns the ID-to-label mapping as a plain map.
func (x *LabelIndex) Inverse() map[int]string {
	out := make(map[int]string, len(x.idToLabel))
	for id, label := range x.idToLabel {
		out[id] = label
	}
	return out
}

// Equal reports whether both indexes assign identical IDs to identical labels.
func (x *LabelIndex) Equal(other *LabelIndex) bool {
	if other == nil || len(x.idToLabel) != len(other.idToLabel) {
		return false
	}
	for i, label := range x.idToLabel {
		if other.idToLabel[i] != label {
			return false
		}
	}
	return true
}

// MarshalJSON serializes the index as the label list in ID order, which
// preserves assignment order across a round trip.
func (x *LabelIndex) MarshalJSON() ([]byte, error) {
	return json.Marshal(x.idToLabel)
}

// UnmarshalJSON restores the index from a label list in ID order.
func (x *LabelIndex) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return fmt.Errorf("label index: %w", err)
	}
	x.labelToID = make(map[string]int, len(labels))
	x.idToLabel = labels
	for id, label := range labels {
		x.labelToID[label] = id
	}
	return nil
}

// LabelPolicy controls how a freshly derived label index is reconciled with
// a mapping already present on the model configuration.
type LabelPolicy string

const (
	// LabelPolicyReplace derives a new index from the data and attaches it,
	// logging a warning when it differs from the existing mapping.
	LabelPolicyReplace LabelPolicy = "replace"

	// LabelPolicyReuse keeps the existing mapping; labels observed in the
	// data but absent from the mapping fail feature preparation.
	LabelPolicyReuse LabelPolicy = "reuse"

	// LabelPolicyStrict treats any difference between the derived index and
	// the existing mapping as a configuration error.
	LabelPolicyStrict LabelPolicy = "strict"
)

// Valid reports whether the policy is one of the known values.
func (p LabelPolicy) Valid() bool {
	switch p {
	case LabelPolicyReplace, LabelPolicyReuse, LabelPolicyStrict:
		return true
	}
	return false
}
