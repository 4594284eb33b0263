package task

import "fmt"

// Features is a batched, columnar feature set produced by a preparer.
// InputIDs and AttentionMask are always parallel; exactly one of Labels
// (classification, pairwise) or TargetIDs (sequence-to-sequence) is
// populated depending on the task.
type Features struct {
	InputIDs      [][]int
	AttentionMask [][]int
	Labels        []int
	TargetIDs     [][]int
}

// Len returns the number of feature rows.
func (f *Features) Len() int {
	return len(f.InputIDs)
}

// Append merges another feature batch onto this one.
func (f *Features) Append(other *Features) {
	f.InputIDs = append(f.InputIDs, other.InputIDs...)
	f.AttentionMask = append(f.AttentionMask, other.AttentionMask...)
	f.Labels = append(f.Labels, other.Labels...)
	f.TargetIDs = append(f.TargetIDs, other.TargetIDs...)
}

// Validate checks the internal parallel-length invariant.
func (f *Features) Validate() error {
	if len(f.AttentionMask) != len(f.InputIDs) {
		return fmt.Errorf("features: %d attention masks for %d input rows", len(f.AttentionMask), len(f.InputIDs))
	}
	if len(f.Labels) > 0 && len(f.Labels) != len(f.InputIDs) {
		return fmt.Errorf("features: %d labels for %d input rows", len(f.Labels), len(f.InputIDs))
	}
	if len(f.TargetIDs) > 0 && len(f.TargetIDs) != len(f.InputIDs) {
		return fmt.Errorf("features: %d target rows for %d input rows", len(f.TargetIDs), len(f.InputIDs))
	}
	for i := range f.InputIDs {
		if len(f.AttentionMask[i]) != len(f.InputIDs[i]) {
			return fmt.Errorf("features: row %d mask length %d != input length %d", i, len(f.AttentionMask[i]), len(f.InputIDs[i]))
		}
	}
	return nil
}

// truncate limits ids to max elements (no-op when max <= 0).
func truncate(ids []int, max int) []int {
	if max > 0 && len(ids) > max {
		return ids[:max]
	}
	return ids
}

// onesMask returns an attention mask of n ones.
func onesMask(n int) []int {
	mask := make([]int, n)
	for i := range mask {
		mask[i] = 1
	}
	return mask
}
