package task

import (
	"github.com/marrowai/finetune/tokenizer"
	"github.com/marrowai/finetune/types"
)

// Collator pads a batch of variable-length feature rows to a common length:
// the longest row in the batch, or FixedLength when set. Padding uses the
// tokenizer's pad token ID; attention masks are extended with zeros.
// Sequence-to-sequence target rows are padded to their own batch maximum,
// independent of the input length.
type Collator struct {
	padID       int
	fixedLength int
}

// NewCollator creates a collator using the tokenizer's padding token.
func NewCollator(tok tokenizer.Tokenizer) (*Collator, error) {
	if tok == nil {
		return nil, types.NewError(types.ErrConfiguration, "tokenizer not initialized")
	}
	return &Collator{padID: tok.PadID()}, nil
}

// WithFixedLength pads every batch to a fixed length instead of the batch
// maximum. Rows longer than the fixed length are an error at collation time.
func (c *Collator) WithFixedLength(n int) *Collator {
	c.fixedLength = n
	return c
}

// Collate pads the batch in place and returns it.
func (c *Collator) Collate(feats *Features) (*Features, error) {
	if err := feats.Validate(); err != nil {
		return nil, types.NewError(types.ErrIngestion, "collating feature batch").WithCause(err)
	}

	target := c.fixedLength
	if target <= 0 {
		for _, row := range feats.InputIDs {
			if len(row) > target {
				target = len(row)
			}
		}
	}

	for i := range feats.InputIDs {
		if len(feats.InputIDs[i]) > target {
			return nil, types.NewError(types.ErrIngestion, "feature row exceeds fixed collation length")
		}
		for len(feats.InputIDs[i]) < target {
			feats.InputIDs[i] = append(feats.InputIDs[i], c.padID)
			feats.AttentionMask[i] = append(feats.AttentionMask[i], 0)
		}
	}

	if len(feats.TargetIDs) > 0 {
		targetLen := c.fixedLength
		if targetLen <= 0 {
			for _, row := range feats.TargetIDs {
				if len(row) > targetLen {
					targetLen = len(row)
				}
			}
		}
		for i := range feats.TargetIDs {
			if len(feats.TargetIDs[i]) > targetLen {
				return nil, types.NewError(types.ErrIngestion, "target row exceeds fixed collation length")
			}
			for len(feats.TargetIDs[i]) < targetLen {
				feats.TargetIDs[i] = append(feats.TargetIDs[i], c.padID)
			}
		}
	}
	return feats, nil
}
