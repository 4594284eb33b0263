package task

import (
	"fmt"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/tokenizer"
	"github.com/marrowai/finetune/types"
)

// PairwisePreparer turns premise/hypothesis/label batches into feature rows.
// The sequence pair is encoded jointly and truncated to MaxSeqLength; no
// padding is applied here — it is deferred to batch collation.
type PairwisePreparer struct {
	tok          tokenizer.Tokenizer
	maxSeqLength int
}

// NewPairwisePreparer creates a preparer. The tokenizer must be non-nil;
// maxSeqLength <= 0 falls back to the tokenizer's maximum.
func NewPairwisePreparer(tok tokenizer.Tokenizer, maxSeqLength int) (*PairwisePreparer, error) {
	if tok == nil {
		return nil, types.NewError(types.ErrConfiguration, "tokenizer not initialized")
	}
	if maxSeqLength <= 0 {
		maxSeqLength = tok.MaxTokens()
	}
	return &PairwisePreparer{tok: tok, maxSeqLength: maxSeqLength}, nil
}

// Prepare transforms one batch. Labels are carried through as integers.
func (p *PairwisePreparer) Prepare(batch dataset.Batch) (*Features, error) {
	premises, ok := batch["premise"]
	if !ok {
		return nil, types.NewError(types.ErrMissingField, `batch is missing "premise" column`)
	}
	hypotheses, ok := batch["hypothesis"]
	if !ok {
		return nil, types.NewError(types.ErrMissingField, `batch is missing "hypothesis" column`)
	}
	labels, ok := batch["label"]
	if !ok {
		return nil, types.NewError(types.ErrMissingField, `batch is missing "label" column`)
	}
	if len(premises) != len(hypotheses) || len(premises) != len(labels) {
		return nil, types.NewError(types.ErrIngestion,
			fmt.Sprintf("batch columns disagree: %d premises, %d hypotheses, %d labels",
				len(premises), len(hypotheses), len(labels)))
	}

	feats := &Features{
		InputIDs:      make([][]int, 0, len(premises)),
		AttentionMask: make([][]int, 0, len(premises)),
		Labels:        make([]int, 0, len(premises)),
	}

	for i := range premises {
		ids, err := p.tok.EncodePair(dataset.AsString(premises[i]), dataset.AsString(hypotheses[i]))
		if err != nil {
			return nil, types.NewError(types.ErrTokenizerError,
				fmt.Sprintf("encoding batch row %d", i)).WithCause(err)
		}
		ids = truncate(ids, p.maxSeqLength)

		label, err := dataset.AsInt(labels[i])
		if err != nil {
			return nil, types.NewError(types.ErrIngestion,
				fmt.Sprintf("label at batch row %d", i)).WithCause(err)
		}

		feats.InputIDs = append(feats.InputIDs, ids)
		feats.AttentionMask = append(feats.AttentionMask, onesMask(len(ids)))
		feats.Labels = append(feats.Labels, label)
	}
	return feats, nil
}
