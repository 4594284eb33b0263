package task

import (
	"fmt"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/tokenizer"
	"github.com/marrowai/finetune/types"
)

// ClassificationPreparer turns text/label batches into fixed-length feature
// rows: the text field is tokenized with truncation and padding to
// MaxSeqLength, and the label string is mapped through the LabelIndex.
type ClassificationPreparer struct {
	tok          tokenizer.Tokenizer
	labels       *dataset.LabelIndex
	maxSeqLength int
}

// NewClassificationPreparer creates a preparer. The tokenizer and label
// index must be non-nil; maxSeqLength <= 0 falls back to the tokenizer's
// maximum.
func NewClassificationPreparer(tok tokenizer.Tokenizer, labels *dataset.LabelIndex, maxSeqLength int) (*ClassificationPreparer, error) {
	if tok == nil {
		return nil, types.NewError(types.ErrConfiguration, "tokenizer not initialized")
	}
	if labels == nil {
		return nil, types.NewError(types.ErrConfiguration, "label index not initialized")
	}
	if maxSeqLength <= 0 {
		maxSeqLength = tok.MaxTokens()
	}
	return &ClassificationPreparer{tok: tok, labels: labels, maxSeqLength: maxSeqLength}, nil
}

// Prepare transforms one batch. The returned Features has exactly one row
// per batch row, each padded to MaxSeqLength.
func (p *ClassificationPreparer) Prepare(batch dataset.Batch) (*Features, error) {
	texts, ok := batch["text"]
	if !ok {
		return nil, types.NewError(types.ErrMissingField, `batch is missing "text" column`)
	}
	labels, ok := batch["label"]
	if !ok {
		return nil, types.NewError(types.ErrMissingField, `batch is missing "label" column`)
	}
	if len(texts) != len(labels) {
		return nil, types.NewError(types.ErrIngestion,
			fmt.Sprintf("batch has %d texts but %d labels", len(texts), len(labels)))
	}

	feats := &Features{
		InputIDs:      make([][]int, 0, len(texts)),
		AttentionMask: make([][]int, 0, len(texts)),
		Labels:        make([]int, 0, len(texts)),
	}
	padID := p.tok.PadID()

	for i := range texts {
		ids, err := p.tok.Encode(dataset.AsString(texts[i]))
		if err != nil {
			return nil, types.NewError(types.ErrTokenizerError,
				fmt.Sprintf("encoding batch row %d", i)).WithCause(err)
		}
		ids = truncate(ids, p.maxSeqLength)

		mask := onesMask(len(ids))
		for len(ids) < p.maxSeqLength {
			ids = append(ids, padID)
			mask = append(mask, 0)
		}

		label := dataset.AsString(labels[i])
		id, ok := p.labels.ID(label)
		if !ok {
			return nil, types.NewError(types.ErrUnknownLabel,
				fmt.Sprintf("label %q at batch row %d is not in the label index", label, i))
		}

		feats.InputIDs = append(feats.InputIDs, ids)
		feats.AttentionMask = append(feats.AttentionMask, mask)
		feats.Labels = append(feats.Labels, id)
	}
	return feats, nil
}
