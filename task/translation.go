package task

import (
	"fmt"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/tokenizer"
	"github.com/marrowai/finetune/types"
)

// TranslationPreparer turns translation batches into sequence-to-sequence
// feature rows. Each record's "translation" field is a mapping from language
// code to text; the source language text becomes the input and the target
// language token IDs become per-row targets. No padding is applied here.
type TranslationPreparer struct {
	tok          tokenizer.Tokenizer
	source       string
	target       string
	maxSeqLength int
}

// NewTranslationPreparer creates a preparer for one language direction.
func NewTranslationPreparer(tok tokenizer.Tokenizer, source, target string, maxSeqLength int) (*TranslationPreparer, error) {
	if tok == nil {
		return nil, types.NewError(types.ErrConfiguration, "tokenizer not initialized")
	}
	if source == "" || target == "" {
		return nil, types.NewError(types.ErrConfiguration, "source and target languages are required")
	}
	if maxSeqLength <= 0 {
		maxSeqLength = tok.MaxTokens()
	}
	return &TranslationPreparer{tok: tok, source: source, target: target, maxSeqLength: maxSeqLength}, nil
}

// Prepare transforms one batch.
func (p *TranslationPreparer) Prepare(batch dataset.Batch) (*Features, error) {
	translations, ok := batch["translation"]
	if !ok {
		return nil, types.NewError(types.ErrMissingField, `batch is missing "translation" column`)
	}

	feats := &Features{
		InputIDs:      make([][]int, 0, len(translations)),
		AttentionMask: make([][]int, 0, len(translations)),
		TargetIDs:     make([][]int, 0, len(translations)),
	}

	for i := range translations {
		src, dst, err := p.languagePair(translations[i])
		if err != nil {
			return nil, types.NewError(types.ErrIngestion,
				fmt.Sprintf("translation at batch row %d", i)).WithCause(err)
		}

		inputIDs, err := p.tok.Encode(src)
		if err != nil {
			return nil, types.NewError(types.ErrTokenizerError,
				fmt.Sprintf("encoding source at batch row %d", i)).WithCause(err)
		}
		targetIDs, err := p.tok.Encode(dst)
		if err != nil {
			return nil, types.NewError(types.ErrTokenizerError,
				fmt.Sprintf("encoding target at batch row %d", i)).WithCause(err)
		}

		inputIDs = truncate(inputIDs, p.maxSeqLength)
		targetIDs = truncate(targetIDs, p.maxSeqLength)

		feats.InputIDs = append(feats.InputIDs, inputIDs)
		feats.AttentionMask = append(feats.AttentionMask, onesMask(len(inputIDs)))
		feats.TargetIDs = append(feats.TargetIDs, targetIDs)
	}
	return feats, nil
}

// languagePair extracts the source and target texts from one translation
// mapping. JSON and YAML decoders produce different map types.
func (p *TranslationPreparer) languagePair(v any) (string, string, error) {
	lookup := func(key string) (string, bool) {
		switch m := v.(type) {
		case map[string]any:
			val, ok := m[key]
			return dataset.AsString(val), ok
		case map[string]string:
			val, ok := m[key]
			return val, ok
		default:
			return "", false
		}
	}

	src, ok := lookup(p.source)
	if !ok {
		return "", "", fmt.Errorf("mapping has no %q text", p.source)
	}
	dst, ok := lookup(p.target)
	if !ok {
		return "", "", fmt.Errorf("mapping has no %q text", p.target)
	}
	return src, dst, nil
}
