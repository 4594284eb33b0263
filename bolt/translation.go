package bolt

import (
	"context"

	"go.uber.org/zap"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/task"
)

// TranslationBolt loads translation datasets for one language direction:
// every record carries a "translation" mapping from language code to text.
type TranslationBolt struct {
	opts   Options
	source string
	target string
}

// NewTranslationBolt validates the options and creates a bolt for the given
// source → target direction.
func NewTranslationBolt(opts Options, source, target string) (*TranslationBolt, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	// Preparer construction checks the language pair up front so a bad
	// direction fails here, not on first load.
	if _, err := task.NewTranslationPreparer(opts.Tokenizer, source, target, opts.MaxSeqLength); err != nil {
		return nil, err
	}
	return &TranslationBolt{opts: opts, source: source, target: target}, nil
}

// LoadDataset ingests every recognized file under dir and prepares
// sequence-to-sequence features.
func (b *TranslationBolt) LoadDataset(ctx context.Context, dir string) (*task.Features, error) {
	ds, err := b.opts.Registry.LoadDirectory(ctx, dir, dataset.TranslationSchema)
	if err != nil {
		return nil, err
	}

	prep, err := task.NewTranslationPreparer(b.opts.Tokenizer, b.source, b.target, b.opts.MaxSeqLength)
	if err != nil {
		return nil, err
	}
	feats, err := prepareBatches(ctx, ds, b.opts.BatchSize, prep)
	if err != nil {
		return nil, err
	}

	b.opts.Logger.Info("translation dataset prepared",
		zap.String("dir", dir),
		zap.String("source", b.source),
		zap.String("target", b.target),
		zap.Int("records", feats.Len()))
	return feats, nil
}
