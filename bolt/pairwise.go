package bolt

import (
	"context"

	"go.uber.org/zap"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/task"
)

// PairwiseBolt loads sentence-pair datasets: every record carries "premise",
// "hypothesis", and an integer "label". Rows stay variable-length until batch
// collation.
type PairwiseBolt struct {
	opts Options
}

// NewPairwiseBolt validates the options and creates the bolt.
func NewPairwiseBolt(opts Options) (*PairwiseBolt, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	return &PairwiseBolt{opts: opts}, nil
}

// LoadDataset ingests every recognized file under dir and prepares features.
func (b *PairwiseBolt) LoadDataset(ctx context.Context, dir string) (*task.Features, error) {
	ds, err := b.opts.Registry.LoadDirectory(ctx, dir, dataset.PairwiseSchema)
	if err != nil {
		return nil, err
	}

	prep, err := task.NewPairwisePreparer(b.opts.Tokenizer, b.opts.MaxSeqLength)
	if err != nil {
		return nil, err
	}
	feats, err := prepareBatches(ctx, ds, b.opts.BatchSize, prep)
	if err != nil {
		return nil, err
	}

	b.opts.Logger.Info("pairwise dataset prepared",
		zap.String("dir", dir),
		zap.Int("records", feats.Len()))
	return feats, nil
}
