package bolt

import (
	"context"

	"go.uber.org/zap"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/task"
)

// ClassificationBolt loads text classification datasets: every record carries
// a "text" and a "label" field, and the label vocabulary is derived from the
// data itself.
type ClassificationBolt struct {
	opts Options
}

// NewClassificationBolt validates the options and creates the bolt.
func NewClassificationBolt(opts Options) (*ClassificationBolt, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	return &ClassificationBolt{opts: opts}, nil
}

// LoadDataset ingests every recognized file under dir, derives the label
// index, reconciles it with the model config per the label policy, and
// prepares features. The returned index is the mapping in effect for the
// returned features.
func (b *ClassificationBolt) LoadDataset(ctx context.Context, dir string) (*task.Features, *dataset.LabelIndex, error) {
	ds, err := b.opts.Registry.LoadDirectory(ctx, dir, dataset.ClassificationSchema)
	if err != nil {
		return nil, nil, err
	}

	derived, err := dataset.BuildLabelIndex(ds, "label")
	if err != nil {
		return nil, nil, err
	}
	labels, err := b.opts.resolveLabels(derived)
	if err != nil {
		return nil, nil, err
	}

	prep, err := task.NewClassificationPreparer(b.opts.Tokenizer, labels, b.opts.MaxSeqLength)
	if err != nil {
		return nil, nil, err
	}
	feats, err := prepareBatches(ctx, ds, b.opts.BatchSize, prep)
	if err != nil {
		return nil, nil, err
	}

	b.opts.Logger.Info("classification dataset prepared",
		zap.String("dir", dir),
		zap.Int("records", feats.Len()),
		zap.Int("num_labels", labels.Len()))
	return feats, labels, nil
}
