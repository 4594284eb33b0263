package bolt

import (
	"context"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/task"
)

// preparer is the common surface of the task preparers.
type preparer interface {
	Prepare(batch dataset.Batch) (*task.Features, error)
}

// prepareBatches runs the preparer over the dataset in slices of batchSize
// and concatenates the results. The context is checked between batches.
func prepareBatches(ctx context.Context, ds *dataset.Dataset, batchSize int, prep preparer) (*task.Features, error) {
	feats := &task.Features{}
	for lo := 0; lo < ds.Len(); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hi := lo + batchSize
		if hi > ds.Len() {
			hi = ds.Len()
		}
		part, err := prep.Prepare(ds.Batch(lo, hi))
		if err != nil {
			return nil, err
		}
		feats.Append(part)
	}
	return feats, nil
}
