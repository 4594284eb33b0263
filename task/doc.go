// Package task transforms normalized dataset batches into model-ready
// numeric features for the supported fine-tuning tasks.
//
// Each preparer consumes a dataset.Batch (columnar view over records) and
// produces a Features batch: token ID sequences, attention masks, and
// encoded labels. The Collator pads variable-length feature batches to a
// common length for tensor assembly.
package task
