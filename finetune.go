// Package finetune provides a top-level convenience entry point for turning
// dataset directories into training-ready features with minimal boilerplate.
//
// Usage:
//
//	import "github.com/marrowai/finetune"
//
//	feats, labels, err := finetune.Classification(ctx, "./data")
//	feats, err := finetune.Pairwise(ctx, "./nli", finetune.WithMaxSeqLength(128))
//	feats, err := finetune.Translation(ctx, "./wmt", "en", "fr")
//
// This is a thin wrapper around the quick package; both produce identical
// results. Use this package when you prefer the shorter import path.
package finetune

import (
	"github.com/marrowai/finetune/quick"
)

// Option configures the loaders in this package.
type Option = quick.Option

// Classification ingests a directory and prepares text classification
// features.
var Classification = quick.Classification

// Pairwise ingests a directory and prepares sentence-pair features.
var Pairwise = quick.Pairwise

// Translation ingests a directory and prepares sequence-to-sequence features.
var Translation = quick.Translation

// Re-export options so callers never need to import quick/.

// WithTokenizer sets a pre-built tokenizer.
var WithTokenizer = quick.WithTokenizer

// WithTokenizerModel resolves the tokenizer for the given model name.
var WithTokenizerModel = quick.WithTokenizerModel

// WithMaxSeqLength caps token sequences per row.
var WithMaxSeqLength = quick.WithMaxSeqLength

// WithStrict makes unrecognized file extensions an error.
var WithStrict = quick.WithStrict

// WithLabelPolicy sets how derived labels reconcile with an existing mapping.
var WithLabelPolicy = quick.WithLabelPolicy

// WithModelConfig supplies the model config that receives label mappings.
var WithModelConfig = quick.WithModelConfig

// WithBatchSize sets the number of records per preparation batch.
var WithBatchSize = quick.WithBatchSize

// WithLogger sets a custom zap logger.
var WithLogger = quick.WithLogger
