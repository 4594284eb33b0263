// Package quick provides one-line dataset preparation with minimal
// boilerplate. It delegates to the bolt package internally.
//
// The package lives under quick/ (not root) so the root package can stay a
// thin re-export layer.
//
// Usage:
//
//	import "github.com/marrowai/finetune/quick"
//
//	feats, labels, err := quick.Classification(ctx, "./data")
//	feats, err := quick.Pairwise(ctx, "./nli", quick.WithMaxSeqLength(128))
//	feats, err := quick.Translation(ctx, "./wmt", "en", "fr")
package quick

import (
	"context"

	"go.uber.org/zap"

	"github.com/marrowai/finetune/bolt"
	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/dataset/decode"
	"github.com/marrowai/finetune/task"
	"github.com/marrowai/finetune/tokenizer"
	"github.com/marrowai/finetune/types"
)

// defaultMaxSeqLength matches config.DefaultTokenizerConfig. Without it a
// large-context tokenizer would make classification pad every row to the
// model maximum.
const defaultMaxSeqLength = 512

// Option configures the loaders in this package.
type Option func(*options)

type options struct {
	tok            tokenizer.Tokenizer
	tokenizerModel string
	maxSeqLength   int
	strict         bool
	labelPolicy    dataset.LabelPolicy
	modelConfig    *types.ModelConfig
	batchSize      int
	logger         *zap.Logger
}

// WithTokenizer sets a pre-built tokenizer.
func WithTokenizer(t tokenizer.Tokenizer) Option {
	return func(o *options) { o.tok = t }
}

// WithTokenizerModel resolves the tokenizer for the given model name,
// falling back to a heuristic estimator for unknown models.
func WithTokenizerModel(model string) Option {
	return func(o *options) { o.tokenizerModel = model }
}

// WithMaxSeqLength caps token sequences per row.
func WithMaxSeqLength(n int) Option {
	return func(o *options) { o.maxSeqLength = n }
}

// WithStrict makes unrecognized file extensions an error.
func WithStrict() Option {
	return func(o *options) { o.strict = true }
}

// WithLabelPolicy sets how derived labels reconcile with an existing mapping.
func WithLabelPolicy(p dataset.LabelPolicy) Option {
	return func(o *options) { o.labelPolicy = p }
}

// WithModelConfig supplies the model config that receives label mappings.
func WithModelConfig(cfg *types.ModelConfig) Option {
	return func(o *options) { o.modelConfig = cfg }
}

// WithBatchSize sets the number of records per preparation batch.
func WithBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

// WithLogger sets a custom zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// build resolves the options into bolt options.
func (o *options) build() bolt.Options {
	tok := o.tok
	if tok == nil {
		model := o.tokenizerModel
		if model == "" {
			model = "gpt-4o"
		}
		tokenizer.RegisterOpenAITokenizers()
		tok = tokenizer.GetOrEstimator(model)
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxSeqLength := o.maxSeqLength
	if maxSeqLength <= 0 {
		maxSeqLength = defaultMaxSeqLength
	}
	return bolt.Options{
		Tokenizer:    tok,
		Registry:     decode.NewRegistry(decode.RegistryConfig{Strict: o.strict}, logger),
		ModelConfig:  o.modelConfig,
		MaxSeqLength: maxSeqLength,
		LabelPolicy:  o.labelPolicy,
		BatchSize:    o.batchSize,
		Logger:       logger,
	}
}

func resolve(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Classification ingests dir and prepares text classification features.
func Classification(ctx context.Context, dir string, opts ...Option) (*task.Features, *dataset.LabelIndex, error) {
	b, err := bolt.NewClassificationBolt(resolve(opts).build())
	if err != nil {
		return nil, nil, err
	}
	return b.LoadDataset(ctx, dir)
}

// Pairwise ingests dir and prepares sentence-pair features.
func Pairwise(ctx context.Context, dir string, opts ...Option) (*task.Features, error) {
	b, err := bolt.NewPairwiseBolt(resolve(opts).build())
	if err != nil {
		return nil, err
	}
	return b.LoadDataset(ctx, dir)
}

// Translation ingests dir and prepares sequence-to-sequence features for one
// language direction.
func Translation(ctx context.Context, dir, source, target string, opts ...Option) (*task.Features, error) {
	b, err := bolt.NewTranslationBolt(resolve(opts).build(), source, target)
	if err != nil {
		return nil, err
	}
	return b.LoadDataset(ctx, dir)
}
