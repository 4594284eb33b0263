package bolt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/dataset/decode"
	"github.com/marrowai/finetune/tokenizer"
	"github.com/marrowai/finetune/types"
)

// defaultBatchSize is the number of records prepared per tokenization batch.
const defaultBatchSize = 1000

// Options configures a bolt. Tokenizer is required; everything else has a
// usable default.
type Options struct {
	// Tokenizer encodes text into token IDs. Required.
	Tokenizer tokenizer.Tokenizer

	// Registry routes files to decoders. Defaults to a registry with the
	// built-in decoders and lenient extension handling.
	Registry *decode.Registry

	// ModelConfig, when supplied, receives the derived label mappings after
	// classification loads. It is never mutated by other tasks.
	ModelConfig *types.ModelConfig

	// MaxSeqLength caps token sequences per row. <= 0 falls back to the
	// tokenizer's maximum.
	MaxSeqLength int

	// LabelPolicy reconciles a derived label index with a mapping already on
	// ModelConfig. Defaults to LabelPolicyReplace.
	LabelPolicy dataset.LabelPolicy

	// BatchSize is the number of records per preparation batch.
	BatchSize int

	Logger *zap.Logger
}

// normalize validates required fields and fills defaults in place.
func (o *Options) normalize() error {
	if o.Tokenizer == nil {
		return types.NewError(types.ErrConfiguration, "bolt requires a tokenizer")
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Registry == nil {
		o.Registry = decode.NewRegistry(decode.RegistryConfig{}, o.Logger)
	}
	if o.LabelPolicy == "" {
		o.LabelPolicy = dataset.LabelPolicyReplace
	}
	if !o.LabelPolicy.Valid() {
		return types.NewError(types.ErrConfiguration,
			fmt.Sprintf("unknown label policy %q", o.LabelPolicy))
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	return nil
}

// resolveLabels reconciles a label index derived from the data with any
// mapping already attached to the model config, per the configured policy.
// When a config is supplied the winning mapping is written back to it.
func (o *Options) resolveLabels(derived *dataset.LabelIndex) (*dataset.LabelIndex, error) {
	if !o.ModelConfig.HasLabels() {
		if o.ModelConfig != nil {
			o.ModelConfig.SetLabels(derived.ToMap(), derived.Inverse())
			o.Logger.Info("label mappings attached to model config",
				zap.Int("num_labels", derived.Len()))
		}
		return derived, nil
	}

	existing, err := dataset.LabelIndexFromMap(o.ModelConfig.Label2ID)
	if err != nil {
		return nil, types.NewError(types.ErrConfiguration,
			"model config carries an invalid label mapping").WithCause(err)
	}

	switch o.LabelPolicy {
	case dataset.LabelPolicyReuse:
		return existing, nil

	case dataset.LabelPolicyStrict:
		if !derived.Equal(existing) {
			return nil, types.NewError(types.ErrLabelMismatch,
				fmt.Sprintf("dataset labels %v do not match model config labels %v",
					derived.Labels(), existing.Labels()))
		}
		return existing, nil

	default: // dataset.LabelPolicyReplace
		if !derived.Equal(existing) {
			o.Logger.Warn("dataset labels differ from model config, replacing",
				zap.Strings("dataset_labels", derived.Labels()),
				zap.Strings("config_labels", existing.Labels()))
		}
		o.ModelConfig.SetLabels(derived.ToMap(), derived.Inverse())
		return derived, nil
	}
}
