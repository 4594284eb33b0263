package decode

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// YAMLDecoder decodes YAML files (.yaml, .yml) whose document is a list of
// mappings; each mapping becomes one Record.
type YAMLDecoder struct{}

// NewYAMLDecoder creates a YAMLDecoder.
func NewYAMLDecoder() *YAMLDecoder {
	return &YAMLDecoder{}
}

// Decode reads a YAML file and returns its records.
func (d *YAMLDecoder) Decode(ctx context.Context, path string, _ dataset.Schema) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "reading yaml file").
			WithPath(path).WithCause(err)
	}

	var items []map[string]any
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, types.NewError(types.ErrIngestion, "parsing yaml list").
			WithPath(path).WithCause(err)
	}

	records := make([]dataset.Record, 0, len(items))
	for _, item := range items {
		records = append(records, dataset.Record(item))
	}
	return records, nil
}

// SupportedTypes returns the extensions handled by YAMLDecoder.
func (d *YAMLDecoder) SupportedTypes() []string {
	return []string{".yaml", ".yml"}
}
