package types

// ModelConfig is the externally-owned configuration object of a pre-trained
// model. The dataset loaders read and write the label mappings on it; this is
// the only mutation the loaders perform outside their own return values.
type ModelConfig struct {
	ModelName string         `json:"model_name" yaml:"model_name"`
	NumLabels int            `json:"num_labels" yaml:"num_labels"`
	Label2ID  map[string]int `json:"label2id" yaml:"label2id"`
	ID2Label  map[int]string `json:"id2label" yaml:"id2label"`
}

// HasLabels reports whether the config already carries a label mapping.
func (c *ModelConfig) HasLabels() bool {
	return c != nil && len(c.Label2ID) > 0
}

// SetLabels replaces the label mappings and keeps NumLabels in sync.
func (c *ModelConfig) SetLabels(label2id map[string]int, id2label map[int]string) {
	c.Label2ID = label2id
	c.ID2Label = id2label
	c.NumLabels = len(label2id)
}
