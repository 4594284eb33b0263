package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marrowai/finetune/dataset"
)

// Config is the complete library configuration.
//
// Usage:
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("finetune.yaml").
//	    Load()
//
// Priority: defaults → YAML file → environment variables.
type Config struct {
	// Task selects and parameterizes the fine-tuning task.
	Task TaskConfig `yaml:"task" env:"TASK"`

	// Model describes the pre-trained model being fine-tuned.
	Model ModelConfig `yaml:"model" env:"MODEL"`

	// Ingest controls dataset directory loading.
	Ingest IngestConfig `yaml:"ingest" env:"INGEST"`

	// Tokenizer selects the tokenizer and sequence limits.
	Tokenizer TokenizerConfig `yaml:"tokenizer" env:"TOKENIZER"`

	// Log configures the zap logger.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Telemetry configures the OpenTelemetry SDK.
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// TaskConfig selects the fine-tuning task.
type TaskConfig struct {
	// Name: classification, pairwise, or translation.
	Name string `yaml:"name" env:"NAME"`
	// SourceLanguage and TargetLanguage apply to the translation task only.
	SourceLanguage string `yaml:"source_language" env:"SOURCE_LANGUAGE"`
	TargetLanguage string `yaml:"target_language" env:"TARGET_LANGUAGE"`
}

// ModelConfig describes the model side of the run.
type ModelConfig struct {
	// Name of the pre-trained model.
	Name string `yaml:"name" env:"NAME"`
	// LabelPolicy: replace, reuse, or strict.
	LabelPolicy string `yaml:"label_policy" env:"LABEL_POLICY"`
}

// IngestConfig controls directory loading.
type IngestConfig struct {
	// Dir is the dataset directory.
	Dir string `yaml:"dir" env:"DIR"`
	// Strict makes unrecognized file extensions an error.
	Strict bool `yaml:"strict" env:"STRICT"`
	// BatchSize is the number of records per preparation batch.
	BatchSize int `yaml:"batch_size" env:"BATCH_SIZE"`
}

// TokenizerConfig selects the tokenizer.
type TokenizerConfig struct {
	// Model name the tokenizer is resolved for (e.g. "gpt-4o").
	Model string `yaml:"model" env:"MODEL"`
	// MaxSeqLength caps token sequences per row.
	MaxSeqLength int `yaml:"max_seq_length" env:"MAX_SEQ_LENGTH"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths are zap sink URLs (e.g. "stdout", file paths).
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// TelemetryConfig configures tracing and metrics export.
type TelemetryConfig struct {
	// Enabled turns on the OTel SDK; when false, global providers stay noop.
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint.
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	// ServiceName reported on every span and metric.
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}

// Loader loads configuration (builder pattern).
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the FINETUNE env prefix.
func NewLoader() *Loader {
	return &Loader{
		envPrefix:  "FINETUNE",
		validators: make([]func(*Config) error, 0),
	}
}

// WithConfigPath sets the YAML config file path.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator appends a validation hook run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the configuration.
// Priority: defaults → YAML file → environment variables.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	return cfg, nil
}

// loadFromFile merges the YAML file into cfg. A missing file keeps defaults.
func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix)
}

// setFieldsFromEnv recursively applies env overrides following the env tags.
func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}

		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}

		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}

	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)

	case reflect.Slice:
		// Comma-separated string slices.
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}

	return nil
}

// MustLoad loads the configuration and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// LoadFromEnv loads the configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	return NewLoader().Load()
}

// knownTasks are the task names Validate accepts.
var knownTasks = map[string]bool{
	"classification": true,
	"pairwise":       true,
	"translation":    true,
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	var errs []string

	if !knownTasks[c.Task.Name] {
		errs = append(errs, fmt.Sprintf("unknown task %q", c.Task.Name))
	}
	if c.Task.Name == "translation" && (c.Task.SourceLanguage == "" || c.Task.TargetLanguage == "") {
		errs = append(errs, "translation task requires source_language and target_language")
	}
	if !dataset.LabelPolicy(c.Model.LabelPolicy).Valid() {
		errs = append(errs, fmt.Sprintf("unknown label policy %q", c.Model.LabelPolicy))
	}
	if c.Ingest.BatchSize <= 0 {
		errs = append(errs, "batch_size must be positive")
	}
	if c.Tokenizer.MaxSeqLength < 0 {
		errs = append(errs, "max_seq_length must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
