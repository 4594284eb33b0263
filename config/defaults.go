package config

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Task:      DefaultTaskConfig(),
		Model:     DefaultModelConfig(),
		Ingest:    DefaultIngestConfig(),
		Tokenizer: DefaultTokenizerConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultTaskConfig returns the default task configuration.
func DefaultTaskConfig() TaskConfig {
	return TaskConfig{
		Name: "classification",
	}
}

// DefaultModelConfig returns the default model configuration.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Name:        "bert-base-uncased",
		LabelPolicy: "replace",
	}
}

// DefaultIngestConfig returns the default ingestion configuration.
func DefaultIngestConfig() IngestConfig {
	return IngestConfig{
		Dir:       "./dataset",
		Strict:    false,
		BatchSize: 1000,
	}
}

// DefaultTokenizerConfig returns the default tokenizer configuration.
func DefaultTokenizerConfig() TokenizerConfig {
	return TokenizerConfig{
		Model:        "gpt-4o",
		MaxSeqLength: 512,
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{"stdout"},
	}
}

// DefaultTelemetryConfig returns the default telemetry configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "finetune",
		SampleRate:   1.0,
	}
}
