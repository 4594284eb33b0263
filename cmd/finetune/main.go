// finetune turns dataset directories into training-ready features.
//
// Usage:
//
//	finetune prepare --config finetune.yaml   # ingest and prepare features
//	finetune snapshot --dir ./data            # normalize a directory into a snapshot
//	finetune formats                          # list supported file formats
//	finetune version                          # show version information
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/marrowai/finetune/bolt"
	"github.com/marrowai/finetune/config"
	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/dataset/decode"
	"github.com/marrowai/finetune/internal/telemetry"
	"github.com/marrowai/finetune/tokenizer"
	"github.com/marrowai/finetune/types"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "prepare":
		runPrepare(os.Args[2:])
	case "snapshot":
		runSnapshot(os.Args[2:])
	case "formats":
		printFormats()
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// runPrepare loads a dataset directory and prepares features for the
// configured task.
func runPrepare(args []string) {
	fs := flag.NewFlagSet("prepare", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	dir := fs.String("dir", "", "Dataset directory (overrides config)")
	taskName := fs.String("task", "", "Task name (overrides config)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *dir != "" {
		cfg.Ingest.Dir = *dir
	}
	if *taskName != "" {
		cfg.Task.Name = *taskName
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("starting finetune",
		zap.String("version", Version),
		zap.String("task", cfg.Task.Name),
		zap.String("dir", cfg.Ingest.Dir),
	)

	otelProviders, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProviders.Shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	tokenizer.RegisterOpenAITokenizers()
	opts := bolt.Options{
		Tokenizer: tokenizer.GetOrEstimator(cfg.Tokenizer.Model),
		Registry: decode.NewRegistry(decode.RegistryConfig{
			Strict: cfg.Ingest.Strict,
		}, logger),
		ModelConfig:  &types.ModelConfig{ModelName: cfg.Model.Name},
		MaxSeqLength: cfg.Tokenizer.MaxSeqLength,
		LabelPolicy:  dataset.LabelPolicy(cfg.Model.LabelPolicy),
		BatchSize:    cfg.Ingest.BatchSize,
		Logger:       logger,
	}

	ctx := context.Background()
	switch cfg.Task.Name {
	case "classification":
		b, err := bolt.NewClassificationBolt(opts)
		exitOnError(logger, err)
		feats, labels, err := b.LoadDataset(ctx, cfg.Ingest.Dir)
		exitOnError(logger, err)
		fmt.Printf("prepared %d rows, %d labels: %s\n",
			feats.Len(), labels.Len(), strings.Join(labels.Labels(), ", "))

	case "pairwise":
		b, err := bolt.NewPairwiseBolt(opts)
		exitOnError(logger, err)
		feats, err := b.LoadDataset(ctx, cfg.Ingest.Dir)
		exitOnError(logger, err)
		fmt.Printf("prepared %d rows\n", feats.Len())

	case "translation":
		b, err := bolt.NewTranslationBolt(opts, cfg.Task.SourceLanguage, cfg.Task.TargetLanguage)
		exitOnError(logger, err)
		feats, err := b.LoadDataset(ctx, cfg.Ingest.Dir)
		exitOnError(logger, err)
		fmt.Printf("prepared %d rows (%s -> %s)\n",
			feats.Len(), cfg.Task.SourceLanguage, cfg.Task.TargetLanguage)
	}
}

// runSnapshot normalizes a dataset directory into a snapshot, so later loads
// skip per-file decoding.
func runSnapshot(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	dir := fs.String("dir", "", "Dataset directory (overrides config)")
	out := fs.String("out", "", "Snapshot output directory (defaults to --dir)")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	if *dir != "" {
		cfg.Ingest.Dir = *dir
	}
	if *out == "" {
		*out = cfg.Ingest.Dir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	schema, err := taskSchema(cfg.Task.Name)
	exitOnError(logger, err)

	registry := decode.NewRegistry(decode.RegistryConfig{Strict: cfg.Ingest.Strict}, logger)
	ds, err := registry.LoadDirectory(context.Background(), cfg.Ingest.Dir, schema)
	exitOnError(logger, err)

	info, err := dataset.SaveSnapshot(*out, ds, schema)
	exitOnError(logger, err)

	fmt.Printf("snapshot %s: %d records in %s\n", info.Fingerprint, info.NumRecords, *out)
}

// taskSchema maps a task name to its record schema.
func taskSchema(name string) (dataset.Schema, error) {
	switch name {
	case "classification":
		return dataset.ClassificationSchema, nil
	case "pairwise":
		return dataset.PairwiseSchema, nil
	case "translation":
		return dataset.TranslationSchema, nil
	default:
		return dataset.Schema{}, types.NewError(types.ErrConfiguration,
			fmt.Sprintf("unknown task %q", name))
	}
}

func loadConfig(path string) *config.Config {
	loader := config.NewLoader()
	if path != "" {
		loader = loader.WithConfigPath(path)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func exitOnError(logger *zap.Logger, err error) {
	if err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

// initLogger builds the zap logger from the logging configuration.
func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoding = "console"
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func printFormats() {
	registry := decode.NewRegistry(decode.RegistryConfig{}, zap.NewNop())
	fmt.Println("Supported dataset file formats:")
	for _, ext := range registry.SupportedTypes() {
		fmt.Printf("  %s\n", ext)
	}
	fmt.Printf("  %s (snapshot marker)\n", dataset.SnapshotMarkerFile)
}

func printVersion() {
	fmt.Printf("finetune %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`finetune - dataset ingestion and feature preparation for NLP fine-tuning

Usage:
  finetune <command> [options]

Commands:
  prepare   Ingest a dataset directory and prepare features
  snapshot  Normalize a dataset directory into a snapshot
  formats   List supported dataset file formats
  version   Show version information
  help      Show this help message

Options for 'prepare':
  --config <path>   Path to configuration file (YAML)
  --dir <path>      Dataset directory (overrides config)
  --task <name>     classification, pairwise, or translation

Options for 'snapshot':
  --config <path>   Path to configuration file (YAML)
  --dir <path>      Dataset directory (overrides config)
  --out <path>      Snapshot output directory (defaults to --dir)`)
}
