// Package bolt wires dataset ingestion, label handling, and feature
// preparation into single-call loaders per fine-tuning task. A bolt owns a
// decode registry and a tokenizer; LoadDataset turns a dataset directory into
// a ready-to-train feature batch.
package bolt
