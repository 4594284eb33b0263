// Package dataset defines the normalized in-memory dataset model shared by
// all fine-tuning tasks.
//
// A Record is one example with task-defined named fields; a Dataset is an
// ordered collection of Records behaving like a table. A Schema names the
// fields a task requires, and a LabelIndex maps label strings to stable
// 0-based integer IDs in first-seen order.
//
// Datasets can be persisted as a snapshot: a dataset_info.json marker plus a
// data.jsonl payload. A directory holding a snapshot is loaded in one step,
// bypassing per-file decoding.
package dataset
