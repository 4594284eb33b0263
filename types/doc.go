// Package types defines the shared types used across the finetune library:
// the structured error type with stable error codes, and the model
// configuration object that fine-tuning bolts read and write label mappings
// on.
package types
