// Package tokenizer provides the unified tokenization interface used by
// feature preparation, with a tiktoken-backed implementation for exact
// encoding and a character-based estimator as a fallback.
package tokenizer
