package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Tokenizer is the unified text-to-token-IDs interface.
type Tokenizer interface {
	// Encode converts text into a list of token IDs.
	Encode(text string) ([]int, error)

	// EncodePair jointly encodes a sequence pair (e.g. premise/hypothesis)
	// into one token ID list.
	EncodePair(a, b string) ([]int, error)

	// Decode converts token IDs back into text.
	Decode(tokens []int) (string, error)

	// CountTokens returns the token count of the given text.
	CountTokens(text string) (int, error)

	// MaxTokens returns the model's maximum sequence length.
	MaxTokens() int

	// PadID returns the token ID used for padding.
	PadID() int

	// Name returns the tokenizer's name.
	Name() string
}

// Global tokenizer registry, keyed by model name.
var (
	modelTokenizers   = make(map[string]Tokenizer)
	modelTokenizersMu sync.RWMutex
	createGroup       singleflight.Group
)

// Register registers a tokenizer for the given model name.
func Register(model string, t Tokenizer) {
	modelTokenizersMu.Lock()
	defer modelTokenizersMu.Unlock()
	modelTokenizers[model] = t
}

// Get returns the tokenizer registered for the given model.
// Prefix matching is attempted (e.g. "gpt-4o" matches "gpt-4o-mini");
// the longest registered prefix wins, so versioned model names resolve
// deterministically when several prefixes match.
func Get(model string) (Tokenizer, error) {
	modelTokenizersMu.RLock()
	defer modelTokenizersMu.RUnlock()

	if t, ok := modelTokenizers[model]; ok {
		return t, nil
	}

	var (
		best    Tokenizer
		bestLen = -1
	)
	for prefix, t := range modelTokenizers {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			best, bestLen = t, len(prefix)
		}
	}
	if best != nil {
		return best, nil
	}

	return nil, fmt.Errorf("no tokenizer registered for model: %s", model)
}

// GetOrCreate returns the registered tokenizer for the model, constructing
// and registering a tiktoken tokenizer on first use. Concurrent calls for
// the same model are collapsed into one construction.
func GetOrCreate(model string) (Tokenizer, error) {
	if t, err := Get(model); err == nil {
		return t, nil
	}

	v, err, _ := createGroup.Do(model, func() (any, error) {
		t, err := NewTiktokenTokenizer(model)
		if err != nil {
			return nil, err
		}
		Register(model, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Tokenizer), nil
}

// GetOrEstimator returns the registered tokenizer for the model, falling
// back to a generic estimator when none is registered.
func GetOrEstimator(model string) Tokenizer {
	t, err := Get(model)
	if err != nil {
		return NewEstimatorTokenizer(model, 0)
	}
	return t
}
