package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// wordTokenizer is a deterministic test tokenizer: one token per
// whitespace-separated word, token ID = word length.
type wordTokenizer struct{}

func (wordTokenizer) Encode(text string) ([]int, error) {
	words := strings.Fields(text)
	ids := make([]int, len(words))
	for i, word := range words {
		ids[i] = len(word)
	}
	return ids, nil
}

func (w wordTokenizer) EncodePair(a, b string) ([]int, error) {
	left, _ := w.Encode(a)
	right, _ := w.Encode(b)
	return append(left, right...), nil
}

func (wordTokenizer) Decode(tokens []int) (string, error) {
	return fmt.Sprintf("%v", tokens), nil
}

func (w wordTokenizer) CountTokens(text string) (int, error) {
	ids, _ := w.Encode(text)
	return len(ids), nil
}

func (wordTokenizer) MaxTokens() int { return 64 }
func (wordTokenizer) PadID() int     { return 0 }
func (wordTokenizer) Name() string   { return "word" }

// writeDatasetFile writes content into dir under the given name.
func writeDatasetFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
