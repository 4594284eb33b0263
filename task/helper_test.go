package task

import (
	"fmt"
	"strings"
)

// wordTokenizer is a deterministic test tokenizer: one token per
// whitespace-separated word, token ID = word length.
type wordTokenizer struct {
	maxTokens int
	padID     int
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{maxTokens: 64}
}

func (w *wordTokenizer) Encode(text string) ([]int, error) {
	words := strings.Fields(text)
	ids := make([]int, len(words))
	for i, word := range words {
		ids[i] = len(word)
	}
	return ids, nil
}

func (w *wordTokenizer) EncodePair(a, b string) ([]int, error) {
	left, _ := w.Encode(a)
	right, _ := w.Encode(b)
	return append(left, right...), nil
}

func (w *wordTokenizer) Decode(tokens []int) (string, error) {
	return fmt.Sprintf("%v", tokens), nil
}

func (w *wordTokenizer) CountTokens(text string) (int, error) {
	ids, _ := w.Encode(text)
	return len(ids), nil
}

func (w *wordTokenizer) MaxTokens() int { return w.maxTokens }
func (w *wordTokenizer) PadID() int     { return w.padID }
func (w *wordTokenizer) Name() string   { return "word" }
