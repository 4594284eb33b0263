package bolt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marrowai/finetune/types"
)

func TestTranslationBolt_LoadDataset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDatasetFile(t, dir, "train.jsonl",
		`{"translation": {"en": "hello world", "fr": "bonjour le monde"}}
{"translation": {"en": "good morning", "fr": "bonjour"}}
`)

	b, err := NewTranslationBolt(Options{Tokenizer: wordTokenizer{}, MaxSeqLength: 16}, "en", "fr")
	require.NoError(t, err)

	feats, err := b.LoadDataset(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, 2, feats.Len())
	assert.Len(t, feats.InputIDs[0], 2)
	assert.Len(t, feats.TargetIDs[0], 3)
	assert.Empty(t, feats.Labels)
}

func TestNewTranslationBolt_RequiresLanguages(t *testing.T) {
	t.Parallel()

	_, err := NewTranslationBolt(Options{Tokenizer: wordTokenizer{}}, "", "fr")
	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))
}

func TestTranslationBolt_MissingLanguageInRecord(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeDatasetFile(t, dir, "train.jsonl",
		`{"translation": {"en": "hello", "fr": "bonjour"}}
`)

	b, err := NewTranslationBolt(Options{Tokenizer: wordTokenizer{}}, "en", "de")
	require.NoError(t, err)

	_, err = b.LoadDataset(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"de"`)
}
