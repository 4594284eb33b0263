package decode

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// JSONDecoder decodes JSON array files (.json) and JSONL files (.jsonl).
type JSONDecoder struct{}

// NewJSONDecoder creates a JSONDecoder.
func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

// Decode reads a JSON or JSONL file and returns its records.
func (d *JSONDecoder) Decode(ctx context.Context, path string, _ dataset.Schema) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.ToLower(filepath.Ext(path)) == ".jsonl" {
		return d.decodeJSONL(path)
	}
	return d.decodeJSON(path)
}

// decodeJSON handles .json files: the file must be a JSON array of objects.
func (d *JSONDecoder) decodeJSON(path string) ([]dataset.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "reading json file").
			WithPath(path).WithCause(err)
	}

	var records []dataset.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, types.NewError(types.ErrIngestion, "parsing json array").
			WithPath(path).WithCause(err)
	}
	return records, nil
}

// decodeJSONL handles .jsonl files: one JSON object per line, blank lines
// skipped.
func (d *JSONDecoder) decodeJSONL(path string) ([]dataset.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "opening jsonl file").
			WithPath(path).WithCause(err)
	}
	defer f.Close()

	var records []dataset.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec dataset.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, types.NewError(types.ErrIngestion,
				fmt.Sprintf("parsing jsonl line %d", lineNum)).
				WithPath(path).WithCause(err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, types.NewError(types.ErrIngestion, "reading jsonl file").
			WithPath(path).WithCause(err)
	}
	return records, nil
}

// SupportedTypes returns the extensions handled by JSONDecoder.
func (d *JSONDecoder) SupportedTypes() []string {
	return []string{".json", ".jsonl"}
}
