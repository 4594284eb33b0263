package decode

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// CSVDecoder decodes delimited table files (.csv, .tsv). The first row is
// the header naming the fields; each data row becomes one Record.
type CSVDecoder struct{}

// NewCSVDecoder creates a CSVDecoder.
func NewCSVDecoder() *CSVDecoder {
	return &CSVDecoder{}
}

// Decode reads a CSV or TSV file and returns its records. Columns required
// by the schema must be present in the header.
func (d *CSVDecoder) Decode(ctx context.Context, path string, schema dataset.Schema) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "opening delimited file").
			WithPath(path).WithCause(err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if strings.ToLower(filepath.Ext(path)) == ".tsv" {
		reader.Comma = '\t'
	}
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "parsing delimited file").
			WithPath(path).WithCause(err)
	}
	if len(rows) == 0 {
		return nil, types.NewError(types.ErrIngestion, "delimited file has no header row").
			WithPath(path)
	}

	header := rows[0]
	if err := requireColumns(header, schema); err != nil {
		return nil, types.NewError(types.ErrMissingField, err.Error()).WithPath(path)
	}

	records := make([]dataset.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(dataset.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// SupportedTypes returns the extensions handled by CSVDecoder.
func (d *CSVDecoder) SupportedTypes() []string {
	return []string{".csv", ".tsv"}
}

// requireColumns verifies that every schema field appears in the header.
func requireColumns(header []string, schema dataset.Schema) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, field := range schema.Fields() {
		if !present[field] {
			return fmt.Errorf("header is missing required column %q", field)
		}
	}
	return nil
}
