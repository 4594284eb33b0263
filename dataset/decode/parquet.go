package decode

import (
	"context"
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// ParquetDecoder decodes columnar Parquet files (.parquet). Each row becomes
// one Record; column names come from the file's own schema.
type ParquetDecoder struct{}

// NewParquetDecoder creates a ParquetDecoder.
func NewParquetDecoder() *ParquetDecoder {
	return &ParquetDecoder{}
}

// Decode reads a Parquet file column by column and reassembles rows.
func (d *ParquetDecoder) Decode(ctx context.Context, path string, _ dataset.Schema) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "opening parquet file").
			WithPath(path).WithCause(err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, 1)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "reading parquet footer").
			WithPath(path).WithCause(err)
	}
	defer pr.ReadStop()

	numRows := pr.GetNumRows()
	records := make([]dataset.Record, numRows)
	for i := range records {
		records[i] = make(dataset.Record)
	}

	// Footer schema element 0 is the root; the remainder are the leaf
	// columns of a flat file, in column order.
	schemaEls := pr.Footer.Schema
	colIdx := int64(0)
	for _, el := range schemaEls[1:] {
		if el.NumChildren != nil && *el.NumChildren > 0 {
			return nil, types.NewError(types.ErrIngestion,
				fmt.Sprintf("nested parquet schemas are not supported (group %q)", el.Name)).
				WithPath(path)
		}

		values, _, _, err := pr.ReadColumnByIndex(colIdx, numRows)
		if err != nil {
			return nil, types.NewError(types.ErrIngestion,
				fmt.Sprintf("reading parquet column %q", el.Name)).
				WithPath(path).WithCause(err)
		}
		for row := int64(0); row < numRows && row < int64(len(values)); row++ {
			records[row][el.Name] = values[row]
		}
		colIdx++
	}

	return records, nil
}

// SupportedTypes returns the extensions handled by ParquetDecoder.
func (d *ParquetDecoder) SupportedTypes() []string {
	return []string{".parquet"}
}
