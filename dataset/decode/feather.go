package decode

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// FeatherDecoder decodes Feather files (.feather), the Arrow IPC file
// format. Each row becomes one Record; field names come from the Arrow
// schema.
type FeatherDecoder struct{}

// NewFeatherDecoder creates a FeatherDecoder.
func NewFeatherDecoder() *FeatherDecoder {
	return &FeatherDecoder{}
}

// Decode reads all record batches of an Arrow IPC file and flattens them
// into Records.
func (d *FeatherDecoder) Decode(ctx context.Context, path string, _ dataset.Schema) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "opening feather file").
			WithPath(path).WithCause(err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "reading arrow ipc footer").
			WithPath(path).WithCause(err)
	}
	defer r.Close()

	fields := r.Schema().Fields()
	var records []dataset.Record
	for {
		batch, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, types.NewError(types.ErrIngestion, "reading arrow record batch").
				WithPath(path).WithCause(err)
		}

		for row := 0; row < int(batch.NumRows()); row++ {
			rec := make(dataset.Record, len(fields))
			for col := range fields {
				rec[fields[col].Name] = arrowValue(batch.Column(col), row)
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// arrowValue extracts one cell as a Go value.
func arrowValue(col arrow.Array, row int) any {
	if col.IsNull(row) {
		return nil
	}
	switch arr := col.(type) {
	case *array.String:
		return arr.Value(row)
	case *array.LargeString:
		return arr.Value(row)
	case *array.Int64:
		return arr.Value(row)
	case *array.Int32:
		return int64(arr.Value(row))
	case *array.Float64:
		return arr.Value(row)
	case *array.Float32:
		return float64(arr.Value(row))
	case *array.Boolean:
		return arr.Value(row)
	default:
		return col.ValueStr(row)
	}
}

// SupportedTypes returns the extensions handled by FeatherDecoder.
func (d *FeatherDecoder) SupportedTypes() []string {
	return []string{".feather"}
}
