package decode

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// DatasetTable is the fixed table name dataset records are read from in
// embedded relational files.
const DatasetTable = "dataset_table"

// SQLiteDecoder decodes embedded relational files (.db). A fixed projection
// of the task's required columns is read from DatasetTable; each row becomes
// one Record. A missing table or column surfaces as an ingestion error.
type SQLiteDecoder struct{}

// NewSQLiteDecoder creates a SQLiteDecoder.
func NewSQLiteDecoder() *SQLiteDecoder {
	return &SQLiteDecoder{}
}

// Decode opens the database file read-only and scans the fixed projection.
func (d *SQLiteDecoder) Decode(ctx context.Context, path string, schema dataset.Schema) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "opening sqlite file").
			WithPath(path).WithCause(err)
	}
	defer db.Close()

	records, err := d.decodeDB(ctx, db, schema)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion,
			fmt.Sprintf("querying table %q", DatasetTable)).
			WithPath(path).WithCause(err)
	}
	return records, nil
}

// decodeDB runs the fixed projection against an open database handle.
// Factored out so it can be exercised against any database/sql connection.
func (d *SQLiteDecoder) decodeDB(ctx context.Context, db *sql.DB, schema dataset.Schema) ([]dataset.Record, error) {
	fields := schema.Fields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = `"` + f + `"`
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), DatasetTable)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []dataset.Record
	for rows.Next() {
		values := make([]any, len(fields))
		ptrs := make([]any, len(fields))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(dataset.Record, len(fields))
		for i, f := range fields {
			rec[f] = normalizeSQLValue(values[i])
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// normalizeSQLValue converts driver values to the plain Go types the rest of
// the pipeline expects.
func normalizeSQLValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// SupportedTypes returns the extensions handled by SQLiteDecoder.
func (d *SQLiteDecoder) SupportedTypes() []string {
	return []string{".db"}
}
