package decode

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// ============================================================
// Registry Tests
// ============================================================

func TestNewRegistry_HasBuiltinDecoders(t *testing.T) {
	t.Parallel()

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	exts := r.SupportedTypes()

	for _, ext := range []string{".jsonl", ".json", ".csv", ".tsv", ".parquet", ".feather", ".xls", ".xlsx", ".xml", ".yaml", ".yml", ".db"} {
		assert.Contains(t, exts, ext)
	}
}

func TestRegistry_Register_CustomDecoder(t *testing.T) {
	t.Parallel()

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	r.Register(".MSGPACK", NewJSONDecoder()) // reuse json decoder for test

	assert.Contains(t, r.SupportedTypes(), ".msgpack")
}

func TestRegistry_LoadDirectory_MissingDir(t *testing.T) {
	t.Parallel()

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	_, err := r.LoadDirectory(context.Background(), "/nonexistent/dir", dataset.ClassificationSchema)

	require.Error(t, err)
	assert.Equal(t, types.ErrIngestion, types.GetErrorCode(err))
}

func TestRegistry_LoadDirectory_SkipsUnknownExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "train.jsonl", `{"text":"ok","label":"pos"}`)
	writeFile(t, dir, "notes.xyz", "not a dataset file")

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	ds, err := r.LoadDirectory(context.Background(), dir, dataset.ClassificationSchema)

	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestRegistry_LoadDirectory_StrictRejectsUnknownExtensions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "notes.xyz", "not a dataset file")

	r := NewRegistry(RegistryConfig{Strict: true}, zap.NewNop())
	_, err := r.LoadDirectory(context.Background(), dir, dataset.ClassificationSchema)

	require.Error(t, err)
	assert.Equal(t, types.ErrUnsupportedFormat, types.GetErrorCode(err))
}

func TestRegistry_LoadDirectory_FailFast_NoPartialDataset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl", `{"text":"ok","label":"pos"}`)
	writeFile(t, dir, "b.jsonl", `{broken`)

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	ds, err := r.LoadDirectory(context.Background(), dir, dataset.ClassificationSchema)

	require.Error(t, err)
	assert.Nil(t, ds)
	assert.Contains(t, err.Error(), filepath.Join(dir, "b.jsonl"))
}

func TestRegistry_LoadDirectory_SchemaViolationAborts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl", `{"text":"ok"}`)

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	_, err := r.LoadDirectory(context.Background(), dir, dataset.ClassificationSchema)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "label")
}

func TestRegistry_LoadDirectory_SnapshotBypassesDecoding(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ds := dataset.FromRecords([]dataset.Record{
		{"text": "ok", "label": "pos"},
		{"text": "bad", "label": "neg"},
	})
	_, err := dataset.SaveSnapshot(dir, ds, dataset.ClassificationSchema)
	require.NoError(t, err)

	// A syntactically invalid sibling file of a recognized extension must be
	// ignored when the snapshot marker is present.
	writeFile(t, dir, "garbage.json", "{this is not json")

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	loaded, err := r.LoadDirectory(context.Background(), dir, dataset.ClassificationSchema)

	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
}

func TestRegistry_LoadDirectory_CancelledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.jsonl", `{"text":"ok","label":"pos"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	_, err := r.LoadDirectory(ctx, dir, dataset.ClassificationSchema)

	assert.ErrorIs(t, err, context.Canceled)
}

// Scenario from the classification task: two jsonl records load in order.
func TestRegistry_LoadDirectory_JSONLScenario(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "train.jsonl", "{\"text\":\"ok\",\"label\":\"pos\"}\n{\"text\":\"bad\",\"label\":\"neg\"}")

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	ds, err := r.LoadDirectory(context.Background(), dir, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	idx, err := dataset.BuildLabelIndex(ds, "label")
	require.NoError(t, err)
	assert.Equal(t, []string{"pos", "neg"}, idx.Labels())
}

// ============================================================
// JSONDecoder Tests
// ============================================================

func TestJSONDecoder_JSONL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.jsonl", "{\"text\":\"a\",\"label\":\"x\"}\n\n{\"text\":\"b\",\"label\":\"y\"}")

	recs, err := NewJSONDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0]["text"])
	assert.Equal(t, "y", recs[1]["label"])
}

func TestJSONDecoder_JSONArray(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.json", `[{"text":"a","label":"x"},{"text":"b","label":"y"}]`)

	recs, err := NewJSONDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestJSONDecoder_MalformedLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "bad.jsonl", "{\"text\":\"a\",\"label\":\"x\"}\n{oops")

	_, err := NewJSONDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

// ============================================================
// CSVDecoder Tests
// ============================================================

func TestCSVDecoder_CSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "text,label\nhello,pos\nbye,neg")

	recs, err := NewCSVDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "hello", recs[0]["text"])
	assert.Equal(t, "neg", recs[1]["label"])
}

func TestCSVDecoder_TSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.tsv", "text\tlabel\nhello world\tpos")

	recs, err := NewCSVDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "hello world", recs[0]["text"])
}

func TestCSVDecoder_MissingColumn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "text\nhello")

	_, err := NewCSVDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.Error(t, err)
	assert.Equal(t, types.ErrMissingField, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), `"label"`)
}

func TestCSVDecoder_MissingColumn_AbortsDirectoryLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "data.csv", "text\nhello")

	r := NewRegistry(RegistryConfig{}, zap.NewNop())
	ds, err := r.LoadDirectory(context.Background(), dir, dataset.ClassificationSchema)

	require.Error(t, err)
	assert.Nil(t, ds)
}

// ============================================================
// XMLDecoder Tests
// ============================================================

func TestXMLDecoder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.xml", `<dataset>
  <record><text>hello</text><label>pos</label></record>
  <record><text>bye</text><label>neg</label></record>
</dataset>`)

	recs, err := NewXMLDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "hello", recs[0]["text"])
	assert.Equal(t, "neg", recs[1]["label"])
}

func TestXMLDecoder_Pairwise(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.xml", `<dataset>
  <record><premise>p</premise><hypothesis>h</hypothesis><label>1</label></record>
</dataset>`)

	recs, err := NewXMLDecoder().Decode(context.Background(), path, dataset.PairwiseSchema)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "p", recs[0]["premise"])
	assert.Equal(t, "1", recs[0]["label"])
}

func TestXMLDecoder_Malformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "bad.xml", "<dataset><record><text>unclosed")

	_, err := NewXMLDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	assert.Error(t, err)
}

// ============================================================
// YAMLDecoder Tests
// ============================================================

func TestYAMLDecoder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.yaml", "- text: hello\n  label: pos\n- text: bye\n  label: neg\n")

	recs, err := NewYAMLDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "hello", recs[0]["text"])
	assert.Equal(t, "neg", recs[1]["label"])
}

func TestYAMLDecoder_NotAList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "data.yml", "text: hello\nlabel: pos\n")

	_, err := NewYAMLDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	assert.Error(t, err)
}

// ============================================================
// ParquetDecoder Tests
// ============================================================

type parquetExample struct {
	Text  string `parquet:"name=text, type=BYTE_ARRAY, convertedtype=UTF8"`
	Label string `parquet:"name=label, type=BYTE_ARRAY, convertedtype=UTF8"`
}

func writeParquetFixture(t *testing.T, path string, rows []parquetExample) {
	t.Helper()

	fw, err := local.NewLocalFileWriter(path)
	require.NoError(t, err)
	pw, err := writer.NewParquetWriter(fw, new(parquetExample), 1)
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, pw.Write(row))
	}
	require.NoError(t, pw.WriteStop())
	require.NoError(t, fw.Close())
}

func TestParquetDecoder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.parquet")
	writeParquetFixture(t, path, []parquetExample{
		{Text: "hello", Label: "pos"},
		{Text: "bye", Label: "neg"},
		{Text: "meh", Label: "neutral"},
	})

	recs, err := NewParquetDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "hello", recs[0]["text"])
	assert.Equal(t, "neutral", recs[2]["label"])
}

func TestParquetDecoder_Truncated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "bad.parquet", "this is not parquet")

	_, err := NewParquetDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	assert.Error(t, err)
}

// ============================================================
// FeatherDecoder Tests
// ============================================================

func writeFeatherFixture(t *testing.T, path string, texts, labels []string) {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "text", Type: arrow.BinaryTypes.String},
		{Name: "label", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues(texts, nil)
	b.Field(1).(*array.StringBuilder).AppendValues(labels, nil)
	rec := b.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestFeatherDecoder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.feather")
	writeFeatherFixture(t, path, []string{"hello", "bye"}, []string{"pos", "neg"})

	recs, err := NewFeatherDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "hello", recs[0]["text"])
	assert.Equal(t, "neg", recs[1]["label"])
}

func TestFeatherDecoder_Truncated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "bad.feather", "not arrow ipc")

	_, err := NewFeatherDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	assert.Error(t, err)
}

// ============================================================
// ExcelDecoder Tests
// ============================================================

func writeExcelFixture(t *testing.T, path string, rows [][]any) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestExcelDecoder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")
	writeExcelFixture(t, path, [][]any{
		{"text", "label"},
		{"hello", "pos"},
		{"bye", "neg"},
	})

	recs, err := NewExcelDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "hello", recs[0]["text"])
	assert.Equal(t, "neg", recs[1]["label"])
}

func TestExcelDecoder_MissingColumn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")
	writeExcelFixture(t, path, [][]any{
		{"text"},
		{"hello"},
	})

	_, err := NewExcelDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.Error(t, err)
	assert.Equal(t, types.ErrMissingField, types.GetErrorCode(err))
}

// A .xls path must go through the BIFF reader: OOXML bytes under the legacy
// extension are a different container and must be rejected, not parsed as a
// modern workbook.
func TestExcelDecoder_LegacyXLS_RejectsOOXMLContainer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tmp := filepath.Join(dir, "data.xlsx")
	writeExcelFixture(t, tmp, [][]any{
		{"text", "label"},
		{"hello", "pos"},
	})
	path := filepath.Join(dir, "data.xls")
	require.NoError(t, os.Rename(tmp, path))

	_, err := NewExcelDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.Error(t, err)
	assert.Equal(t, types.ErrIngestion, types.GetErrorCode(err))
}

func TestExcelDecoder_LegacyXLS_Corrupt(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.xls")
	require.NoError(t, os.WriteFile(path, []byte("not a spreadsheet"), 0o644))

	_, err := NewExcelDecoder().Decode(context.Background(), path, dataset.ClassificationSchema)
	require.Error(t, err)
	assert.Equal(t, types.ErrIngestion, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), path)
}

func TestSheetToRecords(t *testing.T) {
	t.Parallel()

	recs, err := sheetToRecords([][]string{
		{"text", "label"},
		{"hello", "pos"},
		{"bye"},
	}, "d.xls", dataset.ClassificationSchema)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "pos", recs[0]["label"])
	_, ok := recs[1]["label"]
	assert.False(t, ok, "short row leaves the field unset")
}

func TestSheetToRecords_MissingHeaderColumn(t *testing.T) {
	t.Parallel()

	_, err := sheetToRecords([][]string{{"premise", "label"}}, "d.xls", dataset.PairwiseSchema)
	require.Error(t, err)
	assert.Equal(t, types.ErrMissingField, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "hypothesis")
}

// ============================================================
// Cross-format integration: every format yields N records
// ============================================================

func TestRegistry_AllFormats_YieldExpectedRecords(t *testing.T) {
	t.Parallel()

	r := NewRegistry(RegistryConfig{}, zap.NewNop())

	tests := []struct {
		name  string
		setup func(t *testing.T, dir string)
		want  int
	}{
		{
			name: "jsonl",
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "d.jsonl", "{\"text\":\"a\",\"label\":\"x\"}\n{\"text\":\"b\",\"label\":\"y\"}")
			},
			want: 2,
		},
		{
			name: "json",
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "d.json", `[{"text":"a","label":"x"}]`)
			},
			want: 1,
		},
		{
			name: "csv",
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "d.csv", "text,label\na,x\nb,y\nc,z")
			},
			want: 3,
		},
		{
			name: "tsv",
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "d.tsv", "text\tlabel\na\tx")
			},
			want: 1,
		},
		{
			name: "xml",
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "d.xml", "<ds><record><text>a</text><label>x</label></record></ds>")
			},
			want: 1,
		},
		{
			name: "yaml",
			setup: func(t *testing.T, dir string) {
				writeFile(t, dir, "d.yaml", "- text: a\n  label: x\n- text: b\n  label: y\n")
			},
			want: 2,
		},
		{
			name: "parquet",
			setup: func(t *testing.T, dir string) {
				writeParquetFixture(t, filepath.Join(dir, "d.parquet"), []parquetExample{{Text: "a", Label: "x"}})
			},
			want: 1,
		},
		{
			name: "feather",
			setup: func(t *testing.T, dir string) {
				writeFeatherFixture(t, filepath.Join(dir, "d.feather"), []string{"a", "b"}, []string{"x", "y"})
			},
			want: 2,
		},
		{
			name: "xlsx",
			setup: func(t *testing.T, dir string) {
				writeExcelFixture(t, filepath.Join(dir, "d.xlsx"), [][]any{{"text", "label"}, {"a", "x"}})
			},
			want: 1,
		},
		{
			name: "sqlite",
			setup: func(t *testing.T, dir string) {
				writeSQLiteFixture(t, filepath.Join(dir, "d.db"), [][2]string{{"a", "x"}, {"b", "y"}})
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)

			ds, err := r.LoadDirectory(context.Background(), dir, dataset.ClassificationSchema)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ds.Len())
		})
	}
}

// ============================================================
// Helpers
// ============================================================

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeSQLiteFixture(t *testing.T, path string, rows [][2]string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE dataset_table (text TEXT, label TEXT)`)
	require.NoError(t, err)
	for _, row := range rows {
		_, err = db.Exec(`INSERT INTO dataset_table (text, label) VALUES (?, ?)`, row[0], row[1])
		require.NoError(t, err)
	}
}
