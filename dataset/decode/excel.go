package decode

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// ExcelDecoder decodes spreadsheet files. OOXML workbooks (.xlsx) are read
// with excelize; legacy BIFF workbooks (.xls) are a CFB container excelize
// cannot open, so they go through extrame/xls instead. In both cases the
// first row of the first sheet is the header naming the fields; each data
// row becomes one Record.
type ExcelDecoder struct{}

// NewExcelDecoder creates an ExcelDecoder.
func NewExcelDecoder() *ExcelDecoder {
	return &ExcelDecoder{}
}

// Decode reads the first sheet of a spreadsheet and returns its records.
func (d *ExcelDecoder) Decode(ctx context.Context, path string, schema dataset.Schema) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return d.decodeBIFF(path, schema)
	}
	return d.decodeOOXML(path, schema)
}

func (d *ExcelDecoder) decodeOOXML(path string, schema dataset.Schema) ([]dataset.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "opening spreadsheet").
			WithPath(path).WithCause(err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "reading spreadsheet rows").
			WithPath(path).WithCause(err)
	}
	return sheetToRecords(rows, path, schema)
}

func (d *ExcelDecoder) decodeBIFF(path string, schema dataset.Schema) ([]dataset.Record, error) {
	wb, closer, err := xls.OpenWithCloser(path, "utf-8")
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "opening legacy spreadsheet").
			WithPath(path).WithCause(err)
	}
	defer closer.Close()

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, types.NewError(types.ErrIngestion, "legacy spreadsheet has no sheets").
			WithPath(path)
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return sheetToRecords(rows, path, schema)
}

// sheetToRecords turns header+data rows into records. Cells past the end of
// a short row leave the corresponding field unset.
func sheetToRecords(rows [][]string, path string, schema dataset.Schema) ([]dataset.Record, error) {
	if len(rows) == 0 {
		return nil, types.NewError(types.ErrIngestion, "spreadsheet has no header row").
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

// SupportedTypes returns the extensions handled by ExcelDecoder.
func (d *ExcelDecoder) SupportedTypes() []string {
	return []string{".xls", ".xlsx"}
}
