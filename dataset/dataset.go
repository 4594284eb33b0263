package dataset

import (
	"fmt"
	"strconv"

	"github.com/marrowai/finetune/types"
)

// Record is one normalized example: a mapping from field name to value.
type Record map[string]any

// Schema names the fields every Record of a task must carry.
type Schema struct {
	fields []string
}

// NewSchema creates a Schema requiring the given fields, in order.
func NewSchema(fields ...string) Schema {
	return Schema{fields: fields}
}

// Predefined task schemas.
var (
	ClassificationSchema = NewSchema("text", "label")
	PairwiseSchema       = NewSchema("premise", "hypothesis", "label")
	TranslationSchema    = NewSchema("translation")
)

// Fields returns the required field names in declaration order.
func (s Schema) Fields() []string {
	out := make([]string, len(s.fields))
	copy(out, s.fields)
	return out
}

// Validate checks that the record carries every required field.
// A missing field is an ingestion error naming the field.
func (s Schema) Validate(rec Record) error {
	for _, f := range s.fields {
		if _, ok := rec[f]; !ok {
			return types.NewError(types.ErrMissingField, fmt.Sprintf("record is missing required field %q", f))
		}
	}
	return nil
}

// Dataset is an ordered sequence of Records, conceptually a table.
// Insertion order reflects file enumeration order concatenated with
// intra-file order.
type Dataset struct {
	records []Record
}

// New creates an empty Dataset.
func New() *Dataset {
	return &Dataset{}
}

// FromRecords creates a Dataset over the given records.
func FromRecords(records []Record) *Dataset {
	return &Dataset{records: records}
}

// Append adds records to the end of the dataset.
func (d *Dataset) Append(records ...Record) {
	d.records = append(d.records, records...)
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Record returns the record at index i.
func (d *Dataset) Record(i int) Record {
	return d.records[i]
}

// Records returns the underlying record slice. Callers must not mutate it.
func (d *Dataset) Records() []Record {
	return d.records
}

// Batch is a columnar view over a range of records: field name to the
// ordered values of that field. Feature preparers operate on Batches rather
// than single records.
type Batch map[string][]any

// Len returns the number of rows in the batch (0 for an empty batch).
func (b Batch) Len() int {
	for _, col := range b {
		return len(col)
	}
	return 0
}

// Batch returns a columnar view over records [lo, hi).
func (d *Dataset) Batch(lo, hi int) Batch {
	if lo < 0 {
		lo = 0
	}
	if hi > len(d.records) {
		hi = len(d.records)
	}
	batch := make(Batch)
	for i := lo; i < hi; i++ {
		for field, val := range d.records[i] {
			batch[field] = append(batch[field], val)
		}
	}
	return batch
}

// Column returns all values of one field, in record order.
// Records without the field contribute a nil value.
func (d *Dataset) Column(field string) []any {
	out := make([]any, len(d.records))
	for i, rec := range d.records {
		out[i] = rec[field]
	}
	return out
}

// AsString converts a record field value to its string form.
// JSON and YAML decoders produce untyped values, so labels read from
// different formats may arrive as string, int, or float64.
func AsString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; render integral values without
		// a fractional part so "1" and 1 map to the same label.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// AsInt converts a record field value to an int, reporting failure for
// values with no integer form.
func AsInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != float64(int64(t)) {
			return 0, fmt.Errorf("value %v is not an integer", t)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("value %v (%T) is not an integer", v, v)
	}
}
