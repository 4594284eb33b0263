package decode

import (
	"context"
	"encoding/xml"
	"os"

	"github.com/marrowai/finetune/dataset"
	"github.com/marrowai/finetune/types"
)

// XMLDecoder decodes XML files where each top-level <record> element's named
// child elements become Record fields.
type XMLDecoder struct{}

// NewXMLDecoder creates an XMLDecoder.
func NewXMLDecoder() *XMLDecoder {
	return &XMLDecoder{}
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type xmlRecord struct {
	Fields []xmlField `xml:",any"`
}

type xmlDocument struct {
	Records []xmlRecord `xml:"record"`
}

// Decode reads an XML file and returns one Record per <record> element.
func (d *XMLDecoder) Decode(ctx context.Context, path string, _ dataset.Schema) ([]dataset.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewError(types.ErrIngestion, "reading xml file").
			WithPath(path).WithCause(err)
	}

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, types.NewError(types.ErrIngestion, "parsing xml file").
			WithPath(path).WithCause(err)
	}

	records := make([]dataset.Record, 0, len(doc.Records))
	for _, xr := range doc.Records {
		rec := make(dataset.Record, len(xr.Fields))
		for _, f := range xr.Fields {
			rec[f.XMLName.Local] = f.Value
		}
		records = append(records, rec)
	}
	return records, nil
}

// SupportedTypes returns the extensions handled by XMLDecoder.
func (d *XMLDecoder) SupportedTypes() []string {
	return []string{".xml"}
}
