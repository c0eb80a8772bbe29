package columnar

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/linkedin/goavro/v2"

	jsonpool "github.com/ajitpratap0/tidify/pkg/json"
	"github.com/ajitpratap0/tidify/pkg/models"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/schema"
	stringpool "github.com/ajitpratap0/tidify/pkg/strings"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// columnsMetaKey stores the original column names in the container
// header, since Avro field names cannot hold separators like ".".
const columnsMetaKey = "tidify.columns"

// avroWriter implements Writer for the Avro object container format
type avroWriter struct {
	schema         *models.Schema
	fieldNames     []string
	unionNames     []string
	ocfWriter      *goavro.OCFWriter
	batchSize      int
	recordsWritten int64
}

func newAvroWriter(w io.Writer, config *WriterConfig) (*avroWriter, error) {
	compression, err := avroCompression(config.Compression)
	if err != nil {
		return nil, err
	}

	fieldNames := avroFieldNames(config.Schema.Names())
	avroSchema, unionNames, err := toAvroSchema(config.Schema, fieldNames)
	if err != nil {
		return nil, err
	}

	codec, err := goavro.NewCodec(avroSchema)
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeInternal, "failed to create Avro codec")
	}

	columns, err := jsonpool.Marshal(config.Schema.Names())
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeInternal, "failed to encode column names")
	}

	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: compression,
		MetaData:        map[string][]byte{columnsMetaKey: columns},
	})
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to create Avro writer")
	}

	return &avroWriter{
		schema:     config.Schema,
		fieldNames: fieldNames,
		unionNames: unionNames,
		ocfWriter:  ocfWriter,
		batchSize:  config.BatchSize,
	}, nil
}

func (aw *avroWriter) WriteTable(t *tidy.Table) error {
	aligned := t.Select(aw.schema.Names()...)

	batch := make([]interface{}, 0, aw.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := aw.ocfWriter.Append(batch); err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to write Avro records")
		}
		aw.recordsWritten += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for i, row := range aligned.Rows {
		native, err := aw.rowToNative(row)
		if err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to convert row").WithDetail("row", i)
		}
		batch = append(batch, native)
		if len(batch) >= aw.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func (aw *avroWriter) rowToNative(row []nested.Scalar) (map[string]interface{}, error) {
	native := make(map[string]interface{}, len(row))
	for j, cell := range row {
		if cell.IsNull() || cell.IsAbsent() {
			native[aw.fieldNames[j]] = nil
			continue
		}
		value, err := avroValue(aw.schema.Fields[j].Type, cell)
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to convert value").
				WithDetail("column", aw.schema.Fields[j].Name)
		}
		native[aw.fieldNames[j]] = goavro.Union(aw.unionNames[j], value)
	}
	return native, nil
}

func avroValue(t models.FieldType, cell nested.Scalar) (interface{}, error) {
	switch t {
	case models.TypeBoolean:
		if cell.Kind() != nested.KindBool {
			return nil, mismatch(cell, "boolean")
		}
		return cell.BoolValue(), nil
	case models.TypeInteger:
		v, ok := cell.Int64()
		if !ok {
			return nil, mismatch(cell, "integer")
		}
		return v, nil
	case models.TypeFloat:
		v, ok := cell.Float64()
		if !ok {
			return nil, mismatch(cell, "float")
		}
		return v, nil
	case models.TypeTimestamp:
		ts, ok := schema.ParseTimestamp(cell.Text())
		if !ok {
			return nil, mismatch(cell, "timestamp")
		}
		return ts, nil
	default:
		return cell.String(), nil
	}
}

// Close has nothing to flush: OCFWriter.Append writes whole blocks.
func (aw *avroWriter) Close() error {
	return nil
}

func (aw *avroWriter) Format() Format {
	return Avro
}

func (aw *avroWriter) RowsWritten() int64 {
	return aw.recordsWritten
}

func avroCompression(name string) (string, error) {
	switch strings.ToLower(name) {
	case "", "none", "null":
		return goavro.CompressionNullLabel, nil
	case "snappy":
		return goavro.CompressionSnappyLabel, nil
	case "gzip", "deflate":
		return goavro.CompressionDeflateLabel, nil
	default:
		return "", unsupportedCompression(Avro, name)
	}
}

// Schema conversion helpers

// toAvroSchema renders s as an Avro record schema whose fields are all
// nullable unions. It also returns the union member name used to wrap
// values of each field.
func toAvroSchema(s *models.Schema, fieldNames []string) (string, []string, error) {
	fields := make([]map[string]interface{}, len(s.Fields))
	unionNames := make([]string, len(s.Fields))

	for i, field := range s.Fields {
		avroType, unionName := toAvroType(field.Type)
		unionNames[i] = unionName
		fields[i] = map[string]interface{}{
			"name":    fieldNames[i],
			"type":    []interface{}{"null", avroType},
			"default": nil,
		}
	}

	name := s.Name
	if name == "" {
		name = "row"
	}
	schemaMap := map[string]interface{}{
		"type":      "record",
		"name":      avroName(name),
		"namespace": "tidify",
		"fields":    fields,
	}

	data, err := jsonpool.Marshal(schemaMap)
	if err != nil {
		return "", nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeInternal, "failed to encode Avro schema")
	}
	return string(data), unionNames, nil
}

func toAvroType(t models.FieldType) (interface{}, string) {
	switch t {
	case models.TypeBoolean:
		return "boolean", "boolean"
	case models.TypeInteger:
		return "long", "long"
	case models.TypeFloat:
		return "double", "double"
	case models.TypeTimestamp:
		return map[string]interface{}{"type": "long", "logicalType": "timestamp-micros"}, "long.timestamp-micros"
	default:
		return "string", "string"
	}
}

// avroFieldNames maps column names onto valid, distinct Avro names.
func avroFieldNames(columns []string) []string {
	used := make(map[string]bool, len(columns))
	out := make([]string, len(columns))
	for i, c := range columns {
		base := avroName(c)
		name := base
		for n := 2; used[name]; n++ {
			name = stringpool.Sprintf("%s_%d", base, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// avroName replaces every character outside [A-Za-z0-9_] with '_' and
// prefixes names that would start with a digit.
func avroName(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// Reading

func readAvro(data []byte) (*tidy.Table, error) {
	ocfReader, err := goavro.NewOCFReader(bytes.NewReader(data))
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to open Avro file")
	}

	var parsed struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	if err := jsonpool.Unmarshal([]byte(ocfReader.Codec().Schema()), &parsed); err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to parse Avro schema")
	}
	fieldNames := make([]string, len(parsed.Fields))
	for i, f := range parsed.Fields {
		fieldNames[i] = f.Name
	}

	columns := fieldNames
	if raw, ok := ocfReader.MetaData()[columnsMetaKey]; ok {
		var stored []string
		if err := jsonpool.Unmarshal(raw, &stored); err == nil && len(stored) == len(fieldNames) {
			columns = stored
		}
	}

	t := &tidy.Table{Columns: columns}
	for ocfReader.Scan() {
		datum, err := ocfReader.Read()
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to read Avro record")
		}
		record, _ := datum.(map[string]interface{})
		row := make([]nested.Scalar, len(fieldNames))
		for j, name := range fieldNames {
			row[j] = avroCell(record[name])
		}
		t.Rows = append(t.Rows, row)
	}
	if err := ocfReader.Err(); err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to read Avro file")
	}
	return t, nil
}

func avroCell(v interface{}) nested.Scalar {
	if union, ok := v.(map[string]interface{}); ok {
		for _, inner := range union {
			v = inner
		}
	}

	switch x := v.(type) {
	case nil:
		return nested.Null()
	case bool:
		return nested.Bool(x)
	case int64:
		return nested.Int(x)
	case int32:
		return nested.Int(int64(x))
	case float64:
		return nested.Float(x)
	case float32:
		return nested.Float(float64(x))
	case string:
		return nested.String(x)
	case time.Time:
		return nested.String(x.UTC().Format(time.RFC3339Nano))
	default:
		return nested.String(stringpool.ValueToString(x))
	}
}
