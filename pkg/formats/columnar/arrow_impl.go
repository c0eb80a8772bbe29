package columnar

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/tidify/pkg/models"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/schema"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// arrowWriter implements Writer for the Arrow IPC file format
type arrowWriter struct {
	fileWriter *ipc.FileWriter
	batches    *batcher
}

func newArrowWriter(w io.Writer, config *WriterConfig) (*arrowWriter, error) {
	arrowSchema := toArrowSchema(config.Schema)
	pool := memory.NewGoAllocator()

	opts := []ipc.Option{ipc.WithSchema(arrowSchema), ipc.WithAllocator(pool)}
	switch strings.ToLower(config.Compression) {
	case "", "none", "snappy":
	case "lz4":
		opts = append(opts, ipc.WithLZ4())
	case "zstd":
		opts = append(opts, ipc.WithZstd())
	default:
		return nil, unsupportedCompression(Arrow, config.Compression)
	}

	fw, err := ipc.NewFileWriter(sink{w}, opts...)
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to create Arrow writer")
	}

	return &arrowWriter{
		fileWriter: fw,
		batches:    newBatcher(config, arrowSchema, pool),
	}, nil
}

func (aw *arrowWriter) WriteTable(t *tidy.Table) error {
	return aw.batches.write(t, aw.fileWriter.Write)
}

func (aw *arrowWriter) Close() error {
	aw.batches.release()
	if err := aw.fileWriter.Close(); err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to close Arrow writer")
	}
	return nil
}

func (aw *arrowWriter) Format() Format {
	return Arrow
}

func (aw *arrowWriter) RowsWritten() int64 {
	return aw.batches.rows
}

// batcher turns table rows into Arrow records of at most batchSize rows.
type batcher struct {
	schema    *models.Schema
	builder   *array.RecordBuilder
	batchSize int
	rows      int64
}

func newBatcher(config *WriterConfig, arrowSchema *arrow.Schema, pool memory.Allocator) *batcher {
	return &batcher{
		schema:    config.Schema,
		builder:   array.NewRecordBuilder(pool, arrowSchema),
		batchSize: config.BatchSize,
	}
}

func (b *batcher) write(t *tidy.Table, emit func(arrow.Record) error) error {
	aligned := t.Select(b.schema.Names()...)

	pending := 0
	flush := func() error {
		if pending == 0 {
			return nil
		}
		record := b.builder.NewRecord()
		defer record.Release()
		if err := emit(record); err != nil {
			return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to write record batch")
		}
		b.rows += int64(pending)
		pending = 0
		return nil
	}

	for i, row := range aligned.Rows {
		for j, cell := range row {
			if err := appendCell(b.builder.Field(j), cell); err != nil {
				return tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to append value").
					WithDetail("column", b.schema.Fields[j].Name).
					WithDetail("row", i)
			}
		}
		pending++
		if pending >= b.batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func (b *batcher) release() {
	b.builder.Release()
}

// Schema conversion helpers

func toArrowSchema(s *models.Schema) *arrow.Schema {
	fields := make([]arrow.Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = arrow.Field{
			Name:     f.Name,
			Type:     toArrowType(f.Type),
			Nullable: f.Nullable || f.Type == models.TypeNull,
		}
	}
	return arrow.NewSchema(fields, nil)
}

func toArrowType(t models.FieldType) arrow.DataType {
	switch t {
	case models.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case models.TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case models.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case models.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

func appendCell(builder array.Builder, cell nested.Scalar) error {
	if cell.IsNull() || cell.IsAbsent() {
		builder.AppendNull()
		return nil
	}

	switch b := builder.(type) {
	case *array.BooleanBuilder:
		if cell.Kind() != nested.KindBool {
			return mismatch(cell, "boolean")
		}
		b.Append(cell.BoolValue())

	case *array.Int64Builder:
		v, ok := cell.Int64()
		if !ok {
			return mismatch(cell, "integer")
		}
		b.Append(v)

	case *array.Float64Builder:
		v, ok := cell.Float64()
		if !ok {
			return mismatch(cell, "float")
		}
		b.Append(v)

	case *array.TimestampBuilder:
		t, ok := schema.ParseTimestamp(cell.Text())
		if !ok {
			return mismatch(cell, "timestamp")
		}
		ts, err := arrow.TimestampFromTime(t, arrow.Microsecond)
		if err != nil {
			return err
		}
		b.Append(ts)

	case *array.StringBuilder:
		b.Append(cell.String())

	default:
		return tidyerrors.New(tidyerrors.ErrorTypeInternal, "unsupported builder type")
	}

	return nil
}

func mismatch(cell nested.Scalar, want string) error {
	return tidyerrors.New(tidyerrors.ErrorTypeData, "value does not match column type").
		WithDetail("kind", cell.Kind().String()).
		WithDetail("type", want)
}

// Reading

func readArrow(data []byte) (*tidy.Table, error) {
	fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to open Arrow file")
	}
	defer fr.Close()

	t := &tidy.Table{Columns: fieldNames(fr.Schema())}
	for i := 0; i < fr.NumRecords(); i++ {
		record, err := fr.Record(i)
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to read Arrow record")
		}
		appendRecord(t, record)
	}
	return t, nil
}

func fieldNames(s *arrow.Schema) []string {
	names := make([]string, s.NumFields())
	for i := range names {
		names[i] = s.Field(i).Name
	}
	return names
}

func appendRecord(t *tidy.Table, record arrow.Record) {
	for i := 0; i < int(record.NumRows()); i++ {
		row := make([]nested.Scalar, record.NumCols())
		for j := range row {
			row[j] = cellAt(record.Column(j), i)
		}
		t.Rows = append(t.Rows, row)
	}
}

func cellAt(col arrow.Array, i int) nested.Scalar {
	if col.IsNull(i) {
		return nested.Null()
	}

	switch c := col.(type) {
	case *array.Boolean:
		return nested.Bool(c.Value(i))
	case *array.Int64:
		return nested.Int(c.Value(i))
	case *array.Float64:
		return nested.Float(c.Value(i))
	case *array.String:
		return nested.String(c.Value(i))
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		return nested.String(c.Value(i).ToTime(unit).UTC().Format(time.RFC3339Nano))
	default:
		return nested.String(col.ValueStr(i))
	}
}

func unsupportedCompression(f Format, name string) error {
	return tidyerrors.New(tidyerrors.ErrorTypeCapability, "unsupported compression").
		WithDetail("format", string(f)).
		WithDetail("compression", name)
}
