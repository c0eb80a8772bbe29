package columnar

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// parquetWriter implements Writer for Parquet format. Every batch becomes
// one row group.
type parquetWriter struct {
	fileWriter *pqarrow.FileWriter
	batches    *batcher
}

func newParquetWriter(w io.Writer, config *WriterConfig) (*parquetWriter, error) {
	codec, err := parquetCompression(config.Compression)
	if err != nil {
		return nil, err
	}

	arrowSchema := toArrowSchema(config.Schema)
	pool := memory.NewGoAllocator()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithAllocator(pool),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(pool),
		pqarrow.WithStoreSchema(),
	)

	fw, err := pqarrow.NewFileWriter(arrowSchema, sink{w}, props, arrowProps)
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to create Parquet writer")
	}

	return &parquetWriter{
		fileWriter: fw,
		batches:    newBatcher(config, arrowSchema, pool),
	}, nil
}

func (pw *parquetWriter) WriteTable(t *tidy.Table) error {
	return pw.batches.write(t, pw.fileWriter.Write)
}

func (pw *parquetWriter) Close() error {
	pw.batches.release()
	if err := pw.fileWriter.Close(); err != nil {
		return tidyerrors.Wrap(err, tidyerrors.ErrorTypeFile, "failed to close Parquet writer")
	}
	return nil
}

func (pw *parquetWriter) Format() Format {
	return Parquet
}

func (pw *parquetWriter) RowsWritten() int64 {
	return pw.batches.rows
}

func parquetCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	default:
		return compress.Codecs.Uncompressed, unsupportedCompression(Parquet, name)
	}
}

func readParquet(data []byte) (*tidy.Table, error) {
	pool := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(data),
		parquet.NewReaderProperties(pool), pqarrow.ArrowReadProperties{}, pool)
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to read Parquet file")
	}
	defer tbl.Release()

	t := &tidy.Table{Columns: fieldNames(tbl.Schema())}
	tr := array.NewTableReader(tbl, 1024)
	defer tr.Release()
	for tr.Next() {
		appendRecord(t, tr.Record())
	}
	if err := tr.Err(); err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "failed to read Parquet rows")
	}
	return t, nil
}
