package columnar

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/formats/columnar"
	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/tidy"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

func sampleTable() *tidy.Table {
	return &tidy.Table{
		Columns: []string{"index", "name", "score"},
		Rows: [][]nested.Scalar{
			{nested.Int(0), nested.String("Ann"), nested.Float(1.5)},
			{nested.Int(1), nested.String("Bob"), nested.Absent()},
		},
	}
}

func TestColumnarDestination(t *testing.T) {
	for _, format := range columnar.Formats() {
		t.Run(string(format), func(t *testing.T) {
			cfg := config.NewConfig()
			cfg.Output.Path = filepath.Join(t.TempDir(), "people"+format.Extension())
			cfg.Output.Columnar.Compression = "none"

			dst, err := NewDestinationFactory(format)(cfg, core.Deps{Logger: zaptest.NewLogger(t)})
			require.NoError(t, err)
			require.NoError(t, dst.Write(context.Background(), sampleTable()))
			require.NoError(t, dst.Close(context.Background()))

			f, err := os.Open(cfg.Output.Path)
			require.NoError(t, err)
			defer f.Close()

			got, err := columnar.ReadTable(f, format)
			require.NoError(t, err)
			assert.Equal(t, []string{"index", "name", "score"}, got.Columns)
			require.Equal(t, 2, got.Len())
			assert.Equal(t, nested.Float(1.5), got.Rows[0][2])
			assert.True(t, got.Rows[1][2].IsNull())
		})
	}
}

func TestColumnarDestinationNoColumns(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Output.Path = filepath.Join(t.TempDir(), "empty.parquet")

	dst, err := NewDestinationFactory(columnar.Parquet)(cfg, core.Deps{})
	require.NoError(t, err)
	err = dst.Write(context.Background(), &tidy.Table{Rows: [][]nested.Scalar{{}}})
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeData))
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "people", schemaName("/tmp/out/people.parquet"))
	assert.Equal(t, "orders", schemaName("s3://bucket/2024/orders.avro"))
	assert.Equal(t, "tidy", schemaName("-"))
}
