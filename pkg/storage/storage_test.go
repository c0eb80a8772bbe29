package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw  string
		want Location
	}{
		{"-", Location{Scheme: SchemeStdio}},
		{"data/in.json", Location{Scheme: SchemeFile, Key: "data/in.json"}},
		{"file:///tmp/out.csv", Location{Scheme: SchemeFile, Key: "/tmp/out.csv"}},
		{"s3://bucket/dir/out.parquet", Location{Scheme: SchemeS3, Bucket: "bucket", Key: "dir/out.parquet"}},
		{"GS://bucket/o.avro", Location{Scheme: SchemeGCS, Bucket: "bucket", Key: "o.avro"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLocation(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLocationErrors(t *testing.T) {
	for _, raw := range []string{"", "s3://bucket", "s3:///key", "gs://bucket/", "file://"} {
		_, err := ParseLocation(raw)
		assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeValidation), raw)
	}

	_, err := ParseLocation("ftp://host/file")
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeCapability))
}

func TestLocationHelpers(t *testing.T) {
	loc, err := ParseLocation("s3://b/k/rows.CSV")
	require.NoError(t, err)
	assert.Equal(t, "s3://b/k/rows.CSV", loc.String())
	assert.Equal(t, ".csv", loc.Ext())
	assert.Equal(t, "text/csv", loc.ContentType())
	assert.True(t, loc.IsRemote())

	local := Location{Scheme: SchemeFile, Key: "x.bin"}
	assert.Equal(t, "application/octet-stream", local.ContentType())
	assert.False(t, local.IsRemote())
	assert.Equal(t, "-", Location{Scheme: SchemeStdio}.String())
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	o := NewOpener(Options{}, zaptest.NewLogger(t))
	defer o.Close()

	loc := Location{Scheme: SchemeFile, Key: filepath.Join(t.TempDir(), "nested", "dir", "out.txt")}
	w, err := o.Create(ctx, loc)
	require.NoError(t, err)
	_, err = io.WriteString(w, "hello")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := o.Open(ctx, loc)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOpenMissingFile(t *testing.T) {
	o := NewOpener(Options{}, nil)
	_, err := o.Open(context.Background(), Location{Scheme: SchemeFile, Key: filepath.Join(t.TempDir(), "missing.json")})
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeFile))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStdio(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	o := NewOpener(Options{}, nil)
	o.Stdin = strings.NewReader(`{"a": 1}`)
	o.Stdout = &out

	r, err := o.Open(ctx, Location{Scheme: SchemeStdio})
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, string(data))

	w, err := o.Create(ctx, Location{Scheme: SchemeStdio})
	require.NoError(t, err)
	_, _ = io.WriteString(w, "a\n1\n")
	require.NoError(t, w.Close())
	_, _ = io.WriteString(w, "still open\n")
	assert.Equal(t, "a\n1\nstill open\n", out.String())
}

func TestPipeWriter(t *testing.T) {
	var received bytes.Buffer
	w := newPipeWriter(func(r io.Reader) error {
		_, err := io.Copy(&received, r)
		return err
	})

	_, err := io.WriteString(w, "part one, ")
	require.NoError(t, err)
	_, err = io.WriteString(w, "part two")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, "part one, part two", received.String())
}

func TestPipeWriterUploadError(t *testing.T) {
	boom := errors.New("access denied")
	w := newPipeWriter(func(r io.Reader) error {
		return boom
	})

	// writes fail once the upload has given up
	var err error
	for i := 0; i < 100 && err == nil; i++ {
		_, err = w.Write([]byte("x"))
	}
	assert.ErrorIs(t, err, boom)

	err = w.Close()
	assert.True(t, tidyerrors.IsType(err, tidyerrors.ErrorTypeConnection))
	assert.ErrorIs(t, err, boom)
}

func TestOptionsFromConfig(t *testing.T) {
	got := OptionsFromConfig(config.StorageConfig{Region: "eu-west-1", Endpoint: "http://localhost:9000", Concurrency: 3})
	assert.Equal(t, Options{Region: "eu-west-1", Endpoint: "http://localhost:9000", Concurrency: 3}, got)
}
