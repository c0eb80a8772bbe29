package json

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDecoderUsesNumber(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"n": 12345678901234567890}`))

	var out map[string]interface{}
	require.NoError(t, dec.Decode(&out))

	n, ok := out["n"].(Number)
	require.True(t, ok, "expected json.Number, got %T", out["n"])
	assert.Equal(t, "12345678901234567890", n.String())
}

func TestMarshalToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarshalToWriter(&buf, map[string]string{"a": "<b>"}))
	assert.Equal(t, "{\"a\":\"<b>\"}\n", buf.String())
}

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("data")
	PutBuffer(buf)

	again := GetBuffer()
	assert.Equal(t, 0, again.Len())
	PutBuffer(again)
}

func BenchmarkMarshalToWriter(b *testing.B) {
	record := map[string]interface{}{
		"name":  "Test Record",
		"value": 1.5,
		"tags":  []string{"tag1", "tag2", "tag3"},
	}
	var buf bytes.Buffer
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := MarshalToWriter(&buf, record); err != nil {
			b.Fatal(err)
		}
	}
}
