// Package compression wraps input and output streams with compression
// codecs so sources and destinations can read and write compressed files
// transparently.
//
// # Overview
//
// Supported algorithms:
//   - Gzip: wide compatibility, good compression
//   - Zstd: best compression ratio, good speed
//   - Snappy/S2: framed streams, best for speed
//   - LZ4: frame format, extremely fast
//
// # Usage
//
//	w, err := compression.NewWriter(file, compression.Zstd, compression.Default)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
// Readers can name the algorithm, derive it from a file name with
// FromExtension, or sniff it from the stream with Detect.
package compression

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents framed snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 frame compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 stream compression
	S2 Algorithm = "s2"
)

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

// Algorithms lists every supported algorithm except None.
func Algorithms() []Algorithm {
	return []Algorithm{Gzip, Zstd, Snappy, S2, LZ4}
}

// ParseAlgorithm parses an algorithm name. The empty string parses as None.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case "", None:
		return None, nil
	case Gzip, Snappy, LZ4, Zstd, S2:
		return a, nil
	case "gz":
		return Gzip, nil
	case "zst":
		return Zstd, nil
	default:
		return None, tidyerrors.New(tidyerrors.ErrorTypeCapability, "unsupported compression algorithm").
			WithDetail("algorithm", name)
	}
}

var extensions = map[string]Algorithm{
	".gz":     Gzip,
	".gzip":   Gzip,
	".zst":    Zstd,
	".zstd":   Zstd,
	".snappy": Snappy,
	".sz":     Snappy,
	".s2":     S2,
	".lz4":    LZ4,
}

// FromExtension returns the algorithm implied by a file name's last
// extension, or None.
func FromExtension(name string) Algorithm {
	lower := strings.ToLower(name)
	i := strings.LastIndexByte(lower, '.')
	if i < 0 {
		return None
	}
	if a, ok := extensions[lower[i:]]; ok {
		return a
	}
	return None
}

// Extension returns the conventional file extension for a.
func (a Algorithm) Extension() string {
	switch a {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	case Snappy:
		return ".snappy"
	case S2:
		return ".s2"
	case LZ4:
		return ".lz4"
	default:
		return ""
	}
}

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic    = []byte{0x04, 0x22, 0x4d, 0x18}
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
	s2Magic     = []byte("\xff\x06\x00\x00S2sTwO")
)

// Detect peeks at the start of r and reports the algorithm whose magic
// bytes it carries, or None. Nothing is consumed from r.
func Detect(r *bufio.Reader) Algorithm {
	head, _ := r.Peek(len(snappyMagic))
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	case bytes.HasPrefix(head, lz4Magic):
		return LZ4
	case bytes.HasPrefix(head, snappyMagic):
		return Snappy
	case bytes.HasPrefix(head, s2Magic):
		return S2
	default:
		return None
	}
}

// NewWriter returns a writer compressing into w. Closing it flushes the
// codec but does not close w.
func NewWriter(w io.Writer, algorithm Algorithm, level Level) (io.WriteCloser, error) {
	switch algorithm {
	case None, "":
		return nopWriteCloser{w}, nil
	case Gzip:
		gw, err := gzip.NewWriterLevel(w, mapGzipLevel(level))
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeValidation, "invalid gzip level")
		}
		return gw, nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(mapZstdLevel(level)))
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeInternal, "failed to create zstd encoder")
		}
		return enc, nil
	case Snappy:
		return snappy.NewBufferedWriter(w), nil
	case S2:
		return s2.NewWriter(w, mapS2Level(level)...), nil
	case LZ4:
		lw := lz4.NewWriter(w)
		if err := lw.Apply(lz4.CompressionLevelOption(mapLZ4Level(level))); err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeInternal, "failed to configure lz4 writer")
		}
		return lw, nil
	default:
		return nil, tidyerrors.New(tidyerrors.ErrorTypeCapability, "unsupported compression algorithm").
			WithDetail("algorithm", string(algorithm))
	}
}

// NewReader returns a reader decompressing r. Closing it releases codec
// resources but does not close r.
func NewReader(r io.Reader, algorithm Algorithm) (io.ReadCloser, error) {
	switch algorithm {
	case None, "":
		return io.NopCloser(r), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "invalid gzip stream")
		}
		return gr, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "invalid zstd stream")
		}
		return dec.IOReadCloser(), nil
	case Snappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, tidyerrors.New(tidyerrors.ErrorTypeCapability, "unsupported compression algorithm").
			WithDetail("algorithm", string(algorithm))
	}
}

// NewDetectingReader sniffs the algorithm from the stream and returns a
// decompressing reader together with the detected algorithm.
func NewDetectingReader(r io.Reader) (io.ReadCloser, Algorithm, error) {
	br := bufio.NewReader(r)
	algorithm := Detect(br)
	rc, err := NewReader(br, algorithm)
	return rc, algorithm, err
}

// Compress compresses data in memory.
func Compress(algorithm Algorithm, level Level, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, algorithm, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "compression failed")
	}
	if err := w.Close(); err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "compression failed")
	}
	return buf.Bytes(), nil
}

// Decompress decompresses data in memory.
func Decompress(algorithm Algorithm, data []byte) ([]byte, error) {
	r, err := NewReader(bytes.NewReader(data), algorithm)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, tidyerrors.Wrap(err, tidyerrors.ErrorTypeData, "decompression failed")
	}
	return out, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	case Better:
		return 7
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapS2Level(level Level) []s2.WriterOption {
	switch level {
	case Better:
		return []s2.WriterOption{s2.WriterBetterCompression()}
	case Best:
		return []s2.WriterOption{s2.WriterBestCompression()}
	default:
		return nil
	}
}
