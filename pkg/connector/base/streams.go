package base

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/compression"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/storage"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// OpenInput opens path for reading and strips compression. An empty
// algorithm name is taken from the path's extension and, failing that,
// sniffed from the stream's magic bytes.
func OpenInput(ctx context.Context, deps core.Deps, path, algorithm string) (io.ReadCloser, error) {
	deps = deps.WithDefaults()

	loc, err := storage.ParseLocation(path)
	if err != nil {
		return nil, err
	}

	alg, err := compression.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	if algorithm == "" {
		alg = compression.FromExtension(loc.Key)
	}

	raw, err := deps.Storage.Open(ctx, loc)
	if err != nil {
		return nil, err
	}

	var r io.ReadCloser
	if algorithm == "" && alg == compression.None {
		r, alg, err = compression.NewDetectingReader(raw)
	} else {
		r, err = compression.NewReader(raw, alg)
	}
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	deps.Logger.Debug("opened input",
		zap.String("location", loc.String()),
		zap.String("compression", string(alg)))

	return &stack{Reader: r, closers: []io.Closer{r, raw}}, nil
}

// CreateOutput opens path for writing through the named compression. An
// empty algorithm name is taken from the path's extension.
func CreateOutput(ctx context.Context, deps core.Deps, path, algorithm string) (io.WriteCloser, error) {
	deps = deps.WithDefaults()

	loc, err := storage.ParseLocation(path)
	if err != nil {
		return nil, err
	}

	alg, err := compression.ParseAlgorithm(algorithm)
	if err != nil {
		return nil, err
	}
	if algorithm == "" {
		alg = compression.FromExtension(loc.Key)
	}

	raw, err := deps.Storage.Create(ctx, loc)
	if err != nil {
		return nil, err
	}

	w, err := compression.NewWriter(raw, alg, compression.Default)
	if err != nil {
		_ = raw.Close()
		return nil, err
	}

	deps.Logger.Debug("opened output",
		zap.String("location", loc.String()),
		zap.String("compression", string(alg)))

	return &stack{Writer: w, closers: []io.Closer{w, raw}}, nil
}

// stack closes a codec and the stream beneath it, innermost first.
type stack struct {
	io.Reader
	io.Writer
	closers []io.Closer
	closed  bool
}

func (s *stack) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	var typed *tidyerrors.Error
	if first == nil || errors.As(first, &typed) {
		return first
	}
	return tidyerrors.Wrap(first, tidyerrors.ErrorTypeFile, "failed to close stream")
}
