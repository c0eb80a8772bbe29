// Package json provides the json and jsonl source connectors.
package json

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/nested"
)

// JSONFormat represents the JSON file layout
type JSONFormat string

const (
	// JSONDocument is a single JSON document of any shape
	JSONDocument JSONFormat = "json"
	// JSONLines is line-delimited JSON (JSONL/NDJSON); the records become
	// one sequence
	JSONLines JSONFormat = "jsonl"
)

// JSONSource reads one JSON document, or a stream of JSON lines, from a
// local file, stdin or object storage.
type JSONSource struct {
	*base.BaseConnector

	deps        core.Deps
	path        string
	compression string
	format      JSONFormat
}

// NewJSONSource creates a source for a single JSON document.
func NewJSONSource(cfg *config.Config, deps core.Deps) (core.Source, error) {
	return newJSONSource(cfg, deps, JSONDocument), nil
}

// NewJSONLinesSource creates a source for line-delimited JSON.
func NewJSONLinesSource(cfg *config.Config, deps core.Deps) (core.Source, error) {
	return newJSONSource(cfg, deps, JSONLines), nil
}

func newJSONSource(cfg *config.Config, deps core.Deps, format JSONFormat) *JSONSource {
	return &JSONSource{
		BaseConnector: base.NewBaseConnector(string(format), core.ConnectorTypeSource, deps.Logger),
		deps:          deps,
		path:          cfg.Input.Path,
		compression:   cfg.Input.Compression,
		format:        format,
	}
}

// Read decodes the whole input. Object keys keep their document order.
func (s *JSONSource) Read(ctx context.Context) (nested.Value, error) {
	r, err := base.OpenInput(ctx, s.deps, s.path, s.compression)
	if err != nil {
		return nested.Value{}, err
	}
	defer r.Close()

	var v nested.Value
	if s.format == JSONLines {
		v, err = nested.DecodeJSONLines(r)
	} else {
		v, err = nested.DecodeJSON(r)
	}
	if err != nil {
		return nested.Value{}, err
	}

	s.GetLogger().Debug("read input",
		zap.String("path", s.path),
		zap.String("kind", v.Kind().String()),
		zap.Int("length", v.Len()))
	return v, nil
}

// Close has nothing to release; the input is closed by Read.
func (s *JSONSource) Close(_ context.Context) error {
	return nil
}
