// Package yaml provides the yaml source connector.
package yaml

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/base"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/nested"
)

// YAMLSource reads a YAML document. A stream of several documents is read
// as one sequence.
type YAMLSource struct {
	*base.BaseConnector

	deps        core.Deps
	path        string
	compression string
}

// NewYAMLSource creates a yaml source.
func NewYAMLSource(cfg *config.Config, deps core.Deps) (core.Source, error) {
	return &YAMLSource{
		BaseConnector: base.NewBaseConnector("yaml", core.ConnectorTypeSource, deps.Logger),
		deps:          deps,
		path:          cfg.Input.Path,
		compression:   cfg.Input.Compression,
	}, nil
}

func (s *YAMLSource) Read(ctx context.Context) (nested.Value, error) {
	r, err := base.OpenInput(ctx, s.deps, s.path, s.compression)
	if err != nil {
		return nested.Value{}, err
	}
	defer r.Close()

	v, err := nested.DecodeYAML(r)
	if err != nil {
		return nested.Value{}, err
	}

	s.GetLogger().Debug("read input",
		zap.String("path", s.path),
		zap.String("kind", v.Kind().String()))
	return v, nil
}

func (s *YAMLSource) Close(_ context.Context) error {
	return nil
}
