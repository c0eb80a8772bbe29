// Package base provides the pieces every tidify connector shares: the
// embedded BaseConnector, compressed stream helpers over storage
// locations, and a retry policy for connection setup.
//
// # Usage
//
// Connectors embed BaseConnector to get Name and a scoped logger:
//
//	type MySource struct {
//	    *base.BaseConnector
//	    // connector-specific fields
//	}
//
//	func NewMySource(cfg *config.Config, deps core.Deps) (core.Source, error) {
//	    return &MySource{
//	        BaseConnector: base.NewBaseConnector("my-source", core.ConnectorTypeSource, deps.Logger),
//	    }, nil
//	}
package base

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/connector/core"
)

// BaseConnector holds the identity and logger of a connector.
type BaseConnector struct {
	name          string
	connectorType core.ConnectorType
	logger        *zap.Logger
}

// NewBaseConnector creates a base connector. A nil logger discards logs.
func NewBaseConnector(name string, connectorType core.ConnectorType, logger *zap.Logger) *BaseConnector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseConnector{
		name:          name,
		connectorType: connectorType,
		logger: logger.With(
			zap.String("connector", name),
			zap.String("type", string(connectorType)),
		),
	}
}

// Name returns the connector name.
func (b *BaseConnector) Name() string {
	return b.name
}

// Type returns whether the connector is a source or a destination.
func (b *BaseConnector) Type() core.ConnectorType {
	return b.connectorType
}

// GetLogger returns the connector's logger.
func (b *BaseConnector) GetLogger() *zap.Logger {
	return b.logger
}
