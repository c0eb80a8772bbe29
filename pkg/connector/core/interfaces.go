package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/nested"
	"github.com/ajitpratap0/tidify/pkg/storage"
	"github.com/ajitpratap0/tidify/pkg/tidy"
)

// ConnectorType represents the type of connector
type ConnectorType string

const (
	ConnectorTypeSource      ConnectorType = "source"
	ConnectorTypeDestination ConnectorType = "destination"
)

// Source is the interface that all source connectors must implement. A
// source produces exactly one nested value per run; record collections
// are returned as a sequence.
type Source interface {
	// Name returns the registered connector name
	Name() string
	// Read loads the whole input
	Read(ctx context.Context) (nested.Value, error)
	// Close releases files and connections
	Close(ctx context.Context) error
}

// Destination is the interface that all destination connectors must
// implement.
type Destination interface {
	// Name returns the registered connector name
	Name() string
	// Write stores the table. It is called once per run.
	Write(ctx context.Context, table *tidy.Table) error
	// Close flushes and releases files and connections
	Close(ctx context.Context) error
}

// Deps are the shared services handed to connector factories.
type Deps struct {
	// Storage opens input and output locations
	Storage *storage.Opener
	// Logger is the run logger
	Logger *zap.Logger
}

// WithDefaults fills unset services: a no-op logger and an Opener with
// default options.
func (d Deps) WithDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Storage == nil {
		d.Storage = storage.NewOpener(storage.Options{}, d.Logger)
	}
	return d
}
