// Package registry maps connector names to factories. Connector packages
// register themselves from init; importing pkg/connector/sources and
// pkg/connector/destinations pulls every built-in connector in.
package registry

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/logger"
	"github.com/ajitpratap0/tidify/pkg/tidyerrors"
)

// SourceFactory creates a source connector from the run configuration.
type SourceFactory func(cfg *config.Config, deps core.Deps) (core.Source, error)

// DestinationFactory creates a destination connector from the run
// configuration.
type DestinationFactory func(cfg *config.Config, deps core.Deps) (core.Destination, error)

// factorySet holds the factories of one connector type.
type factorySet[F any] struct {
	kind      core.ConnectorType
	factories map[string]F
}

func newFactorySet[F any](kind core.ConnectorType) factorySet[F] {
	return factorySet[F]{kind: kind, factories: make(map[string]F)}
}

func (s *factorySet[F]) add(name string, factory F) error {
	if _, exists := s.factories[name]; exists {
		return tidyerrors.New(tidyerrors.ErrorTypeConfig, string(s.kind)+" connector already registered").
			WithDetail("name", name)
	}
	s.factories[name] = factory
	return nil
}

// get returns the named factory, or a capability error listing the names
// that are registered.
func (s *factorySet[F]) get(name string) (F, error) {
	factory, exists := s.factories[name]
	if !exists {
		return factory, tidyerrors.New(tidyerrors.ErrorTypeCapability, "unknown "+string(s.kind)+" format").
			WithDetail("name", name).
			WithDetail("available", s.names())
	}
	return factory, nil
}

func (s *factorySet[F]) names() []string {
	names := make([]string, 0, len(s.factories))
	for name := range s.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry maps format names to connector factories. It is safe for
// concurrent use.
type Registry struct {
	mu           sync.RWMutex
	sources      factorySet[SourceFactory]
	destinations factorySet[DestinationFactory]
	logger       *zap.Logger
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources:      newFactorySet[SourceFactory](core.ConnectorTypeSource),
		destinations: newFactorySet[DestinationFactory](core.ConnectorTypeDestination),
		logger:       logger.Get().With(zap.String("component", "connector_registry")),
	}
}

// RegisterSource registers a source factory under name. Registering a
// name twice is a configuration error.
func (r *Registry) RegisterSource(name string, factory SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.sources.add(name, factory); err != nil {
		return err
	}
	r.logger.Debug("source connector registered", zap.String("name", name))
	return nil
}

// RegisterDestination registers a destination factory under name.
func (r *Registry) RegisterDestination(name string, factory DestinationFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.destinations.add(name, factory); err != nil {
		return err
	}
	r.logger.Debug("destination connector registered", zap.String("name", name))
	return nil
}

// CreateSource builds the named source with defaulted deps. Factory
// errors keep their own type.
func (r *Registry) CreateSource(name string, cfg *config.Config, deps core.Deps) (core.Source, error) {
	r.mu.RLock()
	factory, err := r.sources.get(name)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return factory(cfg, deps.WithDefaults())
}

// CreateDestination builds the named destination with defaulted deps.
func (r *Registry) CreateDestination(name string, cfg *config.Config, deps core.Deps) (core.Destination, error) {
	r.mu.RLock()
	factory, err := r.destinations.get(name)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return factory(cfg, deps.WithDefaults())
}

// ListSources returns the registered source names, sorted.
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources.names()
}

// ListDestinations returns the registered destination names, sorted.
func (r *Registry) ListDestinations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.destinations.names()
}

// HasSource reports whether name is a registered source.
func (r *Registry) HasSource(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.sources.factories[name]
	return exists
}

// HasDestination reports whether name is a registered destination.
func (r *Registry) HasDestination(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.destinations.factories[name]
	return exists
}

// Clear removes every registration. Tests use it on private registries.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = newFactorySet[SourceFactory](core.ConnectorTypeSource)
	r.destinations = newFactorySet[DestinationFactory](core.ConnectorTypeDestination)
}

// Global registry functions

// RegisterSource registers a source connector in the global registry
func RegisterSource(name string, factory SourceFactory) error {
	return globalRegistry.RegisterSource(name, factory)
}

// RegisterDestination registers a destination connector in the global registry
func RegisterDestination(name string, factory DestinationFactory) error {
	return globalRegistry.RegisterDestination(name, factory)
}

// CreateSource creates a source connector from the global registry
func CreateSource(name string, cfg *config.Config, deps core.Deps) (core.Source, error) {
	return globalRegistry.CreateSource(name, cfg, deps)
}

// CreateDestination creates a destination connector from the global registry
func CreateDestination(name string, cfg *config.Config, deps core.Deps) (core.Destination, error) {
	return globalRegistry.CreateDestination(name, cfg, deps)
}

// ListSources returns registered sources from the global registry
func ListSources() []string {
	return globalRegistry.ListSources()
}

// ListDestinations returns registered destinations from the global registry
func ListDestinations() []string {
	return globalRegistry.ListDestinations()
}

// HasSource checks if a source is registered in the global registry
func HasSource(name string) bool {
	return globalRegistry.HasSource(name)
}

// HasDestination checks if a destination is registered in the global registry
func HasDestination(name string) bool {
	return globalRegistry.HasDestination(name)
}

// GetRegistry returns the global registry instance.
// This is the primary way to access the connector registry.
func GetRegistry() *Registry {
	return globalRegistry
}

// ConnectorInfo describes a registered format for `tidify formats`.
type ConnectorInfo struct {
	Name         string             `json:"name"`
	Type         core.ConnectorType `json:"type"`
	Description  string             `json:"description"`
	Extensions   []string           `json:"extensions,omitempty"`
	Capabilities []string           `json:"capabilities"`
}

type catalogKey struct {
	kind core.ConnectorType
	name string
}

func (k catalogKey) less(o catalogKey) bool {
	if k.kind != o.kind {
		return k.kind == core.ConnectorTypeSource
	}
	return k.name < o.name
}

// ConnectorCatalog holds connector descriptions. A name may appear once
// as a source and once as a destination.
type ConnectorCatalog struct {
	mu      sync.RWMutex
	entries map[catalogKey]*ConnectorInfo
}

// NewConnectorCatalog creates an empty catalog.
func NewConnectorCatalog() *ConnectorCatalog {
	return &ConnectorCatalog{entries: make(map[catalogKey]*ConnectorInfo)}
}

// Register adds info to the catalog.
func (c *ConnectorCatalog) Register(info *ConnectorInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := catalogKey{kind: info.Type, name: info.Name}
	if _, exists := c.entries[key]; exists {
		return tidyerrors.New(tidyerrors.ErrorTypeConfig, "connector already in catalog").
			WithDetail("name", info.Name).
			WithDetail("type", string(info.Type))
	}
	c.entries[key] = info
	return nil
}

// Get returns the description of one connector.
func (c *ConnectorCatalog) Get(connectorType core.ConnectorType, name string) (*ConnectorInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, exists := c.entries[catalogKey{kind: connectorType, name: name}]
	if !exists {
		return nil, tidyerrors.New(tidyerrors.ErrorTypeCapability, "connector not found in catalog").
			WithDetail("name", name).
			WithDetail("type", string(connectorType))
	}
	return info, nil
}

// List returns every description, sources first, each group by name.
func (c *ConnectorCatalog) List() []*ConnectorInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]catalogKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].less(keys[j]) })

	infos := make([]*ConnectorInfo, len(keys))
	for i, k := range keys {
		infos[i] = c.entries[k]
	}
	return infos
}

// Global catalog instance
var globalCatalog = NewConnectorCatalog()

// RegisterConnectorInfo registers connector information in the global catalog
func RegisterConnectorInfo(info *ConnectorInfo) error {
	return globalCatalog.Register(info)
}

// GetConnectorInfo retrieves connector information from the global catalog
func GetConnectorInfo(connectorType core.ConnectorType, name string) (*ConnectorInfo, error) {
	return globalCatalog.Get(connectorType, name)
}

// ListConnectorInfo lists all connectors in the global catalog
func ListConnectorInfo() []*ConnectorInfo {
	return globalCatalog.List()
}
