package mongodb

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("mongodb", NewMongoSource)
	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "mongodb",
		Type:         core.ConnectorTypeSource,
		Description:  "MongoDB collection, documents read as one sequence",
		Capabilities: []string{"nested_objects", "ordered_keys", "records", "filter", "limit"},
	})
}
