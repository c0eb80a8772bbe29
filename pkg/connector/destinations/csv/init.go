package csv

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("csv", NewCSVDestination)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "csv",
		Type:         core.ConnectorTypeDestination,
		Description:  "CSV with a header row; null and absent cells are empty",
		Extensions:   []string{".csv"},
		Capabilities: []string{"stdout", "compression", "object_storage"},
	})
}
