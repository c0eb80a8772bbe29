package grid

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("grid", NewGridDestination)
	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "grid",
		Type:         core.ConnectorTypeDestination,
		Description:  "Aligned text grid for terminal previews",
		Capabilities: []string{"stdout", "color", "row_limit"},
	})
}
