package postgresql

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("postgresql", NewPostgreSQLDestination)
	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "postgresql",
		Type:         core.ConnectorTypeDestination,
		Description:  "PostgreSQL table loaded with COPY in one transaction",
		Capabilities: []string{"typed", "create_table", "truncate", "transactions"},
	})
}
