// Package destinations registers every built-in destination connector.
// Import it for its side effects:
//
//	import _ "github.com/ajitpratap0/tidify/pkg/connector/destinations"
package destinations

import (
	// Import all destination connectors to trigger init() registration
	_ "github.com/ajitpratap0/tidify/pkg/connector/destinations/columnar"
	_ "github.com/ajitpratap0/tidify/pkg/connector/destinations/csv"
	_ "github.com/ajitpratap0/tidify/pkg/connector/destinations/grid"
	_ "github.com/ajitpratap0/tidify/pkg/connector/destinations/json"
	_ "github.com/ajitpratap0/tidify/pkg/connector/destinations/postgresql"
)
