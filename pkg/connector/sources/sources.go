// Package sources registers every built-in source connector. Import it for
// its side effects:
//
//	import _ "github.com/ajitpratap0/tidify/pkg/connector/sources"
package sources

import (
	// Import all source connectors to trigger init() registration
	_ "github.com/ajitpratap0/tidify/pkg/connector/sources/columnar"
	_ "github.com/ajitpratap0/tidify/pkg/connector/sources/json"
	_ "github.com/ajitpratap0/tidify/pkg/connector/sources/mongodb"
	_ "github.com/ajitpratap0/tidify/pkg/connector/sources/yaml"
)
