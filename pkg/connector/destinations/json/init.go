package json

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterDestination("jsonl", NewJSONLinesDestination)
	_ = registry.RegisterDestination("jsontab", NewJSONTableDestination)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "jsonl",
		Type:         core.ConnectorTypeDestination,
		Description:  "One JSON object per row; absent cells are omitted",
		Extensions:   []string{".jsonl", ".ndjson"},
		Capabilities: []string{"stdout", "compression", "object_storage"},
	})
	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "jsontab",
		Type:         core.ConnectorTypeDestination,
		Description:  `One JSON document {"columns": [...], "rows": [[...]]}`,
		Extensions:   []string{".json"},
		Capabilities: []string{"stdout", "compression", "object_storage"},
	})
}
