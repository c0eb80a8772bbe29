package json

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("json", NewJSONSource)
	_ = registry.RegisterSource("jsonl", NewJSONLinesSource)

	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "json",
		Type:         core.ConnectorTypeSource,
		Description:  "Single JSON document of any shape",
		Extensions:   []string{".json"},
		Capabilities: []string{"nested_objects", "ordered_keys", "compression"},
	})
	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "jsonl",
		Type:         core.ConnectorTypeSource,
		Description:  "Line-delimited JSON records, read as one sequence",
		Extensions:   []string{".jsonl", ".ndjson"},
		Capabilities: []string{"nested_objects", "ordered_keys", "records", "compression"},
	})
}
