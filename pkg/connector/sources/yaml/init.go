package yaml

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
)

func init() {
	_ = registry.RegisterSource("yaml", NewYAMLSource)
	_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
		Name:         "yaml",
		Type:         core.ConnectorTypeSource,
		Description:  "YAML document; multi-document streams become a sequence",
		Extensions:   []string{".yaml", ".yml"},
		Capabilities: []string{"nested_objects", "ordered_keys", "anchors", "compression"},
	})
}
