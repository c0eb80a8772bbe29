package columnar

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
	"github.com/ajitpratap0/tidify/pkg/formats/columnar"
)

func init() {
	descriptions := map[columnar.Format]string{
		columnar.Arrow:   "Arrow IPC file with inferred column types",
		columnar.Parquet: "Parquet file with inferred column types",
		columnar.Avro:    "Avro object container file with inferred column types",
	}
	for _, format := range columnar.Formats() {
		extensions := []string{format.Extension()}
		if format == columnar.Arrow {
			extensions = append(extensions, ".ipc")
		}
		_ = registry.RegisterDestination(string(format), NewDestinationFactory(format))
		_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
			Name:         string(format),
			Type:         core.ConnectorTypeDestination,
			Description:  descriptions[format],
			Extensions:   extensions,
			Capabilities: []string{"typed", "object_storage", "internal_compression"},
		})
	}
}
