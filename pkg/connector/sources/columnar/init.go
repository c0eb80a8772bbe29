package columnar

import (
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
	"github.com/ajitpratap0/tidify/pkg/formats/columnar"
)

func init() {
	descriptions := map[columnar.Format]string{
		columnar.Arrow:   "Arrow IPC file, one record per row",
		columnar.Parquet: "Parquet file, one record per row",
		columnar.Avro:    "Avro object container file, one record per row",
	}
	for _, format := range columnar.Formats() {
		_ = registry.RegisterSource(string(format), NewSourceFactory(format))
		_ = registry.RegisterConnectorInfo(&registry.ConnectorInfo{
			Name:         string(format),
			Type:         core.ConnectorTypeSource,
			Description:  descriptions[format],
			Extensions:   extensions(format),
			Capabilities: []string{"typed", "records"},
		})
	}
}

func extensions(format columnar.Format) []string {
	if format == columnar.Arrow {
		return []string{".arrow", ".ipc"}
	}
	return []string{format.Extension()}
}
