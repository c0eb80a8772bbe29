package connector_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ajitpratap0/tidify/pkg/config"
	"github.com/ajitpratap0/tidify/pkg/connector/core"
	"github.com/ajitpratap0/tidify/pkg/connector/registry"
	"github.com/ajitpratap0/tidify/pkg/storage"
	"github.com/ajitpratap0/tidify/pkg/tidy"

	// Import connectors to register them
	_ "github.com/ajitpratap0/tidify/pkg/connector/destinations"
	_ "github.com/ajitpratap0/tidify/pkg/connector/sources"
)

// Example reads JSON from stdin and writes CSV to stdout through the
// registry.
func Example() {
	ctx := context.Background()

	opener := storage.NewOpener(storage.Options{}, nil)
	opener.Stdin = strings.NewReader(`{"id": 1, "tags": ["a", "b"]}`)
	opener.Stdout = os.Stdout
	deps := core.Deps{Storage: opener}

	cfg := config.NewConfig()

	source, err := registry.CreateSource(cfg.Input.InputFormat(), cfg, deps)
	if err != nil {
		log.Fatal(err)
	}
	defer source.Close(ctx)

	destination, err := registry.CreateDestination(cfg.Output.OutputFormat(), cfg, deps)
	if err != nil {
		log.Fatal(err)
	}
	defer destination.Close(ctx)

	value, err := source.Read(ctx)
	if err != nil {
		log.Fatal(err)
	}
	table, err := tidy.Tidify(value, cfg.ToOptions())
	if err != nil {
		log.Fatal(err)
	}
	if err := destination.Write(ctx, table); err != nil {
		log.Fatal(err)
	}

	// Output:
	// id,tags,tags.index
	// 1,a,0
	// 1,b,1
}

// Example_catalog lists the registered file sources.
func Example_catalog() {
	for _, info := range registry.ListConnectorInfo() {
		if info.Type == core.ConnectorTypeSource && len(info.Extensions) > 0 {
			fmt.Println(info.Name, info.Extensions)
		}
	}

	// Output:
	// arrow [.arrow .ipc]
	// avro [.avro]
	// json [.json]
	// jsonl [.jsonl .ndjson]
	// parquet [.parquet]
	// yaml [.yaml .yml]
}
