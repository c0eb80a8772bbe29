// Package connector groups the sources and destinations tidify reads
// nested values from and writes tidy tables to.
//
// # Architecture Overview
//
//   - core: the Source and Destination interfaces and the Deps handed to
//     every factory.
//
//   - base: BaseConnector, compressed stream helpers over storage
//     locations (local files, stdio, s3://, gs://) and the retry policy
//     used when dialing databases.
//
//   - sources: json, jsonl, yaml, arrow, parquet, avro and mongodb.
//
//   - destinations: csv, jsonl, jsontab, grid, arrow, parquet, avro and
//     postgresql.
//
//   - registry: name to factory lookup plus a catalog of descriptions.
//     Connector packages register themselves in init.
//
// # Example Usage
//
// Importing the sources and destinations packages registers everything:
//
//	import (
//		_ "github.com/ajitpratap0/tidify/pkg/connector/destinations"
//		_ "github.com/ajitpratap0/tidify/pkg/connector/sources"
//	)
//
//	cfg := config.NewConfig()
//	cfg.Input.Path = "orders.json"
//	cfg.Output.Path = "s3://bucket/orders.parquet"
//
//	source, err := registry.CreateSource(cfg.Input.InputFormat(), cfg, deps)
//	if err != nil {
//		return err
//	}
//	value, err := source.Read(ctx)
//
// Sources return one nested.Value per run. Destinations receive the whole
// tidy.Table in a single Write call and release their resources in Close.
package connector
