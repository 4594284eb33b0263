// Package decode provides a unified RecordDecoder interface and the built-in
// per-format decoders for dataset ingestion.
//
// It bridges the gap between raw files on disk and the dataset.Record type
// used by feature preparers. Each decoder reads a specific format and
// produces []dataset.Record validated against the task schema.
//
// Supported formats out of the box:
//   - JSON / JSONL (.json, .jsonl)
//   - CSV / TSV (.csv, .tsv)
//   - Parquet (.parquet)
//   - Feather / Arrow IPC (.feather)
//   - Excel (.xls, .xlsx)
//   - XML (.xml)
//   - YAML (.yaml, .yml)
//   - SQLite (.db)
//
// Use Registry to normalize a whole directory in one call:
//
//	registry := decode.NewRegistry(decode.RegistryConfig{}, logger)
//	ds, err := registry.LoadDirectory(ctx, "/path/to/data", dataset.ClassificationSchema)
//
// Custom decoders can be registered for any extension:
//
//	registry.Register(".msgpack", myDecoder)
package decode
