// Package harumemo is the composition root of the Harumemo memo calendar.
//
// It wires the core domain (one note per calendar day, persisted as a single
// JSON blob) to a storage adapter using the Hexagonal Architecture pattern.
//
// Storage adapters:
//
//   - fs: one JSON file per storage key in a data directory (default).
//   - sqlite: a single-table database file.
//   - redis: one key per storage key, with pub/sub change notification.
//   - memory: volatile, for tests and previews.
//
// Backup codecs live in pkg/backup: the JSON/YAML structured format that
// round-trips every field, and the human readable text format.
//
// Usage:
//
//	svc, err := harumemo.New(ctx, "./notes",
//		harumemo.WithAdapter("sqlite"),
//		harumemo.WithLogger(logger),
//	)
//
//	_, err = svc.SaveNote(ctx, "2024-03-05", "- [ ] buy milk", nil)
package harumemo
