// Package tasks runs multi-request library operations with progress reporting.
//
// # Playlist Export
//
// [Exporter.FetchPlaylist] reads a playlist and walks its item pages until "next" is empty.
// [Exporter.BulkExport] does the same for many playlists with a bounded worker pool and writes one
// file per playlist through the formatter package, plus an export_manifest.json summary.
//
// # Progress Reporting
//
// All operations accept an optional progress channel. The [ProgressUpdate] struct contains phase,
// step counters, a message and optional data. Updates use select with default so that a slow or
// absent reader never blocks an export.
package tasks
