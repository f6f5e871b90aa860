// Package ui renders spotkit's terminal output.
//
// [RenderStatus] draws the session summary printed by `spotkit status` with the lipgloss [Palette].
//
// The interactive export browser is a bubbletea program with a multi-view workflow:
//  1. [PlaylistListView] : Browse the user's playlists
//  2. [TrackListView] : Preview a playlist's items
//  3. [ConfirmView] : Pick a format and confirm
//  4. [ExportView] : Monitor progress updates from the exporter
//  5. [ResultView] : Show the written files
//
// The [Model] implements bubbletea's Init/Update/View pattern. Progress updates flow through a channel
// from [tasks.Exporter.BulkExport], so rendering never waits on the network.
package ui
