package ui

import (
	"github.com/desertthunder/spotkit/internal/models"
	"github.com/desertthunder/spotkit/internal/tasks"
)

type playlistsFetchedMsg struct {
	playlists []*models.Playlist
	err       error
}

type itemsFetchedMsg struct {
	export *tasks.PlaylistExport
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type exportCompleteMsg struct {
	result *tasks.BulkExportResult
	err    error
}

// exportRun carries the outcome of a background export to the UI loop.
type exportRun struct {
	progress <-chan tasks.ProgressUpdate
	done     <-chan exportCompleteMsg
}
