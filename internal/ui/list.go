package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/spotkit/internal/formatter"
	"github.com/desertthunder/spotkit/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist *models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := "? tracks"
	if i.playlist.Tracks != nil {
		desc = fmt.Sprintf("%d tracks", i.playlist.Tracks.Total)
	}
	if o := i.playlist.Owner; o != nil && o.DisplayName != "" {
		desc = fmt.Sprintf("%s • %s", desc, o.DisplayName)
	}
	return desc
}

// trackItem wraps a [formatter.Row] built from a playlist item.
type trackItem struct {
	row formatter.Row
}

func newTrackItems(items []*models.PlaylistTrack) []list.Item {
	rows, _ := formatter.Rows(items)
	out := make([]list.Item, len(rows))
	for i, r := range rows {
		out[i] = trackItem{row: r}
	}
	return out
}

func (i trackItem) FilterValue() string { return i.row.Name }
func (i trackItem) Title() string       { return i.row.Name }
func (i trackItem) Description() string {
	desc := i.row.Artists
	if i.row.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.row.Album)
	}
	return fmt.Sprintf("%s • %s", desc, formatter.FormatDuration(i.row.Duration))
}
