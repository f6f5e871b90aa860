package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotkit/internal/models"
	"github.com/desertthunder/spotkit/internal/services"
	"github.com/desertthunder/spotkit/internal/shared"
)

// PlaylistSource is the part of [services.SpotifyService] used to read playlists.
type PlaylistSource interface {
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*models.Page[*models.PlaylistTrack], error)
}

var _ PlaylistSource = (*services.SpotifyService)(nil)

// PlaylistExport is a playlist together with every one of its items.
type PlaylistExport struct {
	Playlist *models.Playlist        `json:"playlist"`
	Items    []*models.PlaylistTrack `json:"items"`
}

// PlaylistExportResult is the outcome for one playlist of a bulk export.
type PlaylistExportResult struct {
	PlaylistID   string   `json:"playlist_id"`
	PlaylistName string   `json:"playlist_name"`
	Success      bool     `json:"success"`
	ItemCount    int      `json:"item_count"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	Format            string                 `json:"format"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}

// Exporter reads whole playlists, following pagination.
type Exporter struct {
	source   PlaylistSource
	pageSize int
	logger   *log.Logger
}

// NewExporter creates an [Exporter] reading from source.
func NewExporter(source PlaylistSource, logger *log.Logger) *Exporter {
	return &Exporter{
		source:   source,
		pageSize: services.MaxLimit,
		logger:   shared.WithLogger(logger, "component", "export"),
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// FetchPlaylist reads playlistID and all of its items in order.
func (e *Exporter) FetchPlaylist(ctx context.Context, progress chan<- ProgressUpdate, playlistID string) (*PlaylistExport, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: playlist source not initialized", shared.ErrServiceUnavailable)
	}

	playlist, err := e.source.Playlist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}

	export := &PlaylistExport{Playlist: playlist}
	offset := 0
	for {
		page, err := e.source.PlaylistTracks(ctx, playlistID, e.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch items at offset %d: %w", offset, err)
		}
		export.Items = append(export.Items, page.Items...)
		e.sendProgress(progress, fetchItemsUpdate(len(export.Items), page.Total, playlist.Name))

		if !page.HasNext() || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	e.logger.Debug("fetched playlist", "id", playlistID, "items", len(export.Items))
	return export, nil
}
