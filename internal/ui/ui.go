package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotkit/internal/formatter"
	"github.com/desertthunder/spotkit/internal/models"
	"github.com/desertthunder/spotkit/internal/services"
	"github.com/desertthunder/spotkit/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	TrackListView
	ConfirmView
	ExportView
	ResultView
)

var formats = []formatter.Format{formatter.JSON, formatter.CSV, formatter.Markdown, formatter.Text}

// PlaylistLister is the part of [services.SpotifyService] used to list the user's playlists.
type PlaylistLister interface {
	UserPlaylists(ctx context.Context, limit, offset int) (*models.Page[*models.Playlist], error)
}

var _ PlaylistLister = (*services.SpotifyService)(nil)

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	lister    PlaylistLister
	exporter  *tasks.Exporter
	outputDir string
	format    int

	width        int
	height       int
	playlistList list.Model
	trackList    list.Model
	selected     *tasks.PlaylistExport
	run          *exportRun
	progress     tasks.ProgressUpdate
	result       *tasks.BulkExportResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, lister PlaylistLister, exporter *tasks.Exporter, outputDir string) *Model {
	m := &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		lister:       lister,
		exporter:     exporter,
		outputDir:    outputDir,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		trackList:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:         help.New(),
		keys:         newKeyMap(),
	}
	m.playlistList.Title = "Spotify Playlists"
	return m
}

// Format is the export format currently selected.
func (m *Model) Format() formatter.Format { return formats[m.format] }

// Init initializes the TUI by fetching the user's playlists.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		case ExportView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		return m, m.playlistList.SetItems(items)

	case itemsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.selected = msg.export
		m.trackList.Title = fmt.Sprintf("Items in '%s'", msg.export.Playlist.Name)
		m.trackList.ResetSelected()
		m.view = TrackListView
		return m, m.trackList.SetItems(newTrackItems(msg.export.Items))

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case exportCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.run = nil
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.error.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case TrackListView:
		return m.renderTrackList()
	case ConfirmView:
		return m.renderConfirm()
	case ExportView:
		return m.renderExport()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
			m.err = nil
			return m, m.fetchItems(pl.playlist.ID)
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.format):
		m.format = (m.format + 1) % len(formats)
		return m, nil
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = TrackListView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = ExportView
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.view = PlaylistListView
		m.selected = nil
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	ctx, lister := m.ctx, m.lister
	return func() tea.Msg {
		var playlists []*models.Playlist
		offset := 0
		for {
			page, err := lister.UserPlaylists(ctx, services.MaxLimit, offset)
			if err != nil {
				return playlistsFetchedMsg{err: err}
			}
			for _, pl := range page.Items {
				if pl != nil {
					playlists = append(playlists, pl)
				}
			}
			if !page.HasNext() || len(page.Items) == 0 {
				return playlistsFetchedMsg{playlists: playlists}
			}
			offset += len(page.Items)
		}
	}
}

func (m *Model) fetchItems(playlistID string) tea.Cmd {
	ctx, exporter := m.ctx, m.exporter
	return func() tea.Msg {
		export, err := exporter.FetchPlaylist(ctx, nil, playlistID)
		return itemsFetchedMsg{export: export, err: err}
	}
}

func (m *Model) startExport() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan exportCompleteMsg, 1)
	m.run = &exportRun{progress: progress, done: done}

	ctx, exporter, id := m.ctx, m.exporter, m.selected.Playlist.ID
	opts := tasks.BulkExportOpts{Format: m.Format(), OutputDir: m.outputDir, NumWorkers: 1}
	go func() {
		result, err := exporter.BulkExport(ctx, progress, []string{id}, opts)
		if err == nil && result.FailedExports > 0 {
			err = fmt.Errorf("%s", result.Results[0].ErrorMessage)
		}
		done <- exportCompleteMsg{result: result, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	run := m.run
	if run == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-run.progress
		if !ok {
			return <-run.done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderTrackList() string {
	exportKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "export"))
	helpView := m.help.ShortHelpView([]key.Binding{exportKey, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Export '%s'?", m.selected.Playlist.Name))
	info := fmt.Sprintf("\nItems: %d\nFormat: %s\nDirectory: %s\n", len(m.selected.Items), m.Format(), m.outputDir)
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.format})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderExport() string {
	title := styles.title.Render("Exporting Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylist:
		phase = "Fetching playlist..."
	case tasks.FetchItems:
		phase = fmt.Sprintf("Fetching items (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ExportPlaylist:
		phase = "Writing files..."
	default:
		phase = "Processing..."
	}
	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	restart := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})
	if m.err != nil {
		return styles.error.Render(fmt.Sprintf("Export failed: %v", m.err)) + "\n\n" + restart
	}
	if m.result == nil || len(m.result.Results) == 0 {
		return styles.error.Render("No result available") + "\n\n" + restart
	}

	res := m.result.Results[0]
	title := styles.success.Render("✓ Export Complete!")
	info := fmt.Sprintf(
		"\nPlaylist: %s (%d items)\nFiles: %s\nManifest: %s",
		res.PlaylistName,
		res.ItemCount,
		strings.Join(res.Files, ", "),
		m.result.ManifestPath,
	)
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, restart)
}
