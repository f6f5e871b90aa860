// package formatter renders decoded tracks and episodes as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotkit/internal/models"
	"github.com/desertthunder/spotkit/internal/shared"
)

// Format is an output format name as accepted on the command line.
type Format string

const (
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
)

// ParseFormat accepts a format name, with "md" and "text" as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Extension is the file extension used when writing f to disk.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// Row is one playable item flattened for tabular output.
type Row struct {
	ID       string
	Kind     models.ItemType
	Name     string
	Artists  string // artist names, or the show name for episodes
	Album    string
	Duration time.Duration
	ISRC     string
	URI      string
}

// TrackRow flattens a track. A nil track yields an empty row.
func TrackRow(t *models.Track) Row {
	if t == nil {
		return Row{}
	}
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a != nil {
			names = append(names, a.Name)
		}
	}
	row := Row{
		ID:       t.ID,
		Kind:     models.TypeTrack,
		Name:     t.Name,
		Artists:  strings.Join(names, ", "),
		Duration: time.Duration(t.DurationMS) * time.Millisecond,
		ISRC:     t.ExternalIDs["isrc"],
		URI:      t.URI,
	}
	if t.Album != nil {
		row.Album = t.Album.Name
	}
	return row
}

// EpisodeRow flattens an episode.
func EpisodeRow(e *models.Episode) Row {
	if e == nil {
		return Row{}
	}
	row := Row{
		ID:       e.ID,
		Kind:     models.TypeEpisode,
		Name:     e.Name,
		Duration: time.Duration(e.DurationMS) * time.Millisecond,
		URI:      e.URI,
	}
	if e.Show != nil {
		row.Artists = e.Show.Name
	}
	return row
}

// PlayableRow flattens whichever item p holds. It reports false for nil items such as removed playlist tracks.
func PlayableRow(p *models.Playable) (Row, bool) {
	switch {
	case p == nil:
		return Row{}, false
	case p.Track != nil:
		return TrackRow(p.Track), true
	case p.Episode != nil:
		return EpisodeRow(p.Episode), true
	}
	return Row{}, false
}

// Rows extracts the playable items of a decoded value in order.
func Rows(v any) ([]Row, error) {
	var rows []Row
	addTracks := func(ts []*models.Track) {
		for _, t := range ts {
			if t != nil {
				rows = append(rows, TrackRow(t))
			}
		}
	}
	addPlayables := func(ps []*models.Playable) {
		for _, p := range ps {
			if row, ok := PlayableRow(p); ok {
				rows = append(rows, row)
			}
		}
	}

	switch v := v.(type) {
	case *models.Track:
		addTracks([]*models.Track{v})
	case []*models.Track:
		addTracks(v)
	case *models.Page[*models.Track]:
		addTracks(v.Items)
	case *models.Album:
		if v.Tracks != nil {
			addTracks(v.Tracks.Items)
		}
	case *models.Episode:
		rows = append(rows, EpisodeRow(v))
	case *models.Page[*models.Episode]:
		for _, e := range v.Items {
			if e != nil {
				rows = append(rows, EpisodeRow(e))
			}
		}
	case *models.Page[*models.SavedTrack]:
		for _, s := range v.Items {
			if s != nil {
				addTracks([]*models.Track{s.Track})
			}
		}
	case *models.Page[*models.PlaylistTrack]:
		return Rows(v.Items)
	case []*models.PlaylistTrack:
		for _, pt := range v {
			if pt != nil {
				addPlayables([]*models.Playable{pt.Item})
			}
		}
	case *models.Playlist:
		if v.Tracks != nil && v.Tracks.Page != nil {
			return Rows(v.Tracks.Page)
		}
	case *models.Queue:
		addPlayables(append([]*models.Playable{v.CurrentlyPlaying}, v.Queue...))
	case *models.PlaybackState:
		addPlayables([]*models.Playable{v.Item})
	case *models.RecentlyPlayed:
		for _, h := range v.Items {
			if h != nil {
				addTracks([]*models.Track{h.Track})
			}
		}
	case *models.SearchResult:
		if v.Tracks != nil {
			addTracks(v.Tracks.Items)
		}
		if v.Episodes != nil {
			for _, e := range v.Episodes.Items {
				if e != nil {
					rows = append(rows, EpisodeRow(e))
				}
			}
		}
	default:
		return nil, fmt.Errorf("%w: no tabular form for %T", shared.ErrInvalidArgument, v)
	}
	return rows, nil
}

// FormatDuration renders d as m:ss, or h:mm:ss from an hour up.
func FormatDuration(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ToCSV writes rows with columns: ID, Type, Name, Artists, Album, Duration, ISRC, URI
func ToCSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Type", "Name", "Artists", "Album", "Duration", "ISRC", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.ID,
			string(r.Kind),
			r.Name,
			r.Artists,
			r.Album,
			strconv.Itoa(int(r.Duration / time.Second)),
			r.ISRC,
			r.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMarkdown renders rows as a numbered list under title.
func ToMarkdown(title string, rows []Row) []byte {
	var buf bytes.Buffer

	if title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", title)
	}
	fmt.Fprintf(&buf, "**Items**: %d\n\n", len(rows))

	for i, r := range rows {
		albumPart := ""
		if r.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", r.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, r.Artists, r.Name, albumPart, FormatDuration(r.Duration))
	}
	return buf.Bytes()
}

// ToText renders rows as plain numbered lines under title.
func ToText(title string, rows []Row) []byte {
	var buf bytes.Buffer

	if title != "" {
		fmt.Fprintf(&buf, "%s\n", title)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(rows))

	for i, r := range rows {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, r.Artists, r.Name)
	}
	return buf.Bytes()
}

// Render formats v. JSON keeps the full decoded value; the other formats keep only its playable items.
func Render(format Format, title string, v any) ([]byte, error) {
	if format == JSON || format == "" {
		return shared.MarshalJSON(v, true)
	}

	rows, err := Rows(v)
	if err != nil {
		return nil, err
	}
	switch format {
	case CSV:
		return ToCSV(rows)
	case Markdown:
		return ToMarkdown(title, rows), nil
	case Text:
		return ToText(title, rows), nil
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
}

// Write renders v to w.
func Write(w io.Writer, format Format, title string, v any) error {
	data, err := Render(format, title, v)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteFile renders v to path.
func WriteFile(path string, format Format, title string, v any) error {
	data, err := Render(format, title, v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
