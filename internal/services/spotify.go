// Spotify Web API endpoint wrappers
//
// Response types live in [models]; see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotkit/internal/models"
	"github.com/desertthunder/spotkit/internal/shared"
	"golang.org/x/time/rate"
)

// SpotifyService issues read requests against the Spotify Web API and decodes the responses.
//
// Every request asks its [TokenSource] for the current access token, so a service built on an
// [auth.Session] keeps working across token renewals.
type SpotifyService struct {
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSpotifyService creates a service that authorizes requests with tokens.
func NewSpotifyService(tokens TokenSource, opts ...Option) (*SpotifyService, error) {
	if tokens == nil {
		return nil, fmt.Errorf("%w: token source is required", shared.ErrMissingArgument)
	}

	s := &SpotifyService{
		tokens:     tokens,
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = http.DefaultClient
	}
	s.baseURL = strings.TrimRight(s.baseURL, "/")
	s.logger = shared.WithLogger(s.logger, "component", "spotify")
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// get fetches path and decodes the body as a T.
func get[T any, PT interface {
	*T
	models.Decodable
}](ctx context.Context, s *SpotifyService, path string, query url.Values) (*T, error) {
	resp, err := s.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return models.Decode[T, PT](resp.Body)
}

// getPage fetches path and decodes the body as a paging envelope of T.
func getPage[T any](ctx context.Context, s *SpotifyService, path string, query url.Values, decode models.DecodeFunc[T]) (*models.Page[T], error) {
	resp, err := s.doRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return models.DecodePage(resp.Body, decode)
}

func pageQuery(limit, offset int) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(clampLimit(limit))},
		"offset": {strconv.Itoa(max(offset, 0))},
	}
}

func itemPath(prefix, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: id for %s", shared.ErrMissingArgument, prefix)
	}
	return prefix + "/" + url.PathEscape(id), nil
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*models.User, error) {
	return get[models.User](ctx, s, "/me", nil)
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*models.Track, error) {
	path, err := itemPath("/tracks", trackID)
	if err != nil {
		return nil, err
	}
	return get[models.Track](ctx, s, path, nil)
}

// SeveralTracks retrieves multiple tracks by their IDs (up to 50).
// Unknown IDs come back as nil entries at the same position.
func (s *SpotifyService) SeveralTracks(ctx context.Context, trackIDs []string) ([]*models.Track, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrMissingArgument)
	}
	if len(trackIDs) > MaxLimit {
		return nil, fmt.Errorf("%w: maximum %d track IDs allowed", shared.ErrInvalidArgument, MaxLimit)
	}

	resp, err := s.doRequest(ctx, "/tracks", url.Values{"ids": {strings.Join(trackIDs, ",")}})
	if err != nil {
		return nil, err
	}
	v, err := models.Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	f := v.Fields()
	tracks := models.RequiredList(f, "tracks", models.DecodeTrack)
	if err := f.Err(); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Album retrieves an album, including the first page of its tracks.
func (s *SpotifyService) Album(ctx context.Context, albumID string) (*models.Album, error) {
	path, err := itemPath("/albums", albumID)
	if err != nil {
		return nil, err
	}
	return get[models.Album](ctx, s, path, nil)
}

// AlbumTracks retrieves one page of an album's tracks.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string, limit, offset int) (*models.Page[*models.Track], error) {
	path, err := itemPath("/albums", albumID)
	if err != nil {
		return nil, err
	}
	return getPage(ctx, s, path+"/tracks", pageQuery(limit, offset), models.DecodeTrack)
}

// Artist retrieves an artist by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*models.Artist, error) {
	path, err := itemPath("/artists", artistID)
	if err != nil {
		return nil, err
	}
	return get[models.Artist](ctx, s, path, nil)
}

// Show retrieves a podcast show by ID.
func (s *SpotifyService) Show(ctx context.Context, showID string) (*models.Show, error) {
	path, err := itemPath("/shows", showID)
	if err != nil {
		return nil, err
	}
	return get[models.Show](ctx, s, path, nil)
}

// Episode retrieves a podcast episode by ID.
func (s *SpotifyService) Episode(ctx context.Context, episodeID string) (*models.Episode, error) {
	path, err := itemPath("/episodes", episodeID)
	if err != nil {
		return nil, err
	}
	return get[models.Episode](ctx, s, path, nil)
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	path, err := itemPath("/playlists", playlistID)
	if err != nil {
		return nil, err
	}
	return get[models.Playlist](ctx, s, path, nil)
}

// PlaylistTracks retrieves one page of a playlist's items. Removed tracks decode as entries with a nil Item.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*models.Page[*models.PlaylistTrack], error) {
	path, err := itemPath("/playlists", playlistID)
	if err != nil {
		return nil, err
	}
	return getPage(ctx, s, path+"/tracks", pageQuery(limit, offset), models.DecodePlaylistTrack)
}

// SavedTracks retrieves the user's saved tracks with pagination.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*models.Page[*models.SavedTrack], error) {
	return getPage(ctx, s, "/me/tracks", pageQuery(limit, offset), models.DecodeSavedTrack)
}

// SavedAlbums retrieves the user's saved albums with pagination.
func (s *SpotifyService) SavedAlbums(ctx context.Context, limit, offset int) (*models.Page[*models.SavedAlbum], error) {
	return getPage(ctx, s, "/me/albums", pageQuery(limit, offset), models.DecodeSavedAlbum)
}

// UserPlaylists retrieves the current user's playlists with pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*models.Page[*models.Playlist], error) {
	return getPage(ctx, s, "/me/playlists", pageQuery(limit, offset), models.DecodePlaylist)
}

// Search queries the catalogue for the given item types. Only the requested pages are set on the result.
func (s *SpotifyService) Search(ctx context.Context, query string, types []models.ItemType, limit int) (*models.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if len(types) == 0 {
		types = []models.ItemType{models.TypeTrack}
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	q := url.Values{
		"q":     {query},
		"type":  {strings.Join(names, ",")},
		"limit": {strconv.Itoa(clampLimit(limit))},
	}
	return get[models.SearchResult](ctx, s, "/search", q)
}

// AudioFeatures retrieves the audio analysis summary for a track.
func (s *SpotifyService) AudioFeatures(ctx context.Context, trackID string) (*models.AudioFeatures, error) {
	path, err := itemPath("/audio-features", trackID)
	if err != nil {
		return nil, err
	}
	return get[models.AudioFeatures](ctx, s, path, nil)
}

// PlaybackState retrieves the user's current playback. It returns nil without error when nothing is active.
func (s *SpotifyService) PlaybackState(ctx context.Context) (*models.PlaybackState, error) {
	resp, err := s.doRequest(ctx, "/me/player", url.Values{"additional_types": {"track,episode"}})
	if err != nil {
		return nil, err
	}
	if resp.NoContent() {
		return nil, nil
	}
	return models.Decode[models.PlaybackState](resp.Body)
}

// Queue retrieves the currently playing item and the upcoming queue.
func (s *SpotifyService) Queue(ctx context.Context) (*models.Queue, error) {
	return get[models.Queue](ctx, s, "/me/player/queue", nil)
}

// RecentlyPlayed retrieves the most recently played tracks.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) (*models.RecentlyPlayed, error) {
	resp, err := s.doRequest(ctx, "/me/player/recently-played", url.Values{"limit": {strconv.Itoa(clampLimit(limit))}})
	if err != nil {
		return nil, err
	}
	return models.DecodeRecentlyPlayed(resp.Body)
}

// NextPage follows page's next link. It returns nil when page is the last one.
func NextPage[T any](ctx context.Context, s *SpotifyService, page *models.Page[T], decode models.DecodeFunc[T]) (*models.Page[T], error) {
	if page == nil || !page.HasNext() {
		return nil, nil
	}
	return getPage(ctx, s, page.Next, nil, decode)
}

// AllItems walks every page starting at first and collects the items, stopping after limit items when limit > 0.
func AllItems[T any](ctx context.Context, s *SpotifyService, first *models.Page[T], decode models.DecodeFunc[T], limit int) ([]T, error) {
	var items []T
	for page := first; page != nil; {
		items = append(items, page.Items...)
		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}

		next, err := NextPage(ctx, s, page, decode)
		if err != nil {
			return nil, err
		}
		page = next
	}
	return items, nil
}
