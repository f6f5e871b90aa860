package models

// SearchResult holds one page per requested item type. Types that were not requested are nil.
type SearchResult struct {
	Tracks    *Page[*Track]    `json:"tracks,omitempty"`
	Artists   *Page[*Artist]   `json:"artists,omitempty"`
	Albums    *Page[*Album]    `json:"albums,omitempty"`
	Playlists *Page[*Playlist] `json:"playlists,omitempty"`
	Shows     *Page[*Show]     `json:"shows,omitempty"`
	Episodes  *Page[*Episode]  `json:"episodes,omitempty"`
}

func (r *SearchResult) DecodeJSON(v Value) error {
	f := v.Fields()
	r.Tracks = Optional(f, "tracks", PageOf(DecodeTrack))
	r.Artists = Optional(f, "artists", PageOf(DecodeArtist))
	r.Albums = Optional(f, "albums", PageOf(DecodeAlbum))
	r.Playlists = Optional(f, "playlists", PageOf(DecodePlaylist))
	r.Shows = Optional(f, "shows", PageOf(DecodeShow))
	r.Episodes = Optional(f, "episodes", PageOf(DecodeEpisode))
	return f.Err()
}
