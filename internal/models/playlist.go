package models

// Playlist is a full or simplified playlist.
type Playlist struct {
	Collaborative bool              `json:"collaborative"`
	Description   string            `json:"description,omitempty"`
	ExternalURLs  map[string]string `json:"external_urls,omitempty"`
	Followers     *Followers        `json:"followers,omitempty"`
	Href          string            `json:"href"`
	ID            string            `json:"id"`
	Images        []*Image          `json:"images,omitempty"`
	Name          string            `json:"name"`
	Owner         *User             `json:"owner"`
	Public        *bool             `json:"public"`
	SnapshotID    string            `json:"snapshot_id"`
	Tracks        *PlaylistTracks   `json:"tracks,omitempty"`
	Type          string            `json:"type,omitempty"`
	URI           string            `json:"uri"`
}

func (p *Playlist) DecodeJSON(v Value) error {
	f := v.Fields()
	p.Collaborative = f.Bool("collaborative")
	p.Href = f.String("href")
	p.ID = f.String("id")
	p.Name = f.String("name")
	p.Owner = Required(f, "owner", DecodeUser)
	p.SnapshotID = f.String("snapshot_id")
	p.URI = f.String("uri")

	p.Description = f.OptString("description")
	p.ExternalURLs = f.StringMap("external_urls")
	p.Followers = Optional(f, "followers", DecodeFollowers)
	p.Images = OptionalList(f, "images", DecodeImage)
	p.Public = f.NullBool("public")
	p.Tracks = Optional(f, "tracks", decodePlaylistTracks)
	p.Type = f.OptString("type")
	return f.Err()
}

func DecodePlaylist(v Value) (*Playlist, error) { return nullable[Playlist](v) }

// PlaylistTracks is the "tracks" member of a playlist. Simplified playlists only carry
// Href and Total; full playlists also embed the first page of items.
type PlaylistTracks struct {
	Href  string                `json:"href"`
	Total int                   `json:"total"`
	Page  *Page[*PlaylistTrack] `json:"page,omitempty"`
}

func decodePlaylistTracks(v Value) (*PlaylistTracks, error) {
	f := v.Fields()
	pt := &PlaylistTracks{
		Href:  f.OptString("href"),
		Total: f.Int("total"),
	}
	if err := f.Err(); err != nil {
		return nil, err
	}
	if f.Has("items") {
		page, err := DecodePageValue(v, DecodePlaylistTrack)
		if err != nil {
			return nil, err
		}
		pt.Page = page
	}
	return pt, nil
}

// PlaylistTrack is one entry of a playlist. Item is nil when the track was removed from the catalogue.
type PlaylistTrack struct {
	AddedAt string    `json:"added_at,omitempty"`
	AddedBy *User     `json:"added_by,omitempty"`
	IsLocal bool      `json:"is_local"`
	Item    *Playable `json:"track"`
}

func (pt *PlaylistTrack) DecodeJSON(v Value) error {
	f := v.Fields()
	pt.AddedAt = f.OptString("added_at")
	pt.AddedBy = Optional(f, "added_by", DecodeUser)
	pt.IsLocal = f.OptBool("is_local")
	pt.Item = Optional(f, "track", DecodePlayable)
	return f.Err()
}

func DecodePlaylistTrack(v Value) (*PlaylistTrack, error) { return nullable[PlaylistTrack](v) }
