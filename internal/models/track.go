package models

// Track is a full or simplified track object.
//
// LinkedFrom is set when track relinking replaced the requested track with a playable one.
// It is followed at most [MaxLinkedFromDepth] levels; a linked track is decoded leniently
// (only id and uri are required) and never has a LinkedFrom of its own.
//
// Local files (IsLocal) have no catalogue entry: their id and href, and the ids, hrefs, uris and
// release dates of their album and artists, may be empty.
type Track struct {
	Album            *Album            `json:"album,omitempty"`
	Artists          []*Artist         `json:"artists"`
	AvailableMarkets []string          `json:"available_markets,omitempty"`
	DiscNumber       int               `json:"disc_number"`
	DurationMS       int               `json:"duration_ms"`
	Explicit         bool              `json:"explicit"`
	ExternalIDs      map[string]string `json:"external_ids,omitempty"`
	ExternalURLs     map[string]string `json:"external_urls,omitempty"`
	Href             string            `json:"href"`
	ID               string            `json:"id"`
	IsPlayable       bool              `json:"is_playable,omitempty"`
	LinkedFrom       *Track            `json:"linked_from,omitempty"`
	Restrictions     *Restrictions     `json:"restrictions,omitempty"`
	Name             string            `json:"name"`
	Popularity       int               `json:"popularity"`
	PreviewURL       string            `json:"preview_url,omitempty"`
	TrackNumber      int               `json:"track_number"`
	Type             string            `json:"type,omitempty"`
	URI              string            `json:"uri"`
	IsLocal          bool              `json:"is_local"`
}

func (t *Track) DecodeJSON(v Value) error {
	f := v.Fields()
	if f.Depth() > 0 {
		t.decodeLink(f)
		return f.Err()
	}

	// local files carry null catalogue ids on the track, its album and its artists
	t.IsLocal = f.Bool("is_local")
	if t.IsLocal {
		f.MarkLocal()
	}

	t.Artists = RequiredList(f, "artists", DecodeArtist)
	t.DiscNumber = f.Int("disc_number")
	t.DurationMS = f.Int("duration_ms")
	t.Explicit = f.Bool("explicit")
	t.Href = f.CatalogString("href")
	t.ID = f.CatalogString("id")
	t.Name = f.String("name")
	t.TrackNumber = f.Int("track_number")
	t.URI = f.String("uri")

	t.Album = Optional(f, "album", DecodeAlbum)
	t.AvailableMarkets = f.OptStrings("available_markets")
	t.ExternalIDs = f.StringMap("external_ids")
	t.ExternalURLs = f.StringMap("external_urls")
	t.IsPlayable = f.OptBool("is_playable")
	t.Restrictions = Optional(f, "restrictions", decodeRestrictions)
	t.Popularity = f.OptInt("popularity", 0)
	t.PreviewURL = f.OptString("preview_url")
	t.Type = f.OptString("type")
	if f.Depth() < MaxLinkedFromDepth && f.Has("linked_from") {
		t.LinkedFrom = Required(f, "linked_from", func(v Value) (*Track, error) {
			return DecodeTrack(v.linked())
		})
	}
	return f.Err()
}

// decodeLink reads the trimmed track link found under linked_from.
func (t *Track) decodeLink(f *Fields) {
	t.ID = f.String("id")
	t.URI = f.String("uri")
	t.Href = f.OptString("href")
	t.Type = f.OptString("type")
	t.ExternalURLs = f.StringMap("external_urls")
}

func DecodeTrack(v Value) (*Track, error) { return nullable[Track](v) }

// SavedTrack is an entry of the user's track library.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

func (s *SavedTrack) DecodeJSON(v Value) error {
	f := v.Fields()
	s.AddedAt = f.String("added_at")
	s.Track = Required(f, "track", DecodeTrack)
	return f.Err()
}

func DecodeSavedTrack(v Value) (*SavedTrack, error) { return nullable[SavedTrack](v) }
