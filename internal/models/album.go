package models

// Album is a full or simplified album. Tracks is only present on full album objects.
type Album struct {
	AlbumType            string            `json:"album_type"`
	TotalTracks          int               `json:"total_tracks"`
	AvailableMarkets     []string          `json:"available_markets,omitempty"`
	ExternalURLs         map[string]string `json:"external_urls,omitempty"`
	Href                 string            `json:"href"`
	ID                   string            `json:"id"`
	Images               []*Image          `json:"images,omitempty"`
	Name                 string            `json:"name"`
	ReleaseDate          string            `json:"release_date"`
	ReleaseDatePrecision string            `json:"release_date_precision"`
	Restrictions         *Restrictions     `json:"restrictions,omitempty"`
	Type                 string            `json:"type,omitempty"`
	URI                  string            `json:"uri"`
	Artists              []*Artist         `json:"artists,omitempty"`
	Tracks               *Page[*Track]     `json:"tracks,omitempty"`
	Copyrights           []*Copyright      `json:"copyrights,omitempty"`
	ExternalIDs          map[string]string `json:"external_ids,omitempty"`
	Genres               []string          `json:"genres,omitempty"`
	Label                string            `json:"label,omitempty"`
	Popularity           int               `json:"popularity"`
	AlbumGroup           string            `json:"album_group,omitempty"`
}

func (a *Album) DecodeJSON(v Value) error {
	f := v.Fields()
	a.AlbumType = f.CatalogString("album_type")
	if f.Local() {
		a.TotalTracks = f.OptInt("total_tracks", 0)
	} else {
		a.TotalTracks = f.Int("total_tracks")
	}
	a.Href = f.CatalogString("href")
	a.ID = f.CatalogString("id")
	a.Name = f.String("name")
	a.ReleaseDate = f.CatalogString("release_date")
	a.ReleaseDatePrecision = f.CatalogString("release_date_precision")
	a.URI = f.CatalogString("uri")

	a.AvailableMarkets = f.OptStrings("available_markets")
	a.ExternalURLs = f.StringMap("external_urls")
	a.Images = OptionalList(f, "images", DecodeImage)
	a.Restrictions = Optional(f, "restrictions", decodeRestrictions)
	a.Type = f.OptString("type")
	a.Artists = OptionalList(f, "artists", DecodeArtist)
	a.Tracks = Optional(f, "tracks", PageOf(DecodeTrack))
	a.Copyrights = OptionalList(f, "copyrights", DecodeCopyright)
	a.ExternalIDs = f.StringMap("external_ids")
	a.Genres = f.OptStrings("genres")
	a.Label = f.OptString("label")
	a.Popularity = f.OptInt("popularity", 0)
	a.AlbumGroup = f.OptString("album_group")
	return f.Err()
}

func DecodeAlbum(v Value) (*Album, error) { return nullable[Album](v) }

// SavedAlbum is an entry of the user's album library.
type SavedAlbum struct {
	AddedAt string `json:"added_at"`
	Album   *Album `json:"album"`
}

func (s *SavedAlbum) DecodeJSON(v Value) error {
	f := v.Fields()
	s.AddedAt = f.String("added_at")
	s.Album = Required(f, "album", DecodeAlbum)
	return f.Err()
}

func DecodeSavedAlbum(v Value) (*SavedAlbum, error) { return nullable[SavedAlbum](v) }
