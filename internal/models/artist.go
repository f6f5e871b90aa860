package models

// Artist is a full or simplified artist object. Simplified artists (inside tracks and albums)
// omit followers, genres, images and popularity.
type Artist struct {
	ExternalURLs map[string]string `json:"external_urls,omitempty"`
	Followers    *Followers        `json:"followers,omitempty"`
	Genres       []string          `json:"genres,omitempty"`
	Href         string            `json:"href"`
	ID           string            `json:"id"`
	Images       []*Image          `json:"images,omitempty"`
	Name         string            `json:"name"`
	Popularity   int               `json:"popularity"`
	Type         string            `json:"type,omitempty"`
	URI          string            `json:"uri"`
}

func (a *Artist) DecodeJSON(v Value) error {
	f := v.Fields()
	a.Href = f.CatalogString("href")
	a.ID = f.CatalogString("id")
	a.Name = f.String("name")
	a.URI = f.CatalogString("uri")
	a.ExternalURLs = f.StringMap("external_urls")
	a.Followers = Optional(f, "followers", DecodeFollowers)
	a.Genres = f.OptStrings("genres")
	a.Images = OptionalList(f, "images", DecodeImage)
	a.Popularity = f.OptInt("popularity", 0)
	a.Type = f.OptString("type")
	return f.Err()
}

func DecodeArtist(v Value) (*Artist, error) { return nullable[Artist](v) }
