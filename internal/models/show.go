package models

// Show is a podcast. Episodes is only present on full show objects.
type Show struct {
	AvailableMarkets   []string          `json:"available_markets,omitempty"`
	Copyrights         []*Copyright      `json:"copyrights,omitempty"`
	Description        string            `json:"description"`
	HTMLDescription    string            `json:"html_description,omitempty"`
	Explicit           bool              `json:"explicit"`
	ExternalURLs       map[string]string `json:"external_urls,omitempty"`
	Href               string            `json:"href"`
	ID                 string            `json:"id"`
	Images             []*Image          `json:"images,omitempty"`
	IsExternallyHosted bool              `json:"is_externally_hosted"`
	Languages          []string          `json:"languages,omitempty"`
	MediaType          string            `json:"media_type"`
	Name               string            `json:"name"`
	Publisher          string            `json:"publisher"`
	Type               string            `json:"type,omitempty"`
	URI                string            `json:"uri"`
	TotalEpisodes      int               `json:"total_episodes"`
	Episodes           *Page[*Episode]   `json:"episodes,omitempty"`
}

func (s *Show) DecodeJSON(v Value) error {
	f := v.Fields()
	s.Description = f.String("description")
	s.Explicit = f.Bool("explicit")
	s.Href = f.String("href")
	s.ID = f.String("id")
	s.MediaType = f.String("media_type")
	s.Name = f.String("name")
	s.Publisher = f.String("publisher")
	s.URI = f.String("uri")

	s.AvailableMarkets = f.OptStrings("available_markets")
	s.Copyrights = OptionalList(f, "copyrights", DecodeCopyright)
	s.HTMLDescription = f.OptString("html_description")
	s.ExternalURLs = f.StringMap("external_urls")
	s.Images = OptionalList(f, "images", DecodeImage)
	s.IsExternallyHosted = f.OptBool("is_externally_hosted")
	s.Languages = f.OptStrings("languages")
	s.Type = f.OptString("type")
	s.TotalEpisodes = f.OptInt("total_episodes", 0)
	s.Episodes = Optional(f, "episodes", PageOf(DecodeEpisode))
	return f.Err()
}

func DecodeShow(v Value) (*Show, error) { return nullable[Show](v) }
