package models

// Episode is a podcast episode. Show is only present on full episode objects.
type Episode struct {
	AudioPreviewURL      string            `json:"audio_preview_url,omitempty"`
	Description          string            `json:"description"`
	HTMLDescription      string            `json:"html_description,omitempty"`
	DurationMS           int               `json:"duration_ms"`
	Explicit             bool              `json:"explicit"`
	ExternalURLs         map[string]string `json:"external_urls,omitempty"`
	Href                 string            `json:"href"`
	ID                   string            `json:"id"`
	Images               []*Image          `json:"images,omitempty"`
	IsExternallyHosted   bool              `json:"is_externally_hosted"`
	IsPlayable           bool              `json:"is_playable"`
	Languages            []string          `json:"languages,omitempty"`
	Name                 string            `json:"name"`
	ReleaseDate          string            `json:"release_date"`
	ReleaseDatePrecision string            `json:"release_date_precision"`
	ResumePoint          *ResumePoint      `json:"resume_point,omitempty"`
	Restrictions         *Restrictions     `json:"restrictions,omitempty"`
	Type                 string            `json:"type,omitempty"`
	URI                  string            `json:"uri"`
	Show                 *Show             `json:"show,omitempty"`
}

func (e *Episode) DecodeJSON(v Value) error {
	f := v.Fields()
	e.Description = f.String("description")
	e.DurationMS = f.Int("duration_ms")
	e.Explicit = f.Bool("explicit")
	e.Href = f.String("href")
	e.ID = f.String("id")
	e.Name = f.String("name")
	e.ReleaseDate = f.String("release_date")
	e.ReleaseDatePrecision = f.String("release_date_precision")
	e.URI = f.String("uri")

	e.AudioPreviewURL = f.OptString("audio_preview_url")
	e.HTMLDescription = f.OptString("html_description")
	e.ExternalURLs = f.StringMap("external_urls")
	e.Images = OptionalList(f, "images", DecodeImage)
	e.IsExternallyHosted = f.OptBool("is_externally_hosted")
	e.IsPlayable = f.OptBool("is_playable")
	e.Languages = f.OptStrings("languages")
	e.ResumePoint = Optional(f, "resume_point", decodeResumePoint)
	e.Restrictions = Optional(f, "restrictions", decodeRestrictions)
	e.Type = f.OptString("type")
	e.Show = Optional(f, "show", DecodeShow)
	return f.Err()
}

func DecodeEpisode(v Value) (*Episode, error) { return nullable[Episode](v) }

// ResumePoint is the user's playback position inside an episode.
type ResumePoint struct {
	FullyPlayed      bool `json:"fully_played"`
	ResumePositionMS int  `json:"resume_position_ms"`
}

func (r *ResumePoint) DecodeJSON(v Value) error {
	f := v.Fields()
	r.FullyPlayed = f.Bool("fully_played")
	r.ResumePositionMS = f.Int("resume_position_ms")
	return f.Err()
}

func decodeResumePoint(v Value) (*ResumePoint, error) { return nullable[ResumePoint](v) }
