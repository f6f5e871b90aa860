package models

// AudioFeatures are the acoustic attributes computed for a track.
type AudioFeatures struct {
	Acousticness     float64 `json:"acousticness"`
	AnalysisURL      string  `json:"analysis_url,omitempty"`
	Danceability     float64 `json:"danceability"`
	DurationMS       int     `json:"duration_ms"`
	Energy           float64 `json:"energy"`
	ID               string  `json:"id"`
	Instrumentalness float64 `json:"instrumentalness"`
	Key              int     `json:"key"`
	Liveness         float64 `json:"liveness"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	TimeSignature    int     `json:"time_signature"`
	TrackHref        string  `json:"track_href,omitempty"`
	Type             string  `json:"type,omitempty"`
	URI              string  `json:"uri"`
	Valence          float64 `json:"valence"`
}

func (a *AudioFeatures) DecodeJSON(v Value) error {
	f := v.Fields()
	a.ID = f.String("id")
	a.URI = f.String("uri")
	a.DurationMS = f.Int("duration_ms")

	a.Acousticness = f.OptFloat("acousticness")
	a.AnalysisURL = f.OptString("analysis_url")
	a.Danceability = f.OptFloat("danceability")
	a.Energy = f.OptFloat("energy")
	a.Instrumentalness = f.OptFloat("instrumentalness")
	// -1 means no key was detected
	a.Key = f.OptInt("key", -1)
	a.Liveness = f.OptFloat("liveness")
	a.Loudness = f.OptFloat("loudness")
	a.Mode = f.OptInt("mode", 0)
	a.Speechiness = f.OptFloat("speechiness")
	a.Tempo = f.OptFloat("tempo")
	a.TimeSignature = f.OptInt("time_signature", 0)
	a.TrackHref = f.OptString("track_href")
	a.Type = f.OptString("type")
	a.Valence = f.OptFloat("valence")
	return f.Err()
}
