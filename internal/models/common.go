package models

// Image is a cover art or profile picture. Width and Height are 0 when unknown.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

func (i *Image) DecodeJSON(v Value) error {
	f := v.Fields()
	i.URL = f.String("url")
	i.Height = f.OptInt("height", 0)
	i.Width = f.OptInt("width", 0)
	return f.Err()
}

// Followers holds follower information for artists, playlists and users.
type Followers struct {
	Href  string `json:"href,omitempty"`
	Total int    `json:"total"`
}

func (fl *Followers) DecodeJSON(v Value) error {
	f := v.Fields()
	fl.Href = f.OptString("href")
	fl.Total = f.Int("total")
	return f.Err()
}

// Copyright is a copyright or performance rights statement.
type Copyright struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func (c *Copyright) DecodeJSON(v Value) error {
	f := v.Fields()
	c.Text = f.String("text")
	c.Type = f.String("type")
	return f.Err()
}

// Restrictions explains why content is unavailable ("market", "product", "explicit").
type Restrictions struct {
	Reason string `json:"reason,omitempty"`
}

func (r *Restrictions) DecodeJSON(v Value) error {
	f := v.Fields()
	r.Reason = f.OptString("reason")
	return f.Err()
}

func DecodeImage(v Value) (*Image, error)         { return nullable[Image](v) }
func DecodeFollowers(v Value) (*Followers, error) { return nullable[Followers](v) }
func DecodeCopyright(v Value) (*Copyright, error) { return nullable[Copyright](v) }

func decodeRestrictions(v Value) (*Restrictions, error) { return nullable[Restrictions](v) }
