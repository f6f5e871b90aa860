package models

// User is a Spotify user profile. Public profiles and playlist owners carry only a subset of fields.
type User struct {
	Country      string            `json:"country,omitempty"`
	DisplayName  string            `json:"display_name,omitempty"`
	Email        string            `json:"email,omitempty"`
	ExternalURLs map[string]string `json:"external_urls,omitempty"`
	Followers    *Followers        `json:"followers,omitempty"`
	Href         string            `json:"href,omitempty"`
	ID           string            `json:"id"`
	Images       []*Image          `json:"images,omitempty"`
	Product      string            `json:"product,omitempty"`
	Type         string            `json:"type,omitempty"`
	URI          string            `json:"uri,omitempty"`
}

func (u *User) DecodeJSON(v Value) error {
	f := v.Fields()
	u.ID = f.String("id")
	u.Country = f.OptString("country")
	u.DisplayName = f.OptString("display_name")
	u.Email = f.OptString("email")
	u.ExternalURLs = f.StringMap("external_urls")
	u.Followers = Optional(f, "followers", DecodeFollowers)
	u.Href = f.OptString("href")
	u.Images = OptionalList(f, "images", DecodeImage)
	u.Product = f.OptString("product")
	u.Type = f.OptString("type")
	u.URI = f.OptString("uri")
	return f.Err()
}

func DecodeUser(v Value) (*User, error) { return nullable[User](v) }
