package models

import (
	"fmt"
	"strings"
)

// ItemType is the "type" member carried by every catalogue object.
type ItemType string

const (
	TypeAlbum    ItemType = "album"
	TypeArtist   ItemType = "artist"
	TypeEpisode  ItemType = "episode"
	TypePlaylist ItemType = "playlist"
	TypeShow     ItemType = "show"
	TypeTrack    ItemType = "track"
	TypeUser     ItemType = "user"
)

// ParseURI splits a "spotify:<type>:<id>" URI.
func ParseURI(uri string) (ItemType, string, error) {
	parts := strings.Split(uri, ":")
	if len(parts) != 3 || parts[0] != "spotify" || parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("malformed spotify uri %q", uri)
	}
	return ItemType(parts[1]), parts[2], nil
}

// FormatURI builds the URI for an item.
func FormatURI(kind ItemType, id string) string {
	return "spotify:" + string(kind) + ":" + id
}

// TruncateURI returns the id portion of a URI, or s unchanged when it is already a bare id.
func TruncateURI(s string) string {
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}
