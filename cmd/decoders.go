package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/spotkit/internal/models"
	"github.com/desertthunder/spotkit/internal/shared"
)

// decoder turns a response body into a typed value.
type decoder func(data []byte) (any, error)

var decoders = map[string]decoder{
	"track":           decodeAs[models.Track],
	"album":           decodeAs[models.Album],
	"artist":          decodeAs[models.Artist],
	"playlist":        decodeAs[models.Playlist],
	"episode":         decodeAs[models.Episode],
	"show":            decodeAs[models.Show],
	"user":            decodeAs[models.User],
	"queue":           decodeAs[models.Queue],
	"playback":        decodeAs[models.PlaybackState],
	"search":          decodeAs[models.SearchResult],
	"audio-features":  decodeAs[models.AudioFeatures],
	"recently-played": decodeRecentlyPlayed,
	"page:track":      pageAs(models.DecodeTrack),
	"page:album":      pageAs(models.DecodeAlbum),
	"page:artist":     pageAs(models.DecodeArtist),
	"page:playlist":   pageAs(models.DecodePlaylist),
	"page:episode":    pageAs(models.DecodeEpisode),
	"page:show":       pageAs(models.DecodeShow),
	"page:saved":      pageAs(models.DecodeSavedTrack),
	"page:items":      pageAs(models.DecodePlaylistTrack),
}

func decodeAs[T any, PT interface {
	*T
	models.Decodable
}](data []byte) (any, error) {
	v, err := models.Decode[T, PT](data)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func pageAs[T any](decode models.DecodeFunc[T]) decoder {
	return func(data []byte) (any, error) {
		page, err := models.DecodePage(data, decode)
		if err != nil {
			return nil, err
		}
		return page, nil
	}
}

func decodeRecentlyPlayed(data []byte) (any, error) {
	rp, err := models.DecodeRecentlyPlayed(data)
	if err != nil {
		return nil, err
	}
	return rp, nil
}

// lookupDecoder resolves a --type value.
func lookupDecoder(name string) (decoder, error) {
	d, ok := decoders[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q (want one of %s)", shared.ErrInvalidArgument, name, decoderNames())
	}
	return d, nil
}

func decoderNames() string {
	names := make([]string, 0, len(decoders))
	for name := range decoders {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
