package models

import (
	"encoding/json"
	"fmt"
)

// Device is a Spotify Connect target. VolumePercent is -1 when the device reports no volume.
type Device struct {
	ID               string `json:"id,omitempty"`
	IsActive         bool   `json:"is_active"`
	IsPrivateSession bool   `json:"is_private_session"`
	IsRestricted     bool   `json:"is_restricted"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	VolumePercent    int    `json:"volume_percent"`
	SupportsVolume   bool   `json:"supports_volume"`
}

func (d *Device) DecodeJSON(v Value) error {
	f := v.Fields()
	d.ID = f.OptString("id")
	d.IsActive = f.Bool("is_active")
	d.IsPrivateSession = f.Bool("is_private_session")
	d.IsRestricted = f.Bool("is_restricted")
	d.Name = f.String("name")
	d.Type = f.String("type")
	d.VolumePercent = f.OptInt("volume_percent", -1)
	d.SupportsVolume = f.OptBool("supports_volume")
	return f.Err()
}

func DecodeDevice(v Value) (*Device, error) { return nullable[Device](v) }

// PlaybackContext is the album, artist, playlist or show that playback was started from.
type PlaybackContext struct {
	Type         string            `json:"type"`
	Href         string            `json:"href"`
	ExternalURLs map[string]string `json:"external_urls,omitempty"`
	URI          string            `json:"uri"`
}

func (c *PlaybackContext) DecodeJSON(v Value) error {
	f := v.Fields()
	c.Type = f.String("type")
	c.Href = f.String("href")
	c.URI = f.String("uri")
	c.ExternalURLs = f.StringMap("external_urls")
	return f.Err()
}

func decodePlaybackContext(v Value) (*PlaybackContext, error) { return nullable[PlaybackContext](v) }

// Actions lists which player commands are currently disallowed.
type Actions struct {
	InterruptingPlayback  bool `json:"interrupting_playback,omitempty"`
	Pausing               bool `json:"pausing,omitempty"`
	Resuming              bool `json:"resuming,omitempty"`
	Seeking               bool `json:"seeking,omitempty"`
	SkippingNext          bool `json:"skipping_next,omitempty"`
	SkippingPrev          bool `json:"skipping_prev,omitempty"`
	TogglingRepeatContext bool `json:"toggling_repeat_context,omitempty"`
	TogglingShuffle       bool `json:"toggling_shuffle,omitempty"`
	TogglingRepeatTrack   bool `json:"toggling_repeat_track,omitempty"`
	TransferringPlayback  bool `json:"transferring_playback,omitempty"`
}

// DecodeJSON accepts both the {"disallows": {...}} wrapper and the flat form.
func (a *Actions) DecodeJSON(v Value) error {
	f := v.Fields()
	if f.Has("disallows") {
		f = f.Value("disallows").Fields()
	}
	a.InterruptingPlayback = f.OptBool("interrupting_playback")
	a.Pausing = f.OptBool("pausing")
	a.Resuming = f.OptBool("resuming")
	a.Seeking = f.OptBool("seeking")
	a.SkippingNext = f.OptBool("skipping_next")
	a.SkippingPrev = f.OptBool("skipping_prev")
	a.TogglingRepeatContext = f.OptBool("toggling_repeat_context")
	a.TogglingShuffle = f.OptBool("toggling_shuffle")
	a.TogglingRepeatTrack = f.OptBool("toggling_repeat_track")
	a.TransferringPlayback = f.OptBool("transferring_playback")
	return f.Err()
}

func decodeActions(v Value) (*Actions, error) { return nullable[Actions](v) }

// Playable is a track or an episode, selected by the object's "type" member.
type Playable struct {
	Kind    ItemType
	Track   *Track
	Episode *Episode
}

func (p *Playable) DecodeJSON(v Value) error {
	f := v.Fields()
	kind := ItemType(f.String("type"))
	if err := f.Err(); err != nil {
		return err
	}

	var err error
	switch kind {
	case TypeTrack:
		p.Track, err = DecodeValue[Track](v)
	case TypeEpisode:
		p.Episode, err = DecodeValue[Episode](v)
	default:
		return &DecodeError{Path: v.Path() + ".type", Reason: fmt.Sprintf("unsupported playable type %q", kind)}
	}
	p.Kind = kind
	return err
}

// ID returns the id of whichever item is set.
func (p *Playable) ID() string {
	switch {
	case p.Track != nil:
		return p.Track.ID
	case p.Episode != nil:
		return p.Episode.ID
	}
	return ""
}

// Name returns the name of whichever item is set.
func (p *Playable) Name() string {
	switch {
	case p.Track != nil:
		return p.Track.Name
	case p.Episode != nil:
		return p.Episode.Name
	}
	return ""
}

// MarshalJSON writes the underlying track or episode object.
func (p Playable) MarshalJSON() ([]byte, error) {
	switch {
	case p.Track != nil:
		return json.Marshal(p.Track)
	case p.Episode != nil:
		return json.Marshal(p.Episode)
	}
	return []byte("null"), nil
}

func DecodePlayable(v Value) (*Playable, error) { return nullable[Playable](v) }

// PlaybackState is the user's current playback. The endpoint answers 204 when nothing is active.
type PlaybackState struct {
	Device               *Device          `json:"device"`
	RepeatState          string           `json:"repeat_state"`
	ShuffleState         bool             `json:"shuffle_state"`
	Context              *PlaybackContext `json:"context"`
	Timestamp            int64            `json:"timestamp"`
	ProgressMS           int              `json:"progress_ms"`
	IsPlaying            bool             `json:"is_playing"`
	Item                 *Playable        `json:"item"`
	CurrentlyPlayingType string           `json:"currently_playing_type"`
	Actions              *Actions         `json:"actions,omitempty"`
}

func (s *PlaybackState) DecodeJSON(v Value) error {
	f := v.Fields()
	s.Device = Required(f, "device", DecodeDevice)
	s.RepeatState = f.String("repeat_state")
	s.ShuffleState = f.Bool("shuffle_state")
	s.Timestamp = f.Int64("timestamp")
	s.IsPlaying = f.Bool("is_playing")
	s.CurrentlyPlayingType = f.String("currently_playing_type")

	s.Context = Optional(f, "context", decodePlaybackContext)
	s.ProgressMS = f.OptInt("progress_ms", 0)
	s.Item = Optional(f, "item", DecodePlayable)
	s.Actions = Optional(f, "actions", decodeActions)
	return f.Err()
}

// Queue is the currently playing item followed by what is queued after it.
type Queue struct {
	CurrentlyPlaying *Playable   `json:"currently_playing"`
	Queue            []*Playable `json:"queue"`
}

func (q *Queue) DecodeJSON(v Value) error {
	f := v.Fields()
	q.CurrentlyPlaying = Optional(f, "currently_playing", DecodePlayable)
	q.Queue = RequiredList(f, "queue", DecodePlayable)
	return f.Err()
}

// PlayHistory is one entry of the recently played list.
type PlayHistory struct {
	Track    *Track           `json:"track"`
	PlayedAt string           `json:"played_at"`
	Context  *PlaybackContext `json:"context"`
}

func (h *PlayHistory) DecodeJSON(v Value) error {
	f := v.Fields()
	h.Track = Required(f, "track", DecodeTrack)
	h.PlayedAt = f.String("played_at")
	h.Context = Optional(f, "context", decodePlaybackContext)
	return f.Err()
}

func DecodePlayHistory(v Value) (*PlayHistory, error) { return nullable[PlayHistory](v) }

// RecentlyPlayed is the cursor page returned by the recently played endpoint.
type RecentlyPlayed = CursorPage[*PlayHistory]

// DecodeRecentlyPlayed parses a recently played response.
func DecodeRecentlyPlayed(data []byte) (*RecentlyPlayed, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return DecodeCursorPageValue(v, DecodePlayHistory)
}
