package lastfm

import (
	"encoding/json"
	"time"
)

// Scrobble is one logged listening event, normalized from the API's
// recent-tracks response.
type Scrobble struct {
	Artist    string    // Artist name
	Name      string    // Track name
	Album     string    // Album name
	Timestamp time.Time // When the track was played
	AlbumArt  string    // Medium-size artwork URL, may be empty
	Duration  int       // Track length in seconds, zero until resolved by the caller
}

// nameField accepts the two shapes Last.fm uses for artist and album
// fields: a bare string, or an object with a "#text" member. Both are
// normalized to a plain string, preferring the object text when present.
type nameField struct {
	Text string
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *nameField) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &f.Text)
	}

	var obj struct {
		Text string `json:"#text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f.Text = obj.Text
	return nil
}

// trackDate is the scrobble timestamp object.
type trackDate struct {
	UTS string `json:"uts"`
}

// trackImage is one entry of the artwork list.
type trackImage struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

// recentTrack is the wire shape of one item in user.getrecenttracks.
type recentTrack struct {
	Name   string       `json:"name"`
	Artist nameField    `json:"artist"`
	Album  nameField    `json:"album"`
	Image  []trackImage `json:"image"`
	Date   *trackDate   `json:"date"`
	Attr   struct {
		NowPlaying string `json:"nowplaying"`
	} `json:"@attr"`
}

// nowPlaying reports whether the entry is an in-progress listen rather
// than a completed scrobble.
func (t recentTrack) nowPlaying() bool {
	return t.Attr.NowPlaying != ""
}

// recentTracksResponse is the wire shape of user.getrecenttracks.
type recentTracksResponse struct {
	RecentTracks struct {
		Track []recentTrack `json:"track"`
		Attr  struct {
			Page       string `json:"page"`
			PerPage    string `json:"perPage"`
			TotalPages string `json:"totalPages"`
			Total      string `json:"total"`
		} `json:"@attr"`
	} `json:"recenttracks"`
}

// trackInfoResponse is the wire shape of track.getInfo. Duration is
// reported in milliseconds, as a string.
type trackInfoResponse struct {
	Track struct {
		Name     string `json:"name"`
		Duration string `json:"duration"`
	} `json:"track"`
}
