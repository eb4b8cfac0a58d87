package lastfm

import (
	"context"
	"strconv"
)

// TrackService provides track metadata operations.
type TrackService struct {
	client *Client
}

// Info returns the track's catalogued length in whole seconds.
//
// The API reports the duration in milliseconds; it is converted with
// integer division. A track without a catalogued duration yields zero
// and no error; deciding what to substitute is the caller's business.
func (s *TrackService) Info(ctx context.Context, artist, track string) (int, error) {
	var resp trackInfoResponse
	err := s.client.get(ctx, "track.getInfo", map[string]string{
		"artist": artist,
		"track":  track,
	}, &resp)
	if err != nil {
		return 0, err
	}

	if resp.Track.Duration == "" {
		return 0, nil
	}

	millis, err := strconv.Atoi(resp.Track.Duration)
	if err != nil {
		return 0, &MalformedError{Reason: "track duration is not a number: " + resp.Track.Duration}
	}

	return millis / 1000, nil
}
