package lastfm

import (
	"context"
	"sort"
	"strconv"
	"time"
)

// UserService provides user listening-history operations.
type UserService struct {
	client *Client
}

// pageLimit is the maximum page size user.getrecenttracks allows.
const pageLimit = 200

// RecentTracks fetches every scrobble for user in the inclusive unix-time
// window [from, to].
//
// The API paginates results, so pages are requested sequentially starting
// at 1 until the total page count declared by the first response is
// exhausted. "Now playing" entries are dropped. The result is sorted by
// timestamp descending, stable for ties.
func (s *UserService) RecentTracks(ctx context.Context, user string, from, to time.Time) ([]Scrobble, error) {
	var scrobbles []Scrobble

	page := 1
	totalPages := 1
	for page <= totalPages {
		var resp recentTracksResponse
		err := s.client.get(ctx, "user.getrecenttracks", map[string]string{
			"user":  user,
			"from":  strconv.FormatInt(from.Unix(), 10),
			"to":    strconv.FormatInt(to.Unix(), 10),
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(pageLimit),
		}, &resp)
		if err != nil {
			return nil, err
		}

		if page == 1 {
			if n, err := strconv.Atoi(resp.RecentTracks.Attr.TotalPages); err == nil && n > 0 {
				totalPages = n
			}
		}

		for _, t := range resp.RecentTracks.Track {
			if t.nowPlaying() {
				continue
			}
			scrobbles = append(scrobbles, s.normalize(t))
		}

		page++
	}

	sort.SliceStable(scrobbles, func(i, j int) bool {
		return scrobbles[i].Timestamp.After(scrobbles[j].Timestamp)
	})

	return scrobbles, nil
}

// normalize converts a wire track into a canonical Scrobble.
func (s *UserService) normalize(t recentTrack) Scrobble {
	name := t.Name
	if name == "" {
		name = "Unknown Track"
	}

	artist := t.Artist.Text
	if artist == "" {
		artist = "Unknown Artist"
	}

	album := t.Album.Text
	if album == "" {
		album = "Unknown Album"
	}

	timestamp := time.Now()
	if t.Date != nil {
		if uts, err := strconv.ParseInt(t.Date.UTS, 10, 64); err == nil {
			timestamp = time.Unix(uts, 0)
		} else {
			s.client.logWarnf("lastfm: unparseable timestamp for track %q, using current time", t.Name)
		}
	} else {
		s.client.logWarnf("lastfm: missing timestamp for track %q, using current time", t.Name)
	}

	var art string
	for _, img := range t.Image {
		if img.Size == "medium" {
			art = img.URL
			break
		}
	}

	return Scrobble{
		Artist:    artist,
		Name:      name,
		Album:     album,
		Timestamp: timestamp,
		AlbumArt:  art,
	}
}
