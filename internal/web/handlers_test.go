package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers9/airtime/internal/stats"
	"github.com/jfmyers9/airtime/pkg/lastfm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubHistory returns the same scrobbles for every window.
type stubHistory struct {
	scrobbles []lastfm.Scrobble
	err       error
}

func (s *stubHistory) RecentTracks(context.Context, string, time.Time, time.Time) ([]lastfm.Scrobble, error) {
	return s.scrobbles, s.err
}

// stubTrackInfo returns a fixed duration for every track.
type stubTrackInfo struct {
	seconds int
}

func (s *stubTrackInfo) Info(context.Context, string, string) (int, error) {
	return s.seconds, nil
}

func newTestServer(t *testing.T, history stats.HistoryFetcher, trackInfo stats.TrackInfoFetcher) *Server {
	t.Helper()

	dir := t.TempDir()
	durations, err := stats.OpenDurationCache(filepath.Join(dir, "song_durations.csv"), zerolog.Nop())
	require.NoError(t, err)
	daily, err := stats.OpenDailyCache(filepath.Join(dir, "daily_stats.json"), zerolog.Nop())
	require.NoError(t, err)

	agg := stats.NewAggregator(history, trackInfo, durations, daily, zerolog.Nop())

	server, err := New(agg, Config{PerPage: 10}, zerolog.Nop())
	require.NoError(t, err)
	return server
}

func get(t *testing.T, server *Server, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func post(t *testing.T, server *Server, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func TestDaily_BlankForm(t *testing.T) {
	server := newTestServer(t, &stubHistory{}, &stubTrackInfo{})

	w := get(t, server, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Daily listening time")
	assert.NotContains(t, w.Body.String(), "class=\"error\"")
}

func TestDaily_UsernameOnlyPrefillsForm(t *testing.T) {
	history := &stubHistory{scrobbles: []lastfm.Scrobble{{Artist: "A", Name: "One", Timestamp: time.Now()}}}
	server := newTestServer(t, history, &stubTrackInfo{seconds: 100})

	w := get(t, server, "/?username=alice")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="alice"`)
	// No fetch happened: no totals rendered.
	assert.NotContains(t, w.Body.String(), "scrobbles,")
}

func TestDaily_RendersScrobblesAndTotal(t *testing.T) {
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)
	history := &stubHistory{scrobbles: []lastfm.Scrobble{
		{Artist: "Radiohead", Name: "Karma Police", Album: "OK Computer", Timestamp: day.Add(20 * time.Hour)},
		{Artist: "Portishead", Name: "Glory Box", Album: "Dummy", Timestamp: day.Add(10 * time.Hour)},
	}}
	server := newTestServer(t, history, &stubTrackInfo{seconds: 280})

	w := get(t, server, "/?username=alice&date=2024-01-15")

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Radiohead")
	assert.Contains(t, body, "Karma Police")
	assert.Contains(t, body, "2 scrobbles")
	assert.Contains(t, body, "0h 9m 20s")
}

func TestDaily_Pagination(t *testing.T) {
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)
	var scrobbles []lastfm.Scrobble
	for i := 0; i < 12; i++ {
		scrobbles = append(scrobbles, lastfm.Scrobble{
			Artist:    "Artist",
			Name:      "Track " + string(rune('A'+i)),
			Timestamp: day.Add(time.Duration(i) * time.Hour),
		})
	}
	server := newTestServer(t, &stubHistory{scrobbles: scrobbles}, &stubTrackInfo{seconds: 60})

	w := get(t, server, "/?username=alice&date=2024-01-15&page=2&per_page=10")

	body := w.Body.String()
	assert.Contains(t, body, "Track K")
	assert.Contains(t, body, "Track L")
	assert.NotContains(t, body, "Track A<")
}

func TestDaily_PagePastEndRendersEmptyTable(t *testing.T) {
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)
	var scrobbles []lastfm.Scrobble
	for i := 0; i < 12; i++ {
		scrobbles = append(scrobbles, lastfm.Scrobble{
			Artist:    "Artist",
			Name:      "Track " + string(rune('A'+i)),
			Timestamp: day.Add(time.Duration(i) * time.Hour),
		})
	}
	server := newTestServer(t, &stubHistory{scrobbles: scrobbles}, &stubTrackInfo{seconds: 60})

	w := get(t, server, "/?username=alice&date=2024-01-15&page=5&per_page=10")

	body := w.Body.String()
	// The day has scrobbles, so no not-found message even though the
	// requested page is empty.
	assert.NotContains(t, body, "No scrobbles found")
	assert.Contains(t, body, "12 scrobbles")
}

func TestDaily_NoScrobblesShowsError(t *testing.T) {
	server := newTestServer(t, &stubHistory{}, &stubTrackInfo{})

	w := get(t, server, "/?username=alice&date=2024-01-15")

	assert.Contains(t, w.Body.String(), "No scrobbles found for alice on 2024-01-15")
}

func TestDaily_UpstreamErrorIsUserVisible(t *testing.T) {
	history := &stubHistory{err: &lastfm.APIError{Code: 6, Message: "User not found"}}
	server := newTestServer(t, history, &stubTrackInfo{})

	w := get(t, server, "/?username=nobody&date=2024-01-15")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestDaily_PostForm(t *testing.T) {
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)
	history := &stubHistory{scrobbles: []lastfm.Scrobble{
		{Artist: "A", Name: "One", Timestamp: day.Add(8 * time.Hour)},
	}}
	server := newTestServer(t, history, &stubTrackInfo{seconds: 120})

	w := post(t, server, "/", url.Values{
		"username": {"alice"},
		"date":     {"2024-01-15"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1 scrobbles")
}

func TestDaily_MissingUsername(t *testing.T) {
	server := newTestServer(t, &stubHistory{}, &stubTrackInfo{})

	w := post(t, server, "/", url.Values{"date": {"2024-01-15"}})

	assert.Contains(t, w.Body.String(), "Please enter a Last.fm username")
}

func TestWeekly_RendersWeek(t *testing.T) {
	day := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)
	history := &stubHistory{scrobbles: []lastfm.Scrobble{
		{Artist: "A", Name: "One", Timestamp: day.Add(8 * time.Hour)},
	}}
	server := newTestServer(t, history, &stubTrackInfo{seconds: 200})

	w := post(t, server, "/weekly", url.Values{
		"username":   {"alice"},
		"start_date": {"2024-01-15"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Monday")
	assert.Contains(t, body, "Sunday")
	assert.Contains(t, body, "Week total")
}

func TestWeekly_MissingStartDate(t *testing.T) {
	server := newTestServer(t, &stubHistory{}, &stubTrackInfo{})

	w := post(t, server, "/weekly", url.Values{"username": {"alice"}})

	assert.Contains(t, w.Body.String(), "Please select a start date")
}

func TestWeekly_EmptyWeekShowsError(t *testing.T) {
	server := newTestServer(t, &stubHistory{}, &stubTrackInfo{})

	w := post(t, server, "/weekly", url.Values{
		"username":   {"alice"},
		"start_date": {"2024-01-15"},
	})

	assert.Contains(t, w.Body.String(), "No scrobbles found for alice in the week starting 2024-01-15")
}
