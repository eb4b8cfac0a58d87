package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfmyers9/airtime/pkg/lastfm"
)

// fakeHistory serves canned scrobbles keyed by the ISO date of the
// requested window's start, and counts fetches.
type fakeHistory struct {
	byDay    map[string][]lastfm.Scrobble
	failDays map[string]error
	calls    int
}

func (f *fakeHistory) RecentTracks(_ context.Context, _ string, from, _ time.Time) ([]lastfm.Scrobble, error) {
	f.calls++
	key := DateKey(from)
	if err, ok := f.failDays[key]; ok {
		return nil, err
	}
	return f.byDay[key], nil
}

// fakeTrackInfo serves canned durations keyed by "artist|track".
type fakeTrackInfo struct {
	durations map[string]int
	errs      map[string]error
	calls     int
}

func (f *fakeTrackInfo) Info(_ context.Context, artist, track string) (int, error) {
	f.calls++
	key := artist + "|" + track
	if err, ok := f.errs[key]; ok {
		return 0, err
	}
	return f.durations[key], nil
}

func scrobbleOn(day time.Time, hour int, artist, name string) lastfm.Scrobble {
	return lastfm.Scrobble{
		Artist:    artist,
		Name:      name,
		Album:     "Album",
		Timestamp: day.Add(time.Duration(hour) * time.Hour),
	}
}

func newTestAggregator(t *testing.T, history *fakeHistory, trackInfo *fakeTrackInfo) *Aggregator {
	t.Helper()

	durations, _ := tempDurationCache(t)
	daily, _ := tempDailyCache(t)
	return NewAggregator(history, trackInfo, durations, daily, zerolog.Nop())
}

func TestAggregator_Day_Scenario(t *testing.T) {
	// Three tracks on 2024-01-15: one already cached at 200s, one
	// resolved from the API at 210s, one at 150s. Total 560s = 9m20s.
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)

	history := &fakeHistory{byDay: map[string][]lastfm.Scrobble{
		"2024-01-15": {
			scrobbleOn(date, 20, "A", "One"),
			scrobbleOn(date, 15, "B", "Two"),
			scrobbleOn(date, 9, "C", "Three"),
		},
	}}
	trackInfo := &fakeTrackInfo{durations: map[string]int{
		"B|Two":   210,
		"C|Three": 150,
	}}

	agg := newTestAggregator(t, history, trackInfo)
	require.NoError(t, agg.durations.Put("A", "One", 200))

	scrobbles, totalTime, err := agg.Day(context.Background(), "alice", date)
	require.NoError(t, err)

	assert.Equal(t, TimeParts{Hours: 0, Minutes: 9, Seconds: 20, TotalSeconds: 560}, totalTime)
	require.Len(t, scrobbles, 3)
	assert.Equal(t, 200, scrobbles[0].Duration)
	assert.Equal(t, 210, scrobbles[1].Duration)
	assert.Equal(t, 150, scrobbles[2].Duration)

	// Only the two cache misses hit the track catalogue.
	assert.Equal(t, 2, trackInfo.calls)

	// Result persisted to the daily cache.
	stats, ok := agg.daily.Get("alice", "2024-01-15")
	require.True(t, ok)
	assert.Equal(t, 3, stats.ScrobbleCount)
	assert.Equal(t, 560, stats.TotalTime.TotalSeconds)
}

func TestAggregator_Day_SecondResolutionIsCached(t *testing.T) {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)

	history := &fakeHistory{byDay: map[string][]lastfm.Scrobble{
		"2024-01-15": {scrobbleOn(date, 12, "A", "One")},
	}}
	trackInfo := &fakeTrackInfo{durations: map[string]int{"A|One": 240}}

	agg := newTestAggregator(t, history, trackInfo)

	_, _, err := agg.Day(context.Background(), "alice", date)
	require.NoError(t, err)
	assert.Equal(t, 1, trackInfo.calls)

	_, _, err = agg.Day(context.Background(), "alice", date)
	require.NoError(t, err)
	assert.Equal(t, 1, trackInfo.calls, "second resolution must not call the API")
}

func TestAggregator_Day_EmptyDayPersistsZero(t *testing.T) {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)

	history := &fakeHistory{}
	agg := newTestAggregator(t, history, &fakeTrackInfo{})

	scrobbles, totalTime, err := agg.Day(context.Background(), "alice", date)
	require.NoError(t, err)
	assert.Empty(t, scrobbles)
	assert.Equal(t, 0, totalTime.TotalSeconds)

	stats, ok := agg.daily.Get("alice", "2024-01-15")
	require.True(t, ok, "empty day must still be persisted")
	assert.Equal(t, DayStats{}, stats)
}

func TestAggregator_Day_FetchErrorPropagates(t *testing.T) {
	date := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)

	upstream := &lastfm.APIError{Code: 11, Message: "Service Offline"}
	history := &fakeHistory{failDays: map[string]error{"2024-01-15": upstream}}
	agg := newTestAggregator(t, history, &fakeTrackInfo{})

	_, _, err := agg.Day(context.Background(), "alice", date)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream)

	_, ok := agg.daily.Get("alice", "2024-01-15")
	assert.False(t, ok, "failed day must not be cached")
}

func TestAggregator_ResolveDuration_ZeroBecomesDefault(t *testing.T) {
	// The catalogue reporting a zero duration must resolve to the
	// default, and the default is what gets cached.
	trackInfo := &fakeTrackInfo{durations: map[string]int{"A|One": 0}}
	agg := newTestAggregator(t, &fakeHistory{}, trackInfo)

	seconds := agg.resolveDuration(context.Background(), "A", "One")
	assert.Equal(t, DefaultDuration, seconds)

	cached, ok := agg.durations.Get("A", "One")
	require.True(t, ok)
	assert.Equal(t, DefaultDuration, cached)
}

func TestAggregator_ResolveDuration_ErrorBecomesDefaultAndIsCached(t *testing.T) {
	trackInfo := &fakeTrackInfo{errs: map[string]error{
		"A|One": &lastfm.NetworkError{Err: errors.New("connection refused")},
	}}
	agg := newTestAggregator(t, &fakeHistory{}, trackInfo)

	seconds := agg.resolveDuration(context.Background(), "A", "One")
	assert.Equal(t, DefaultDuration, seconds)
	assert.Equal(t, 1, trackInfo.calls)

	// The failure is not retried on the next resolution.
	seconds = agg.resolveDuration(context.Background(), "A", "One")
	assert.Equal(t, DefaultDuration, seconds)
	assert.Equal(t, 1, trackInfo.calls)
}

func TestDayWindow(t *testing.T) {
	date := time.Date(2024, time.January, 15, 13, 37, 0, 0, time.Local)

	from, to := dayWindow(date)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local), from)
	assert.Equal(t, time.Date(2024, time.January, 15, 23, 59, 59, 0, time.Local), to)
}
