// Package stats computes per-day and per-week listening time from a
// user's Last.fm scrobble history, backed by two local caches: an
// append-only CSV of track durations and a JSON document of per-day
// aggregates.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jfmyers9/airtime/pkg/lastfm"
	"github.com/rs/zerolog"
)

// HistoryFetcher retrieves a user's scrobbles in an inclusive time window.
type HistoryFetcher interface {
	RecentTracks(ctx context.Context, user string, from, to time.Time) ([]lastfm.Scrobble, error)
}

// TrackInfoFetcher retrieves a track's catalogued length in seconds.
type TrackInfoFetcher interface {
	Info(ctx context.Context, artist, track string) (int, error)
}

// DefaultDuration is the length in seconds assumed for a track whose
// real duration cannot be determined.
const DefaultDuration = 180

// Aggregator orchestrates the Last.fm client and the two caches to
// produce daily and weekly listening-time totals. It is safe for
// concurrent use: the caches serialize their own mutations, and the
// aggregator itself holds no mutable state.
type Aggregator struct {
	history   HistoryFetcher
	trackInfo TrackInfoFetcher
	durations *DurationCache
	daily     *DailyCache
	logger    zerolog.Logger

	// now is injectable for tests; "today" is decided by it.
	now func() time.Time
}

// NewAggregator creates an Aggregator.
func NewAggregator(history HistoryFetcher, trackInfo TrackInfoFetcher, durations *DurationCache, daily *DailyCache, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		history:   history,
		trackInfo: trackInfo,
		durations: durations,
		daily:     daily,
		logger:    logger.With().Str("component", "aggregator").Logger(),
		now:       time.Now,
	}
}

// Day fetches a user's scrobbles for one local calendar day and computes
// total listening time, resolving each track's duration through the
// duration cache and, on a miss, the track catalogue.
//
// The day's stats are always persisted to the daily cache, empty days
// included, so repeat queries for quiet days skip the API. A cache
// write failure is logged and the computed result still returned.
// History-fetch failures propagate to the caller.
func (a *Aggregator) Day(ctx context.Context, user string, date time.Time) ([]lastfm.Scrobble, TimeParts, error) {
	from, to := dayWindow(date)

	scrobbles, err := a.history.RecentTracks(ctx, user, from, to)
	if err != nil {
		return nil, TimeParts{}, fmt.Errorf("failed to fetch scrobbles for %s: %w", user, err)
	}

	total := 0
	for i := range scrobbles {
		seconds := a.resolveDuration(ctx, scrobbles[i].Artist, scrobbles[i].Name)
		scrobbles[i].Duration = seconds
		total += seconds
	}

	totalTime := SplitSeconds(total)
	key := DateKey(date)
	if err := a.daily.Put(user, key, DayStats{TotalTime: totalTime, ScrobbleCount: len(scrobbles)}); err != nil {
		a.logger.Error().Err(err).Str("user", user).Str("date", key).Msg("Failed to persist daily stats")
	}

	a.logger.Debug().
		Str("user", user).
		Str("date", key).
		Int("scrobbles", len(scrobbles)).
		Int("total_seconds", total).
		Msg("Aggregated day")

	return scrobbles, totalTime, nil
}

// resolveDuration returns a track's length in seconds, consulting the
// duration cache before the track catalogue. Lookup failures and zero
// durations resolve to DefaultDuration, and whatever was resolved is
// cached so the same track never triggers a second lookup.
func (a *Aggregator) resolveDuration(ctx context.Context, artist, track string) int {
	if seconds, ok := a.durations.Get(artist, track); ok {
		return seconds
	}

	seconds, err := a.trackInfo.Info(ctx, artist, track)
	if err != nil {
		a.logger.Warn().Err(err).
			Str("artist", artist).
			Str("track", track).
			Msg("Track info lookup failed, using default duration")
		seconds = 0
	}
	if seconds <= 0 {
		seconds = DefaultDuration
	}

	if err := a.durations.Put(artist, track, seconds); err != nil {
		a.logger.Error().Err(err).
			Str("artist", artist).
			Str("track", track).
			Msg("Failed to persist track duration")
	}

	return seconds
}

// dayWindow returns the inclusive unix-time span covering one calendar
// day in the date's own time zone: start of day to one second before
// the next start of day.
func dayWindow(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return start, start.AddDate(0, 0, 1).Add(-time.Second)
}
