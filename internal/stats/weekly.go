package stats

import (
	"context"
	"time"
)

// DaySummary is one day's slice of a weekly report.
type DaySummary struct {
	Date          string    // ISO calendar date
	DayName       string    // full weekday name
	ShortDate     string    // MM/DD label for presentation
	TotalTime     TimeParts // listening time for the day
	ScrobbleCount int       // number of scrobbles
}

// WeekTotals is the element-wise sum of a week's days.
type WeekTotals struct {
	TimeParts
	TotalTracks int
}

// Week aggregates seven consecutive calendar days starting at start.
//
// Past days are served straight from the daily cache when an entry
// exists; per-track detail is unavailable in that path. Today is always
// recomputed because its scrobbles are still accumulating. A day that
// fails upstream is reported as all zeros rather than failing the week.
func (a *Aggregator) Week(ctx context.Context, user string, start time.Time) ([]DaySummary, WeekTotals) {
	today := DateKey(a.now())

	days := make([]DaySummary, 0, 7)
	totalSeconds := 0
	totalTracks := 0

	for offset := 0; offset < 7; offset++ {
		date := start.AddDate(0, 0, offset)
		key := DateKey(date)

		var stats DayStats
		if cached, ok := a.cachedDay(user, key, today); ok {
			stats = cached
		} else {
			scrobbles, totalTime, err := a.Day(ctx, user, date)
			if err != nil {
				a.logger.Error().Err(err).
					Str("user", user).
					Str("date", key).
					Msg("Failed to aggregate day, reporting zeros")
				stats = DayStats{}
			} else {
				stats = DayStats{TotalTime: totalTime, ScrobbleCount: len(scrobbles)}
			}
		}

		days = append(days, DaySummary{
			Date:          key,
			DayName:       date.Weekday().String(),
			ShortDate:     date.Format("01/02"),
			TotalTime:     stats.TotalTime,
			ScrobbleCount: stats.ScrobbleCount,
		})
		totalSeconds += stats.TotalTime.TotalSeconds
		totalTracks += stats.ScrobbleCount
	}

	return days, WeekTotals{TimeParts: SplitSeconds(totalSeconds), TotalTracks: totalTracks}
}

// cachedDay returns the cached stats for a user-day, unless the day is
// today: today's entry is deliberately never trusted because the day is
// still in progress.
func (a *Aggregator) cachedDay(user, date, today string) (DayStats, bool) {
	if date == today {
		return DayStats{}, false
	}
	stats, ok := a.daily.Get(user, date)
	if ok {
		a.logger.Debug().Str("user", user).Str("date", date).Msg("Using cached daily stats")
	}
	return stats, ok
}
