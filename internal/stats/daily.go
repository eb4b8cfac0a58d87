package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TimeParts is a listening duration broken into display units.
// TotalSeconds is the canonical value; Hours, Minutes and Seconds are
// its fixed decomposition (TotalSeconds == Hours*3600+Minutes*60+Seconds).
type TimeParts struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	TotalSeconds int `json:"total_seconds"`
}

// SplitSeconds decomposes a second count into TimeParts.
func SplitSeconds(total int) TimeParts {
	rem := total % 3600
	return TimeParts{
		Hours:        total / 3600,
		Minutes:      rem / 60,
		Seconds:      rem % 60,
		TotalSeconds: total,
	}
}

// DayStats is one user-day's aggregate.
type DayStats struct {
	TotalTime     TimeParts `json:"total_time"`
	ScrobbleCount int       `json:"scrobble_count"`
}

// DailyCache stores per-day aggregates keyed by username then ISO date.
// The persisted form is a single JSON document rewritten on every Put;
// the whole cache fits in memory and writes are rare relative to reads.
// Today's entry must never be read back by callers, because the day is
// still accumulating scrobbles.
type DailyCache struct {
	mu     sync.Mutex
	path   string
	days   map[string]map[string]DayStats
	logger zerolog.Logger
}

// dailyDocument is the JSON representation of the cache on disk.
type dailyDocument struct {
	DailyStats map[string]map[string]DayStats `json:"daily_stats"`
}

// OpenDailyCache loads the persisted cache at path into memory.
// A missing file is not an error.
func OpenDailyCache(path string, logger zerolog.Logger) (*DailyCache, error) {
	c := &DailyCache{
		path:   path,
		days:   make(map[string]map[string]DayStats),
		logger: logger.With().Str("component", "daily-cache").Logger(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn().Err(err).Str("path", path).Msg("Cannot read daily cache, starting empty")
		}
		return c, nil
	}

	var doc dailyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		// A corrupt document is not fatal; start empty and let the
		// next Put rewrite it.
		c.logger.Warn().Err(err).Str("path", path).Msg("Daily cache is corrupt, starting empty")
		return c, nil
	}
	if doc.DailyStats != nil {
		c.days = doc.DailyStats
	}

	entries := 0
	for _, dates := range c.days {
		entries += len(dates)
	}
	c.logger.Info().Int("users", len(c.days)).Int("entries", entries).Msg("Loaded daily cache")
	return c, nil
}

// Get returns the cached aggregate for a user-day. The date key is an
// ISO calendar date (see DateKey).
func (c *DailyCache) Get(user, date string) (DayStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.days[user][date]
	return stats, ok
}

// Put records a user-day aggregate and rewrites the persisted document.
// Both happen under the cache's mutex, which is independent of the
// duration cache's.
func (c *DailyCache) Put(user, date string, stats DayStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.days[user] == nil {
		c.days[user] = make(map[string]DayStats)
	}
	c.days[user][date] = stats

	if err := c.persist(); err != nil {
		return err
	}

	c.logger.Debug().Str("user", user).Str("date", date).Msg("Saved daily stats")
	return nil
}

// persist writes the whole document to disk. Must be called with the
// lock held.
func (c *DailyCache) persist() error {
	data, err := json.MarshalIndent(dailyDocument{DailyStats: c.days}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode daily cache: %w", err)
	}

	// Write atomically via temp file + rename so readers never see a
	// partially written document.
	tmpPath := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create daily cache directory: %w", err)
	}
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write daily cache: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		return fmt.Errorf("failed to replace daily cache: %w", err)
	}
	return nil
}

// DateKey formats a date as the ISO calendar-date cache key.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
