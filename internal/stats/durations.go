package stats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// durationKey identifies a track in the duration cache. Matching is
// exact and case-sensitive.
type durationKey struct {
	Artist string
	Track  string
}

// DurationCache maps (artist, track) pairs to track length in seconds.
// It keeps an in-memory mirror of an append-only CSV file, so lookups
// never touch disk. Durations are treated as immutable facts: entries
// are never re-fetched, rewritten, or evicted.
type DurationCache struct {
	mu      sync.Mutex
	path    string
	entries map[durationKey]int
	logger  zerolog.Logger
}

var durationHeader = []string{"artist", "track_name", "duration"}

// OpenDurationCache loads the persisted cache at path into memory.
// A missing file is not an error; malformed rows are skipped with a
// warning rather than failing the load.
func OpenDurationCache(path string, logger zerolog.Logger) (*DurationCache, error) {
	c := &DurationCache{
		path:    path,
		entries: make(map[durationKey]int),
		logger:  logger.With().Str("component", "duration-cache").Logger(),
	}

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			// Unreadable cache files degrade to an empty cache
			// rather than failing startup.
			c.logger.Warn().Err(err).Str("path", path).Msg("Cannot read duration cache, starting empty")
		}
		return c, nil
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	for line := 1; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				c.logger.Warn().Err(err).Int("line", line).Msg("Skipping malformed duration cache row")
				continue
			}
			// An I/O error will not clear on the next read; keep what
			// loaded so far.
			c.logger.Warn().Err(err).Str("path", path).Msg("Stopped reading duration cache")
			break
		}
		if line == 1 {
			continue // header
		}
		if len(row) < 3 {
			c.logger.Warn().Int("line", line).Msg("Skipping short duration cache row")
			continue
		}

		seconds, err := strconv.Atoi(row[2])
		if err != nil {
			c.logger.Warn().Int("line", line).Str("duration", row[2]).Msg("Skipping duration cache row with non-numeric duration")
			continue
		}

		// The file is append-only, so a key may appear more than once.
		// Last row wins.
		c.entries[durationKey{Artist: row[0], Track: row[1]}] = seconds
	}

	c.logger.Info().Int("entries", len(c.entries)).Msg("Loaded duration cache")
	return c, nil
}

// Get returns the cached duration in seconds for a track.
func (c *DurationCache) Get(artist, track string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seconds, ok := c.entries[durationKey{Artist: artist, Track: track}]
	return seconds, ok
}

// Put records a track duration, appending a row to the persisted file
// and updating the in-memory mirror under the same critical section.
func (c *DurationCache) Put(artist, track string, seconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, statErr := os.Stat(c.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open duration cache for append: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(durationHeader); err != nil {
			return fmt.Errorf("failed to write duration cache header: %w", err)
		}
	}
	if err := w.Write([]string{artist, track, strconv.Itoa(seconds)}); err != nil {
		return fmt.Errorf("failed to write duration cache row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush duration cache: %w", err)
	}

	c.entries[durationKey{Artist: artist, Track: track}] = seconds

	c.logger.Debug().
		Str("artist", artist).
		Str("track", track).
		Int("seconds", seconds).
		Msg("Cached track duration")
	return nil
}

// Len returns the number of cached tracks.
func (c *DurationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
