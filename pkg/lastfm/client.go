// Package lastfm provides a read-only client for the Last.fm API 2.0.
//
// This package covers the listening-history side of the API: recent
// tracks for a user and track metadata lookups. It is designed to be
// used as a standalone SDK.
//
// Example usage:
//
//	import "github.com/jfmyers9/airtime/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{APIKey: "your-api-key"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scrobbles, err := client.User().RecentTracks(ctx, "someuser", from, to)
package lastfm

import (
	"fmt"
	"net/http"
	"time"
)

// Config holds client configuration.
type Config struct {
	APIKey     string       // Required: Last.fm API key
	HTTPClient *http.Client // Optional: HTTP client (defaults to a client with DefaultTimeout)
	BaseURL    string       // Optional: Base URL for API (defaults to Last.fm API, used for testing)
	Logger     Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})

	// Warnf logs a data-quality warning with format and arguments.
	Warnf(format string, args ...interface{})
}

// Client is the main entry point for Last.fm API operations.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     Logger

	user  *UserService
	track *TrackService
}

const (
	// DefaultBaseURL is the default Last.fm API endpoint.
	DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

	// DefaultTimeout is the request timeout applied when no HTTP
	// client is supplied.
	DefaultTimeout = 15 * time.Second
)

// NewClient creates a new Last.fm API client.
//
// Returns an error if the required APIKey is missing.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lastfm: APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     cfg.Logger,
	}

	c.user = &UserService{client: c}
	c.track = &TrackService{client: c}

	return c, nil
}

// User returns the user listening-history service.
func (c *Client) User() *UserService {
	return c.user
}

// Track returns the track metadata service.
func (c *Client) Track() *TrackService {
	return c.track
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}

// logWarnf logs a warning if a logger is configured.
func (c *Client) logWarnf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warnf(format, args...)
	}
}
