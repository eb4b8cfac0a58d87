package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// apiEnvelope holds the top-level error fields every Last.fm JSON
// response may carry.
type apiEnvelope struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// get makes a GET request to the Last.fm API and decodes the JSON
// response into out.
//
// It handles:
// - Request construction with API key and format parameters
// - Error classification (network, API error payload, malformed body)
// - Context cancellation
//
// Failed calls fail once; there is no retry logic.
func (c *Client) get(ctx context.Context, method string, params map[string]string, out interface{}) error {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("method", method)
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")

	c.logDebugf("lastfm: calling %s", method)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "airtime/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	// Last.fm reports logical errors in the body, sometimes alongside a
	// non-200 status, so check for an error payload before the status.
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != 0 {
		return &APIError{Code: env.Error, Message: env.Message}
	}

	if resp.StatusCode != http.StatusOK {
		return &NetworkError{Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedError{Reason: fmt.Sprintf("decoding %s response", method), Err: err}
	}

	c.logDebugf("lastfm: %s succeeded", method)
	return nil
}
