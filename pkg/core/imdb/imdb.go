package imdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client for the unofficial IMDb suggestion API, used to resolve a title
// typed by the user to an IMDb ID when the hash and filename tell us
// nothing. The endpoint is undocumented and may break without notice, so
// every failure degrades to an empty result set instead of an error.

// imdbSuggestionResponse mirrors the top-level structure.
type imdbSuggestionResponse struct {
	Version int                  `json:"v"`
	Query   string               `json:"q"`
	Data    []imdbSuggestionItem `json:"d"`
}

// imdbSuggestionItem mirrors an individual suggestion. Field names and
// existence can be inconsistent.
type imdbSuggestionItem struct {
	Label      string `json:"l"`            // Title
	ID         string `json:"id"`           // IMDb ID (e.g. "tt1234567")
	Year       int    `json:"y,omitempty"`  // Primary year field
	YearRange  string `json:"yr,omitempty"` // Sometimes used instead of 'y'
	ResultType string `json:"q,omitempty"`  // e.g. "feature", "TV series"
}

// getYear tries 'y' first, then parses the start year from 'yr'.
func (item *imdbSuggestionItem) getYear() int {
	if item.Year != 0 {
		return item.Year
	}
	if item.YearRange != "" {
		parts := strings.Split(item.YearRange, "-")
		if year, err := strconv.Atoi(parts[0]); err == nil {
			return year
		}
	}
	return 0
}

// imdbBaseURL is variable for testing.
var imdbBaseURL = "https://v3.sg.media-imdb.com"

// SetBaseURLForTesting temporarily overrides the API base URL and returns
// the original so it can be restored.
func SetBaseURLForTesting(newURL string) string {
	oldURL := imdbBaseURL
	imdbBaseURL = newURL
	return oldURL
}

// Client handles communication with the IMDb suggestion API.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new IMDb suggestion client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Suggestion is a simplified title search result.
type Suggestion struct {
	ID    string // e.g. "tt1234567"
	Title string
	Year  int
}

// Search queries the suggestion API for titles matching the query, keeping
// only entries with a valid tt* ID that look like features or series.
func (c *Client) Search(ctx context.Context, query string) ([]Suggestion, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []Suggestion{}, nil
	}

	firstLetter := string(query[0])
	apiURL := fmt.Sprintf("%s/suggestion/titles/%s/%s.json",
		imdbBaseURL, firstLetter, url.PathEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create imdb suggestion request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warnf("IMDb suggestion request failed: %v", err)
		return []Suggestion{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("IMDb suggestion request returned non-OK status: %s", resp.Status)
		return []Suggestion{}, nil
	}

	var imdbResponse imdbSuggestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&imdbResponse); err != nil {
		log.Warnf("Failed to decode IMDb suggestion response: %v", err)
		return []Suggestion{}, nil
	}

	output := make([]Suggestion, 0, len(imdbResponse.Data))
	for _, item := range imdbResponse.Data {
		if item.ID == "" || !strings.HasPrefix(item.ID, "tt") || item.Label == "" {
			continue
		}
		switch item.ResultType {
		case "feature", "TV series", "TV mini-series", "":
		default:
			continue
		}
		output = append(output, Suggestion{
			ID:    item.ID,
			Title: item.Label,
			Year:  item.getYear(),
		})
	}
	return output, nil
}
