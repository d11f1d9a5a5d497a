package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Client fetches subtitle bodies from the direct download links the search
// results carry (SubDownloadLink). These links serve gzip payloads from a
// CDN that occasionally answers with transient errors, so fetches are
// retried a bounded number of times.
type Client struct {
	userAgent  string
	httpClient *http.Client
	attempts   uint
}

// New creates a download client. userAgent must be the same registered
// agent used for the XML-RPC session.
func New(userAgent string) *Client {
	return &Client{
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   3,
	}
}

// transientError marks an error worth retrying (5xx or 429 responses).
type transientError struct {
	status string
}

func (e *transientError) Error() string {
	return fmt.Sprintf("transient server error: %s", e.status)
}

// Fetch downloads the body at url, retrying transient failures. The caller
// is responsible for decompressing the (usually gzip) payload.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create download request: %w", err))
			}
			req.Header.Set("User-Agent", c.userAgent)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("download request failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				return &transientError{status: resp.Status}
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("download failed: %s", resp.Status))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read download body: %w", err)
			}
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}
