package opensubtitles

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"

	xmlrpc "github.com/kolo/xmlrpc"
	log "github.com/sirupsen/logrus"

	"github.com/eransh/subtle/internal/constants"
	coreerrors "github.com/eransh/subtle/pkg/core/errors"
	"github.com/eransh/subtle/pkg/core/fileops"
)

// Client handles communication with the OpenSubtitles XML-RPC API.
// It holds the session token obtained by Login; all other authenticated
// calls guard on its presence. A Client is safe for use from multiple
// goroutines, though callers typically issue one call at a time.
type Client struct {
	client    *xmlrpc.Client
	userAgent string

	mu       sync.RWMutex // protects token/loggedIn
	token    string
	loggedIn bool
}

// NewClient creates an XML-RPC client for the given endpoint. Pass
// constants.XmlRpcEndpoint for the production service.
func NewClient(endpoint, userAgent string) (*Client, error) {
	if userAgent == "" {
		userAgent = constants.DefaultUserAgent
	}
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}
	client, err := xmlrpc.NewClient(endpoint, tr)
	if err != nil {
		return nil, fmt.Errorf("error creating XML-RPC client: %w", err)
	}
	return &Client{client: client, userAgent: userAgent}, nil
}

// Token returns the current session token ("" when not logged in).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoggedIn reports whether a session token is held.
func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loggedIn && c.token != ""
}

// checkStatus maps the API's "NNN Message" status member to a typed error.
func checkStatus(status string) error {
	if status == "" || strings.HasPrefix(status, "200") {
		return nil
	}
	switch {
	case strings.HasPrefix(status, "401"):
		return coreerrors.ErrUnauthorized
	case strings.HasPrefix(status, "407"):
		return coreerrors.ErrDownloadLimitReached
	case strings.HasPrefix(status, "414"):
		return coreerrors.ErrBadUserAgent
	case strings.HasPrefix(status, "5"):
		return fmt.Errorf("%w (status: %s)", coreerrors.ErrServiceUnavailable, status)
	default:
		return fmt.Errorf("opensubtitles: request failed with status: %s", status)
	}
}

// call performs one XML-RPC method call and returns the decoded response
// struct as a map. Responses that are not structs are rejected.
func (c *Client) call(method string, args []interface{}) (map[string]interface{}, error) {
	var raw interface{}
	if err := c.client.Call(method, args, &raw); err != nil {
		return nil, fmt.Errorf("xmlrpc %s call failed: %w", method, err)
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected %s response type: %T", method, raw)
	}
	if err := checkStatus(getString(m, "status")); err != nil {
		return nil, err
	}
	return m, nil
}

// authToken returns the session token or ErrNotLoggedIn.
func (c *Client) authToken() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loggedIn || c.token == "" {
		return "", coreerrors.ErrNotLoggedIn
	}
	return c.token, nil
}

// Login authenticates the user and stores the session token. Anonymous
// sessions are allowed: pass empty username and password. The language
// argument selects the language of API messages (ISO 639-1, e.g. "en").
func (c *Client) Login(username, password, language string) error {
	if language == "" {
		language = "en"
	}
	m, err := c.call("LogIn", []interface{}{username, password, language, c.userAgent})
	if err != nil {
		return err
	}

	token := getString(m, "token")
	if token == "" {
		return fmt.Errorf("xmlrpc login succeeded but returned an empty token")
	}

	c.mu.Lock()
	c.token = token
	c.loggedIn = true
	c.mu.Unlock()

	log.WithField("seconds", getFloat(m, "seconds")).Debug("XML-RPC login successful")
	return nil
}

// Logout invalidates the session token.
func (c *Client) Logout() error {
	token, err := c.authToken()
	if err != nil {
		return err
	}
	if _, err := c.call("LogOut", []interface{}{token}); err != nil {
		return err
	}

	c.mu.Lock()
	c.token = ""
	c.loggedIn = false
	c.mu.Unlock()

	log.Debug("XML-RPC logout successful")
	return nil
}

// NoOperation keeps the session token alive. The service expires idle
// tokens after roughly 15 minutes.
func (c *Client) NoOperation() error {
	token, err := c.authToken()
	if err != nil {
		return err
	}
	_, err = c.call("NoOperation", []interface{}{token})
	return err
}

// SearchSubtitles issues one search call carrying the whole query batch and
// returns the raw (unranked) result rows.
func (c *Client) SearchSubtitles(queries []SearchQuery) ([]SubtitleResult, error) {
	token, err := c.authToken()
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("at least one search query is required")
	}

	args := make([]interface{}, 0, len(queries))
	for _, q := range queries {
		args = append(args, buildSearchArg(q))
	}

	m, err := c.call("SearchSubtitles", []interface{}{token, args})
	if err != nil {
		return nil, err
	}

	results, err := decodeSearchData(m["data"])
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"queries": len(queries),
		"results": len(results),
	}).Debug("SearchSubtitles completed")
	return results, nil
}

// SearchMoviesOnIMDB performs a title search against IMDb through the
// OpenSubtitles service, used to resolve a title to an IMDb ID.
func (c *Client) SearchMoviesOnIMDB(query string) ([]MovieResult, error) {
	token, err := c.authToken()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}

	m, err := c.call("SearchMoviesOnIMDB", []interface{}{token, query})
	if err != nil {
		return nil, err
	}
	return decodeMovieData(m["data"])
}

// DownloadSubtitles fetches subtitle bodies by subtitle file ID. The API
// returns base64-encoded gzip content; the returned entries hold the
// decompressed subtitle text.
func (c *Client) DownloadSubtitles(ids []string) ([]DownloadedSubtitle, error) {
	token, err := c.authToken()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one subtitle file ID is required")
	}

	idArgs := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		idArgs = append(idArgs, id)
	}

	m, err := c.call("DownloadSubtitles", []interface{}{token, idArgs})
	if err != nil {
		return nil, err
	}

	entries, ok := m["data"].([]interface{})
	if !ok {
		// boolean false means the IDs matched nothing
		return nil, nil
	}

	downloads := make([]DownloadedSubtitle, 0, len(entries))
	for _, item := range entries {
		em, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected download entry type: %T", item)
		}
		encoded := getString(em, "data")
		compressed, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to base64-decode subtitle body: %w", err)
		}
		content, err := fileops.DecompressGzip(compressed)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, DownloadedSubtitle{
			IDSubtitleFile: getString(em, "idsubtitlefile"),
			Content:        content,
		})
	}
	return downloads, nil
}

// GetSubLanguages lists the subtitle languages the service knows about.
// language selects the language the names are returned in (ISO 639-1,
// defaulting to English). No session is required.
func (c *Client) GetSubLanguages(language string) ([]SubLanguage, error) {
	if language == "" {
		language = "en"
	}
	m, err := c.call("GetSubLanguages", []interface{}{language})
	if err != nil {
		return nil, err
	}

	entries, ok := m["data"].([]interface{})
	if !ok {
		return nil, nil
	}
	langs := make([]SubLanguage, 0, len(entries))
	for _, item := range entries {
		em, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected language entry type: %T", item)
		}
		langs = append(langs, SubLanguage{
			SubLanguageID: getString(em, "SubLanguageID"),
			LanguageName:  getString(em, "LanguageName"),
			ISO639:        getString(em, "ISO639"),
		})
	}
	return langs, nil
}

// ServerInfo returns the service's self-description. It does not require a
// session and is useful as a connectivity check.
func (c *Client) ServerInfo() (*ServerInfo, error) {
	m, err := c.call("ServerInfo", []interface{}{})
	if err != nil {
		return nil, err
	}
	return &ServerInfo{
		XMLRPCVersion:     getString(m, "xmlrpc_version"),
		XMLRPCURL:         getString(m, "xmlrpc_url"),
		Application:       getString(m, "application"),
		SubsDownloads:     getString(m, "subs_downloads"),
		SubsSubtitleFiles: getString(m, "subs_subtitle_files"),
		MoviesTotal:       getString(m, "movies_total"),
	}, nil
}

// Close closes the underlying XML-RPC client connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
