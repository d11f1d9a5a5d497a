package opensubtitles

// SearchQuery is a single element of a SearchSubtitles batch. Exactly one of
// the three query forms should be populated per element:
//   - MovieHash + MovieByteSize (hash search),
//   - IMDBID (IMDb search, digits only, no "tt" prefix),
//   - Query (+ optional Season/Episode) (full-text search).
// Languages applies to all forms.
type SearchQuery struct {
	Languages string // comma-separated sublanguageids, e.g. "eng,ell"

	MovieHash     string
	MovieByteSize int64

	IMDBID string

	Query   string
	Season  int
	Episode int
}

// SubtitleResult is one row of a SearchSubtitles response.
// The API returns nearly every field as a string; numeric fields are
// converted during decoding.
type SubtitleResult struct {
	IDSubtitleFile  string
	IDSubtitle      string
	SubFileName     string
	SubFormat       string
	SubLanguageID   string // e.g. "eng"
	LanguageName    string // e.g. "English"
	ISO639          string // e.g. "en"
	SubEncoding     string
	MovieHash       string
	MovieByteSize   int64
	MovieName       string
	MovieYear       int
	IDMovieImdb     string
	SeriesSeason    int
	SeriesEpisode   int
	SubDownloadsCnt int
	SubRating       float64
	HearingImpaired bool
	UserRank        string // e.g. "trusted", "administrator", ""
	MatchedBy       string // "moviehash", "imdbid", "fulltext" or "tag"
	SubDownloadLink string // direct link to the gzipped subtitle body
	ZipDownloadLink string
}

// FromTrustedUploader reports whether the uploader rank marks the subtitle
// as coming from a trusted source.
func (r *SubtitleResult) FromTrustedUploader() bool {
	switch r.UserRank {
	case "trusted", "administrator", "platinum member", "gold member":
		return true
	}
	return false
}

// MovieResult is one row of a SearchMoviesOnIMDB response.
type MovieResult struct {
	ID    string // IMDb ID, digits only
	Title string // title, usually including the year in parentheses
}

// DownloadedSubtitle is one decoded entry of a DownloadSubtitles response.
// Content holds the decompressed subtitle body.
type DownloadedSubtitle struct {
	IDSubtitleFile string
	Content        []byte
}

// SubLanguage is one row of a GetSubLanguages response.
type SubLanguage struct {
	SubLanguageID string // e.g. "eng"
	LanguageName  string // e.g. "English"
	ISO639        string // e.g. "en"
}

// ServerInfo describes the remote service, from the ServerInfo method.
type ServerInfo struct {
	XMLRPCVersion     string
	XMLRPCURL         string
	Application       string
	SubsDownloads     string
	SubsSubtitleFiles string
	MoviesTotal       string
}
