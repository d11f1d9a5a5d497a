package search

import (
	"fmt"
	"strings"

	"github.com/eransh/subtle/internal/constants"
	"github.com/eransh/subtle/pkg/core/metadata"
	"github.com/eransh/subtle/pkg/core/opensubtitles"
)

// Method is a bitflag set of enabled search methods. It mirrors the
// user-settings record: each method can be toggled independently and the
// query batch carries one sub-query per enabled, applicable method.
type Method uint8

const (
	MethodHash Method = 1 << iota // search by OSDb movie hash + byte size
	MethodIMDB                    // search by IMDb ID (from NFO or explicit)
	MethodText                    // full-text search on the parsed title

	MethodAll = MethodHash | MethodIMDB | MethodText
)

// Has reports whether m includes the given method.
func (m Method) Has(other Method) bool { return m&other != 0 }

// Names returns the enabled method names in canonical order.
func (m Method) Names() []string {
	var names []string
	if m.Has(MethodHash) {
		names = append(names, "hash")
	}
	if m.Has(MethodIMDB) {
		names = append(names, "imdb")
	}
	if m.Has(MethodText) {
		names = append(names, "text")
	}
	return names
}

// ParseMethods converts settings-file method names into a Method set.
func ParseMethods(names []string) (Method, error) {
	var m Method
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "hash", "moviehash":
			m |= MethodHash
		case "imdb", "imdbid":
			m |= MethodIMDB
		case "text", "query", "fulltext":
			m |= MethodText
		case "":
		default:
			return 0, fmt.Errorf("unknown search method %q (valid: hash, imdb, text)", name)
		}
	}
	return m, nil
}

// LanguageList joins preferred language codes into the comma-separated form
// the API expects, defaulting when the list is empty.
func LanguageList(languages []string) string {
	if len(languages) == 0 {
		return constants.DefaultSubLanguageID
	}
	return strings.Join(languages, ",")
}

// BuildQueries constructs the SearchSubtitles batch for a video, one
// sub-query per enabled method that has the data it needs. An explicit
// imdbID overrides the one found in the NFO. The returned batch may be
// empty when, for example, only hash search is enabled and the file could
// not be hashed.
func BuildQueries(info *metadata.VideoInfo, methods Method, languages []string, imdbID string) []opensubtitles.SearchQuery {
	langs := LanguageList(languages)
	var queries []opensubtitles.SearchQuery

	if methods.Has(MethodHash) && info.OSDbHash != "" {
		queries = append(queries, opensubtitles.SearchQuery{
			Languages:     langs,
			MovieHash:     info.OSDbHash,
			MovieByteSize: info.FileSize,
		})
	}

	if methods.Has(MethodIMDB) {
		id := imdbID
		if id == "" {
			id = info.NFOIMDbID
		}
		id = strings.TrimPrefix(id, "tt")
		if id != "" {
			queries = append(queries, opensubtitles.SearchQuery{
				Languages: langs,
				IMDBID:    id,
			})
		}
	}

	if methods.Has(MethodText) && info.Title != "" {
		q := opensubtitles.SearchQuery{
			Languages: langs,
			Query:     info.QueryTitle(),
		}
		if info.IsEpisode() {
			q.Season = info.Season
			q.Episode = info.Episode
		}
		queries = append(queries, q)
	}

	return queries
}
