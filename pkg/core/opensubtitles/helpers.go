package opensubtitles

import (
	"fmt"
	"strconv"
)

// The XML-RPC API is loose about member types: counters arrive as strings,
// sometimes as ints or doubles, and the "data" member degrades to boolean
// false when a result set is empty. These helpers coerce the decoded
// map[string]interface{} values into the typed result structs.

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	}
	return ""
}

func asInt(v interface{}) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

func asFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	}
	return 0
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		return asString(v)
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int64 {
	if v, ok := m[key]; ok {
		return asInt(v)
	}
	return 0
}

func getFloat(m map[string]interface{}, key string) float64 {
	if v, ok := m[key]; ok {
		return asFloat(v)
	}
	return 0
}

// decodeSubtitleResult maps a single SearchSubtitles row onto SubtitleResult.
func decodeSubtitleResult(m map[string]interface{}) SubtitleResult {
	return SubtitleResult{
		IDSubtitleFile:  getString(m, "IDSubtitleFile"),
		IDSubtitle:      getString(m, "IDSubtitle"),
		SubFileName:     getString(m, "SubFileName"),
		SubFormat:       getString(m, "SubFormat"),
		SubLanguageID:   getString(m, "SubLanguageID"),
		LanguageName:    getString(m, "LanguageName"),
		ISO639:          getString(m, "ISO639"),
		SubEncoding:     getString(m, "SubEncoding"),
		MovieHash:       getString(m, "MovieHash"),
		MovieByteSize:   getInt(m, "MovieByteSize"),
		MovieName:       getString(m, "MovieName"),
		MovieYear:       int(getInt(m, "MovieYear")),
		IDMovieImdb:     getString(m, "IDMovieImdb"),
		SeriesSeason:    int(getInt(m, "SeriesSeason")),
		SeriesEpisode:   int(getInt(m, "SeriesEpisode")),
		SubDownloadsCnt: int(getInt(m, "SubDownloadsCnt")),
		SubRating:       getFloat(m, "SubRating"),
		HearingImpaired: getInt(m, "SubHearingImpaired") == 1,
		UserRank:        getString(m, "UserRank"),
		MatchedBy:       getString(m, "MatchedBy"),
		SubDownloadLink: getString(m, "SubDownloadLink"),
		ZipDownloadLink: getString(m, "ZipDownloadLink"),
	}
}

// decodeSearchData unpacks the "data" member of a SearchSubtitles response.
// An empty result set arrives as boolean false rather than an empty array.
func decodeSearchData(data interface{}) ([]SubtitleResult, error) {
	switch v := data.(type) {
	case bool:
		return nil, nil
	case []interface{}:
		results := make([]SubtitleResult, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("unexpected search result entry type: %T", item)
			}
			results = append(results, decodeSubtitleResult(m))
		}
		return results, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected search 'data' type: %T", data)
	}
}

// decodeMovieData unpacks the "data" member of a SearchMoviesOnIMDB response.
func decodeMovieData(data interface{}) ([]MovieResult, error) {
	switch v := data.(type) {
	case bool, nil:
		return nil, nil
	case []interface{}:
		results := make([]MovieResult, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("unexpected movie result entry type: %T", item)
			}
			results = append(results, MovieResult{
				ID:    getString(m, "id"),
				Title: getString(m, "title"),
			})
		}
		return results, nil
	default:
		return nil, fmt.Errorf("unexpected movie search 'data' type: %T", data)
	}
}

// buildSearchArg converts a SearchQuery into the struct the SearchSubtitles
// method expects. All values are sent as strings, matching the API's own
// conventions.
func buildSearchArg(q SearchQuery) map[string]interface{} {
	arg := make(map[string]interface{})
	if q.Languages != "" {
		arg["sublanguageid"] = q.Languages
	}
	switch {
	case q.MovieHash != "":
		arg["moviehash"] = q.MovieHash
		arg["moviebytesize"] = strconv.FormatInt(q.MovieByteSize, 10)
	case q.IMDBID != "":
		arg["imdbid"] = q.IMDBID
	default:
		arg["query"] = q.Query
		if q.Season > 0 {
			arg["season"] = strconv.Itoa(q.Season)
		}
		if q.Episode > 0 {
			arg["episode"] = strconv.Itoa(q.Episode)
		}
	}
	return arg
}
