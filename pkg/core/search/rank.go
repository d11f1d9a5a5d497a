package search

import (
	"sort"
	"strings"

	"github.com/eransh/subtle/pkg/core/opensubtitles"
)

// Rank orders search results for presentation and best-pick selection:
// moviehash matches first, then preferred-language order, then download
// count descending, with trusted uploaders breaking ties. Duplicate rows
// (same subtitle file ID, possible when the query batch matches the same
// subtitle more than once) are removed, keeping the best-ranked one.
// The input slice is not modified.
func Rank(results []opensubtitles.SubtitleResult, languages []string) []opensubtitles.SubtitleResult {
	langRank := make(map[string]int, len(languages))
	for i, lang := range languages {
		langRank[strings.ToLower(lang)] = i
	}

	ranked := make([]opensubtitles.SubtitleResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]

		aHash, bHash := a.MatchedBy == "moviehash", b.MatchedBy == "moviehash"
		if aHash != bHash {
			return aHash
		}

		aLang, bLang := languageRank(langRank, a.SubLanguageID), languageRank(langRank, b.SubLanguageID)
		if aLang != bLang {
			return aLang < bLang
		}

		if a.SubDownloadsCnt != b.SubDownloadsCnt {
			return a.SubDownloadsCnt > b.SubDownloadsCnt
		}

		aTrusted, bTrusted := a.FromTrustedUploader(), b.FromTrustedUploader()
		if aTrusted != bTrusted {
			return aTrusted
		}

		return a.SubRating > b.SubRating
	})

	seen := make(map[string]bool, len(ranked))
	deduped := ranked[:0]
	for _, r := range ranked {
		if r.IDSubtitleFile != "" && seen[r.IDSubtitleFile] {
			continue
		}
		seen[r.IDSubtitleFile] = true
		deduped = append(deduped, r)
	}
	return deduped
}

// languageRank returns the preference index for a language code; codes not
// in the preference list sort after all preferred ones.
func languageRank(langRank map[string]int, code string) int {
	if i, ok := langRank[strings.ToLower(code)]; ok {
		return i
	}
	return len(langRank)
}

// PickBest ranks results and returns the top one, or nil for an empty set.
// Convenience for callers holding an unranked result set.
func PickBest(results []opensubtitles.SubtitleResult, languages []string) *opensubtitles.SubtitleResult {
	ranked := Rank(results, languages)
	if len(ranked) == 0 {
		return nil
	}
	best := ranked[0]
	return &best
}
