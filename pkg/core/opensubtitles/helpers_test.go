package opensubtitles

import (
	"testing"
)

func TestAsStringCoercions(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{"abc", "abc"},
		{int64(12), "12"},
		{42, "42"},
		{3.5, "3.5"},
		{true, "1"},
		{false, "0"},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := asString(tc.in); got != tc.want {
			t.Errorf("asString(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAsIntCoercions(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int64
	}{
		{int64(7), 7},
		{7, 7},
		{7.0, 7},
		{"7", 7},
		{"not a number", 0},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := asInt(tc.in); got != tc.want {
			t.Errorf("asInt(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestDecodeSearchData_FalseMeansEmpty(t *testing.T) {
	results, err := decodeSearchData(false)
	if err != nil {
		t.Fatalf("decodeSearchData(false) returned an unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected empty result set, got %d", len(results))
	}
}

func TestDecodeSearchData_RejectsGarbage(t *testing.T) {
	if _, err := decodeSearchData("surprise"); err == nil {
		t.Error("Expected error for unexpected data type")
	}
	if _, err := decodeSearchData([]interface{}{"not a struct"}); err == nil {
		t.Error("Expected error for non-struct entry")
	}
}

func TestBuildSearchArg_HashForm(t *testing.T) {
	arg := buildSearchArg(SearchQuery{
		Languages:     "eng,ell",
		MovieHash:     "00000000deadbeef",
		MovieByteSize: 131072,
	})
	if arg["moviehash"] != "00000000deadbeef" {
		t.Errorf("Expected moviehash member, got %v", arg)
	}
	if arg["moviebytesize"] != "131072" {
		t.Errorf("Expected moviebytesize as string, got %v", arg["moviebytesize"])
	}
	if arg["sublanguageid"] != "eng,ell" {
		t.Errorf("Expected sublanguageid member, got %v", arg)
	}
	if _, ok := arg["query"]; ok {
		t.Error("Hash form must not carry a query member")
	}
}

func TestBuildSearchArg_IMDBForm(t *testing.T) {
	arg := buildSearchArg(SearchQuery{Languages: "eng", IMDBID: "1375666"})
	if arg["imdbid"] != "1375666" {
		t.Errorf("Expected imdbid member, got %v", arg)
	}
	if _, ok := arg["moviehash"]; ok {
		t.Error("IMDb form must not carry a moviehash member")
	}
}

func TestBuildSearchArg_TextForm(t *testing.T) {
	arg := buildSearchArg(SearchQuery{
		Languages: "eng",
		Query:     "The Office",
		Season:    2,
		Episode:   5,
	})
	if arg["query"] != "The Office" {
		t.Errorf("Expected query member, got %v", arg)
	}
	if arg["season"] != "2" || arg["episode"] != "5" {
		t.Errorf("Expected season/episode as strings, got %v", arg)
	}
}

func TestDecodeSubtitleResult(t *testing.T) {
	m := map[string]interface{}{
		"IDSubtitleFile":     "42",
		"SubFileName":        "Movie.srt",
		"SubLanguageID":      "eng",
		"SubDownloadsCnt":    "1500",
		"SubRating":          "8.5",
		"SubHearingImpaired": "1",
		"UserRank":           "trusted",
		"MatchedBy":          "moviehash",
	}
	sub := decodeSubtitleResult(m)
	if sub.IDSubtitleFile != "42" || sub.SubFileName != "Movie.srt" {
		t.Errorf("Identity fields mismatch: %+v", sub)
	}
	if sub.SubDownloadsCnt != 1500 {
		t.Errorf("Expected 1500 downloads, got %d", sub.SubDownloadsCnt)
	}
	if sub.SubRating != 8.5 {
		t.Errorf("Expected rating 8.5, got %v", sub.SubRating)
	}
	if !sub.HearingImpaired {
		t.Error("Expected hearing impaired flag set")
	}
	if !sub.FromTrustedUploader() {
		t.Error("Expected trusted uploader")
	}
}
