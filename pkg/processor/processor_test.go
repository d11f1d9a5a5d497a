package processor

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/md5"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eransh/subtle/pkg/core/errors"
	"github.com/eransh/subtle/pkg/core/opensubtitles"
	"github.com/eransh/subtle/pkg/core/search"
)

type fakeClient struct {
	searchFn   func(queries []opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error)
	downloadFn func(ids []string) ([]opensubtitles.DownloadedSubtitle, error)
}

func (f *fakeClient) SearchSubtitles(queries []opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
	return f.searchFn(queries)
}

func (f *fakeClient) DownloadSubtitles(ids []string) ([]opensubtitles.DownloadedSubtitle, error) {
	if f.downloadFn == nil {
		return nil, stderrors.New("download not stubbed")
	}
	return f.downloadFn(ids)
}

type fakeFetcher struct {
	fetchFn func(ctx context.Context, url string) ([]byte, error)
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.fetchFn(ctx, url)
}

func makeVideo(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, 131072), 0644))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(data)
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestProcess_WritesBestSubtitle(t *testing.T) {
	video := makeVideo(t, "Inception.2010.1080p.BluRay.x264-GRP.mkv")
	srt := []byte("1\n00:00:01,000 --> 00:00:02,000\nHello.\n")

	client := &fakeClient{
		searchFn: func(queries []opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			require.NotEmpty(t, queries)
			// The hash query goes first when the file is hashable.
			assert.NotEmpty(t, queries[0].MovieHash)
			return []opensubtitles.SubtitleResult{
				{
					IDSubtitleFile: "111",
					SubFileName:    "inception.srt",
					SubLanguageID:  "eng",
					ISO639:         "en",
					SubFormat:      "srt",
					MatchedBy:      "moviehash",
				},
				{
					IDSubtitleFile: "222",
					SubFileName:    "other.srt",
					SubLanguageID:  "eng",
					ISO639:         "en",
					SubFormat:      "srt",
					MatchedBy:      "fulltext",
				},
			}, nil
		},
		downloadFn: func(ids []string) ([]opensubtitles.DownloadedSubtitle, error) {
			require.Equal(t, []string{"111"}, ids)
			return []opensubtitles.DownloadedSubtitle{{IDSubtitleFile: "111", Content: srt}}, nil
		},
	}

	p := New(client, nil, Options{Languages: []string{"eng"}})
	result, err := p.Process(context.Background(), video, "")
	require.NoError(t, err)

	assert.Equal(t, video, result.VideoPath)
	assert.Equal(t, "moviehash", result.MatchedBy)
	assert.Equal(t, "eng", result.Language)
	assert.Equal(t, 2, result.Candidates)

	wantPath := filepath.Join(filepath.Dir(video), "Inception.2010.1080p.BluRay.x264-GRP.en.srt")
	assert.Equal(t, wantPath, result.SubtitlePath)

	written, err := os.ReadFile(result.SubtitlePath)
	require.NoError(t, err)
	assert.Equal(t, srt, written)
}

func TestProcess_NoResults(t *testing.T) {
	video := makeVideo(t, "Obscure.Film.1999.mkv")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			return nil, nil
		},
	}

	p := New(client, nil, Options{Languages: []string{"eng"}})
	_, err := p.Process(context.Background(), video, "")
	assert.ErrorIs(t, err, errors.ErrNoResults)
}

func TestProcess_SearchError(t *testing.T) {
	video := makeVideo(t, "Some.Movie.2015.mkv")
	boom := stderrors.New("service down")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			return nil, boom
		},
	}

	p := New(client, nil, Options{Languages: []string{"eng"}})
	_, err := p.Process(context.Background(), video, "")
	assert.ErrorIs(t, err, boom)
}

func TestProcess_DirectLinkFallback(t *testing.T) {
	video := makeVideo(t, "Fallback.Movie.2018.mkv")
	srt := []byte("1\n00:00:01,000 --> 00:00:02,000\nFallback.\n")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			return []opensubtitles.SubtitleResult{{
				IDSubtitleFile:  "333",
				SubFileName:     "fallback.srt",
				SubLanguageID:   "eng",
				ISO639:          "en",
				SubFormat:       "srt",
				MatchedBy:       "fulltext",
				SubDownloadLink: "https://dl.example.org/333.gz",
			}}, nil
		},
		downloadFn: func([]string) ([]opensubtitles.DownloadedSubtitle, error) {
			return nil, stderrors.New("download quota hit")
		},
	}

	var fetchedURL string
	fetcher := &fakeFetcher{
		fetchFn: func(_ context.Context, url string) ([]byte, error) {
			fetchedURL = url
			return gzipBytes(t, srt), nil
		},
	}

	p := New(client, fetcher, Options{Languages: []string{"eng"}})
	result, err := p.Process(context.Background(), video, "")
	require.NoError(t, err)

	assert.Equal(t, "https://dl.example.org/333.gz", fetchedURL)
	written, err := os.ReadFile(result.SubtitlePath)
	require.NoError(t, err)
	assert.Equal(t, srt, written)
}

func TestProcess_NoFallbackAvailable(t *testing.T) {
	video := makeVideo(t, "Dead.End.2017.mkv")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			return []opensubtitles.SubtitleResult{{
				IDSubtitleFile: "444",
				SubFileName:    "deadend.srt",
				SubLanguageID:  "eng",
				SubFormat:      "srt",
			}}, nil
		},
		downloadFn: func([]string) ([]opensubtitles.DownloadedSubtitle, error) {
			return nil, nil
		},
	}

	p := New(client, nil, Options{Languages: []string{"eng"}})
	_, err := p.Process(context.Background(), video, "")
	assert.Error(t, err)
}

func TestProcess_DownloadLimitStopsFallback(t *testing.T) {
	video := makeVideo(t, "Over.Quota.2019.mkv")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			return []opensubtitles.SubtitleResult{{
				IDSubtitleFile:  "42",
				SubFileName:     "overquota.srt",
				SubLanguageID:   "eng",
				SubFormat:       "srt",
				SubDownloadLink: "https://dl.example.org/42.gz",
			}}, nil
		},
		downloadFn: func([]string) ([]opensubtitles.DownloadedSubtitle, error) {
			return nil, errors.ErrDownloadLimitReached
		},
	}
	fetcher := &fakeFetcher{
		fetchFn: func(context.Context, string) ([]byte, error) {
			t.Fatal("direct link must not be tried once the quota is exhausted")
			return nil, nil
		},
	}

	p := New(client, fetcher, Options{Languages: []string{"eng"}})
	_, err := p.Process(context.Background(), video, "")
	assert.ErrorIs(t, err, errors.ErrDownloadLimitReached)
}

func TestProcess_DownloadErrorIsWrapped(t *testing.T) {
	video := makeVideo(t, "Broken.Download.2014.mkv")
	boom := stderrors.New("disk on fire")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			return []opensubtitles.SubtitleResult{{
				IDSubtitleFile: "77",
				SubFileName:    "broken.srt",
				SubLanguageID:  "eng",
				SubFormat:      "srt",
			}}, nil
		},
		downloadFn: func([]string) ([]opensubtitles.DownloadedSubtitle, error) {
			return nil, boom
		},
	}

	p := New(client, nil, Options{Languages: []string{"eng"}})
	_, err := p.Process(context.Background(), video, "")
	assert.ErrorIs(t, err, boom)
}

func TestDownload_LogsChecksum(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	video := makeVideo(t, "Checksummed.2013.mkv")
	srt := []byte("1\n00:00:01,000 --> 00:00:02,000\nChecked.\n")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			t.Fatal("Download must not search")
			return nil, nil
		},
		downloadFn: func([]string) ([]opensubtitles.DownloadedSubtitle, error) {
			return []opensubtitles.DownloadedSubtitle{{IDSubtitleFile: "88", Content: srt}}, nil
		},
	}

	p := New(client, nil, Options{Languages: []string{"eng"}})
	sub := opensubtitles.SubtitleResult{
		IDSubtitleFile: "88",
		SubLanguageID:  "eng",
		ISO639:         "en",
		SubFormat:      "srt",
	}
	_, err := p.Download(context.Background(), video, &sub)
	require.NoError(t, err)

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Message != "Subtitle written" {
			continue
		}
		found = true
		assert.Equal(t, fmt.Sprintf("%x", md5.Sum(srt)), entry.Data["md5"])
	}
	require.True(t, found, "expected a 'Subtitle written' log entry")
}

func TestProcess_DownloadDirOverride(t *testing.T) {
	video := makeVideo(t, "Elsewhere.2021.mkv")
	downloadDir := t.TempDir()
	srt := []byte("subtitle body")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			return []opensubtitles.SubtitleResult{{
				IDSubtitleFile: "555",
				SubFileName:    "elsewhere.srt",
				SubLanguageID:  "eng",
				ISO639:         "en",
				SubFormat:      "srt",
			}}, nil
		},
		downloadFn: func([]string) ([]opensubtitles.DownloadedSubtitle, error) {
			return []opensubtitles.DownloadedSubtitle{{IDSubtitleFile: "555", Content: srt}}, nil
		},
	}

	p := New(client, nil, Options{Languages: []string{"eng"}, DownloadDir: downloadDir})
	result, err := p.Process(context.Background(), video, "")
	require.NoError(t, err)

	assert.Equal(t, downloadDir, filepath.Dir(result.SubtitlePath))
	assert.Equal(t, "Elsewhere.2021.en.srt", filepath.Base(result.SubtitlePath))
}

func TestProcess_CancelledContext(t *testing.T) {
	video := makeVideo(t, "Cancelled.2016.mkv")

	client := &fakeClient{
		searchFn: func([]opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			t.Fatal("search must not run after cancellation")
			return nil, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(client, nil, Options{Languages: []string{"eng"}})
	_, err := p.Process(ctx, video, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_UsesExplicitIMDbID(t *testing.T) {
	video := makeVideo(t, "Renamed.File.mkv")

	var gotQueries []opensubtitles.SearchQuery
	client := &fakeClient{
		searchFn: func(queries []opensubtitles.SearchQuery) ([]opensubtitles.SubtitleResult, error) {
			gotQueries = queries
			return nil, nil
		},
	}

	p := New(client, nil, Options{Methods: search.MethodIMDB, Languages: []string{"eng"}})
	_, results, err := p.Search(context.Background(), video, "tt1375666")
	require.NoError(t, err)
	assert.Empty(t, results)

	require.Len(t, gotQueries, 1)
	assert.Equal(t, "1375666", gotQueries[0].IMDBID)
}
