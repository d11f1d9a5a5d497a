package imdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_ParsesSuggestions(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"v": 1,
			"q": "inception",
			"d": [
				{"l": "Inception", "id": "tt1375666", "y": 2010, "q": "feature"},
				{"l": "Inception: The Cobol Job", "id": "tt1790736", "yr": "2010-2011", "q": "TV series"},
				{"l": "Christopher Nolan", "id": "nm0634240"},
				{"l": "Inception Soundtrack", "id": "tt9999999", "q": "video game"}
			]
		}`))
	}))
	defer server.Close()
	defer SetBaseURLForTesting(SetBaseURLForTesting(server.URL))

	client := NewClient()
	results, err := client.Search(context.Background(), "Inception ")
	require.NoError(t, err)

	assert.Equal(t, "/suggestion/titles/i/inception.json", gotPath)
	require.Len(t, results, 2)
	assert.Equal(t, Suggestion{ID: "tt1375666", Title: "Inception", Year: 2010}, results[0])
	// Year falls back to the start of the 'yr' range.
	assert.Equal(t, Suggestion{ID: "tt1790736", Title: "Inception: The Cobol Job", Year: 2010}, results[1])
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient()
	results, err := client.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_ServerErrorDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusInternalServerError)
	}))
	defer server.Close()
	defer SetBaseURLForTesting(SetBaseURLForTesting(server.URL))

	client := NewClient()
	results, err := client.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_GarbageBodyDegradesToEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()
	defer SetBaseURLForTesting(SetBaseURLForTesting(server.URL))

	client := NewClient()
	results, err := client.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}
