package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, "test-key", WithRateLimit(0, 0))
	return client, server
}

func TestLookup(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "tt0111161", r.URL.Query().Get("i"))
		w.Write([]byte(`{
			"Response": "True",
			"Title": "The Shawshank Redemption",
			"Year": "1994",
			"Genre": "Drama",
			"Plot": "Two imprisoned men bond over a number of years.",
			"Poster": "https://img/shawshank.jpg",
			"imdbID": "tt0111161"
		}`))
	})
	defer server.Close()

	movie, err := client.Lookup(context.Background(), "tt0111161")
	require.NoError(t, err)
	assert.Equal(t, "tt0111161", movie.ID)
	assert.Equal(t, "The Shawshank Redemption", movie.Title)
	assert.Equal(t, "1994", movie.Year)
	assert.Equal(t, "https://img/shawshank.jpg", movie.Poster)
}

func TestLookupNormalizesPosterSentinel(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "True", "Title": "Obscure Film", "Poster": "N/A"}`))
	})
	defer server.Close()

	movie, err := client.Lookup(context.Background(), "tt0000001")
	require.NoError(t, err)
	assert.Empty(t, movie.Poster)
}

func TestLookupNotFound(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Incorrect IMDb ID."}`))
	})
	defer server.Close()

	_, err := client.Lookup(context.Background(), "tt9999999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLookupEmptyIdentifier(t *testing.T) {
	client := NewClient("http://localhost:0", "k", WithRateLimit(0, 0))
	_, err := client.Lookup(context.Background(), "")
	require.Error(t, err)
}

func TestLookupHTTPError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer server.Close()

	_, err := client.Lookup(context.Background(), "tt1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSearch(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "inception", r.URL.Query().Get("s"))
		w.Write([]byte(`{
			"Response": "True",
			"Search": [
				{"imdbID": "tt1375666", "Title": "Inception", "Year": "2010", "Poster": "https://img/inception.jpg"},
				{"imdbID": "tt5295894", "Title": "Inception: The Cobol Job", "Year": "2010", "Poster": "N/A"}
			]
		}`))
	})
	defer server.Close()

	movies, err := client.Search(context.Background(), "inception")
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "tt1375666", movies[0].ID)
	assert.Equal(t, "Inception", movies[0].Title)
	assert.Empty(t, movies[1].Poster)
}

func TestSearchNoMatches(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response": "False", "Error": "Movie not found!"}`))
	})
	defer server.Close()

	_, err := client.Search(context.Background(), "zzzzzz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSearchEmptyTerm(t *testing.T) {
	client := NewClient("http://localhost:0", "k", WithRateLimit(0, 0))
	_, err := client.Search(context.Background(), "   ")
	require.Error(t, err)
}
