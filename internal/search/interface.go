package search

import "github.com/cineconnect/cinefeed/internal/feed"

// Searcher defines the minimal local search API used by the TUI. Index
// replaces the searchable set with the entries of one aggregation pass;
// Search never touches the network.
type Searcher interface {
	Index(assembled *feed.AssembledFeed) error
	Search(query string, limit int) ([]*Result, error)
}

// Result represents a search match with relevance scoring.
type Result struct {
	Review  *feed.ReviewEntry
	Post    *feed.PostEntry
	IsPost  bool
	Score   float64
	Matches []Match
}

// Movie returns the matched entry's resolved metadata regardless of kind.
func (r *Result) Movie() feed.Metadata {
	if r.IsPost {
		return r.Post.Movie
	}
	return r.Review.Movie
}

// Match represents where text was found.
type Match struct {
	Field  string // "title", "body", "author", "ref"
	Text   string // matched text snippet
	Weight float64
}
