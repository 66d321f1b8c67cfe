//go:build bleve

package search

import (
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/cineconnect/cinefeed/internal/feed"
)

// bleveEngine keeps an in-memory Bleve index of the current pass's entries.
// Index rebuilds the whole index; passes are small enough that a fresh
// mem-only index per pass beats incremental maintenance.
type bleveEngine struct {
	mu      sync.RWMutex
	idx     bleve.Index
	reviews map[string]*feed.ReviewEntry
	posts   map[string]*feed.PostEntry
}

// NewIndexedEngine creates a Bleve-backed searcher.
func NewIndexedEngine() (Searcher, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &bleveEngine{
		idx:     idx,
		reviews: make(map[string]*feed.ReviewEntry),
		posts:   make(map[string]*feed.PostEntry),
	}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	body := bleve.NewTextFieldMapping()
	body.Analyzer = standard.Name
	body.Store = false

	author := bleve.NewTextFieldMapping()
	author.Analyzer = standard.Name
	author.Store = true

	ref := bleve.NewTextFieldMapping()
	ref.Analyzer = standard.Name
	ref.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("body", body)
	dm.AddFieldMappingsAt("author", author)
	dm.AddFieldMappingsAt("ref", ref)

	im.DefaultMapping = dm
	return im
}

func (b *bleveEngine) Index(assembled *feed.AssembledFeed) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return err
	}

	reviews := make(map[string]*feed.ReviewEntry)
	posts := make(map[string]*feed.PostEntry)

	batch := idx.NewBatch()
	if assembled != nil {
		for i := range assembled.Reviews {
			entry := &assembled.Reviews[i]
			id := docIDForReview(entry.Review.ID)
			reviews[id] = entry
			_ = batch.Index(id, map[string]any{
				"kind":   "review",
				"title":  entry.Movie.Title,
				"body":   entry.Review.Comment,
				"author": entry.Review.Author.Username,
				"ref":    entry.Review.MovieID,
			})
		}
		for i := range assembled.Posts {
			entry := &assembled.Posts[i]
			id := docIDForPost(entry.Post.ID)
			posts[id] = entry
			_ = batch.Index(id, map[string]any{
				"kind":   "post",
				"title":  entry.Movie.Title,
				"body":   entry.Post.Content,
				"author": entry.Post.Author.Username,
				"ref":    entry.Post.MovieID,
			})
		}
	}
	if err := idx.Batch(batch); err != nil {
		return err
	}

	b.mu.Lock()
	old := b.idx
	b.idx = idx
	b.reviews = reviews
	b.posts = posts
	b.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (b *bleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	tokens := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range tokens {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(3.5)
		qs = append(qs, qtp)

		qb := bleve.NewMatchQuery(tok)
		qb.SetField("body")
		qb.SetBoost(2.0)
		qs = append(qs, qb)
		qbp := bleve.NewPrefixQuery(tok)
		qbp.SetField("body")
		qbp.SetBoost(1.8)
		qs = append(qs, qbp)

		qa := bleve.NewMatchQuery(tok)
		qa.SetField("author")
		qa.SetBoost(1.5)
		qs = append(qs, qa)

		qr := bleve.NewMatchQuery(tok)
		qr.SetField("ref")
		qr.SetBoost(0.5)
		qs = append(qs, qr)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if limit <= 0 {
		limit = len(b.reviews) + len(b.posts)
	}

	q := bleve.NewDisjunctionQuery(qs...)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"title", "author", "ref"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		r := &Result{Score: h.Score}
		if entry, ok := b.reviews[h.ID]; ok {
			r.Review = entry
			r.IsPost = false
		} else if entry, ok := b.posts[h.ID]; ok {
			r.Post = entry
			r.IsPost = true
		} else {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func docIDForReview(id string) string { return "review:" + id }
func docIDForPost(id string) string   { return "post:" + id }
