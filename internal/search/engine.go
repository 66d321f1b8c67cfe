// Package search provides local, in-memory search over the entries of one
// aggregation pass. The default engine scores without building an index; an
// alternative engine backed by Bleve is available behind the "bleve" build
// tag.
package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/cineconnect/cinefeed/internal/feed"
)

// Engine scores feed entries directly without heavy indexing. It holds the
// entries of the most recent pass; Index replaces them wholesale, so stale
// passes never linger in search results.
type Engine struct {
	mu      sync.RWMutex
	reviews []feed.ReviewEntry
	posts   []feed.PostEntry
}

// NewEngine creates an empty search engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Index replaces the searchable set with the given pass's entries.
func (e *Engine) Index(assembled *feed.AssembledFeed) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if assembled == nil {
		e.reviews, e.posts = nil, nil
		return nil
	}
	e.reviews = assembled.Reviews
	e.posts = assembled.Posts
	return nil
}

// Search scores all held entries against the query and returns the best
// matches, highest score first.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var results []*Result

	for i := range e.reviews {
		entry := &e.reviews[i]
		if result := e.searchReview(entry, terms); result != nil {
			results = append(results, result)
		}
	}
	for i := range e.posts {
		entry := &e.posts[i]
		if result := e.searchPost(entry, terms); result != nil {
			results = append(results, result)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (e *Engine) searchReview(entry *feed.ReviewEntry, terms []string) *Result {
	var matches []Match
	var totalScore float64

	// Resolved movie title carries the highest weight
	if titleScore := scoreField(entry.Movie.Title, terms, 4.0); titleScore > 0 {
		matches = append(matches, Match{
			Field:  "title",
			Text:   entry.Movie.Title,
			Weight: titleScore,
		})
		totalScore += titleScore
	}

	if bodyScore := scoreField(entry.Review.Comment, terms, 2.0); bodyScore > 0 {
		matches = append(matches, Match{
			Field:  "body",
			Text:   findBestSnippet(entry.Review.Comment, terms, 150),
			Weight: bodyScore,
		})
		totalScore += bodyScore
	}

	if authorScore := scoreField(entry.Review.Author.Username, terms, 1.5); authorScore > 0 {
		matches = append(matches, Match{
			Field:  "author",
			Text:   entry.Review.Author.Username,
			Weight: authorScore,
		})
		totalScore += authorScore
	}

	if refScore := scoreField(entry.Review.MovieID, terms, 0.5); refScore > 0 {
		matches = append(matches, Match{
			Field:  "ref",
			Text:   entry.Review.MovieID,
			Weight: refScore,
		})
		totalScore += refScore
	}

	if totalScore > 0 {
		return &Result{
			Review:  entry,
			IsPost:  false,
			Score:   totalScore,
			Matches: matches,
		}
	}
	return nil
}

func (e *Engine) searchPost(entry *feed.PostEntry, terms []string) *Result {
	var matches []Match
	var totalScore float64

	if titleScore := scoreField(entry.Movie.Title, terms, 4.0); titleScore > 0 {
		matches = append(matches, Match{
			Field:  "title",
			Text:   entry.Movie.Title,
			Weight: titleScore,
		})
		totalScore += titleScore
	}

	if bodyScore := scoreField(entry.Post.Content, terms, 2.0); bodyScore > 0 {
		matches = append(matches, Match{
			Field:  "body",
			Text:   findBestSnippet(entry.Post.Content, terms, 150),
			Weight: bodyScore,
		})
		totalScore += bodyScore
	}

	if authorScore := scoreField(entry.Post.Author.Username, terms, 1.5); authorScore > 0 {
		matches = append(matches, Match{
			Field:  "author",
			Text:   entry.Post.Author.Username,
			Weight: authorScore,
		})
		totalScore += authorScore
	}

	if refScore := scoreField(entry.Post.MovieID, terms, 0.5); refScore > 0 {
		matches = append(matches, Match{
			Field:  "ref",
			Text:   entry.Post.MovieID,
			Weight: refScore,
		})
		totalScore += refScore
	}

	if totalScore > 0 {
		return &Result{
			Post:    entry,
			IsPost:  true,
			Score:   totalScore,
			Matches: matches,
		}
	}
	return nil
}

// scoreField calculates the relevance score for a single field.
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		termLower := strings.ToLower(term)

		if strings.Contains(lower, termLower) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			if word == termLower {
				score += 1.5
				matchedTerms++
			} else if strings.HasPrefix(word, termLower) || strings.HasSuffix(word, termLower) {
				score += 1.0
				matchedTerms++
			} else if strings.Contains(word, termLower) {
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	if len(words) > 0 {
		tf := float64(matchedTerms) / float64(len(words))
		score *= 1.0 + math.Log(1.0+tf)
	}

	return score * weight
}

// findBestSnippet finds the most relevant text snippet containing the terms.
func findBestSnippet(text string, terms []string, maxLength int) string {
	if text == "" {
		return ""
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8
	if windowSize > len(words) {
		return truncate(text, maxLength)
	}

	bestScore := 0.0
	bestStart := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		windowText := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0.0
		for _, term := range terms {
			if strings.Contains(windowText, strings.ToLower(term)) {
				score += 1.0
			}
		}
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	snippet := strings.Join(words[bestStart:bestStart+windowSize], " ")
	return truncate(snippet, maxLength)
}

// tokenize breaks text into lowercased searchable terms, skipping single
// characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len(term) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if current.Len() > 1 {
		terms = append(terms, current.String())
	}

	return terms
}

func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-1] + "…"
}
