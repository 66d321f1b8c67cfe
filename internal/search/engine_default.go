//go:build !bleve

package search

// NewIndexedEngine falls back to the direct-scoring engine when the binary
// is built without the bleve tag.
func NewIndexedEngine() (Searcher, error) {
	return NewEngine(), nil
}
