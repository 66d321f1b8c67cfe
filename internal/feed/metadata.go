package feed

import (
	"context"
	"sync"

	"github.com/cineconnect/cinefeed/internal/catalog"
	"github.com/cineconnect/cinefeed/internal/debuglog"
)

// maxConcurrentLookups caps the resolution fan-out so a large feed does not
// burst past the catalog's rate limit.
const maxConcurrentLookups = 5

// Metadata is the display record for one external catalog reference.
// PosterURL empty means no usable image. A placeholder (Title == Ref, no
// poster) is a valid value, not an error; it is what failed or negative
// lookups produce.
type Metadata struct {
	Ref       string
	Title     string
	PosterURL string
}

// Placeholder builds the substitute metadata used when resolution fails.
func Placeholder(ref string) Metadata {
	return Metadata{Ref: ref, Title: ref}
}

// Table maps external references to resolved metadata for a single
// aggregation pass. It is built once per pass and read by rendering; it is
// never shared between passes or kept as a cache.
type Table map[string]Metadata

// Lookup returns the entry for ref, falling back to a placeholder if the
// table has no entry. ResolveAll guarantees completeness, so the fallback
// only fires on pathological inputs.
func (t Table) Lookup(ref string) Metadata {
	if m, ok := t[ref]; ok {
		return m
	}
	return Placeholder(ref)
}

// Resolver resolves one external reference to display metadata. Resolve
// never fails outward: implementations absorb lookup errors and return a
// placeholder so one bad reference cannot abort resolution of the others.
type Resolver interface {
	Resolve(ctx context.Context, ref string) Metadata
}

// CatalogLookup is the single-entity lookup the resolver needs from the
// catalog client.
type CatalogLookup interface {
	Lookup(ctx context.Context, id string) (*catalog.Movie, error)
}

// CatalogResolver resolves references against the external catalog,
// converting every failure or negative response into a placeholder. No
// retries, no backoff.
type CatalogResolver struct {
	catalog CatalogLookup
}

// NewCatalogResolver creates a resolver backed by the given catalog.
func NewCatalogResolver(lookup CatalogLookup) *CatalogResolver {
	return &CatalogResolver{catalog: lookup}
}

// Resolve looks up one reference. The returned metadata is always valid.
func (r *CatalogResolver) Resolve(ctx context.Context, ref string) Metadata {
	movie, err := r.catalog.Lookup(ctx, ref)
	if err != nil {
		debuglog.Debugf("catalog miss for %s: %v", ref, err)
		return Placeholder(ref)
	}
	return Metadata{Ref: ref, Title: movie.Title, PosterURL: movie.Poster}
}

// ResolveAll resolves every distinct reference concurrently and returns the
// completed table. The table always has exactly one entry per input ref,
// however many individual lookups failed; completion order of the fan-out
// never affects the contents. maxConcurrent <= 0 uses the package default.
func ResolveAll(ctx context.Context, resolver Resolver, refs []string, maxConcurrent int) Table {
	table := make(Table, len(refs))
	if len(refs) == 0 {
		return table
	}

	if maxConcurrent <= 0 {
		maxConcurrent = maxConcurrentLookups
	}
	if maxConcurrent > len(refs) {
		maxConcurrent = len(refs)
	}

	refChan := make(chan string, len(refs))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < maxConcurrent; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range refChan {
				meta := resolver.Resolve(ctx, ref)
				mu.Lock()
				table[ref] = meta
				mu.Unlock()
			}
		}()
	}

	for _, ref := range refs {
		refChan <- ref
	}
	close(refChan)
	wg.Wait()

	return table
}
