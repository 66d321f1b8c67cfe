// Package feed is the content aggregation and metadata resolution core: it
// pulls review and post collections from the content service, deduplicates
// the catalog references they carry, resolves each reference once, and joins
// the results into a render-ready feed. Every rendering surface goes through
// this one pipeline instead of reimplementing it.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cineconnect/cinefeed/internal/content"
	"github.com/cineconnect/cinefeed/internal/debuglog"
	"github.com/cineconnect/cinefeed/internal/validation"
)

// defaultPublicLimit mirrors the public home view: three recent reviews and
// three recent posts for anonymous visitors.
const defaultPublicLimit = 3

// ErrMalformedItem marks a content item whose external reference is empty or
// unusable as a lookup key. Such items are rejected at ingestion rather than
// silently resolving a garbage reference.
var ErrMalformedItem = errors.New("content item has malformed catalog reference")

// Mode selects which feed variant a pass assembles. The zero value is the
// public, anonymous mode. Credentials travel inside the mode value so the
// core never reads identity from ambient state.
type Mode struct {
	personalized bool
	viewer       content.Credentials
}

// PublicMode assembles the bounded public slices with no identity attached.
func PublicMode() Mode {
	return Mode{}
}

// PersonalizedMode assembles the full caller-scoped feed for the given
// credentials.
func PersonalizedMode(viewer content.Credentials) Mode {
	return Mode{personalized: true, viewer: viewer}
}

// Personalized reports whether this mode carries caller identity.
func (m Mode) Personalized() bool { return m.personalized }

func (m Mode) String() string {
	if m.personalized {
		return "personalized"
	}
	return "public"
}

// ContentSource is what the assembler needs from the content service.
// *content.Client satisfies it.
type ContentSource interface {
	PublicReviews(ctx context.Context, limit int) ([]content.Review, error)
	PublicPosts(ctx context.Context, limit int) ([]content.Post, error)
	FeedReviews(ctx context.Context, creds content.Credentials) ([]content.Review, error)
	FeedPosts(ctx context.Context, creds content.Credentials) ([]content.Post, error)
}

// ReviewEntry pairs one review with its resolved movie metadata.
type ReviewEntry struct {
	Review content.Review
	Movie  Metadata
}

// PostEntry pairs one post with its resolved movie metadata.
type PostEntry struct {
	Post  content.Post
	Movie Metadata
}

// AssembledFeed is the complete result of one aggregation pass. Reviews and
// posts keep the content service's order and stay in separate sections; they
// are never interleaved.
type AssembledFeed struct {
	Reviews []ReviewEntry
	Posts   []PostEntry
}

// AssemblerOption configures the Assembler.
type AssemblerOption func(*Assembler)

// WithPublicLimit bounds the public-mode slices. n <= 0 keeps the default.
func WithPublicLimit(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.publicLimit = n
		}
	}
}

// WithMaxLookups caps the metadata resolution fan-out.
func WithMaxLookups(n int) AssemblerOption {
	return func(a *Assembler) {
		a.maxLookups = n
	}
}

// Assembler orchestrates aggregation passes. It holds no per-pass state, so
// one assembler serves any number of passes and Assemble is safely
// re-runnable.
type Assembler struct {
	source      ContentSource
	resolver    Resolver
	publicLimit int
	maxLookups  int
}

// NewAssembler creates an assembler over the given content source and
// metadata resolver.
func NewAssembler(source ContentSource, resolver Resolver, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		source:      source,
		resolver:    resolver,
		publicLimit: defaultPublicLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble runs one aggregation pass: fetch both collections, deduplicate
// their references, resolve metadata, and join. A content fetch failure in
// either collection fails the whole pass; metadata resolution never does —
// unresolved references come back as placeholders.
func (a *Assembler) Assemble(ctx context.Context, mode Mode) (*AssembledFeed, error) {
	reviews, posts, err := a.fetch(ctx, mode)
	if err != nil {
		return nil, err
	}

	if err := validateItems(reviews, posts); err != nil {
		return nil, err
	}

	refs := CollectRefs(reviews, posts)
	debuglog.Debugf("assembling %s feed: %d reviews, %d posts, %d distinct refs",
		mode, len(reviews), len(posts), len(refs))

	table := ResolveAll(ctx, a.resolver, refs, a.maxLookups)

	assembled := &AssembledFeed{
		Reviews: make([]ReviewEntry, 0, len(reviews)),
		Posts:   make([]PostEntry, 0, len(posts)),
	}
	for _, r := range reviews {
		assembled.Reviews = append(assembled.Reviews, ReviewEntry{
			Review: r,
			Movie:  table.Lookup(r.MovieID),
		})
	}
	for _, p := range posts {
		assembled.Posts = append(assembled.Posts, PostEntry{
			Post:  p,
			Movie: table.Lookup(p.MovieID),
		})
	}
	return assembled, nil
}

// fetch pulls the two content collections concurrently. They are independent
// reads, so they run in parallel; the pass continues only once both are in.
func (a *Assembler) fetch(ctx context.Context, mode Mode) ([]content.Review, []content.Post, error) {
	var (
		wg         sync.WaitGroup
		reviews    []content.Review
		posts      []content.Post
		reviewsErr error
		postsErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		if mode.personalized {
			reviews, reviewsErr = a.source.FeedReviews(ctx, mode.viewer)
		} else {
			reviews, reviewsErr = a.source.PublicReviews(ctx, a.publicLimit)
		}
	}()
	go func() {
		defer wg.Done()
		if mode.personalized {
			posts, postsErr = a.source.FeedPosts(ctx, mode.viewer)
		} else {
			posts, postsErr = a.source.PublicPosts(ctx, a.publicLimit)
		}
	}()
	wg.Wait()

	if reviewsErr != nil {
		return nil, nil, fmt.Errorf("fetching reviews: %w", reviewsErr)
	}
	if postsErr != nil {
		return nil, nil, fmt.Errorf("fetching posts: %w", postsErr)
	}
	return reviews, posts, nil
}

func validateItems(reviews []content.Review, posts []content.Post) error {
	for _, r := range reviews {
		if err := validation.ValidateRef(r.MovieID); err != nil {
			return fmt.Errorf("%w: review %s: %v", ErrMalformedItem, r.ID, err)
		}
	}
	for _, p := range posts {
		if err := validation.ValidateRef(p.MovieID); err != nil {
			return fmt.Errorf("%w: post %s: %v", ErrMalformedItem, p.ID, err)
		}
	}
	return nil
}
