package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineconnect/cinefeed/internal/content"
)

// fakeSource scripts the content service's four feed endpoints.
type fakeSource struct {
	publicReviews []content.Review
	publicPosts   []content.Post
	feedReviews   []content.Review
	feedPosts     []content.Post

	publicReviewsErr error
	publicPostsErr   error
	feedReviewsErr   error
	feedPostsErr     error

	lastLimit int
	lastCreds content.Credentials
}

func (f *fakeSource) PublicReviews(_ context.Context, limit int) ([]content.Review, error) {
	f.lastLimit = limit
	return f.publicReviews, f.publicReviewsErr
}

func (f *fakeSource) PublicPosts(_ context.Context, limit int) ([]content.Post, error) {
	return f.publicPosts, f.publicPostsErr
}

func (f *fakeSource) FeedReviews(_ context.Context, creds content.Credentials) ([]content.Review, error) {
	f.lastCreds = creds
	return f.feedReviews, f.feedReviewsErr
}

func (f *fakeSource) FeedPosts(_ context.Context, creds content.Credentials) ([]content.Post, error) {
	return f.feedPosts, f.feedPostsErr
}

// countingResolver resolves from a map and counts per-ref invocations.
type countingResolver struct {
	titles map[string]string
	calls  map[string]int
}

func newCountingResolver(titles map[string]string) *countingResolver {
	return &countingResolver{titles: titles, calls: make(map[string]int)}
}

func (r *countingResolver) Resolve(_ context.Context, ref string) Metadata {
	r.calls[ref]++
	if title, ok := r.titles[ref]; ok {
		return Metadata{Ref: ref, Title: title, PosterURL: "https://img/" + ref + ".jpg"}
	}
	return Placeholder(ref)
}

func TestAssemblePublicMode(t *testing.T) {
	source := &fakeSource{
		publicReviews: []content.Review{
			{ID: "r1", MovieID: "tt1", Rating: 5},
			{ID: "r2", MovieID: "tt2", Rating: 3},
		},
		publicPosts: []content.Post{
			{ID: "p1", MovieID: "tt1", Content: "rewatching tonight"},
		},
	}
	resolver := newCountingResolver(map[string]string{
		"tt1": "Inception",
		"tt2": "Memento",
	})
	assembler := NewAssembler(source, resolver)

	assembled, err := assembler.Assemble(context.Background(), PublicMode())
	require.NoError(t, err)

	assert.Equal(t, defaultPublicLimit, source.lastLimit)
	require.Len(t, assembled.Reviews, 2)
	require.Len(t, assembled.Posts, 1)

	// Shared ref: review and post carry identical metadata from one lookup.
	assert.Equal(t, "Inception", assembled.Reviews[0].Movie.Title)
	assert.Equal(t, "Inception", assembled.Posts[0].Movie.Title)
	assert.Equal(t, assembled.Reviews[0].Movie, assembled.Posts[0].Movie)
	assert.Equal(t, 1, resolver.calls["tt1"])
	assert.Equal(t, 1, resolver.calls["tt2"])
}

func TestAssemblePersonalizedMode(t *testing.T) {
	source := &fakeSource{
		feedReviews: []content.Review{{ID: "r1", MovieID: "tt1"}},
		feedPosts:   []content.Post{{ID: "p1", MovieID: "tt2"}},
	}
	resolver := newCountingResolver(map[string]string{"tt1": "Heat", "tt2": "Ronin"})
	assembler := NewAssembler(source, resolver)

	creds := content.Credentials{Token: "tok-123"}
	assembled, err := assembler.Assemble(context.Background(), PersonalizedMode(creds))
	require.NoError(t, err)

	assert.Equal(t, creds, source.lastCreds)
	require.Len(t, assembled.Reviews, 1)
	require.Len(t, assembled.Posts, 1)
}

func TestAssembleOrderPreserved(t *testing.T) {
	source := &fakeSource{
		publicReviews: []content.Review{
			{ID: "r1", MovieID: "tt3"},
			{ID: "r2", MovieID: "tt1"},
			{ID: "r3", MovieID: "tt2"},
		},
	}
	resolver := newCountingResolver(nil)
	assembler := NewAssembler(source, resolver)

	assembled, err := assembler.Assemble(context.Background(), PublicMode())
	require.NoError(t, err)

	ids := make([]string, 0, len(assembled.Reviews))
	for _, e := range assembled.Reviews {
		ids = append(ids, e.Review.ID)
	}
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids)
}

func TestAssembleFetchFailureFailsPass(t *testing.T) {
	source := &fakeSource{
		feedReviews:  []content.Review{{ID: "r1", MovieID: "tt1"}},
		feedPostsErr: fmt.Errorf("boom"),
	}
	assembler := NewAssembler(source, newCountingResolver(nil))

	assembled, err := assembler.Assemble(context.Background(), PersonalizedMode(content.Credentials{Token: "t"}))
	require.Error(t, err)
	assert.Nil(t, assembled)
	assert.Contains(t, err.Error(), "fetching posts")
}

func TestAssembleResolutionFailureDoesNotFailPass(t *testing.T) {
	source := &fakeSource{
		publicReviews: []content.Review{{ID: "r1", MovieID: "tt404"}},
	}
	assembler := NewAssembler(source, newCountingResolver(nil))

	assembled, err := assembler.Assemble(context.Background(), PublicMode())
	require.NoError(t, err)
	require.Len(t, assembled.Reviews, 1)

	// Placeholder: title falls back to the ref, poster stays absent.
	assert.Equal(t, "tt404", assembled.Reviews[0].Movie.Title)
	assert.Empty(t, assembled.Reviews[0].Movie.PosterURL)
}

func TestAssembleRejectsMalformedItems(t *testing.T) {
	tests := []struct {
		name    string
		reviews []content.Review
		posts   []content.Post
	}{
		{
			name:    "review with empty ref",
			reviews: []content.Review{{ID: "r1", MovieID: ""}},
		},
		{
			name:  "post with whitespace ref",
			posts: []content.Post{{ID: "p1", MovieID: "tt1 234"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{publicReviews: tt.reviews, publicPosts: tt.posts}
			assembler := NewAssembler(source, newCountingResolver(nil))

			_, err := assembler.Assemble(context.Background(), PublicMode())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedItem))
		})
	}
}

func TestAssembleEmptyFeed(t *testing.T) {
	assembler := NewAssembler(&fakeSource{}, newCountingResolver(nil))

	assembled, err := assembler.Assemble(context.Background(), PublicMode())
	require.NoError(t, err)
	assert.Empty(t, assembled.Reviews)
	assert.Empty(t, assembled.Posts)
}

func TestAssemblerOptions(t *testing.T) {
	source := &fakeSource{}
	assembler := NewAssembler(source, newCountingResolver(nil), WithPublicLimit(7), WithMaxLookups(2))

	_, err := assembler.Assemble(context.Background(), PublicMode())
	require.NoError(t, err)
	assert.Equal(t, 7, source.lastLimit)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "public", PublicMode().String())
	assert.Equal(t, "personalized", PersonalizedMode(content.Credentials{Token: "t"}).String())
	assert.False(t, PublicMode().Personalized())
	assert.True(t, PersonalizedMode(content.Credentials{Token: "t"}).Personalized())
}
