package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cineconnect/cinefeed/internal/catalog"
	"github.com/cineconnect/cinefeed/internal/content"
	"github.com/cineconnect/cinefeed/internal/feed"
)

func (a *App) credentials() content.Credentials {
	if a.session == nil {
		return content.Credentials{}
	}
	return content.Credentials{Token: a.session.Token}
}

func (a *App) mode() feed.Mode {
	if a.session != nil {
		return feed.PersonalizedMode(a.credentials())
	}
	return feed.PublicMode()
}

// assembleFeed starts a new aggregation pass. The generation token captured
// here lets Update discard a pass that was superseded before it finished, so
// a slow public pass can never overwrite a fresh personalized one.
func (a *App) assembleFeed() tea.Cmd {
	a.feedGen++
	gen := a.feedGen
	mode := a.mode()
	return func() tea.Msg {
		assembled, err := a.assembler.Assemble(context.Background(), mode)
		return feedLoadedMsg{gen: gen, feed: assembled, err: err}
	}
}

// loadFeaturedUsers fetches the featured reviewers strip. Failure here never
// disturbs the feed; the strip just stays empty.
func (a *App) loadFeaturedUsers() tea.Cmd {
	return func() tea.Msg {
		users, err := a.client.AllUsers(context.Background())
		return usersLoadedMsg{users: users, err: err}
	}
}

// maxRecommendedMovies bounds the home-view picks strip.
const maxRecommendedMovies = 4

// loadRecommended fetches catalog picks for the home view. Like the featured
// strip, failure never disturbs the feed.
func (a *App) loadRecommended() tea.Cmd {
	query := a.config.Feed.RecommendedQuery
	return func() tea.Msg {
		if query == "" {
			return moviesLoadedMsg{}
		}
		movies, err := a.catalog.Search(context.Background(), query)
		if err != nil {
			return moviesLoadedMsg{err: err}
		}
		if len(movies) > maxRecommendedMovies {
			movies = movies[:maxRecommendedMovies]
		}
		return moviesLoadedMsg{movies: movies}
	}
}

func (a *App) login(identifier, password string) tea.Cmd {
	return func() tea.Msg {
		sess, err := a.client.Login(context.Background(), identifier, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		if saveErr := a.sessions.Save(*sess); saveErr != nil {
			return loginResultMsg{err: wrapErr("saving session", saveErr)}
		}
		return loginResultMsg{session: sess}
	}
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: a.sessions.Clear()}
	}
}

// loadDetails fetches one movie's full catalog record plus all of its reviews
// and posts, renders the page, and reports it. A catalog miss degrades to a
// placeholder heading; a content fetch failure fails the page.
func (a *App) loadDetails(ref string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		movie, lookupErr := a.catalog.Lookup(ctx, ref)
		if lookupErr != nil {
			movie = &catalog.Movie{ID: ref, Title: ref}
		}

		reviews, err := a.client.MovieReviews(ctx, ref)
		if err != nil {
			return detailsRenderedMsg{ref: ref, err: wrapErr("loading reviews", err)}
		}
		posts, err := a.client.MoviePosts(ctx, ref)
		if err != nil {
			return detailsRenderedMsg{ref: ref, err: wrapErr("loading posts", err)}
		}

		rendered, err := a.renderDetailsPage(movie, reviews, posts)
		if err != nil {
			return detailsRenderedMsg{ref: ref, err: err}
		}
		return detailsRenderedMsg{ref: ref, content: rendered, poster: movie.Poster}
	}
}

func (a *App) renderDetailsPage(movie *catalog.Movie, reviews []content.Review, posts []content.Post) (string, error) {
	var md strings.Builder
	md.WriteString(fmt.Sprintf("# %s\n\n", movie.Title))

	var facts []string
	if movie.Year != "" {
		facts = append(facts, movie.Year)
	}
	if movie.Genre != "" {
		facts = append(facts, movie.Genre)
	}
	if len(facts) > 0 {
		md.WriteString(fmt.Sprintf("*%s*\n\n", strings.Join(facts, " • ")))
	}
	if movie.Plot != "" {
		md.WriteString(movie.Plot + "\n\n")
	}
	if movie.Poster != "" {
		md.WriteString(fmt.Sprintf("[Poster](%s)\n\n", movie.Poster))
	}

	md.WriteString("---\n\n")
	md.WriteString(fmt.Sprintf("## Reviews (%d)\n\n", len(reviews)))
	if len(reviews) == 0 {
		md.WriteString("*No reviews yet.*\n\n")
	}
	for _, r := range reviews {
		md.WriteString(fmt.Sprintf("**%s** @%s", renderStars(r.Rating), r.Author.Username))
		if !r.CreatedAt.IsZero() {
			md.WriteString(" — " + r.CreatedAt.Format("Jan 2, 2006"))
		}
		md.WriteString("\n\n")
		if r.Comment != "" {
			md.WriteString(r.Comment + "\n\n")
		}
	}

	md.WriteString(fmt.Sprintf("## Posts (%d)\n\n", len(posts)))
	if len(posts) == 0 {
		md.WriteString("*No posts yet.*\n\n")
	}
	for _, p := range posts {
		md.WriteString(fmt.Sprintf("**@%s**", p.Author.Username))
		if !p.CreatedAt.IsZero() {
			md.WriteString(" — " + p.CreatedAt.Format("Jan 2, 2006"))
		}
		md.WriteString("\n\n" + p.Content + "\n\n")
	}

	r, err := a.getRenderer()
	if err != nil {
		return "", wrapErr("initializing renderer", err)
	}
	return r.Render(md.String())
}

// discoverSearch queries the external catalog by title. A negative catalog
// response is an empty result set, not an error.
func (a *App) discoverSearch(term string) tea.Cmd {
	return func() tea.Msg {
		movies, err := a.catalog.Search(context.Background(), term)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return discoverResultsMsg{movies: nil}
			}
			return discoverResultsMsg{err: err}
		}
		return discoverResultsMsg{movies: movies}
	}
}

// loadProfile aggregates the viewer's own page: account record, their
// reviews, and resolved metadata for the union of their bookmarks and the
// movies they reviewed.
func (a *App) loadProfile() tea.Cmd {
	creds := a.credentials()
	return func() tea.Msg {
		ctx := context.Background()

		user, err := a.client.Me(ctx, creds)
		if err != nil {
			return profileRenderedMsg{err: wrapErr("loading profile", err)}
		}
		reviews, err := a.client.UserReviews(ctx, user.ID)
		if err != nil {
			return profileRenderedMsg{err: wrapErr("loading your reviews", err)}
		}

		refs := feed.MergeRefs(user.Bookmarks, feed.CollectRefs(reviews, nil))
		table := feed.ResolveAll(ctx, a.resolver, refs, a.maxLookups)

		rendered, err := a.renderProfilePage(user, reviews, table)
		if err != nil {
			return profileRenderedMsg{err: err}
		}
		return profileRenderedMsg{user: user, content: rendered}
	}
}

func (a *App) renderProfilePage(user *content.User, reviews []content.Review, table feed.Table) (string, error) {
	var md strings.Builder
	md.WriteString(fmt.Sprintf("# @%s\n\n", user.Username))
	md.WriteString(fmt.Sprintf("*%s • %s*\n\n", user.Role, user.Email))
	md.WriteString(fmt.Sprintf("Following %d • Bookmarks %d\n\n", len(user.Following), len(user.Bookmarks)))

	md.WriteString("---\n\n")
	md.WriteString(fmt.Sprintf("## Bookmarks (%d)\n\n", len(user.Bookmarks)))
	if len(user.Bookmarks) == 0 {
		md.WriteString("*Nothing bookmarked yet.*\n\n")
	}
	for _, ref := range user.Bookmarks {
		meta := table.Lookup(ref)
		md.WriteString(fmt.Sprintf("- %s\n", meta.Title))
	}
	if len(user.Bookmarks) > 0 {
		md.WriteString("\n")
	}

	md.WriteString(fmt.Sprintf("## Your reviews (%d)\n\n", len(reviews)))
	if len(reviews) == 0 {
		md.WriteString("*No reviews yet.*\n\n")
	}
	for _, r := range reviews {
		meta := table.Lookup(r.MovieID)
		md.WriteString(fmt.Sprintf("**%s** %s", meta.Title, renderStars(r.Rating)))
		if !r.CreatedAt.IsZero() {
			md.WriteString(" — " + r.CreatedAt.Format("Jan 2, 2006"))
		}
		md.WriteString("\n\n")
		if r.Comment != "" {
			md.WriteString(r.Comment + "\n\n")
		}
	}

	r, err := a.getRenderer()
	if err != nil {
		return "", wrapErr("initializing renderer", err)
	}
	return r.Render(md.String())
}

// toggleBookmark flips the bookmark state for one catalog ref, then refreshes
// the stored user snapshot so membership annotations stay truthful.
func (a *App) toggleBookmark(ref string, currently bool) tea.Cmd {
	creds := a.credentials()
	return func() tea.Msg {
		ctx := context.Background()
		if err := a.client.SetBookmark(ctx, creds, ref, !currently); err != nil {
			return relationshipsMsg{err: err}
		}
		user, err := a.client.Me(ctx, creds)
		if err != nil {
			return relationshipsMsg{err: err}
		}
		if saveErr := a.sessions.UpdateUser(*user); saveErr != nil {
			return relationshipsMsg{err: wrapErr("saving session", saveErr)}
		}
		note := MsgUnbookmarked
		if !currently {
			note = MsgBookmarked
		}
		return relationshipsMsg{user: user, note: note}
	}
}

// toggleFollow flips follow state for one user.
func (a *App) toggleFollow(userID string, currently bool) tea.Cmd {
	creds := a.credentials()
	return func() tea.Msg {
		ctx := context.Background()
		if err := a.client.SetFollow(ctx, creds, userID, !currently); err != nil {
			return relationshipsMsg{err: err}
		}
		user, err := a.client.Me(ctx, creds)
		if err != nil {
			return relationshipsMsg{err: err}
		}
		if saveErr := a.sessions.UpdateUser(*user); saveErr != nil {
			return relationshipsMsg{err: wrapErr("saving session", saveErr)}
		}
		note := "Following"
		if currently {
			note = "Unfollowed"
		}
		return relationshipsMsg{user: user, note: note}
	}
}

func (a *App) submitReview(ref, ratingText, comment string) tea.Cmd {
	creds := a.credentials()
	return func() tea.Msg {
		rating, err := strconv.Atoi(strings.TrimSpace(ratingText))
		if err != nil {
			return reviewSubmittedMsg{err: fmt.Errorf("rating must be a number between 1 and 5")}
		}
		_, err = a.client.CreateReview(context.Background(), creds, ref, rating, strings.TrimSpace(comment))
		return reviewSubmittedMsg{err: err}
	}
}

func (a *App) submitPost(ref, text string) tea.Cmd {
	creds := a.credentials()
	return func() tea.Msg {
		text = strings.TrimSpace(text)
		if text == "" {
			return postSubmittedMsg{err: fmt.Errorf("post cannot be empty")}
		}
		_, err := a.client.CreatePost(context.Background(), creds, ref, text)
		return postSubmittedMsg{err: err}
	}
}

// performSearch runs the local search engine over the current pass.
func (a *App) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := a.searcher.Search(query, 20)
		if err != nil {
			return errorMsg{err: err}
		}

		items := make([]searchResultItem, 0, len(results))
		for _, r := range results {
			item := &entryItem{isPost: r.IsPost}
			if r.IsPost {
				item.post = r.Post
			} else {
				item.review = r.Review
			}
			items = append(items, searchResultItem{result: item, score: r.Score})
		}
		return searchResultsMsg{results: items}
	}
}

func (a *App) openURL(url string) tea.Cmd {
	return func() tea.Msg {
		if err := a.launcher.Open(url); err != nil {
			return errorMsg{err: wrapErr("opening "+truncateMiddle(url, 40), err)}
		}
		return nil
	}
}

// statusTTL is how long transient status notes stay on screen.
const statusTTL = 4 * time.Second

// clearStatusAfter fades a transient status note.
func (a *App) clearStatusAfter(d time.Duration) tea.Cmd {
	seq := a.statusSeq
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusExpiredMsg{seq: seq}
	})
}
