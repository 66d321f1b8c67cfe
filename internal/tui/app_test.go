package tui

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineconnect/cinefeed/internal/catalog"
	"github.com/cineconnect/cinefeed/internal/config"
	"github.com/cineconnect/cinefeed/internal/content"
	"github.com/cineconnect/cinefeed/internal/feed"
	"github.com/cineconnect/cinefeed/internal/session"
)

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.TestConfig()
	client := content.NewClient(cfg.API.BaseURL)
	cat := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, catalog.WithRateLimit(0, 0))

	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	return NewApp(cfg, client, cat, sessions)
}

func testAssembled() *feed.AssembledFeed {
	return &feed.AssembledFeed{
		Reviews: []feed.ReviewEntry{
			{
				Review: content.Review{
					ID:      "r1",
					MovieID: "tt0111161",
					Rating:  5,
					Comment: "Still the best",
					Author:  content.Author{ID: "u1", Username: "filmfan"},
				},
				Movie: feed.Metadata{Ref: "tt0111161", Title: "The Shawshank Redemption"},
			},
		},
		Posts: []feed.PostEntry{
			{
				Post: content.Post{
					ID:      "p1",
					MovieID: "tt0068646",
					Content: "Rewatch night",
					Author:  content.Author{ID: "u2", Username: "cinemaddict"},
				},
				Movie: feed.Metadata{Ref: "tt0068646", Title: "The Godfather"},
			},
		},
	}
}

func TestFeedLoadedAppliesCurrentPass(t *testing.T) {
	app := newTestApp(t)
	app.loadingFeed = true

	updatedModel, _ := app.Update(feedLoadedMsg{gen: app.feedGen, feed: testAssembled()})
	updated := updatedModel.(*App)

	assert.False(t, updated.loadingFeed)
	require.NotNil(t, updated.assembled)
	assert.Len(t, updated.feedList.Items(), 2)
	assert.NotEmpty(t, updated.status)
}

func TestFeedLoadedDiscardsStalePass(t *testing.T) {
	app := newTestApp(t)

	// A current pass lands first.
	current := testAssembled()
	updatedModel, _ := app.Update(feedLoadedMsg{gen: app.feedGen, feed: current})
	app = updatedModel.(*App)

	// A pass dispatched earlier finishes late; its generation no longer
	// matches and it must not overwrite anything.
	stale := &feed.AssembledFeed{}
	app.feedGen = 5
	updatedModel, _ = app.Update(feedLoadedMsg{gen: 4, feed: stale})
	app = updatedModel.(*App)

	assert.Same(t, current, app.assembled)
	assert.Len(t, app.feedList.Items(), 2)
}

func TestFeedLoadedError(t *testing.T) {
	app := newTestApp(t)
	app.loadingFeed = true

	updatedModel, _ := app.Update(feedLoadedMsg{gen: app.feedGen, err: fmt.Errorf("service down")})
	updated := updatedModel.(*App)

	assert.False(t, updated.loadingFeed)
	assert.Error(t, updated.err)
	assert.Nil(t, updated.assembled)
}

func TestAssembleFeedBumpsGeneration(t *testing.T) {
	app := newTestApp(t)

	before := app.feedGen
	cmd := app.assembleFeed()
	require.NotNil(t, cmd)
	assert.Equal(t, before+1, app.feedGen)
}

func TestBuildFeedItemsAnnotatesBookmarks(t *testing.T) {
	app := newTestApp(t)
	app.assembled = testAssembled()
	app.rels = content.NewRelationships(content.User{Bookmarks: []string{"tt0068646"}})

	items := app.buildFeedItems()
	require.Len(t, items, 2)

	// Reviews come first, posts after, keeping service order.
	review := items[0].(entryItem)
	post := items[1].(entryItem)
	assert.False(t, review.isPost)
	assert.True(t, post.isPost)
	assert.False(t, review.bookmarked)
	assert.True(t, post.bookmarked)
}

func TestViewStateTransitions(t *testing.T) {
	tests := []struct {
		name         string
		initialView  View
		msg          tea.Msg
		expectedView View
		setupFunc    func(*App)
	}{
		{
			name:         "feed to discover on ctrl+d",
			initialView:  ViewFeed,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlD},
			expectedView: ViewDiscover,
		},
		{
			name:         "feed to search on ctrl+s",
			initialView:  ViewFeed,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlS},
			expectedView: ViewSearch,
		},
		{
			name:         "feed to login on ctrl+l when logged out",
			initialView:  ViewFeed,
			msg:          tea.KeyMsg{Type: tea.KeyCtrlL},
			expectedView: ViewLogin,
		},
		{
			name:         "discover back to feed on escape",
			initialView:  ViewDiscover,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewFeed,
		},
		{
			name:         "login back to feed on escape",
			initialView:  ViewLogin,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewFeed,
			setupFunc: func(a *App) {
				a.previousView = ViewFeed
				a.loginID.Focus()
			},
		},
		{
			name:         "details back to previous view on escape",
			initialView:  ViewDetails,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewFeed,
			setupFunc: func(a *App) {
				a.previousView = ViewFeed
				a.currentRef = "tt0111161"
			},
		},
		{
			name:         "profile back to feed on escape",
			initialView:  ViewProfile,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewFeed,
		},
		{
			name:         "compose back to previous view on escape",
			initialView:  ViewComposePost,
			msg:          tea.KeyMsg{Type: tea.KeyEsc},
			expectedView: ViewDetails,
			setupFunc: func(a *App) {
				a.previousView = ViewDetails
				a.commentInput.Focus()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.view = tt.initialView

			if tt.setupFunc != nil {
				tt.setupFunc(app)
			}

			updatedModel, _ := app.Update(tt.msg)
			updated, ok := updatedModel.(*App)
			require.True(t, ok, "model should be *App")

			assert.Equal(t, tt.expectedView, updated.view)
		})
	}
}

func TestProfileRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	app.view = ViewFeed

	updatedModel, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	updated := updatedModel.(*App)

	assert.Equal(t, ViewFeed, updated.view, "profile should not open when logged out")
	require.NotNil(t, cmd)

	msg := cmd()
	errMsg, ok := msg.(errorMsg)
	require.True(t, ok)
	assert.Error(t, errMsg.err)
}

func TestLoginResultSwitchesToPersonalized(t *testing.T) {
	app := newTestApp(t)
	app.view = ViewLogin

	sess := &content.Session{
		Token: "tok",
		User: content.User{
			ID:        "u1",
			Username:  "frank",
			Role:      content.RoleReviewer,
			Bookmarks: []string{"tt0111161"},
		},
	}

	updatedModel, cmd := app.Update(loginResultMsg{session: sess})
	updated := updatedModel.(*App)

	assert.Equal(t, ViewFeed, updated.view)
	require.NotNil(t, updated.session)
	assert.True(t, updated.rels.Bookmarked("tt0111161"))
	assert.NotNil(t, cmd, "login should trigger a fresh pass")
}

func TestLoggedOutClearsIdentity(t *testing.T) {
	app := newTestApp(t)
	app.session = &content.Session{Token: "tok", User: content.User{ID: "u1", Bookmarks: []string{"tt1"}}}
	app.rels = content.NewRelationships(app.session.User)

	updatedModel, cmd := app.Update(loggedOutMsg{})
	updated := updatedModel.(*App)

	assert.Nil(t, updated.session)
	assert.False(t, updated.rels.Bookmarked("tt1"))
	assert.Equal(t, ViewFeed, updated.view)
	assert.NotNil(t, cmd, "logout should trigger a public pass")
}

func TestRelationshipsUpdateRebuildsAnnotations(t *testing.T) {
	app := newTestApp(t)
	app.assembled = testAssembled()
	app.session = &content.Session{Token: "tok", User: content.User{ID: "u1"}}
	app.feedList.SetItems(app.buildFeedItems())

	user := content.User{ID: "u1", Bookmarks: []string{"tt0111161"}}
	updatedModel, _ := app.Update(relationshipsMsg{user: &user, note: MsgBookmarked})
	updated := updatedModel.(*App)

	items := updated.feedList.Items()
	require.Len(t, items, 2)
	assert.True(t, items[0].(entryItem).bookmarked)
	assert.False(t, items[1].(entryItem).bookmarked)
	assert.Equal(t, MsgBookmarked, updated.status)
}

func TestStatusExpiry(t *testing.T) {
	app := newTestApp(t)

	app.setStatus("first")
	seq := app.statusSeq

	// A newer status supersedes the pending expiry.
	app.setStatus("second")
	updatedModel, _ := app.Update(statusExpiredMsg{seq: seq})
	updated := updatedModel.(*App)
	assert.Equal(t, "second", updated.status)

	updatedModel, _ = updated.Update(statusExpiredMsg{seq: updated.statusSeq})
	updated = updatedModel.(*App)
	assert.Empty(t, updated.status)
}

func TestDetailsRenderedGuards(t *testing.T) {
	app := newTestApp(t)
	app.view = ViewDetails
	app.currentRef = "tt0111161"
	app.loadingDetails = true

	// A page for a ref we already navigated away from is dropped.
	updatedModel, _ := app.Update(detailsRenderedMsg{ref: "tt9999999", content: "old page"})
	updated := updatedModel.(*App)
	assert.True(t, updated.loadingDetails)

	updatedModel, _ = updated.Update(detailsRenderedMsg{
		ref:     "tt0111161",
		content: "# The Shawshank Redemption",
		poster:  "https://img/poster.jpg",
	})
	updated = updatedModel.(*App)
	assert.False(t, updated.loadingDetails)
	assert.Equal(t, "https://img/poster.jpg", updated.posterURL)
}

func TestUsersLoadedFailureIsNonFatal(t *testing.T) {
	app := newTestApp(t)

	updatedModel, _ := app.Update(usersLoadedMsg{err: fmt.Errorf("service down")})
	updated := updatedModel.(*App)

	assert.NoError(t, updated.err)
	assert.Empty(t, updated.featured)
}

func TestRecommendedMoviesFailureIsNonFatal(t *testing.T) {
	app := newTestApp(t)

	updatedModel, _ := app.Update(moviesLoadedMsg{err: fmt.Errorf("catalog down")})
	updated := updatedModel.(*App)

	assert.NoError(t, updated.err)
	assert.Empty(t, updated.recommended)
}

func TestRecommendedMoviesLoaded(t *testing.T) {
	app := newTestApp(t)

	movies := []catalog.Movie{{ID: "tt1", Title: "Superman"}}
	updatedModel, _ := app.Update(moviesLoadedMsg{movies: movies})
	updated := updatedModel.(*App)

	require.Len(t, updated.recommended, 1)
	strip := recommendedStrip(updated.recommended, updated.rels, 80)
	assert.Contains(t, strip, "Superman")
}

func TestLoadRecommendedBoundsStrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "superman", r.URL.Query().Get("s"))
		fmt.Fprint(w, `{"Response":"True","Search":[
			{"imdbID":"tt1","Title":"One","Poster":"N/A"},
			{"imdbID":"tt2","Title":"Two"},
			{"imdbID":"tt3","Title":"Three"},
			{"imdbID":"tt4","Title":"Four"},
			{"imdbID":"tt5","Title":"Five"},
			{"imdbID":"tt6","Title":"Six"}]}`)
	}))
	defer server.Close()

	cfg := config.TestConfig()
	cfg.Catalog.BaseURL = server.URL
	client := content.NewClient(cfg.API.BaseURL)
	cat := catalog.NewClient(server.URL, cfg.Catalog.APIKey, catalog.WithRateLimit(0, 0))

	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer sessions.Close()

	app := NewApp(cfg, client, cat, sessions)
	msg := app.loadRecommended()()

	loaded, ok := msg.(moviesLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)
	require.Len(t, loaded.movies, maxRecommendedMovies)
	assert.Equal(t, "One", loaded.movies[0].Title)
	assert.Empty(t, loaded.movies[0].Poster, "poster sentinel should be normalized")
}

func TestProfileRenderedPersistsSnapshot(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.sessions.Save(content.Session{
		Token: "tok",
		User:  content.User{ID: "u1", Username: "frank"},
	}))
	app.session = &content.Session{Token: "tok", User: content.User{ID: "u1", Username: "frank"}}
	app.view = ViewProfile

	refreshed := content.User{ID: "u1", Username: "frank", Bookmarks: []string{"tt0111161"}}
	updatedModel, _ := app.Update(profileRenderedMsg{user: &refreshed, content: "# @frank"})
	updated := updatedModel.(*App)

	assert.True(t, updated.rels.Bookmarked("tt0111161"))

	// The refreshed snapshot survives a restart.
	stored, err := app.sessions.Current()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "tok", stored.Token)
	assert.Equal(t, []string{"tt0111161"}, stored.User.Bookmarks)
}

func TestReviewSubmittedReturnsToPreviousView(t *testing.T) {
	app := newTestApp(t)
	app.view = ViewComposeReview
	app.previousView = ViewDetails
	app.currentRef = "tt0111161"

	updatedModel, cmd := app.Update(reviewSubmittedMsg{})
	updated := updatedModel.(*App)

	assert.Equal(t, ViewDetails, updated.view)
	assert.Equal(t, MsgReviewSent, updated.status)
	assert.NotNil(t, cmd, "should refresh the details page")
}

func TestFollowRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	app.assembled = testAssembled()
	app.feedList.SetItems(app.buildFeedItems())
	app.view = ViewFeed

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	require.NotNil(t, cmd)

	msg := cmd()
	errMsg, ok := msg.(errorMsg)
	require.True(t, ok)
	assert.Error(t, errMsg.err)
}

func TestQuitKeys(t *testing.T) {
	app := newTestApp(t)
	app.view = ViewFeed

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestRestoredSessionFromStore(t *testing.T) {
	cfg := config.TestConfig()
	client := content.NewClient(cfg.API.BaseURL)
	cat := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, catalog.WithRateLimit(0, 0))

	sessions, err := session.NewStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer sessions.Close()

	require.NoError(t, sessions.Save(content.Session{
		Token: "tok",
		User:  content.User{ID: "u1", Username: "frank", Bookmarks: []string{"tt1"}},
	}))

	app := NewApp(cfg, client, cat, sessions)
	require.NotNil(t, app.session)
	assert.Equal(t, "frank", app.session.User.Username)
	assert.True(t, app.rels.Bookmarked("tt1"))
}
