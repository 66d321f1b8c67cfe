package tui

import "fmt"

// Canonical short status messages used across the app.
const (
	MsgRefreshing   = "Refreshing feed…"
	MsgLoggingIn    = "Logging in…"
	MsgLoading      = "Loading…"
	MsgSearching    = "Searching catalog…"
	MsgSubmitting   = "Submitting…"
	MsgNoResults    = "No results"
	MsgLoggedOut    = "Logged out"
	MsgReviewSent   = "Review published"
	MsgPostSent     = "Post published"
	MsgBookmarked   = "Bookmarked"
	MsgUnbookmarked = "Bookmark removed"
)

func MsgFeedSummary(reviews, posts int, personalized bool) string {
	mode := "public"
	if personalized {
		mode = "your"
	}
	return fmt.Sprintf("Showing %s feed: %d reviews • %d posts", mode, reviews, posts)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgWelcome(username string) string {
	return fmt.Sprintf("Welcome back, %s", username)
}
