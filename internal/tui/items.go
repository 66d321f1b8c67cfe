package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cineconnect/cinefeed/internal/catalog"
	"github.com/cineconnect/cinefeed/internal/content"
	"github.com/cineconnect/cinefeed/internal/feed"
)

// entryItem is one feed row: either a review or a post, paired with its
// resolved movie metadata and the viewer's bookmark state.
type entryItem struct {
	review     *feed.ReviewEntry
	post       *feed.PostEntry
	isPost     bool
	bookmarked bool
}

func (i entryItem) movie() feed.Metadata {
	if i.isPost {
		return i.post.Movie
	}
	return i.review.Movie
}

func (i entryItem) author() content.Author {
	if i.isPost {
		return i.post.Post.Author
	}
	return i.review.Review.Author
}

func (i entryItem) ref() string {
	if i.isPost {
		return i.post.Post.MovieID
	}
	return i.review.Review.MovieID
}

func (i entryItem) Title() string {
	movie := i.movie()
	title := MovieTitleStyle.Render(movie.Title)

	marker := ""
	if i.bookmarked {
		marker = BookmarkStyle.Render("♥ ")
	}

	if i.isPost {
		return marker + "✎ " + title
	}
	stars := RatingStyle.Render(renderStars(i.review.Review.Rating))
	return marker + stars + " " + title
}

func (i entryItem) Description() string {
	var body, author string
	var timeStr string
	if i.isPost {
		body = i.post.Post.Content
		author = i.post.Post.Author.Username
		if !i.post.Post.CreatedAt.IsZero() {
			timeStr = i.post.Post.CreatedAt.Format("Jan 2, 15:04")
		}
	} else {
		body = i.review.Review.Comment
		author = i.review.Review.Author.Username
		if !i.review.Review.CreatedAt.IsZero() {
			timeStr = i.review.Review.CreatedAt.Format("Jan 2, 15:04")
		}
	}

	desc := truncateEnd(body, 80)
	parts := AuthorStyle.Render("@"+author) + " " +
		lipgloss.NewStyle().Foreground(MutedColor).Render(desc)
	if timeStr != "" {
		parts += TimeStyle.Render(" • " + timeStr)
	}
	return parts
}

func (i entryItem) FilterValue() string {
	movie := i.movie()
	if i.isPost {
		return movie.Title + " " + i.post.Post.Author.Username
	}
	return movie.Title + " " + i.review.Review.Author.Username
}

// movieItem is one catalog search hit in the discover view.
type movieItem struct {
	movie      catalog.Movie
	bookmarked bool
}

func (i movieItem) Title() string {
	title := MovieTitleStyle.Render(i.movie.Title)
	if i.bookmarked {
		return BookmarkStyle.Render("♥ ") + title
	}
	return title
}

func (i movieItem) Description() string {
	parts := []string{i.movie.ID}
	if i.movie.Year != "" {
		parts = append(parts, i.movie.Year)
	}
	return lipgloss.NewStyle().
		Foreground(MutedColor).
		Render(strings.Join(parts, " • "))
}

func (i movieItem) FilterValue() string { return i.movie.Title }

// searchResultItem is one local search hit over the current feed pass.
type searchResultItem struct {
	result *entryItem
	score  float64
}

func (i searchResultItem) Title() string {
	kind := "★"
	if i.result.isPost {
		kind = "✎"
	}
	return kind + " " + MovieTitleStyle.Render(i.result.movie().Title)
}

func (i searchResultItem) Description() string {
	var body, author string
	if i.result.isPost {
		body = i.result.post.Post.Content
		author = i.result.post.Post.Author.Username
	} else {
		body = i.result.review.Review.Comment
		author = i.result.review.Review.Author.Username
	}
	return lipgloss.NewStyle().
		Foreground(MutedColor).
		Render(truncateEnd(body, 50) + " • @" + author)
}

func (i searchResultItem) FilterValue() string {
	return i.result.movie().Title
}

// maxFeaturedUsers bounds the strip so it stays a single line.
const maxFeaturedUsers = 6

// featuredStrip renders the featured reviewers line shown above the feed.
// Followed users get the accent color.
func featuredStrip(users []content.User, rels content.Relationships, width int) string {
	if len(users) == 0 {
		return ""
	}
	if len(users) > maxFeaturedUsers {
		users = users[:maxFeaturedUsers]
	}

	var names []string
	for _, u := range users {
		name := "@" + truncateEnd(u.Username, 16)
		if u.Role == content.RoleReviewer {
			name = "★" + name
		}
		if rels.Follows(u.ID) {
			name = AuthorStyle.Render(name)
		} else {
			name = lipgloss.NewStyle().Foreground(MutedColor).Render(name)
		}
		names = append(names, name)
	}

	line := HeaderStyle.Render("featured: ") + strings.Join(names, "  ")
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

// recommendedStrip renders the catalog picks line shown above the feed.
// Bookmarked picks get the heart marker.
func recommendedStrip(movies []catalog.Movie, rels content.Relationships, width int) string {
	if len(movies) == 0 {
		return ""
	}

	var titles []string
	for _, m := range movies {
		title := truncateEnd(m.Title, 24)
		if rels.Bookmarked(m.ID) {
			title = BookmarkStyle.Render("♥") + title
		}
		titles = append(titles, MovieTitleStyle.Render(title))
	}

	line := HeaderStyle.Render("picks: ") + strings.Join(titles, "  ")
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func renderStars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
