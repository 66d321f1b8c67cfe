package content

import (
	"time"
)

// Author roles as reported by the content service. The role only drives
// display emphasis; the service enforces what each role may do.
const (
	RoleViewer   = "viewer"
	RoleReviewer = "reviewer"
)

type Author struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Review is a rated write-up about a single movie. MovieID is an opaque
// external catalog identifier; it is never parsed, only used as a lookup key.
type Review struct {
	ID        string    `json:"_id"`
	MovieID   string    `json:"movieId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"author"`
}

// Post is a free-form note about a single movie.
type Post struct {
	ID        string    `json:"_id"`
	MovieID   string    `json:"movieId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"author"`
}

// User is the content service's account record. Bookmarks holds external
// catalog identifiers; Following holds the users this account follows.
type User struct {
	ID        string   `json:"_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	Bookmarks []string `json:"bookmarks"`
	Following []Author `json:"following"`
}

// Credentials identifies the authenticated caller on feed-scoped requests.
// The zero value is anonymous. Credentials are always passed explicitly;
// nothing in this package reads them from ambient state.
type Credentials struct {
	Token string
}

// Anonymous reports whether no caller identity is attached.
func (c Credentials) Anonymous() bool { return c.Token == "" }

// Session is what the auth endpoints hand back on login/register.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Relationships is the read-only bookmark/follow membership state for the
// current viewer, derived from their user record. The aggregation core only
// consults it for annotations; toggles go through the client directly.
type Relationships struct {
	bookmarks map[string]struct{}
	following map[string]struct{}
}

// NewRelationships builds membership sets from a user record.
func NewRelationships(u User) Relationships {
	r := Relationships{
		bookmarks: make(map[string]struct{}, len(u.Bookmarks)),
		following: make(map[string]struct{}, len(u.Following)),
	}
	for _, ref := range u.Bookmarks {
		r.bookmarks[ref] = struct{}{}
	}
	for _, f := range u.Following {
		r.following[f.ID] = struct{}{}
	}
	return r
}

// Bookmarked reports whether the viewer bookmarked the given catalog ref.
func (r Relationships) Bookmarked(ref string) bool {
	_, ok := r.bookmarks[ref]
	return ok
}

// Follows reports whether the viewer follows the given user.
func (r Relationships) Follows(userID string) bool {
	_, ok := r.following[userID]
	return ok
}
