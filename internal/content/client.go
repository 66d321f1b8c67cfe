package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// HTTPClient is the subset of *http.Client the content client needs,
// injectable for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-success response from the content service, carrying the
// server's message string when one was supplied.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("content service: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("content service: %d", e.Status)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client talks to the CineConnect content service REST API.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	userAgent  string
}

// NewClient creates a content-service client for the given base URL
// (e.g. http://localhost:4000).
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "cinefeed/1.0 (github.com/cineconnect/cinefeed)",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublicReviews returns the bounded public slice of recent reviews. No
// identity is attached. limit <= 0 means the server's default page.
func (c *Client) PublicReviews(ctx context.Context, limit int) ([]Review, error) {
	var reviews []Review
	if err := c.get(ctx, "/api/reviews/public", Credentials{}, &reviews); err != nil {
		return nil, err
	}
	return bound(reviews, limit), nil
}

// PublicPosts returns the bounded public slice of recent posts.
func (c *Client) PublicPosts(ctx context.Context, limit int) ([]Post, error) {
	var posts []Post
	if err := c.get(ctx, "/api/posts/public", Credentials{}, &posts); err != nil {
		return nil, err
	}
	return bound(posts, limit), nil
}

// FeedReviews returns the caller-scoped review feed. Requires credentials.
func (c *Client) FeedReviews(ctx context.Context, creds Credentials) ([]Review, error) {
	var reviews []Review
	if err := c.get(ctx, "/api/reviews/feed", creds, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// FeedPosts returns the caller-scoped post feed. Requires credentials.
func (c *Client) FeedPosts(ctx context.Context, creds Credentials) ([]Post, error) {
	var posts []Post
	if err := c.get(ctx, "/api/posts/feed", creds, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// MovieReviews returns all reviews for one catalog ref.
func (c *Client) MovieReviews(ctx context.Context, movieID string) ([]Review, error) {
	var reviews []Review
	if err := c.get(ctx, "/api/reviews/movie/"+url.PathEscape(movieID), Credentials{}, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// MoviePosts returns all posts for one catalog ref.
func (c *Client) MoviePosts(ctx context.Context, movieID string) ([]Post, error) {
	var posts []Post
	if err := c.get(ctx, "/api/posts/"+url.PathEscape(movieID), Credentials{}, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UserReviews returns the reviews written by one user.
func (c *Client) UserReviews(ctx context.Context, userID string) ([]Review, error) {
	var reviews []Review
	if err := c.get(ctx, "/api/reviews?userId="+url.QueryEscape(userID), Credentials{}, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// AllUsers returns every account, used for the featured-users strip.
func (c *Client) AllUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/api/users/all", Credentials{}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns one user's public profile.
func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	var user User
	if err := c.get(ctx, "/api/users/"+url.PathEscape(userID), Credentials{}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the authenticated caller's own record, including bookmark and
// following state.
func (c *Client) Me(ctx context.Context, creds Credentials) (*User, error) {
	var user User
	if err := c.get(ctx, "/api/users/me", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ProfileUpdate is the PATCH body for profile edits. Password empty means
// unchanged.
type ProfileUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// UpdateMe patches the caller's own profile and returns the updated record.
func (c *Client) UpdateMe(ctx context.Context, creds Credentials, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPatch, "/api/users/me", creds, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges a username-or-email plus password for a session.
func (c *Client) Login(ctx context.Context, emailOrUsername, password string) (*Session, error) {
	body := map[string]string{
		"emailOrUsername": emailOrUsername,
		"password":        password,
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", Credentials{}, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Register creates an account and returns the fresh session.
func (c *Client) Register(ctx context.Context, username, email, password, role string) (*Session, error) {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"role":     role,
	}
	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", Credentials{}, body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateReview submits a review for a movie. The service enforces the
// reviewer role and the 1-5 rating range; we validate the range up front to
// save a round trip.
func (c *Client) CreateReview(ctx context.Context, creds Credentials, movieID string, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	body := map[string]any{
		"movieId": movieID,
		"rating":  rating,
		"comment": comment,
	}
	var review Review
	if err := c.do(ctx, http.MethodPost, "/api/reviews", creds, body, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes one of the caller's own reviews.
func (c *Client) DeleteReview(ctx context.Context, creds Credentials, reviewID string) error {
	return c.do(ctx, http.MethodDelete, "/api/reviews/"+url.PathEscape(reviewID), creds, nil, nil)
}

// CreatePost submits a post for a movie.
func (c *Client) CreatePost(ctx context.Context, creds Credentials, movieID, text string) (*Post, error) {
	body := map[string]string{
		"movieId": movieID,
		"content": text,
	}
	var post Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", creds, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// SetBookmark adds or removes a bookmark for the given catalog ref.
func (c *Client) SetBookmark(ctx context.Context, creds Credentials, movieID string, bookmarked bool) error {
	endpoint := "/api/users/bookmark/remove"
	if bookmarked {
		endpoint = "/api/users/bookmark/add"
	}
	body := map[string]string{"imdbID": movieID}
	return c.do(ctx, http.MethodPost, endpoint, creds, body, nil)
}

// SetFollow follows or unfollows the given user.
func (c *Client) SetFollow(ctx context.Context, creds Credentials, userID string, follow bool) error {
	endpoint := "/api/users/unfollow/"
	if follow {
		endpoint = "/api/users/follow/"
	}
	return c.do(ctx, http.MethodPost, endpoint+url.PathEscape(userID), creds, nil, nil)
}

func (c *Client) get(ctx context.Context, path string, creds Credentials, out any) error {
	return c.do(ctx, http.MethodGet, path, creds, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, creds Credentials, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !creds.Anonymous() {
		req.Header.Set("Authorization", "Bearer "+creds.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("content service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}

func bound[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
