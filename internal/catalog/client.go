// Package catalog talks to an OMDb-compatible external movie catalog. Lookups
// are by exact identifier; there is no fuzzy matching and no retrying. The
// service marks missing posters with the literal sentinel "N/A", which this
// package normalizes to an empty string so callers never render it.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	posterSentinel = "N/A"

	defaultTimeout = 10 * time.Second

	// The public catalog tier throttles aggressively; keep a modest default
	// request rate so a large fan-out does not trip it.
	defaultRequestsPerSecond = 10
	defaultBurst             = 5
)

// ErrNotFound is returned when the catalog answers with a negative response
// for an identifier or search term.
var ErrNotFound = errors.New("catalog: not found")

// Movie is the resolved catalog record for one identifier. Poster is empty
// when the catalog has no usable image.
type Movie struct {
	ID     string
	Title  string
	Year   string
	Plot   string
	Genre  string
	Poster string
}

// HTTPClient is the subset of *http.Client used here, injectable for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps outgoing lookups at n requests per second with the given
// burst. n <= 0 disables the limiter.
func WithRateLimit(n float64, burst int) ClientOption {
	return func(c *Client) {
		if n <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(n), burst)
	}
}

// Client is a read-only catalog client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
	limiter    *rate.Limiter
}

// NewClient creates a catalog client for the given base URL and API key.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lookupResponse is the catalog wire format for single-entity lookups.
// Response is the string "True" or "False".
type lookupResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Plot     string `json:"Plot"`
	Genre    string `json:"Genre"`
	Poster   string `json:"Poster"`
	ImdbID   string `json:"imdbID"`
}

type searchResponse struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Search   []struct {
		ImdbID string `json:"imdbID"`
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		Poster string `json:"Poster"`
	} `json:"Search"`
}

// Lookup resolves one identifier to its catalog record. A negative catalog
// response yields ErrNotFound; transport and decode failures are returned
// as-is. Callers that must not fail wrap this in a resolver that converts
// errors to placeholders.
func (c *Client) Lookup(ctx context.Context, id string) (*Movie, error) {
	if id == "" {
		return nil, fmt.Errorf("catalog: empty identifier")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var payload lookupResponse
	if err := c.get(ctx, url.Values{"i": {id}}, &payload); err != nil {
		return nil, err
	}
	if payload.Response != "True" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return &Movie{
		ID:     id,
		Title:  payload.Title,
		Year:   payload.Year,
		Plot:   payload.Plot,
		Genre:  payload.Genre,
		Poster: normalizePoster(payload.Poster),
	}, nil
}

// Search queries the catalog by title and returns matches in catalog order.
// A negative response (no matches) yields ErrNotFound.
func (c *Client) Search(ctx context.Context, term string) ([]Movie, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("catalog: empty search term")
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var payload searchResponse
	if err := c.get(ctx, url.Values{"s": {term}}, &payload); err != nil {
		return nil, err
	}
	if payload.Response != "True" {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, term)
	}

	movies := make([]Movie, 0, len(payload.Search))
	for _, m := range payload.Search {
		movies = append(movies, Movie{
			ID:     m.ImdbID,
			Title:  m.Title,
			Year:   m.Year,
			Poster: normalizePoster(m.Poster),
		})
	}
	return movies, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) get(ctx context.Context, query url.Values, out any) error {
	query.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog HTTP error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding catalog response: %w", err)
	}
	return nil
}

// normalizePoster converts the catalog's "no image" sentinel to an empty
// string so it is never used as an image source.
func normalizePoster(poster string) string {
	if poster == posterSentinel {
		return ""
	}
	return poster
}
