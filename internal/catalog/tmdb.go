package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour
const posterBaseURL = "https://image.tmdb.org/t/p/w342"

// TMDB searches TV series on The Movie Database.
type TMDB struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *memCache
}

// Option configures a TMDB client.
type Option func(*TMDB)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *TMDB) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithCacheTTL sets the in-process cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *TMDB) {
		c.cache = newMemCache(ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *TMDB) {
		c.httpClient = hc
	}
}

// WithRateLimit allows calls requests per period.
func WithRateLimit(calls int, period time.Duration) Option {
	return func(c *TMDB) {
		if calls <= 0 || period <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(period/time.Duration(calls)), calls)
	}
}

// NewTMDB creates a new TMDB client. The default limit is 40 requests per
// 10 seconds.
func NewTMDB(apiKey string, opts ...Option) *TMDB {
	c := &TMDB{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 40),
		cache:   newMemCache(defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tvSearchResponse struct {
	Page         int        `json:"page"`
	Results      []tvResult `json:"results"`
	TotalResults int        `json:"total_results"`
}

type tvResult struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	FirstAirDate string `json:"first_air_date"` // "2013-04-07"
	PosterPath   string `json:"poster_path"`
}

func (r tvResult) candidate() Candidate {
	c := Candidate{
		ID:            strconv.FormatInt(r.ID, 10),
		DisplayTitle:  r.Name,
		OriginalTitle: r.OriginalName,
	}
	if len(r.FirstAirDate) >= 4 {
		c.Year, _ = strconv.Atoi(r.FirstAirDate[:4])
	}
	if r.PosterPath != "" {
		c.PosterRef = posterBaseURL + r.PosterPath
	}
	return c
}

// SearchCandidates queries /3/search/tv.
func (c *TMDB) SearchCandidates(ctx context.Context, query, language string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	key := language + "\x00" + query
	if cands, ok := c.cache.get(key); ok {
		return cands, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	if language != "" {
		params.Set("language", language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/3/search/tv?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	var body tvSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	cands := make([]Candidate, 0, len(body.Results))
	for _, r := range body.Results {
		cands = append(cands, r.candidate())
	}
	c.cache.set(key, cands)
	return cands, nil
}
