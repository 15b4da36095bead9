// Package newsapi is a thin client for the newsapi.org v2 REST API.
//
// The client only passes parameters through; it does not page, sort, or
// filter results itself. Configuration (API key, language, …) is supplied
// explicitly through Config and never read from the environment here.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/keywords"
)

// DefaultBaseURL is the public newsapi.org endpoint.
const DefaultBaseURL = "https://newsapi.org"

const (
	everythingPath   = "/v2/everything"
	topHeadlinesPath = "/v2/top-headlines"

	// maxErrorBody caps how much of a failed response is kept for errors.
	maxErrorBody = 4 << 10
)

// Config holds the request parameters shared by every call.
type Config struct {
	APIKey   string
	BaseURL  string   // defaults to DefaultBaseURL
	Language string   // e.g. "en"
	SortBy   string   // relevancy | popularity | publishedAt (everything only)
	Page     int      // 1-based; values < 1 mean 1
	PageSize int      // 0 leaves the server default
	Country  string   // top-headlines only; ignored when Sources is set
	Sources  []string // top-headlines only
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (timeouts, transport, tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit throttles outbound requests to rps with the given burst.
// rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client talks to the news API. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New returns a Client for cfg.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Page < 1 {
		cfg.Page = 1
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 20 * time.Second},
		log:  log.With().Str("component", "newsapi").Logger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// response is the envelope shared by both endpoints.
type response struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []domain.Article `json:"articles"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
}

// Everything searches all indexed articles for keywords.
func (c *Client) Everything(ctx context.Context, kw []string) ([]domain.Article, error) {
	q := url.Values{}
	q.Set("q", keywords.Query(kw...))
	if c.cfg.Language != "" {
		q.Set("language", c.cfg.Language)
	}
	if c.cfg.SortBy != "" {
		q.Set("sortBy", c.cfg.SortBy)
	}
	c.setPaging(q)

	c.log.Info().
		Str("q", q.Get("q")).
		Str("sort_by", c.cfg.SortBy).
		Msg("sourcing everything")
	return c.get(ctx, everythingPath, q)
}

// TopHeadlines returns breaking headlines, optionally narrowed by keywords.
// Sources takes precedence over Country because the API rejects both.
func (c *Client) TopHeadlines(ctx context.Context, kw []string) ([]domain.Article, error) {
	q := url.Values{}
	if s := keywords.Query(kw...); s != "" {
		q.Set("q", s)
	}
	if c.cfg.Language != "" {
		q.Set("language", c.cfg.Language)
	}
	if len(c.cfg.Sources) > 0 {
		q.Set("sources", strings.Join(c.cfg.Sources, ","))
	} else if c.cfg.Country != "" {
		q.Set("country", c.cfg.Country)
	}
	c.setPaging(q)

	c.log.Info().
		Str("country", q.Get("country")).
		Str("sources", q.Get("sources")).
		Msg("sourcing headlines")
	return c.get(ctx, topHeadlinesPath, q)
}

func (c *Client) setPaging(q url.Values) {
	q.Set("page", strconv.Itoa(c.cfg.Page))
	if c.cfg.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(c.cfg.PageSize))
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]domain.Article, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi: building request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi: request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, decodeError(res)
	}

	// Article fields are opaque; UseNumber keeps numeric values exact.
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	var body response
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("newsapi: decoding response: %w", err)
	}
	if body.Status == "error" {
		return nil, &APIError{StatusCode: res.StatusCode, Code: body.Code, Message: body.Message}
	}
	body.Articles = dropNull(body.Articles)

	c.log.Debug().
		Str("path", path).
		Int("total_results", body.TotalResults).
		Int("returned", len(body.Articles)).
		Dur("latency", time.Since(start)).
		Msg("sourced articles")
	return body.Articles, nil
}

// dropNull removes null entries from an article list. It never returns nil.
func dropNull(arts []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(arts))
	for _, a := range arts {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

func decodeError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: res.StatusCode}
	var body response
	if json.Unmarshal(raw, &body) == nil && body.Status == "error" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
