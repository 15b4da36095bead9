// Article HTTP handlers.
//
// This file exposes the cache-or-fetch lookup:
//   - GET /articles?kind=everything&q=nvidia,ai&limit=10
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results and errors into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-aggregator/internal/cache"
	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/http/middleware"
	"github.com/tbourn/go-news-aggregator/internal/newsapi"
	"github.com/tbourn/go-news-aggregator/internal/search"
	"github.com/tbourn/go-news-aggregator/internal/services"
	"github.com/tbourn/go-news-aggregator/internal/utils"
)

//
// Service contracts (context-aware)
//

// ArticleService looks up articles through the cache.
type ArticleService interface {
	Lookup(ctx context.Context, kind string, kw []string, limit int) (*services.Lookup, error)
}

// CacheService inspects and maintains the article cache.
type CacheService interface {
	ListPage(ctx context.Context, page, pageSize int) ([]domain.EntryInfo, int64, error)
	Stats(ctx context.Context) (services.Stats, error)
	Related(ctx context.Context, kw []string, k int) ([]search.Result, error)
	Put(ctx context.Context, kind string, kw []string, articles []domain.Article) error
	Delete(ctx context.Context, kind string, kw []string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints.
type Handlers struct {
	articles ArticleService
	cache    CacheService
}

// New constructs a Handlers instance bound to the given services.
func New(articles ArticleService, cache CacheService) *Handlers {
	return &Handlers{articles: articles, cache: cache}
}

const maxLimit = 100

//
// DTOs
//

// ArticlesResponse is the body of GET /articles.
type ArticlesResponse struct {
	Kind      string           `json:"kind" example:"everything"`
	Keywords  string           `json:"keywords" example:"ai,nvidia"`
	FromCache bool             `json:"from_cache" example:"false"`
	Count     int              `json:"count" example:"10"`
	Articles  []domain.Article `json:"articles" swaggertype:"array,object"`
}

//
// Helpers
//

// queryKeywords collects the q parameter, which may be repeated and/or
// comma-separated.
func queryKeywords(c *gin.Context) []string {
	return c.QueryArray("q")
}

// writeServiceError maps service and storage errors to HTTP responses.
func writeServiceError(c *gin.Context, err error) {
	var apiErr *newsapi.APIError
	switch {
	case errors.Is(err, services.ErrUnknownKind):
		fail(c, http.StatusBadRequest, ErrCodeUnknownKind, err.Error())
	case errors.Is(err, services.ErrNoKeywords):
		fail(c, http.StatusBadRequest, ErrCodeNoKeywords, err.Error())
	case errors.Is(err, services.ErrInvalidDuration):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrEntryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.As(err, &apiErr) && apiErr.RateLimited():
		c.Header("Retry-After", "60")
		fail(c, http.StatusServiceUnavailable, ErrCodeUpstreamQuota, "news source quota exhausted")
	case errors.Is(err, newsapi.ErrMissingAPIKey):
		fail(c, http.StatusServiceUnavailable, ErrCodeFetchFailed, "news source is not configured")
	case errors.Is(err, services.ErrFetchFailed):
		fail(c, http.StatusBadGateway, ErrCodeFetchFailed, "news source unavailable")
	case errors.Is(err, cache.ErrStorageConnection):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "cache storage unavailable")
	case errors.Is(err, cache.ErrStorageWrite):
		fail(c, http.StatusInternalServerError, ErrCodeCacheFailed, "cache write failed")
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, ErrCodeFetchFailed, "timed out")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
	if c.Writer.Status() >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
}

//
// Handlers
//

// GetArticles godoc
// @ID          getArticles
// @Summary     Look up articles by keywords
// @Description Returns cached articles for (kind, keywords) or fetches them from the news source and caches them. Keywords are order- and case-insensitive.
// @Tags        Articles
// @Produce     json
//
// @Param       kind   query  string  false "Source kind"                          Enums(everything, headlines, all) default(everything)
// @Param       q      query  string  false "Comma-separated keywords (repeatable)" example(nvidia,ai)
// @Param       limit  query  int     false "Max articles kept on fetch"            minimum(1) maximum(100)
//
// @Success     200  {object} handlers.ArticlesResponse
// @Header      200  {string} X-Cache "HIT or MISS"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     502  {object} handlers.ErrorResponse "News source failed"
// @Failure     503  {object} handlers.ErrorResponse "News source quota exhausted"
// @Router      /articles [get]
func (h *Handlers) GetArticles(c *gin.Context) {
	kind := strings.ToLower(strings.TrimSpace(c.DefaultQuery("kind", domain.KindEverything)))

	limit := utils.AtoiDefault(c.Query("limit"), 0)
	if limit < 0 || limit > maxLimit {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "limit must be between 1 and 100")
		return
	}

	start := time.Now()
	res, err := h.articles.Lookup(c.Request.Context(), kind, queryKeywords(c), limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	hit := "MISS"
	if res.FromCache {
		hit = "HIT"
	}
	c.Header(middleware.CacheHeader, hit)
	if res.CacheError != nil {
		middleware.LoggerFrom(c).Warn().Err(res.CacheError).Msg("serving uncached articles")
	}
	middleware.LoggerFrom(c).Debug().
		Str("kind", res.Kind).
		Str("keywords", res.Keywords).
		Int("articles", len(res.Articles)).
		Dur("lookup", time.Since(start)).
		Msg("lookup done")

	ok(c, http.StatusOK, ArticlesResponse{
		Kind:      res.Kind,
		Keywords:  res.Keywords,
		FromCache: res.FromCache,
		Count:     len(res.Articles),
		Articles:  res.Articles,
	})
}
