// Cache HTTP handlers.
//
// This file exposes cache inspection and maintenance:
//   - GET    /cache               (list entry metadata, paginated, ETag support)
//   - GET    /cache/related       (cached keyword sets similar to q)
//   - PUT    /cache/{kind}?q=…    (seed or overwrite one entry)
//   - DELETE /cache/{kind}?q=…    (remove one entry)
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/keywords"
	"github.com/tbourn/go-news-aggregator/internal/search"
	"github.com/tbourn/go-news-aggregator/internal/utils"
)

//
// DTOs
//

// ListCacheResponse wraps a page of cache entries and pagination information.
type ListCacheResponse struct {
	Entries    []domain.EntryInfo `json:"entries"`
	Pagination utils.Page         `json:"pagination"`
}

// RelatedResponse lists cached keyword sets similar to the query.
type RelatedResponse struct {
	Query   string          `json:"query" example:"ai,nvidia"`
	Results []search.Result `json:"results"`
}

// PutEntryRequest is the JSON payload for seeding a cache entry.
type PutEntryRequest struct {
	Articles []domain.Article `json:"articles" swaggertype:"array,object"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

//
// Handlers
//

// ListCache godoc
// @ID          listCache
// @Summary     List cache entries (paginated)
// @Description Returns entry metadata, most recently written first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Cache
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"cache:3:1714564800\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListCacheResponse
// @Header      200  {string} ETag "Weak ETag for current cache state"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cache [get]
func (h *Handlers) ListCache(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if st, err := h.cache.Stats(ctx); err == nil {
		var ts int64
		if st.LastUpdated != nil {
			ts = st.LastUpdated.UnixNano()
		}
		etag := fmt.Sprintf(`W/"cache:%d:%d:%d:%d"`, st.Entries, ts, page, pageSize)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.cache.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "listing cache failed")
		_ = c.Error(err)
		return
	}

	ok(c, http.StatusOK, ListCacheResponse{
		Entries:    items,
		Pagination: utils.NewPage(page, pageSize, total),
	})
}

// RelatedKeys godoc
// @ID          relatedKeys
// @Summary     Find related cached keyword sets
// @Description Ranks cached keyword sets by Jaccard similarity to q.
// @Tags        Cache
// @Produce     json
//
// @Param       q  query  string  true   "Comma-separated keywords"  example(nvidia,ai)
// @Param       k  query  int     false  "Max results"               minimum(1) maximum(50) default(5)
//
// @Success     200  {object} handlers.RelatedResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cache/related [get]
func (h *Handlers) RelatedKeys(c *gin.Context) {
	kw := queryKeywords(c)
	k := utils.Clamp(utils.AtoiDefault(c.Query("k"), 5), 1, 50)

	results, err := h.cache.Related(c.Request.Context(), kw, k)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, RelatedResponse{Query: keywords.Normalize(kw...), Results: results})
}

// PutCacheEntry godoc
// @ID          putCacheEntry
// @Summary     Seed or overwrite a cache entry
// @Description Stores the given articles under (kind, q), replacing any existing entry.
// @Tags        Cache
// @Accept      json
// @Produce     json
//
// @Param       kind  path   string                    true  "Source kind"  Enums(everything, headlines, all)
// @Param       q     query  string                    false "Comma-separated keywords"  example(nvidia,ai)
// @Param       body  body   handlers.PutEntryRequest  true  "Articles to store"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Cache write failed"
// @Router      /cache/{kind} [put]
func (h *Handlers) PutCacheEntry(c *gin.Context) {
	var req PutEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidPayload, "invalid JSON body")
		return
	}
	if req.Articles == nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidPayload, "articles must be a list")
		return
	}
	for i, a := range req.Articles {
		if a == nil {
			fail(c, http.StatusBadRequest, ErrCodeInvalidPayload, fmt.Sprintf("articles[%d] must be an object", i))
			return
		}
	}

	kind := strings.ToLower(c.Param("kind"))
	if err := h.cache.Put(c.Request.Context(), kind, queryKeywords(c), req.Articles); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}

// DeleteCacheEntry godoc
// @ID          deleteCacheEntry
// @Summary     Remove a cache entry
// @Tags        Cache
// @Produce     json
//
// @Param       kind  path   string  true   "Source kind"
// @Param       q     query  string  false  "Comma-separated keywords"  example(nvidia,ai)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Entry not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /cache/{kind} [delete]
func (h *Handlers) DeleteCacheEntry(c *gin.Context) {
	kind := strings.ToLower(c.Param("kind"))
	if err := h.cache.Delete(c.Request.Context(), kind, queryKeywords(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}
