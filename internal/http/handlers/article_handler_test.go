package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/tbourn/go-news-aggregator/internal/cache"
	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/newsapi"
	"github.com/tbourn/go-news-aggregator/internal/search"
	"github.com/tbourn/go-news-aggregator/internal/services"
)

// ---------- stubs ----------

type stubArticles struct {
	lookup func(ctx context.Context, kind string, kw []string, limit int) (*services.Lookup, error)

	gotKind  string
	gotKW    []string
	gotLimit int
}

func (s *stubArticles) Lookup(ctx context.Context, kind string, kw []string, limit int) (*services.Lookup, error) {
	s.gotKind, s.gotKW, s.gotLimit = kind, kw, limit
	if s.lookup != nil {
		return s.lookup(ctx, kind, kw, limit)
	}
	return &services.Lookup{Kind: kind, Articles: []domain.Article{}}, nil
}

type stubCache struct {
	listPage func(ctx context.Context, page, pageSize int) ([]domain.EntryInfo, int64, error)
	stats    func(ctx context.Context) (services.Stats, error)
	related  func(ctx context.Context, kw []string, k int) ([]search.Result, error)
	put      func(ctx context.Context, kind string, kw []string, a []domain.Article) error
	del      func(ctx context.Context, kind string, kw []string) error

	listCalls int
}

func (s *stubCache) ListPage(ctx context.Context, page, pageSize int) ([]domain.EntryInfo, int64, error) {
	s.listCalls++
	if s.listPage != nil {
		return s.listPage(ctx, page, pageSize)
	}
	return []domain.EntryInfo{}, 0, nil
}

func (s *stubCache) Stats(ctx context.Context) (services.Stats, error) {
	if s.stats != nil {
		return s.stats(ctx)
	}
	return services.Stats{}, nil
}

func (s *stubCache) Related(ctx context.Context, kw []string, k int) ([]search.Result, error) {
	if s.related != nil {
		return s.related(ctx, kw, k)
	}
	return []search.Result{}, nil
}

func (s *stubCache) Put(ctx context.Context, kind string, kw []string, a []domain.Article) error {
	if s.put != nil {
		return s.put(ctx, kind, kw, a)
	}
	return nil
}

func (s *stubCache) Delete(ctx context.Context, kind string, kw []string) error {
	if s.del != nil {
		return s.del(ctx, kind, kw)
	}
	return nil
}

// ---------- helpers ----------

func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/articles", h.GetArticles)
	r.GET("/cache", h.ListCache)
	r.GET("/cache/related", h.RelatedKeys)
	r.PUT("/cache/:kind", h.PutCacheEntry)
	r.DELETE("/cache/:kind", h.DeleteCacheEntry)
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body: %v (%s)", err, w.Body.String())
	}
	return e
}

// ---------- GET /articles ----------

func TestGetArticles_MissThenHitHeaders(t *testing.T) {
	arts := []domain.Article{{"title": "A", "url": "https://example.com/a"}}
	fromCache := false
	st := &stubArticles{lookup: func(_ context.Context, kind string, _ []string, _ int) (*services.Lookup, error) {
		return &services.Lookup{Kind: kind, Keywords: "ai,nvidia", Articles: arts, FromCache: fromCache}, nil
	}}
	r := newRouter(New(st, &stubCache{}))

	w := do(r, httptest.NewRequest(http.MethodGet, "/articles?q=Nvidia,AI&limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("X-Cache = %q", w.Header().Get("X-Cache"))
	}
	if st.gotKind != domain.KindEverything || st.gotLimit != 5 {
		t.Fatalf("defaults not applied: kind=%q limit=%d", st.gotKind, st.gotLimit)
	}
	if diff := cmp.Diff([]string{"Nvidia,AI"}, st.gotKW); diff != "" {
		t.Fatalf("keywords (-want +got):\n%s", diff)
	}

	var body ArticlesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	want := ArticlesResponse{Kind: "everything", Keywords: "ai,nvidia", Count: 1, Articles: arts}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("body (-want +got):\n%s", diff)
	}

	fromCache = true
	w = do(r, httptest.NewRequest(http.MethodGet, "/articles?kind=ALL&q=ai&q=nvidia", nil))
	if w.Code != http.StatusOK || w.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("hit: status=%d X-Cache=%q", w.Code, w.Header().Get("X-Cache"))
	}
	if st.gotKind != domain.KindAll || len(st.gotKW) != 2 {
		t.Fatalf("kind/keywords not forwarded: %q %v", st.gotKind, st.gotKW)
	}
}

func TestGetArticles_InvalidLimit(t *testing.T) {
	st := &stubArticles{}
	r := newRouter(New(st, &stubCache{}))
	for _, q := range []string{"limit=-1", "limit=101"} {
		w := do(r, httptest.NewRequest(http.MethodGet, "/articles?q=x&"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", q, w.Code)
		}
	}
	if st.gotKind != "" {
		t.Fatal("service should not be called for an invalid limit")
	}
}

func TestGetArticles_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown kind", fmt.Errorf("%w: %q", services.ErrUnknownKind, "x"), http.StatusBadRequest, ErrCodeUnknownKind},
		{"no keywords", services.ErrNoKeywords, http.StatusBadRequest, ErrCodeNoKeywords},
		{"upstream down", fmt.Errorf("%w: %w", services.ErrFetchFailed, errors.New("dial tcp")), http.StatusBadGateway, ErrCodeFetchFailed},
		{"upstream quota", fmt.Errorf("%w: %w", services.ErrFetchFailed, &newsapi.APIError{StatusCode: 429, Code: "rateLimited"}), http.StatusServiceUnavailable, ErrCodeUpstreamQuota},
		{"no api key", fmt.Errorf("%w: %w", services.ErrFetchFailed, newsapi.ErrMissingAPIKey), http.StatusServiceUnavailable, ErrCodeFetchFailed},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeFetchFailed},
		{"storage", cache.ErrStorageConnection, http.StatusServiceUnavailable, ErrCodeUnavailable},
		{"write", cache.ErrStorageWrite, http.StatusInternalServerError, ErrCodeCacheFailed},
		{"other", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &stubArticles{lookup: func(context.Context, string, []string, int) (*services.Lookup, error) {
				return nil, tt.err
			}}
			w := do(newRouter(New(st, &stubCache{})), httptest.NewRequest(http.MethodGet, "/articles?q=x", nil))
			if w.Code != tt.status {
				t.Fatalf("status=%d want %d", w.Code, tt.status)
			}
			if got := decodeError(t, w).Code; got != tt.code {
				t.Fatalf("code=%q want %q", got, tt.code)
			}
			if w.Header().Get("X-Cache") != "" {
				t.Fatal("X-Cache must not be set on errors")
			}
		})
	}
}

func TestGetArticles_CacheErrorStillServes(t *testing.T) {
	st := &stubArticles{lookup: func(_ context.Context, kind string, _ []string, _ int) (*services.Lookup, error) {
		return &services.Lookup{Kind: kind, Articles: []domain.Article{{"title": "t"}}, CacheError: cache.ErrStorageWrite}, nil
	}}
	w := do(newRouter(New(st, &stubCache{})), httptest.NewRequest(http.MethodGet, "/articles?kind=headlines", nil))
	if w.Code != http.StatusOK || w.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("status=%d X-Cache=%q", w.Code, w.Header().Get("X-Cache"))
	}
}

func TestGetArticles_Timeout(t *testing.T) {
	st := &stubArticles{lookup: func(ctx context.Context, _ string, _ []string, _ int) (*services.Lookup, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return nil, errors.New("not cancelled")
		}
	}}
	r := newRouter(New(st, &stubCache{}))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	w := do(r, httptest.NewRequest(http.MethodGet, "/articles?q=x", nil).WithContext(ctx))
	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status=%d", w.Code)
	}
}
