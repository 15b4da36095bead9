// Package services – CacheService
//
// CacheService exposes maintenance operations over the article cache:
// paginated listing, aggregate stats for conditional responses, related-key
// suggestions, manual writes and removals. Nothing here expires entries on
// its own; Prune only runs when asked.
package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/keywords"
	"github.com/tbourn/go-news-aggregator/internal/repo"
	"github.com/tbourn/go-news-aggregator/internal/search"
)

// CacheWriter is the write side of the cache used for maintenance.
type CacheWriter interface {
	Set(ctx context.Context, kind string, kw []string, articles []domain.Article) error
	Delete(ctx context.Context, kind string, kw []string) (bool, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Stats summarizes the cache for ETag generation and listings.
type Stats struct {
	Entries     int64      `json:"entries" example:"12"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// CacheService provides cache inspection and maintenance.
type CacheService struct {
	// DB is the GORM handle used for read-only listings.
	DB *gorm.DB
	// Store performs writes so that normalization and logging stay in one place.
	Store CacheWriter

	// MaxPageSize caps page_size in ListPage.
	MaxPageSize int
}

// NewCacheService constructs a CacheService with default paging limits.
func NewCacheService(db *gorm.DB, store CacheWriter) *CacheService {
	return &CacheService{DB: db, Store: store, MaxPageSize: 100}
}

// ListPage returns a page of entry metadata, newest first, plus the total
// entry count. Invalid page/pageSize fall back to 1/20.
func (s *CacheService) ListPage(ctx context.Context, page, pageSize int) ([]domain.EntryInfo, int64, error) {
	ctx, span := otel.Tracer("services/CacheService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if s.MaxPageSize > 0 && pageSize > s.MaxPageSize {
		pageSize = s.MaxPageSize
	}

	total, err := repo.CountCacheEntries(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.EntryInfo{}, 0, nil
	}

	items, err := repo.ListCacheEntriesPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Keys returns entry metadata for every cached pair, optionally restricted to
// one kind.
func (s *CacheService) Keys(ctx context.Context, kind string) ([]domain.EntryInfo, error) {
	return repo.ListCacheKeys(ctx, s.DB, kind)
}

// Stats returns the entry count and the most recent write time.
func (s *CacheService) Stats(ctx context.Context) (Stats, error) {
	n, last, err := repo.CacheStats(ctx, s.DB)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Entries: n, LastUpdated: last}, nil
}

// Related ranks cached keyword keys by similarity to kw and returns the top k.
// The exact key, when cached, comes first with score 1.
func (s *CacheService) Related(ctx context.Context, kw []string, k int) ([]search.Result, error) {
	ctx, span := otel.Tracer("services/CacheService").Start(ctx, "Related",
		trace.WithAttributes(attribute.String("news.keywords", keywords.Normalize(kw...))),
	)
	defer span.End()

	if len(keywords.Split(kw...)) == 0 {
		return nil, ErrNoKeywords
	}
	infos, err := repo.ListCacheKeys(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(infos))
	for i, e := range infos {
		keys[i] = e.NormalizedKeywords
	}

	out := search.NewIndex(keys).TopK(keywords.Normalize(kw...), k)
	if out == nil {
		out = []search.Result{}
	}
	return out, nil
}

// Put stores articles under (kind, keywords), replacing any existing entry.
func (s *CacheService) Put(ctx context.Context, kind string, kw []string, articles []domain.Article) error {
	if err := validate(kind, keywords.Normalize(kw...)); err != nil {
		return err
	}
	return s.Store.Set(ctx, kind, kw, articles)
}

// Delete removes the entry for (kind, keywords) or returns ErrEntryNotFound.
func (s *CacheService) Delete(ctx context.Context, kind string, kw []string) error {
	removed, err := s.Store.Delete(ctx, kind, kw)
	if err != nil {
		return err
	}
	if !removed {
		return ErrEntryNotFound
	}
	return nil
}

// Prune removes entries older than olderThan and returns how many went away.
func (s *CacheService) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidDuration, olderThan)
	}
	return s.Store.Prune(ctx, olderThan)
}
