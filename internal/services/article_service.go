// Package services – ArticleService
//
// ArticleService is the cache-or-fetch path: it asks the article cache for a
// (kind, keywords) pair and, on a miss, calls the upstream news source, trims
// the result and writes it back. The cache is best effort. A failed read is
// treated as a miss and a failed write is logged while the fresh articles
// are still returned.
//
// Observability: Lookup is OpenTelemetry-instrumented and counted in
// newsagg_cache_lookups_total; upstream calls are timed in
// newsagg_fetch_duration_seconds.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/keywords"
)

// DefaultLimit caps how many fetched articles are kept when no limit is given.
const DefaultLimit = 10

// Fetcher is the upstream news source.
type Fetcher interface {
	Everything(ctx context.Context, kw []string) ([]domain.Article, error)
	TopHeadlines(ctx context.Context, kw []string) ([]domain.Article, error)
}

// ArticleCache is the read/write contract ArticleService needs from the cache.
type ArticleCache interface {
	Get(ctx context.Context, kind string, kw []string) ([]domain.Article, bool, error)
	Set(ctx context.Context, kind string, kw []string, articles []domain.Article) error
}

// Lookup is the outcome of ArticleService.Lookup.
type Lookup struct {
	Kind      string
	Keywords  string // normalized cache key
	Articles  []domain.Article
	FromCache bool
	// CacheError is set when the fresh articles could not be stored.
	CacheError error
}

// ArticleService coordinates the cache and the upstream news source.
type ArticleService struct {
	Cache   ArticleCache
	Fetcher Fetcher

	// Limit caps fetched articles when Lookup is called with limit <= 0.
	Limit int

	Log zerolog.Logger
}

// NewArticleService constructs an ArticleService with the default limit.
func NewArticleService(c ArticleCache, f Fetcher) *ArticleService {
	return &ArticleService{
		Cache:   c,
		Fetcher: f,
		Limit:   DefaultLimit,
		Log:     log.With().Str("component", "articles").Logger(),
	}
}

// Lookup returns articles for (kind, keywords), from the cache when possible.
// Fetched articles are truncated to limit (or s.Limit when limit <= 0) before
// they are cached.
func (s *ArticleService) Lookup(ctx context.Context, kind string, kw []string, limit int) (*Lookup, error) {
	key := keywords.Normalize(kw...)

	tr := otel.Tracer("services/ArticleService")
	ctx, span := tr.Start(ctx, "Lookup",
		trace.WithAttributes(
			attribute.String("news.kind", kind),
			attribute.String("news.keywords", key),
		),
	)
	defer span.End()

	if err := validate(kind, key); err != nil {
		return nil, err
	}

	cached, ok, err := s.Cache.Get(ctx, kind, kw)
	switch {
	case err != nil:
		// storage unavailable; fall through to a live fetch
		s.Log.Warn().Err(err).Str("kind", kind).Str("keywords", key).Msg("cache read failed")
		span.RecordError(err)
		cacheLookups.WithLabelValues(kind, resultError).Inc()
	case ok:
		cacheLookups.WithLabelValues(kind, resultHit).Inc()
		span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Int("articles", len(cached)))
		s.Log.Info().
			Int("articles", len(cached)).
			Str("kind", kind).
			Str("keywords", key).
			Msg("retrieved articles from cache")
		return &Lookup{Kind: kind, Keywords: key, Articles: cached, FromCache: true}, nil
	default:
		cacheLookups.WithLabelValues(kind, resultMiss).Inc()
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	fresh, err := s.fetch(ctx, kind, keywords.Split(kw...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	if limit <= 0 {
		limit = s.Limit
	}
	if limit > 0 && len(fresh) > limit {
		fresh = fresh[:limit]
	}
	span.SetAttributes(attribute.Int("articles", len(fresh)))

	out := &Lookup{Kind: kind, Keywords: key, Articles: fresh}
	if err := s.Cache.Set(ctx, kind, kw, fresh); err != nil {
		// the cache logs the failure itself; the caller still gets the articles
		span.RecordError(err)
		out.CacheError = err
	}
	return out, nil
}

func validate(kind, key string) error {
	switch kind {
	case domain.KindEverything, domain.KindAll:
		if key == "" {
			return ErrNoKeywords
		}
		return nil
	case domain.KindHeadlines:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func (s *ArticleService) fetch(ctx context.Context, kind string, kw []string) ([]domain.Article, error) {
	start := time.Now()
	defer func() {
		fetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	switch kind {
	case domain.KindEverything:
		return s.Fetcher.Everything(ctx, kw)
	case domain.KindHeadlines:
		return s.Fetcher.TopHeadlines(ctx, kw)
	default: // all
		everything, err := s.Fetcher.Everything(ctx, kw)
		if err != nil {
			return nil, err
		}
		headlines, err := s.Fetcher.TopHeadlines(ctx, kw)
		if err != nil {
			return nil, err
		}
		return mergeByURL(everything, headlines), nil
	}
}

// mergeByURL concatenates lists, dropping later articles whose url was already
// seen. Articles without a url are always kept.
func mergeByURL(lists ...[]domain.Article) []domain.Article {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	out := make([]domain.Article, 0, n)
	seen := make(map[string]struct{}, n)
	for _, l := range lists {
		for _, a := range l {
			if u := a.URL(); u != "" {
				if _, dup := seen[u]; dup {
					continue
				}
				seen[u] = struct{}{}
			}
			out = append(out, a)
		}
	}
	return out
}
