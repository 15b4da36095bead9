package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/tbourn/go-news-aggregator/internal/cache"
	"github.com/tbourn/go-news-aggregator/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

// ----- Fakes -----

type fakeFetcher struct {
	mu sync.Mutex

	everything    []domain.Article
	everythingErr error
	headlines     []domain.Article
	headlinesErr  error

	calls []string
	gotKW [][]string
}

func (f *fakeFetcher) Everything(_ context.Context, kw []string) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, domain.KindEverything)
	f.gotKW = append(f.gotKW, kw)
	return f.everything, f.everythingErr
}

func (f *fakeFetcher) TopHeadlines(_ context.Context, kw []string) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, domain.KindHeadlines)
	f.gotKW = append(f.gotKW, kw)
	return f.headlines, f.headlinesErr
}

type failingCache struct {
	getErr error
	setErr error
	sets   int
}

func (c *failingCache) Get(context.Context, string, []string) ([]domain.Article, bool, error) {
	return nil, false, c.getErr
}

func (c *failingCache) Set(context.Context, string, []string, []domain.Article) error {
	c.sets++
	return c.setErr
}

// ----- Helpers -----

func openStore(t *testing.T) *cache.Store {
	t.Helper()
	st, err := cache.Open(filepath.Join(t.TempDir(), "resources", "news_cache.sqlite"),
		cache.WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newService(c ArticleCache, f Fetcher) *ArticleService {
	s := NewArticleService(c, f)
	s.Log = zerolog.Nop()
	return s
}

func arts(urls ...string) []domain.Article {
	out := make([]domain.Article, len(urls))
	for i, u := range urls {
		out[i] = domain.Article{"title": "t-" + u, "url": u}
	}
	return out
}

// ----- Tests -----

func TestLookup_MissThenHit(t *testing.T) {
	st := openStore(t)
	f := &fakeFetcher{everything: arts("a", "b")}
	s := newService(st, f)
	ctx := context.Background()

	hits := testutil.ToFloat64(cacheLookups.WithLabelValues(domain.KindEverything, resultHit))
	misses := testutil.ToFloat64(cacheLookups.WithLabelValues(domain.KindEverything, resultMiss))

	first, err := s.Lookup(ctx, domain.KindEverything, []string{"Nvidia", "AI"}, 0)
	if err != nil {
		t.Fatalf("first Lookup: %v", err)
	}
	if first.FromCache || first.Keywords != "ai,nvidia" {
		t.Fatalf("first lookup = %+v", first)
	}
	if diff := cmp.Diff([]string{"ai", "nvidia"}, f.gotKW[0]); diff != "" {
		t.Fatalf("fetcher keywords (-want +got):\n%s", diff)
	}

	// same keyword set, different order and case
	second, err := s.Lookup(ctx, domain.KindEverything, []string{"ai, NVIDIA"}, 0)
	if err != nil {
		t.Fatalf("second Lookup: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second lookup should be served from cache")
	}
	if diff := cmp.Diff(first.Articles, second.Articles); diff != "" {
		t.Fatalf("cached articles mismatch (-want +got):\n%s", diff)
	}
	if len(f.calls) != 1 {
		t.Fatalf("fetcher called %d times, want 1", len(f.calls))
	}

	if got := testutil.ToFloat64(cacheLookups.WithLabelValues(domain.KindEverything, resultHit)) - hits; got != 1 {
		t.Errorf("hit counter delta = %v", got)
	}
	if got := testutil.ToFloat64(cacheLookups.WithLabelValues(domain.KindEverything, resultMiss)) - misses; got != 1 {
		t.Errorf("miss counter delta = %v", got)
	}
}

func TestLookup_TruncatesBeforeCaching(t *testing.T) {
	st := openStore(t)
	f := &fakeFetcher{everything: arts("1", "2", "3", "4", "5")}
	s := newService(st, f)
	s.Limit = 3
	ctx := context.Background()

	got, err := s.Lookup(ctx, domain.KindEverything, []string{"x"}, 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got.Articles) != 3 {
		t.Fatalf("default limit not applied: %d", len(got.Articles))
	}
	cached, ok, err := st.Get(ctx, domain.KindEverything, []string{"x"})
	if err != nil || !ok || len(cached) != 3 {
		t.Fatalf("cached = %d ok=%v err=%v", len(cached), ok, err)
	}

	// explicit limit wins over the default
	got, err = s.Lookup(ctx, domain.KindEverything, []string{"y"}, 2)
	if err != nil || len(got.Articles) != 2 {
		t.Fatalf("explicit limit: %d, %v", len(got.Articles), err)
	}
}

func TestLookup_AllMergesAndDedupes(t *testing.T) {
	st := openStore(t)
	f := &fakeFetcher{
		everything: append(arts("a", "b"), domain.Article{"title": "no link"}),
		headlines:  append(arts("b", "c"), domain.Article{"title": "no link either"}),
	}
	s := newService(st, f)

	got, err := s.Lookup(context.Background(), domain.KindAll, []string{"ai"}, 100)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	var urls []string
	for _, a := range got.Articles {
		urls = append(urls, a.URL())
	}
	want := []string{"a", "b", "", "c", ""}
	if diff := cmp.Diff(want, urls); diff != "" {
		t.Fatalf("merged urls (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{domain.KindEverything, domain.KindHeadlines}, f.calls); diff != "" {
		t.Fatalf("calls (-want +got):\n%s", diff)
	}
}

func TestLookup_HeadlinesWithoutKeywords(t *testing.T) {
	st := openStore(t)
	f := &fakeFetcher{headlines: arts("h1")}
	s := newService(st, f)

	got, err := s.Lookup(context.Background(), domain.KindHeadlines, nil, 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Keywords != "" || len(got.Articles) != 1 {
		t.Fatalf("unexpected lookup: %+v", got)
	}
	if _, ok, _ := st.Get(context.Background(), domain.KindHeadlines, []string{" , "}); !ok {
		t.Fatalf("empty keyword bucket should be cached")
	}
}

func TestLookup_ValidationErrors(t *testing.T) {
	s := newService(&failingCache{}, &fakeFetcher{})
	ctx := context.Background()

	if _, err := s.Lookup(ctx, "sports", []string{"x"}, 0); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("want ErrUnknownKind, got %v", err)
	}
	for _, kind := range []string{domain.KindEverything, domain.KindAll} {
		if _, err := s.Lookup(ctx, kind, []string{"  ", ""}, 0); !errors.Is(err, ErrNoKeywords) {
			t.Fatalf("%s: want ErrNoKeywords, got %v", kind, err)
		}
	}
}

func TestLookup_FetchFailure(t *testing.T) {
	upstream := errors.New("upstream down")
	c := &failingCache{}
	s := newService(c, &fakeFetcher{everythingErr: upstream})

	_, err := s.Lookup(context.Background(), domain.KindEverything, []string{"x"}, 0)
	if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, upstream) {
		t.Fatalf("want ErrFetchFailed wrapping cause, got %v", err)
	}
	if c.sets != 0 {
		t.Fatalf("nothing should be cached on fetch failure")
	}

	s = newService(c, &fakeFetcher{everything: arts("a"), headlinesErr: upstream})
	if _, err := s.Lookup(context.Background(), domain.KindAll, []string{"x"}, 0); !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("all: want ErrFetchFailed, got %v", err)
	}
}

func TestLookup_CacheFailuresAreNotFatal(t *testing.T) {
	c := &failingCache{
		getErr: cache.ErrStorageConnection,
		setErr: cache.ErrStorageWrite,
	}
	s := newService(c, &fakeFetcher{everything: arts("a")})

	got, err := s.Lookup(context.Background(), domain.KindEverything, []string{"x"}, 0)
	if err != nil {
		t.Fatalf("Lookup should succeed despite cache failures: %v", err)
	}
	if got.FromCache || len(got.Articles) != 1 {
		t.Fatalf("unexpected lookup: %+v", got)
	}
	if !errors.Is(got.CacheError, cache.ErrStorageWrite) {
		t.Fatalf("CacheError = %v", got.CacheError)
	}
	if c.sets != 1 {
		t.Fatalf("Set calls = %d", c.sets)
	}
}

func TestMergeByURL(t *testing.T) {
	if got := mergeByURL(); len(got) != 0 || got == nil {
		t.Fatalf("empty merge = %#v", got)
	}
	got := mergeByURL(arts("a", "a"), nil, arts("b", "a"))
	if len(got) != 2 || got[0].URL() != "a" || got[1].URL() != "b" {
		t.Fatalf("merge = %+v", got)
	}
}
