package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-news-aggregator/internal/domain"
)

func TestCacheStats_EmptyAndPopulated(t *testing.T) {
	db := newCacheDB(t, true)
	ctx := context.Background()

	n, maxAt, err := CacheStats(ctx, db)
	if err != nil || n != 0 || maxAt != nil {
		t.Fatalf("empty stats: n=%d max=%v err=%v", n, maxAt, err)
	}

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, kw := range []string{"a", "b", "c"} {
		e := &domain.CacheEntry{SourceKind: "everything", NormalizedKeywords: kw, Payload: "[]", UpdatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := UpsertCacheEntry(ctx, db, e); err != nil {
			t.Fatalf("seed %s: %v", kw, err)
		}
	}

	n, maxAt, err = CacheStats(ctx, db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d; want 3", n)
	}
	if maxAt == nil || !maxAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("max updated_at = %v", maxAt)
	}
}

func TestCacheStats_ErrorWithoutTable(t *testing.T) {
	db := newCacheDB(t, false)
	if _, _, err := CacheStats(context.Background(), db); err == nil {
		t.Fatalf("expected error without table")
	}
}
