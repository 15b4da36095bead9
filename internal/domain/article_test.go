package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableName(t *testing.T) {
	if (CacheEntry{}).TableName() != "articles_cache" {
		t.Fatalf("CacheEntry.TableName() = %q; want %q", (CacheEntry{}).TableName(), "articles_cache")
	}
}

func TestArticleAccessors(t *testing.T) {
	a := Article{"title": "Chips", "url": "https://example.com/a", "views": 3.0}
	if a.Field("title") != "Chips" {
		t.Fatalf("Field(title) = %q", a.Field("title"))
	}
	if a.Field("views") != "" || a.Field("missing") != "" {
		t.Fatalf("non-string and missing fields must be empty")
	}
	if a.URL() != "https://example.com/a" {
		t.Fatalf("URL() = %q", a.URL())
	}
	if (Article(nil)).URL() != "" {
		t.Fatalf("nil article URL must be empty")
	}
}

func TestMigration_CompositePrimaryKey(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&CacheEntry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if !db.Migrator().HasTable(&CacheEntry{}) {
		t.Fatalf("expected articles_cache table")
	}

	now := time.Now().UTC()
	first := &CacheEntry{SourceKind: KindEverything, NormalizedKeywords: "nvidia", Payload: "[]", UpdatedAt: now}
	if err := db.Create(first).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Same composite key must be rejected by the primary key.
	dup := &CacheEntry{SourceKind: KindEverything, NormalizedKeywords: "nvidia", Payload: "[{}]", UpdatedAt: now}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected primary key violation for duplicate (kind, keywords)")
	}

	// Different kind, same keywords is a distinct row.
	other := &CacheEntry{SourceKind: KindHeadlines, NormalizedKeywords: "nvidia", Payload: "[]", UpdatedAt: now}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("insert other kind: %v", err)
	}

	var cnt int64
	if err := db.Model(&CacheEntry{}).Count(&cnt).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected 2 rows, got %d", cnt)
	}
}
