// Package repo implements the data persistence layer for the article cache,
// backed by GORM. This file provides repository functions for CacheEntry.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run on the pool, inside a transaction, or on a connection-scoped handle.
// They follow the "thin repository" approach: no decoding of payloads and no
// key normalization, only persistence and query composition.
//
// Error semantics:
//   - When an entry is not found, functions return ErrNotFound.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-news-aggregator/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// entryInfoColumns selects the metadata view of a cache row.
const entryInfoColumns = "source_kind, normalized_keywords, length(payload) AS payload_bytes, updated_at"

// GetCacheEntry fetches the entry stored under (kind, key), or ErrNotFound.
func GetCacheEntry(ctx context.Context, db *gorm.DB, kind, key string) (*domain.CacheEntry, error) {
	var e domain.CacheEntry
	err := db.WithContext(ctx).
		Where("source_kind = ? AND normalized_keywords = ?", kind, key).
		Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertCacheEntry inserts e or, when (source_kind, normalized_keywords)
// already exists, overwrites payload and updated_at. It is a single
// INSERT … ON CONFLICT statement, so concurrent writers to the same key
// never observe a partial row.
func UpsertCacheEntry(ctx context.Context, db *gorm.DB, e *domain.CacheEntry) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "source_kind"},
				{Name: "normalized_keywords"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(e).Error
}

// DeleteCacheEntry removes the entry stored under (kind, key). It returns
// ErrNotFound when no row matched.
func DeleteCacheEntry(ctx context.Context, db *gorm.DB, kind, key string) error {
	res := db.WithContext(ctx).
		Where("source_kind = ? AND normalized_keywords = ?", kind, key).
		Delete(&domain.CacheEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneCacheEntries deletes every entry last written before cutoff and
// returns the number of rows removed.
func PruneCacheEntries(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("updated_at < ?", cutoff.UTC()).
		Delete(&domain.CacheEntry{})
	return res.RowsAffected, res.Error
}

// CountCacheEntries returns the total number of cached entries.
func CountCacheEntries(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.CacheEntry{}).Count(&total).Error
	return total, err
}

// ListCacheEntriesPage returns a page of entry metadata ordered by most
// recently written first. The caller computes offset and limit.
func ListCacheEntriesPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.EntryInfo, error) {
	out := []domain.EntryInfo{}
	err := db.WithContext(ctx).
		Model(&domain.CacheEntry{}).
		Select(entryInfoColumns).
		Order("updated_at desc, source_kind, normalized_keywords").
		Offset(offset).
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// ListCacheKeys returns metadata for every entry, optionally restricted to
// one source kind (empty kind means all kinds).
func ListCacheKeys(ctx context.Context, db *gorm.DB, kind string) ([]domain.EntryInfo, error) {
	q := db.WithContext(ctx).Model(&domain.CacheEntry{}).Select(entryInfoColumns)
	if kind != "" {
		q = q.Where("source_kind = ?", kind)
	}
	out := []domain.EntryInfo{}
	err := q.Order("source_kind, normalized_keywords").Scan(&out).Error
	return out, err
}
