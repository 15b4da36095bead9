// Package cache implements the persistent article cache that sits in front of
// the news API.
//
// Entries are keyed by (source kind, normalized keyword set) and hold the
// JSON-serialized list of articles returned by the last fetch for that pair.
// Keywords are normalized with package keywords, so the cache is order- and
// case-insensitive by construction.
//
// Policy:
//   - Reads degrade to a miss on a corrupt payload; only a storage connection
//     failure is returned to the caller.
//   - Writes are loud: any storage failure is logged and returned wrapped in
//     ErrStorageWrite.
//   - There is no expiry. Entries live until they are overwritten or removed
//     by an explicit maintenance call (Delete, Prune).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-news-aggregator/internal/domain"
	"github.com/tbourn/go-news-aggregator/internal/keywords"
	"github.com/tbourn/go-news-aggregator/internal/repo"
)

var (
	// ErrStorageConnection is returned when the cache file cannot be opened,
	// created, or a connection cannot be acquired from it.
	ErrStorageConnection = errors.New("cache: storage connection failed")

	// ErrStorageWrite is returned when the storage layer rejects a write.
	ErrStorageWrite = errors.New("cache: storage write failed")

	// errMalformedPayload marks a stored payload that is neither a list of
	// article objects nor an object with an "articles" list. Get recovers
	// from it by reporting a miss.
	errMalformedPayload = errors.New("cache: malformed payload")
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recovered read errors and failed writes.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is the article cache. It is safe for concurrent use; every call
// acquires its own connection from the pool and releases it before returning.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

// Open opens (creating when absent) the cache database at path and makes
// sure the schema exists. Any failure is reported as ErrStorageConnection.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %w", ErrStorageConnection, dir, err)
		}
	}
	db, err := repo.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrStorageConnection, path, err)
	}
	s := New(db, opts...)
	if err := repo.AutoMigrate(db); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%w: migrating schema: %w", ErrStorageConnection, err)
	}
	return s, nil
}

// New wraps an already opened database. The schema must exist (see
// repo.AutoMigrate).
func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:  db,
		log: log.With().Str("component", "cache").Logger(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// DB exposes the underlying handle for maintenance queries.
func (s *Store) DB() *gorm.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Get returns the articles cached under (kind, keywords). The boolean is
// false on a miss, which includes an unreadable payload. The error is
// non-nil only when no storage connection could be used.
func (s *Store) Get(ctx context.Context, kind string, kw []string) ([]domain.Article, bool, error) {
	key := keywords.Normalize(kw...)

	var entry *domain.CacheEntry
	err := s.withConn(ctx, func(conn *gorm.DB) error {
		e, err := repo.GetCacheEntry(ctx, conn, kind, key)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("%w: %w", ErrStorageConnection, err)
	}

	articles, err := decodePayload(entry.Payload)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("kind", kind).
			Str("keywords", key).
			Msg("unreadable cache payload, treating as miss")
		return nil, false, nil
	}
	return articles, true, nil
}

// Set stores articles under (kind, keywords), replacing any previous entry
// for the pair and refreshing its timestamp. A nil element is rejected with
// ErrStorageWrite.
func (s *Store) Set(ctx context.Context, kind string, kw []string, articles []domain.Article) error {
	key := keywords.Normalize(kw...)

	if articles == nil {
		articles = []domain.Article{}
	}
	// A null element would make the stored entry unreadable on every Get.
	for i, a := range articles {
		if a == nil {
			return s.writeFailed(kind, key, fmt.Errorf("%w: article %d is null", ErrStorageWrite, i))
		}
	}
	payload, err := json.Marshal(articles)
	if err != nil {
		return s.writeFailed(kind, key, fmt.Errorf("%w: encoding articles: %w", ErrStorageWrite, err))
	}

	entry := &domain.CacheEntry{
		SourceKind:         kind,
		NormalizedKeywords: key,
		Payload:            string(payload),
		UpdatedAt:          s.now(),
	}
	err = s.withConn(ctx, func(conn *gorm.DB) error {
		if err := repo.UpsertCacheEntry(ctx, conn, entry); err != nil {
			return fmt.Errorf("%w: %w", ErrStorageWrite, err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrStorageWrite) {
			err = fmt.Errorf("%w: %w", ErrStorageConnection, err)
		}
		return s.writeFailed(kind, key, err)
	}
	return nil
}

// Delete removes the entry for (kind, keywords). It reports whether a row
// was removed.
func (s *Store) Delete(ctx context.Context, kind string, kw []string) (bool, error) {
	key := keywords.Normalize(kw...)
	err := s.withConn(ctx, func(conn *gorm.DB) error {
		return repo.DeleteCacheEntry(ctx, conn, kind, key)
	})
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	case err != nil:
		return false, s.writeFailed(kind, key, fmt.Errorf("%w: %w", ErrStorageWrite, err))
	}
	return true, nil
}

// Prune removes entries last written more than olderThan ago and returns how
// many were removed. It only runs when asked; the cache never expires
// entries on its own.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	var n int64
	err := s.withConn(ctx, func(conn *gorm.DB) error {
		var err error
		n, err = repo.PruneCacheEntries(ctx, conn, s.now().Add(-olderThan))
		return err
	})
	if err != nil {
		return 0, s.writeFailed("", "", fmt.Errorf("%w: %w", ErrStorageWrite, err))
	}
	return n, nil
}

// withConn runs fn on a dedicated connection that is released on every exit
// path, including panics inside fn.
func (s *Store) withConn(ctx context.Context, fn func(conn *gorm.DB) error) error {
	return s.db.WithContext(ctx).Connection(fn)
}

func (s *Store) writeFailed(kind, key string, err error) error {
	s.log.Error().
		Err(err).
		Str("kind", kind).
		Str("keywords", key).
		Msg("cache write failed")
	return err
}
