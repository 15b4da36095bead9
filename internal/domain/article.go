// Package domain defines the persistence model for the article cache and the
// opaque article record shared by the news client, the cache store, and the
// HTTP layer.
package domain

import "time"

// Source kinds understood by the article service. The cache itself treats
// the kind as an opaque label and never validates it.
const (
	KindEverything = "everything"
	KindHeadlines  = "headlines"
	KindAll        = "all"
)

// Article is a single news article record. Fields (title, url, author, …)
// are whatever the upstream API returned; the cache does not interpret them.
type Article map[string]any

// Field returns the string value stored under key, or "" when the key is
// missing or not a string.
func (a Article) Field(key string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return ""
}

// URL returns the article link, used to deduplicate merged result sets.
func (a Article) URL() string { return a.Field("url") }

// CacheEntry is one persisted row of the article cache, identified by the
// composite primary key (source_kind, normalized_keywords).
//
// Fields:
//   - SourceKind: query mode that produced the entry ("everything", …).
//   - NormalizedKeywords: canonical keyword key (see package keywords).
//   - Payload: JSON array of article objects.
//   - UpdatedAt: time of the last insert or overwrite.
type CacheEntry struct {
	SourceKind         string    `json:"source_kind"         gorm:"column:source_kind;type:TEXT NOT NULL;primaryKey"`
	NormalizedKeywords string    `json:"normalized_keywords" gorm:"column:normalized_keywords;type:TEXT NOT NULL;primaryKey"`
	Payload            string    `json:"-"                   gorm:"column:payload;type:TEXT NOT NULL"`
	UpdatedAt          time.Time `json:"updated_at"          gorm:"column:updated_at;type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (CacheEntry) TableName() string { return "articles_cache" }

// EntryInfo is the metadata view of a CacheEntry used by listings. It never
// carries the payload itself.
type EntryInfo struct {
	SourceKind         string    `json:"source_kind"         example:"everything"`
	NormalizedKeywords string    `json:"normalized_keywords" example:"ai,nvidia"`
	PayloadBytes       int       `json:"payload_bytes"       example:"5120"`
	UpdatedAt          time.Time `json:"updated_at"`
}
