// Package search provides a small, deterministic, concurrency-safe in-memory
// index over cache keys. A cache key is a normalized keyword set such as
// "ai,nvidia"; the index answers "which cached keyword sets look like this
// one?" so callers can suggest related entries.
//
//   - No logging in the library (callers decide how/what to log)
//   - Functional options for stop-words, result floor and size caps
//   - Immutable after construction (safe for concurrent use)
//   - Deterministic scoring and ordering (stable order for ties)
//
// Scoring uses Jaccard similarity between the query keyword set Q and each
// key's keyword set K: score = |Q ∩ K| / |Q ∪ K|.
package search

import (
	"sort"

	"github.com/tbourn/go-news-aggregator/internal/keywords"
)

// Result is a related cache key with its similarity score.
type Result struct {
	Key   string  `json:"key" example:"ai,nvidia"`
	Score float64 `json:"score" example:"0.5"`
}

// Index is the minimal interface implemented by all key indices.
type Index interface {
	TopK(query string, k int) []Result
	Len() int
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	minScore  float64
	maxKeys   int
}

func defaultConfig() config {
	return config{}
}

// WithStopwords drops the given keywords from both keys and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range keywords.Split(words...) {
			m[w] = struct{}{}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMinScore discards results scoring below s. Values outside (0,1] are ignored.
func WithMinScore(s float64) Option {
	return func(c *config) {
		if s > 0 && s <= 1 {
			c.minScore = s
		}
	}
}

// WithMaxKeys caps how many keys are indexed.
func WithMaxKeys(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxKeys = n
		}
	}
}

// ----------------------------------------------------------------------------
// Implementation

type entry struct {
	key    string
	tokens map[string]struct{}
}

type index struct {
	cfg     config
	entries []entry
}

// NewIndex builds an Index over keys. Keys are re-normalized, so raw keyword
// strings are accepted too; duplicates and empty keys are skipped.
func NewIndex(keys []string, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	seen := make(map[string]struct{}, len(keys))
	entries := make([]entry, 0, len(keys))
	for _, raw := range keys {
		key := keywords.Normalize(raw)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		toks := tokenize(key, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, entry{key: key, tokens: toks})
		if cfg.maxKeys > 0 && len(entries) >= cfg.maxKeys {
			break
		}
	}
	return &index{cfg: cfg, entries: entries}
}

func (i *index) Len() int { return len(i.entries) }

// TopK returns up to k keys most similar to query, best first. The query is
// a comma-separated keyword list in any order or case. k <= 0 means 5.
func (i *index) TopK(query string, k int) []Result {
	if len(i.entries) == 0 {
		return nil
	}
	if k <= 0 {
		k = 5
	}
	q := tokenize(query, i.cfg.stopwords)
	if len(q) == 0 {
		return nil
	}

	buf := make([]Result, 0, min(k*4, len(i.entries)))
	for _, e := range i.entries {
		over := overlap(q, e.tokens)
		if over == 0 {
			continue
		}
		score := float64(over) / float64(len(q)+len(e.tokens)-over)
		if score < i.cfg.minScore {
			continue
		}
		buf = append(buf, Result{Key: e.key, Score: score})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].Score != buf[b].Score {
			return buf[a].Score > buf[b].Score
		}
		if len(buf[a].Key) != len(buf[b].Key) {
			return len(buf[a].Key) < len(buf[b].Key)
		}
		return buf[a].Key < buf[b].Key
	})

	if k > len(buf) {
		k = len(buf)
	}
	return buf[:k]
}

// ----------------------------------------------------------------------------
// Helpers

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := keywords.Split(s)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
