// Package utils provides small, generic helpers shared by the HTTP handlers
// and the CLI. They carry no domain logic.
package utils

import "strconv"

// AtoiDefault converts s with strconv.Atoi, returning def when s is empty or
// not an integer.
//
//	utils.AtoiDefault("42", 0) // 42
//	utils.AtoiDefault("", 10)  // 10
//	utils.AtoiDefault("x", 5)  // 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds n to [lo, hi].
func Clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Page describes one page of a listing.
type Page struct {
	Page       int   `json:"page" example:"1"`
	PageSize   int   `json:"page_size" example:"20"`
	Total      int64 `json:"total" example:"42"`
	TotalPages int   `json:"total_pages" example:"3"`
	HasNext    bool  `json:"has_next" example:"true"`
}

// NewPage computes page metadata. A non-positive size yields zero pages.
func NewPage(page, size int, total int64) Page {
	p := Page{Page: page, PageSize: size, Total: total}
	if size > 0 {
		p.TotalPages = int((total + int64(size) - 1) / int64(size))
	}
	p.HasNext = page < p.TotalPages
	return p
}
