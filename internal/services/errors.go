// Package services defines the business logic for article lookups and cache
// maintenance. This file centralizes service-level error values so that they
// can be returned consistently by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrUnknownKind is returned when the requested source kind is not one of
	// everything, headlines or all.
	ErrUnknownKind = errors.New("unknown source kind")

	// ErrNoKeywords is returned when a kind that searches by keyword is
	// requested without any keyword.
	ErrNoKeywords = errors.New("at least one keyword is required")

	// ErrFetchFailed wraps a failure of the upstream news source.
	ErrFetchFailed = errors.New("fetching articles failed")

	// ErrEntryNotFound indicates that no cache entry exists for the given
	// (kind, keywords) pair.
	ErrEntryNotFound = errors.New("cache entry not found")

	// ErrInvalidDuration is returned when a prune age is not positive.
	ErrInvalidDuration = errors.New("duration must be positive")
)
