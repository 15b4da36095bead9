// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case. Generic codes mirror HTTP status semantics;
// domain codes describe failures status alone cannot convey. Clients are
// expected to branch on these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "unknown_kind",
//	  "message": "unknown source kind: \"sports\""
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeUnknownKind    = "unknown_kind"
	ErrCodeNoKeywords     = "no_keywords"
	ErrCodeFetchFailed    = "fetch_failed"
	ErrCodeUpstreamQuota  = "upstream_rate_limited"
	ErrCodeCacheFailed    = "cache_failed"
	ErrCodeListFailed     = "list_failed"
	ErrCodeUnavailable    = "storage_unavailable"
	ErrCodeInvalidPayload = "invalid_payload"
)
