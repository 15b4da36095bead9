package newsapi

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingAPIKey is returned before any request when Config.APIKey is empty.
var ErrMissingAPIKey = errors.New("newsapi: api key is not set")

// APIError is a non-success answer from the news API.
type APIError struct {
	StatusCode int    // HTTP status
	Code       string // API error code, e.g. "apiKeyInvalid", "rateLimited"
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("newsapi: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("newsapi: %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports whether the API refused the call for quota reasons.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rateLimited"
}
