package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound      = errors.New("riot api: not found")
	ErrRateLimited   = errors.New("riot api: rate limited")
	ErrMissingAPIKey = errors.New("riot api: api key not configured")
)

// Error is a non-200 answer from upstream.
type Error struct {
	StatusCode int
	RetryAfter string
	URL        string
}

func (e *Error) Error() string {
	return fmt.Sprintf("riot api error: %d", e.StatusCode)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}
