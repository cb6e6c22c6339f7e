package domain

import "errors"

var (
	// ErrInvalidProductURL is returned when no product identifier can be extracted from a URL
	ErrInvalidProductURL = errors.New("invalid product URL")

	// ErrLookupFailed is returned when the product lookup API answers with a non-success status
	ErrLookupFailed = errors.New("product lookup failed")

	// ErrLookupUnavailable is returned when the product lookup API cannot be reached
	ErrLookupUnavailable = errors.New("product lookup API unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSessionNotFound is returned when a session does not exist or has expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrComparisonNotReady is returned when a comparison is requested before both records are present
	ErrComparisonNotReady = errors.New("both product records are required")

	// ErrChatNotReady is returned when a question is asked before the chat engine exists
	ErrChatNotReady = errors.New("chat engine not initialized")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
