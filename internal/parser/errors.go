package parser

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// defaultRetryAfter applies when an extractor backend throttles without a usable Retry-After.
const defaultRetryAfter = 60 * time.Second

// ErrAllExtractorsThrottled is wrapped by the fallback chain when every extractor
// is throttled or sitting behind an open circuit.
var ErrAllExtractorsThrottled = errors.New("every document extractor is throttled")

// RateLimitError reports that a document extractor backend answered HTTP 429.
// The upload is not retried inline; RetryAfter tells the caller when to try again.
type RateLimitError struct {
	Extractor  string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("document extractor %q throttled, retry in %s: %v", e.Extractor, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError builds a RateLimitError for the named extractor.
// Non-positive retryAfterSecs fall back to defaultRetryAfter.
func NewRateLimitError(extractor string, err error, retryAfterSecs int) *RateLimitError {
	wait := time.Duration(retryAfterSecs) * time.Second
	if wait <= 0 {
		wait = defaultRetryAfter
	}
	return &RateLimitError{Extractor: extractor, RetryAfter: wait, Err: err}
}

// ParseRetryAfterHeader reads a Retry-After value as whole seconds. Both the
// delta-seconds and the HTTP-date forms are understood; anything else yields 0.
func ParseRetryAfterHeader(val string) int {
	val = strings.TrimSpace(val)
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		if secs < 0 {
			return 0
		}
		return secs
	}
	at, err := http.ParseTime(val)
	if err != nil {
		return 0
	}
	secs := int(time.Until(at).Round(time.Second).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
