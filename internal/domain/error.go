package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSessionNotFound = errors.New("chat session not found")
)

// RateLimitedError reports that the social platform refused a post because
// the posting quota is exhausted. The scheduler treats it as non-fatal and
// waits for the next cycle; anything else coming back from a poster is a
// generic failure.
type RateLimitedError struct {
	Platform      string
	AppRemaining  string // platform-reported app-wide 24h quota left, "" if unknown
	UserRemaining string // platform-reported per-user 24h quota left, "" if unknown
	RetryAfter    time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: rate limited (app remaining=%s, user remaining=%s)",
		e.Platform, orUnknown(e.AppRemaining), orUnknown(e.UserRemaining))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
