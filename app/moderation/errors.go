package moderation

import (
	"fmt"
	"time"
)

// ValidationError reports user-correctable input problems (blank or oversized
// text). Detected before any write.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// RateLimitedError reports a blocked admission and carries the time until the
// oldest counted attempt expires. Detected before any write; a rate-limited
// request is never persisted and never recorded.
type RateLimitedError struct {
	ResetIn time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limit exceeded, resets in %s", e.ResetIn)
}
