package ratelimit

import "time"

// Result is the outcome of counting one attempt against a window.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}
