package errors

import (
	"fmt"
	"math"
	"time"
)

var (
	ErrValidation    = fmt.Errorf("validation failed")
	ErrNotFound      = fmt.Errorf("not found")
	ErrForbidden     = fmt.Errorf("forbidden")
	ErrRateLimited   = fmt.Errorf("rate limited")
	ErrAlreadyKicked = fmt.Errorf("%w: user was kicked from this room", ErrForbidden)
	ErrWorkerPanic   = fmt.Errorf("worker panic")
)

// RateLimitedError reports how long the caller has to wait before the
// oldest room counted against the quota falls outside the window.
type RateLimitedError struct {
	RetryAfter time.Duration
	Limit      int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("you can only create %d rooms per hour, please wait %d minutes",
		e.Limit, e.RetryAfterMinutes())
}

// RetryAfterMinutes rounds the remaining wait up to whole minutes.
func (e *RateLimitedError) RetryAfterMinutes() int {
	return int(math.Ceil(e.RetryAfter.Minutes()))
}

func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
