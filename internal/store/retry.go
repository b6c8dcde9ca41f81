package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// RetryPolicy retries an operation on transient contention. Delay
// doubles per attempt from BaseDelay up to MaxDelay. Anything the
// Retryable predicate rejects aborts immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Retryable   func(error) bool

	// Sleep is swapped out by tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy covers the scoped-replace commit: a handful of
// attempts with doubling backoff, retrying only on engine contention.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
		Retryable:   IsContention,
	}
}

// Do runs op, retrying per the policy. The last error is returned when
// attempts are exhausted.
func (p RetryPolicy) Do(op func() error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		sleep(delay)
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
}

// IsContention reports whether err is a transient sqlite contention
// signal (database busy or table locked) worth retrying.
func IsContention(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}
