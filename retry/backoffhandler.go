package retry

import (
	"context"
	"math/rand"
	"time"
)

// Clock lets tests substitute deterministic time sources; dialOne never
// overrides it outside tests.
type clock struct {
	Now   func() time.Time
	After func(d time.Duration) <-chan time.Time
}

var Clock = clock{
	Now:   time.Now,
	After: time.After,
}

// BackoffHandler paces reconnect attempts to a ClickHouse replica: each
// failed dial doubles the wait before the next attempt, up to MaxRetries,
// so a server that's mid-restart or behind a flapping network link doesn't
// get hammered with a dial per RTT. The base wait is 1 second.
type BackoffHandler struct {
	// MaxRetries caps the number of reconnect attempts dialOne will make
	// to one address. Zero disables retry — the first failed dial is
	// final.
	MaxRetries uint
	// RetryForever keeps the backoff period capped at MaxRetries' value
	// but never gives up, for callers that would rather wait indefinitely
	// for a replica to come back than fail the query outright.
	RetryForever bool
	// BaseTime overrides the default 1-second initial wait.
	BaseTime time.Duration

	retries       uint
	resetDeadline time.Time
}

// BackoffTimer returns a channel that fires once the exponential backoff
// for this attempt has elapsed, or nil once MaxRetries reconnect attempts
// have been spent without RetryForever set.
func (b *BackoffHandler) BackoffTimer() <-chan time.Time {
	if !b.resetDeadline.IsZero() && Clock.Now().After(b.resetDeadline) {
		b.retries = 0
		b.resetDeadline = time.Time{}
	}
	if b.retries >= b.MaxRetries {
		if !b.RetryForever {
			return nil
		}
	} else {
		b.retries++
	}
	maxTimeToWait := time.Duration(b.baseTime() * 1 << (b.retries))
	timeToWait := time.Duration(rand.Int63n(maxTimeToWait.Nanoseconds()))
	return Clock.After(timeToWait)
}

// Backoff waits out the current reconnect attempt's backoff period before
// dialOne retries the address. It returns false once MaxRetries attempts
// are spent (without RetryForever) or once ctx is cancelled mid-wait — in
// either case dialOne gives up and surfaces the last dial error.
func (b *BackoffHandler) Backoff(ctx context.Context) bool {
	c := b.BackoffTimer()
	if c == nil {
		return false
	}
	select {
	case <-c:
		return true
	case <-ctx.Done():
		return false
	}
}

func (b *BackoffHandler) baseTime() time.Duration {
	if b.BaseTime == 0 {
		return time.Second
	}
	return b.BaseTime
}
