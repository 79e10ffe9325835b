package chatpod

import (
	"context"
	"sync"
	"time"
)

// throttleWindow is the minimum spacing between upstream calls, shared by
// every user of the process.
const throttleWindow = 2 * time.Second

// Throttle is the process-wide gate in front of the upstream completion
// service. It serializes all outbound calls to protect a shared quota:
// different users wait their turn, while a same-user burst inside the window
// is assumed to be a duplicate delivery and rejected outright.
type Throttle struct {
	mu       sync.Mutex
	window   time.Duration
	last     time.Time
	lastUser string
}

func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{window: window}
}

// Admit blocks until the caller may issue an upstream call, or returns
// ErrTooFrequent when the same user fires again inside the window. The wait
// is cooperative; ctx cancellation releases waiters.
func (t *Throttle) Admit(ctx context.Context, userID string) error {
	t.mu.Lock()
	for {
		now := time.Now()
		if t.last.IsZero() || now.Sub(t.last) >= t.window {
			t.last = now
			t.lastUser = userID
			t.mu.Unlock()
			return nil
		}
		if userID == t.lastUser {
			t.mu.Unlock()
			return ErrTooFrequent
		}

		wait := t.window - now.Sub(t.last)
		t.mu.Unlock()
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		// Another waiter may have taken the slot meanwhile; re-check.
		t.mu.Lock()
	}
}
