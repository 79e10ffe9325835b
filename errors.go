// Package chatpod - errors.go
// Defines the error taxonomy for the turn pipeline.

package chatpod

import "errors"

var (
	// ErrNoSession is returned when a mutation targets a user that has never
	// had a session created.
	ErrNoSession = errors.New("no session exists for user")

	// ErrHistoryTooShort is returned by Truncate when the history cannot be
	// halved any further. It is fatal for the turn.
	ErrHistoryTooShort = errors.New("history too short to truncate")

	// ErrTooFrequent marks a same-user request inside the throttle window.
	// Callers drop these silently; they are duplicate deliveries, not errors.
	ErrTooFrequent = errors.New("request too frequent")

	// ErrRetryBudgetExhausted is returned after the attempt cap is spent
	// without a completed answer.
	ErrRetryBudgetExhausted = errors.New("too many retries")

	// ErrTurnDeadline is returned when the wall-clock deadline for a whole
	// turn expires, regardless of how many attempts remain.
	ErrTurnDeadline = errors.New("turn deadline exceeded")

	// ErrEmptyPrompt rejects a blank custom system prompt before it reaches
	// the session store.
	ErrEmptyPrompt = errors.New("custom prompt must not be empty")

	// errIncompleteStream marks an upstream stream that closed without a
	// completion signal. Treated as transient, like a dropped connection.
	errIncompleteStream = errors.New("upstream stream ended before completion")
)
