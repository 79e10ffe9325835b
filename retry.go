package chatpod

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	// maxAttempts caps how many times one turn may hit the upstream service.
	maxAttempts = 5
	// turnDeadline bounds a whole turn, admission to final answer.
	turnDeadline = 60 * time.Second
	// transientBackoff is the fixed sleep before retrying an overloaded or
	// timed-out upstream.
	transientBackoff = 2 * time.Second
)

// failureClass is the recovery action chosen for a failed attempt.
type failureClass int

const (
	// failFatal aborts the turn and surfaces the error verbatim.
	failFatal failureClass = iota
	// failContextLength truncates the history and retries.
	failContextLength
	// failTransient backs off briefly and retries.
	failTransient
	// failSilentDrop aborts with no user-visible output.
	failSilentDrop
)

// classifyFailure maps an upstream failure onto a recovery action. The
// upstream error surface is unstructured text, so this is case-insensitive
// substring matching against known signatures; every signature lives here so
// the matching can be swapped for structured codes in one place.
func classifyFailure(err error) failureClass {
	if errors.Is(err, ErrTooFrequent) {
		return failSilentDrop
	}
	if errors.Is(err, errIncompleteStream) {
		return failTransient
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "too frequent"):
		return failSilentDrop
	case strings.Contains(msg, "maximum"):
		return failContextLength
	case strings.Contains(msg, "overloaded"), strings.Contains(msg, "timeout"):
		return failTransient
	}
	return failFatal
}

// runTurn executes the bounded retry loop around streamAttempt. Truncation
// retries and backoff retries are distinct transitions that both draw on the
// same attempt budget; the wall-clock deadline bounds everything and cancels
// any in-flight upstream call when it fires.
func (r *Relay) runTurn(ctx context.Context, ts *turnState, out chan<- Update) error {
	ctx, cancel := context.WithTimeout(ctx, r.deadline)
	defer cancel()

	for attempt := 1; ; attempt++ {
		if attempt > r.maxAttempts {
			return ErrRetryBudgetExhausted
		}

		err := r.streamAttempt(ctx, ts, out)
		if err == nil {
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			if errors.Is(cerr, context.DeadlineExceeded) {
				return ErrTurnDeadline
			}
			return cerr
		}

		switch classifyFailure(err) {
		case failSilentDrop:
			return ErrTooFrequent
		case failContextLength:
			r.logger.Info("history too long, truncating", "user", ts.userID, "turn", ts.id, "attempt", attempt)
			if terr := r.store.Truncate(ts.userID); terr != nil {
				return terr
			}
		case failTransient:
			r.logger.Warn("transient upstream failure, backing off", "user", ts.userID, "turn", ts.id, "attempt", attempt, "error", err)
			select {
			case <-time.After(r.backoff):
			case <-ctx.Done():
				return ErrTurnDeadline
			}
		default:
			return err
		}
	}
}
