// Package chatpod - relay.go
// The Relay is the front door of the turn pipeline: per-user serialization,
// throttle admission, then the recovery controller around the streaming
// aggregator.

package chatpod

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// apologyMessage prefixes every user-visible failure.
const apologyMessage = "Oops, something went wrong. Please try again later."

// Relay relays user messages to the upstream completion service and streams
// back incrementally revealed answers. It owns the session store, the
// process-wide throttle, and the upstream client reference.
type Relay struct {
	store       *SessionStore
	throttle    *Throttle
	llm         LLM
	transcripts TranscriptStore
	logger      *slog.Logger

	defaultModel string
	premiumModel string
	maxAttempts  int
	backoff      time.Duration
	deadline     time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRelay constructs a relay around the given upstream client. A nil
// transcripts store disables archiving.
func NewRelay(cfg *Config, llm LLM, transcripts TranscriptStore) *Relay {
	if cfg == nil {
		cfg = defaultConfig()
	}
	if transcripts == nil {
		transcripts = NoopTranscripts{}
	}
	return &Relay{
		store:        NewSessionStore(),
		throttle:     NewThrottle(throttleWindow),
		llm:          llm,
		transcripts:  transcripts,
		logger:       slog.Default(),
		defaultModel: cfg.DefaultModel,
		premiumModel: cfg.PremiumModel,
		maxAttempts:  maxAttempts,
		backoff:      transientBackoff,
		deadline:     turnDeadline,
		locks:        make(map[string]*sync.Mutex),
	}
}

func (r *Relay) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// Store exposes the session store for transport-level operations that map
// straight onto its contract.
func (r *Relay) Store() *SessionStore {
	return r.store
}

// userLock returns the mutex serializing turns for one user, so overlapping
// messages from the same user queue instead of interleaving session writes.
func (r *Relay) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[userID] = l
	}
	return l
}

// Message runs one conversational turn. The returned channel yields paced
// partial updates followed by exactly one final or error update, then
// closes. A duplicate same-user delivery closes the channel without any
// update at all.
func (r *Relay) Message(ctx context.Context, userID, text string) <-chan Update {
	out := make(chan Update, 8)
	go func() {
		defer close(out)

		lock := r.userLock(userID)
		lock.Lock()
		defer lock.Unlock()

		if err := r.throttle.Admit(ctx, userID); err != nil {
			if errors.Is(err, ErrTooFrequent) {
				r.logger.Info("dropping duplicate message", "user", userID)
			} else {
				r.logger.Warn("admission interrupted", "user", userID, "error", err)
			}
			return
		}

		id, err := gonanoid.New()
		if err != nil {
			id = uuid.NewString()
		}
		ts := &turnState{id: id, userID: userID, text: text}

		switch err := r.runTurn(ctx, ts, out); {
		case err == nil:
			r.logger.Info("turn complete", "user", userID, "turn", ts.id, "model", ts.model)
			r.archive(ctx, ts)
		case errors.Is(err, ErrTooFrequent):
			r.logger.Info("dropping duplicate message", "user", userID, "turn", ts.id)
		default:
			r.logger.Error("turn failed", "user", userID, "turn", ts.id, "error", err)
			out <- Update{
				Kind: UpdateError,
				Text: fmt.Sprintf("%s\n\nError Message: %v", apologyMessage, err),
			}
		}
	}()
	return out
}

func (r *Relay) archive(ctx context.Context, ts *turnState) {
	entry := TranscriptEntry{
		ID:        uuid.NewString(),
		TurnID:    ts.id,
		UserID:    ts.userID,
		Model:     ts.model,
		Prompt:    ts.text,
		Answer:    ts.answer,
		CreatedAt: time.Now(),
	}
	if err := r.transcripts.Save(ctx, entry); err != nil {
		r.logger.Error("failed to archive turn", "user", ts.userID, "turn", ts.id, "error", err)
	}
}

// Reset wipes the user's history back to the default persona. The transport
// maps the "clear"/"exit" sentinels here without any model call.
func (r *Relay) Reset(userID string) {
	r.store.Reset(userID, DefaultSystemPrompt)
	r.logger.Info("chat history cleared", "user", userID)
}

// SetMode switches the user to a built-in persona, discarding prior history.
func (r *Relay) SetMode(userID, name string) (Mode, error) {
	mode, ok := Modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("unknown mode %q", name)
	}
	r.store.Reset(userID, mode.Prompt)
	r.logger.Info("mode switched", "user", userID, "mode", mode.Name)
	return mode, nil
}

// SetCustomMode installs a user-supplied persona wrapped in the fixed
// role-play framing. An empty persona fails validation before touching the
// store.
func (r *Relay) SetCustomMode(userID, prompt string) error {
	wrapped, err := WrapCustomPrompt(prompt)
	if err != nil {
		return err
	}
	r.store.Reset(userID, wrapped)
	r.logger.Info("custom mode set", "user", userID)
	return nil
}

// ToggleModel flips the user's model tier and returns the name of the model
// now in effect. History is untouched.
func (r *Relay) ToggleModel(userID string) string {
	if r.store.TogglePremium(userID) {
		return r.premiumModel
	}
	return r.defaultModel
}
