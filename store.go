package chatpod

import (
	"sync"
	"time"
)

// sessionTTL is how long a session stays fresh after its last completed turn.
const sessionTTL = 24 * time.Hour

// Session holds one user's conversation state. messages[0] is always the
// system turn; truncation never removes it, only a full reset replaces it.
type Session struct {
	messages      []Turn
	lastActivity  time.Time
	noticePending bool
}

// SessionStore owns every Session and Turn. No other component mutates a
// session's messages directly; mutations go through the store so each one is
// atomic with respect to the message sequence.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	premium  map[string]bool
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		premium:  make(map[string]bool),
		ttl:      sessionTTL,
		now:      time.Now,
	}
}

// Reset replaces the user's session with a fresh one holding exactly one
// system turn. An empty systemPrompt reuses the current system turn if the
// user has one, falling back to the default prompt. The reset is observable:
// the next EnsureFresh for this user reports it so the caller can prepend a
// notice to the next answer.
func (s *SessionStore) Reset(userID, systemPrompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(userID, systemPrompt)
}

func (s *SessionStore) resetLocked(userID, systemPrompt string) {
	if systemPrompt == "" {
		if sess, ok := s.sessions[userID]; ok && len(sess.messages) > 0 {
			systemPrompt = sess.messages[0].Content
		} else {
			systemPrompt = DefaultSystemPrompt
		}
	}
	s.sessions[userID] = &Session{
		messages:      []Turn{SystemTurn(systemPrompt)},
		lastActivity:  s.now(),
		noticePending: true,
	}
}

// EnsureFresh guarantees the user has a usable session. A missing or expired
// session is reset to the default prompt. It reports whether a reset is
// pending notice, clearing the flag so the notice surfaces exactly once.
func (s *SessionStore) EnsureFresh(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok || s.now().Sub(sess.lastActivity) > s.ttl {
		s.resetLocked(userID, DefaultSystemPrompt)
		sess = s.sessions[userID]
	}
	pending := sess.noticePending
	sess.noticePending = false
	return pending
}

// Append adds a turn to the end of the user's history.
func (s *SessionStore) Append(userID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return ErrNoSession
	}
	sess.messages = append(sess.messages, turn)
	return nil
}

// Truncate halves the non-system history: the system turn stays, the
// floor((len-1)/2) turns immediately after it are dropped, and the rest keep
// their relative order. Halving converges in O(log n) truncations, which
// bounds the retries needed after a context-length failure.
func (s *SessionStore) Truncate(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return ErrNoSession
	}
	if len(sess.messages) <= 3 {
		return ErrHistoryTooShort
	}
	drop := (len(sess.messages) - 1) / 2
	kept := make([]Turn, 0, len(sess.messages)-drop)
	kept = append(kept, sess.messages[0])
	kept = append(kept, sess.messages[1+drop:]...)
	sess.messages = kept
	return nil
}

// History returns a copy of the user's message sequence.
func (s *SessionStore) History(userID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return append([]Turn(nil), sess.messages...), nil
}

// Touch records a completed turn for the freshness rule.
func (s *SessionStore) Touch(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return ErrNoSession
	}
	sess.lastActivity = s.now()
	return nil
}

// Premium reports the user's model tier preference. The preference survives
// session resets; it is a per-user setting, not conversation state.
func (s *SessionStore) Premium(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.premium[userID]
}

func (s *SessionStore) SetPremium(userID string, premium bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.premium[userID] = premium
}

// TogglePremium flips the tier preference and returns the new value.
func (s *SessionStore) TogglePremium(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.premium[userID] = !s.premium[userID]
	return s.premium[userID]
}
