package chatpod

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTranscripts struct {
	mu      sync.Mutex
	entries []TranscriptEntry
}

var _ TranscriptStore = (*recordingTranscripts)(nil)

func (r *recordingTranscripts) Save(_ context.Context, entry TranscriptEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingTranscripts) Recent(_ context.Context, userID string, limit int) ([]TranscriptEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TranscriptEntry(nil), r.entries...), nil
}

func (r *recordingTranscripts) Close() error { return nil }

func (r *recordingTranscripts) all() []TranscriptEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TranscriptEntry(nil), r.entries...)
}

func TestArchiveOnSuccess(t *testing.T) {
	archive := &recordingTranscripts{}
	r := seededRelay(t, scripted(textStream("Archived answer.")), "u1")
	r.transcripts = archive

	drain(r.Message(context.Background(), "u1", "What's up?"))

	entries := archive.all()
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[0].TurnID)
	assert.Equal(t, "u1", entries[0].UserID)
	assert.Equal(t, defaultModelName, entries[0].Model)
	assert.Equal(t, "What's up?", entries[0].Prompt)
	assert.Equal(t, "Archived answer.", entries[0].Answer)
}

func TestNoArchiveOnFailure(t *testing.T) {
	archive := &recordingTranscripts{}
	r := seededRelay(t, scripted(failingStream("billing hard limit reached")), "u1")
	r.transcripts = archive

	drain(r.Message(context.Background(), "u1", "What's up?"))

	assert.Empty(t, archive.all(), "only completed turns are archived")
}

func TestConcurrentDistinctUsers(t *testing.T) {
	llm := scripted(textStream("Concurrent answer."))
	r := newTestRelay(t, llm)
	r.throttle = NewThrottle(30 * time.Millisecond)

	var wg sync.WaitGroup
	finals := make(chan Update, 2)
	for _, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			updates := drain(r.Message(context.Background(), user, "Hello"))
			if len(updates) > 0 {
				finals <- updates[len(updates)-1]
			}
		}(user)
	}
	wg.Wait()
	close(finals)

	count := 0
	for u := range finals {
		assert.Equal(t, UpdateFinal, u.Kind)
		count++
	}
	assert.Equal(t, 2, count, "distinct users are both admitted, the later one after a wait")
}

func TestSameUserTurnsQueue(t *testing.T) {
	llm := scripted(textStream("Queued answer."))
	r := newTestRelay(t, llm)

	var wg sync.WaitGroup
	done := make(chan []Update, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			done <- drain(r.Message(context.Background(), "u1", "Hello"))
		}()
	}
	wg.Wait()
	close(done)

	total := 0
	for updates := range done {
		total += len(updates)
	}
	assert.NotZero(t, total, "at least one of the overlapping turns completes")

	history, err := r.store.History("u1")
	require.NoError(t, err)
	for i, turn := range history[1:] {
		if i%2 == 0 {
			assert.Equal(t, RoleUser, turn.Role, "turns never interleave within one session")
		} else {
			assert.Equal(t, RoleAssistant, turn.Role)
		}
	}
}
