package chatpod

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want failureClass
	}{
		{"context length", errors.New("This model's maximum context length is 4096 tokens"), failContextLength},
		{"overloaded", errors.New("The server is Overloaded, try again"), failTransient},
		{"timeout", errors.New("request Timeout"), failTransient},
		{"incomplete stream", errIncompleteStream, failTransient},
		{"throttle reject", ErrTooFrequent, failSilentDrop},
		{"wrapped throttle reject", fmt.Errorf("admission: %w", ErrTooFrequent), failSilentDrop},
		{"anything else", errors.New("billing hard limit reached"), failFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyFailure(tt.err))
		})
	}
}

func TestRetryBudgetExhausted(t *testing.T) {
	llm := scripted(failingStream("upstream overloaded"))
	r := seededRelay(t, llm, "u1")

	updates := drain(r.Message(context.Background(), "u1", "Hello"))

	assert.Equal(t, 5, llm.callCount(), "the budget allows exactly five attempts")
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateError, updates[0].Kind)
	assert.Contains(t, updates[0].Text, ErrRetryBudgetExhausted.Error())
	assert.Contains(t, updates[0].Text, apologyMessage)
}

func TestTruncateAndRetry(t *testing.T) {
	llm := scripted(
		failingStream("This model's maximum context length is 4096 tokens"),
		textStream("Recovered answer."),
	)
	r := seededRelay(t, llm, "u1")
	for _, turn := range []Turn{
		UserTurn("q1"), AssistantTurn("a1"),
		UserTurn("q2"), AssistantTurn("a2"),
		UserTurn("orphan"),
	} {
		require.NoError(t, r.store.Append("u1", turn))
	}

	updates := drain(r.Message(context.Background(), "u1", strings.Repeat("x", 600)))

	require.Equal(t, 2, llm.callCount(), "one truncation retry, succeeding on attempt 2")
	assert.Len(t, llm.call(0).history, 7)
	assert.Len(t, llm.call(1).history, 4, "halving keeps the system turn plus the last three")
	assert.Equal(t, RoleSystem, llm.call(1).history[0].Role)

	require.NotEmpty(t, updates)
	final := updates[len(updates)-1]
	assert.Equal(t, UpdateFinal, final.Kind)
	assert.Equal(t, "Recovered answer.", final.Text)

	history, err := r.store.History("u1")
	require.NoError(t, err)
	assert.Len(t, history, 5)
}

func TestTruncateFailureAborts(t *testing.T) {
	llm := scripted(failingStream("This model's maximum context length is 4096 tokens"))
	r := seededRelay(t, llm, "u1")

	updates := drain(r.Message(context.Background(), "u1", "Hello"))

	assert.Equal(t, 1, llm.callCount(), "a history too short to shrink is fatal, no retry")
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateError, updates[0].Kind)
	assert.Contains(t, updates[0].Text, ErrHistoryTooShort.Error())
}

func TestTransientBackoffThenSuccess(t *testing.T) {
	llm := scripted(
		failingStream("server overloaded"),
		failingStream("gateway timeout"),
		textStream("Third time lucky."),
	)
	r := seededRelay(t, llm, "u1")

	updates := drain(r.Message(context.Background(), "u1", "Hello"))

	assert.Equal(t, 3, llm.callCount())
	require.NotEmpty(t, updates)
	final := updates[len(updates)-1]
	assert.Equal(t, UpdateFinal, final.Kind)
	assert.Equal(t, "Third time lucky.", final.Text)
}

func TestTurnDeadline(t *testing.T) {
	llm := scripted(hangingStream())
	r := seededRelay(t, llm, "u1")
	r.deadline = 50 * time.Millisecond

	start := time.Now()
	updates := drain(r.Message(context.Background(), "u1", "Hello"))

	assert.Less(t, time.Since(start), time.Second, "the deadline must cut a stalled stream loose")
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateError, updates[0].Kind)
	assert.Contains(t, updates[0].Text, ErrTurnDeadline.Error())
}

func TestFatalErrorSurfacesVerbatim(t *testing.T) {
	llm := scripted(failingStream("billing hard limit reached"))
	r := seededRelay(t, llm, "u1")

	updates := drain(r.Message(context.Background(), "u1", "Hello"))

	assert.Equal(t, 1, llm.callCount())
	require.Len(t, updates, 1)
	assert.Equal(t, UpdateError, updates[0].Kind)
	assert.Contains(t, updates[0].Text, "billing hard limit reached")
	assert.Contains(t, updates[0].Text, apologyMessage)
}

func TestDuplicateDeliveryDroppedSilently(t *testing.T) {
	llm := scripted(textStream("Quick answer."))
	r := seededRelay(t, llm, "u1")
	r.throttle = NewThrottle(500 * time.Millisecond)

	first := drain(r.Message(context.Background(), "u1", "Hello"))
	require.NotEmpty(t, first)
	assert.Equal(t, UpdateFinal, first[len(first)-1].Kind)

	second := drain(r.Message(context.Background(), "u1", "Hello"))
	assert.Empty(t, second, "a same-user double fire yields no user-visible output at all")
}
