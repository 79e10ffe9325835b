package chatpod

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleSameUserRejected(t *testing.T) {
	th := NewThrottle(100 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, th.Admit(ctx, "u1"))
	assert.ErrorIs(t, th.Admit(ctx, "u1"), ErrTooFrequent)
}

func TestThrottleDistinctUsersWait(t *testing.T) {
	th := NewThrottle(100 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, th.Admit(ctx, "u1"))

	start := time.Now()
	require.NoError(t, th.Admit(ctx, "u2"), "a different user waits, it is not rejected")
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestThrottleAdmitsAfterWindow(t *testing.T) {
	th := NewThrottle(50 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, th.Admit(ctx, "u1"))
	time.Sleep(60 * time.Millisecond)
	require.NoError(t, th.Admit(ctx, "u1"))
}

func TestThrottleWaitReleasedByContext(t *testing.T) {
	th := NewThrottle(time.Minute)
	require.NoError(t, th.Admit(context.Background(), "u1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := th.Admit(ctx, "u2")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
