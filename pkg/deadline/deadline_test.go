package deadline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceOperationWins(t *testing.T) {
	got, err := Race(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", got)
}

func TestRaceOperationError(t *testing.T) {
	boom := errors.New("boom")

	_, err := Race(context.Background(), time.Second, func(ctx context.Context) (string, error) {
		return "", boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestRaceTimerWins(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	got, err := Race(context.Background(), 30*time.Millisecond, func(ctx context.Context) (int, error) {
		<-release
		return 42, nil
	})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Zero(t, got)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestRaceLateSuccessIsDiscarded(t *testing.T) {
	done := make(chan struct{})

	_, err := Race(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		time.Sleep(80 * time.Millisecond)
		close(done)
		return "too late", nil
	})
	require.ErrorIs(t, err, ErrTimeout)

	// The loser still settles; its result goes nowhere.
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("losing operation never finished")
	}
}

func TestRaceLoserIsNotCancelled(t *testing.T) {
	cancelled := make(chan bool, 1)

	_, err := Race(context.Background(), 20*time.Millisecond, func(ctx context.Context) (string, error) {
		time.Sleep(60 * time.Millisecond)
		select {
		case <-ctx.Done():
			cancelled <- true
		default:
			cancelled <- false
		}
		return "late", nil
	})

	require.ErrorIs(t, err, ErrTimeout)
	assert.False(t, <-cancelled, "timing out must not cancel the operation's context")
}
