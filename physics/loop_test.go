package physics

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingObserver struct {
	steps atomic.Int64
}

func (o *countingObserver) ObserveStep(time.Duration, int) { o.steps.Add(1) }

func TestLoopStepsAndDraws(t *testing.T) {
	var draws atomic.Int64
	observer := &countingObserver{}
	loop := NewLoop(Initialize(pair(true), 400, 400, WithSeed(1)), LoopOptions{
		FPS:      500,
		Draw:     func(*Frame) { draws.Add(1) },
		Observer: observer,
	})

	loop.Start(context.Background())
	defer loop.Stop()

	require.Eventually(t, func() bool { return draws.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, observer.steps.Load(), int64(5))

	frame, err := loop.Snapshot(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, frame.Tick, uint64(5))
}

func TestLoopRequestsRunBetweenFrames(t *testing.T) {
	loop := NewLoop(Initialize(pair(true), 400, 400, WithSeed(1)), LoopOptions{FPS: 200})
	loop.Start(context.Background())
	defer loop.Stop()
	ctx := context.Background()

	ok, err := loop.Pin(ctx, "1", 100, 100)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)

	info, ok, err := loop.Hover(ctx, 100, 100)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", info.ID)

	ok, err = loop.Pin(ctx, "missing", 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = loop.Unpin(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoopStopEndsCallbacks(t *testing.T) {
	var draws atomic.Int64
	loop := NewLoop(Initialize(pair(false), 400, 400, WithSeed(1)), LoopOptions{
		FPS:  500,
		Draw: func(*Frame) { draws.Add(1) },
	})
	loop.Start(context.Background())
	require.Eventually(t, func() bool { return draws.Load() > 0 }, 2*time.Second, 5*time.Millisecond)

	loop.Stop()
	loop.Stop()

	after := draws.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, draws.Load())

	_, err := loop.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrLoopStopped)
	_, _, err = loop.Hover(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrLoopStopped)

	select {
	case <-loop.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
}

func TestLoopStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loop := NewLoop(Initialize(pair(false), 400, 400, WithSeed(1)), LoopOptions{FPS: 100})
	loop.Start(ctx)

	cancel()

	select {
	case <-loop.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on context cancellation")
	}
	_, err := loop.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrLoopStopped)
	loop.Stop()
}

func TestLoopStopBeforeStart(t *testing.T) {
	loop := NewLoop(Initialize(pair(false), 400, 400, WithSeed(1)), LoopOptions{})
	loop.Stop()
	loop.Start(context.Background())

	_, err := loop.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrLoopStopped)
}

func TestLoopDoBeforeStartHonorsContext(t *testing.T) {
	loop := NewLoop(Initialize(pair(false), 400, 400, WithSeed(1)), LoopOptions{})
	defer loop.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := loop.Snapshot(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
