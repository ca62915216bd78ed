package physics

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrLoopStopped is returned by Loop calls made after teardown
var ErrLoopStopped = errors.New("physics: loop stopped")

// StepObserver receives the duration of every simulated step
type StepObserver interface {
	ObserveStep(d time.Duration, nodes int)
}

// LoopOptions configures a Loop
type LoopOptions struct {
	FPS      int          // frames per second, default 60
	Draw     func(*Frame) // called after every step with a fresh snapshot
	Observer StepObserver
	Logger   *zap.Logger
}

// Loop drives a State at frame cadence. One goroutine owns the state: every
// step, draw and external request (pin, hover, snapshot) runs on it, one at a
// time, between frames.
type Loop struct {
	state    *State
	interval time.Duration
	draw     func(*Frame)
	observer StepObserver
	logger   *zap.Logger

	cmds chan func(*State)
	done chan struct{}

	mu       sync.Mutex
	cancel   context.CancelFunc
	started  bool
	stopped  bool
	stopOnce sync.Once
}

// NewLoop wraps state. Nothing runs until Start.
func NewLoop(state *State, opts LoopOptions) *Loop {
	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		state:    state,
		interval: time.Second / time.Duration(fps),
		draw:     opts.Draw,
		observer: opts.Observer,
		logger:   logger,
		cmds:     make(chan func(*State)),
		done:     make(chan struct{}),
	}
}

// Start launches the frame goroutine. It runs until ctx is cancelled or Stop
// is called. Calling Start twice, or after Stop, does nothing.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started || l.stopped {
		return
	}
	l.started = true

	ctx, l.cancel = context.WithCancel(ctx)
	go l.run(ctx)
	l.logger.Debug("Simulation loop started",
		zap.Int("nodes", l.state.Len()),
		zap.Duration("interval", l.interval))
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Simulation loop stopped", zap.Uint64("tick", l.state.Tick()))
			return
		case fn := <-l.cmds:
			fn(l.state)
		case <-ticker.C:
			l.frame()
		}
	}
}

func (l *Loop) frame() {
	start := time.Now()
	l.state.Step()
	if l.observer != nil {
		l.observer.ObserveStep(time.Since(start), l.state.Len())
	}
	if l.draw != nil {
		l.draw(l.state.Snapshot())
	}
}

// Stop tears the loop down and waits for the frame goroutine to exit. No
// step or draw runs after Stop returns. Safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		l.mu.Lock()
		l.stopped = true
		started := l.started
		cancel := l.cancel
		l.mu.Unlock()

		if started {
			cancel()
			<-l.done
		} else {
			close(l.done)
		}
	})
}

// Done is closed once the loop has been torn down
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Do runs fn on the loop goroutine between frames and waits for it. Before
// Start it blocks until the loop starts, stops or ctx ends.
func (l *Loop) Do(ctx context.Context, fn func(*State)) error {
	finished := make(chan struct{})
	wrapped := func(s *State) {
		defer close(finished)
		fn(s)
	}

	select {
	case l.cmds <- wrapped:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted, fn runs to completion before the loop can exit
	<-finished
	return nil
}

// Snapshot returns the current frame
func (l *Loop) Snapshot(ctx context.Context) (*Frame, error) {
	var f *Frame
	err := l.Do(ctx, func(s *State) { f = s.Snapshot() })
	return f, err
}

// Hover resolves the node under the pointer
func (l *Loop) Hover(ctx context.Context, x, y float64) (*HoverInfo, bool, error) {
	var (
		info *HoverInfo
		ok   bool
	)
	err := l.Do(ctx, func(s *State) { info, ok = s.Hover(x, y) })
	return info, ok, err
}

// Pin pins a node; ok is false for an unknown ID
func (l *Loop) Pin(ctx context.Context, id string, x, y float64) (bool, error) {
	var ok bool
	err := l.Do(ctx, func(s *State) { ok = s.Pin(id, x, y) })
	return ok, err
}

// Unpin releases a node; ok is false for an unknown ID
func (l *Loop) Unpin(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := l.Do(ctx, func(s *State) { ok = s.Unpin(id) })
	return ok, err
}
