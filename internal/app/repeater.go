package app

import (
	"context"
	"sync"
	"time"
)

// Repeater runs a task immediately and then again interval() after each run
// completes. Runs never overlap: the timer is armed only once the task has
// returned, and Trigger short-circuits the wait.
type Repeater struct {
	interval func() time.Duration
	task     func(ctx context.Context)

	trigger  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	runMu   sync.Mutex
	started bool
}

// NewRepeater creates a stopped repeater. interval is consulted every time
// the timer is armed so configuration changes apply to the next wait.
func NewRepeater(interval func() time.Duration, task func(ctx context.Context)) *Repeater {
	return &Repeater{
		interval: interval,
		task:     task,
		trigger:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run blocks until Stop is called or ctx is cancelled. The context passed
// to the task is cancelled on either, so an in-flight run can abort.
func (r *Repeater) Run(ctx context.Context) {
	r.runMu.Lock()
	if r.started {
		r.runMu.Unlock()
		return
	}
	r.started = true
	r.runMu.Unlock()

	defer close(r.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-r.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		r.task(ctx)

		timer := time.NewTimer(r.interval())
		select {
		case <-timer.C:
		case <-r.trigger:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Trigger requests an immediate run. A run already pending absorbs it.
func (r *Repeater) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Stop ends the loop. It is safe to call more than once. A repeater that
// was never run is marked done immediately and Run becomes a no-op.
func (r *Repeater) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})

	r.runMu.Lock()
	defer r.runMu.Unlock()
	if !r.started {
		r.started = true
		close(r.done)
	}
}

// Done is closed when Run has returned
func (r *Repeater) Done() <-chan struct{} {
	return r.done
}
