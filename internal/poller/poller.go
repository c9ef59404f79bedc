// Package poller runs a function on a fixed interval until stopped.
package poller

import (
	"context"
	"sync"
	"time"
)

// Task is the handle returned by Start. Its owner must call Stop when done.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start calls tick immediately and then every interval. Ticks never overlap:
// if one runs longer than the interval the missed ticks are dropped. The
// context passed to tick is cancelled by Stop.
func Start(parent context.Context, interval time.Duration, tick func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(parent)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				tick(ctx)
			}
		}
	}()

	return t
}

// Stop cancels the task and waits for the running tick to return. It is safe
// to call more than once, but must not be called from inside tick.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the loop has exited.
func (t *Task) Done() <-chan struct{} { return t.done }
