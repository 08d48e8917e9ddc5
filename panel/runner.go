package panel

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Task is a unit of background work. The returned string is the success
// message shown when it completes.
type Task func() (string, error)

// Runner executes at most one background task at a time. Every accepted
// task ends in exactly one TaskDone on the event channel, whether it
// returns, fails or panics.
type Runner struct {
	events  chan<- Event
	log     *slog.Logger
	running atomic.Bool
}

func NewRunner(events chan<- Event, log *slog.Logger) *Runner {
	return &Runner{events: events, log: log}
}

// Running reports whether a task is in flight.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Submit starts task on its own goroutine. While one is in flight further
// submissions are dropped and Submit returns false.
func (r *Runner) Submit(task Task) bool {
	if !r.running.CompareAndSwap(false, true) {
		r.log.Debug("task dropped, one already in flight")
		return false
	}
	go func() {
		done := r.run(task)
		// Clear the flag before delivering, so a handler reacting to
		// this completion can submit the next task immediately.
		r.running.Store(false)
		r.events <- done
	}()
	return true
}

func (r *Runner) run(task Task) (done TaskDone) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("task panicked", "panic", v)
			done = TaskDone{Message: fmt.Sprintf("panic: %v", v)}
		}
	}()
	msg, err := task()
	if err != nil {
		r.log.Warn("task failed", "error", err)
		return TaskDone{Message: err.Error()}
	}
	return TaskDone{OK: true, Message: msg}
}
