package flow

import "time"

// Timer is a single scheduled callback that can be stopped before it
// fires.
type Timer interface {
	// Stop cancels the timer. Returns false if the callback already
	// fired or was already stopped.
	Stop() bool
}

// Scheduler schedules single-shot callbacks. Flows take a Scheduler
// instead of calling time.AfterFunc directly so tests can step timers
// deterministically.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// NewScheduler returns the real, time.AfterFunc backed scheduler.
func NewScheduler() Scheduler {
	return realScheduler{}
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() bool {
	return r.t.Stop()
}
