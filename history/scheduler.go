package history

import "time"

// Timer is a pending deferred call that can be cancelled.
type Timer interface {
	// Stop cancels the call. It reports false if the call already ran or was
	// already stopped.
	Stop() bool
}

// Scheduler runs f after d. The default implementation uses time.AfterFunc;
// tests substitute a manual one.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
