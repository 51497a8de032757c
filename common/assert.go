package common

import (
	deadlock "github.com/sasha-s/go-deadlock"
)

// Assert panics with msg when condition is false. Used at internal
// invariants that must never trip in correct code, not for validating
// caller input.
func Assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

// Mutex is a sync.Mutex replacement that records its call stack on Lock and
// reports (rather than silently hangs) if the same goroutine tries to
// reacquire it, or if two goroutines appear to be waiting on each other.
// The buffer pool's mutex and the lock manager's page-table mutex embed one so
// a misuse during development surfaces as a stack trace instead of a wedged
// test run.
type Mutex struct {
	deadlock.Mutex
}
