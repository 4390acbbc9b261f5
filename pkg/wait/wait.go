// Package wait converts flaky, asynchronous UI state into deterministic
// pass/fail outcomes by polling predicates against a wall-clock budget.
//
// All waiting is blocking sleep-and-repoll on the calling goroutine; there
// is no cancellation primitive. A wait ends only when the predicate turns
// true or the budget is spent. A single in-flight probe can overrun the
// nominal timeout if it blocks longer than expected; the deadline is only
// checked between polls.
package wait

import (
	"strings"
	"time"
)

// DefaultInterval is the pause between polls when none is given.
const DefaultInterval = 500 * time.Millisecond

// Condition is a boolean probe evaluated repeatedly during a wait.
type Condition func() bool

// Action is an arbitrary probe whose success is judged by its result:
// a nil error and a truthy value count as success.
type Action func() (interface{}, error)

// Until polls cond every interval until it returns true or timeout elapses.
// It returns true the instant the condition holds and false only after
// elapsed time reaches timeout. Panics raised by cond are swallowed and
// treated as "not yet satisfied" so transient resolution failures do not
// abort the wait early.
func Until(cond Condition, timeout, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}

	start := time.Now()
	for {
		if evaluate(cond) {
			return true
		}
		if time.Since(start) >= timeout {
			return false
		}
		time.Sleep(interval)
	}
}

// ForSuccess polls action until it succeeds or timeout elapses. Success is
// a nil error together with a truthy result (non-nil, and not false/""/0).
// The last successful value is returned; ok is false on timeout.
func ForSuccess(action Action, timeout, interval time.Duration) (value interface{}, ok bool) {
	done := Until(func() bool {
		v, err := action()
		if err != nil {
			return false
		}
		if !truthy(v) {
			return false
		}
		value = v
		return true
	}, timeout, interval)
	return value, done
}

// ForText polls text until it equals expected.
func ForText(text func() (string, error), expected string, timeout, interval time.Duration) bool {
	return Until(func() bool {
		s, err := text()
		return err == nil && s == expected
	}, timeout, interval)
}

// ForTextContains polls text until it contains substr.
func ForTextContains(text func() (string, error), substr string, timeout, interval time.Duration) bool {
	return Until(func() bool {
		s, err := text()
		return err == nil && strings.Contains(s, substr)
	}, timeout, interval)
}

// ForDisappearance polls present until it reports false. A probe failure
// counts as disappeared: a target that cannot be reached is gone.
func ForDisappearance(present Condition, timeout, interval time.Duration) bool {
	return Until(func() bool {
		gone := true
		func() {
			defer func() { _ = recover() }()
			gone = !present()
		}()
		return gone
	}, timeout, interval)
}

// ForCount polls count until it equals expected.
func ForCount(count func() (int, error), expected int, timeout, interval time.Duration) bool {
	return Until(func() bool {
		n, err := count()
		return err == nil && n == expected
	}, timeout, interval)
}

// evaluate runs cond, converting a panic into false.
func evaluate(cond Condition) (satisfied bool) {
	defer func() {
		if recover() != nil {
			satisfied = false
		}
	}()
	return cond()
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
