package core

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the failure taxonomy. Callers branch with errors.Is.
var (
	// ErrInvalidLocator means the locator string is malformed. Always a
	// caller bug, never retried.
	ErrInvalidLocator = errors.New("invalid locator")
	// ErrNotFound means a native search exhausted its timeout. Expected,
	// common, and retryable by the wait engine.
	ErrNotFound = errors.New("element not found")
	// ErrStaleHandle means a cached handle failed its validity check. The
	// resolver recovers by re-searching; callers should not see this.
	ErrStaleHandle = errors.New("stale handle")
	// ErrUnknownBackend means an explicit, unregistered backend name was
	// requested. Fatal misconfiguration.
	ErrUnknownBackend = errors.New("unknown backend")
)

// LaunchError reports a failed process start with the underlying OS or
// agent error attached.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// AttachError reports a failed connection to a running process.
type AttachError struct {
	Identifier string
	Err        error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("attach to %q: %v", e.Identifier, e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }

// TimeoutError reports a resolution that exhausted its budget. It always
// carries the locator string and elapsed time so flaky timing failures are
// debuggable, never a bare false.
type TimeoutError struct {
	Locator string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("locator %q not resolved after %v", e.Locator, e.Elapsed.Round(time.Millisecond))
}

// Is makes TimeoutError match ErrNotFound so wait loops treat it as a
// retryable miss.
func (e *TimeoutError) Is(target error) bool { return target == ErrNotFound }
