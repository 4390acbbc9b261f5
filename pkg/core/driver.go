package core

import "time"

// Driver is the operation set every backend binds to its native automation
// technology. Implementations are stateless per call and constructed once
// per session by the driver registry.
//
// Side effects (Click, TypeText, SetText) are not idempotent and are never
// retried at this layer. Retrying is the wait engine's decision and applies
// to queries only.
//
// Drivers are not safe for concurrent use; parallel workers must each own
// their own driver instance.
type Driver interface {
	// Name returns the backend identifier.
	Name() BackendID

	// StartApplication launches a process and returns its handle.
	// Failures wrap LaunchError.
	StartApplication(path string, args []string) (ApplicationHandle, error)
	// AttachApplication connects to a running process by pid, process name
	// or main-window title. Failures wrap AttachError.
	AttachApplication(identifier string) (ApplicationHandle, error)

	// FindWindow locates a top-level window of app matching criteria.
	// A native search that exhausts timeout returns ErrNotFound.
	FindWindow(app ApplicationHandle, criteria Criteria, timeout time.Duration) (WindowHandle, error)
	// FindElement locates a single element under parent.
	// A native search that exhausts timeout returns ErrNotFound.
	FindElement(parent WindowHandle, criteria Criteria, timeout time.Duration) (ElementHandle, error)
	// FindElements locates all elements under parent matching criteria.
	// It never fails on no match; the slice is empty.
	FindElements(parent WindowHandle, criteria Criteria, timeout time.Duration) ([]ElementHandle, error)

	// Click presses the primary button at offset from the element origin.
	Click(handle ElementHandle, offset Point) error
	// DoubleClick double-presses the primary button.
	DoubleClick(handle ElementHandle, offset Point) error
	// RightClick presses the secondary button.
	RightClick(handle ElementHandle, offset Point) error

	// TypeText injects text into the element, optionally clearing it first.
	TypeText(handle ElementHandle, text string, clearFirst bool) error
	// GetText reads the element's text content.
	GetText(handle ElementHandle) (string, error)
	// SetText replaces the element's text content.
	SetText(handle ElementHandle, text string) error

	// IsEnabled reports whether the element accepts input.
	IsEnabled(handle ElementHandle) bool
	// IsVisible reports whether the element is displayed.
	IsVisible(handle ElementHandle) bool
	// IsValid reports whether the handle still refers to a live native
	// element. A stale handle returns false, never an error, so callers can
	// distinguish "never existed" from "existed, now gone".
	IsValid(handle ElementHandle) bool
}
