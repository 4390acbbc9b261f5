// Package core defines the backend driver contract and the handle, criteria
// and error types shared by every winrunner package.
package core

import (
	"fmt"
	"time"
)

// BackendID identifies a concrete automation backend.
type BackendID string

const (
	// BackendWin32 is the legacy control-tree backend. It covers classic
	// Win32 controls that the UIA property tree often misses.
	BackendWin32 BackendID = "win32"
	// BackendUIA is the UI-tree property backend (WebDriver protocol).
	BackendUIA BackendID = "uia"
)

// Bounds is an element's screen rectangle in physical pixels.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ElementHandle is an opaque, backend-tagged reference to a native UI
// element. Handles are owned by the cache entry that holds them and are not
// safe to share across goroutines.
type ElementHandle struct {
	Backend   BackendID
	NativeRef string // agent-side element reference
	OwnerPID  int
	CreatedAt time.Time
}

// IsZero reports whether the handle refers to nothing.
func (h ElementHandle) IsZero() bool {
	return h.NativeRef == ""
}

// WindowHandle references a native top-level window.
type WindowHandle struct {
	Backend   BackendID
	NativeRef string // HWND value or agent window reference
	Title     string
	OwnerPID  int
	CreatedAt time.Time
}

// IsZero reports whether the handle refers to nothing.
func (h WindowHandle) IsZero() bool {
	return h.NativeRef == ""
}

// Identity returns a stable surrogate for the window, suitable as a cache
// key component. It is the native window handle value or element runtime
// id, never a transient memory address.
func (h WindowHandle) Identity() string {
	return string(h.Backend) + ":" + h.NativeRef
}

// ApplicationHandle references a running application. It owns its windows
// logically by process id, not by reference. Backends without direct
// process access identify the application by NativeRef (uia session id)
// instead of PID.
type ApplicationHandle struct {
	Backend   BackendID
	PID       int
	NativeRef string
	Path      string
	CreatedAt time.Time
}

// IsZero reports whether the handle refers to nothing.
func (h ApplicationHandle) IsZero() bool {
	return h.PID == 0 && h.NativeRef == ""
}

// Identity returns a stable surrogate for the application, preferring the
// process id.
func (h ApplicationHandle) Identity() string {
	if h.PID != 0 {
		return fmt.Sprintf("pid:%d", h.PID)
	}
	return "ref:" + h.NativeRef
}

// Criteria is a backend-specific element search query produced by the
// locator translation table. Strategy and Value follow the conventions of
// the target backend: "auto_id"/"name"/"class_name"/"title" keys for win32,
// WebDriver locator strategies for uia.
type Criteria struct {
	Backend  BackendID
	Strategy string
	Value    string
}

// ElementInfo is a snapshot of element state captured at find time.
type ElementInfo struct {
	Handle  ElementHandle
	Text    string
	Bounds  Bounds
	Enabled bool
	Visible bool
}
