// Package win32 binds the core driver contract to the legacy control-tree
// agent. It is the default backend: the control tree reaches classic Win32
// controls that the UIA property tree often misses.
package win32

import (
	"errors"
	"time"

	"github.com/winauto-dev/winrunner/pkg/core"
	"github.com/winauto-dev/winrunner/pkg/dpi"
	"github.com/winauto-dev/winrunner/pkg/win32"
)

// AgentClient defines the wire operations the driver needs.
// Implemented by win32.Client. Allows mocking in tests.
type AgentClient interface {
	Status() (bool, error)
	Start(path string, args []string) (int, error)
	Attach(identifier string) (int, error)
	FindWindow(pid int, strategy, value string, timeout time.Duration) (*win32.WindowRef, error)
	FindControl(hwnd, strategy, value string, timeout time.Duration) (*win32.ControlRef, error)
	FindControls(hwnd, strategy, value string, timeout time.Duration) ([]win32.ControlRef, error)
	Click(ref, button string, count, xOffset, yOffset int) error
	SendKeys(ref, text string, clearFirst bool) error
	GetText(ref string) (string, error)
	SetText(ref, text string) error
	State(ref string) (*win32.ControlState, error)
	Close(pid int, timeout time.Duration) error
}

// Driver implements core.Driver against the control-tree agent.
type Driver struct {
	client AgentClient
	scaler *dpi.Adapter // nil when DPI adaptation is disabled
}

// New creates a win32 driver. scaler may be nil to pass offsets through
// unscaled.
func New(client AgentClient, scaler *dpi.Adapter) *Driver {
	return &Driver{client: client, scaler: scaler}
}

// Name returns the backend identifier.
func (d *Driver) Name() core.BackendID {
	return core.BackendWin32
}

// StartApplication launches a process via the agent.
func (d *Driver) StartApplication(path string, args []string) (core.ApplicationHandle, error) {
	pid, err := d.client.Start(path, args)
	if err != nil {
		return core.ApplicationHandle{}, &core.LaunchError{Path: path, Err: err}
	}
	return core.ApplicationHandle{
		Backend:   core.BackendWin32,
		PID:       pid,
		Path:      path,
		CreatedAt: time.Now(),
	}, nil
}

// AttachApplication connects to a running process via the agent.
func (d *Driver) AttachApplication(identifier string) (core.ApplicationHandle, error) {
	pid, err := d.client.Attach(identifier)
	if err != nil {
		return core.ApplicationHandle{}, &core.AttachError{Identifier: identifier, Err: err}
	}
	return core.ApplicationHandle{
		Backend:   core.BackendWin32,
		PID:       pid,
		CreatedAt: time.Now(),
	}, nil
}

// FindWindow locates a top-level window of the application.
func (d *Driver) FindWindow(app core.ApplicationHandle, criteria core.Criteria, timeout time.Duration) (core.WindowHandle, error) {
	ref, err := d.client.FindWindow(app.PID, criteria.Strategy, criteria.Value, timeout)
	if err != nil {
		return core.WindowHandle{}, mapAgentError(err)
	}
	return core.WindowHandle{
		Backend:   core.BackendWin32,
		NativeRef: ref.HWND,
		Title:     ref.Title,
		OwnerPID:  ref.PID,
		CreatedAt: time.Now(),
	}, nil
}

// FindElement locates a single control under the window.
func (d *Driver) FindElement(parent core.WindowHandle, criteria core.Criteria, timeout time.Duration) (core.ElementHandle, error) {
	ref, err := d.client.FindControl(parent.NativeRef, criteria.Strategy, criteria.Value, timeout)
	if err != nil {
		return core.ElementHandle{}, mapAgentError(err)
	}
	return core.ElementHandle{
		Backend:   core.BackendWin32,
		NativeRef: ref.Ref,
		OwnerPID:  ref.PID,
		CreatedAt: time.Now(),
	}, nil
}

// FindElements locates all matching controls. No match is an empty slice.
func (d *Driver) FindElements(parent core.WindowHandle, criteria core.Criteria, timeout time.Duration) ([]core.ElementHandle, error) {
	refs, err := d.client.FindControls(parent.NativeRef, criteria.Strategy, criteria.Value, timeout)
	if err != nil {
		if errors.Is(mapAgentError(err), core.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	handles := make([]core.ElementHandle, 0, len(refs))
	now := time.Now()
	for _, ref := range refs {
		handles = append(handles, core.ElementHandle{
			Backend:   core.BackendWin32,
			NativeRef: ref.Ref,
			OwnerPID:  ref.PID,
			CreatedAt: now,
		})
	}
	return handles, nil
}

// Click presses the primary button at offset from the control origin.
func (d *Driver) Click(handle core.ElementHandle, offset core.Point) error {
	x, y := d.scaleOffset(offset)
	return d.client.Click(handle.NativeRef, "left", 1, x, y)
}

// DoubleClick double-presses the primary button.
func (d *Driver) DoubleClick(handle core.ElementHandle, offset core.Point) error {
	x, y := d.scaleOffset(offset)
	return d.client.Click(handle.NativeRef, "left", 2, x, y)
}

// RightClick presses the secondary button.
func (d *Driver) RightClick(handle core.ElementHandle, offset core.Point) error {
	x, y := d.scaleOffset(offset)
	return d.client.Click(handle.NativeRef, "right", 1, x, y)
}

// TypeText injects text into the control.
func (d *Driver) TypeText(handle core.ElementHandle, text string, clearFirst bool) error {
	return d.client.SendKeys(handle.NativeRef, text, clearFirst)
}

// GetText reads the control's window text.
func (d *Driver) GetText(handle core.ElementHandle) (string, error) {
	return d.client.GetText(handle.NativeRef)
}

// SetText replaces the control's window text.
func (d *Driver) SetText(handle core.ElementHandle, text string) error {
	return d.client.SetText(handle.NativeRef, text)
}

// IsEnabled reports whether the control accepts input.
func (d *Driver) IsEnabled(handle core.ElementHandle) bool {
	state, err := d.client.State(handle.NativeRef)
	return err == nil && state.Exists && state.Enabled
}

// IsVisible reports whether the control is displayed.
func (d *Driver) IsVisible(handle core.ElementHandle) bool {
	state, err := d.client.State(handle.NativeRef)
	return err == nil && state.Exists && state.Visible
}

// IsValid reports whether the handle still refers to a live control. Probe
// failures count as invalid, never as errors.
func (d *Driver) IsValid(handle core.ElementHandle) bool {
	if handle.IsZero() {
		return false
	}
	state, err := d.client.State(handle.NativeRef)
	return err == nil && state.Exists
}

func (d *Driver) scaleOffset(offset core.Point) (int, int) {
	if d.scaler == nil {
		return offset.X, offset.Y
	}
	return d.scaler.LogicalToPhysical(offset.X, offset.Y)
}

// mapAgentError translates agent failure codes into the core taxonomy.
func mapAgentError(err error) error {
	var agentErr *win32.AgentError
	if errors.As(err, &agentErr) {
		switch agentErr.Code {
		case win32.CodeNotFound:
			return core.ErrNotFound
		case win32.CodeStaleRef:
			return core.ErrStaleHandle
		}
	}
	return err
}
