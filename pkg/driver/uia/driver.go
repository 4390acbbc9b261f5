// Package uia binds the core driver contract to the UI-tree property agent
// (WebDriver protocol). It covers modern UIA-exposed controls and supports
// native XPath search.
package uia

import (
	"errors"
	"strings"
	"time"

	"github.com/winauto-dev/winrunner/pkg/core"
	"github.com/winauto-dev/winrunner/pkg/dpi"
	"github.com/winauto-dev/winrunner/pkg/uia"
)

// Client defines the wire operations the driver needs.
// Implemented by uia.Client. Allows mocking in tests.
type Client interface {
	Status() (bool, error)
	CreateSession(caps uia.Capabilities) error
	DeleteSession() error
	SessionID() string
	HasSession() bool
	Element(id string) *uia.Element
	FindElement(strategy, selector string) (*uia.Element, error)
	FindElementFrom(parentID, strategy, selector string) (*uia.Element, error)
	FindElementsFrom(parentID, strategy, selector string) ([]*uia.Element, error)
	MoveTo(elementID string, xOffset, yOffset int) error
	ClickButton(button int) error
	DoubleClickPointer() error
}

// Driver implements core.Driver against the UIA agent.
type Driver struct {
	client Client
	scaler *dpi.Adapter // nil when DPI adaptation is disabled
}

// New creates a uia driver. scaler may be nil to pass offsets through
// unscaled.
func New(client Client, scaler *dpi.Adapter) *Driver {
	return &Driver{client: client, scaler: scaler}
}

// Name returns the backend identifier.
func (d *Driver) Name() core.BackendID {
	return core.BackendUIA
}

// StartApplication launches the application by creating a session bound to
// its executable.
func (d *Driver) StartApplication(path string, args []string) (core.ApplicationHandle, error) {
	caps := uia.Capabilities{
		App:          path,
		AppArguments: strings.Join(args, " "),
	}
	if err := d.client.CreateSession(caps); err != nil {
		return core.ApplicationHandle{}, &core.LaunchError{Path: path, Err: err}
	}
	return core.ApplicationHandle{
		Backend:   core.BackendUIA,
		NativeRef: d.client.SessionID(),
		Path:      path,
		CreatedAt: time.Now(),
	}, nil
}

// AttachApplication binds a session to an existing top-level window.
func (d *Driver) AttachApplication(identifier string) (core.ApplicationHandle, error) {
	caps := uia.Capabilities{TopLevelWindow: identifier}
	if err := d.client.CreateSession(caps); err != nil {
		return core.ApplicationHandle{}, &core.AttachError{Identifier: identifier, Err: err}
	}
	return core.ApplicationHandle{
		Backend:   core.BackendUIA,
		NativeRef: d.client.SessionID(),
		CreatedAt: time.Now(),
	}, nil
}

// FindWindow locates a top-level window element matching criteria. The
// window handle wraps the element reference; UIA has no separate window
// object.
func (d *Driver) FindWindow(app core.ApplicationHandle, criteria core.Criteria, timeout time.Duration) (core.WindowHandle, error) {
	elem, err := d.pollFind(func() (*uia.Element, error) {
		return d.client.FindElement(criteria.Strategy, criteria.Value)
	}, timeout)
	if err != nil {
		return core.WindowHandle{}, err
	}

	win := core.WindowHandle{
		Backend:   core.BackendUIA,
		NativeRef: elem.ID(),
		CreatedAt: time.Now(),
	}
	if name, err := elem.Attribute("Name"); err == nil {
		win.Title = name
	}
	return win, nil
}

// FindElement locates a single element under the parent window.
//
// The agent's implicit wait is unreliable, so the search polls client-side
// until the deadline. No sleep between retries: the HTTP round-trip is the
// natural rate limit.
func (d *Driver) FindElement(parent core.WindowHandle, criteria core.Criteria, timeout time.Duration) (core.ElementHandle, error) {
	elem, err := d.pollFind(func() (*uia.Element, error) {
		return d.client.FindElementFrom(parent.NativeRef, criteria.Strategy, criteria.Value)
	}, timeout)
	if err != nil {
		return core.ElementHandle{}, err
	}

	return core.ElementHandle{
		Backend:   core.BackendUIA,
		NativeRef: elem.ID(),
		CreatedAt: time.Now(),
	}, nil
}

// FindElements locates all matching elements under the parent window in a
// single search. No match is an empty slice.
func (d *Driver) FindElements(parent core.WindowHandle, criteria core.Criteria, timeout time.Duration) ([]core.ElementHandle, error) {
	elems, err := d.client.FindElementsFrom(parent.NativeRef, criteria.Strategy, criteria.Value)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	handles := make([]core.ElementHandle, 0, len(elems))
	now := time.Now()
	for _, e := range elems {
		handles = append(handles, core.ElementHandle{
			Backend:   core.BackendUIA,
			NativeRef: e.ID(),
			CreatedAt: now,
		})
	}
	return handles, nil
}

// pollFind retries find until it succeeds or the deadline passes. Searches
// that exhaust the timeout surface core.ErrNotFound; other failures
// propagate as-is.
func (d *Driver) pollFind(find func() (*uia.Element, error), timeout time.Duration) (*uia.Element, error) {
	deadline := time.Now().Add(timeout)
	for {
		elem, err := find()
		if err == nil {
			return elem, nil
		}
		if !isNotFound(err) {
			return nil, err
		}
		if time.Now().After(deadline) {
			return nil, core.ErrNotFound
		}
	}
}

// Click presses the primary button. A zero offset clicks the element
// center via the element endpoint; otherwise the pointer is positioned
// relative to the element origin first.
func (d *Driver) Click(handle core.ElementHandle, offset core.Point) error {
	if offset == (core.Point{}) {
		return d.client.Element(handle.NativeRef).Click()
	}
	x, y := d.scaleOffset(offset)
	if err := d.client.MoveTo(handle.NativeRef, x, y); err != nil {
		return err
	}
	return d.client.ClickButton(0)
}

// DoubleClick double-presses the primary button.
func (d *Driver) DoubleClick(handle core.ElementHandle, offset core.Point) error {
	x, y := d.scaleOffset(offset)
	if err := d.client.MoveTo(handle.NativeRef, x, y); err != nil {
		return err
	}
	return d.client.DoubleClickPointer()
}

// RightClick presses the secondary button.
func (d *Driver) RightClick(handle core.ElementHandle, offset core.Point) error {
	x, y := d.scaleOffset(offset)
	if err := d.client.MoveTo(handle.NativeRef, x, y); err != nil {
		return err
	}
	return d.client.ClickButton(2)
}

// TypeText injects text into the element.
func (d *Driver) TypeText(handle core.ElementHandle, text string, clearFirst bool) error {
	elem := d.client.Element(handle.NativeRef)
	if clearFirst {
		if err := elem.Clear(); err != nil {
			return err
		}
	}
	return elem.Value(text)
}

// GetText reads the element's text.
func (d *Driver) GetText(handle core.ElementHandle) (string, error) {
	return d.client.Element(handle.NativeRef).Text()
}

// SetText replaces the element's text.
func (d *Driver) SetText(handle core.ElementHandle, text string) error {
	return d.TypeText(handle, text, true)
}

// IsEnabled reports whether the element accepts input.
func (d *Driver) IsEnabled(handle core.ElementHandle) bool {
	enabled, err := d.client.Element(handle.NativeRef).IsEnabled()
	return err == nil && enabled
}

// IsVisible reports whether the element is displayed.
func (d *Driver) IsVisible(handle core.ElementHandle) bool {
	displayed, err := d.client.Element(handle.NativeRef).IsDisplayed()
	return err == nil && displayed
}

// IsValid reports whether the handle still refers to a live element. A
// stale reference returns false, never an error.
func (d *Driver) IsValid(handle core.ElementHandle) bool {
	if handle.IsZero() {
		return false
	}
	_, err := d.client.Element(handle.NativeRef).IsDisplayed()
	return err == nil
}

func (d *Driver) scaleOffset(offset core.Point) (int, int) {
	if d.scaler == nil {
		return offset.X, offset.Y
	}
	return d.scaler.LogicalToPhysical(offset.X, offset.Y)
}

// isNotFound reports whether the failure means "nothing matched" rather
// than a transport or protocol error.
func isNotFound(err error) bool {
	var driverErr *uia.DriverError
	if errors.As(err, &driverErr) {
		return driverErr.Kind == uia.ErrKindNoSuchElement || driverErr.Kind == uia.ErrKindNoSuchWindow
	}
	return false
}
