package win32

import "time"

// WindowRef identifies a window on the agent side.
type WindowRef struct {
	HWND  string `json:"hwnd"`
	Title string `json:"title"`
	PID   int    `json:"pid"`
}

// ControlRef identifies a control on the agent side. Refs are stable
// surrogates (runtime ids), not memory addresses.
type ControlRef struct {
	Ref string `json:"ref"`
	PID int    `json:"pid"`
}

// ControlState is the live state of a control.
type ControlState struct {
	Exists  bool `json:"exists"`
	Enabled bool `json:"enabled"`
	Visible bool `json:"visible"`
}

// Start launches a process and returns its pid.
func (c *Client) Start(path string, args []string) (int, error) {
	req := struct {
		Path string   `json:"path"`
		Args []string `json:"args,omitempty"`
	}{path, args}

	var v struct {
		PID int `json:"pid"`
	}
	if err := c.send("start", req, &v); err != nil {
		return 0, err
	}
	return v.PID, nil
}

// Attach connects to a running process by pid, process name or main-window
// title and returns its pid.
func (c *Client) Attach(identifier string) (int, error) {
	req := struct {
		Identifier string `json:"identifier"`
	}{identifier}

	var v struct {
		PID int `json:"pid"`
	}
	if err := c.send("attach", req, &v); err != nil {
		return 0, err
	}
	return v.PID, nil
}

// FindWindow searches the process's top-level windows. The agent blocks up
// to timeout and answers CodeNotFound when the search exhausts it.
func (c *Client) FindWindow(pid int, strategy, value string, timeout time.Duration) (*WindowRef, error) {
	req := struct {
		PID       int    `json:"pid"`
		Strategy  string `json:"strategy"`
		Value     string `json:"value"`
		TimeoutMs int64  `json:"timeout_ms"`
	}{pid, strategy, value, timeout.Milliseconds()}

	var v WindowRef
	if err := c.send("find_window", req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindControl searches the window's control tree for a single match.
func (c *Client) FindControl(hwnd, strategy, value string, timeout time.Duration) (*ControlRef, error) {
	req := findControlRequest(hwnd, strategy, value, timeout)

	var v ControlRef
	if err := c.send("find_control", req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindControls searches the window's control tree for all matches. No match
// is an empty slice, not an error.
func (c *Client) FindControls(hwnd, strategy, value string, timeout time.Duration) ([]ControlRef, error) {
	req := findControlRequest(hwnd, strategy, value, timeout)

	var v struct {
		Refs []ControlRef `json:"refs"`
	}
	if err := c.send("find_controls", req, &v); err != nil {
		return nil, err
	}
	return v.Refs, nil
}

type findControlArgs struct {
	HWND      string `json:"hwnd"`
	Strategy  string `json:"strategy"`
	Value     string `json:"value"`
	TimeoutMs int64  `json:"timeout_ms"`
}

func findControlRequest(hwnd, strategy, value string, timeout time.Duration) findControlArgs {
	return findControlArgs{HWND: hwnd, Strategy: strategy, Value: value, TimeoutMs: timeout.Milliseconds()}
}

// Click clicks a control. Button is "left" or "right", count 1 or 2, the
// offset is relative to the control origin in physical pixels.
func (c *Client) Click(ref, button string, count, xOffset, yOffset int) error {
	req := struct {
		Ref     string `json:"ref"`
		Button  string `json:"button"`
		Count   int    `json:"count"`
		XOffset int    `json:"x_offset"`
		YOffset int    `json:"y_offset"`
	}{ref, button, count, xOffset, yOffset}

	return c.send("click", req, nil)
}

// SendKeys types text into a control, optionally clearing it first.
func (c *Client) SendKeys(ref, text string, clearFirst bool) error {
	req := struct {
		Ref        string `json:"ref"`
		Text       string `json:"text"`
		ClearFirst bool   `json:"clear_first"`
	}{ref, text, clearFirst}

	return c.send("send_keys", req, nil)
}

// GetText reads a control's window text.
func (c *Client) GetText(ref string) (string, error) {
	req := struct {
		Ref string `json:"ref"`
	}{ref}

	var v struct {
		Text string `json:"text"`
	}
	if err := c.send("get_text", req, &v); err != nil {
		return "", err
	}
	return v.Text, nil
}

// SetText replaces a control's window text directly.
func (c *Client) SetText(ref, text string) error {
	req := struct {
		Ref  string `json:"ref"`
		Text string `json:"text"`
	}{ref, text}

	return c.send("set_text", req, nil)
}

// State reads a control's live state. A ref whose owning window has closed
// reports Exists false; the agent does not error on dead refs here.
func (c *Client) State(ref string) (*ControlState, error) {
	req := struct {
		Ref string `json:"ref"`
	}{ref}

	var v ControlState
	if err := c.send("state", req, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Close terminates the process, waiting up to timeout for it to exit.
func (c *Client) Close(pid int, timeout time.Duration) error {
	req := struct {
		PID       int   `json:"pid"`
		TimeoutMs int64 `json:"timeout_ms"`
	}{pid, timeout.Milliseconds()}

	return c.send("close", req, nil)
}
