// Package uia is the wire client for the UI-tree property backend. The
// agent is a WinAppDriver-style server speaking the WebDriver JSON wire
// protocol; elements are searched by UIA properties (AutomationId, Name,
// ClassName) or XPath over the property tree.
package uia

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the agent address when none is configured.
const DefaultEndpoint = "http://127.0.0.1:4723"

// Client communicates with the UIA agent.
type Client struct {
	http      *http.Client
	baseURL   string
	sessionID string
}

// NewClient creates a client for the agent at baseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultEndpoint
	}
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SessionID returns the current session ID.
func (c *Client) SessionID() string {
	return c.sessionID
}

// HasSession returns true if a session is active.
func (c *Client) HasSession() bool {
	return c.sessionID != ""
}

// Response is the generic WebDriver response envelope.
type Response struct {
	SessionID string      `json:"sessionId,omitempty"`
	Status    int         `json:"status,omitempty"`
	Value     interface{} `json:"value,omitempty"`
}

// DriverError is a structured WebDriver failure.
type DriverError struct {
	Kind    string // e.g. "no such element", "stale element reference"
	Message string
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WebDriver error kinds the drivers branch on.
const (
	ErrKindNoSuchElement = "no such element"
	ErrKindStaleElement  = "stale element reference"
	ErrKindNoSuchWindow  = "no such window"
)

// request makes an HTTP request to the agent.
func (c *Client) request(method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseDriverError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// parseDriverError extracts the WebDriver error detail from a failure body.
func parseDriverError(statusCode int, body []byte) error {
	var errResp Response
	if json.Unmarshal(body, &errResp) == nil {
		if errVal, ok := errResp.Value.(map[string]interface{}); ok {
			kind, _ := errVal["error"].(string)
			msg, _ := errVal["message"].(string)
			if kind != "" || msg != "" {
				return &DriverError{Kind: kind, Message: msg}
			}
		}
	}
	return fmt.Errorf("agent error %d: %s", statusCode, string(body))
}

// sessionPath returns path with the session ID prefix.
func (c *Client) sessionPath(path string) string {
	return fmt.Sprintf("/session/%s%s", c.sessionID, path)
}

// Status checks if the agent is up. The WebDriver status endpoint has no
// ready flag; reachability is readiness.
func (c *Client) Status() (bool, error) {
	if _, err := c.request("GET", "/status", nil); err != nil {
		return false, err
	}
	return true, nil
}

// Capabilities describe the application a session binds to. Exactly one of
// App or TopLevelWindow should be set; App Root sessions use App "Root".
type Capabilities struct {
	App            string `json:"app,omitempty"`
	AppArguments   string `json:"appArguments,omitempty"`
	TopLevelWindow string `json:"appTopLevelWindow,omitempty"`
}

// CreateSession starts an automation session for the given capabilities.
func (c *Client) CreateSession(caps Capabilities) error {
	req := struct {
		DesiredCapabilities Capabilities `json:"desiredCapabilities"`
	}{caps}

	data, err := c.request("POST", "/session", req)
	if err != nil {
		return err
	}

	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("parse session response: %w", err)
	}

	if resp.SessionID == "" {
		// W3C-style servers nest the id under value.
		var altResp struct {
			Value struct {
				SessionID string `json:"sessionId"`
			} `json:"value"`
		}
		if json.Unmarshal(data, &altResp) == nil && altResp.Value.SessionID != "" {
			resp.SessionID = altResp.Value.SessionID
		}
	}

	if resp.SessionID == "" {
		return fmt.Errorf("no session ID in response")
	}

	c.sessionID = resp.SessionID
	return nil
}

// DeleteSession ends the current session.
func (c *Client) DeleteSession() error {
	if c.sessionID == "" {
		return nil
	}

	_, err := c.request("DELETE", c.sessionPath(""), nil)
	c.sessionID = ""
	return err
}

// Close ends the session and cleans up.
func (c *Client) Close() error {
	return c.DeleteSession()
}
