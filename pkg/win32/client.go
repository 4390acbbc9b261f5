// Package win32 is the wire client for the legacy control-tree automation
// agent. The agent walks native process/window/control trees and exposes
// them over a compact JSON command protocol on localhost.
package win32

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DefaultEndpoint is the agent address when none is configured.
const DefaultEndpoint = "http://127.0.0.1:8039"

// Client communicates with the control-tree agent.
type Client struct {
	http    *http.Client
	baseURL string
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
		baseURL: baseURL,
	}
}

// command is the request envelope. Every command carries a correlation ID
// the agent echoes back in its reply.
type command struct {
	ID   string      `json:"id"`
	Cmd  string      `json:"cmd"`
	Args interface{} `json:"args,omitempty"`
}

// reply is the response envelope.
type reply struct {
	ID    string          `json:"id"`
	OK    bool            `json:"ok"`
	Value json.RawMessage `json:"value,omitempty"`
	Error *AgentError     `json:"error,omitempty"`
}

// AgentError is a structured failure returned by the agent.
type AgentError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Agent error codes.
const (
	CodeNotFound     = "not_found"
	CodeLaunchFailed = "launch_failed"
	CodeAttachFailed = "attach_failed"
	CodeStaleRef     = "stale_ref"
)

// send posts a command and decodes the agent's reply value into out.
func (c *Client) send(cmd string, args, out interface{}) error {
	env := command{
		ID:   uuid.NewString(),
		Cmd:  cmd,
		Args: args,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/command", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send command %s: %w", cmd, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read reply: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("agent error %d: %s", resp.StatusCode, string(body))
	}

	var rep reply
	if err := json.Unmarshal(body, &rep); err != nil {
		return fmt.Errorf("parse reply: %w", err)
	}
	if !rep.OK {
		if rep.Error != nil {
			return rep.Error
		}
		return fmt.Errorf("command %s failed without error detail", cmd)
	}

	if out != nil && len(rep.Value) > 0 {
		if err := json.Unmarshal(rep.Value, out); err != nil {
			return fmt.Errorf("parse %s value: %w", cmd, err)
		}
	}
	return nil
}

// Status checks whether the agent is running and ready.
func (c *Client) Status() (bool, error) {
	var v struct {
		Ready   bool   `json:"ready"`
		Version string `json:"version"`
	}
	if err := c.send("status", nil, &v); err != nil {
		return false, err
	}
	return v.Ready, nil
}
