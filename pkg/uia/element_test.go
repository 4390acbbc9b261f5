package uia

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL), server
}

func newTestClientWithSession(handler http.HandlerFunc) (*Client, *httptest.Server) {
	client, server := newTestClient(handler)
	client.sessionID = "test-session"
	return client, server
}

func TestStatus(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("expected /status, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{"build": map[string]string{"version": "1.2"}},
		})
	})
	defer server.Close()

	ready, err := client.Status()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ready {
		t.Error("expected ready")
	}
}

func TestCreateSession(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/session" {
			t.Errorf("expected /session, got %s", r.URL.Path)
		}

		var req struct {
			DesiredCapabilities Capabilities `json:"desiredCapabilities"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.DesiredCapabilities.App != `C:\Windows\notepad.exe` {
			t.Errorf("unexpected app %q", req.DesiredCapabilities.App)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"sessionId": "session-42",
		})
	})
	defer server.Close()

	err := client.CreateSession(Capabilities{App: `C:\Windows\notepad.exe`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.SessionID() != "session-42" {
		t.Errorf("expected session-42, got %s", client.SessionID())
	}
}

func TestCreateSessionW3CResponse(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{"sessionId": "w3c-session"},
		})
	})
	defer server.Close()

	if err := client.CreateSession(Capabilities{App: "Root"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.SessionID() != "w3c-session" {
		t.Errorf("expected w3c-session, got %s", client.SessionID())
	}
}

func TestDeleteSession(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"value": nil})
	})
	defer server.Close()

	if err := client.DeleteSession(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.HasSession() {
		t.Error("expected session to be cleared")
	}
}

func TestFindElement(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/element") {
			t.Errorf("expected /element suffix, got %s", r.URL.Path)
		}

		var req FindElementRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Using != "accessibility id" {
			t.Errorf("expected accessibility id strategy, got %s", req.Using)
		}
		if req.Value != "btn_save" {
			t.Errorf("expected btn_save, got %s", req.Value)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{"ELEMENT": "element-123"},
		})
	})
	defer server.Close()

	elem, err := client.FindElement("accessibility id", "btn_save")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elem.ID() != "element-123" {
		t.Errorf("expected element-123, got %s", elem.ID())
	}
}

func TestFindElementW3CKey(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{w3cElementKey: "element-w3c"},
		})
	})
	defer server.Close()

	elem, err := client.FindElement("name", "OK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elem.ID() != "element-w3c" {
		t.Errorf("expected element-w3c, got %s", elem.ID())
	}
}

func TestFindElementNotFound(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{
				"error":   "no such element",
				"message": "no element matched xpath //*[@Name='missing']",
			},
		})
	})
	defer server.Close()

	_, err := client.FindElement("xpath", "//*[@Name='missing']")
	var driverErr *DriverError
	if !errors.As(err, &driverErr) {
		t.Fatalf("expected DriverError, got %v", err)
	}
	if driverErr.Kind != ErrKindNoSuchElement {
		t.Errorf("expected %q, got %q", ErrKindNoSuchElement, driverErr.Kind)
	}
}

func TestFindElementFrom(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/element/parent-123/element") {
			t.Errorf("expected parent-scoped path, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{"ELEMENT": "child-456"},
		})
	})
	defer server.Close()

	elem, err := client.FindElementFrom("parent-123", "name", "child")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elem.ID() != "child-456" {
		t.Errorf("expected child-456, got %s", elem.ID())
	}
}

func TestFindElementsEmpty(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/elements") {
			t.Errorf("expected /elements suffix, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]interface{}{},
		})
	})
	defer server.Close()

	elems, err := client.FindElements("class name", "Button")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elems) != 0 {
		t.Errorf("expected no elements, got %d", len(elems))
	}
}

func TestElementText(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/text") {
			t.Errorf("expected /text suffix, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"value": "登录"})
	})
	defer server.Close()

	elem := &Element{client: client, id: "element-123"}
	text, err := elem.Text()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "登录" {
		t.Errorf("expected 登录, got %s", text)
	}
}

func TestElementValue(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Value []string `json:"value"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Value) != 1 || req.Value[0] != "hello" {
			t.Errorf("unexpected value payload %v", req.Value)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"value": nil})
	})
	defer server.Close()

	elem := &Element{client: client, id: "element-123"}
	if err := elem.Value("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestElementDisplayedStale(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{
				"error":   "stale element reference",
				"message": "the element is no longer attached to the UI tree",
			},
		})
	})
	defer server.Close()

	elem := &Element{client: client, id: "element-dead"}
	_, err := elem.IsDisplayed()
	var driverErr *DriverError
	if !errors.As(err, &driverErr) {
		t.Fatalf("expected DriverError, got %v", err)
	}
	if driverErr.Kind != ErrKindStaleElement {
		t.Errorf("expected %q, got %q", ErrKindStaleElement, driverErr.Kind)
	}
}

func TestMoveToAndClickButton(t *testing.T) {
	var paths []string
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"value": nil})
	})
	defer server.Close()

	if err := client.MoveTo("element-123", 5, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.ClickButton(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(paths) != 2 || !strings.HasSuffix(paths[0], "/moveto") || !strings.HasSuffix(paths[1], "/click") {
		t.Errorf("unexpected request paths %v", paths)
	}
}
