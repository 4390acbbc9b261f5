package uia

import (
	"encoding/json"
	"fmt"
)

// Element is a WebDriver element reference bound to its client.
type Element struct {
	client *Client
	id     string
}

// ID returns the agent-side element reference.
func (e *Element) ID() string {
	return e.id
}

// Element rebinds a previously obtained element reference to the client.
func (c *Client) Element(id string) *Element {
	return &Element{client: c, id: id}
}

// FindElementRequest is a WebDriver element search.
type FindElementRequest struct {
	Using string `json:"using"`
	Value string `json:"value"`
}

// w3cElementKey is the element reference key used by W3C-dialect servers.
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// decodeElementID pulls the element reference out of a find response,
// accepting both legacy ELEMENT and W3C keys.
func decodeElementID(raw map[string]interface{}) string {
	if id, ok := raw["ELEMENT"].(string); ok && id != "" {
		return id
	}
	if id, ok := raw[w3cElementKey].(string); ok {
		return id
	}
	return ""
}

// FindElement searches the whole session for a single element.
func (c *Client) FindElement(strategy, selector string) (*Element, error) {
	return c.findOne(c.sessionPath("/element"), strategy, selector)
}

// FindElementFrom searches below the given parent element.
func (c *Client) FindElementFrom(parentID, strategy, selector string) (*Element, error) {
	return c.findOne(c.sessionPath("/element/"+parentID+"/element"), strategy, selector)
}

func (c *Client) findOne(path, strategy, selector string) (*Element, error) {
	data, err := c.request("POST", path, FindElementRequest{Using: strategy, Value: selector})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Value map[string]interface{} `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse element response: %w", err)
	}

	id := decodeElementID(resp.Value)
	if id == "" {
		return nil, &DriverError{Kind: ErrKindNoSuchElement, Message: "no element reference in response"}
	}
	return &Element{client: c, id: id}, nil
}

// FindElements searches the whole session for all matches. No match is an
// empty slice.
func (c *Client) FindElements(strategy, selector string) ([]*Element, error) {
	return c.findAll(c.sessionPath("/elements"), strategy, selector)
}

// FindElementsFrom searches below the given parent element.
func (c *Client) FindElementsFrom(parentID, strategy, selector string) ([]*Element, error) {
	return c.findAll(c.sessionPath("/element/"+parentID+"/elements"), strategy, selector)
}

func (c *Client) findAll(path, strategy, selector string) ([]*Element, error) {
	data, err := c.request("POST", path, FindElementRequest{Using: strategy, Value: selector})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Value []map[string]interface{} `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse elements response: %w", err)
	}

	elems := make([]*Element, 0, len(resp.Value))
	for _, raw := range resp.Value {
		if id := decodeElementID(raw); id != "" {
			elems = append(elems, &Element{client: c, id: id})
		}
	}
	return elems, nil
}

// Click clicks the element center.
func (e *Element) Click() error {
	_, err := e.client.request("POST", e.path("/click"), nil)
	return err
}

// path returns the element's endpoint path.
func (e *Element) path(suffix string) string {
	return e.client.sessionPath("/element/" + e.id + suffix)
}

// Value types text into the element.
func (e *Element) Value(text string) error {
	req := struct {
		Value []string `json:"value"`
	}{[]string{text}}
	_, err := e.client.request("POST", e.path("/value"), req)
	return err
}

// Clear empties the element's editable content.
func (e *Element) Clear() error {
	_, err := e.client.request("POST", e.path("/clear"), nil)
	return err
}

// Text reads the element's text.
func (e *Element) Text() (string, error) {
	data, err := e.client.request("GET", e.path("/text"), nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	return resp.Value, nil
}

// IsEnabled reports whether the element accepts input.
func (e *Element) IsEnabled() (bool, error) {
	return e.boolEndpoint("/enabled")
}

// IsDisplayed reports whether the element is visible.
func (e *Element) IsDisplayed() (bool, error) {
	return e.boolEndpoint("/displayed")
}

func (e *Element) boolEndpoint(suffix string) (bool, error) {
	data, err := e.client.request("GET", e.path(suffix), nil)
	if err != nil {
		return false, err
	}

	var resp struct {
		Value bool `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, err
	}
	return resp.Value, nil
}

// Attribute reads a UIA property of the element.
func (e *Element) Attribute(name string) (string, error) {
	data, err := e.client.request("GET", e.path("/attribute/"+name), nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}
	return resp.Value, nil
}

// MoveTo positions the pointer at an offset from the element origin.
func (c *Client) MoveTo(elementID string, xOffset, yOffset int) error {
	req := struct {
		Element string `json:"element"`
		XOffset int    `json:"xoffset"`
		YOffset int    `json:"yoffset"`
	}{elementID, xOffset, yOffset}
	_, err := c.request("POST", c.sessionPath("/moveto"), req)
	return err
}

// ClickButton presses a pointer button at the current position. Button 0 is
// primary, 2 secondary.
func (c *Client) ClickButton(button int) error {
	req := struct {
		Button int `json:"button"`
	}{button}
	_, err := c.request("POST", c.sessionPath("/click"), req)
	return err
}

// DoubleClickPointer double-presses the primary button at the current
// position.
func (c *Client) DoubleClickPointer() error {
	_, err := c.request("POST", c.sessionPath("/doubleclick"), nil)
	return err
}
