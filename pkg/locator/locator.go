// Package locator parses compact locator strings such as "id=submit" or
// "name=用户名" into typed queries and translates them into backend-specific
// search criteria.
//
// The string grammar is a stable wire format embedded in test suites:
// "<prefix>=<value>" with prefixes id|name|class|xpath, or a bare string
// that matches window/element titles.
package locator

import (
	"fmt"
	"strings"

	"github.com/winauto-dev/winrunner/pkg/core"
)

// Kind classifies how a locator value is matched.
type Kind string

const (
	AutomationID Kind = "id"
	Name         Kind = "name"
	ClassName    Kind = "class"
	XPath        Kind = "xpath"
	Title        Kind = "title"
)

// prefixes in priority order; first match wins.
var prefixes = []struct {
	prefix string
	kind   Kind
}{
	{"id=", AutomationID},
	{"name=", Name},
	{"class=", ClassName},
	{"xpath=", XPath},
}

// Locator is a parsed, typed element query. Immutable once parsed.
type Locator struct {
	Kind  Kind
	Value string
}

// Parse converts a raw locator string into a Locator. The empty string is
// rejected with core.ErrInvalidLocator. A string without a recognized
// prefix becomes a Title locator. Parse performs no native lookups.
func Parse(raw string) (Locator, error) {
	if raw == "" {
		return Locator{}, fmt.Errorf("%w: empty string", core.ErrInvalidLocator)
	}

	for _, p := range prefixes {
		if strings.HasPrefix(raw, p.prefix) {
			return Locator{Kind: p.kind, Value: raw[len(p.prefix):]}, nil
		}
	}

	return Locator{Kind: Title, Value: raw}, nil
}

// String renders the locator back into grammar form.
func (l Locator) String() string {
	if l.Kind == Title {
		return l.Value
	}
	return string(l.Kind) + "=" + l.Value
}

// Format builds a locator string from a kind and value.
func Format(kind Kind, value string) string {
	return Locator{Kind: kind, Value: value}.String()
}

// Split breaks a comma-merged locator list ("id=a, name=b") into its parts.
func Split(merged string) []string {
	parts := strings.Split(merged, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Join merges locator strings into a comma-separated list.
func Join(locators ...string) string {
	return strings.Join(locators, ",")
}
