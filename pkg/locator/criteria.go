package locator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/winauto-dev/winrunner/pkg/core"
)

// Win32 agent search keys.
const (
	win32StrategyAutoID = "auto_id"
	win32StrategyName   = "name"
	win32StrategyClass  = "class_name"
	win32StrategyTitle  = "title"
)

// WebDriver locator strategies understood by the UIA agent.
const (
	uiaStrategyAccessibilityID = "accessibility id"
	uiaStrategyName            = "name"
	uiaStrategyClassName       = "class name"
	uiaStrategyXPath           = "xpath"
)

// xpathNameAttr extracts the Name predicate from expressions like
// //Button[@Name='OK'] so the win32 fallback can match on it.
var xpathNameAttr = regexp.MustCompile(`@Name\s*=\s*['"]([^'"]+)['"]`)

// Criteria translates the locator into the given backend's native search
// query.
//
// The win32 backend has no XPath engine: xpath locators degrade to a
// title-contains match on the expression's Name attribute (or the raw
// expression when none is present). This is a documented lossy fallback,
// not a silent failure; it can match the wrong element when titles repeat.
func (l Locator) Criteria(backend core.BackendID) core.Criteria {
	switch backend {
	case core.BackendWin32:
		return l.win32Criteria()
	default:
		return l.uiaCriteria()
	}
}

func (l Locator) win32Criteria() core.Criteria {
	c := core.Criteria{Backend: core.BackendWin32, Value: l.Value}
	switch l.Kind {
	case AutomationID:
		c.Strategy = win32StrategyAutoID
	case Name:
		c.Strategy = win32StrategyName
	case ClassName:
		c.Strategy = win32StrategyClass
	case XPath:
		c.Strategy = win32StrategyTitle
		if m := xpathNameAttr.FindStringSubmatch(l.Value); m != nil {
			c.Value = m[1]
		}
	default:
		c.Strategy = win32StrategyTitle
	}
	return c
}

func (l Locator) uiaCriteria() core.Criteria {
	c := core.Criteria{Backend: core.BackendUIA, Value: l.Value}
	switch l.Kind {
	case AutomationID:
		c.Strategy = uiaStrategyAccessibilityID
	case Name:
		c.Strategy = uiaStrategyName
	case ClassName:
		c.Strategy = uiaStrategyClassName
	case XPath:
		c.Strategy = uiaStrategyXPath
	default:
		// Titles are contains-matches; WebDriver name lookups are exact,
		// so synthesize an XPath contains expression.
		c.Strategy = uiaStrategyXPath
		c.Value = l.XPath()
	}
	return c
}

// XPath synthesizes an XPath expression equivalent to the locator, used by
// backends that search via the UIA property tree.
func (l Locator) XPath() string {
	switch l.Kind {
	case XPath:
		return l.Value
	case AutomationID:
		return fmt.Sprintf("//*[@AutomationId=%s]", xpathQuote(l.Value))
	case Name:
		return fmt.Sprintf("//*[@Name=%s]", xpathQuote(l.Value))
	case ClassName:
		return "//" + l.Value
	default:
		return fmt.Sprintf("//*[contains(@Name, %s)]", xpathQuote(l.Value))
	}
}

// xpathQuote wraps a literal for an XPath predicate, picking the quote
// style that does not collide with the value.
func xpathQuote(s string) string {
	if !strings.Contains(s, `'`) {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	// Both quote kinds present: concat pieces split on single quotes.
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if p != "" {
			quoted = append(quoted, "'"+p+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
