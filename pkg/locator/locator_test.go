package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winauto-dev/winrunner/pkg/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw   string
		kind  Kind
		value string
	}{
		{"id=submit", AutomationID, "submit"},
		{"name=用户名", Name, "用户名"},
		{"class=Edit", ClassName, "Edit"},
		{"xpath=//Button[@Name='OK']", XPath, "//Button[@Name='OK']"},
		{"Save As", Title, "Save As"},
		{"no-prefix-string", Title, "no-prefix-string"},
		// Unrecognized prefix falls through to title, '=' included.
		{"css=#submit", Title, "css=#submit"},
		// Value may itself contain '='.
		{"name=a=b", Name, "a=b"},
		{"id=", AutomationID, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, loc.Kind)
			assert.Equal(t, tt.value, loc.Value)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, core.ErrInvalidLocator)
}

func TestString(t *testing.T) {
	for _, raw := range []string{"id=submit", "name=登录", "class=Edit", "xpath=//Edit", "Save As"} {
		loc, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, loc.String())
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "id=btn_login", Format(AutomationID, "btn_login"))
	assert.Equal(t, "name=登录", Format(Name, "登录"))
	assert.Equal(t, "OK", Format(Title, "OK"))
}

func TestSplitJoin(t *testing.T) {
	merged := Join("id=btn_login", "name=登录")
	assert.Equal(t, "id=btn_login,name=登录", merged)
	assert.Equal(t, []string{"id=btn_login", "name=登录"}, Split(merged))
	assert.Equal(t, []string{"id=a", "name=b"}, Split("id=a, name=b, "))
}

func TestWin32Criteria(t *testing.T) {
	tests := []struct {
		raw      string
		strategy string
		value    string
	}{
		{"id=submit", "auto_id", "submit"},
		{"name=登录", "name", "登录"},
		{"class=Button", "class_name", "Button"},
		{"Save As", "title", "Save As"},
		// XPath degrades to a title-contains match on the Name attribute.
		{"xpath=//Button[@Name='OK']", "title", "OK"},
		// No Name attribute to salvage: raw expression matched as title.
		{"xpath=//Button", "title", "//Button"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc, err := Parse(tt.raw)
			require.NoError(t, err)
			c := loc.Criteria(core.BackendWin32)
			assert.Equal(t, core.BackendWin32, c.Backend)
			assert.Equal(t, tt.strategy, c.Strategy)
			assert.Equal(t, tt.value, c.Value)
		})
	}
}

func TestUIACriteria(t *testing.T) {
	tests := []struct {
		raw      string
		strategy string
		value    string
	}{
		{"id=submit", "accessibility id", "submit"},
		{"name=登录", "name", "登录"},
		{"class=Button", "class name", "Button"},
		{"xpath=//Button[@Name='OK']", "xpath", "//Button[@Name='OK']"},
		{"Save As", "xpath", "//*[contains(@Name, 'Save As')]"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			loc, err := Parse(tt.raw)
			require.NoError(t, err)
			c := loc.Criteria(core.BackendUIA)
			assert.Equal(t, core.BackendUIA, c.Backend)
			assert.Equal(t, tt.strategy, c.Strategy)
			assert.Equal(t, tt.value, c.Value)
		})
	}
}

func TestXPathSynthesis(t *testing.T) {
	assert.Equal(t, "//*[@AutomationId='btn']", Locator{Kind: AutomationID, Value: "btn"}.XPath())
	assert.Equal(t, "//*[@Name='登录']", Locator{Kind: Name, Value: "登录"}.XPath())
	assert.Equal(t, "//Edit", Locator{Kind: ClassName, Value: "Edit"}.XPath())
	assert.Equal(t, "//Button", Locator{Kind: XPath, Value: "//Button"}.XPath())
}

func TestXPathQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, xpathQuote("plain"))
	assert.Equal(t, `"it's"`, xpathQuote("it's"))
	assert.Equal(t, `'say "hi"'`, xpathQuote(`say "hi"`))
	assert.Equal(t, `concat('it', "'", 's "x"')`, xpathQuote(`it's "x"`))
}
