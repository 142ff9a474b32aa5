package dashboard

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestGlobalKeys_ContainsExpected(t *testing.T) {
	// Given: the global key map
	km := GlobalKeyMap()
	var all []string
	for _, group := range km.FullHelp() {
		all = append(all, collectKeys(group)...)
	}

	// Then: tab switching, digits, help and quit are bound
	for _, want := range []string{"tab", "shift+tab", "1", "3", "?", "q", "ctrl+c"} {
		if !containsKey(all, want) {
			t.Errorf("GlobalKeyMap missing key %q, got %v", want, all)
		}
	}
}

func TestGlobalKeys_ShortHelpIsSubset(t *testing.T) {
	km := GlobalKeyMap()
	short := collectKeys(km.ShortHelp())
	if !containsKey(short, "tab") || !containsKey(short, "q") {
		t.Errorf("ShortHelp keys = %v", short)
	}
	if containsKey(short, "shift+tab") {
		t.Error("shift+tab belongs in full help only")
	}
}

func collectKeys(bindings []key.Binding) []string {
	var keys []string
	for _, b := range bindings {
		keys = append(keys, b.Keys()...)
	}
	return keys
}

func containsKey(keys []string, want string) bool {
	for _, k := range keys {
		if k == want {
			return true
		}
	}
	return false
}
