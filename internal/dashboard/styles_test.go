package dashboard

import "testing"

func TestPaneWidths_Normal(t *testing.T) {
	// Given: a normal terminal width of 90
	// When: PaneWidths is computed
	left, right := PaneWidths(90)

	// Then: left is 2/3 and right is 1/3
	if left != 60 {
		t.Errorf("left = %d, want 60 (2/3 of 90)", left)
	}
	if right != 30 {
		t.Errorf("right = %d, want 30 (1/3 of 90)", right)
	}
}

func TestPaneWidths_MinLeft(t *testing.T) {
	// Given: a small terminal width of 40
	// When: PaneWidths is computed
	left, right := PaneWidths(40)

	// Then: left pane is at least MinLeftWidth and total equals input
	if left < MinLeftWidth {
		t.Errorf("left = %d, want >= %d", left, MinLeftWidth)
	}
	if left+right != 40 {
		t.Errorf("left+right = %d, want 40", left+right)
	}
}

func TestPaneWidths_VerySmall(t *testing.T) {
	// Given: a terminal width smaller than MinLeftWidth
	// When: PaneWidths is computed
	left, right := PaneWidths(20)

	// Then: left is clamped to MinLeftWidth and right is never negative
	if left != MinLeftWidth {
		t.Errorf("left = %d, want %d", left, MinLeftWidth)
	}
	if right != 0 {
		t.Errorf("right = %d, want 0", right)
	}
}

func TestPaneWidths_Zero(t *testing.T) {
	left, right := PaneWidths(0)
	if left != 0 || right != 0 {
		t.Errorf("PaneWidths(0) = %d, %d; want 0, 0", left, right)
	}
}

func TestBorders_Render(t *testing.T) {
	// Given: the focused and unfocused border styles
	// When: content is rendered in each
	// Then: both produce a bordered box containing the content
	for name, style := range map[string]func() string{
		"focused":   func() string { return FocusedBorder().Render("x") },
		"unfocused": func() string { return UnfocusedBorder().Render("x") },
	} {
		got := style()
		if !containsPlainText(got, "╭") || !containsPlainText(got, "x") {
			t.Errorf("%s border = %q", name, got)
		}
	}
}
