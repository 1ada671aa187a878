package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/habibGamal/preparation-system/internal/config"
)

func TestGetBreakpoint(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutBreakpoint
	}{
		{40, BreakpointNarrow},
		{59, BreakpointNarrow},
		{60, BreakpointMedium},
		{99, BreakpointMedium},
		{100, BreakpointWide},
		{200, BreakpointWide},
	}
	for _, tt := range tests {
		if got := GetBreakpoint(tt.width); got != tt.want {
			t.Errorf("GetBreakpoint(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 6, "hello…"},
		{"كعك بالسمسم", 4, "كعك…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestContentSize(t *testing.T) {
	if got := ContentWidth(200, 40, 120); got != 120 {
		t.Errorf("ContentWidth capped = %d, want 120", got)
	}
	if got := ContentWidth(30, 40, 120); got != 40 {
		t.Errorf("ContentWidth floor = %d, want 40", got)
	}
	if got := ContentHeight(40, 6); got != 34 {
		t.Errorf("ContentHeight = %d, want 34", got)
	}
	if got := ContentHeight(8, 6); got != 5 {
		t.Errorf("ContentHeight floor = %d, want 5", got)
	}
}

func TestSideBySide(t *testing.T) {
	wide := SideBySide("left", "right", 40, 2)
	if strings.Contains(wide, "\n") {
		t.Errorf("expected a single line, got %q", wide)
	}
	narrow := SideBySide("left", "right", 8, 2)
	if !strings.Contains(narrow, "\n\n") {
		t.Errorf("expected stacked output, got %q", narrow)
	}
}

func TestProgressBar(t *testing.T) {
	theme := NewTheme(config.ColorSchemeGreenPhosphor)

	tests := []struct {
		done, total int
		filled      int
	}{
		{0, 10, 0},
		{5, 10, 5},
		{10, 10, 10},
		{15, 10, 10},
	}
	for _, tt := range tests {
		bar := theme.ProgressBar(tt.done, tt.total, 12)
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("ProgressBar(%d, %d) filled = %d, want %d", tt.done, tt.total, got, tt.filled)
		}
		if w := lipgloss.Width(bar); w != 12 {
			t.Errorf("ProgressBar width = %d, want 12", w)
		}
	}
}

func TestPanel(t *testing.T) {
	theme := NewTheme(config.ColorSchemeAmber)
	out := theme.Panel("RECIPES", "3 active", 30)
	if !strings.Contains(out, "RECIPES") || !strings.Contains(out, "3 active") {
		t.Errorf("unexpected panel:\n%s", out)
	}
}
