package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTable(t *testing.T) {
	table := NewTable([]Column{{Title: "Product", Width: 20}})
	if table == nil {
		t.Fatal("Expected non-nil table")
	}
	if !table.Empty() || table.RowCount() != 0 {
		t.Errorf("Expected empty table, got %d rows", table.RowCount())
	}
	if table.SelectedRow() != nil {
		t.Error("Expected nil selected row on empty table")
	}
}

func TestTable_Navigation(t *testing.T) {
	table := NewTable([]Column{{Title: "ID", Width: 5}})
	table.SetVisibleRows(2)
	table.SetRows([][]string{{"1"}, {"2"}, {"3"}, {"4"}})

	table.MoveUp()
	if table.Selected() != 0 {
		t.Errorf("Expected selected=0, got %d", table.Selected())
	}

	for range 10 {
		table.MoveDown()
	}
	if table.Selected() != 3 {
		t.Errorf("Expected selected=3, got %d", table.Selected())
	}
	if table.offset != 2 {
		t.Errorf("Expected offset=2 to keep selection visible, got %d", table.offset)
	}

	table.GoToTop()
	if table.Selected() != 0 || table.offset != 0 {
		t.Errorf("Expected top, got selected=%d offset=%d", table.Selected(), table.offset)
	}
}

func TestTable_SetRowsClampsSelection(t *testing.T) {
	table := NewTable([]Column{{Title: "ID", Width: 5}})
	table.SetRows([][]string{{"1"}, {"2"}, {"3"}})
	table.MoveDown()
	table.MoveDown()

	table.SetRows([][]string{{"1"}})
	if table.Selected() != 0 {
		t.Errorf("Expected selection clamped to 0, got %d", table.Selected())
	}
	if row := table.SelectedRow(); row == nil || row[0] != "1" {
		t.Errorf("Expected row [1], got %v", row)
	}
}

func TestTable_Render(t *testing.T) {
	table := NewTable([]Column{
		{Title: "Product", Width: 12},
		{Title: "Qty", Width: 6, Align: lipgloss.Right},
	})
	table.SetRows([][]string{{"دقيق فاخر", "12.5"}, {"A very long product name", "3"}})
	table.SetPagination(1, 2, 30)

	out := table.Render()
	for _, want := range []string{"Product", "دقيق فاخر", "A very long…", "Page 1/2 | 30 total"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		align lipgloss.Position
		want  string
	}{
		{"pad left aligned", "ab", 4, lipgloss.Left, "ab  "},
		{"pad right aligned", "ab", 4, lipgloss.Right, "  ab"},
		{"center", "ab", 6, lipgloss.Center, "  ab  "},
		{"truncate", "abcdef", 4, lipgloss.Left, "abc…"},
		{"arabic", "خبز", 5, lipgloss.Left, "خبز  "},
		{"exact", "abcd", 4, lipgloss.Left, "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fit(tt.in, tt.width, tt.align); got != tt.want {
				t.Errorf("fit(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}
