package model

import "testing"

func TestClassName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Design", "Design"},
		{"2021 Plan!", "_2021_Plan_"},
		{"a--b  c", "a_b_c"},
		{"snake_case", "snake_case"},
		{"", ""},
		{"Café", "Caf_"},
	}
	for _, tt := range tests {
		if got := ClassName(tt.in); got != tt.want {
			t.Errorf("ClassName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClassesAndTheme(t *testing.T) {
	h, err := Build(&Datum{Name: "root", Children: []*Datum{
		{Name: "Big Group", Children: []*Datum{{Name: "x", Size: 2, Slug: "Red_Team"}}},
		{Name: "y", Size: 1},
	}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	group := h.Find("Big Group")
	x := h.Find("Big Group/x")

	if got := h.Classes(RootID); got != "node node--root" {
		t.Errorf("root classes = %q", got)
	}
	if got := h.Classes(group); got != "node node--parent" {
		t.Errorf("group classes = %q", got)
	}
	if got := h.Classes(x); got != "node node--leaf red-team" {
		t.Errorf("leaf classes = %q", got)
	}
	if got := h.Classes(h.Find("y")); got != "node node--leaf" {
		t.Errorf("slugless leaf classes = %q", got)
	}
	if got := h.ThemeClass(x); got != "Big_Group" {
		t.Errorf("theme = %q", got)
	}
	if got := h.ThemeClass(RootID); got != "" {
		t.Errorf("root theme = %q", got)
	}
}
