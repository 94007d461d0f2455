package grocery

import "testing"

func TestCategorizeWholeWord(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"milk", "Dairy"},
		{"chicken", "Meat"},
		{"bread", "Bakery"},
		{"rice", "Pantry"},
		{"ice cream", "Frozen"},
		{"coffee", "Beverages"},
		{"chips", "Snacks"},
		{"paper towels", "Household"},
		{"shampoo", "Personal care"},
		{"apple", "Produce"},
		{"salmon", "Seafood"},
		{"Whole Milk", "Dairy"},
		{"sour cream", "Dairy"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeSubstring(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"boneless chicken thighs", "Meat"},
		{"whole wheat bread", "Bakery"},
		{"frozen pizza", "Frozen"},
		{"organic baby spinach", "Produce"},
		{"sparkling water bottles", "Beverages"},
		{"canned black beans", "Pantry"},
		{"apples", "Produce"},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCategorizeFallback(t *testing.T) {
	for _, in := range []string{"", "   ", "widget", "xyz123"} {
		if got := Categorize(in); got != Other {
			t.Errorf("Categorize(%q) = %q, want %q", in, got, Other)
		}
	}
}

func TestIcon(t *testing.T) {
	if got := Icon("dairy"); got != "🥛" {
		t.Errorf("Icon(dairy) = %q", got)
	}
	if got := Icon("Garden"); got != "🛒" {
		t.Errorf("Icon(Garden) = %q", got)
	}
	if n := len(Categories()); n != len(rules)+1 {
		t.Errorf("len(Categories) = %d, want %d", n, len(rules)+1)
	}
}
