package render

import (
	"reflect"
	"strings"
	"testing"
)

func TestWrapLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"short", "Hello", []string{"Hello"}},
		{"empty", "", []string{""}},
		{
			"spaces",
			"Updating... This may take a while",
			[]string{"Updating... This may", "take a while"},
		},
		{
			"newlines",
			"IP Address:\n10.0.0.5",
			[]string{"IP Address:", "10.0.0.5"},
		},
		{
			"blank line kept",
			"a\n\nb",
			[]string{"a", "", "b"},
		},
		{
			"long word chopped",
			strings.Repeat("x", 45),
			[]string{strings.Repeat("x", 20), strings.Repeat("x", 20), "xxxxx"},
		},
		{
			"exact column fit",
			strings.Repeat("y", 20) + " z",
			[]string{strings.Repeat("y", 20), "z"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapLines(tt.in, 20, 6)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("wrapLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWrapLinesRespectsMaxLines(t *testing.T) {
	in := strings.Repeat("word ", 40)
	got := wrapLines(in, 20, 6)
	if len(got) != 6 {
		t.Fatalf("len(wrapLines) = %d, want 6", len(got))
	}
	for i, line := range got {
		if n := len([]rune(line)); n > 20 {
			t.Fatalf("line %d is %d runes, want <= 20", i, n)
		}
	}
}
