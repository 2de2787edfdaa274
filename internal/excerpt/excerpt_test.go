package excerpt

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	long := strings.Repeat("abcdefghij", 20)
	tests := []struct {
		name   string
		text   string
		center int
		scope  int
		want   string
	}{
		{"start clamped to zero", "hello world", 0, 3, "hel"},
		{"middle", "hello world", 5, 2, "lo w"},
		{"end clamped before last rune", "hello world", 10, 50, "hello worl"},
		{"window inside", long, 100, 5, long[95:105]},
		{"runes", "héllo wörld", 7, 2, " wör"},
		{"empty text", "", 0, 50, ""},
		{"center past end", "abc", 10, 1, ""},
		{"negative center", "abc", -4, 1, "a"},
		{"zero scope", "abc", 1, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extract(tt.text, tt.center, tt.scope); got != tt.want {
				t.Errorf("Extract(%q, %d, %d) = %q, want %q", tt.text, tt.center, tt.scope, got, tt.want)
			}
		})
	}

	t.Run("last position", func(t *testing.T) {
		text := "the cat sat on the mat"
		got := Extract(text, len(text)-1, DefaultScope)
		if want := text[:len(text)-1]; got != want {
			t.Errorf("Extract() = %q, want %q", got, want)
		}
	})
}

func TestExtractMarked(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		center int
		scope  int
		span   int
		want   string
	}{
		{"middle", "the cat sat on the mat", 4, 50, 3, "the CAT sat on the ma"},
		{"narrow window", "the cat sat on the mat", 4, 2, 3, "e CAT"},
		{"at start", "cat food", 0, 50, 3, "CAT foo"},
		{"span past end", "the cat", 4, 50, 10, "the CAT"},
		{"zero span", "the cat sat", 4, 50, 0, "the cat sa"},
		{"runes", "el niño come", 3, 50, 4, "el NIÑO com"},
		{"empty", "", 0, 50, 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMarked(tt.text, tt.center, tt.scope, tt.span); got != tt.want {
				t.Errorf("ExtractMarked(%q, %d, %d, %d) = %q, want %q", tt.text, tt.center, tt.scope, tt.span, got, tt.want)
			}
		})
	}
}
