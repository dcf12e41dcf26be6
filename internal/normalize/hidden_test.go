package normalize

import "testing"

func TestFindHidden(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		classes []string
	}{
		{"plain", "rm -rf ./build", nil},
		{"tabs and newlines", "echo a\techo b\nls\r\n", nil},
		{"non-latin text is fine", "echo héllo 日本", nil},
		{"zero width", "r\u200Bm -rf /", []string{"zero-width"}},
		{"bidi override", "echo \u202Eabc", []string{"bidi"}},
		{"tag char", "ls \U000E0041", []string{"tag"}},
		{"escape sequence", "echo \x1b[2J", []string{"control"}},
		{"invalid utf8", "ls \xff", []string{"invalid-utf8"}},
		{"several", "\u200B\u2066x\u2069", []string{"zero-width", "bidi", "bidi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindHidden(tt.input)
			if len(got) != len(tt.classes) {
				t.Fatalf("got %v, want classes %v", got, tt.classes)
			}
			for i, h := range got {
				if h.Class != tt.classes[i] {
					t.Errorf("hidden[%d].Class = %s, want %s", i, h.Class, tt.classes[i])
				}
			}
		})
	}
}

func TestFindHidden_Offsets(t *testing.T) {
	got := FindHidden("ab\u200Bc")
	if len(got) != 1 || got[0].Offset != 2 || got[0].Rune != '\u200B' {
		t.Errorf("got %+v", got)
	}
}

func TestVisible(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ls -la", "ls -la"},
		{"r\u200Bm -rf /", "r<U+200B>m -rf /"},
		{"echo \u202Etxt.exe", "echo <U+202E>txt.exe"},
		{"ls \xff", "ls <0xFF>"},
		{"echo café", "echo café"},
	}
	for _, tt := range tests {
		if got := Visible(tt.input); got != tt.want {
			t.Errorf("Visible(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
