package language

import (
	"slices"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ko", "ko"},
		{"KO", "ko"},
		{" kor ", "ko"},
		{"korean", "ko"},
		{"Japanese", "ja"},
		{"eng", "en"},
		{"zh", ""},
		{"", ""},
		{"klingon", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ToISO2(tt.input); got != tt.want {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	if !Supported("pt") {
		t.Fatal("expected pt to be supported")
	}
	if Supported("ru") {
		t.Fatal("expected ru to be unsupported")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ko", "Korean"},
		{"fra", "French"},
		{"", "Unknown"},
		{"xx", "XX"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCodes(t *testing.T) {
	codes := Codes()
	if len(codes) != 8 || codes[0] != "en" || !slices.Contains(codes, "ko") {
		t.Fatalf("unexpected codes: %v", codes)
	}
}
