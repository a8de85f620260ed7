package app

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewCodeShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := NewCode()
		if !ValidCode(code) {
			t.Fatalf("invalid code %q", code)
		}
		if strings.ContainsAny(code, "01ILO") {
			t.Fatalf("code %q contains an ambiguous character", code)
		}
	}
	if ValidCode("ABCD") || ValidCode("ABCD0") {
		t.Fatalf("expected malformed codes rejected")
	}
}

func TestSanitizeNickname(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"  Ana  ", "Ana"},
		{"", "Jugador"},
		{"\t\n", "Jugador"},
		{"Jo\x00sé", "José"},
		{"José", "José"},
	}
	for _, tc := range cases {
		if got := SanitizeNickname(tc.in); got != tc.want {
			t.Fatalf("SanitizeNickname(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := SanitizeNickname(strings.Repeat("ñ", 40))
	if utf8.RuneCountInString(long) != 32 {
		t.Fatalf("expected 32 runes, got %d", utf8.RuneCountInString(long))
	}
}
