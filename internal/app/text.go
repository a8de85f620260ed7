package app

import (
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 5

	defaultNickname  = "Jugador"
	maxNicknameRunes = 32
)

var (
	codeMu  sync.Mutex
	codeRnd = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// NewCode returns a random session code; it does not check for collisions.
func NewCode() string {
	b := make([]byte, codeLength)
	codeMu.Lock()
	for i := range b {
		b[i] = codeAlphabet[codeRnd.Intn(len(codeAlphabet))]
	}
	codeMu.Unlock()
	return string(b)
}

// ValidCode reports whether code has the session code shape.
func ValidCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(codeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}

// SanitizeNickname normalizes a display name, falling back to a default when blank.
func SanitizeNickname(raw string) string {
	s := cleanText(raw)
	if utf8.RuneCountInString(s) > maxNicknameRunes {
		s = strings.TrimSpace(string([]rune(s)[:maxNicknameRunes]))
	}
	if s == "" {
		return defaultNickname
	}
	return s
}

func cleanText(raw string) string {
	s := norm.NFC.String(raw)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func textOr(raw, fallback string) string {
	if s := cleanText(raw); s != "" {
		return s
	}
	return fallback
}
