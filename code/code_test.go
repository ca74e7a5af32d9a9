package code

import (
	"strings"
	"testing"
)

func TestGenerateRandom(t *testing.T) {
	code := GenerateRandom()
	if len(code) != Length {
		t.Errorf("wrong length expected: %d got %d", Length, len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", c) {
			t.Errorf("unexpected character %q in %s", c, code)
		}
	}
}

func TestGenerateRandomDistinct(t *testing.T) {
	if GenerateRandom() == GenerateRandom() {
		t.Errorf("two codes in a row should differ")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  ab12cd "); got != "AB12CD" {
		t.Errorf("wrong code expected: %v got: %v", "AB12CD", got)
	}
}
