package game

import "strings"

const (
	MaxNameLength = 20
	DefaultName   = "Player"
)

// NormalizeName trims a display name, cuts it to MaxNameLength runes and
// falls back to DefaultName when nothing is left.
func NormalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	if name == "" {
		return DefaultName
	}
	return name
}
