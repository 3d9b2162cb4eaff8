package utils

import "unicode/utf8"

// ClampRunes cuts s to at most n runes. A non-positive n leaves s unchanged.
func ClampRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Preview is ClampRunes with a trailing ellipsis when s was cut. Used to keep
// user text in log fields short.
func Preview(s string, n int) string {
	clamped := ClampRunes(s, n)
	if clamped == s {
		return s
	}
	return clamped + "..."
}
