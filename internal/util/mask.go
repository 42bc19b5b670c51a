package util

import (
	"strings"
	"unicode/utf8"
)

// MaskEmail ofusca una dirección para logs: "priya@gmail.com" -> "p…@g….com".
// Corta por runa, nunca por byte.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" {
		switch n := utf8.RuneCountInString(s); {
		case n == 0:
			return ""
		case n <= 3:
			return "***"
		}
		last, _ := utf8.DecodeLastRuneInString(s)
		return firstRune(s) + "…" + string(last)
	}
	if utf8.RuneCountInString(local) > 1 {
		local = firstRune(local) + "…"
	}
	labels := strings.Split(domain, ".")
	if utf8.RuneCountInString(labels[0]) > 1 {
		labels[0] = firstRune(labels[0]) + "…"
	}
	return local + "@" + strings.Join(labels, ".")
}

func firstRune(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}
