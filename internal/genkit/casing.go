package genkit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SnakeCase converts PascalCase or camelCase to snake_case.
// Acronyms stay together: "HTTPServer" -> "http_server".
func SnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if i > 0 && unicode.IsUpper(r) {
			// Inside an acronym only the last capital before a lowercase rune
			// starts a new word.
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if (!prevUpper || nextLower) && runes[i-1] != '_' {
				result.WriteRune('_')
			}
		}

		result.WriteRune(unicode.ToLower(r))
	}

	return result.String()
}

// Capitalize upper-cases the first rune of s and leaves the rest untouched.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

