package lesson

import "strings"

// CountWords returns the number of whitespace-delimited tokens in text.
// Leading and trailing whitespace never produce tokens, so "" and "   " count as 0.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
