package utils

// Truncate cuts s to at most maxLen runes and appends "..." when it had to cut.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// Clip cuts s to at most maxLen runes without a marker.
func Clip(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen])
}
