package notes

import "strings"

// ContentPreview returns the first maxLines lines of text, appending "..."
// on a new line if truncated. Text with maxLines or fewer lines is returned
// unchanged.
func ContentPreview(text string, maxLines int) string {
	if text == "" || maxLines <= 0 {
		return text
	}

	pos := 0
	found := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			found++
			if found == maxLines {
				pos = i
				break
			}
		}
	}

	if found < maxLines {
		return text
	}

	return text[:pos] + "\n..."
}

// CountLines returns the number of lines in text.
// An empty string has 0 lines.
func CountLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

// TruncateRunes shortens s to at most n runes, appending an ellipsis when
// anything was cut.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
