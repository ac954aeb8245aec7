package watcher

import "strings"

const PreviewLength = 50

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Preview renders text for status display: the first PreviewLength
// characters with line breaks turned into spaces, plus "..." if cut.
func Preview(text string) string {
	runes := []rune(text)
	truncated := len(runes) > PreviewLength
	if truncated {
		runes = runes[:PreviewLength]
	}

	preview := newlineReplacer.Replace(string(runes))
	if truncated {
		preview += "..."
	}
	return preview
}
