package generator

import "strings"

// Clean trims the provider reply and drops reasoning traces that thinking
// models wrap in <think> tags.
func Clean(message string) string {
	cleaned := strings.TrimSpace(message)

	// Take everything after the last closing tag first; some models emit
	// the opening tag inside the trace itself.
	if strings.Contains(cleaned, "</think>") {
		parts := strings.Split(cleaned, "</think>")
		cleaned = strings.TrimSpace(parts[len(parts)-1])
	}

	for {
		start := strings.Index(cleaned, "<think>")
		end := strings.Index(cleaned, "</think>")
		if start < 0 || end < start {
			break
		}
		cleaned = cleaned[:start] + cleaned[end+len("</think>"):]
	}

	cleaned = strings.ReplaceAll(cleaned, "<think>", "")
	cleaned = strings.ReplaceAll(cleaned, "</think>", "")
	return strings.TrimSpace(cleaned)
}
