package agent

import "strings"

// ExtractJSON recovers a JSON payload from a possibly noisy model response.
// Models sometimes wrap valid JSON in prose or markdown fences; this takes
// the span from the first '{' to the last '}', falling back to the first
// '[' and last ']', and finally to the trimmed input. Best effort: the
// result is not guaranteed to parse.
func ExtractJSON(raw string) string {
	if start := strings.Index(raw, "{"); start != -1 {
		if end := strings.LastIndex(raw, "}"); end > start {
			return raw[start : end+1]
		}
	}
	if start := strings.Index(raw, "["); start != -1 {
		if end := strings.LastIndex(raw, "]"); end > start {
			return raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}
