package services

import (
	"regexp"
	"strings"
)

var (
	jsonFenceRe    = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	genericFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)```")
)

// extractJSONCandidates returns the raw JSON payloads to attempt decoding,
// in priority order: a ```json fenced block, any generic fenced block, then
// the text as-is. Model output is untrusted free text, so callers try each
// candidate until one decodes.
func extractJSONCandidates(raw string) []string {
	var candidates []string
	if m := jsonFenceRe.FindStringSubmatch(raw); len(m) == 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := genericFenceRe.FindStringSubmatch(raw); len(m) == 2 {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	candidates = append(candidates, strings.TrimSpace(raw))
	return candidates
}
