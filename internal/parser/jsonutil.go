package parser

import (
	"regexp"
	"strings"
)

var fenceOpen = regexp.MustCompile("```(?:json)?\\s*")

// StripCodeFences removes markdown code fences a model may wrap its JSON in.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	s = fenceOpen.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
