package usecase

import "regexp"

// The NL collaborator tends to decorate replies with markdown-lite
// emphasis. The chat surface renders plain text, so the markers are
// stripped while the wrapped words stay.
var emphasisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\*\*([^*]+)\*\*`),
	regexp.MustCompile(`__([^_]+)__`),
	regexp.MustCompile(`\b_([^_]+)_\b`),
}

func StripEmphasis(s string) string {
	for _, pattern := range emphasisPatterns {
		s = pattern.ReplaceAllString(s, "$1")
	}
	return s
}
