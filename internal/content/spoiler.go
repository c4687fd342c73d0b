package content

import (
	"regexp"
	"strings"
)

// Spoiler segments are wrapped in double pipes: "the ending is ||spoiler||".
var spoilerPattern = regexp.MustCompile(`\|\|(.+?)\|\|`)

// spoilerMask replaces hidden segments in redacted previews.
const spoilerMask = "[spoiler]"

// HasSpoiler reports whether the text contains at least one non-empty
// spoiler segment.
func HasSpoiler(text string) bool {
	for _, seg := range SpoilerSegments(text) {
		if strings.TrimSpace(seg) != "" {
			return true
		}
	}
	return false
}

// SpoilerSegments returns the contents of every spoiler segment in order.
func SpoilerSegments(text string) []string {
	matches := spoilerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// RedactSpoilers replaces each spoiler segment with a fixed mask, for
// listings that must not leak hidden text.
func RedactSpoilers(text string) string {
	return spoilerPattern.ReplaceAllString(text, spoilerMask)
}
