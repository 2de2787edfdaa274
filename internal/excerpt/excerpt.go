// Package excerpt cuts bounded windows of text around a position.
//
// Positions and lengths count runes. The window is clamped to the text: it
// starts at center-scope or 0 and stops before center+scope or before the
// last rune, whichever comes first. Out of range values never panic.
package excerpt

import "strings"

// DefaultScope is the number of runes kept on each side of the center.
const DefaultScope = 50

// Extract returns the runes of text in [center-scope, center+scope), clamped.
func Extract(text string, center, scope int) string {
	r := []rune(text)
	start, end := bounds(len(r), center, scope)
	return slice(r, start, end)
}

// ExtractMarked is Extract with the span runes starting at center upper-cased.
// Use it to highlight the matched term inside the excerpt.
func ExtractMarked(text string, center, scope, span int) string {
	r := []rune(text)
	start, end := bounds(len(r), center, scope)
	center = max(center, 0)
	span = max(span, 0)
	var b strings.Builder
	b.WriteString(slice(r, start, center))
	b.WriteString(strings.ToUpper(slice(r, center, center+span)))
	b.WriteString(slice(r, center+span, end))
	return b.String()
}

func bounds(n, center, scope int) (start, end int) {
	center = max(center, 0)
	scope = max(scope, 0)
	start = max(center-scope, 0)
	end = min(center+scope, n-1)
	return start, end
}

// slice returns r[a:b] with both bounds clamped to r, or "" when a >= b.
func slice(r []rune, a, b int) string {
	a = min(max(a, 0), len(r))
	b = min(max(b, 0), len(r))
	if a >= b {
		return ""
	}
	return string(r[a:b])
}
