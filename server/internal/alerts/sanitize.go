package alerts

import "strings"

// SanitizeHeader drops every rune outside printable ASCII (0x20-0x7E) and
// trims surrounding spaces, making s safe as an HTTP header value.
func SanitizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 0x20 && r <= 0x7e {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// HeaderTags sanitizes each tag and joins the non-empty ones with commas.
func HeaderTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = SanitizeHeader(t); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, ",")
}
