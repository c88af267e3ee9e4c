package alerts

import (
	"strings"
	"time"
)

// Notification is one formatted push message, ready for delivery.
type Notification struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Tags     []string `json:"tags"`
	Priority Priority `json:"priority"`
}

var resolvedTags = []string{"resolved", "heavy_check_mark"}

// Format renders a into a Notification. It is a pure function of a.
//
// Title and Tags may carry non-ASCII decoration; callers putting them into
// transport headers must pass them through SanitizeHeader or HeaderTags.
func Format(a Alert) Notification {
	sev := ParseSeverity(a.Label("severity"))
	status := ParseStatus(a.Status)

	var title string
	var tags []string
	switch status {
	case StatusResolved:
		title = sev.Emoji() + " Alert Resolved: " + a.Name()
		tags = resolvedTags
	case StatusFiring:
		title = sev.Emoji() + " " + a.Name()
		tags = sev.Tags()
	}

	return Notification{
		Title:    title,
		Body:     body(a, status),
		Tags:     uniqueTags(tags),
		Priority: sev.Priority(),
	}
}

// body builds the multi-line message text.
func body(a Alert, status Status) string {
	lines := []string{"🏷️ Status: " + strings.ToUpper(status.String())}

	add := func(prefix, value string) {
		if value = strings.TrimSpace(value); value != "" {
			lines = append(lines, prefix+value)
		}
	}
	add("📝 Summary: ", a.Annotation("summary"))
	add("ℹ️ Description: ", a.Annotation("description"))
	add("🔍 Namespace: ", a.Label("namespace"))
	add("📦 Pod: ", a.Label("pod"))
	add("🖥️ Instance: ", a.Label("instance"))
	add("⚙️ Job: ", a.Label("job"))
	add("⏳ For: ", a.For)
	add("📖 Runbook: ", a.Annotation("runbook_url"))

	lines = append(lines, "⏰ Started: "+orUnknown(a.StartsAt))
	if status == StatusResolved {
		lines = append(lines, "✅ Resolved: "+orUnknown(a.EndsAt))
	}
	return strings.Join(lines, "\n")
}

// TestNotification is the synthetic message sent by the manual test trigger.
func TestNotification(now time.Time) Notification {
	return Notification{
		Title: "🧪 Test Notification",
		Body: strings.Join([]string{
			"✅ alertrelay is able to deliver notifications.",
			"⏰ Sent: " + now.UTC().Format(time.RFC3339),
		}, "\n"),
		Tags:     []string{"test", "white_check_mark"},
		Priority: PriorityDefault,
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return "Unknown"
}

// uniqueTags returns a fresh copy of tags with duplicates removed, keeping
// first-occurrence order.
func uniqueTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
