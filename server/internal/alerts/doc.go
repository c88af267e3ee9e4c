// Package alerts turns Alertmanager webhook alerts into push notifications.
//
// Format(alert) is pure: the same Alert always yields the same Notification.
// Severity (critical|warning|info) and Status (firing|resolved) are closed
// enums; their priority, emoji and tags come from exhaustive switches.
//
//	critical → urgent,  🚨, tags warning,skull
//	warning  → high,    ⚠️, tags warning
//	info     → default, ℹ️, tags bell
//	resolved → tags resolved,heavy_check_mark (priority from severity)
//
// Titles carry emoji. SanitizeHeader and HeaderTags strip them, along with
// any other non-printable-ASCII rune, before values go into headers. Bodies
// are sent as-is.
package alerts
