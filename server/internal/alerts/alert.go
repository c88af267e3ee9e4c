package alerts

import "strings"

// Payload is the Alertmanager webhook body. Only Alerts is used; a payload
// without an alerts key is an empty batch.
type Payload struct {
	Status   string  `json:"status,omitempty"`
	Receiver string  `json:"receiver,omitempty"`
	Alerts   []Alert `json:"alerts"`
}

// Alert is one firing or resolved alert in a Payload.
type Alert struct {
	Status       string            `json:"status"`
	Labels       map[string]string `json:"labels"`
	Annotations  map[string]string `json:"annotations"`
	StartsAt     string            `json:"startsAt"`
	EndsAt       string            `json:"endsAt,omitempty"`
	For          string            `json:"for,omitempty"`
	GeneratorURL string            `json:"generatorURL,omitempty"`
}

// Label returns the named label, or "" when absent.
func (a Alert) Label(name string) string {
	return a.Labels[name]
}

// Annotation returns the named annotation, or "" when absent.
func (a Alert) Annotation(name string) string {
	return a.Annotations[name]
}

// Name returns the alertname label, defaulting to "Unknown Alert".
func (a Alert) Name() string {
	if n := strings.TrimSpace(a.Label("alertname")); n != "" {
		return n
	}
	return "Unknown Alert"
}

// Severity is the closed set of alert severities the relay distinguishes.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

// ParseSeverity maps a severity label onto a Severity. Anything other than
// critical or warning (case-insensitive) is SeverityInfo.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "warning":
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Priority is the push priority sent in the Priority header.
type Priority string

const (
	PriorityUrgent  Priority = "urgent"
	PriorityHigh    Priority = "high"
	PriorityDefault Priority = "default"
	PriorityLow     Priority = "low"
)

// Priority returns the push priority for alerts of this severity.
func (s Severity) Priority() Priority {
	switch s {
	case SeverityCritical:
		return PriorityUrgent
	case SeverityWarning:
		return PriorityHigh
	default:
		return PriorityDefault
	}
}

// Emoji returns the title decoration for this severity.
func (s Severity) Emoji() string {
	switch s {
	case SeverityCritical:
		return "🚨"
	case SeverityWarning:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// Tags returns the push tags for a firing alert of this severity.
func (s Severity) Tags() []string {
	switch s {
	case SeverityCritical:
		return []string{"warning", "skull"}
	case SeverityWarning:
		return []string{"warning"}
	default:
		return []string{"bell"}
	}
}

// Status is the alert state transition.
type Status int

const (
	StatusFiring Status = iota
	StatusResolved
)

// ParseStatus maps an alert status onto a Status. Only "resolved"
// (case-insensitive) is StatusResolved; a missing status means firing.
func ParseStatus(s string) Status {
	if strings.EqualFold(strings.TrimSpace(s), "resolved") {
		return StatusResolved
	}
	return StatusFiring
}

func (s Status) String() string {
	if s == StatusResolved {
		return "resolved"
	}
	return "firing"
}
