package api

import (
	"fmt"
	"strings"

	"github.com/obsidianstack/alertrelay/server/internal/dispatch"
)

// DiagnosticHint explains one failed delivery in plain language.
type DiagnosticHint struct {
	// Server is the destination name the hint is about.
	Server string `json:"server"`
	// Key is a stable machine-readable identifier.
	Key string `json:"key"`
	// Level is "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label.
	Title string `json:"title"`
	// Detail is the full explanation.
	Detail string `json:"detail"`
}

// computeDiagnostics derives hints from the failed outcomes of a report, in
// destination order. Successful outcomes produce no hint.
func computeDiagnostics(rep dispatch.Report) []DiagnosticHint {
	var hints []DiagnosticHint
	for _, o := range rep.Outcomes {
		if o.Status == dispatch.StatusSuccess {
			continue
		}
		h := diagnose(o)
		h.Server = o.Destination
		hints = append(hints, h)
	}
	return hints
}

func diagnose(o dispatch.Outcome) DiagnosticHint {
	msg := strings.ToLower(o.Error)

	if o.Status == dispatch.StatusError {
		if strings.HasPrefix(o.Error, dispatch.DetailFault) {
			return DiagnosticHint{
				Key:   "internal_fault",
				Level: "critical",
				Title: "Relay fault",
				Detail: "The relay hit an unexpected fault while sending to this server. " +
					"The server entry itself may be fine; check the relay logs for this request.",
			}
		}
		return DiagnosticHint{
			Key:   "bad_destination",
			Level: "critical",
			Title: "Invalid server entry",
			Detail: "The request to this server could not be built because its url is not valid. " +
				"Check the url in the server document or NTFY_SERVERS.",
		}
	}

	switch {
	case strings.Contains(msg, "http 401"), strings.Contains(msg, "http 403"):
		return DiagnosticHint{
			Key:   "auth_rejected",
			Level: "critical",
			Title: "Credentials rejected",
			Detail: "The server answered but refused the credentials. " +
				"Check the auth block for this server and that the referenced environment variables are set.",
		}
	case strings.Contains(msg, "http 404"):
		return DiagnosticHint{
			Key:    "not_found",
			Level:  "warning",
			Title:  "Topic or path not found",
			Detail: "The server does not know this path. Check the base url and the topic.",
		}
	case strings.Contains(msg, "http 429"):
		return DiagnosticHint{
			Key:    "rate_limited",
			Level:  "warning",
			Title:  "Rate limited",
			Detail: "The server is throttling this relay. Notifications are not retried, so some were lost.",
		}
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return DiagnosticHint{
			Key:    "timeout",
			Level:  "warning",
			Title:  "Server too slow",
			Detail: "The server did not answer within the send timeout.",
		}
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"):
		return DiagnosticHint{
			Key:    "unreachable",
			Level:  "critical",
			Title:  "Can't reach server",
			Detail: fmt.Sprintf("Nothing answered at %q. Check the address and that the server is running.", o.URL),
		}
	default:
		return DiagnosticHint{
			Key:    "delivery_failed",
			Level:  "warning",
			Title:  "Delivery failed",
			Detail: o.Error,
		}
	}
}
