package api

import "github.com/obsidianstack/alertrelay/server/internal/dispatch"

// TestResponse is returned by /test.
type TestResponse struct {
	// Status is "success" when every server accepted the notification,
	// "partial" when some did, and "failed" when none did.
	Status   string             `json:"status"`
	Message  string             `json:"message"`
	Sent     int                `json:"sent"`
	Total    int                `json:"total"`
	Outcomes []dispatch.Outcome `json:"outcomes"`
	Hints    []DiagnosticHint   `json:"hints,omitempty"`
}

// errorResponse is the JSON body for all error responses.
type errorResponse struct {
	Error string `json:"error"`
}
