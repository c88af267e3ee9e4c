package api

import (
	"testing"

	"github.com/obsidianstack/alertrelay/server/internal/dispatch"
)

func TestComputeDiagnostics_Keys(t *testing.T) {
	rep := dispatch.Report{Outcomes: []dispatch.Outcome{
		{Destination: "ok", Status: dispatch.StatusSuccess},
		{Destination: "panicked", Status: dispatch.StatusError, Error: dispatch.DetailFault + ": transport exploded"},
		{Destination: "bad-url", Status: dispatch.StatusError, Error: dispatch.DetailInvalidURL},
		{Destination: "auth", Status: dispatch.StatusFailed, Error: "server returned HTTP 401"},
		{Destination: "slow", Status: dispatch.StatusFailed, Error: "http post: context deadline exceeded"},
		{Destination: "down", Status: dispatch.StatusFailed, Error: "dial tcp 127.0.0.1:1: connect: connection refused"},
		{Destination: "other", Status: dispatch.StatusFailed, Error: "server returned HTTP 502"},
	}}

	hints := computeDiagnostics(rep)
	want := []struct{ server, key string }{
		{"panicked", "internal_fault"},
		{"bad-url", "bad_destination"},
		{"auth", "auth_rejected"},
		{"slow", "timeout"},
		{"down", "unreachable"},
		{"other", "delivery_failed"},
	}
	if len(hints) != len(want) {
		t.Fatalf("hints: got %d, want %d", len(hints), len(want))
	}
	for i, w := range want {
		if hints[i].Server != w.server || hints[i].Key != w.key {
			t.Errorf("hint %d: got %s/%s, want %s/%s", i, hints[i].Server, hints[i].Key, w.server, w.key)
		}
	}
}
