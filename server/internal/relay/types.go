package relay

import (
	"github.com/obsidianstack/alertrelay/server/internal/config"
	"github.com/obsidianstack/alertrelay/server/internal/dispatch"
)

// IntakeResponse is the result of one webhook intake.
type IntakeResponse struct {
	Status            string        `json:"status"`
	RequestID         string        `json:"request_id"`
	AlertsProcessed   int           `json:"alerts_processed"`
	NotificationsSent int           `json:"notifications_sent"`
	ServersTotal      int           `json:"servers_total"`
	Results           []AlertResult `json:"results"`
}

// AlertResult is the delivery summary of one alert in a batch.
type AlertResult struct {
	Alertname string             `json:"alertname"`
	Status    string             `json:"status"`
	Sent      int                `json:"sent"`
	Total     int                `json:"total"`
	Outcomes  []dispatch.Outcome `json:"outcomes"`
}

// Introspection describes the active destinations without credentials.
type Introspection struct {
	Topic   string        `json:"topic"`
	Source  config.Source `json:"source"`
	Servers []ServerInfo  `json:"servers"`
}

// ServerInfo is one destination as reported by Introspect.
type ServerInfo struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	HasAuth bool   `json:"has_auth"`
}

// Health is the liveness summary.
type Health struct {
	Status       string   `json:"status"`
	ServersCount int      `json:"servers_count"`
	Servers      []string `json:"servers"`
	Topic        string   `json:"topic"`
}

// DeliveryEvent is published to live stream subscribers after each dispatch.
type DeliveryEvent struct {
	RequestID string             `json:"request_id"`
	Alertname string             `json:"alertname"`
	Status    string             `json:"status"`
	Sent      int                `json:"sent"`
	Total     int                `json:"total"`
	Outcomes  []dispatch.Outcome `json:"outcomes"`
	At        string             `json:"at"`
}
