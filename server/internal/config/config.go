package config

import (
	"fmt"
	"net/url"
)

// Default values used when no configuration source provides one.
const (
	DefaultServerURL  = "http://ntfy.ntfy.svc.cluster.local"
	DefaultTopic      = "kubernetes-alerts"
	DefaultConfigPath = "/etc/alertrelay/servers.yaml"
)

// AuthType selects how a destination authenticates outbound calls.
type AuthType string

const (
	AuthNone   AuthType = ""
	AuthBasic  AuthType = "basic"
	AuthBearer AuthType = "bearer"
)

// Auth holds the credentials for one destination.
// Values are resolved once at load time and must never be logged or
// serialized; String redacts them.
type Auth struct {
	Type     AuthType
	Username string
	Password string
	Token    string
}

// Complete reports whether a carries every field its type needs: username and
// password for basic, a token for bearer. A nil Auth is not complete.
func (a *Auth) Complete() bool {
	if a == nil {
		return false
	}
	switch a.Type {
	case AuthBasic:
		return a.Username != "" && a.Password != ""
	case AuthBearer:
		return a.Token != ""
	default:
		return false
	}
}

// String implements fmt.Stringer without exposing credentials.
func (a Auth) String() string {
	if a.Type == AuthNone {
		return "auth(none)"
	}
	return fmt.Sprintf("auth(%s, redacted)", a.Type)
}

// Destination is one notification server the relay delivers to.
type Destination struct {
	// Name is unique within a Resolved config. Defaults to server-<n>.
	Name string

	// URL is the base address of the server; the topic is appended per call.
	URL string

	// Auth is nil when the destination needs no authentication.
	Auth *Auth
}

// HasAuth reports whether the destination is sent authenticated, that is
// whether it has a complete authentication descriptor.
func (d Destination) HasAuth() bool {
	return d.Auth.Complete()
}

// Source identifies which configuration layer produced the destination list.
type Source string

const (
	SourceFile      Source = "file"
	SourceServers   Source = "env"
	SourceLegacyURL Source = "legacy-url"
	SourceDefault   Source = "default"
)

// Resolved is the normalized destination configuration.
//
// Destinations is never empty and Topic is never blank. A Resolved value is
// never mutated after Resolve returns it; reloads produce a new value.
type Resolved struct {
	Destinations []Destination
	Topic        string
	Source       Source
}

// Inputs carries the raw configuration inputs Resolve works from. They are
// normally populated from Settings.
type Inputs struct {
	// Path is the location of the structured server document.
	Path string

	// Servers is the raw NTFY_SERVERS value (JSON array or comma list).
	Servers string

	// LegacyURL is the single-destination NTFY_URL value.
	LegacyURL string

	// Topic is the NTFY_TOPIC override.
	Topic string
}

// positionalName returns the default name for the destination at index i.
func positionalName(i int) string {
	return fmt.Sprintf("server-%d", i+1)
}

// uniqueNames rewrites duplicate destination names in place by appending
// -2, -3, ... to later occurrences. The first occurrence keeps its name.
func uniqueNames(dests []Destination) {
	used := make(map[string]bool, len(dests))
	for i := range dests {
		name := dests[i].Name
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", dests[i].Name, n)
		}
		used[name] = true
		dests[i].Name = name
	}
}

// Names returns the destination names in configuration order.
func (r *Resolved) Names() []string {
	out := make([]string, len(r.Destinations))
	for i, d := range r.Destinations {
		out[i] = d.Name
	}
	return out
}

// InvalidURL stands in for a destination URL that does not parse. The raw
// text may carry credentials, so it is never shown.
const InvalidURL = "<invalid url>"

// DisplayURL returns the destination URL with any embedded password masked,
// for logs and introspection.
func (d Destination) DisplayURL() string {
	u, err := url.Parse(d.URL)
	if err != nil {
		return InvalidURL
	}
	return u.Redacted()
}
