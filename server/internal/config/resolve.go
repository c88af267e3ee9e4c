package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// LookupFunc resolves an environment variable. It has the signature of
// os.LookupEnv so tests can inject a fixed environment.
type LookupFunc func(key string) (string, bool)

// placeholder matches ${NAME} references in the raw server document. NAME is
// any non-empty run of characters other than '}'.
var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// document is the on-disk schema of the server document.
type document struct {
	Servers []serverEntry `yaml:"servers"`
	Topic   string        `yaml:"topic"`
}

type serverEntry struct {
	Name string     `yaml:"name"`
	URL  string     `yaml:"url"`
	Auth *authEntry `yaml:"auth"`
}

type authEntry struct {
	// Type is one of: basic | token | bearer.
	Type     string `yaml:"type"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
}

// Resolve builds the destination configuration from in, highest precedence
// first:
//
//  1. the server document at in.Path, after ${NAME} substitution
//  2. in.Servers as a JSON array of URLs, else as a comma-separated list
//  3. in.LegacyURL as a single destination
//  4. DefaultServerURL
//
// Resolve never fails. A missing or broken document is logged and skipped.
// lookup defaults to os.LookupEnv when nil.
func Resolve(in Inputs, lookup LookupFunc) *Resolved {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if in.Path != "" {
		doc, err := loadDocument(in.Path, lookup)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("config: no server document, using environment", "path", in.Path)
		case err != nil:
			slog.Warn("config: ignoring server document", "path", in.Path, "err", err)
		default:
			if dests := doc.destinations(); len(dests) > 0 {
				return &Resolved{
					Destinations: dests,
					Topic:        pickTopic(doc.Topic, in.Topic),
					Source:       SourceFile,
				}
			}
			slog.Warn("config: server document lists no usable servers", "path", in.Path)
		}
	}

	topic := pickTopic("", in.Topic)

	if urls := parseServerList(in.Servers); len(urls) > 0 {
		dests := make([]Destination, len(urls))
		for i, u := range urls {
			dests[i] = Destination{Name: positionalName(i), URL: u}
		}
		return &Resolved{Destinations: dests, Topic: topic, Source: SourceServers}
	}

	if u := strings.TrimSpace(in.LegacyURL); u != "" {
		return &Resolved{
			Destinations: []Destination{{Name: positionalName(0), URL: u}},
			Topic:        topic,
			Source:       SourceLegacyURL,
		}
	}

	return &Resolved{
		Destinations: []Destination{{Name: positionalName(0), URL: DefaultServerURL}},
		Topic:        topic,
		Source:       SourceDefault,
	}
}

// loadDocument reads path, substitutes placeholders over the raw text and
// parses the result.
func loadDocument(path string, lookup LookupFunc) (*document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	doc := &document{}
	if err := yaml.Unmarshal([]byte(ExpandPlaceholders(string(raw), lookup)), doc); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return doc, nil
}

// ExpandPlaceholders replaces every ${NAME} in s with the value of the
// environment variable NAME. References to unset variables are left as-is.
func ExpandPlaceholders(s string, lookup LookupFunc) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		if v, ok := lookup(name); ok {
			return v
		}
		return m
	})
}

// destinations converts document entries in order. Entries without a URL
// are skipped; names default to the entry's position in the document.
func (d *document) destinations() []Destination {
	out := make([]Destination, 0, len(d.Servers))
	for i, s := range d.Servers {
		url := strings.TrimSpace(s.URL)
		if url == "" {
			slog.Warn("config: skipping server without url", "index", i, "name", s.Name)
			continue
		}
		name := strings.TrimSpace(s.Name)
		if name == "" {
			name = positionalName(i)
		}
		auth := s.Auth.toAuth(name)
		if auth != nil && !auth.Complete() {
			slog.Warn("config: incomplete credentials, sending unauthenticated",
				"server", name, "type", auth.Type)
		}
		out = append(out, Destination{Name: name, URL: url, Auth: auth})
	}
	uniqueNames(out)
	return out
}

// toAuth maps the document auth block onto an Auth descriptor. Unknown types
// yield nil so the destination is contacted unauthenticated.
func (a *authEntry) toAuth(server string) *Auth {
	if a == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(a.Type)) {
	case "basic":
		return &Auth{Type: AuthBasic, Username: a.Username, Password: a.Password}
	case "token", "bearer":
		return &Auth{Type: AuthBearer, Token: a.Token}
	case "", "none":
		return nil
	default:
		slog.Warn("config: unknown auth type, sending unauthenticated",
			"server", server, "type", a.Type)
		return nil
	}
}

// parseServerList interprets raw as a JSON array of URL strings, falling back
// to a comma-separated list when it is not one.
func parseServerList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		list = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(list))
	for _, u := range list {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func pickTopic(doc, env string) string {
	if t := strings.TrimSpace(doc); t != "" {
		return t
	}
	if t := strings.TrimSpace(env); t != "" {
		return t
	}
	return DefaultTopic
}
