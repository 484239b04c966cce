package cat

import (
	"fmt"
	"strings"
)

const (
	// DefaultUpstreamBaseURL is the Gemini API host the relay forwards to.
	DefaultUpstreamBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the generation model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// SystemInstruction is the fixed persona sent with every generation
	// request. The upstream treats it as the system turn.
	SystemInstruction = "You are a helpful assistant with a slightly quirky, retro-tech personality, like a Teenage Engineering device. Keep responses concise and friendly."

	// NoOriginSentinel matches requests without an Origin header (file://
	// pages and some sandboxed iframes send the literal "null").
	NoOriginSentinel = "null"
)

// DefaultAllowedOrigins returns the origin allow-list used when none is
// configured: local file access plus the usual dev-server origins.
func DefaultAllowedOrigins() []string {
	return []string{
		NoOriginSentinel,
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:5500",
		"http://127.0.0.1:5500",
	}
}

// ParseAllowedOrigins splits a comma-separated origin list, trimming
// whitespace and dropping empty entries. An empty input yields the defaults.
func ParseAllowedOrigins(s string) []string {
	if strings.TrimSpace(s) == "" {
		return DefaultAllowedOrigins()
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// GenerateContentURL builds the generateContent endpoint for a model. The
// API key is appended as a query parameter by the backend client, not here.
func GenerateContentURL(baseURL, model string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultUpstreamBaseURL
	}
	m := strings.TrimSpace(model)
	if m == "" {
		m = DefaultModel
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, m)
}
