package relayhttp

import (
	"context"
	"net/http"
)

// KeyProvider supplies the Gemini API key for an inbound request.
// An error or empty key maps to the 500 configuration-error response.
type KeyProvider func(ctx context.Context) (apiKey string, err error)

type Config struct {
	// Path is only used when registering Gin routes, default "/chat".
	Path string
	// UpstreamURL is the full generateContent endpoint, default
	// cat.GenerateContentURL(cat.DefaultUpstreamBaseURL, cat.DefaultModel).
	UpstreamURL string
	// Model overrides the model segment of the default upstream URL; ignored
	// when UpstreamURL is set explicitly.
	Model string
	// Instruction is the system instruction sent with every request, default
	// cat.SystemInstruction.
	Instruction string
	// AllowedOrigins is the origin allow-list, default
	// cat.DefaultAllowedOrigins(). The literal "null" entry admits requests
	// without an Origin header.
	AllowedOrigins []string
	// HTTPClient is optional; nil means &http.Client{}, which carries no
	// timeout on the upstream call.
	HTTPClient *http.Client
	// KeyProvider is required: the API key is injected per request.
	KeyProvider KeyProvider
}
