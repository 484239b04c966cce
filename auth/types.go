package auth

import "context"

// Provider reads the Gemini API key from some source. The key is handed to
// the relay per request and must never be logged.
type Provider interface {
	Key(ctx context.Context) (apiKey string, err error)
}

type Source string

const (
	SourceEnv  Source = "env"
	SourceFile Source = "file"
	SourceAuto Source = "auto"
)
