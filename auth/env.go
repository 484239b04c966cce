package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const EnvAPIKey = "GEMINI_API_KEY"

type envProvider struct{}

func (p *envProvider) Key(ctx context.Context) (string, error) {
	key := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if key == "" {
		return "", fmt.Errorf("%s is not set", EnvAPIKey)
	}
	return key, nil
}
