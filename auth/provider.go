package auth

import (
	"context"
	"fmt"
	"strings"
)

// NewProvider creates a Provider for the given source.
// source accepts env/file/auto; the empty string means env.
func NewProvider(source string) (Provider, error) {
	s := strings.ToLower(strings.TrimSpace(source))
	if s == "" {
		s = string(SourceEnv)
	}
	switch Source(s) {
	case SourceEnv:
		return &envProvider{}, nil
	case SourceFile:
		return &fileProvider{}, nil
	case SourceAuto:
		return &autoProvider{providers: []Provider{&envProvider{}, &fileProvider{}}}, nil
	default:
		return nil, fmt.Errorf("unsupported key source: %s", source)
	}
}

type autoProvider struct {
	providers []Provider
}

func (p *autoProvider) Key(ctx context.Context) (string, error) {
	var lastErr error
	for _, provider := range p.providers {
		key, err := provider.Key(ctx)
		if err == nil && strings.TrimSpace(key) != "" {
			return key, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("no api key available")
}
