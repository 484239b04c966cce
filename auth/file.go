package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type authFile struct {
	APIKey string `json:"api_key"`
	Gemini struct {
		APIKey string `json:"api_key"`
	} `json:"gemini"`
}

func ReadKeyFromPath(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read auth file: %w", err)
	}

	var auth authFile
	if err := json.Unmarshal(data, &auth); err != nil {
		return "", fmt.Errorf("failed to parse auth file: %w", err)
	}

	key := strings.TrimSpace(auth.Gemini.APIKey)
	if key == "" {
		key = strings.TrimSpace(auth.APIKey)
	}
	if key == "" {
		return "", fmt.Errorf("auth file missing api_key")
	}
	return key, nil
}

func fileDefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cat", "auth.json"), nil
}

type fileProvider struct{}

func (p *fileProvider) Key(ctx context.Context) (string, error) {
	path, err := fileDefaultPath()
	if err != nil {
		return "", err
	}
	return ReadKeyFromPath(path)
}
