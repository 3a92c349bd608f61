package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const tokenSecretBytes = 32

// ResolveTokenSecret returns the JWT signing secret for this deployment.
// Precedence: explicit config value, then the persisted secret file, then a
// freshly generated secret written to cfg.TokenSecretPath so tokens stay
// verifiable across restarts and between instances sharing the file.
func ResolveTokenSecret(cfg Config) ([]byte, error) {
	if cfg.TokenSecret != "" {
		return []byte(cfg.TokenSecret), nil
	}

	path := cfg.TokenSecretPath
	if path == "" {
		return nil, fmt.Errorf("no token secret configured and no secret path to persist one")
	}

	if data, err := os.ReadFile(path); err == nil {
		secret := strings.TrimSpace(string(data))
		if secret != "" {
			return []byte(secret), nil
		}
	}

	secret, err := generateSecret(tokenSecretBytes)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create secret dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to persist token secret: %w", err)
	}
	log.Printf("generated token signing secret; persisted to %s", path)
	return []byte(secret), nil
}

func generateSecret(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
