// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file is one secret: the filename is the key name and the trimmed
// contents are the value.
//
// Recognized key files: openrouter-api-key, gemini-api-key, rapidapi-key,
// anthropic-api-key, pexels-api-key.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/studycraft/pkg/types"
)

// Key file names.
const (
	OpenRouterKey = "openrouter-api-key"
	GeminiKey     = "gemini-api-key"
	RapidAPIKey   = "rapidapi-key"
	AnthropicKey  = "anthropic-api-key"
	PexelsKey     = "pexels-api-key"
)

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty
// map. Unreadable files are logged and skipped.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, eris.Wrapf(err, "secrets: read directory %s", dir)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			zap.L().Warn("secrets: could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Credentials maps the recognized key files in m to provider credentials.
func Credentials(m map[string]string) types.Credentials {
	return types.Credentials{
		OpenRouter: m[OpenRouterKey],
		Gemini:     m[GeminiKey],
		RapidAPI:   m[RapidAPIKey],
		Anthropic:  m[AnthropicKey],
		Pexels:     m[PexelsKey],
	}
}
