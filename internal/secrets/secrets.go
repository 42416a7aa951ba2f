// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves provider API keys from a directory of plain-text
// files and the environment. Each file in the directory represents one
// secret: the filename is the key name and the file contents (trimmed) are
// the value.
//
// Supported key files: anthropic-api-key, openai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// envKeys maps secret names to their environment variable fallbacks. A .env
// file loaded at startup feeds the same path.
var envKeys = map[string]string{
	"anthropic-api-key": "ANTHROPIC_API_KEY",
	"openai-api-key":    "OPENAI_API_KEY",
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents, merged with the environment variable fallbacks. Values from the
// directory win over the environment. A missing directory is not an error.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	secrets := make(map[string]string)

	for name, env := range envKeys {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			secrets[name] = v
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return secrets, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[entry.Name()] = value
		}
	}

	return secrets, nil
}

// KeyName returns the secret file name that holds the API key for a
// provider name such as "anthropic".
func KeyName(provider string) string {
	return provider + "-api-key"
}
