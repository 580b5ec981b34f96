// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of plain-text files.
// Each regular file is one secret: the filename is its name and the trimmed
// contents are its value. Keeping keys out of docprep.yaml lets the config
// file be committed.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docprep/internal/logger"
)

// DefaultDir is the directory the CLI reads secrets from.
const DefaultDir = ".secrets"

// DoclingAPIKey names the file holding the conversion service API key.
const DoclingAPIKey = "docling-api-key"

// Store maps secret names to values.
type Store map[string]string

// Get returns the named secret and whether it was present.
func (s Store) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// Load reads every file in dir. A missing directory yields an empty Store.
// Dotfiles, subdirectories and empty files are skipped. An unreadable file
// is logged and skipped.
func Load(dir string, log logger.Logger) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", "name", name, "err", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			store[name] = value
		}
	}
	return store, nil
}
