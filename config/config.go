// Package config loads and stores the settings the platform glue reads:
// achievements toggles and credentials, and Vulkan driver selection.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Load loads the configuration from path.
// If the file doesn't exist, it returns default configuration.
// If the file is corrupted, it returns an error.
// Missing fields (absent from JSON) are silently defaulted.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	jsonBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := &Config{}
	if err := json.Unmarshal(jsonBytes, config); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	ApplyMissingDefaults(config, detectPresentKeys(jsonBytes))

	return config, nil
}

// Save saves the configuration to path atomically
func Save(path string, config *Config) error {
	return AtomicWriteJSON(path, config)
}

// CreateIfMissing writes a default config to path if it doesn't exist
func CreateIfMissing(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Save(path, DefaultConfig())
	}
	return nil
}
