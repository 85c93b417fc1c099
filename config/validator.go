package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// detectPresentKeys unmarshals JSON bytes to determine which config keys
// are explicitly present in the file. Returns a flat set of dotted-path keys
// (e.g., "achievements.notifications"). Only checks fields whose defaults
// differ from the zero value.
func detectPresentKeys(jsonBytes []byte) map[string]bool {
	present := make(map[string]bool)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		return present
	}

	if _, ok := raw["version"]; ok {
		present["version"] = true
	}

	nested := map[string][]string{
		"achievements": {"notifications"},
		"graphics":     {"useAdrenotools"},
	}
	for section, keys := range nested {
		sectionRaw, ok := raw[section]
		if !ok {
			continue
		}
		var fields map[string]json.RawMessage
		if json.Unmarshal(sectionRaw, &fields) != nil {
			continue
		}
		for _, k := range keys {
			if _, ok := fields[k]; ok {
				present[section+"."+k] = true
			}
		}
	}

	return present
}

// ApplyMissingDefaults sets default values for config fields that are absent
// from the JSON file, preserving intentional zero values.
func ApplyMissingDefaults(config *Config, presentKeys map[string]bool) {
	defaults := DefaultConfig()

	if !presentKeys["version"] {
		config.Version = defaults.Version
	}
	if !presentKeys["achievements.notifications"] {
		config.Achievements.Notifications = defaults.Achievements.Notifications
	}
	if !presentKeys["graphics.useAdrenotools"] {
		config.Graphics.UseAdrenotools = defaults.Graphics.UseAdrenotools
	}
}

// ValidateConfig checks config fields and returns human-readable error
// descriptions. An empty slice means the config is valid.
func ValidateConfig(config *Config) []string {
	var errors []string

	// version
	if config.Version != 1 {
		errors = append(errors, fmt.Sprintf("version: %d (valid: 1)", config.Version))
	}

	// graphics.customDriverPath
	if p := config.Graphics.CustomDriverPath; p != "" && !filepath.IsAbs(p) {
		errors = append(errors, fmt.Sprintf("graphics.customDriverPath: %q (valid: absolute path or empty)", p))
	}

	// achievements.token requires a username to be meaningful
	if config.Achievements.Token != "" && config.Achievements.Username == "" {
		errors = append(errors, "achievements.token: set without achievements.username")
	}

	return errors
}

// CorrectConfig resets any invalid fields to their defaults from DefaultConfig().
// Valid fields are preserved.
func CorrectConfig(config *Config) *Config {
	defaults := DefaultConfig()

	if config.Version != 1 {
		config.Version = defaults.Version
	}

	if p := config.Graphics.CustomDriverPath; p != "" && !filepath.IsAbs(p) {
		config.Graphics.CustomDriverPath = defaults.Graphics.CustomDriverPath
	}

	if config.Achievements.Token != "" && config.Achievements.Username == "" {
		config.Achievements.Token = ""
	}

	return config
}
