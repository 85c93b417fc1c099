package config

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownSetting is returned for a section/key pair the store does not map.
var ErrUnknownSetting = errors.New("unknown setting")

// Store holds the live configuration shared by the JNI natives and the
// driver loader, bound to the file it was loaded from.
type Store struct {
	mu     sync.Mutex
	path   string
	config *Config
}

// NewStore wraps an already loaded config. An empty path makes Save a no-op.
func NewStore(path string, config *Config) *Store {
	if config == nil {
		config = DefaultConfig()
	}
	return &Store{path: path, config: config}
}

// OpenStore loads path (or defaults) and corrects invalid fields.
func OpenStore(path string) (*Store, error) {
	config, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(path, CorrectConfig(config)), nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.config
}

// Update applies fn to the in-memory configuration. Changes are not
// persisted until Save.
func (s *Store) Update(fn func(*Config)) {
	s.mu.Lock()
	fn(s.config)
	s.mu.Unlock()
}

// Save writes the configuration to its file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	return Save(s.path, s.config)
}

// SetBaseStringSettingValue sets a string setting by its emulator section
// and key name and persists the result immediately.
func (s *Store) SetBaseStringSettingValue(section, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch section + "/" + key {
	case "Achievements/Username":
		s.config.Achievements.Username = value
	case "Achievements/Token":
		s.config.Achievements.Token = value
	case "EmuCore/GS/CustomDriverPath":
		s.config.Graphics.CustomDriverPath = value
	default:
		return fmt.Errorf("%w: [%s] %s", ErrUnknownSetting, section, key)
	}

	return s.saveLocked()
}
