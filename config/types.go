package config

// Config represents the glue configuration stored in config.json
type Config struct {
	Version      int                `json:"version"`
	Achievements AchievementsConfig `json:"achievements"`
	Graphics     GraphicsConfig     `json:"graphics"`
}

// AchievementsConfig contains RetroAchievements integration settings
type AchievementsConfig struct {
	Enabled       bool   `json:"enabled"`
	HardcoreMode  bool   `json:"hardcoreMode"`  // Applied on next game load
	Notifications bool   `json:"notifications"` // Forward showNotification popups to the UI layer
	Username      string `json:"username,omitempty"`
	Token         string `json:"token,omitempty"` // Auth token (password is never stored)
}

// GraphicsConfig contains Vulkan driver selection settings
type GraphicsConfig struct {
	CustomDriverPath string `json:"customDriverPath,omitempty"` // Absolute path to a replacement libvulkan
	UseAdrenotools   bool   `json:"useAdrenotools"`             // Inject custom drivers through libadrenotools
}

// DefaultConfig returns a new Config with default values
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Achievements: AchievementsConfig{
			Enabled:       false,
			HardcoreMode:  false,
			Notifications: true, // Default ON
		},
		Graphics: GraphicsConfig{
			UseAdrenotools: true, // Default ON
		},
	}
}
