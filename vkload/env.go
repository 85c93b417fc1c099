package vkload

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DriverEnv holds the environment variables that steer driver selection.
type DriverEnv struct {
	LibvulkanPath            string `env:"LIBVULKAN_PATH"`
	AdrenotoolsLibvulkanPath string `env:"ADRENOTOOLS_LIBVULKAN_PATH"`
	NativeLibDir             string `env:"ANDROID_NATIVE_LIB_DIR"`
	DataDir                  string `env:"ANDROID_DATA_DIR"`
}

// DriverEnvFromEnviron reads DriverEnv from the process environment.
func DriverEnvFromEnviron() (DriverEnv, error) {
	var de DriverEnv
	if err := env.Parse(&de); err != nil {
		return DriverEnv{}, fmt.Errorf("parse driver env: %w", err)
	}
	return de, nil
}

// DriverEnvFrom reads DriverEnv from vars.
func DriverEnvFrom(vars map[string]string) (DriverEnv, error) {
	var de DriverEnv
	if err := env.ParseWithOptions(&de, env.Options{Environment: vars}); err != nil {
		return DriverEnv{}, fmt.Errorf("parse driver env: %w", err)
	}
	return de, nil
}

// hookLibDir is where libadrenotools finds its hook libraries.
func (e DriverEnv) hookLibDir() string {
	if e.NativeLibDir != "" {
		return e.NativeLibDir
	}
	return e.DataDir
}
