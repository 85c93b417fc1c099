package vkload

import "strings"

// DriverCustom is ADRENOTOOLS_DRIVER_CUSTOM.
const DriverCustom = 1 << 0

// InjectRequest describes a custom driver for libadrenotools. Empty
// TmpLibDir and FileRedirectDir are passed as NULL.
type InjectRequest struct {
	FeatureFlags    int
	TmpLibDir       string
	HookLibDir      string
	DriverDir       string
	DriverName      string
	FileRedirectDir string
}

// Injector loads a Vulkan driver through libadrenotools.
type Injector interface {
	OpenLibvulkan(req InjectRequest) (Library, error)
}

// splitDriverPath splits at the last '/' or '\'. The directory keeps its
// trailing separator, which libadrenotools expects.
func splitDriverPath(path string) (dir, name string) {
	i := strings.LastIndexAny(path, `/\`)
	if i < 0 {
		return "", path
	}
	return path[:i+1], path[i+1:]
}
