package vkload

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

var (
	ErrAlreadyLoaded  = errors.New("vulkan: library already loaded")
	ErrNotLoaded      = errors.New("vulkan: library not loaded")
	ErrNoDriver       = errors.New("vulkan: no usable driver library")
	ErrSymbolNotFound = errors.New("vulkan: symbol not found")
	ErrUnsupported    = errors.New("vulkan: dynamic loading unsupported on this platform")
)

// Library is an open shared library.
type Library interface {
	// Symbol returns the address of an exported symbol.
	Symbol(name string) (uintptr, error)
	// Close releases the library handle.
	Close() error
}

// Opener opens a shared library by path or bare file name.
type Opener func(path string) (Library, error)

// MissingSymbolsError lists required entry points that did not resolve.
type MissingSymbolsError struct {
	Scope Scope
	Names []string
}

func (e *MissingSymbolsError) Error() string {
	return fmt.Sprintf("vulkan: failed to load required %s functions: %s", e.Scope, strings.Join(e.Names, ", "))
}

func (e *MissingSymbolsError) Is(target error) bool {
	return target == ErrSymbolNotFound
}

// VersionedFilename returns the platform file name for a library, e.g.
// ("vulkan", 1) is libvulkan.so.1 on Linux and vulkan-1.dll on Windows.
// A major version of zero leaves the version out.
func VersionedFilename(name string, major int) string {
	return versionedFilename(runtime.GOOS, name, major)
}

func versionedFilename(goos, name string, major int) string {
	switch goos {
	case "windows":
		if major > 0 {
			return fmt.Sprintf("%s-%d.dll", name, major)
		}
		return name + ".dll"
	case "darwin", "ios":
		if major > 0 {
			return fmt.Sprintf("lib%s.%d.dylib", name, major)
		}
		return "lib" + name + ".dylib"
	default:
		if major > 0 {
			return fmt.Sprintf("lib%s.so.%d", name, major)
		}
		return "lib" + name + ".so"
	}
}
