package drivers

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/user-none/eblitui/android/config"
)

const driversDir = "drivers"

// Installed describes a driver unpacked on disk.
type Installed struct {
	Meta Meta   `json:"meta" yaml:"meta"`
	Dir  string `json:"dir" yaml:"dir"`
	// Path is the library to set as graphics.customDriverPath.
	Path string `json:"path" yaml:"path"`
}

// Dir returns the drivers directory under the application data directory.
func Dir(appName string) (string, error) {
	base, err := config.BaseDir(appName)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, driversDir), nil
}

// dirName maps a package name to a single safe path element.
func dirName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if clean == "" || strings.Trim(clean, ".") == "" {
		return "driver"
	}
	return clean
}

// Install writes pkg under root/<name>/ and returns where it landed. An
// existing install with the same name is replaced.
func Install(root string, pkg *Package) (Installed, error) {
	if pkg == nil || len(pkg.Library) == 0 {
		return Installed{}, ErrNoLibrary
	}

	libName := filepath.Base(pkg.Meta.LibraryName)
	if !isLibrary(libName) {
		return Installed{}, fmt.Errorf("%w: invalid library name %q", ErrNoLibrary, pkg.Meta.LibraryName)
	}

	dir, err := filepath.Abs(filepath.Join(root, dirName(pkg.Meta.Name)))
	if err != nil {
		return Installed{}, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Installed{}, fmt.Errorf("failed to create directory: %w", err)
	}
	libPath := filepath.Join(dir, libName)

	tempFile := libPath + ".tmp"
	if err := os.WriteFile(tempFile, pkg.Library, 0755); err != nil {
		return Installed{}, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, libPath); err != nil {
		os.Remove(tempFile)
		return Installed{}, fmt.Errorf("failed to rename temp file: %w", err)
	}

	if err := removeStale(dir, libName); err != nil {
		return Installed{}, err
	}

	meta := pkg.Meta
	meta.LibraryName = libName
	if err := config.AtomicWriteJSON(filepath.Join(dir, metaFile), meta); err != nil {
		return Installed{}, err
	}

	return Installed{Meta: meta, Dir: dir, Path: libPath}, nil
}

// removeStale deletes libraries left in dir by an earlier install that named
// a different library.
func removeStale(dir, keep string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read driver directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == keep || !isLibrary(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove stale library: %w", err)
		}
	}
	return nil
}

// List returns the drivers installed under root. Directories without a
// readable meta.json or library are skipped. A missing root is empty.
func List(root string) ([]Installed, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read drivers directory: %w", err)
	}

	var out []Installed
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir, err := filepath.Abs(filepath.Join(root, e.Name()))
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, metaFile))
		if err != nil {
			continue
		}
		var meta Meta
		if json.Unmarshal(data, &meta) != nil || meta.LibraryName == "" {
			continue
		}
		libPath := filepath.Join(dir, filepath.Base(meta.LibraryName))
		if _, err := os.Stat(libPath); err != nil {
			continue
		}
		out = append(out, Installed{Meta: meta, Dir: dir, Path: libPath})
	}
	return out, nil
}

// Remove deletes the install named name from root.
func Remove(root, name string) error {
	dir := filepath.Join(root, dirName(name))
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("driver %q: %w", name, err)
	}
	return os.RemoveAll(dir)
}
