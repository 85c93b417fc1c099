// Package drivers reads custom Vulkan driver packages (a bare .so, or a
// ZIP, 7z, RAR, gzip or tar.gz archive in the adrenotools layout with an
// optional meta.json) and installs them under the application data
// directory.
package drivers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
	magicELF    = []byte{0x7F, 0x45, 0x4C, 0x46}
)

// Maximum driver library size (Mesa Turnip builds are ~30MB unstripped)
const maxLibrarySize = 64 * 1024 * 1024

// Maximum meta.json size
const maxMetaSize = 64 * 1024

const metaFile = "meta.json"

// ErrNoLibrary is returned when a package holds no shared library
var ErrNoLibrary = errors.New("no driver library found in package")

// ErrUnsupportedFormat is returned for unrecognized file formats
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrFileTooLarge is returned when extracted content exceeds size limit
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// formatType represents the detected file format
type formatType int

const (
	formatUnknown formatType = iota
	formatLibrary
	formatZIP
	format7z
	formatGzip
	formatRAR
)

// Meta is the adrenotools driver package manifest.
type Meta struct {
	SchemaVersion  int    `json:"schemaVersion"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Author         string `json:"author,omitempty"`
	PackageVersion string `json:"packageVersion,omitempty"`
	Vendor         string `json:"vendor,omitempty"`
	DriverVersion  string `json:"driverVersion,omitempty"`
	MinAPI         int    `json:"minApi,omitempty"`
	LibraryName    string `json:"libraryName"`
}

// Package is a driver read into memory.
type Package struct {
	Meta    Meta
	Library []byte
}

// visitFunc receives each regular file in an archive. name uses forward
// slashes.
type visitFunc func(name string, r io.Reader) error

// Open reads the driver package at path. Archives are detected by magic
// bytes, then by extension. When meta.json names a library that entry is
// used; otherwise the first .so whose name mentions vulkan, then the first
// .so. A missing meta.json is synthesized from the library name.
func Open(path string) (*Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	// Read header for magic byte detection
	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	// Reset file position
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek file: %w", err)
	}

	var walk func(string, visitFunc) error
	switch detectFormat(header, path) {
	case formatLibrary:
		data, err := limitedRead(f, maxLibrarySize)
		if err != nil {
			return nil, fmt.Errorf("failed to read library: %w", err)
		}
		name := filepath.Base(path)
		return &Package{Meta: defaultMeta(name), Library: data}, nil
	case formatZIP:
		walk = walkZIP
	case format7z:
		walk = walk7z
	case formatGzip:
		walk = walkGzip
	case formatRAR:
		walk = walkRAR
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	c := &collector{libraries: make(map[string][]byte)}
	if err := walk(path, c.visit); err != nil {
		return nil, err
	}
	return c.pkg()
}

// detectFormat determines the file format based on magic bytes and extension.
func detectFormat(header []byte, path string) formatType {
	lower := strings.ToLower(path)
	ext := filepath.Ext(lower)

	// Check magic bytes first (more reliable)
	if len(header) >= 4 {
		switch {
		case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
			return formatZIP
		case bytes.HasPrefix(header, magicRAR):
			return formatRAR
		case bytes.HasPrefix(header, magicELF):
			return formatLibrary
		}
	}
	if len(header) >= 6 && bytes.HasPrefix(header, magic7z) {
		return format7z
	}
	if len(header) >= 2 && bytes.HasPrefix(header, magicGzip) {
		return formatGzip
	}

	// Fall back to extension for archive formats
	switch ext {
	case ".zip", ".adpkg":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	case ".so":
		return formatLibrary
	}

	return formatUnknown
}

func isLibrary(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".so")
}

// collector keeps the manifest and every candidate library seen in an
// archive, in order.
type collector struct {
	meta      *Meta
	order     []string
	libraries map[string][]byte
}

func (c *collector) visit(name string, r io.Reader) error {
	base := path.Base(name)
	switch {
	case strings.EqualFold(base, metaFile) && c.meta == nil:
		data, err := limitedRead(r, maxMetaSize)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		var m Meta
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		c.meta = &m
	case isLibrary(base):
		if _, ok := c.libraries[base]; ok {
			return nil
		}
		data, err := limitedRead(r, maxLibrarySize)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		c.order = append(c.order, base)
		c.libraries[base] = data
	}
	return nil
}

func (c *collector) pkg() (*Package, error) {
	if c.meta != nil && c.meta.LibraryName != "" {
		data, ok := c.libraries[path.Base(c.meta.LibraryName)]
		if !ok {
			return nil, fmt.Errorf("%w: meta.json names %q", ErrNoLibrary, c.meta.LibraryName)
		}
		m := *c.meta
		m.LibraryName = path.Base(m.LibraryName)
		return &Package{Meta: m, Library: data}, nil
	}

	name := ""
	for _, n := range c.order {
		if strings.Contains(strings.ToLower(n), "vulkan") {
			name = n
			break
		}
	}
	if name == "" && len(c.order) > 0 {
		name = c.order[0]
	}
	if name == "" {
		return nil, ErrNoLibrary
	}

	m := defaultMeta(name)
	if c.meta != nil {
		m = *c.meta
		m.LibraryName = name
		if m.Name == "" {
			m.Name = defaultMeta(name).Name
		}
	}
	return &Package{Meta: m, Library: c.libraries[name]}, nil
}

func defaultMeta(libraryName string) Meta {
	return Meta{
		SchemaVersion: 1,
		Name:          strings.TrimSuffix(libraryName, filepath.Ext(libraryName)),
		LibraryName:   libraryName,
	}
}

// limitedRead reads from r up to limit bytes, returning an error if exceeded
func limitedRead(r io.Reader, limit int64) ([]byte, error) {
	lr := io.LimitReader(r, limit+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
