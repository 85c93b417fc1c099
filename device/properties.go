package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Property keys read by the detector.
const (
	PropManufacturer = "ro.product.manufacturer"
	PropModel        = "ro.product.model"
	PropHardware     = "ro.hardware"
	PropBoard        = "ro.product.board"
	PropPlatform     = "ro.board.platform"
	PropEGL          = "ro.hardware.egl"
)

// ErrNoSystemProperties is returned by SystemProperties off Android.
var ErrNoSystemProperties = errors.New("system properties are only available on android")

// PropValueMax is PROP_VALUE_MAX from sys/system_properties.h.
const PropValueMax = 92

// Properties reads Android system properties. Unset keys read as "".
type Properties interface {
	Get(key string) string
}

// Map is a fixed property set.
type Map map[string]string

func (m Map) Get(key string) string {
	return m[key]
}

// ParseBuildProp reads build.prop style "key=value" lines. Blank lines and
// lines starting with '#' are skipped; later keys override earlier ones.
func ParseBuildProp(r io.Reader) (Map, error) {
	props := make(Map)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read build.prop: %w", err)
	}
	return props, nil
}

// Getprop reads properties by running the getprop tool, for use from an
// adb shell or terminal app where libc property access is not linked in.
type Getprop struct {
	Path    string        // defaults to "getprop"
	Timeout time.Duration // defaults to 2s
}

func (g Getprop) Get(key string) string {
	path := g.Path
	if path == "" {
		path = "getprop"
	}
	timeout := g.Timeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, key).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
