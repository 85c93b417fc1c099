// Package vkload opens the Vulkan driver library and resolves the
// renderer's function table from it.
package vkload

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/user-none/eblitui/android/config"
)

// SourceKind says where the loaded driver came from.
type SourceKind string

const (
	SourceNone        SourceKind = ""
	SourceAdrenotools SourceKind = "adrenotools"
	SourceCustom      SourceKind = "custom"
	SourceSystem      SourceKind = "system"
)

// Source identifies the loaded driver.
type Source struct {
	Kind SourceKind `json:"kind" yaml:"kind"`
	Path string     `json:"path" yaml:"path"`
}

// Options configures a Loader. Zero values select the platform defaults.
type Options struct {
	// CustomDriverPath is graphics.customDriverPath from the config file.
	CustomDriverPath string
	// UseAdrenotools enables libadrenotools injection on Android.
	UseAdrenotools bool
	Env            DriverEnv

	GOOS     string
	Open     Opener
	Injector Injector
	// OpenInjector loads libadrenotools when Injector is nil. The first
	// injector it returns is kept for later loads.
	OpenInjector func() (Injector, error)
	EntryPoints  []EntryPoint
	// ProcAddr calls a vkGet*ProcAddr pointer for name.
	ProcAddr func(fn, handle uintptr, name string) uintptr
	Logger   *zap.Logger
}

// OptionsFromConfig builds loader options from the graphics config section.
func OptionsFromConfig(g config.GraphicsConfig, de DriverEnv, logger *zap.Logger) Options {
	return Options{
		CustomDriverPath: g.CustomDriverPath,
		UseAdrenotools:   g.UseAdrenotools,
		Env:              de,
		Logger:           logger,
	}
}

// Loader owns the Vulkan library handle and its function table.
type Loader struct {
	mu     sync.Mutex
	opts   Options
	log    *zap.Logger
	lib    Library
	source Source
	table  *Table
}

// NewLoader creates an unloaded Loader.
func NewLoader(opts Options) *Loader {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Open == nil {
		opts.Open = Open
	}
	if opts.OpenInjector == nil {
		opts.OpenInjector = OpenAdrenotools
	}
	if opts.EntryPoints == nil {
		opts.EntryPoints = DefaultEntryPoints
	}
	if opts.ProcAddr == nil {
		opts.ProcAddr = callProcAddr
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		opts:  opts,
		log:   logger.Named("vulkan"),
		table: NewTable(opts.EntryPoints),
	}
}

// IsLoaded reports whether a driver library is open.
func (l *Loader) IsLoaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lib != nil
}

// Source returns where the current driver was loaded from.
func (l *Loader) Source() Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// Table returns the function table. It must not be read while another
// goroutine calls Load or Unload.
func (l *Loader) Table() *Table {
	return l.table
}

// Proc returns a resolved function pointer, or zero.
func (l *Loader) Proc(name string) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.table.Proc(name)
}

func (l *Loader) adrenotoolsEnabled() bool {
	return l.opts.UseAdrenotools && l.opts.GOOS == "android"
}

func (l *Loader) customDriverPath() string {
	if l.opts.CustomDriverPath != "" {
		return l.opts.CustomDriverPath
	}
	if l.opts.Env.LibvulkanPath != "" {
		return l.opts.Env.LibvulkanPath
	}
	if l.adrenotoolsEnabled() {
		return l.opts.Env.AdrenotoolsLibvulkanPath
	}
	return ""
}

// Load opens the driver library and resolves the module-scope entry points.
func (l *Loader) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lib != nil {
		return ErrAlreadyLoaded
	}

	var lib Library
	var source Source
	if custom := l.customDriverPath(); custom != "" {
		lib, source = l.openCustom(custom)
	}
	if lib == nil {
		var err error
		lib, source, err = l.openSystem()
		if err != nil {
			return err
		}
	}

	missing := l.table.resolve(ScopeModule, func(name string) uintptr {
		p, err := lib.Symbol(name)
		if err != nil {
			return 0
		}
		return p
	})
	if len(missing) > 0 {
		for _, name := range missing {
			l.log.Error("Failed to load required module function", zap.String("function", name))
		}
		l.table.Reset()
		if err := lib.Close(); err != nil {
			l.log.Warn("Failed to close driver library", zap.Error(err))
		}
		return &MissingSymbolsError{Scope: ScopeModule, Names: missing}
	}

	l.lib = lib
	l.source = source
	l.log.Info("Loaded Vulkan library", zap.String("source", string(source.Kind)), zap.String("path", source.Path))
	return nil
}

func (l *Loader) openCustom(path string) (Library, Source) {
	if l.adrenotoolsEnabled() {
		if lib := l.injectAdrenotools(path); lib != nil {
			return lib, Source{Kind: SourceAdrenotools, Path: path}
		}
	} else {
		l.log.Info("Attempting to load custom driver", zap.String("path", path))
	}

	lib, err := l.opts.Open(path)
	if err != nil {
		l.log.Warn("Failed to load custom driver, falling back to system driver",
			zap.String("path", path), zap.Error(err))
		return nil, Source{}
	}
	l.log.Info("Successfully loaded custom driver", zap.String("path", path))
	return lib, Source{Kind: SourceCustom, Path: path}
}

func (l *Loader) injectAdrenotools(path string) Library {
	dir, name := splitDriverPath(path)
	hook := l.opts.Env.hookLibDir()
	if hook == "" || dir == "" || name == "" {
		l.log.Warn("libadrenotools requires ANDROID_NATIVE_LIB_DIR and valid custom driver path, falling back to direct loading")
		return nil
	}

	injector := l.opts.Injector
	if injector == nil {
		var err error
		injector, err = l.opts.OpenInjector()
		if err != nil {
			l.log.Warn("libadrenotools unavailable, falling back to direct loading", zap.Error(err))
			return nil
		}
		l.opts.Injector = injector
	}

	l.log.Info("Using libadrenotools to load custom driver", zap.String("driver", name), zap.String("dir", dir))
	lib, err := injector.OpenLibvulkan(InjectRequest{
		FeatureFlags: DriverCustom,
		HookLibDir:   hook,
		DriverDir:    dir,
		DriverName:   name,
	})
	if err != nil {
		l.log.Warn("libadrenotools failed to load custom driver, falling back to direct loading", zap.Error(err))
		return nil
	}
	l.log.Info("Successfully loaded custom driver via libadrenotools")
	return lib
}

// systemCandidates lists the system library names tried in order.
func (l *Loader) systemCandidates() []string {
	goos := l.opts.GOOS
	switch goos {
	case "darwin", "ios":
		return []string{versionedFilename(goos, "MoltenVK", 0)}
	case "android":
		var names []string
		if dir := l.opts.Env.NativeLibDir; dir != "" {
			names = append(names, strings.TrimRight(dir, "/")+"/libvulkan.so")
		}
		names = append(names, "libvulkan.so", versionedFilename(goos, "vulkan", 1), versionedFilename(goos, "vulkan", 0))
		return dedupe(names)
	default:
		return []string{versionedFilename(goos, "vulkan", 1), versionedFilename(goos, "vulkan", 0)}
	}
}

func (l *Loader) openSystem() (Library, Source, error) {
	var errs []error
	for _, name := range l.systemCandidates() {
		lib, err := l.opts.Open(name)
		if err == nil {
			return lib, Source{Kind: SourceSystem, Path: name}, nil
		}
		l.log.Debug("Driver candidate failed", zap.String("path", name), zap.Error(err))
		errs = append(errs, err)
	}
	return nil, Source{}, fmt.Errorf("%w: %w", ErrNoDriver, errors.Join(errs...))
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Unload clears the function table and closes the library.
func (l *Loader) Unload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.table.Reset()
	if l.lib != nil {
		if err := l.lib.Close(); err != nil {
			l.log.Warn("Failed to close driver library", zap.Error(err))
		}
		l.lib = nil
	}
	l.source = Source{}
}

// LoadInstanceFunctions resolves instance-scope entries for a VkInstance.
func (l *Loader) LoadInstanceFunctions(instance uintptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lib == nil {
		return ErrNotLoaded
	}
	// Device pointers belong to the previous instance.
	l.table.ResetScope(ScopeDevice)
	gipa := l.table.Proc("vkGetInstanceProcAddr")
	return l.resolveScope(ScopeInstance, gipa, instance)
}

// LoadDeviceFunctions resolves device-scope entries for a VkDevice. The
// instance functions must be loaded first.
func (l *Loader) LoadDeviceFunctions(device uintptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lib == nil {
		return ErrNotLoaded
	}
	gdpa := l.table.Proc("vkGetDeviceProcAddr")
	if gdpa == 0 {
		return fmt.Errorf("%w: vkGetDeviceProcAddr", ErrSymbolNotFound)
	}
	return l.resolveScope(ScopeDevice, gdpa, device)
}

func (l *Loader) resolveScope(s Scope, getProcAddr, handle uintptr) error {
	missing := l.table.resolve(s, func(name string) uintptr {
		return l.opts.ProcAddr(getProcAddr, handle, name)
	})
	if len(missing) == 0 {
		return nil
	}
	for _, name := range missing {
		l.log.Error("Failed to load required function", zap.Stringer("scope", s), zap.String("function", name))
	}
	return &MissingSymbolsError{Scope: s, Names: missing}
}
