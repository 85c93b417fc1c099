// Package nativeapp wires the achievements bridge, settings store, device
// detection and Vulkan loader behind the JNI entry points of libpsx2.so.
package nativeapp

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/user-none/eblitui/android/achievements"
	"github.com/user-none/eblitui/android/config"
	"github.com/user-none/eblitui/android/device"
	"github.com/user-none/eblitui/android/logging"
	"github.com/user-none/eblitui/android/vkload"
)

// AppName names the data directory on desktop hosts.
const AppName = "psx2"

// Env holds process environment overrides.
type Env struct {
	ConfigPath string `env:"PSX2_CONFIG_PATH"`
	Verbose    bool   `env:"PSX2_LOG_VERBOSE"`
}

// Options configures New. Zero values select the process defaults.
type Options struct {
	Logger     *zap.Logger
	ConfigPath string
	Client     achievements.Client
	Props      device.Properties
	DriverEnv  *vkload.DriverEnv
	Loader     *vkload.Options
}

// App is the state shared by every JNI entry point.
type App struct {
	log      *zap.Logger
	store    *config.Store
	bridge   *achievements.Bridge
	natives  *achievements.Natives
	detector *device.Detector
	loader   *vkload.Loader
}

// New builds the app. Failures to read configuration or device
// properties are logged and replaced with defaults.
func New(rt achievements.Runtime, opts Options) *App {
	log := logging.OrNop(opts.Logger)

	store := openStore(opts.ConfigPath, log)

	props := opts.Props
	if props == nil {
		var err error
		props, err = device.SystemProperties()
		if err != nil {
			if !errors.Is(err, device.ErrNoSystemProperties) {
				log.Warn("Failed to read system properties", zap.Error(err))
			}
			props = device.Map{}
		}
	}
	detector := device.NewDetector(props, log)

	bridge := achievements.NewBridge(rt,
		achievements.WithLogger(log),
		achievements.WithNotifications(func() bool {
			return store.Snapshot().Achievements.Notifications
		}))

	a := &App{
		log:      log,
		store:    store,
		bridge:   bridge,
		natives:  achievements.NewNatives(opts.Client, store, log),
		detector: detector,
	}
	a.loader = vkload.NewLoader(a.loaderOptions(opts))
	return a
}

func openStore(path string, log *zap.Logger) *config.Store {
	if path == "" {
		p, err := config.Path(AppName)
		if err != nil {
			log.Warn("No config directory, settings will not persist", zap.Error(err))
			return config.NewStore("", nil)
		}
		path = p
	}
	store, err := config.OpenStore(path)
	if err != nil {
		log.Error("Failed to load config, using defaults", zap.String("path", path), zap.Error(err))
		return config.NewStore(path, nil)
	}
	return store
}

func (a *App) loaderOptions(opts Options) vkload.Options {
	if opts.Loader != nil {
		lo := *opts.Loader
		if lo.Logger == nil {
			lo.Logger = a.log
		}
		return lo
	}

	var de vkload.DriverEnv
	if opts.DriverEnv != nil {
		de = *opts.DriverEnv
	} else {
		var err error
		de, err = vkload.DriverEnvFromEnviron()
		if err != nil {
			a.log.Warn("Failed to read driver environment", zap.Error(err))
		}
	}

	lo := vkload.OptionsFromConfig(a.store.Snapshot().Graphics, de, a.log)
	// libadrenotools only hooks Qualcomm's Adreno driver.
	if lo.UseAdrenotools {
		switch vendor := a.detector.DetectGPUVendor(); vendor {
		case device.VendorQualcomm, device.VendorUnknown:
		default:
			a.log.Info("Disabling libadrenotools for non-Adreno GPU", zap.Stringer("vendor", vendor))
			lo.UseAdrenotools = false
		}
	}
	return lo
}

// Start initializes the achievements bridge. A failure leaves callbacks
// disabled but the rest of the app usable.
func (a *App) Start() error {
	r := a.detector.Report()
	a.log.Info("Device",
		zap.String("manufacturer", r.Manufacturer),
		zap.String("model", r.Model),
		zap.String("hardware", r.Hardware),
		zap.String("vendor", r.Vendor))

	if err := a.bridge.Initialize(); err != nil {
		a.log.Error("Achievements bridge unavailable", zap.Error(err))
		return err
	}
	return nil
}

// Close shuts down the bridge and unloads the Vulkan library.
func (a *App) Close() {
	a.bridge.Shutdown()
	a.loader.Unload()
	_ = a.log.Sync()
}

func (a *App) Bridge() *achievements.Bridge   { return a.bridge }
func (a *App) Natives() *achievements.Natives { return a.natives }
func (a *App) Store() *config.Store           { return a.store }
func (a *App) Device() *device.Detector       { return a.detector }
func (a *App) Loader() *vkload.Loader         { return a.loader }
func (a *App) Logger() *zap.Logger            { return a.log }

var (
	mu      sync.Mutex
	client  achievements.Client
	current *App
)

// RegisterClient sets the achievements client used by the JNI natives.
// Must be called during init() before the library is loaded by the VM.
func RegisterClient(c achievements.Client) {
	mu.Lock()
	defer mu.Unlock()
	client = c
}

// Current returns the app created by JNI_OnLoad, or nil.
func Current() *App {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// load creates and starts the process app, replacing any previous one.
func load(rt achievements.Runtime, opts Options) *App {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		current.Close()
	}
	if opts.Client == nil {
		opts.Client = client
	}
	current = New(rt, opts)
	_ = current.Start()
	return current
}

func unload() {
	mu.Lock()
	defer mu.Unlock()

	if current != nil {
		current.Close()
		current = nil
	}
}

// processLogger builds the logcat logger honoring PSX2_LOG_VERBOSE.
func processLogger(e Env) *zap.Logger {
	l, err := logging.New(logging.Options{Tag: logging.DefaultTag, Verbose: e.Verbose, Logcat: true})
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// processOptions reads Options from the environment.
func processOptions() Options {
	var e Env
	envErr := config.ParseEnv(&e)
	log := processLogger(e)
	if envErr != nil {
		log.Warn("Failed to parse environment", zap.Error(envErr))
	}
	return Options{Logger: log, ConfigPath: e.ConfigPath}
}
