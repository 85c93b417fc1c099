// Package device guesses the GPU vendor of an Android device from its
// system properties.
package device

import (
	"strings"

	"go.uber.org/zap"

	"github.com/user-none/eblitui/android/logging"
)

// GPUVendor is the detected GPU family.
type GPUVendor int

const (
	VendorUnknown     GPUVendor = iota
	VendorQualcomm              // Adreno (Snapdragon)
	VendorARM                   // Mali (Mediatek, Exynos, etc.)
	VendorImagination           // PowerVR
	VendorOther
)

func (v GPUVendor) String() string {
	switch v {
	case VendorQualcomm:
		return "Qualcomm"
	case VendorARM:
		return "ARM"
	case VendorImagination:
		return "Imagination"
	case VendorOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// Detector classifies a device from its properties.
type Detector struct {
	props  Properties
	logger *zap.Logger
}

// NewDetector returns a detector reading from props. A nil logger disables
// logging.
func NewDetector(props Properties, logger *zap.Logger) *Detector {
	return &Detector{props: props, logger: logging.OrNop(logger).Named("device")}
}

func (d *Detector) lower(key string) string {
	return strings.ToLower(d.props.Get(key))
}

// Manufacturer returns ro.product.manufacturer.
func (d *Detector) Manufacturer() string {
	return d.props.Get(PropManufacturer)
}

// Model returns ro.product.model.
func (d *Detector) Model() string {
	return d.props.Get(PropModel)
}

// GPURenderer returns the best renderer hint available without a GL or
// Vulkan context, which is ro.hardware.
func (d *Detector) GPURenderer() string {
	return d.props.Get(PropHardware)
}

// IsMediatek reports whether the SoC looks like a Mediatek part (Mali GPU).
func (d *Detector) IsMediatek() bool {
	hardware := d.lower(PropHardware)
	board := d.lower(PropBoard)
	platform := d.lower(PropPlatform)

	return strings.HasPrefix(hardware, "mt") ||
		strings.Contains(hardware, "mediatek") ||
		strings.HasPrefix(board, "mt") ||
		strings.HasPrefix(platform, "mt") ||
		strings.Contains(platform, "mediatek")
}

// IsSnapdragon reports whether the SoC looks like a Qualcomm part (Adreno GPU).
func (d *Detector) IsSnapdragon() bool {
	hardware := d.lower(PropHardware)
	platform := d.lower(PropPlatform)

	return strings.Contains(hardware, "qcom") ||
		strings.Contains(hardware, "qualcomm") ||
		strings.HasPrefix(platform, "msm") ||
		strings.HasPrefix(platform, "sdm") ||
		strings.HasPrefix(platform, "sm") ||
		strings.Contains(platform, "qcom")
}

// DetectGPUVendor classifies the GPU vendor. SoC checks run first; the EGL
// driver name is only consulted when they are inconclusive.
func (d *Detector) DetectGPUVendor() GPUVendor {
	if d.IsSnapdragon() {
		d.logger.Info("Detected Qualcomm Snapdragon (Adreno GPU)")
		return VendorQualcomm
	}

	if d.IsMediatek() {
		d.logger.Info("Detected Mediatek (Mali GPU)")
		return VendorARM
	}

	hardware := d.props.Get(PropHardware)
	if strings.Contains(strings.ToLower(hardware), "exynos") {
		d.logger.Info("Detected Samsung Exynos (Mali GPU)")
		return VendorARM
	}

	egl := d.lower(PropEGL)
	switch {
	case egl == "":
	case strings.Contains(egl, "adreno"):
		d.logger.Info("Detected Adreno EGL driver", zap.String("egl", egl))
		return VendorQualcomm
	case strings.Contains(egl, "mali"):
		d.logger.Info("Detected Mali EGL driver", zap.String("egl", egl))
		return VendorARM
	case strings.Contains(egl, "powervr"):
		d.logger.Info("Detected PowerVR EGL driver", zap.String("egl", egl))
		return VendorImagination
	default:
		// Unrecognized drivers stay Unknown.
		d.logger.Info("Unrecognized EGL driver", zap.String("egl", egl), zap.String("hardware", hardware))
	}

	d.logger.Info("Unknown GPU vendor", zap.String("hardware", hardware))
	return VendorUnknown
}

// Report is a snapshot of everything the detector knows.
type Report struct {
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	Model        string `json:"model" yaml:"model"`
	Hardware     string `json:"hardware" yaml:"hardware"`
	Board        string `json:"board" yaml:"board"`
	Platform     string `json:"platform" yaml:"platform"`
	EGL          string `json:"egl,omitempty" yaml:"egl,omitempty"`
	Snapdragon   bool   `json:"snapdragon" yaml:"snapdragon"`
	Mediatek     bool   `json:"mediatek" yaml:"mediatek"`
	Vendor       string `json:"vendor" yaml:"vendor"`
}

// Report collects the raw properties and the derived classification.
func (d *Detector) Report() Report {
	return Report{
		Manufacturer: d.Manufacturer(),
		Model:        d.Model(),
		Hardware:     d.GPURenderer(),
		Board:        d.props.Get(PropBoard),
		Platform:     d.props.Get(PropPlatform),
		EGL:          d.props.Get(PropEGL),
		Snapdragon:   d.IsSnapdragon(),
		Mediatek:     d.IsMediatek(),
		Vendor:       d.DetectGPUVendor().String(),
	}
}
