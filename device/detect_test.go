package device

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDetectGPUVendor(t *testing.T) {
	tests := []struct {
		name       string
		props      Map
		want       GPUVendor
		snapdragon bool
		mediatek   bool
	}{
		{
			name:       "snapdragon 8 gen 2",
			props:      Map{PropHardware: "qcom", PropPlatform: "kalama", PropBoard: "kalama"},
			want:       VendorQualcomm,
			snapdragon: true,
		},
		{
			name:       "legacy msm platform",
			props:      Map{PropHardware: "angler", PropPlatform: "msm8994"},
			want:       VendorQualcomm,
			snapdragon: true,
		},
		{
			name:       "sm platform prefix",
			props:      Map{PropHardware: "lahaina", PropPlatform: "sm8350"},
			want:       VendorQualcomm,
			snapdragon: true,
		},
		{
			name:       "upper case hardware",
			props:      Map{PropHardware: "QCOM"},
			want:       VendorQualcomm,
			snapdragon: true,
		},
		{
			name:     "dimensity",
			props:    Map{PropHardware: "mt6893", PropPlatform: "mt6893"},
			want:     VendorARM,
			mediatek: true,
		},
		{
			name:     "mediatek from board only",
			props:    Map{PropHardware: "k65v1_64_bsp", PropBoard: "MT6765"},
			want:     VendorARM,
			mediatek: true,
		},
		{
			name:     "mediatek named in platform",
			props:    Map{PropPlatform: "mediatek-helio"},
			want:     VendorARM,
			mediatek: true,
		},
		{
			name:       "snapdragon wins over mediatek",
			props:      Map{PropHardware: "mt6765", PropPlatform: "sm8150"},
			want:       VendorQualcomm,
			snapdragon: true,
			mediatek:   true,
		},
		{
			name:  "exynos",
			props: Map{PropHardware: "exynos2100", PropPlatform: "exynos2100"},
			want:  VendorARM,
		},
		{
			name:  "tensor via egl",
			props: Map{PropHardware: "zuma", PropPlatform: "zuma", PropEGL: "mali"},
			want:  VendorARM,
		},
		{
			name:  "unisoc powervr via egl",
			props: Map{PropHardware: "ums512", PropPlatform: "ums512", PropEGL: "powervr"},
			want:  VendorImagination,
		},
		{
			name:  "adreno via egl",
			props: Map{PropHardware: "unknownsoc", PropEGL: "adreno"},
			want:  VendorQualcomm,
		},
		{
			name:  "unrecognized egl driver",
			props: Map{PropHardware: "s5e9925", PropPlatform: "s5e9925", PropEGL: "samsung"},
			want:  VendorUnknown,
		},
		{
			name:  "emulator without egl",
			props: Map{PropHardware: "ranchu"},
			want:  VendorUnknown,
		},
		{
			name:  "no properties",
			props: Map{},
			want:  VendorUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector(tc.props, nil)

			assert.Equal(t, tc.snapdragon, d.IsSnapdragon(), "IsSnapdragon")
			assert.Equal(t, tc.mediatek, d.IsMediatek(), "IsMediatek")
			assert.Equal(t, tc.want, d.DetectGPUVendor())
		})
	}
}

func TestDetectGPUVendorDeterministic(t *testing.T) {
	props := Map{PropHardware: "mt6877", PropPlatform: "mt6877", PropEGL: "mali"}

	first := NewDetector(props, nil).DetectGPUVendor()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, NewDetector(props, nil).DetectGPUVendor())
	}
}

func TestDetectGPUVendorLogs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d := NewDetector(Map{PropHardware: "ranchu"}, zap.New(core))

	d.DetectGPUVendor()

	entries := logs.FilterMessage("Unknown GPU vendor").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "device", entries[0].LoggerName)
	assert.Equal(t, "ranchu", entries[0].ContextMap()["hardware"])
}

func TestDetectorAccessors(t *testing.T) {
	d := NewDetector(Map{
		PropManufacturer: "AYN",
		PropModel:        "Odin2",
		PropHardware:     "qcom",
	}, nil)

	assert.Equal(t, "AYN", d.Manufacturer())
	assert.Equal(t, "Odin2", d.Model())
	assert.Equal(t, "qcom", d.GPURenderer())
}

func TestReport(t *testing.T) {
	d := NewDetector(Map{
		PropManufacturer: "AYN",
		PropModel:        "Odin2",
		PropHardware:     "qcom",
		PropBoard:        "kalama",
		PropPlatform:     "kalama",
	}, nil)

	r := d.Report()
	assert.Equal(t, "AYN", r.Manufacturer)
	assert.Equal(t, "kalama", r.Board)
	assert.True(t, r.Snapdragon)
	assert.False(t, r.Mediatek)
	assert.Equal(t, "Qualcomm", r.Vendor)
}

func TestGPUVendorString(t *testing.T) {
	assert.Equal(t, "Unknown", VendorUnknown.String())
	assert.Equal(t, "Qualcomm", VendorQualcomm.String())
	assert.Equal(t, "ARM", VendorARM.String())
	assert.Equal(t, "Imagination", VendorImagination.String())
	assert.Equal(t, "Other", VendorOther.String())
	assert.Equal(t, "Unknown", GPUVendor(99).String())
}

func TestParseBuildProp(t *testing.T) {
	input := `
# begin build properties
ro.product.manufacturer=Xiaomi
ro.product.model = 2201117TG
ro.board.platform=mt6877

not a property line
ro.hardware=mt6877
ro.hardware=mt6877t
`
	props, err := ParseBuildProp(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "Xiaomi", props.Get(PropManufacturer))
	assert.Equal(t, "2201117TG", props.Get(PropModel))
	assert.Equal(t, "mt6877t", props.Get(PropHardware), "later keys override earlier ones")
	assert.Equal(t, "", props.Get(PropEGL))
	assert.Len(t, props, 4)
}

func TestGetprop(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}

	script := filepath.Join(t.TempDir(), "getprop")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\n[ \"$1\" = ro.hardware ] && echo qcom\n"), 0755))

	g := Getprop{Path: script}
	assert.Equal(t, "qcom", g.Get(PropHardware))
	assert.Equal(t, "", g.Get(PropModel))

	missing := Getprop{Path: filepath.Join(t.TempDir(), "nope")}
	assert.Equal(t, "", missing.Get(PropHardware))
}

func TestSystemPropertiesOffAndroid(t *testing.T) {
	if runtime.GOOS == "android" {
		t.Skip("running on android")
	}

	_, err := SystemProperties()
	assert.ErrorIs(t, err, ErrNoSystemProperties)
}
