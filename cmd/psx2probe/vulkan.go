package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/user-none/eblitui/android/config"
	"github.com/user-none/eblitui/android/vkload"
)

type scopeCount struct {
	Resolved int `json:"resolved" yaml:"resolved"`
	Total    int `json:"total" yaml:"total"`
}

type vulkanReport struct {
	Loaded bool          `json:"loaded" yaml:"loaded"`
	Source vkload.Source `json:"source" yaml:"source"`
	Module scopeCount    `json:"module" yaml:"module"`
	Error  string        `json:"error,omitempty" yaml:"error,omitempty"`
}

func newVulkanCmd(opts *rootOptions) *cobra.Command {
	var configPath string
	var driver string
	var adrenotools bool

	cmd := &cobra.Command{
		Use:   "vulkan",
		Short: "Load the Vulkan driver and resolve module entry points",
		Long: `Runs the driver search used by the GS renderer: the custom driver from
config or LIBVULKAN_PATH (through libadrenotools when enabled), then the
system loader. The library is unloaded before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := config.DefaultConfig().Graphics
			if configPath != "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				g = cfg.Graphics
			}
			if driver != "" {
				g.CustomDriverPath = driver
			}
			if cmd.Flags().Changed("adrenotools") {
				g.UseAdrenotools = adrenotools
			}

			de, err := vkload.DriverEnvFromEnviron()
			if err != nil {
				return err
			}
			return runVulkan(cmd.OutOrStdout(), opts.format, vkload.OptionsFromConfig(g, de, opts.logger))
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Read graphics settings from this config.json")
	cmd.Flags().StringVar(&driver, "driver", "", "Custom driver library path")
	cmd.Flags().BoolVar(&adrenotools, "adrenotools", false, "Inject the custom driver through libadrenotools")
	return cmd
}

func runVulkan(w io.Writer, format string, lo vkload.Options) error {
	loader := vkload.NewLoader(lo)
	defer loader.Unload()

	var report vulkanReport
	loadErr := loader.Load()
	if loadErr != nil {
		report.Error = loadErr.Error()
	} else {
		report.Loaded = true
		report.Source = loader.Source()
	}
	report.Module.Resolved, report.Module.Total = loader.Table().Resolved(vkload.ScopeModule)

	if err := writeReport(w, format, report); err != nil {
		return err
	}
	if loadErr != nil {
		return fmt.Errorf("vulkan: %w", loadErr)
	}
	return nil
}
