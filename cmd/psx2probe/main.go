// Command psx2probe inspects a device or host the way libpsx2.so does at
// startup: GPU vendor detection, Vulkan driver selection and config
// validation.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/user-none/eblitui/android/logging"
)

type rootOptions struct {
	verbose bool
	format  string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "psx2probe",
		Short: "Probe device, Vulkan driver and config state",
		Long: `psx2probe runs the same detection as the emulator's native library and
prints the result.

  device           GPU vendor classification from system properties
  vulkan           Vulkan driver search and module entry point resolution
  config validate  Check (and optionally fix) config.json
  driver           Install, list and remove custom Vulkan driver packages`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != "json" && opts.format != "yaml" {
				return fmt.Errorf("unsupported format %q (valid: json, yaml)", opts.format)
			}
			logger, err := logging.New(logging.Options{Verbose: opts.verbose})
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "yaml", "Output format: json or yaml")

	root.AddCommand(newDeviceCmd(opts))
	root.AddCommand(newVulkanCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newDriverCmd(opts))
	return root
}

// writeReport encodes v to w in the selected format.
func writeReport(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
