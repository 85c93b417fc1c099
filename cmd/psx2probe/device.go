package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user-none/eblitui/android/device"
)

func newDeviceCmd(opts *rootOptions) *cobra.Command {
	var propsFile string
	var useGetprop bool

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Classify the GPU vendor from system properties",
		Long: `Reads ro.hardware, ro.product.board, ro.board.platform and related
properties and reports the detected SoC family and GPU vendor.

Properties come from --props (a build.prop file), the getprop command with
--getprop, or the system property service when running on Android.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := openProperties(propsFile, useGetprop)
			if err != nil {
				return err
			}
			d := device.NewDetector(props, opts.logger)
			return writeReport(cmd.OutOrStdout(), opts.format, d.Report())
		},
	}

	cmd.Flags().StringVar(&propsFile, "props", "", "Read properties from a build.prop file")
	cmd.Flags().BoolVar(&useGetprop, "getprop", false, "Read properties with the getprop command")
	return cmd
}

func openProperties(propsFile string, useGetprop bool) (device.Properties, error) {
	switch {
	case propsFile != "":
		f, err := os.Open(propsFile)
		if err != nil {
			return nil, fmt.Errorf("open props: %w", err)
		}
		defer f.Close()
		return device.ParseBuildProp(f)
	case useGetprop:
		return device.Getprop{}, nil
	}

	props, err := device.SystemProperties()
	if errors.Is(err, device.ErrNoSystemProperties) {
		return nil, fmt.Errorf("%w; use --props or --getprop", err)
	}
	return props, err
}
