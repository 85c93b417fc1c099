package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user-none/eblitui/android/config"
	"github.com/user-none/eblitui/android/nativeapp"
)

type validateReport struct {
	Path   string   `json:"path" yaml:"path"`
	Valid  bool     `json:"valid" yaml:"valid"`
	Issues []string `json:"issues,omitempty" yaml:"issues,omitempty"`
	Fixed  bool     `json:"fixed,omitempty" yaml:"fixed,omitempty"`
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect config.json",
	}
	cmd.AddCommand(newConfigValidateCmd(opts))
	return cmd
}

func newConfigValidateCmd(opts *rootOptions) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate config.json, optionally correcting invalid fields",
		Long: `Validates the config file at path (default: the application data
directory). With --fix, invalid fields are reset to their defaults and the
file is rewritten.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				p, err := config.Path(nativeapp.AppName)
				if err != nil {
					return err
				}
				path = p
			}

			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			report := validateReport{Path: path}
			report.Issues = config.ValidateConfig(cfg)
			report.Valid = len(report.Issues) == 0

			if !report.Valid && fix {
				if err := config.Save(path, config.CorrectConfig(cfg)); err != nil {
					return fmt.Errorf("save corrected config: %w", err)
				}
				report.Fixed = true
				opts.logger.Info("Corrected config", zap.String("path", path), zap.Int("issues", len(report.Issues)))
			}

			return writeReport(cmd.OutOrStdout(), opts.format, report)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Reset invalid fields and rewrite the file")
	return cmd
}
