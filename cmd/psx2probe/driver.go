package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user-none/eblitui/android/config"
	"github.com/user-none/eblitui/android/drivers"
	"github.com/user-none/eblitui/android/nativeapp"
)

type driverPaths struct {
	dir    string
	config string
}

func (p *driverPaths) driversDir() (string, error) {
	if p.dir != "" {
		return p.dir, nil
	}
	return drivers.Dir(nativeapp.AppName)
}

func (p *driverPaths) configPath() (string, error) {
	if p.config != "" {
		return p.config, nil
	}
	return config.Path(nativeapp.AppName)
}

func newDriverCmd(opts *rootOptions) *cobra.Command {
	paths := &driverPaths{}

	cmd := &cobra.Command{
		Use:   "driver",
		Short: "Manage custom Vulkan driver packages",
	}
	cmd.PersistentFlags().StringVar(&paths.dir, "dir", "", "Drivers directory (default: <data dir>/drivers)")
	cmd.PersistentFlags().StringVar(&paths.config, "config", "", "Config file to update (default: <data dir>/config.json)")

	cmd.AddCommand(newDriverInstallCmd(opts, paths))
	cmd.AddCommand(newDriverListCmd(opts, paths))
	cmd.AddCommand(newDriverRemoveCmd(opts, paths))
	return cmd
}

func newDriverInstallCmd(opts *rootOptions, paths *driverPaths) *cobra.Command {
	var activate bool

	cmd := &cobra.Command{
		Use:   "install <package>",
		Short: "Unpack a driver package (.so, zip, 7z, rar, tar.gz)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.driversDir()
			if err != nil {
				return err
			}

			pkg, err := drivers.Open(args[0])
			if err != nil {
				return err
			}
			inst, err := drivers.Install(dir, pkg)
			if err != nil {
				return err
			}
			opts.logger.Info("Installed driver", zap.String("name", inst.Meta.Name), zap.String("path", inst.Path))

			if activate {
				if err := setCustomDriver(paths, inst.Path); err != nil {
					return err
				}
				opts.logger.Info("Activated driver", zap.String("path", inst.Path))
			}
			return writeReport(cmd.OutOrStdout(), opts.format, inst)
		},
	}

	cmd.Flags().BoolVar(&activate, "activate", false, "Set graphics.customDriverPath to the installed library")
	return cmd
}

func newDriverListCmd(opts *rootOptions, paths *driverPaths) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed driver packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.driversDir()
			if err != nil {
				return err
			}
			list, err := drivers.List(dir)
			if err != nil {
				return err
			}
			if list == nil {
				list = []drivers.Installed{}
			}
			return writeReport(cmd.OutOrStdout(), opts.format, list)
		},
	}
}

func newDriverRemoveCmd(opts *rootOptions, paths *driverPaths) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete an installed driver package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.driversDir()
			if err != nil {
				return err
			}

			list, err := drivers.List(dir)
			if err != nil {
				return err
			}
			if err := drivers.Remove(dir, args[0]); err != nil {
				return err
			}

			// Clear the config if it pointed at the removed library.
			for _, inst := range list {
				if inst.Meta.Name != args[0] && filepath.Base(inst.Dir) != args[0] {
					continue
				}
				cfgPath, err := paths.configPath()
				if err != nil {
					return err
				}
				cfg, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				if cfg.Graphics.CustomDriverPath == inst.Path {
					opts.logger.Info("Clearing custom driver path", zap.String("path", inst.Path))
					return setCustomDriver(paths, "")
				}
			}
			return nil
		},
	}
}

func setCustomDriver(paths *driverPaths, libPath string) error {
	cfgPath, err := paths.configPath()
	if err != nil {
		return err
	}
	store, err := config.OpenStore(cfgPath)
	if err != nil {
		return err
	}
	store.Update(func(c *config.Config) {
		c.Graphics.CustomDriverPath = libPath
	})
	return store.Save()
}
