package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soultek101/ocarina/internal/config"
)

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand(rootOpts))
	configCmd.AddCommand(newConfigShowCommand(rootOpts))

	return configCmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:           "init",
		Short:         "Create a sample configuration file",
		Annotations:   map[string]string{skipConfigLoad: "true"},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				target = rootOpts.ConfigPath
			}
			var err error
			if target == "" {
				target, err = config.DefaultPath()
			} else {
				target, err = config.ExpandPath(target)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "resolve config path", err)
			}

			if err := config.CreateSample(target); err != nil {
				return WrapExitError(ExitCommandError, "create sample config", err)
			}
			return rootOpts.formatter(cmd).Success(fmt.Sprintf("Wrote sample configuration to %s", target))
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "destination for the configuration file")
	return cmd
}

// ConfigView is the effective configuration as shown by config show.
type ConfigView struct {
	Path     string `json:"path"`
	Exists   bool   `json:"exists"`
	Database string `json:"database"`
	Catalog  string `json:"catalog,omitempty"`
	LogLevel string `json:"log_level"`
	Lock     bool   `json:"lock"`
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Print the effective configuration",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			view := ConfigView{
				Path:     path,
				Exists:   exists,
				Database: cfg.Database,
				Catalog:  cfg.Catalog,
				LogLevel: cfg.LogLevel,
				Lock:     cfg.Lock,
			}

			out := rootOpts.formatter(cmd)
			if out.JSON() {
				return out.Success(view)
			}

			w := cmd.OutOrStdout()
			source := view.Path
			if !view.Exists {
				source += " (not found, using defaults)"
			}
			fmt.Fprintf(w, "config:    %s\n", source)
			fmt.Fprintf(w, "database:  %s\n", view.Database)
			catalog := view.Catalog
			if catalog == "" {
				catalog = "(built-in)"
			}
			fmt.Fprintf(w, "catalog:   %s\n", catalog)
			fmt.Fprintf(w, "log_level: %s\n", view.LogLevel)
			fmt.Fprintf(w, "lock:      %t\n", view.Lock)
			return nil
		},
	}
}
