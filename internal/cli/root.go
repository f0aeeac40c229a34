package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/soultek101/ocarina/internal/config"
	"github.com/soultek101/ocarina/internal/song"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded before any subcommand runs.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// skipConfigLoad marks commands that must work without a valid config.
const skipConfigLoad = "skipConfigLoad"

// NewRootCommand creates the root command for the ocarina CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ocarina",
		Short: "Ocarina song knowledge tools",
		Long:  "Inspect stored song profiles, run scenarios against the song engine and work with sync payloads.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if cmd.Annotations[skipConfigLoad] == "true" {
				configureLogging(cmd, opts, slog.LevelInfo)
				return nil
			}

			cfg, _, _, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			opts.Config = cfg
			configureLogging(cmd, opts, cfg.SlogLevel())
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/ocarina/config.toml)")

	// Add subcommands
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewForgetCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// configureLogging sends slog output to the command's error stream.
// --verbose always wins over the configured level.
func configureLogging(cmd *cobra.Command, opts *RootOptions, level slog.Level) {
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// loadCatalog returns the configured catalog, or the built-in one.
func (o *RootOptions) loadCatalog() (*song.Catalog, error) {
	if o.Config == nil || o.Config.Catalog == "" {
		return song.Default()
	}
	return song.LoadCatalogFile(o.Config.Catalog)
}

// formatter returns an OutputFormatter bound to cmd's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
