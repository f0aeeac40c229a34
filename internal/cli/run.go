package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soultek101/ocarina/internal/harness"
	"github.com/soultek101/ocarina/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database  string
	StartTick int64
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run one scenario against a profile database",
		Long: `Run a scenario through the song engine with a real profile database.

Unlike "test", profiles saved by leave and checkpoint steps are kept in the
database, so later runs see them when participants join again. The
database is created if it does not exist. When the config enables the
owner lock, the run fails while another owner holds the database.

World time is not stored in the database. Stored profiles keep scarecrow
unlock and song cooldown deadlines as absolute ticks, so a run that resumes
a database should pass --start-tick at or after the tick the previous run
ended on; the default restarts the clock at 0.

Example:
  ocarina run --db ./profiles.db ./scenarios/scarecrow_protocol.yaml
  ocarina run --db ./profiles.db --start-tick 168001 ./scenarios/rejoin.yaml
  ocarina run ./scenarios/learn_and_persist.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.Flags().Int64Var(&opts.StartTick, "start-tick", 0, "world tick the run starts at")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return out.Fail(ExitCommandError, CodeBadInput, "failed to load scenario", err)
	}
	catalog, err := opts.loadCatalog()
	if err != nil {
		return out.Fail(ExitCommandError, CodeBadCatalog, "failed to load catalog", err)
	}

	dbPath := opts.Database
	if dbPath == "" && opts.Config != nil {
		dbPath = opts.Config.Database
	}
	if dbPath == "" {
		return out.Fail(ExitCommandError, CodeBadInput, "no database configured (use --db)", nil)
	}
	if opts.StartTick < 0 {
		return out.Fail(ExitCommandError, CodeBadInput, fmt.Sprintf("invalid start tick %d", opts.StartTick), nil)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to create database directory", err)
	}

	var storeOpts []store.Option
	if opts.Config != nil && opts.Config.Lock {
		storeOpts = append(storeOpts, store.WithOwnerLock())
	}
	slog.Info("opening database", "path", dbPath, "lock", len(storeOpts) > 0)
	st, err := store.Open(dbPath, storeOpts...)
	if errors.Is(err, store.ErrLocked) {
		return out.Fail(ExitCommandError, CodeLockHeld, "database is owned by another process", err)
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	result, err := harness.RunWithOptions(scenario, harness.Options{
		Store:     st,
		Catalog:   catalog,
		StartTick: opts.StartTick,
	})
	if err != nil {
		return out.Fail(ExitFailure, CodeTestFailed, "scenario could not run", err)
	}

	if out.JSON() {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		data, err := harness.Snapshot(scenario.Name, result)
		if err != nil {
			return fmt.Errorf("render trace: %w", err)
		}
		w := cmd.OutOrStdout()
		w.Write(data)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "✗ %s\n", e)
		}
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("%d check(s) failed", len(result.Errors)))
	}
	return nil
}
