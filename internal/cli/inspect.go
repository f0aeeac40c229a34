package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/soultek101/ocarina/internal/repertoire"
	"github.com/soultek101/ocarina/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Database string
}

// ProfileSummary is one row of the profile listing.
type ProfileSummary struct {
	Participant string `json:"participant"`
	Revision    int64  `json:"revision"`
	Digest      string `json:"digest"`
}

// ProfileView is a decoded profile.
type ProfileView struct {
	Participant string            `json:"participant" yaml:"participant"`
	Phase       string            `json:"phase" yaml:"phase"`
	Record      repertoire.Record `json:"record" yaml:"record"`
	Warnings    []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect [participant-uuid]",
		Short: "Show stored song profiles",
		Long: `List the stored profiles, or print one participant's record.

The record is printed as YAML, or as JSON with --format json. Entries the
catalog cannot restore are reported as warnings.

Example:
  ocarina inspect --db ./profiles.db
  ocarina inspect --db ./profiles.db 0f8e2a6c-0000-4000-8000-000000000001`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runInspectList(opts, cmd)
			}
			return runInspectProfile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

// NewForgetCommand creates the forget command.
func NewForgetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "forget <participant-uuid>",
		Short: "Delete a stored song profile",
		Long: `Delete a participant's stored profile. The participant starts with an
empty repertoire the next time they join.

Takes the owner lock when the config enables it, so it fails while a
running owner holds the database.

Example:
  ocarina forget --db ./profiles.db 0f8e2a6c-0000-4000-8000-000000000001`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForget(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")

	return cmd
}

// database returns the --db flag, falling back to the configured path.
func (o *InspectOptions) database() string {
	if o.Database != "" {
		return o.Database
	}
	if o.Config != nil {
		return o.Config.Database
	}
	return ""
}

// openExisting opens a database that must already exist.
func openExisting(out *OutputFormatter, path string, opts ...store.Option) (*store.Store, error) {
	if path == "" {
		return nil, out.Fail(ExitCommandError, CodeBadInput, "no database configured (use --db)", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, out.Fail(ExitCommandError, CodeNotFound, fmt.Sprintf("database not found: %s", path), err)
	}
	st, err := store.Open(path, opts...)
	if errors.Is(err, store.ErrLocked) {
		return nil, out.Fail(ExitCommandError, CodeLockHeld, "database is owned by another process", err)
	}
	if err != nil {
		return nil, out.Fail(ExitCommandError, CodeStore, "failed to open database", err)
	}
	return st, nil
}

func runInspectList(opts *InspectOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	st, err := openExisting(out, opts.database())
	if err != nil {
		return err
	}
	defer st.Close()

	profiles, err := st.ListProfiles(cmd.Context())
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to list profiles", err)
	}

	summaries := make([]ProfileSummary, len(profiles))
	for i, p := range profiles {
		summaries[i] = ProfileSummary{
			Participant: p.Participant.String(),
			Revision:    p.Revision,
			Digest:      p.Digest,
		}
	}
	if out.JSON() {
		return out.Success(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles stored.")
		return nil
	}
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{s.Participant, strconv.FormatInt(s.Revision, 10), s.Digest}
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), []string{"PARTICIPANT", "REVISION", "DIGEST"}, rows))
	return nil
}

func runInspectProfile(opts *InspectOptions, arg string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	participant, err := uuid.Parse(arg)
	if err != nil {
		return out.Fail(ExitFailure, CodeBadInput, fmt.Sprintf("invalid participant %q", arg), err)
	}
	catalog, err := opts.loadCatalog()
	if err != nil {
		return out.Fail(ExitCommandError, CodeBadCatalog, "failed to load catalog", err)
	}

	st, err := openExisting(out, opts.database())
	if err != nil {
		return err
	}
	defer st.Close()

	rec, found, err := st.LoadProfile(cmd.Context(), participant)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to load profile", err)
	}
	if !found {
		return out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("no profile for %s", participant), nil)
	}

	state, warnings := repertoire.Restore(participant, catalog, rec)
	view := ProfileView{
		Participant: participant.String(),
		Phase:       state.Phase().String(),
		Record:      rec,
	}
	for _, w := range warnings {
		view.Warnings = append(view.Warnings, w.Error())
	}

	if out.JSON() {
		return out.Success(view)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return enc.Close()
}

func runForget(opts *InspectOptions, arg string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	participant, err := uuid.Parse(arg)
	if err != nil {
		return out.Fail(ExitFailure, CodeBadInput, fmt.Sprintf("invalid participant %q", arg), err)
	}

	var storeOpts []store.Option
	if opts.Config != nil && opts.Config.Lock {
		storeOpts = append(storeOpts, store.WithOwnerLock())
	}
	st, err := openExisting(out, opts.database(), storeOpts...)
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := st.DeleteProfile(cmd.Context(), participant)
	if err != nil {
		return out.Fail(ExitCommandError, CodeStore, "failed to delete profile", err)
	}
	if !deleted {
		return out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("no profile for %s", participant), nil)
	}

	if out.JSON() {
		return out.Success(map[string]string{"deleted": participant.String()})
	}
	return out.Success(fmt.Sprintf("Deleted profile for %s", participant))
}
