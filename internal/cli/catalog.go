package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soultek101/ocarina/internal/song"
)

// SongInfo is one catalog entry as printed by the catalog command.
type SongInfo struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	Notes  []string `json:"notes"`
	Custom bool     `json:"custom,omitempty"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the songs in the catalog",
		Long: `List every song in the active catalog, in catalog order.

The built-in catalog is used unless the config names a CUE catalog file.

Example:
  ocarina catalog
  ocarina catalog --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(rootOpts, cmd)
		},
	}
}

func runCatalog(opts *RootOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	catalog, err := opts.loadCatalog()
	if err != nil {
		return out.Fail(ExitCommandError, CodeBadCatalog, "failed to load catalog", err)
	}

	songs := make([]SongInfo, 0, catalog.Len())
	for _, sg := range catalog.Songs() {
		info := SongInfo{Name: sg.Name, Title: sg.Title, Notes: noteNames(sg.Notes), Custom: sg.Custom}
		songs = append(songs, info)
	}

	if out.JSON() {
		return out.Success(songs)
	}

	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		notes := strings.Join(s.Notes, " ")
		if s.Custom {
			notes = "(chosen per participant)"
		}
		rows = append(rows, []string{s.Name, s.Title, notes})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(cmd.OutOrStdout(), []string{"NAME", "TITLE", "NOTES"}, rows))
	return nil
}

func noteNames(notes []song.Note) []string {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.String()
	}
	return names
}
