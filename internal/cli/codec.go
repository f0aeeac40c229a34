package cli

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soultek101/ocarina/internal/song"
	"github.com/soultek101/ocarina/internal/wire"
)

// PayloadInfo describes a learn payload.
type PayloadInfo struct {
	Song  string   `json:"song"`
	Notes []string `json:"notes,omitempty"`
	Hex   string   `json:"hex"`
	Known bool     `json:"known"`
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <song> [notes...]",
		Short: "Encode a learn payload",
		Long: `Encode the sync payload announcing that a song was learned, as hex.

Notes are only carried for the custom song. The song name is checked
against the active catalog.

Example:
  ocarina encode eponas_song
  ocarina encode scarecrow_song C4 D4 E4 F4 G4 A4 B4 C5`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(rootOpts, args[0], args[1:], cmd)
		},
	}
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a learn payload",
		Long: `Decode a hex sync payload and report the song and notes it carries.

Example:
  ocarina decode 0b65706f6e61735f736f6e6700`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, strings.Join(args, ""), cmd)
		},
	}
}

func runEncode(opts *RootOptions, name string, noteArgs []string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	catalog, err := opts.loadCatalog()
	if err != nil {
		return out.Fail(ExitCommandError, CodeBadCatalog, "failed to load catalog", err)
	}
	sg, ok := catalog.Lookup(name)
	if !ok {
		return out.Fail(ExitFailure, CodeNotFound, fmt.Sprintf("unknown song %q", name), nil)
	}

	notes, err := song.ParseNotes(noteArgs)
	if err != nil {
		return out.Fail(ExitFailure, CodeBadInput, "invalid notes", err)
	}
	if !sg.Custom && len(notes) > 0 {
		out.VerboseLog("ignoring notes for fixed song %s", sg.Name)
	}

	payload, err := wire.Encode(sg, notes)
	if err != nil {
		return out.Fail(ExitFailure, CodeBadInput, "failed to encode payload", err)
	}

	info := PayloadInfo{Song: sg.Name, Hex: hex.EncodeToString(payload), Known: true}
	if sg.Custom {
		info.Notes = noteNames(notes)
	}
	if out.JSON() {
		return out.Success(info)
	}
	return out.Success(info.Hex)
}

func runDecode(opts *RootOptions, encoded string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	payload, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return out.Fail(ExitFailure, CodeBadInput, "payload is not hex", err)
	}
	msg, err := wire.Decode(payload)
	if err != nil {
		return out.Fail(ExitFailure, CodeDecodeError, "malformed payload", err)
	}

	catalog, err := opts.loadCatalog()
	if err != nil {
		return out.Fail(ExitCommandError, CodeBadCatalog, "failed to load catalog", err)
	}
	_, known := catalog.Lookup(msg.Song)

	info := PayloadInfo{
		Song:  msg.Song,
		Notes: noteNames(msg.Notes),
		Hex:   hex.EncodeToString(payload),
		Known: known,
	}
	if out.JSON() {
		return out.Success(info)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "song:  %s\n", info.Song)
	if len(info.Notes) > 0 {
		fmt.Fprintf(w, "notes: %s\n", strings.Join(info.Notes, " "))
	}
	if !known {
		fmt.Fprintln(w, "warning: song is not in the catalog and would be dropped")
	}
	return nil
}
