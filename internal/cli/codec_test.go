package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFixedSong(t *testing.T) {
	out, err := execRoot(t, "encode", "eponas_song")
	require.NoError(t, err)
	assert.Equal(t, "0b65706f6e61735f736f6e6700", strings.TrimSpace(out))
}

func TestEncodeIgnoresNotesForFixedSong(t *testing.T) {
	out, err := execRoot(t, "encode", "eponas_song", "C4", "D4")
	require.NoError(t, err)
	assert.Equal(t, "0b65706f6e61735f736f6e6700", strings.TrimSpace(out))
}

func TestEncodeDecodeCustomSong(t *testing.T) {
	notes := []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"}
	out, err := execRoot(t, append([]string{"encode", "scarecrow_song"}, notes...)...)
	require.NoError(t, err)
	encoded := strings.TrimSpace(out)

	out, err = execRoot(t, "decode", encoded, "--format", "json")
	require.NoError(t, err)

	var response struct {
		Status string      `json:"status"`
		Data   PayloadInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, PayloadInfo{Song: "scarecrow_song", Notes: notes, Hex: encoded, Known: true}, response.Data)
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"unknown song", []string{"encode", "ballad_of_gales"}, CodeNotFound},
		{"bad note", []string{"encode", "scarecrow_song", "H9"}, CodeBadInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execRoot(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, tt.code)
		})
	}
}

func TestDecodeText(t *testing.T) {
	out, err := execRoot(t, "decode", "0b65706f6e61735f736f6e6700")
	require.NoError(t, err)
	assert.Contains(t, out, "song:  eponas_song")
	assert.NotContains(t, out, "notes:")
	assert.NotContains(t, out, "warning")
}

func TestDecodeUnknownSong(t *testing.T) {
	// "gale" with no notes
	out, err := execRoot(t, "decode", "0467616c6500")
	require.NoError(t, err)
	assert.Contains(t, out, "song:  gale")
	assert.Contains(t, out, "warning: song is not in the catalog")
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		code    string
	}{
		{"not hex", "zz", CodeBadInput},
		{"truncated name", "0b6570", CodeDecodeError},
		{"missing note count", "0467616c65", CodeDecodeError},
		{"trailing bytes", "0467616c650001ff", CodeDecodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execRoot(t, "decode", tt.payload)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, tt.code)
		})
	}
}
