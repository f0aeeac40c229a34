package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soultek101/ocarina/internal/repertoire"
	"github.com/soultek101/ocarina/internal/store"
	"github.com/soultek101/ocarina/internal/testutil"
)

// seedProfiles creates a database holding one profile for link.
func seedProfiles(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "profiles.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	rec := repertoire.Record{
		KnownSongs:       []repertoire.KnownSong{{Song: "zeldas_lullaby"}, {Song: "retired_song"}},
		NextSongHealTime: 24000,
	}
	saved, err := st.SaveProfile(context.Background(), testutil.ParticipantID("link"), rec)
	require.NoError(t, err)
	require.True(t, saved)
	return dbPath
}

func TestInspectListEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execRoot(t, "inspect", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No profiles stored.")
}

func TestInspectList(t *testing.T) {
	dbPath := seedProfiles(t)

	out, err := execRoot(t, "inspect", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "PARTICIPANT")
	assert.Contains(t, out, testutil.ParticipantID("link").String())

	out, err = execRoot(t, "inspect", "--db", dbPath, "--format", "json")
	require.NoError(t, err)
	var response struct {
		Data []ProfileSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, int64(1), response.Data[0].Revision)
	assert.NotEmpty(t, response.Data[0].Digest)
}

func TestInspectMissingDatabase(t *testing.T) {
	out, err := execRoot(t, "inspect", "--db", filepath.Join(t.TempDir(), "absent.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, CodeNotFound)
}

func TestInspectProfileYAML(t *testing.T) {
	dbPath := seedProfiles(t)
	id := testutil.ParticipantID("link").String()

	out, err := execRoot(t, "inspect", "--db", dbPath, id)
	require.NoError(t, err)
	assert.Contains(t, out, "participant: "+id)
	assert.Contains(t, out, "song: zeldas_lullaby")
	assert.Contains(t, out, "NextSongHealTime: 24000")
	assert.Contains(t, out, "warnings:")
	assert.Contains(t, out, "retired_song")
}

func TestInspectProfileJSON(t *testing.T) {
	dbPath := seedProfiles(t)
	id := testutil.ParticipantID("link").String()

	out, err := execRoot(t, "inspect", "--db", dbPath, id, "--format", "json")
	require.NoError(t, err)

	var response struct {
		Data ProfileView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, id, response.Data.Participant)
	assert.Len(t, response.Data.Record.KnownSongs, 2)
	assert.Len(t, response.Data.Warnings, 1)
}

func TestInspectProfileErrors(t *testing.T) {
	dbPath := seedProfiles(t)

	out, err := execRoot(t, "inspect", "--db", dbPath, "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, CodeBadInput)

	out, err = execRoot(t, "inspect", "--db", dbPath, testutil.ParticipantID("zelda").String())
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, CodeNotFound)
}

func TestForget(t *testing.T) {
	dbPath := seedProfiles(t)
	id := testutil.ParticipantID("link").String()

	out, err := execRoot(t, "forget", "--db", dbPath, id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted profile for "+id)

	out, err = execRoot(t, "forget", "--db", dbPath, id)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, CodeNotFound)

	out, err = execRoot(t, "inspect", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No profiles stored.")
}

func TestForgetRespectsOwnerLock(t *testing.T) {
	dbPath := seedProfiles(t)
	owner, err := store.Open(dbPath, store.WithOwnerLock())
	require.NoError(t, err)
	defer owner.Close()

	// Default config enables the lock.
	out, err := execRoot(t, "forget", "--db", dbPath, testutil.ParticipantID("link").String())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, CodeLockHeld)
}
