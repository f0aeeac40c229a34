package repertoire

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soultek101/ocarina/internal/song"
)

func populated(t *testing.T) *State {
	t.Helper()
	env, clock, _ := ownerEnv()
	s := New(player, song.MustDefault())

	require.Equal(t, OutcomeLearned, s.Learn(env, mustSong(t, song.SongOfTime), nil))
	require.Equal(t, OutcomeLearned, s.Learn(env, mustSong(t, song.EponasSong), nil))
	clock.now = 500
	require.Equal(t, OutcomeProposed, s.Learn(env, mustSong(t, song.ScarecrowSong), scarecrowPattern))
	s.MarkHealUsed(env)
	require.True(t, s.RideMount(&horse{id: 12, uid: uuid.MustParse("80000000-0000-0001-ffff-ffffffffffff"), owner: player}))
	return s
}

func TestRecord_Snapshot(t *testing.T) {
	rec := populated(t).Record()

	assert.Equal(t, []KnownSong{{Song: song.EponasSong}, {Song: song.SongOfTime}}, rec.KnownSongs, "catalog order")
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6, 7}, rec.ScarecrowNotes)
	assert.Equal(t, int64(500+ScarecrowDelay), rec.ScarecrowTime)
	assert.Equal(t, int64(500+HealCooldown), rec.NextSongHealTime)
	require.NotNil(t, rec.HorseUUIDMost)
	require.NotNil(t, rec.HorseUUIDLeast)
	assert.Equal(t, int64(-9223372036854775807), *rec.HorseUUIDMost)
	assert.Equal(t, int64(-1), *rec.HorseUUIDLeast)
}

func TestRecord_EmptyOmitsOptionalFields(t *testing.T) {
	rec := New(player, song.MustDefault()).Record()

	data, err := MarshalRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"KnownSongs":[],"NextSongHealTime":0,"ScarecrowTime":0}`, string(data))
}

func TestRecord_Canonical(t *testing.T) {
	data, err := MarshalRecord(populated(t).Record())
	require.NoError(t, err)
	assert.Equal(t,
		`{"HorseUUIDLeast":-1,"HorseUUIDMost":-9223372036854775807,`+
			`"KnownSongs":[{"song":"eponas_song"},{"song":"song_of_time"}],`+
			`"NextSongHealTime":24500,"ScarecrowNotes":[0,1,2,3,4,5,6,7],"ScarecrowTime":168500}`,
		string(data))
}

func TestRecord_RoundTrip(t *testing.T) {
	orig := populated(t)

	data, err := MarshalRecord(orig.Record())
	require.NoError(t, err)
	rec, err := UnmarshalRecord(data)
	require.NoError(t, err)

	restored, warnings := Restore(player, song.MustDefault(), rec)
	assert.Empty(t, warnings)

	assert.Equal(t, orig.Known(), restored.Known())
	assert.Equal(t, orig.ScarecrowNotes(), restored.ScarecrowNotes())
	assert.Equal(t, orig.ScarecrowUnlock(), restored.ScarecrowUnlock())
	assert.Equal(t, orig.NextHeal(), restored.NextHeal())
	assert.Equal(t, orig.Mount().UUID, restored.Mount().UUID)
	assert.Equal(t, PhaseProposed, restored.Phase())

	digest1, err := RecordDigest(orig.Record())
	require.NoError(t, err)
	digest2, err := RecordDigest(restored.Record())
	require.NoError(t, err)
	assert.Equal(t, digest1, digest2)
}

func TestRecord_RestoreKeepsHealCooldown(t *testing.T) {
	rec := Record{NextSongHealTime: 90000}
	s, warnings := Restore(player, song.MustDefault(), rec)
	assert.Empty(t, warnings)
	assert.Equal(t, int64(90000), s.NextHeal())

	clock := &tickClock{now: 80000}
	assert.False(t, s.CanHealFromSong(Env{Clock: clock}, vitals{health: 1, max: 20}))
}

func TestRestore_Warnings(t *testing.T) {
	most, least := int64(1), int64(2)

	tests := []struct {
		name  string
		rec   Record
		check func(t *testing.T, s *State)
		want  string
	}{
		{
			name: "unknown song skipped",
			rec:  Record{KnownSongs: []KnownSong{{Song: "ballad_of_gales"}, {Song: song.SunsSong}}},
			check: func(t *testing.T, s *State) {
				assert.True(t, s.Knows(song.SunsSong))
				assert.Equal(t, 1, s.KnownCount())
			},
			want: `unknown song "ballad_of_gales"`,
		},
		{
			name: "bad ordinal drops pattern",
			rec:  Record{ScarecrowNotes: []int32{0, 1, 2, 3, 4, 5, 6, 99}},
			check: func(t *testing.T, s *State) {
				assert.Empty(t, s.ScarecrowNotes())
				assert.Equal(t, PhaseUnset, s.Phase())
			},
			want: "ScarecrowNotes: [7]",
		},
		{
			name: "short pattern dropped",
			rec:  Record{ScarecrowNotes: []int32{0, 1, 2}},
			check: func(t *testing.T, s *State) {
				assert.Empty(t, s.ScarecrowNotes())
			},
			want: "want 8 distinct notes",
		},
		{
			name: "repeated note dropped",
			rec:  Record{ScarecrowNotes: []int32{0, 1, 2, 3, 4, 5, 6, 0}},
			check: func(t *testing.T, s *State) {
				assert.Empty(t, s.ScarecrowNotes())
			},
			want: "want 8 distinct notes",
		},
		{
			name: "scarecrow known without pattern",
			rec:  Record{KnownSongs: []KnownSong{{Song: song.ScarecrowSong}}},
			check: func(t *testing.T, s *State) {
				assert.False(t, s.Knows(song.ScarecrowSong))
				assert.Equal(t, PhaseUnset, s.Phase())
			},
			want: "known but has no pattern",
		},
		{
			name: "half uuid pair",
			rec:  Record{HorseUUIDMost: &most},
			check: func(t *testing.T, s *State) {
				assert.False(t, s.Mount().Bound())
			},
			want: "incomplete pair",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, warnings := Restore(player, song.MustDefault(), tt.rec)
			require.Len(t, warnings, 1)
			assert.Contains(t, warnings[0].Error(), tt.want)
			tt.check(t, s)
		})
	}

	s, warnings := Restore(player, song.MustDefault(), Record{HorseUUIDMost: &most, HorseUUIDLeast: &least})
	assert.Empty(t, warnings)
	assert.True(t, s.Mount().Bound())
}

func TestUnmarshalRecord_Lenient(t *testing.T) {
	rec, err := UnmarshalRecord([]byte(`{"KnownSongs":[{"song":"suns_song"}],"Extra":"ignored"}`))
	require.NoError(t, err)
	assert.Equal(t, []KnownSong{{Song: "suns_song"}}, rec.KnownSongs)
	assert.Zero(t, rec.ScarecrowTime)
	assert.Nil(t, rec.HorseUUIDMost)

	rec, err = UnmarshalRecord([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, rec.KnownSongs)
}

func TestUnmarshalRecord_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"not object", `[]`},
		{"string top level", `"KnownSongs"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalRecord([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestUnmarshalRecord_SkipsBadEntries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		songs    []KnownSong
		notes    []int32
		problems []string
	}{
		{
			name:     "song entry not object",
			input:    `{"KnownSongs":[{"song":"suns_song"},7]}`,
			songs:    []KnownSong{{Song: "suns_song"}},
			problems: []string{"KnownSongs[1]: want object"},
		},
		{
			name:     "song name not string",
			input:    `{"KnownSongs":[{"song":3},{"song":"suns_song"}]}`,
			songs:    []KnownSong{{Song: "suns_song"}},
			problems: []string{"KnownSongs[0].song: want string"},
		},
		{
			name:     "songs not array",
			input:    `{"KnownSongs":{}}`,
			problems: []string{"KnownSongs: want array"},
		},
		{
			name:     "note outside int32",
			input:    `{"KnownSongs":[{"song":"suns_song"}],"ScarecrowNotes":[1,2,3,4,5,6,7,9999999999]}`,
			songs:    []KnownSong{{Song: "suns_song"}},
			problems: []string{"ScarecrowNotes[7]: want int32"},
		},
		{
			name:     "notes not ints",
			input:    `{"ScarecrowNotes":["C4"]}`,
			problems: []string{"ScarecrowNotes[0]: want int32"},
		},
		{
			name:     "scalar fields wrongly typed",
			input:    `{"ScarecrowTime":"soon","NextSongHealTime":1.5,"HorseUUIDMost":true}`,
			problems: []string{"ScarecrowTime: want integer", "NextSongHealTime: want integer", "HorseUUIDMost: want integer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := UnmarshalRecord([]byte(tt.input))
			require.NoError(t, err)

			if tt.songs != nil {
				assert.Equal(t, tt.songs, rec.KnownSongs)
			} else {
				assert.Empty(t, rec.KnownSongs)
			}
			assert.Equal(t, tt.notes, rec.ScarecrowNotes)
			assert.Zero(t, rec.ScarecrowTime)
			assert.Nil(t, rec.HorseUUIDMost)

			require.Len(t, rec.Problems(), len(tt.problems))
			for i, want := range tt.problems {
				assert.Contains(t, rec.Problems()[i].Error(), want)
			}
		})
	}
}

func TestRestore_ReportsSkippedEntries(t *testing.T) {
	rec, err := UnmarshalRecord([]byte(`{"KnownSongs":[{"song":"suns_song"},7],"ScarecrowNotes":[1,2,3,4,5,6,7,9999999999]}`))
	require.NoError(t, err)

	s, warnings := Restore(player, song.MustDefault(), rec)
	assert.True(t, s.Knows("suns_song"))
	assert.Equal(t, PhaseUnset, s.Phase())

	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Error(), "KnownSongs[1]")
	assert.Contains(t, warnings[1].Error(), "ScarecrowNotes[7]")
}
