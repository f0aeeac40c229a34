package song

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseNote(t *testing.T) {
	tests := []struct {
		in   string
		want Note
	}{
		{"C4", NoteC4},
		{"d4", NoteD4},
		{" b4 ", NoteB4},
		{"G5", NoteG5},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNote(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNote_Unknown(t *testing.T) {
	_, err := ParseNote("H2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown note")
}

func TestParseNotes_ReportsIndex(t *testing.T) {
	_, err := ParseNotes([]string{"C4", "D4", "X9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes[2]")
}

func TestNoteString(t *testing.T) {
	assert.Equal(t, "A4", NoteA4.String())
	assert.Equal(t, "Note(200)", Note(200).String())
}

func TestNoteFromOrdinal(t *testing.T) {
	n, err := NoteFromOrdinal(5)
	require.NoError(t, err)
	assert.Equal(t, NoteA4, n)

	_, err = NoteFromOrdinal(NoteCount)
	require.Error(t, err)

	_, err = NoteFromOrdinal(-1)
	require.Error(t, err)
}

func TestNoteFromByte_ReducesModulo(t *testing.T) {
	assert.Equal(t, NoteC4, NoteFromByte(0))
	assert.Equal(t, NoteG5, NoteFromByte(byte(NoteCount-1)))
	assert.Equal(t, NoteC4, NoteFromByte(byte(NoteCount)))
	assert.Equal(t, NoteD4, NoteFromByte(byte(NoteCount+1)))
	// 255 % 12 == 3
	assert.Equal(t, NoteF4, NoteFromByte(255))
}

func TestNotesUnique(t *testing.T) {
	assert.True(t, NotesUnique(nil))
	assert.True(t, NotesUnique([]Note{NoteC4, NoteD4, NoteE4}))
	assert.False(t, NotesUnique([]Note{NoteC4, NoteD4, NoteC4}))
	assert.False(t, NotesUnique([]Note{NoteC4, Note(99)}))
}

func TestEqualNotes(t *testing.T) {
	assert.True(t, EqualNotes([]Note{NoteC4, NoteD4}, []Note{NoteC4, NoteD4}))
	assert.False(t, EqualNotes([]Note{NoteC4, NoteD4}, []Note{NoteD4, NoteC4}))
	assert.False(t, EqualNotes([]Note{NoteC4}, []Note{NoteC4, NoteD4}))
}

func TestFormatNotes(t *testing.T) {
	assert.Equal(t, "D4 F4 A4", FormatNotes([]Note{NoteD4, NoteF4, NoteA4}))
	assert.Equal(t, "", FormatNotes(nil))
}

func TestNote_YAMLText(t *testing.T) {
	var doc struct {
		Notes []Note `yaml:"notes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("notes: [D4, f4, A4]\n"), &doc))
	assert.Equal(t, []Note{NoteD4, NoteF4, NoteA4}, doc.Notes)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "- D4")

	err = yaml.Unmarshal([]byte("notes: [Q1]\n"), &doc)
	require.Error(t, err)
}
