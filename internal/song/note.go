package song

import (
	"fmt"
	"slices"
	"strings"
)

// Note is one tone from the closed set an ocarina can play.
//
// The numeric value is the note's ordinal. It is written to disk and to the
// wire, so new notes may only be appended.
type Note uint8

const (
	NoteC4 Note = iota
	NoteD4
	NoteE4
	NoteF4
	NoteG4
	NoteA4
	NoteB4
	NoteC5
	NoteD5
	NoteE5
	NoteF5
	NoteG5

	numNotes
)

// NoteCount is the size of the Note enumeration.
const NoteCount = int(numNotes)

var noteNames = [NoteCount]string{
	"C4", "D4", "E4", "F4", "G4", "A4", "B4",
	"C5", "D5", "E5", "F5", "G5",
}

// Valid reports whether n is a member of the enumeration.
func (n Note) Valid() bool {
	return n < numNotes
}

func (n Note) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Note(%d)", uint8(n))
	}
	return noteNames[n]
}

// MarshalText implements encoding.TextMarshaler.
func (n Note) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("invalid note ordinal %d", uint8(n))
	}
	return []byte(noteNames[n]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so notes can be written
// by name in YAML scenarios and config.
func (n *Note) UnmarshalText(text []byte) error {
	parsed, err := ParseNote(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNote parses a note name such as "D4". Case is ignored.
func ParseNote(s string) (Note, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, candidate := range noteNames {
		if candidate == name {
			return Note(i), nil
		}
	}
	return 0, fmt.Errorf("unknown note %q", s)
}

// ParseNotes parses a list of note names.
func ParseNotes(names []string) ([]Note, error) {
	notes := make([]Note, 0, len(names))
	for i, name := range names {
		n, err := ParseNote(name)
		if err != nil {
			return nil, fmt.Errorf("notes[%d]: %w", i, err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// NoteFromOrdinal converts a persisted ordinal back into a Note.
// Out-of-range ordinals are an error; persisted data is never wrapped.
func NoteFromOrdinal(ordinal int) (Note, error) {
	if ordinal < 0 || ordinal >= NoteCount {
		return 0, fmt.Errorf("note ordinal %d out of range [0,%d)", ordinal, NoteCount)
	}
	return Note(ordinal), nil
}

// NoteFromByte converts a wire byte into a Note, reducing it modulo the
// enumeration size so corrupt or newer payloads still decode to a member.
func NoteFromByte(b byte) Note {
	return Note(int(b) % NoteCount)
}

// NotesUnique reports whether no note appears twice.
func NotesUnique(notes []Note) bool {
	var seen [NoteCount]bool
	for _, n := range notes {
		if !n.Valid() {
			return false
		}
		if seen[n] {
			return false
		}
		seen[n] = true
	}
	return true
}

// EqualNotes reports whether a and b are the same sequence.
func EqualNotes(a, b []Note) bool {
	return slices.Equal(a, b)
}

// FormatNotes renders notes as space-separated names.
func FormatNotes(notes []Note) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}
