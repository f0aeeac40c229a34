package wire

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/soultek101/ocarina/internal/song"
)

// MaxNameLength bounds the song identity in a payload, in bytes.
const MaxNameLength = 32767

// MaxNotes is the largest note count a payload can carry.
const MaxNotes = 255

// LearnSong is the "learn song" sync message.
//
// Layout:
//
//	varint   name length
//	[]byte   UTF-8 song identity
//	byte     note count, 0 when no notes accompany the message
//	[]byte   one byte per note ordinal
//
// Note bytes are reduced modulo the note count on decode, so a corrupt or
// newer payload still yields valid notes.
type LearnSong struct {
	Song  string
	Notes []song.Note
}

// DecodeError reports which part of a payload could not be decoded.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var (
	errTruncated = errors.New("truncated payload")
	errTooLong   = errors.New("too long")
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (m LearnSong) MarshalBinary() ([]byte, error) {
	if len(m.Song) > MaxNameLength {
		return nil, fmt.Errorf("song name: %w: %d bytes", errTooLong, len(m.Song))
	}
	if len(m.Notes) > MaxNotes {
		return nil, fmt.Errorf("notes: %w: %d notes", errTooLong, len(m.Notes))
	}

	buf := make([]byte, 0, protowire.SizeVarint(uint64(len(m.Song)))+len(m.Song)+1+len(m.Notes))
	buf = protowire.AppendVarint(buf, uint64(len(m.Song)))
	buf = append(buf, m.Song...)
	buf = append(buf, byte(len(m.Notes)))
	for i, n := range m.Notes {
		if !n.Valid() {
			return nil, fmt.Errorf("notes[%d]: invalid note %d", i, n)
		}
		buf = append(buf, byte(n))
	}
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Errors are *DecodeError.
func (m *LearnSong) UnmarshalBinary(data []byte) error {
	size, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return &DecodeError{Field: "name length", Err: protowire.ParseError(n)}
	}
	if size > MaxNameLength {
		return &DecodeError{Field: "name length", Err: fmt.Errorf("%w: %d bytes", errTooLong, size)}
	}
	data = data[n:]

	if uint64(len(data)) < size {
		return &DecodeError{Field: "name", Err: errTruncated}
	}
	name := data[:size]
	if !utf8.Valid(name) {
		return &DecodeError{Field: "name", Err: errors.New("invalid UTF-8")}
	}
	data = data[size:]

	if len(data) < 1 {
		return &DecodeError{Field: "note count", Err: errTruncated}
	}
	count := int(data[0])
	data = data[1:]

	if len(data) < count {
		return &DecodeError{Field: "notes", Err: errTruncated}
	}
	if len(data) > count {
		return &DecodeError{Field: "notes", Err: fmt.Errorf("%d trailing bytes", len(data)-count)}
	}

	var notes []song.Note
	if count > 0 {
		notes = make([]song.Note, count)
		for i, b := range data {
			notes[i] = song.NoteFromByte(b)
		}
	}

	m.Song = string(name)
	m.Notes = notes
	return nil
}

// Encode builds the payload announcing sg, with notes for the custom song.
func Encode(sg *song.Song, notes []song.Note) ([]byte, error) {
	msg := LearnSong{Song: sg.Name}
	if sg.Custom {
		msg.Notes = notes
	}
	return msg.MarshalBinary()
}

// Decode parses a payload.
func Decode(payload []byte) (LearnSong, error) {
	var msg LearnSong
	err := msg.UnmarshalBinary(payload)
	return msg, err
}
