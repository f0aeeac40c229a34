package repertoire

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/canon"
	"github.com/soultek101/ocarina/internal/companion"
	"github.com/soultek101/ocarina/internal/song"
)

// Record field names. These are the persisted profile layout.
const (
	fieldKnownSongs       = "KnownSongs"
	fieldSong             = "song"
	fieldScarecrowNotes   = "ScarecrowNotes"
	fieldScarecrowTime    = "ScarecrowTime"
	fieldNextSongHealTime = "NextSongHealTime"
	fieldHorseUUIDMost    = "HorseUUIDMost"
	fieldHorseUUIDLeast   = "HorseUUIDLeast"
)

// KnownSong is one entry of Record.KnownSongs.
type KnownSong struct {
	Song string `json:"song" yaml:"song"`
}

// Record is the durable form of a State.
//
// Songs are stored by identity and notes by ordinal. ScarecrowNotes is
// omitted while no pattern is proposed and the horse pair is omitted until a
// mount has been bound. The transient mount id is never stored.
type Record struct {
	KnownSongs       []KnownSong `json:"KnownSongs" yaml:"KnownSongs"`
	ScarecrowNotes   []int32     `json:"ScarecrowNotes,omitempty" yaml:"ScarecrowNotes,omitempty"`
	ScarecrowTime    int64       `json:"ScarecrowTime" yaml:"ScarecrowTime"`
	NextSongHealTime int64       `json:"NextSongHealTime" yaml:"NextSongHealTime"`
	HorseUUIDMost    *int64      `json:"HorseUUIDMost,omitempty" yaml:"HorseUUIDMost,omitempty"`
	HorseUUIDLeast   *int64      `json:"HorseUUIDLeast,omitempty" yaml:"HorseUUIDLeast,omitempty"`

	problems []error
}

// Record snapshots s. Known songs are listed in catalog order.
func (s *State) Record() Record {
	rec := Record{
		KnownSongs:       make([]KnownSong, 0, len(s.known)),
		ScarecrowTime:    s.scarecrowUnlock,
		NextSongHealTime: s.nextHeal,
	}
	for _, sg := range s.Known() {
		rec.KnownSongs = append(rec.KnownSongs, KnownSong{Song: sg.Name})
	}
	if len(s.scarecrowNotes) > 0 {
		rec.ScarecrowNotes = make([]int32, len(s.scarecrowNotes))
		for i, n := range s.scarecrowNotes {
			rec.ScarecrowNotes[i] = int32(n)
		}
	}
	if s.mount.Bound() {
		most, least := companion.SplitUUID(s.mount.UUID)
		rec.HorseUUIDMost = &most
		rec.HorseUUIDLeast = &least
	}
	return rec
}

// Restore rebuilds a State from a record.
//
// Bad entries are skipped rather than failing the load, and each one is
// reported in the returned warnings:
//   - entries UnmarshalRecord skipped (see Record.Problems)
//   - unknown song identities
//   - a scarecrow pattern with an out-of-range ordinal, a wrong length or a
//     repeated note (the whole pattern is dropped)
//   - a confirmed scarecrow song with no usable pattern
//   - half of the horse UUID pair
func Restore(participant uuid.UUID, catalog *song.Catalog, rec Record) (*State, []error) {
	s := New(participant, catalog)
	warnings := append([]error(nil), rec.problems...)

	for i, ks := range rec.KnownSongs {
		sg, ok := catalog.Lookup(ks.Song)
		if !ok {
			warnings = append(warnings, fmt.Errorf("%s[%d]: unknown song %q", fieldKnownSongs, i, ks.Song))
			continue
		}
		s.known[sg.Name] = struct{}{}
	}

	if len(rec.ScarecrowNotes) > 0 {
		notes, err := restoreScarecrow(rec.ScarecrowNotes)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", fieldScarecrowNotes, err))
		} else {
			s.scarecrowNotes = notes
		}
	}
	if c := catalog.Custom(); c != nil && s.has(c.Name) && len(s.scarecrowNotes) == 0 {
		delete(s.known, c.Name)
		warnings = append(warnings, fmt.Errorf("%s: %s is known but has no pattern", fieldKnownSongs, c.Name))
	}

	s.scarecrowUnlock = rec.ScarecrowTime
	s.nextHeal = rec.NextSongHealTime

	switch {
	case rec.HorseUUIDMost != nil && rec.HorseUUIDLeast != nil:
		id := companion.JoinUUID(*rec.HorseUUIDMost, *rec.HorseUUIDLeast)
		if id != uuid.Nil {
			s.mount = companion.Ref{ID: companion.NoID, UUID: id}
		}
	case rec.HorseUUIDMost != nil || rec.HorseUUIDLeast != nil:
		warnings = append(warnings, fmt.Errorf("%s/%s: incomplete pair ignored", fieldHorseUUIDMost, fieldHorseUUIDLeast))
	}

	return s, warnings
}

func restoreScarecrow(ordinals []int32) ([]song.Note, error) {
	notes := make([]song.Note, len(ordinals))
	for i, o := range ordinals {
		n, err := song.NoteFromOrdinal(int(o))
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		notes[i] = n
	}
	if !validScarecrow(notes) {
		return nil, fmt.Errorf("want %d distinct notes, got %q", ScarecrowLength, song.FormatNotes(notes))
	}
	return notes, nil
}

// MarshalRecord encodes rec as canonical JSON.
func MarshalRecord(rec Record) ([]byte, error) {
	return canon.Marshal(recordValue(rec))
}

// RecordDigest is the content digest of rec's canonical encoding.
func RecordDigest(rec Record) (string, error) {
	return canon.DigestValue(canon.DomainRecord, recordValue(rec))
}

func recordValue(rec Record) canon.Object {
	songs := make(canon.Array, len(rec.KnownSongs))
	for i, ks := range rec.KnownSongs {
		songs[i] = canon.NewObject(canon.O(fieldSong, canon.String(ks.Song)))
	}

	obj := canon.NewObject(
		canon.O(fieldKnownSongs, songs),
		canon.O(fieldScarecrowTime, canon.Int(rec.ScarecrowTime)),
		canon.O(fieldNextSongHealTime, canon.Int(rec.NextSongHealTime)),
	)
	if len(rec.ScarecrowNotes) > 0 {
		notes := make(canon.Array, len(rec.ScarecrowNotes))
		for i, n := range rec.ScarecrowNotes {
			notes[i] = canon.Int(n)
		}
		obj[fieldScarecrowNotes] = notes
	}
	if rec.HorseUUIDMost != nil {
		obj[fieldHorseUUIDMost] = canon.Int(*rec.HorseUUIDMost)
	}
	if rec.HorseUUIDLeast != nil {
		obj[fieldHorseUUIDLeast] = canon.Int(*rec.HorseUUIDLeast)
	}
	return obj
}

// ErrMalformedRecord wraps decode failures that leave nothing to restore:
// input that is not JSON or whose top level is not an object.
var ErrMalformedRecord = errors.New("malformed record")

// UnmarshalRecord decodes a record written by MarshalRecord.
//
// Unknown keys are ignored so newer writers stay readable. A wrongly typed
// entry or field is skipped and kept on the record as a problem that Restore
// reports with its own warnings, so one bad entry never costs the rest of the
// profile. Only input that is not a JSON object fails with ErrMalformedRecord.
func UnmarshalRecord(data []byte) (Record, error) {
	var rec Record

	v, err := canon.Decode(data)
	if err != nil {
		return rec, fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	obj, ok := v.(canon.Object)
	if !ok {
		return rec, fmt.Errorf("%w: want object, got %T", ErrMalformedRecord, v)
	}

	if raw, ok := obj[fieldKnownSongs]; ok {
		rec.KnownSongs = rec.decodeKnownSongs(raw)
	}
	if raw, ok := obj[fieldScarecrowNotes]; ok {
		rec.ScarecrowNotes = rec.decodeScarecrowNotes(raw)
	}

	if p := rec.int64Field(obj, fieldScarecrowTime); p != nil {
		rec.ScarecrowTime = *p
	}
	if p := rec.int64Field(obj, fieldNextSongHealTime); p != nil {
		rec.NextSongHealTime = *p
	}
	rec.HorseUUIDMost = rec.int64Field(obj, fieldHorseUUIDMost)
	rec.HorseUUIDLeast = rec.int64Field(obj, fieldHorseUUIDLeast)

	return rec, nil
}

// Problems lists the entries UnmarshalRecord skipped.
func (r Record) Problems() []error {
	return r.problems
}

func (r *Record) skip(field, want string, got canon.Value) {
	r.problems = append(r.problems, fmt.Errorf("%s: want %s, got %T: skipped", field, want, got))
}

func (r *Record) decodeKnownSongs(raw canon.Value) []KnownSong {
	arr, ok := raw.(canon.Array)
	if !ok {
		r.skip(fieldKnownSongs, "array", raw)
		return nil
	}
	songs := make([]KnownSong, 0, len(arr))
	for i, elem := range arr {
		entry, ok := elem.(canon.Object)
		if !ok {
			r.skip(fmt.Sprintf("%s[%d]", fieldKnownSongs, i), "object", elem)
			continue
		}
		name, ok := entry[fieldSong].(canon.String)
		if !ok {
			r.skip(fmt.Sprintf("%s[%d].%s", fieldKnownSongs, i, fieldSong), "string", entry[fieldSong])
			continue
		}
		songs = append(songs, KnownSong{Song: string(name)})
	}
	return songs
}

// decodeScarecrowNotes drops the whole pattern on a bad note; a pattern with
// a hole in it cannot be played back.
func (r *Record) decodeScarecrowNotes(raw canon.Value) []int32 {
	arr, ok := raw.(canon.Array)
	if !ok {
		r.skip(fieldScarecrowNotes, "array", raw)
		return nil
	}
	notes := make([]int32, len(arr))
	for i, elem := range arr {
		n, ok := elem.(canon.Int)
		if !ok || n < math.MinInt32 || n > math.MaxInt32 {
			r.skip(fmt.Sprintf("%s[%d]", fieldScarecrowNotes, i), "int32", elem)
			return nil
		}
		notes[i] = int32(n)
	}
	return notes
}

func (r *Record) int64Field(obj canon.Object, key string) *int64 {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	n, ok := raw.(canon.Int)
	if !ok {
		r.skip(key, "integer", raw)
		return nil
	}
	v := int64(n)
	return &v
}
