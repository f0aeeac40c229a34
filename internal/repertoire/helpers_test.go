package repertoire

import (
	"testing"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/companion"
	"github.com/soultek101/ocarina/internal/song"
)

var player = uuid.MustParse("6b1d3c52-5d7f-4e43-9c51-1a2b3c4d5e6f")

type tickClock struct{ now int64 }

func (c *tickClock) Current() int64 { return c.now }

type recorder struct {
	awards  []Achievement
	notices []Notice
}

func (r *recorder) Award(_ uuid.UUID, a Achievement) { r.awards = append(r.awards, a) }
func (r *recorder) Notify(_ uuid.UUID, n Notice)     { r.notices = append(r.notices, n) }

func (r *recorder) count(a Achievement) int {
	n := 0
	for _, got := range r.awards {
		if got == a {
			n++
		}
	}
	return n
}

// ownerEnv returns an authoritative env at tick 0 with recording sinks.
func ownerEnv() (Env, *tickClock, *recorder) {
	clock := &tickClock{}
	rec := &recorder{}
	return Env{Clock: clock, Authoritative: true, Achievements: rec, Notices: rec}, clock, rec
}

func mustSong(t *testing.T, name string) *song.Song {
	t.Helper()
	sg, ok := song.MustDefault().Lookup(name)
	if !ok {
		t.Fatalf("song %q not in default catalog", name)
	}
	return sg
}

func mustNotes(t *testing.T, names ...string) []song.Note {
	t.Helper()
	notes, err := song.ParseNotes(names)
	if err != nil {
		t.Fatal(err)
	}
	return notes
}

var scarecrowPattern = []song.Note{
	song.NoteC4, song.NoteD4, song.NoteE4, song.NoteF4,
	song.NoteG4, song.NoteA4, song.NoteB4, song.NoteC5,
}

type vitals struct{ health, max float32 }

func (v vitals) Health() float32    { return v.health }
func (v vitals) MaxHealth() float32 { return v.max }

type horse struct {
	id    int32
	uid   uuid.UUID
	owner uuid.UUID
}

func (h *horse) EntityID() int32         { return h.id }
func (h *horse) PersistentID() uuid.UUID { return h.uid }
func (h *horse) Alive() bool             { return true }
func (h *horse) Tame() bool              { return true }
func (h *horse) Owner() uuid.UUID        { return h.owner }

type world map[int32]companion.Entity

func (w world) EntityByID(id int32) companion.Entity {
	if e, ok := w[id]; ok {
		return e
	}
	return nil
}

func (w world) EntityByUUID(id uuid.UUID) companion.Entity {
	for _, e := range w {
		if e.PersistentID() == id {
			return e
		}
	}
	return nil
}
