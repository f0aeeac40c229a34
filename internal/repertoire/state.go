package repertoire

import (
	"slices"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/companion"
	"github.com/soultek101/ocarina/internal/song"
)

// Phase is the scarecrow learn protocol state.
type Phase int

const (
	PhaseUnset Phase = iota
	PhaseProposed
	PhaseConfirmed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnset:
		return "unset"
	case PhaseProposed:
		return "proposed"
	case PhaseConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// State is one participant's song knowledge.
//
// State is not safe for concurrent use. Only the participant's owner
// mutates it.
type State struct {
	participant uuid.UUID
	catalog     *song.Catalog

	known map[string]struct{}

	scarecrowNotes  []song.Note
	scarecrowUnlock int64

	nextHeal int64

	mount companion.Ref
}

// New returns the empty state for a participant seen for the first time.
func New(participant uuid.UUID, catalog *song.Catalog) *State {
	return &State{
		participant: participant,
		catalog:     catalog,
		known:       make(map[string]struct{}, catalog.Len()),
		mount:       companion.NewRef(),
	}
}

func (s *State) Participant() uuid.UUID { return s.participant }

func (s *State) Catalog() *song.Catalog { return s.catalog }

// Knows reports whether the song with the given identity has been learned.
func (s *State) Knows(name string) bool {
	sg, ok := s.catalog.Lookup(name)
	return ok && s.has(sg.Name)
}

func (s *State) has(name string) bool {
	_, ok := s.known[name]
	return ok
}

// Known returns the learned songs in catalog order.
func (s *State) Known() []*song.Song {
	out := make([]*song.Song, 0, len(s.known))
	for _, sg := range s.catalog.Songs() {
		if s.has(sg.Name) {
			out = append(out, sg)
		}
	}
	return out
}

// KnownCount returns the number of learned songs.
func (s *State) KnownCount() int { return len(s.known) }

// KnowsAll reports whether every catalog song has been learned.
func (s *State) KnowsAll() bool { return len(s.known) == s.catalog.Len() }

// ScarecrowNotes returns a copy of the stored scarecrow pattern, if any.
func (s *State) ScarecrowNotes() []song.Note {
	return slices.Clone(s.scarecrowNotes)
}

// ScarecrowUnlock is the time after which a proposed pattern can be confirmed.
func (s *State) ScarecrowUnlock() int64 { return s.scarecrowUnlock }

// NextHeal is the time after which the song of healing works again.
func (s *State) NextHeal() int64 { return s.nextHeal }

// Mount returns a copy of the last-mount reference.
func (s *State) Mount() companion.Ref { return s.mount }

// Phase reports where the participant is in the scarecrow protocol.
func (s *State) Phase() Phase {
	if c := s.catalog.Custom(); c != nil && s.has(c.Name) {
		return PhaseConfirmed
	}
	if len(s.scarecrowNotes) > 0 {
		return PhaseProposed
	}
	return PhaseUnset
}

// resolve maps sg onto this state's catalog entry, or nil if the catalog
// has no song by that identity.
func (s *State) resolve(sg *song.Song) *song.Song {
	if sg == nil {
		return nil
	}
	got, ok := s.catalog.Lookup(sg.Name)
	if !ok {
		return nil
	}
	return got
}

// add marks sg known and fires the learn achievements.
func (s *State) add(env Env, sg *song.Song) {
	s.known[sg.Name] = struct{}{}
	env.award(s.participant, AchievementSong)
	if sg.Custom {
		env.award(s.participant, AchievementScarecrow)
	}
	if s.KnowsAll() {
		env.award(s.participant, AchievementMaestro)
	}
}
