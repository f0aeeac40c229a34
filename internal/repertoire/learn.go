package repertoire

import (
	"log/slog"
	"slices"

	"github.com/soultek101/ocarina/internal/song"
)

// Outcome is the result of a learn attempt.
type Outcome int

const (
	// OutcomeLearned means the song was added to the known set.
	OutcomeLearned Outcome = iota
	// OutcomeProposed means a scarecrow pattern was stored and its timer started.
	OutcomeProposed
	// OutcomeTooSoon means a scarecrow pattern exists but is not yet unlocked.
	OutcomeTooSoon
	// OutcomeMismatch means the unlocked pattern differs from the stored one.
	OutcomeMismatch
	OutcomeAlreadyKnown
	// OutcomeInvalidNotes means the scarecrow notes were not 8 distinct notes.
	OutcomeInvalidNotes
	OutcomeUnknownSong
	// OutcomeAlreadyProposed means an observer already holds this proposal.
	OutcomeAlreadyProposed
)

var outcomeNames = [...]string{
	OutcomeLearned:      "learned",
	OutcomeProposed:     "proposed",
	OutcomeTooSoon:      "too_soon",
	OutcomeMismatch:     "mismatch",
	OutcomeAlreadyKnown: "already_known",
	OutcomeInvalidNotes: "invalid_notes",
	OutcomeUnknownSong:  "unknown_song",

	OutcomeAlreadyProposed: "already_proposed",
}

func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, bool) {
	i := slices.Index(outcomeNames[:], s)
	if i < 0 {
		return 0, false
	}
	return Outcome(i), true
}

// Replicate reports whether the owner should push this outcome to observers.
// Only accepted state changes are replicated.
func (o Outcome) Replicate() bool {
	return o == OutcomeLearned || o == OutcomeProposed
}

// Learn applies a learn request on the authoritative side.
//
// Fixed-pattern songs are learned immediately. The custom song runs the
// two-phase protocol: notes must be ScarecrowLength distinct notes, the
// first valid call stores them and starts the unlock timer, and a later
// call with the identical notes after the timer confirms the song. A call
// before the timer notifies the participant and changes nothing.
//
// notes is ignored for fixed-pattern songs.
func (s *State) Learn(env Env, sg *song.Song, notes []song.Note) Outcome {
	sg = s.resolve(sg)
	if sg == nil {
		return OutcomeUnknownSong
	}

	if !sg.Custom {
		if s.has(sg.Name) {
			return OutcomeAlreadyKnown
		}
		s.add(env, sg)
		return OutcomeLearned
	}

	if !validScarecrow(notes) {
		slog.Warn("rejected scarecrow pattern",
			"participant", s.participant,
			"notes", song.FormatNotes(notes))
		return OutcomeInvalidNotes
	}
	if s.has(sg.Name) {
		return OutcomeAlreadyKnown
	}

	now := env.now()
	switch {
	case len(s.scarecrowNotes) == 0:
		s.scarecrowNotes = slices.Clone(notes)
		s.scarecrowUnlock = now + ScarecrowDelay
		return OutcomeProposed

	case now > s.scarecrowUnlock:
		if !song.EqualNotes(s.scarecrowNotes, notes) {
			return OutcomeMismatch
		}
		s.add(env, sg)
		return OutcomeLearned

	default:
		env.notify(s.participant, NoticeScarecrowLater)
		return OutcomeTooSoon
	}
}

// Mirror applies a learn fact replicated from the owner.
//
// For the custom song the owner sends two kinds of message. A proposal
// carries the pattern and starts the local timer from env's clock, so the
// observer can gate its input locally. A confirmation carries no notes and
// marks the stored pattern as learned; the owner has already checked the
// unlock time against its own clock. Every fact is idempotent: applying a
// message the observer already reflects changes nothing.
func (s *State) Mirror(env Env, sg *song.Song, notes []song.Note) Outcome {
	sg = s.resolve(sg)
	if sg == nil {
		return OutcomeUnknownSong
	}

	if !sg.Custom {
		if s.has(sg.Name) {
			return OutcomeAlreadyKnown
		}
		s.add(env, sg)
		return OutcomeLearned
	}

	if s.has(sg.Name) {
		return OutcomeAlreadyKnown
	}

	if len(notes) == 0 {
		if len(s.scarecrowNotes) == 0 {
			slog.Warn("scarecrow confirmation without a proposal",
				"participant", s.participant)
			return OutcomeInvalidNotes
		}
		s.add(env, sg)
		return OutcomeLearned
	}

	if !validScarecrow(notes) {
		return OutcomeInvalidNotes
	}
	switch {
	case len(s.scarecrowNotes) == 0:
		s.scarecrowNotes = slices.Clone(notes)
		s.scarecrowUnlock = env.now() + ScarecrowDelay
		return OutcomeProposed
	case song.EqualNotes(s.scarecrowNotes, notes):
		return OutcomeAlreadyProposed
	default:
		return OutcomeMismatch
	}
}

// CanOpenScarecrow reports whether the participant may enter a scarecrow
// pattern now: always before a pattern is proposed, never after the song is
// confirmed, and only once the unlock time has passed in between.
// When notify is set, a refusal sends the matching notice.
func (s *State) CanOpenScarecrow(env Env, notify bool) bool {
	switch s.Phase() {
	case PhaseUnset:
		return true
	case PhaseConfirmed:
		if notify {
			env.notify(s.participant, NoticeScarecrowKnown)
		}
		return false
	}

	if env.now() <= s.scarecrowUnlock {
		if notify {
			env.notify(s.participant, NoticeScarecrowLater)
		}
		return false
	}
	return true
}

func validScarecrow(notes []song.Note) bool {
	return len(notes) == ScarecrowLength && song.NotesUnique(notes)
}
