package repertoire

import "github.com/google/uuid"

// Simulation time constants, in ticks.
const (
	TicksPerDay int64 = 24000

	// ScarecrowDelay is how long a proposed scarecrow pattern must wait
	// before it can be confirmed.
	ScarecrowDelay = 7 * TicksPerDay

	// HealCooldown gates the song of healing.
	HealCooldown = TicksPerDay
)

// ScarecrowLength is the number of distinct notes in a scarecrow pattern.
const ScarecrowLength = 8

// Clock reports the current simulation time.
type Clock interface {
	Current() int64
}

// Achievement identifies an award recorded when songs are learned.
type Achievement string

const (
	AchievementSong      Achievement = "ocarina.song"
	AchievementScarecrow Achievement = "ocarina.scarecrow"
	AchievementMaestro   Achievement = "ocarina.maestro"
)

// AchievementSink records achievements. Award is fire-and-forget.
type AchievementSink interface {
	Award(participant uuid.UUID, a Achievement)
}

// Notice is a one-way, player-facing message key.
type Notice string

const (
	// NoticeScarecrowLater tells the player the pattern is not ready yet.
	NoticeScarecrowLater Notice = "song.scarecrow.later"
	// NoticeScarecrowKnown tells the player the scarecrow song is already learned.
	NoticeScarecrowKnown Notice = "song.scarecrow.known"
)

// NoticeSink delivers notices to a participant.
type NoticeSink interface {
	Notify(participant uuid.UUID, n Notice)
}

// Env carries the collaborators a State mutation needs.
//
// Authoritative is true on the process that owns simulation time for the
// participant. Notices are only sent from the authoritative side so that
// mirrored copies do not repeat them. Nil sinks are skipped.
type Env struct {
	Clock         Clock
	Authoritative bool
	Achievements  AchievementSink
	Notices       NoticeSink
}

func (e Env) now() int64 {
	if e.Clock == nil {
		return 0
	}
	return e.Clock.Current()
}

func (e Env) award(participant uuid.UUID, a Achievement) {
	if e.Achievements != nil {
		e.Achievements.Award(participant, a)
	}
}

func (e Env) notify(participant uuid.UUID, n Notice) {
	if e.Authoritative && e.Notices != nil {
		e.Notices.Notify(participant, n)
	}
}
