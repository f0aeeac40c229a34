package wire

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/repertoire"
	"github.com/soultek101/ocarina/internal/song"
)

// Side says which end of the replication a Handler runs on.
type Side int

const (
	// SideOwner validates requests and replicates accepted changes.
	SideOwner Side = iota
	// SideObserver mirrors changes pushed by the owner.
	SideObserver
)

func (s Side) String() string {
	if s == SideOwner {
		return "owner"
	}
	return "observer"
}

// Sender delivers a payload to the participant's observers.
type Sender interface {
	Send(participant uuid.UUID, payload []byte) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(participant uuid.UUID, payload []byte) error

func (f SenderFunc) Send(participant uuid.UUID, payload []byte) error {
	return f(participant, payload)
}

var (
	// ErrUnknownParticipant is returned by the owner for a participant that
	// has not joined.
	ErrUnknownParticipant = errors.New("unknown participant")
	// ErrUnknownSong is returned by Teach for a name the catalog lacks.
	ErrUnknownSong = errors.New("unknown song")
)

// Handler applies LearnSong payloads to a registry.
type Handler struct {
	side     Side
	registry *repertoire.Registry
	env      repertoire.Env
	sender   Sender
}

// NewHandler returns a handler for side. sender may be nil on observers.
func NewHandler(side Side, registry *repertoire.Registry, env repertoire.Env, sender Sender) *Handler {
	return &Handler{
		side:     side,
		registry: registry,
		env:      env,
		sender:   sender,
	}
}

func (h *Handler) Side() Side { return h.side }

// Handle decodes and applies an inbound payload.
//
// A payload naming a song the catalog does not have is logged and dropped:
// Handle returns OutcomeUnknownSong with a nil error and nothing changes.
// Malformed payloads return a *DecodeError.
func (h *Handler) Handle(participant uuid.UUID, payload []byte) (repertoire.Outcome, error) {
	msg, err := Decode(payload)
	if err != nil {
		return repertoire.OutcomeUnknownSong, err
	}
	return h.Apply(participant, msg)
}

// Apply applies an already decoded message.
func (h *Handler) Apply(participant uuid.UUID, msg LearnSong) (repertoire.Outcome, error) {
	sg, ok := h.registry.Catalog().Lookup(msg.Song)
	if !ok {
		slog.Error("invalid song name in learn payload",
			"participant", participant,
			"song", msg.Song,
			"side", h.side)
		return repertoire.OutcomeUnknownSong, nil
	}

	if h.side == SideObserver {
		st := h.registry.Ensure(participant)
		outcome := st.Mirror(h.env, sg, msg.Notes)
		slog.Debug("mirrored song",
			"participant", participant,
			"song", sg.Name,
			"outcome", outcome)
		return outcome, nil
	}

	return h.learn(participant, sg, msg.Notes)
}

// Teach runs an owner-initiated learn, for songs taught by the world rather
// than requested by the participant.
func (h *Handler) Teach(participant uuid.UUID, name string, notes []song.Note) (repertoire.Outcome, error) {
	if h.side != SideOwner {
		return repertoire.OutcomeUnknownSong, fmt.Errorf("teach %s: not the owner", name)
	}
	sg, ok := h.registry.Catalog().Lookup(name)
	if !ok {
		return repertoire.OutcomeUnknownSong, fmt.Errorf("teach %s: %w", name, ErrUnknownSong)
	}
	return h.learn(participant, sg, notes)
}

func (h *Handler) learn(participant uuid.UUID, sg *song.Song, notes []song.Note) (repertoire.Outcome, error) {
	st, ok := h.registry.Get(participant)
	if !ok {
		return repertoire.OutcomeUnknownSong, fmt.Errorf("learn %s: %w: %s", sg.Name, ErrUnknownParticipant, participant)
	}

	outcome := st.Learn(h.env, sg, notes)
	slog.Debug("learn",
		"participant", participant,
		"song", sg.Name,
		"outcome", outcome)

	if !outcome.Replicate() {
		return outcome, nil
	}
	// A confirmation carries no notes; observers already hold the pattern.
	if outcome != repertoire.OutcomeProposed {
		notes = nil
	}
	if err := h.replicate(participant, sg, notes); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// Resync pushes the participant's whole repertoire. Fixed songs go first in
// catalog order, then the scarecrow proposal and, once confirmed, the
// confirmation. Every message is idempotent on the observer, so resyncing
// an observer that is already in step changes nothing.
func (h *Handler) Resync(participant uuid.UUID) error {
	if h.side != SideOwner {
		return fmt.Errorf("resync: not the owner")
	}
	st, ok := h.registry.Get(participant)
	if !ok {
		return fmt.Errorf("resync: %w: %s", ErrUnknownParticipant, participant)
	}

	for _, sg := range st.Known() {
		if sg.Custom {
			continue
		}
		if err := h.replicate(participant, sg, nil); err != nil {
			return err
		}
	}

	custom := st.Catalog().Custom()
	if custom == nil {
		return nil
	}
	if st.Phase() == repertoire.PhaseUnset {
		return nil
	}
	if err := h.replicate(participant, custom, st.ScarecrowNotes()); err != nil {
		return err
	}
	if st.Phase() == repertoire.PhaseConfirmed {
		return h.replicate(participant, custom, nil)
	}
	return nil
}

func (h *Handler) replicate(participant uuid.UUID, sg *song.Song, notes []song.Note) error {
	if h.sender == nil {
		return nil
	}
	payload, err := Encode(sg, notes)
	if err != nil {
		return fmt.Errorf("replicate %s: %w", sg.Name, err)
	}
	if err := h.sender.Send(participant, payload); err != nil {
		return fmt.Errorf("replicate %s: %w", sg.Name, err)
	}
	return nil
}
