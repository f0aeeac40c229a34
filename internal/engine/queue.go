package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/song"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeJoin loads or creates a participant's state.
	EventTypeJoin EventType = iota + 1
	// EventTypeLeave saves and evicts a participant's state.
	EventTypeLeave
	// EventTypeLearn applies an inbound LearnSong payload.
	EventTypeLearn
	// EventTypeTeach learns a song by name on the participant's behalf.
	EventTypeTeach
	// EventTypePlay matches played notes against the known songs.
	EventTypePlay
	// EventTypeRide records the mount the participant climbed onto.
	EventTypeRide
	// EventTypeSummon resolves the participant's last mount.
	EventTypeSummon
	// EventTypeHeal checks and consumes the song-of-healing cooldown.
	EventTypeHeal
	// EventTypeAdvance moves simulation time forward.
	EventTypeAdvance
	// EventTypeCheckpoint saves every loaded participant.
	EventTypeCheckpoint
)

var eventTypeNames = map[EventType]string{
	EventTypeJoin:       "join",
	EventTypeLeave:      "leave",
	EventTypeLearn:      "learn",
	EventTypeTeach:      "teach",
	EventTypePlay:       "play",
	EventTypeRide:       "ride",
	EventTypeSummon:     "summon",
	EventTypeHeal:       "heal",
	EventTypeAdvance:    "advance",
	EventTypeCheckpoint: "checkpoint",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Event is a unit of work for the engine. Only the fields relevant to Type
// are read.
type Event struct {
	Type        EventType
	Participant uuid.UUID

	// Payload is the encoded LearnSong message (Learn).
	Payload []byte
	// Song is the song name (Teach).
	Song string
	// Notes are the notes taught (Teach) or played (Play).
	Notes []song.Note
	// EntityID is the entity being ridden (Ride).
	EntityID int32
	// Ticks is the amount of time to advance (Advance).
	Ticks int64
}

func JoinEvent(p uuid.UUID) Event  { return Event{Type: EventTypeJoin, Participant: p} }
func LeaveEvent(p uuid.UUID) Event { return Event{Type: EventTypeLeave, Participant: p} }

func LearnEvent(p uuid.UUID, payload []byte) Event {
	return Event{Type: EventTypeLearn, Participant: p, Payload: payload}
}

func TeachEvent(p uuid.UUID, name string, notes []song.Note) Event {
	return Event{Type: EventTypeTeach, Participant: p, Song: name, Notes: notes}
}

func PlayEvent(p uuid.UUID, notes []song.Note) Event {
	return Event{Type: EventTypePlay, Participant: p, Notes: notes}
}

func RideEvent(p uuid.UUID, entityID int32) Event {
	return Event{Type: EventTypeRide, Participant: p, EntityID: entityID}
}

func SummonEvent(p uuid.UUID) Event { return Event{Type: EventTypeSummon, Participant: p} }
func HealEvent(p uuid.UUID) Event   { return Event{Type: EventTypeHeal, Participant: p} }

func AdvanceEvent(ticks int64) Event { return Event{Type: EventTypeAdvance, Ticks: ticks} }
func CheckpointEvent() Event         { return Event{Type: EventTypeCheckpoint} }

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so that network readers never block on a busy
// engine. Thread-safety is provided for external enqueuing while the
// Engine's Run loop dequeues.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // Signals event availability (buffered, size 1)
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Non-blocking: the buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Release the payload and notes slices held by the backing array.
	q.events[0] = Event{}

	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// The channel is closed when the queue is closed.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
