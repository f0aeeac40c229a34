package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/companion"
	"github.com/soultek101/ocarina/internal/repertoire"
	"github.com/soultek101/ocarina/internal/song"
	"github.com/soultek101/ocarina/internal/store"
	"github.com/soultek101/ocarina/internal/wire"
)

// VitalsSource looks up a participant's avatar health.
type VitalsSource interface {
	Vitals(participant uuid.UUID) (repertoire.Vitals, bool)
}

// Result is what processing one event produced. Only the fields relevant to
// Event.Type are set.
type Result struct {
	Event Event
	// Time is the simulation tick after the event was processed.
	Time int64

	// Outcome of a Learn or Teach.
	Outcome repertoire.Outcome
	// Song is the song learned (Learn, Teach) or matched (Play). Empty when
	// nothing matched.
	Song string
	// OK reports a Join that restored a stored profile, a Ride that bound a
	// mount, a Summon that found one or a Heal that was granted.
	OK bool
	// EntityID is the mount found by Summon.
	EntityID int32
	// Saved counts profiles written by Leave and Checkpoint.
	Saved int
	// Warnings are the restore warnings of a Join.
	Warnings []error

	Err error
}

// Engine is the single-writer loop that owns participant state.
//
// Every mutation of the registry happens on the goroutine running Run (or
// Drain). External callers use Enqueue() to submit events.
//
// Thread-safety model:
//   - Enqueue(): safe from any goroutine
//   - Run() / Drain(): must be called from exactly one goroutine
//   - Clock().Current(): safe from any goroutine
type Engine struct {
	store    *store.Store
	clock    *Clock
	registry *repertoire.Registry
	handler  *wire.Handler
	queue    *eventQueue

	env      repertoire.Env
	sender   wire.Sender
	world    companion.Lookup
	vitals   VitalsSource
	onResult func(Result)
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithClock replaces the engine's clock, for resuming a saved world time.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithSender sets where accepted learns are replicated.
func WithSender(s wire.Sender) EngineOption {
	return func(e *Engine) {
		e.sender = s
	}
}

// WithWorld sets the live entity lookup used by Ride and Summon.
func WithWorld(w companion.Lookup) EngineOption {
	return func(e *Engine) {
		e.world = w
	}
}

// WithVitals sets the health source used by Heal.
func WithVitals(v VitalsSource) EngineOption {
	return func(e *Engine) {
		e.vitals = v
	}
}

// WithAchievements sets the achievement sink.
func WithAchievements(a repertoire.AchievementSink) EngineOption {
	return func(e *Engine) {
		e.env.Achievements = a
	}
}

// WithNotices sets the notice sink.
func WithNotices(n repertoire.NoticeSink) EngineOption {
	return func(e *Engine) {
		e.env.Notices = n
	}
}

// WithResultHook registers fn to receive the Result of every processed
// event, including failed ones. fn runs on the engine goroutine.
func WithResultHook(fn func(Result)) EngineOption {
	return func(e *Engine) {
		e.onResult = fn
	}
}

// New creates an Engine that persists profiles to s and resolves songs
// against catalog.
func New(s *store.Store, catalog *song.Catalog, opts ...EngineOption) *Engine {
	e := &Engine{
		store:    s,
		clock:    NewClock(),
		registry: repertoire.NewRegistry(catalog),
		queue:    newEventQueue(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.env.Clock = e.clock
	e.env.Authoritative = true
	e.handler = wire.NewHandler(wire.SideOwner, e.registry, e.env, e.sender)

	return e
}

// Enqueue submits an event for processing.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called.
//
// On event processing failure the error is logged with the event context and
// processing continues. A failed event never takes the participant's other
// events down with it.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "time", e.clock.Current())

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			e.process(ctx, event)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-e.queue.Wait():
			// A coalesced signal can outlive the event it announced, so only
			// a closed and empty queue ends the loop.
			if e.queue.Closed() && e.queue.Len() == 0 {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Drain processes every queued event on the calling goroutine and returns
// once the queue is empty. Events enqueued while draining are processed too.
//
// Drain must not be used while Run is active.
func (e *Engine) Drain(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		event, ok := e.queue.TryDequeue()
		if !ok {
			return nil
		}
		e.process(ctx, event)
	}
}

// Stop gracefully shuts down the engine.
// Closes the event queue, which will cause Run() to return.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Clock returns the engine's simulation clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Registry returns the engine's participant registry.
// Only safe to read from the engine goroutine or after Run has returned.
func (e *Engine) Registry() *repertoire.Registry {
	return e.registry
}

// QueueLen returns the number of events waiting to be processed.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

func (e *Engine) process(ctx context.Context, event Event) {
	res, err := e.processEvent(ctx, event)
	res.Event = event
	res.Time = e.clock.Current()
	res.Err = err
	if err != nil {
		logEventError(event, err)
	}
	if e.onResult != nil {
		e.onResult(res)
	}
}

// processEvent routes an event to the appropriate handler.
// Called only from the engine goroutine.
func (e *Engine) processEvent(ctx context.Context, event Event) (Result, error) {
	switch event.Type {
	case EventTypeJoin:
		return e.join(ctx, event.Participant)
	case EventTypeLeave:
		return e.leave(ctx, event.Participant)
	case EventTypeLearn:
		return e.learn(event.Participant, event.Payload)
	case EventTypeTeach:
		return e.teach(event.Participant, event.Song, event.Notes)
	case EventTypePlay:
		return e.play(event.Participant, event.Notes)
	case EventTypeRide:
		return e.ride(event.Participant, event.EntityID)
	case EventTypeSummon:
		return e.summon(event.Participant)
	case EventTypeHeal:
		return e.heal(event.Participant)
	case EventTypeAdvance:
		return e.advance(event.Ticks)
	case EventTypeCheckpoint:
		return e.checkpoint(ctx)
	default:
		return Result{}, &RuntimeError{
			Code:    ErrCodeInvalidEvent,
			Message: fmt.Sprintf("unknown event type: %d", event.Type),
		}
	}
}

// join loads the participant's stored profile, or starts an empty one, and
// pushes the whole repertoire to observers. Joining twice only resyncs.
func (e *Engine) join(ctx context.Context, p uuid.UUID) (Result, error) {
	var res Result

	if _, ok := e.registry.Get(p); !ok {
		rec, found, err := e.store.LoadProfile(ctx, p)
		if err != nil {
			return res, storeError(p, "load profile", err)
		}
		if found {
			st, warnings := repertoire.Restore(p, e.registry.Catalog(), rec)
			for _, w := range warnings {
				slog.Warn("profile restore", "participant", p, "warning", w)
			}
			e.registry.Put(st)
			res.OK = true
			res.Warnings = warnings
		} else {
			e.registry.Ensure(p)
		}
		slog.Info("participant joined", "participant", p, "restored", found)
	}

	if err := e.handler.Resync(p); err != nil {
		return res, fmt.Errorf("join %s: %w", p, err)
	}
	return res, nil
}

// leave saves and evicts the participant.
func (e *Engine) leave(ctx context.Context, p uuid.UUID) (Result, error) {
	st, ok := e.registry.Get(p)
	if !ok {
		return Result{}, unknownParticipant(p, nil)
	}

	written, err := e.store.SaveProfile(ctx, p, st.Record())
	if err != nil {
		// Keep the state loaded so a later leave or checkpoint can retry.
		return Result{}, storeError(p, "save profile", err)
	}
	e.registry.Remove(p)

	res := Result{}
	if written {
		res.Saved = 1
	}
	slog.Info("participant left", "participant", p, "written", written)
	return res, nil
}

func (e *Engine) learn(p uuid.UUID, payload []byte) (Result, error) {
	msg, err := wire.Decode(payload)
	if err != nil {
		return Result{Outcome: repertoire.OutcomeUnknownSong}, classify(p, err)
	}
	outcome, err := e.handler.Apply(p, msg)
	res := Result{Outcome: outcome, Song: msg.Song}
	if err != nil {
		return res, classify(p, err)
	}
	return res, nil
}

func (e *Engine) teach(p uuid.UUID, name string, notes []song.Note) (Result, error) {
	outcome, err := e.handler.Teach(p, name, notes)
	res := Result{Outcome: outcome, Song: name}
	if err != nil {
		return res, classify(p, err)
	}
	return res, nil
}

func (e *Engine) play(p uuid.UUID, notes []song.Note) (Result, error) {
	st, ok := e.registry.Get(p)
	if !ok {
		return Result{}, unknownParticipant(p, nil)
	}
	var res Result
	if sg := st.Match(notes); sg != nil {
		res.Song = sg.Name
		res.OK = true
	}
	slog.Debug("played notes",
		"participant", p,
		"notes", song.FormatNotes(notes),
		"song", res.Song)
	return res, nil
}

func (e *Engine) ride(p uuid.UUID, id int32) (Result, error) {
	st, ok := e.registry.Get(p)
	if !ok {
		return Result{}, unknownParticipant(p, nil)
	}
	if e.world == nil {
		return Result{}, nil
	}
	m, isMount := e.world.EntityByID(id).(companion.Mount)
	if !isMount {
		return Result{}, nil
	}
	return Result{OK: st.RideMount(m)}, nil
}

func (e *Engine) summon(p uuid.UUID) (Result, error) {
	st, ok := e.registry.Get(p)
	if !ok {
		return Result{}, unknownParticipant(p, nil)
	}
	if e.world == nil {
		return Result{EntityID: companion.NoID}, nil
	}
	m, found := st.LastMount(e.world)
	if !found {
		return Result{EntityID: companion.NoID}, nil
	}
	return Result{OK: true, EntityID: m.EntityID()}, nil
}

func (e *Engine) heal(p uuid.UUID) (Result, error) {
	st, ok := e.registry.Get(p)
	if !ok {
		return Result{}, unknownParticipant(p, nil)
	}
	if e.vitals == nil {
		return Result{}, nil
	}
	v, found := e.vitals.Vitals(p)
	if !found || !st.CanHealFromSong(e.env, v) {
		return Result{}, nil
	}
	st.MarkHealUsed(e.env)
	return Result{OK: true}, nil
}

func (e *Engine) advance(ticks int64) (Result, error) {
	if ticks < 0 {
		return Result{}, &RuntimeError{
			Code:    ErrCodeInvalidEvent,
			Message: fmt.Sprintf("cannot advance by %d ticks", ticks),
		}
	}
	e.clock.Advance(ticks)
	return Result{}, nil
}

// checkpoint saves every loaded participant. A failed save is logged and
// the remaining participants are still saved; the first error is returned.
func (e *Engine) checkpoint(ctx context.Context) (Result, error) {
	var (
		res      Result
		firstErr error
	)
	for _, p := range e.registry.Participants() {
		st, _ := e.registry.Get(p)
		written, err := e.store.SaveProfile(ctx, p, st.Record())
		if err != nil {
			slog.Error("checkpoint save failed", "participant", p, "error", err)
			if firstErr == nil {
				firstErr = storeError(p, "save profile", err)
			}
			continue
		}
		if written {
			res.Saved++
		}
	}
	slog.Debug("checkpoint", "participants", e.registry.Len(), "written", res.Saved)
	return res, firstErr
}

// classify maps handler errors to runtime error codes.
func classify(p uuid.UUID, err error) error {
	var de *wire.DecodeError
	switch {
	case errors.Is(err, wire.ErrUnknownParticipant):
		return unknownParticipant(p, err)
	case errors.Is(err, wire.ErrUnknownSong):
		return &RuntimeError{Code: ErrCodeUnknownSong, Message: "song not in catalog", Participant: p, Err: err}
	case errors.As(err, &de):
		return &RuntimeError{Code: ErrCodeDecode, Message: "malformed learn payload", Participant: p, Err: err}
	default:
		return err
	}
}

// logEventError logs an event processing failure with full context.
func logEventError(event Event, err error) {
	attrs := []any{
		"error", err,
		"event_type", event.Type,
	}
	if event.Participant != uuid.Nil {
		attrs = append(attrs, "participant", event.Participant)
	}
	switch event.Type {
	case EventTypeTeach:
		attrs = append(attrs, "song", event.Song)
	case EventTypeLearn:
		attrs = append(attrs, "payload_len", len(event.Payload))
	case EventTypeAdvance:
		attrs = append(attrs, "ticks", event.Ticks)
	}
	slog.Error("event processing failed", attrs...)
}
