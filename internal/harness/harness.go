package harness

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/engine"
	"github.com/soultek101/ocarina/internal/repertoire"
	"github.com/soultek101/ocarina/internal/song"
	"github.com/soultek101/ocarina/internal/store"
	"github.com/soultek101/ocarina/internal/testutil"
	"github.com/soultek101/ocarina/internal/wire"
)

// Options customizes a scenario run.
type Options struct {
	// Store receives the participants' profiles. When nil, each run gets a
	// fresh in-memory store.
	Store *store.Store
	// Catalog defaults to the built-in catalog.
	Catalog *song.Catalog
	// StartTick is the world time the run starts at. Profiles store unlock
	// and heal deadlines as absolute ticks, so a run resuming a database
	// should start at or after the tick the previous run ended on.
	StartTick int64
}

// Harness is the scenario execution state.
//
// A run wires a real engine (the owner) to an observer mirror through the
// wire codec, so every accepted learn crosses the same encode/decode path a
// network peer would see.
type Harness struct {
	scenario *Scenario
	store    *store.Store
	catalog  *song.Catalog
	engine   *engine.Engine

	world    *testutil.World
	horses   map[string]*testutil.Horse
	vitals   *testutil.VitalsTable
	recorder *testutil.Recorder

	mirror   *repertoire.Registry
	observer *wire.Handler

	ids   map[string]uuid.UUID
	names map[uuid.UUID]string

	last    engine.Result
	pending []TraceEvent
	result  *Result
}

// Run executes a test scenario on a fresh in-memory store.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(scenario, Options{})
}

// RunWithOptions executes a test scenario and returns the result.
//
// Execution flow:
// 1. Open the store (fresh in-memory unless provided)
// 2. Spawn mounts and set vitals in a fake world
// 3. Execute steps through the engine, checking expect clauses
// 4. Evaluate assertions against live and stored state
//
// A returned error means the scenario could not be executed at all.
// Expectation failures are reported in Result.Errors.
func RunWithOptions(scenario *Scenario, opts Options) (*Result, error) {
	st := opts.Store
	if st == nil {
		var err error
		st, err = store.Open(store.MemoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()
	}

	catalog := opts.Catalog
	if catalog == nil {
		var err error
		catalog, err = song.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	h := newHarness(scenario, st, catalog, opts.StartTick)

	ctx := context.Background()
	for i, step := range scenario.Steps {
		if err := h.runStep(ctx, i, step); err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, step.Action, err)
		}
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Store:    st,
		Catalog:  catalog,
		Registry: h.engine.Registry(),
		Mirror:   h.mirror,
		Recorder: h.recorder,
		IDs:      h.ids,
	}
	for _, errMsg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(errMsg)
	}

	return h.result, nil
}

func newHarness(scenario *Scenario, st *store.Store, catalog *song.Catalog, startTick int64) *Harness {
	h := &Harness{
		scenario: scenario,
		store:    st,
		catalog:  catalog,
		world:    testutil.NewWorld(),
		horses:   make(map[string]*testutil.Horse),
		vitals:   testutil.NewVitalsTable(),
		recorder: testutil.NewRecorder(),
		mirror:   repertoire.NewRegistry(catalog),
		ids:      make(map[string]uuid.UUID),
		names:    make(map[uuid.UUID]string),
		result:   NewResult(),
	}

	for _, name := range scenario.Participants {
		id := testutil.ParticipantID(name)
		h.ids[name] = id
		h.names[id] = name
	}
	for _, m := range scenario.Mounts {
		horse := h.world.SpawnHorse(m.Name, h.ids[m.Owner])
		if m.Tame != nil {
			horse.IsTame = *m.Tame
		}
		h.horses[m.Name] = horse
	}
	for name, v := range scenario.Vitals {
		h.vitals.Set(h.ids[name], v.Health, v.Max)
	}

	h.engine = engine.New(st, catalog,
		engine.WithClock(engine.NewClockAt(startTick)),
		engine.WithWorld(h.world),
		engine.WithVitals(h.vitals),
		engine.WithAchievements(h.recorder),
		engine.WithNotices(h.recorder),
		engine.WithSender(wire.SenderFunc(h.deliver)),
		engine.WithResultHook(func(r engine.Result) { h.last = r }),
	)
	h.observer = wire.NewHandler(wire.SideObserver, h.mirror,
		repertoire.Env{Clock: h.engine.Clock()}, nil)

	return h
}

// deliver applies a replicated payload to the observer, the way a reliable
// ordered transport would, and records it for the trace.
func (h *Harness) deliver(participant uuid.UUID, payload []byte) error {
	ev := TraceEvent{
		Tick:        h.engine.Clock().Current(),
		Action:      ActionSync,
		Participant: h.names[participant],
	}
	if msg, err := wire.Decode(payload); err == nil {
		ev.Song = msg.Song
	}

	outcome, err := h.observer.Handle(participant, payload)
	if err != nil {
		ev.Result = "error"
	} else {
		ev.Result = outcome.String()
	}
	h.pending = append(h.pending, ev)
	return err
}

func (h *Harness) runStep(ctx context.Context, index int, step Step) error {
	switch step.Action {
	case ActionUnload, ActionLoad, ActionReload:
		h.worldStep(step)
		return nil
	}

	ev, err := h.event(step)
	if err != nil {
		return err
	}

	// A participant joining from nothing attaches a fresh observer.
	if step.Action == ActionJoin {
		id := h.ids[step.Participant]
		if _, live := h.engine.Registry().Get(id); !live {
			h.mirror.Remove(id)
		}
	}

	h.last = engine.Result{}
	h.pending = h.pending[:0]
	if !h.engine.Enqueue(ev) {
		return fmt.Errorf("engine stopped")
	}
	if err := h.engine.Drain(ctx); err != nil {
		return err
	}

	h.result.AddTrace(h.describe(step, h.last))
	for _, p := range h.pending {
		h.result.AddTrace(p)
	}

	if step.Expect != nil {
		for _, msg := range h.checkExpect(step, h.last) {
			h.result.AddError(fmt.Sprintf("steps[%d] (%s): %s", index, step.Action, msg))
		}
	} else if h.last.Err != nil {
		h.result.AddError(fmt.Sprintf("steps[%d] (%s): unexpected error: %v", index, step.Action, h.last.Err))
	}
	return nil
}

func (h *Harness) event(step Step) (engine.Event, error) {
	id := h.ids[step.Participant]
	switch step.Action {
	case ActionJoin:
		return engine.JoinEvent(id), nil
	case ActionLeave:
		return engine.LeaveEvent(id), nil
	case ActionLearn:
		payload, err := wire.LearnSong{Song: step.Song, Notes: step.Notes}.MarshalBinary()
		if err != nil {
			return engine.Event{}, fmt.Errorf("encode learn payload: %w", err)
		}
		return engine.LearnEvent(id, payload), nil
	case ActionTeach:
		return engine.TeachEvent(id, step.Song, step.Notes), nil
	case ActionPlay:
		return engine.PlayEvent(id, step.Notes), nil
	case ActionRide:
		return engine.RideEvent(id, h.horses[step.Mount].ID), nil
	case ActionSummon:
		return engine.SummonEvent(id), nil
	case ActionHeal:
		return engine.HealEvent(id), nil
	case ActionAdvance:
		return engine.AdvanceEvent(step.Ticks), nil
	case ActionCheckpoint:
		return engine.CheckpointEvent(), nil
	default:
		return engine.Event{}, fmt.Errorf("unknown action %q", step.Action)
	}
}

// worldStep changes the fake world without involving the engine.
func (h *Harness) worldStep(step Step) {
	ev := TraceEvent{
		Tick:   h.engine.Clock().Current(),
		Action: step.Action,
		Mount:  step.Mount,
		Result: "ok",
	}
	switch step.Action {
	case ActionUnload:
		if _, ok := h.world.Unload(h.horses[step.Mount].ID); !ok {
			ev.Result = "absent"
		}
	case ActionLoad:
		horse := h.horses[step.Mount]
		if h.world.EntityByID(horse.ID) != nil {
			ev.Result = "present"
		} else {
			h.world.Load(horse)
		}
	case ActionReload:
		h.world.Reload()
	}
	h.result.AddTrace(ev)
}

func (h *Harness) describe(step Step, r engine.Result) TraceEvent {
	ev := TraceEvent{
		Tick:        r.Time,
		Action:      step.Action,
		Participant: step.Participant,
	}

	if r.Err != nil {
		ev.Result = "error"
		if code := engine.CodeOf(r.Err); code != "" {
			ev.Result += ":" + string(code)
		}
		ev.Song = step.Song
		return ev
	}

	switch step.Action {
	case ActionJoin:
		ev.Result = pick(r.OK, "restored", "new")
	case ActionLeave:
		ev.Result = pick(r.Saved > 0, "saved", "unchanged")
	case ActionLearn, ActionTeach:
		ev.Song = step.Song
		ev.Result = r.Outcome.String()
	case ActionPlay:
		ev.Song = r.Song
		ev.Result = pick(r.OK, "matched", "no_match")
	case ActionRide:
		ev.Mount = step.Mount
		ev.Result = pick(r.OK, "bound", "ignored")
	case ActionSummon:
		ev.Mount = h.mountName(r.EntityID)
		ev.Result = pick(r.OK, "found", "missing")
	case ActionHeal:
		ev.Result = pick(r.OK, "healed", "denied")
	case ActionAdvance:
		ev.Result = "ok"
	case ActionCheckpoint:
		ev.Result = fmt.Sprintf("saved:%d", r.Saved)
	}
	return ev
}

func (h *Harness) checkExpect(step Step, r engine.Result) []string {
	var errs []string
	want := step.Expect

	code := string(engine.CodeOf(r.Err))
	switch {
	case want.Error != "" && code != want.Error:
		errs = append(errs, fmt.Sprintf("expected error %s, got %v", want.Error, r.Err))
	case want.Error == "" && r.Err != nil:
		errs = append(errs, fmt.Sprintf("unexpected error: %v", r.Err))
	}

	if want.Outcome != "" && r.Outcome.String() != want.Outcome {
		errs = append(errs, fmt.Sprintf("expected outcome %s, got %s", want.Outcome, r.Outcome))
	}
	if want.Song != "" && r.Song != want.Song {
		errs = append(errs, fmt.Sprintf("expected song %q, got %q", want.Song, r.Song))
	}
	if want.OK != nil && r.OK != *want.OK {
		errs = append(errs, fmt.Sprintf("expected ok=%t, got %t", *want.OK, r.OK))
	}
	if want.Saved != nil && r.Saved != *want.Saved {
		errs = append(errs, fmt.Sprintf("expected saved=%d, got %d", *want.Saved, r.Saved))
	}
	if want.Mount != "" {
		if got := h.mountName(r.EntityID); got != want.Mount {
			errs = append(errs, fmt.Sprintf("expected mount %q, got %q", want.Mount, got))
		}
	}
	return errs
}

func (h *Harness) mountName(id int32) string {
	for name, horse := range h.horses {
		if horse.ID == id {
			return name
		}
	}
	return ""
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
