package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/repertoire"
	"github.com/soultek101/ocarina/internal/song"
	"github.com/soultek101/ocarina/internal/store"
	"github.com/soultek101/ocarina/internal/testutil"
)

// AssertionContext provides what assertions need to inspect final state.
type AssertionContext struct {
	Ctx      context.Context
	Store    *store.Store
	Catalog  *song.Catalog
	Registry *repertoire.Registry
	Mirror   *repertoire.Registry
	Recorder *testutil.Recorder
	IDs      map[string]uuid.UUID
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] t=%d %s %s %s -> %s\n",
				i+1, event.Tick, event.Action, event.Participant, event.Song+event.Mount, event.Result)
		}
	}

	return buf.String()
}

// stateOf returns the participant's live state, or the state restored from
// their stored profile after they left, or an empty state.
func (actx *AssertionContext) stateOf(participant string) (*repertoire.State, error) {
	id := actx.IDs[participant]
	if st, ok := actx.Registry.Get(id); ok {
		return st, nil
	}
	rec, found, err := actx.Store.LoadProfile(actx.Ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return repertoire.New(id, actx.Catalog), nil
	}
	st, _ := repertoire.Restore(id, actx.Catalog, rec)
	return st, nil
}

// assertKnown checks that st knows every song (or, when want is false,
// none of them).
func assertKnown(kind string, st *repertoire.State, assertion Assertion, want bool, trace []TraceEvent) error {
	var wrong []string
	for _, name := range assertion.Songs {
		if st.Knows(name) != want {
			wrong = append(wrong, name)
		}
	}
	if len(wrong) == 0 {
		return nil
	}

	verb := "known"
	if !want {
		verb = "not known"
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%s: %s %s", assertion.Participant, strings.Join(assertion.Songs, ", "), verb),
		Actual:   fmt.Sprintf("mismatch for %s (known: %s)", strings.Join(wrong, ", "), knownNames(st)),
		Trace:    trace,
	}
}

func knownNames(st *repertoire.State) string {
	known := st.Known()
	if len(known) == 0 {
		return "none"
	}
	names := make([]string, len(known))
	for i, sg := range known {
		names[i] = sg.Name
	}
	return strings.Join(names, ", ")
}

func assertCount(kind, what string, got, want int, trace []TraceEvent) error {
	if got == want {
		return nil
	}
	return &AssertionError{
		Type:     kind,
		Expected: fmt.Sprintf("%d x %s", want, what),
		Actual:   fmt.Sprintf("%d", got),
		Trace:    trace,
	}
}

func assertPhase(st *repertoire.State, assertion Assertion) error {
	if got := st.Phase().String(); got != assertion.Phase {
		return &AssertionError{
			Type:     assertion.Type,
			Expected: fmt.Sprintf("%s in phase %s", assertion.Participant, assertion.Phase),
			Actual:   got,
		}
	}
	return nil
}

func assertMount(st *repertoire.State, assertion Assertion) error {
	ref := st.Mount()
	want := uuid.Nil
	if assertion.Mount != "" {
		want = testutil.EntityUUID(assertion.Mount)
	}
	if ref.UUID != want {
		expected := "no mount"
		if assertion.Mount != "" {
			expected = "mount " + assertion.Mount
		}
		return &AssertionError{
			Type:     AssertMount,
			Expected: expected,
			Actual:   fmt.Sprintf("mount uuid %s", ref.UUID),
		}
	}
	return nil
}

// EvaluateAssertions runs all assertions against the final state.
// Returns a slice of error messages (empty if all pass).
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		if err := evaluate(result, assertion, actx); err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d (%s): %v", i, assertion.Type, err))
		}
	}

	return errors
}

func evaluate(result *Result, assertion Assertion, actx *AssertionContext) error {
	id := actx.IDs[assertion.Participant]

	switch assertion.Type {
	case AssertMirrorKnown:
		st := actx.Mirror.Ensure(id)
		return assertKnown(assertion.Type, st, assertion, true, result.Trace)

	case AssertMirrorPhase:
		return assertPhase(actx.Mirror.Ensure(id), assertion)

	case AssertAchievementCount:
		got := actx.Recorder.AwardCount(id, repertoire.Achievement(assertion.Achievement))
		return assertCount(assertion.Type, assertion.Achievement, got, assertion.Count, result.Trace)

	case AssertNoticeCount:
		got := actx.Recorder.NoticeCount(id, repertoire.Notice(assertion.Notice))
		return assertCount(assertion.Type, assertion.Notice, got, assertion.Count, result.Trace)
	}

	st, err := actx.stateOf(assertion.Participant)
	if err != nil {
		return err
	}

	switch assertion.Type {
	case AssertKnown:
		return assertKnown(assertion.Type, st, assertion, true, result.Trace)
	case AssertUnknown:
		return assertKnown(assertion.Type, st, assertion, false, result.Trace)
	case AssertPhase:
		return assertPhase(st, assertion)
	case AssertMount:
		return assertMount(st, assertion)
	default:
		return fmt.Errorf("unknown assertion type: %s", assertion.Type)
	}
}
