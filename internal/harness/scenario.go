package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/soultek101/ocarina/internal/repertoire"
	"github.com/soultek101/ocarina/internal/song"
)

// Scenario defines a conformance test scenario.
// Scenarios drive one authoritative engine and one observer through a
// sequence of steps and assert on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Participants lists the participant names used by the scenario.
	// Each name maps to a stable UUID.
	Participants []string `yaml:"participants"`

	// Mounts are spawned into the world before the first step, in order.
	Mounts []MountSpec `yaml:"mounts,omitempty"`

	// Vitals sets avatar health per participant name.
	Vitals map[string]VitalsSpec `yaml:"vitals,omitempty"`

	// Steps run in order against the engine.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// MountSpec describes a horse in the world.
type MountSpec struct {
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
	// Tame defaults to true.
	Tame *bool `yaml:"tame,omitempty"`
}

// VitalsSpec is a participant's avatar health.
type VitalsSpec struct {
	Health float32 `yaml:"health"`
	Max    float32 `yaml:"max"`
}

// Step is one scenario action.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	Participant string      `yaml:"participant,omitempty"`
	Song        string      `yaml:"song,omitempty"`
	Notes       []song.Note `yaml:"notes,omitempty"`
	Mount       string      `yaml:"mount,omitempty"`
	Ticks       int64       `yaml:"ticks,omitempty"`

	// Expect validates the step's result. If nil, nothing is checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected result of a step. Unset fields are not
// checked.
type Expect struct {
	// Outcome is the learn outcome name (learn, teach).
	Outcome string `yaml:"outcome,omitempty"`
	// Song is the matched song (play).
	Song string `yaml:"song,omitempty"`
	// OK is the step's boolean result (join restored, ride bound, summon
	// found, heal granted, play matched).
	OK *bool `yaml:"ok,omitempty"`
	// Saved is the number of profiles written (leave, checkpoint).
	Saved *int `yaml:"saved,omitempty"`
	// Mount is the mount name found by summon.
	Mount string `yaml:"mount,omitempty"`
	// Error is the expected runtime error code, e.g. UNKNOWN_PARTICIPANT.
	Error string `yaml:"error,omitempty"`
}

// Step actions.
const (
	ActionJoin       = "join"
	ActionLeave      = "leave"
	ActionLearn      = "learn"
	ActionTeach      = "teach"
	ActionPlay       = "play"
	ActionAdvance    = "advance"
	ActionRide       = "ride"
	ActionSummon     = "summon"
	ActionHeal       = "heal"
	ActionCheckpoint = "checkpoint"
	ActionUnload     = "unload"
	ActionLoad       = "load"
	ActionReload     = "reload"
)

var participantActions = []string{
	ActionJoin, ActionLeave, ActionLearn, ActionTeach, ActionPlay,
	ActionRide, ActionSummon, ActionHeal,
}

var worldActions = []string{ActionUnload, ActionLoad, ActionReload}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "known": participant knows every listed song
	// - "unknown": participant knows none of the listed songs
	// - "mirror_known": the observer's mirror knows every listed song
	// - "achievement_count": participant was awarded Achievement Count times
	// - "notice_count": participant was sent Notice Count times
	// - "phase": participant's scarecrow phase equals Phase
	// - "mirror_phase": the observer's scarecrow phase equals Phase
	// - "mount": participant's last mount is Mount
	Type string `yaml:"type"`

	Participant string   `yaml:"participant"`
	Songs       []string `yaml:"songs,omitempty"`
	Achievement string   `yaml:"achievement,omitempty"`
	Notice      string   `yaml:"notice,omitempty"`
	Count       int      `yaml:"count,omitempty"`
	Phase       string   `yaml:"phase,omitempty"`
	Mount       string   `yaml:"mount,omitempty"`
}

// Assertion type constants.
const (
	AssertKnown            = "known"
	AssertUnknown          = "unknown"
	AssertMirrorKnown      = "mirror_known"
	AssertAchievementCount = "achievement_count"
	AssertNoticeCount      = "notice_count"
	AssertPhase            = "phase"
	AssertMirrorPhase      = "mirror_phase"
	AssertMount            = "mount"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and cross-references.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps must have at least one step")
	}

	seen := make(map[string]bool, len(s.Participants))
	for i, p := range s.Participants {
		if p == "" {
			return fmt.Errorf("participants[%d]: name is required", i)
		}
		if seen[p] {
			return fmt.Errorf("participants[%d]: duplicate participant %q", i, p)
		}
		seen[p] = true
	}

	mounts := make(map[string]bool, len(s.Mounts))
	for i, m := range s.Mounts {
		if m.Name == "" {
			return fmt.Errorf("mounts[%d]: name is required", i)
		}
		if mounts[m.Name] {
			return fmt.Errorf("mounts[%d]: duplicate mount %q", i, m.Name)
		}
		if !seen[m.Owner] {
			return fmt.Errorf("mounts[%d]: unknown owner %q", i, m.Owner)
		}
		mounts[m.Name] = true
	}

	for name := range s.Vitals {
		if !seen[name] {
			return fmt.Errorf("vitals: unknown participant %q", name)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step, seen, mounts); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, seen, mounts); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step Step, participants, mounts map[string]bool) error {
	switch {
	case slices.Contains(participantActions, step.Action):
		if !participants[step.Participant] {
			return fmt.Errorf("steps[%d]: unknown participant %q", index, step.Participant)
		}
	case step.Action == ActionAdvance:
		if step.Ticks < 0 {
			return fmt.Errorf("steps[%d]: ticks must be non-negative", index)
		}
	case step.Action == ActionCheckpoint:
	case slices.Contains(worldActions, step.Action):
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, step.Action)
	}

	switch step.Action {
	case ActionLearn, ActionTeach:
		if step.Song == "" {
			return fmt.Errorf("steps[%d]: song is required for %s", index, step.Action)
		}
	case ActionRide, ActionUnload, ActionLoad:
		if !mounts[step.Mount] {
			return fmt.Errorf("steps[%d]: unknown mount %q", index, step.Mount)
		}
	}

	if step.Expect != nil && step.Expect.Outcome != "" {
		if _, ok := repertoire.ParseOutcome(step.Expect.Outcome); !ok {
			return fmt.Errorf("steps[%d]: unknown outcome %q", index, step.Expect.Outcome)
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion, participants, mounts map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if !participants[a.Participant] {
		return fmt.Errorf("assertions[%d]: unknown participant %q", index, a.Participant)
	}

	switch a.Type {
	case AssertKnown, AssertUnknown, AssertMirrorKnown:
		if len(a.Songs) == 0 {
			return fmt.Errorf("assertions[%d]: songs are required for %s", index, a.Type)
		}
	case AssertAchievementCount:
		if a.Achievement == "" {
			return fmt.Errorf("assertions[%d]: achievement is required for achievement_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertNoticeCount:
		if a.Notice == "" {
			return fmt.Errorf("assertions[%d]: notice is required for notice_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertPhase, AssertMirrorPhase:
		if _, ok := parsePhase(a.Phase); !ok {
			return fmt.Errorf("assertions[%d]: unknown phase %q", index, a.Phase)
		}
	case AssertMount:
		if a.Mount != "" && !mounts[a.Mount] {
			return fmt.Errorf("assertions[%d]: unknown mount %q", index, a.Mount)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func parsePhase(s string) (repertoire.Phase, bool) {
	for _, p := range []repertoire.Phase{repertoire.PhaseUnset, repertoire.PhaseProposed, repertoire.PhaseConfirmed} {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}
