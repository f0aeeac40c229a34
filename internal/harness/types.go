package harness

import (
	"bytes"

	"github.com/soultek101/ocarina/internal/canon"
)

// TraceEvent is one line of a scenario trace: a processed step, a world
// change, or a sync message applied by the observer.
type TraceEvent struct {
	Tick        int64  `json:"tick"`
	Action      string `json:"action"`
	Participant string `json:"participant,omitempty"`
	Song        string `json:"song,omitempty"`
	Mount       string `json:"mount,omitempty"`
	Result      string `json:"result"`
}

// ActionSync marks trace events produced by the observer applying a
// replicated payload.
const ActionSync = "sync"

func (e TraceEvent) value() canon.Object {
	obj := canon.NewObject(
		canon.O("tick", canon.Int(e.Tick)),
		canon.O("action", canon.String(e.Action)),
		canon.O("result", canon.String(e.Result)),
	)
	if e.Participant != "" {
		obj["participant"] = canon.String(e.Participant)
	}
	if e.Song != "" {
		obj["song"] = canon.String(e.Song)
	}
	if e.Mount != "" {
		obj["mount"] = canon.String(e.Mount)
	}
	return obj
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every processed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}

// MarshalTrace renders the trace as canonical JSON, one event per line.
func (r *Result) MarshalTrace() ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range r.Trace {
		line, err := canon.Marshal(e.value())
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
