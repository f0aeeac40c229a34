// Package harness runs YAML scenarios against the song engine.
//
// Each run wires a real owner engine to an observer mirror over the wire
// codec, backed by an in-memory profile store and a fake world holding the
// scenario's horses. Steps run one at a time through the engine queue, and
// the resulting trace can be compared against golden files.
//
// # Scenario Format
//
//	name: scarecrow_protocol
//	description: "Scarecrow pattern is proposed, then confirmed"
//	participants: [link]
//	mounts:
//	  - name: epona
//	    owner: link
//	vitals:
//	  link: { health: 10, max: 20 }
//	steps:
//	  - action: join
//	    participant: link
//	  - action: learn
//	    participant: link
//	    song: scarecrow_song
//	    notes: [C4, D4, E4, F4, G4, A4, B4, C5]
//	    expect:
//	      outcome: proposed
//	assertions:
//	  - type: phase
//	    participant: link
//	    phase: proposed
//
// # Assertion Types
//
//   - known, unknown: songs in the participant's final repertoire
//   - mirror_known: songs in the observer's mirror
//   - achievement_count, notice_count: recorded awards and notices
//   - phase, mirror_phase: scarecrow phase (unset, proposed, confirmed) of
//     the participant or of the observer mirror
//   - mount: the participant's remembered horse, empty for none
//
// Participants that have left are inspected through their saved profile.
//
// # Deterministic Testing
//
// Participant and entity UUIDs are name-derived, the clock only moves on
// advance steps, and every run gets its own in-memory SQLite database, so
// traces are identical across runs.
package harness
