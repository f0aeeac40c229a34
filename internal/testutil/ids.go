package testutil

import "github.com/google/uuid"

// participantNamespace roots the name-based ids handed out by ParticipantID.
var participantNamespace = uuid.MustParse("6f636172-696e-4100-8000-746573747573")

// ParticipantID returns a stable UUID for a readable participant name.
//
// Scenario files and tests refer to participants by name ("link", "zelda");
// the same name always maps to the same id, so golden traces and stored
// profiles stay byte-identical across runs.
func ParticipantID(name string) uuid.UUID {
	return uuid.NewSHA1(participantNamespace, []byte(name))
}

// EntityUUID returns a stable UUID for a named world entity.
func EntityUUID(name string) uuid.UUID {
	return uuid.NewSHA1(participantNamespace, []byte("entity:"+name))
}
