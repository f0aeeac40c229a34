package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParticipantID_Stable(t *testing.T) {
	assert.Equal(t, ParticipantID("link"), ParticipantID("link"))
	assert.NotEqual(t, ParticipantID("link"), ParticipantID("zelda"))
	assert.NotEqual(t, uuid.Nil, ParticipantID(""))
	assert.Equal(t, uuid.Version(5), ParticipantID("link").Version())
}

func TestEntityUUID_DistinctFromParticipant(t *testing.T) {
	assert.NotEqual(t, ParticipantID("epona"), EntityUUID("epona"))
	assert.Equal(t, EntityUUID("epona"), EntityUUID("epona"))
}
