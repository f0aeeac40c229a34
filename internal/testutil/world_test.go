package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soultek101/ocarina/internal/companion"
	"github.com/soultek101/ocarina/internal/repertoire"
)

func TestWorld_Lookup(t *testing.T) {
	w := NewWorld()
	owner := ParticipantID("link")

	epona := w.SpawnHorse("epona", owner)
	rock := w.SpawnProp("rock")

	assert.Equal(t, int32(1), epona.ID)
	assert.Equal(t, int32(2), rock.ID)
	assert.Same(t, epona, w.EntityByID(1))
	assert.Same(t, epona, w.EntityByUUID(EntityUUID("epona")))
	assert.Nil(t, w.EntityByID(99))

	_, isMount := w.EntityByID(rock.ID).(companion.Mount)
	assert.False(t, isMount)
}

func TestWorld_Reload(t *testing.T) {
	w := NewWorld()
	owner := ParticipantID("link")
	epona := w.SpawnHorse("epona", owner)
	rock := w.SpawnProp("rock")

	w.Reload()

	assert.Equal(t, int32(3), epona.ID)
	assert.Nil(t, w.EntityByID(1))
	assert.Same(t, epona, w.EntityByID(3))
	assert.Same(t, rock, w.EntityByID(2), "props keep their id")
}

func TestWorld_UnloadLoad(t *testing.T) {
	w := NewWorld()
	epona := w.SpawnHorse("epona", ParticipantID("link"))

	e, ok := w.Unload(epona.ID)
	require.True(t, ok)
	assert.Nil(t, w.EntityByUUID(epona.UUID))

	w.Load(e.(*Horse))
	assert.Equal(t, int32(2), epona.ID)
	assert.Same(t, epona, w.EntityByUUID(epona.UUID))
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	link, zelda := ParticipantID("link"), ParticipantID("zelda")

	r.Award(link, repertoire.AchievementSong)
	r.Award(link, repertoire.AchievementSong)
	r.Notify(zelda, repertoire.NoticeScarecrowLater)

	assert.Equal(t, 2, r.AwardCount(link, repertoire.AchievementSong))
	assert.Equal(t, 0, r.AwardCount(zelda, repertoire.AchievementSong))
	assert.Equal(t, []repertoire.Notice{repertoire.NoticeScarecrowLater}, r.Notices(zelda))
	assert.Empty(t, r.Notices(link))
	assert.Equal(t, 1, r.NoticeCount(zelda, repertoire.NoticeScarecrowLater))
}

func TestVitalsTable(t *testing.T) {
	v := NewVitalsTable()
	link := ParticipantID("link")

	_, ok := v.Vitals(link)
	assert.False(t, ok)

	v.Set(link, 4, 20)
	got, ok := v.Vitals(link)
	require.True(t, ok)
	assert.Equal(t, float32(4), got.Health())
	assert.Equal(t, float32(20), got.MaxHealth())
}
