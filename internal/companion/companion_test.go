package companion

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type horse struct {
	id    int32
	uid   uuid.UUID
	alive bool
	tame  bool
	owner uuid.UUID
}

func (h *horse) EntityID() int32         { return h.id }
func (h *horse) PersistentID() uuid.UUID { return h.uid }
func (h *horse) Alive() bool             { return h.alive }
func (h *horse) Tame() bool              { return h.tame }
func (h *horse) Owner() uuid.UUID        { return h.owner }

type rock struct {
	id  int32
	uid uuid.UUID
}

func (r *rock) EntityID() int32         { return r.id }
func (r *rock) PersistentID() uuid.UUID { return r.uid }
func (r *rock) Alive() bool             { return true }

type world struct {
	byID   map[int32]Entity
	byUUID map[uuid.UUID]Entity
}

func newWorld(entities ...Entity) *world {
	w := &world{byID: map[int32]Entity{}, byUUID: map[uuid.UUID]Entity{}}
	for _, e := range entities {
		w.byID[e.EntityID()] = e
		w.byUUID[e.PersistentID()] = e
	}
	return w
}

func (w *world) EntityByID(id int32) Entity {
	if e, ok := w.byID[id]; ok {
		return e
	}
	return nil
}

func (w *world) EntityByUUID(id uuid.UUID) Entity {
	if e, ok := w.byUUID[id]; ok {
		return e
	}
	return nil
}

var (
	rider = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	other = uuid.MustParse("00000000-0000-0000-0000-0000000000bb")
)

func TestBind(t *testing.T) {
	h := &horse{id: 7, uid: uuid.New(), alive: true, tame: true, owner: rider}

	ref := NewRef()
	require.True(t, Bind(&ref, h, rider))
	assert.Equal(t, int32(7), ref.ID)
	assert.Equal(t, h.uid, ref.UUID)

	// Same transient id is not a rebind.
	assert.False(t, Bind(&ref, h, rider))
}

func TestBind_Rejects(t *testing.T) {
	tests := []struct {
		name string
		h    *horse
	}{
		{"untamed", &horse{id: 1, uid: uuid.New(), alive: true, tame: false, owner: rider}},
		{"foreign owner", &horse{id: 1, uid: uuid.New(), alive: true, tame: true, owner: other}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := NewRef()
			assert.False(t, Bind(&ref, tt.h, rider))
			assert.Equal(t, NewRef(), ref)
		})
	}

	ref := NewRef()
	assert.False(t, Bind(&ref, nil, rider))
}

func TestResolve_ByID(t *testing.T) {
	h := &horse{id: 3, uid: uuid.New(), alive: true, tame: true, owner: rider}
	ref := Ref{ID: 3, UUID: h.uid}

	m, ok := Resolve(&ref, newWorld(h))
	require.True(t, ok)
	assert.Same(t, h, m)
}

func TestResolve_FallsBackToUUIDAndRefreshesID(t *testing.T) {
	h := &horse{id: 42, uid: uuid.New(), alive: true, tame: true, owner: rider}
	ref := Ref{ID: 3, UUID: h.uid}

	m, ok := Resolve(&ref, newWorld(h))
	require.True(t, ok)
	assert.Same(t, h, m)
	assert.Equal(t, int32(42), ref.ID)
}

func TestResolve_IgnoresReusedID(t *testing.T) {
	mine := &horse{id: 9, uid: uuid.New(), alive: true, tame: true, owner: rider}
	impostor := &horse{id: 3, uid: uuid.New(), alive: true, tame: true, owner: rider}
	ref := Ref{ID: 3, UUID: mine.uid}

	m, ok := Resolve(&ref, newWorld(mine, impostor))
	require.True(t, ok)
	assert.Same(t, mine, m)
	assert.Equal(t, int32(9), ref.ID)
}

func TestResolve_NotAMount(t *testing.T) {
	r := &rock{id: 3, uid: uuid.New()}
	ref := Ref{ID: 3, UUID: r.uid}

	_, ok := Resolve(&ref, newWorld(r))
	assert.False(t, ok)
}

func TestResolve_MissingKeepsRef(t *testing.T) {
	uid := uuid.New()
	ref := Ref{ID: 3, UUID: uid}

	_, ok := Resolve(&ref, newWorld())
	assert.False(t, ok)
	assert.Equal(t, Ref{ID: 3, UUID: uid}, ref)
}

func TestResolve_DeadMount(t *testing.T) {
	h := &horse{id: 3, uid: uuid.New(), alive: false, tame: true, owner: rider}
	ref := Ref{ID: 3, UUID: h.uid}

	_, ok := Resolve(&ref, newWorld(h))
	assert.False(t, ok)
	assert.Equal(t, int32(3), ref.ID)
}

func TestResolve_Unbound(t *testing.T) {
	ref := NewRef()
	_, ok := Resolve(&ref, newWorld())
	assert.False(t, ok)
	assert.False(t, ref.Bound())
}

func TestSplitJoinUUID(t *testing.T) {
	id := uuid.MustParse("80000000-0000-0001-ffff-ffffffffffff")
	most, least := SplitUUID(id)
	assert.Equal(t, int64(-9223372036854775807), most)
	assert.Equal(t, int64(-1), least)
	assert.Equal(t, id, JoinUUID(most, least))

	assert.Equal(t, uuid.Nil, JoinUUID(0, 0))
}
