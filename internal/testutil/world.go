package testutil

import (
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/companion"
)

// Horse is a rideable world entity.
type Horse struct {
	ID      int32
	UUID    uuid.UUID
	OwnerID uuid.UUID
	IsTame  bool
	Dead    bool
}

func (h *Horse) EntityID() int32         { return h.ID }
func (h *Horse) PersistentID() uuid.UUID { return h.UUID }
func (h *Horse) Alive() bool             { return !h.Dead }
func (h *Horse) Tame() bool              { return h.IsTame }
func (h *Horse) Owner() uuid.UUID        { return h.OwnerID }

// Prop is a world entity that cannot be ridden.
type Prop struct {
	ID   int32
	UUID uuid.UUID
}

func (p *Prop) EntityID() int32         { return p.ID }
func (p *Prop) PersistentID() uuid.UUID { return p.UUID }
func (p *Prop) Alive() bool             { return true }

// World is an in-memory companion.Lookup.
//
// Entity ids are per-load: Reload hands every entity a fresh id, the way a
// chunk reload does, while durable UUIDs stay put.
type World struct {
	mu       sync.Mutex
	entities map[int32]companion.Entity
	nextID   int32
}

// NewWorld returns an empty world whose first assigned id is 1.
func NewWorld() *World {
	return &World{
		entities: make(map[int32]companion.Entity),
		nextID:   1,
	}
}

// SpawnHorse adds a tame horse owned by owner and returns it.
func (w *World) SpawnHorse(name string, owner uuid.UUID) *Horse {
	w.mu.Lock()
	defer w.mu.Unlock()
	h := &Horse{ID: w.nextID, UUID: EntityUUID(name), OwnerID: owner, IsTame: true}
	w.entities[h.ID] = h
	w.nextID++
	return h
}

// SpawnProp adds an entity that is not a mount and returns it.
func (w *World) SpawnProp(name string) *Prop {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := &Prop{ID: w.nextID, UUID: EntityUUID(name)}
	w.entities[p.ID] = p
	w.nextID++
	return p
}

// Unload removes an entity from the world. It can come back with Load.
func (w *World) Unload(id int32) (companion.Entity, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entities[id]
	delete(w.entities, id)
	return e, ok
}

// Load puts an unloaded horse back under a fresh id.
func (w *World) Load(h *Horse) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h.ID = w.nextID
	w.nextID++
	w.entities[h.ID] = h
}

// Reload reassigns every horse a fresh id, in old id order.
func (w *World) Reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	ids := slices.Sorted(maps.Keys(w.entities))
	for _, id := range ids {
		h, ok := w.entities[id].(*Horse)
		if !ok {
			continue
		}
		delete(w.entities, id)
		h.ID = w.nextID
		w.nextID++
		w.entities[h.ID] = h
	}
}

// EntityByID implements companion.Lookup.
func (w *World) EntityByID(id int32) companion.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	if e, ok := w.entities[id]; ok {
		return e
	}
	return nil
}

// EntityByUUID implements companion.Lookup.
func (w *World) EntityByUUID(id uuid.UUID) companion.Entity {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range w.entities {
		if e.PersistentID() == id {
			return e
		}
	}
	return nil
}
