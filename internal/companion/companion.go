// Package companion tracks a participant's last mount ridden.
//
// Live entities come and go as the world loads and unloads regions, so the
// binding is never a pointer. A Ref holds the entity's transient id as a
// cache plus its persistent UUID. Resolution tries the cache first and falls
// back to the UUID, refreshing the cache on success. A failed resolution
// leaves the Ref untouched: the mount may simply be out of the active area.
package companion

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// NoID marks an unset transient id.
const NoID int32 = -1

// Entity is a live object in the simulation.
type Entity interface {
	// EntityID is the transient id, valid only while the entity is loaded.
	EntityID() int32
	// PersistentID is the durable identity, stable across unload and restart.
	PersistentID() uuid.UUID
	Alive() bool
}

// Mount is an Entity that can be ridden and owned.
type Mount interface {
	Entity
	Tame() bool
	Owner() uuid.UUID
}

// Lookup finds currently loaded entities. Both methods return nil when
// nothing is loaded under the key.
type Lookup interface {
	EntityByID(id int32) Entity
	EntityByUUID(id uuid.UUID) Entity
}

// Ref is a (cached transient id, durable identity) pair.
type Ref struct {
	ID   int32
	UUID uuid.UUID
}

// NewRef returns an unbound reference.
func NewRef() Ref {
	return Ref{ID: NoID}
}

// Bound reports whether a mount has ever been bound.
func (r Ref) Bound() bool {
	return r.UUID != uuid.Nil
}

// Resolve returns the live mount r refers to.
//
// The cached id is tried first. If it is unset or now names something that
// is not our live mount, the durable UUID is looked up and, when found, the
// cached id is refreshed to the entity's current id. When neither lookup
// succeeds Resolve returns false and r is left as it was.
func Resolve(r *Ref, world Lookup) (Mount, bool) {
	if r.ID != NoID {
		if m, ok := validMount(world.EntityByID(r.ID), r.UUID); ok {
			return m, true
		}
	}

	if !r.Bound() {
		return nil, false
	}

	m, ok := validMount(world.EntityByUUID(r.UUID), r.UUID)
	if !ok {
		return nil, false
	}
	r.ID = m.EntityID()
	return m, true
}

// Bind records candidate as the rider's mount.
//
// The ref only changes when the candidate has a different transient id than
// the cached one, is tame, and belongs to rider. Bind never clears a ref.
func Bind(r *Ref, candidate Mount, rider uuid.UUID) bool {
	if candidate == nil {
		return false
	}
	if candidate.EntityID() == r.ID {
		return false
	}
	if !candidate.Tame() || candidate.Owner() != rider {
		return false
	}
	r.ID = candidate.EntityID()
	r.UUID = candidate.PersistentID()
	return true
}

// validMount checks that e is a live Mount and, when want is set, that it is
// the mount we are looking for rather than an unrelated entity that reused
// the transient id.
func validMount(e Entity, want uuid.UUID) (Mount, bool) {
	if e == nil {
		return nil, false
	}
	m, ok := e.(Mount)
	if !ok || !m.Alive() {
		return nil, false
	}
	if want != uuid.Nil && m.PersistentID() != want {
		return nil, false
	}
	return m, true
}

// SplitUUID returns the most and least significant 64 bits of id, the form
// used by persisted profiles.
func SplitUUID(id uuid.UUID) (most, least int64) {
	most = int64(binary.BigEndian.Uint64(id[:8]))
	least = int64(binary.BigEndian.Uint64(id[8:]))
	return most, least
}

// JoinUUID is the inverse of SplitUUID.
func JoinUUID(most, least int64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], uint64(most))
	binary.BigEndian.PutUint64(id[8:], uint64(least))
	return id
}
