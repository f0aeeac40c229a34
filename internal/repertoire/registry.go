package repertoire

import (
	"bytes"
	"slices"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/song"
)

// Registry maps participants to their state. It replaces any lookup keyed
// off an ambient profile object: callers hold the registry and pass it
// where state is needed.
//
// Registry is not safe for concurrent use.
type Registry struct {
	catalog *song.Catalog
	states  map[uuid.UUID]*State
}

// NewRegistry returns an empty registry whose new states use catalog.
func NewRegistry(catalog *song.Catalog) *Registry {
	return &Registry{
		catalog: catalog,
		states:  make(map[uuid.UUID]*State),
	}
}

func (r *Registry) Catalog() *song.Catalog { return r.catalog }

// Get returns the state for participant, if present.
func (r *Registry) Get(participant uuid.UUID) (*State, bool) {
	s, ok := r.states[participant]
	return s, ok
}

// Ensure returns the state for participant, creating an empty one the first
// time the participant is seen.
func (r *Registry) Ensure(participant uuid.UUID) *State {
	if s, ok := r.states[participant]; ok {
		return s
	}
	s := New(participant, r.catalog)
	r.states[participant] = s
	return s
}

// Put stores s, replacing any state for the same participant.
func (r *Registry) Put(s *State) {
	r.states[s.participant] = s
}

// Remove drops the participant's state and reports whether it was present.
func (r *Registry) Remove(participant uuid.UUID) bool {
	if _, ok := r.states[participant]; !ok {
		return false
	}
	delete(r.states, participant)
	return true
}

func (r *Registry) Len() int { return len(r.states) }

// Participants returns the registered participants in byte order.
func (r *Registry) Participants() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.states))
	for id := range r.states {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}
