package repertoire

import "github.com/soultek101/ocarina/internal/companion"

// LastMount resolves the last mount ridden against the live world.
// A miss leaves the stored reference intact for a later retry.
func (s *State) LastMount(world companion.Lookup) (companion.Mount, bool) {
	return companion.Resolve(&s.mount, world)
}

// RideMount records m as the last mount ridden if it is an eligible,
// different mount owned by this participant.
func (s *State) RideMount(m companion.Mount) bool {
	return companion.Bind(&s.mount, m, s.participant)
}
