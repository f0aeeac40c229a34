package repertoire

// Vitals is the health of the participant's avatar.
type Vitals interface {
	Health() float32
	MaxHealth() float32
}

// CanHealFromSong reports whether playing the song of healing would do
// anything: the participant is hurt and the cooldown has expired.
func (s *State) CanHealFromSong(env Env, v Vitals) bool {
	return v.Health() < v.MaxHealth() && env.now() > s.nextHeal
}

// MarkHealUsed starts the heal cooldown.
func (s *State) MarkHealUsed(env Env) {
	s.nextHeal = env.now() + HealCooldown
}
