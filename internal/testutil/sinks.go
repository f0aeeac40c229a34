package testutil

import (
	"sync"

	"github.com/google/uuid"

	"github.com/soultek101/ocarina/internal/repertoire"
)

// Recorder is an AchievementSink and NoticeSink that remembers everything
// it was given, in order.
type Recorder struct {
	mu      sync.Mutex
	awards  map[uuid.UUID][]repertoire.Achievement
	notices map[uuid.UUID][]repertoire.Notice
}

func NewRecorder() *Recorder {
	return &Recorder{
		awards:  make(map[uuid.UUID][]repertoire.Achievement),
		notices: make(map[uuid.UUID][]repertoire.Notice),
	}
}

// Award implements repertoire.AchievementSink.
func (r *Recorder) Award(p uuid.UUID, a repertoire.Achievement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.awards[p] = append(r.awards[p], a)
}

// Notify implements repertoire.NoticeSink.
func (r *Recorder) Notify(p uuid.UUID, n repertoire.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices[p] = append(r.notices[p], n)
}

// Awards returns the achievements awarded to p.
func (r *Recorder) Awards(p uuid.UUID) []repertoire.Achievement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repertoire.Achievement(nil), r.awards[p]...)
}

// Notices returns the notices sent to p.
func (r *Recorder) Notices(p uuid.UUID) []repertoire.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repertoire.Notice(nil), r.notices[p]...)
}

// AwardCount returns how many times a was awarded to p.
func (r *Recorder) AwardCount(p uuid.UUID, a repertoire.Achievement) int {
	n := 0
	for _, got := range r.Awards(p) {
		if got == a {
			n++
		}
	}
	return n
}

// NoticeCount returns how many times n was sent to p.
func (r *Recorder) NoticeCount(p uuid.UUID, n repertoire.Notice) int {
	c := 0
	for _, got := range r.Notices(p) {
		if got == n {
			c++
		}
	}
	return c
}

// Health is a fixed avatar health reading.
type Health struct {
	Current float32
	Max     float32
}

func (h Health) Health() float32    { return h.Current }
func (h Health) MaxHealth() float32 { return h.Max }

// VitalsTable maps participants to their avatar health.
type VitalsTable struct {
	mu     sync.Mutex
	health map[uuid.UUID]Health
}

func NewVitalsTable() *VitalsTable {
	return &VitalsTable{health: make(map[uuid.UUID]Health)}
}

// Set records p's health.
func (v *VitalsTable) Set(p uuid.UUID, current, maxHealth float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.health[p] = Health{Current: current, Max: maxHealth}
}

// Vitals looks up p's health. Implements engine.VitalsSource.
func (v *VitalsTable) Vitals(p uuid.UUID) (repertoire.Vitals, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	h, ok := v.health[p]
	if !ok {
		return nil, false
	}
	return h, true
}
