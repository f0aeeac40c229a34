// Package repertoire holds each participant's song knowledge: the set of
// learned songs, the private scarecrow pattern and its unlock time, the heal
// cooldown, and the last-mount reference.
//
// A State is mutated only by its owner's processing step. Side effects
// (achievements, player notices) and the simulation clock are passed in
// through an Env so the state machine can run without a live simulation.
//
// The scarecrow song is learned in two phases:
//
//	unset --Learn(8 distinct notes)--> proposed --Learn(same notes, after unlock)--> confirmed
//
// The first Learn stores the pattern and starts a one week timer. A second
// Learn with the identical pattern after the timer expires confirms it.
package repertoire
