// Package engine implements the authoritative owner loop for participant
// song knowledge.
//
// The engine receives events (joins, learn payloads, plays, rides, time
// advances, checkpoints), applies them to the participant registry and
// replicates accepted learns to observers through a wire.Handler.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// The engine processes all events in a single goroutine. This ensures:
// - Scarecrow unlock checks see a stable clock for the whole event
// - Replication order matches acceptance order
// - No locks are needed inside repertoire
//
// Event Processing Flow:
// 1. Events enqueued to a FIFO queue from any goroutine
// 2. Engine.Run() (or Drain) dequeues events one at a time
// 3. processEvent() routes to the appropriate handler
// 4. Learns go through the owner wire.Handler, which replicates on success
// 5. Join, Leave and Checkpoint read or write whole profiles in the store
//
// Simulation Time:
// The engine owns a Clock measured in ticks. It only moves on Advance
// events, so a run is reproducible from its event sequence alone.
//
// Failures:
// A failed event is logged with its context and reported in its Result.
// The loop keeps going.
package engine
