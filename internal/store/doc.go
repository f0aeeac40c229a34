// Package store provides SQLite-backed durable storage for participant
// profiles.
//
// Each profile is one row holding the participant's record as RFC 8785
// canonical JSON, its SHA-256 digest and a revision counter. Saves are
// whole-snapshot and happen at join, leave and checkpoint boundaries only.
// A save whose digest matches the stored one is skipped.
//
// # Ownership
//
// Exactly one authoritative process writes profiles. Open(path,
// WithOwnerLock()) takes an advisory lock on path+".lock" and fails with
// ErrLocked if another owner holds it.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
