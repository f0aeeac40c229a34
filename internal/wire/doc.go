// Package wire carries song knowledge between a participant's owner and its
// observers.
//
// The owner validates learn requests against simulation time and pushes
// each accepted change as a LearnSong payload. Observers apply those
// payloads to a read-only mirror. Transport framing is the caller's
// concern: a Sender receives finished payloads.
package wire
