// Package song defines the performable note set and the song catalog.
//
// Songs are identified by stable symbolic names, never by their position in
// the catalog. Persisted profiles and sync payloads carry names, so songs can
// be added, removed or reordered without invalidating stored data.
//
// The default catalog is declared in catalog.cue and compiled at first use:
//
//	cat, err := song.Default()
//	lullaby, ok := cat.Lookup(song.ZeldasLullaby)
//
// Note ordinals, by contrast, ARE persisted (scarecrow patterns) and sent on
// the wire. The Note enumeration is append-only.
package song
