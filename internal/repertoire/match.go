package repertoire

import "github.com/soultek101/ocarina/internal/song"

// Match returns the known song whose pattern equals played exactly, or nil.
//
// Fixed songs match their catalog pattern. The custom song matches the
// participant's confirmed scarecrow pattern. Catalog patterns are unique
// and the scarecrow pattern is private, so at most one song can match.
func (s *State) Match(played []song.Note) *song.Song {
	if len(played) == 0 {
		return nil
	}
	for _, sg := range s.catalog.Songs() {
		if !s.has(sg.Name) {
			continue
		}
		if sg.Custom {
			if len(s.scarecrowNotes) == ScarecrowLength && song.EqualNotes(s.scarecrowNotes, played) {
				return sg
			}
			continue
		}
		if sg.Matches(played) {
			return sg
		}
	}
	return nil
}
