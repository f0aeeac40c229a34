package song

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Stable identities of the songs in the default catalog.
const (
	ZeldasLullaby = "zeldas_lullaby"
	EponasSong    = "eponas_song"
	SariasSong    = "sarias_song"
	SunsSong      = "suns_song"
	SongOfTime    = "song_of_time"
	SongOfStorms  = "song_of_storms"
	SongOfHealing = "song_of_healing"
	SongOfSoaring = "song_of_soaring"
	ScarecrowSong = "scarecrow_song"
)

// Song is an immutable catalog entry.
type Song struct {
	// Name is the stable identity used on disk and on the wire.
	Name string

	// Title is the display name.
	Title string

	// Notes is the fixed pattern. Empty for custom songs.
	Notes []Note

	// Custom marks the song whose pattern is chosen per participant
	// (the Scarecrow's Song).
	Custom bool
}

// Matches reports whether played equals the fixed pattern exactly.
// Custom songs and songs without a pattern never match here.
func (s *Song) Matches(played []Note) bool {
	if s.Custom || len(s.Notes) == 0 {
		return false
	}
	return slices.Equal(s.Notes, played)
}

func (s *Song) String() string {
	return s.Name
}

// Catalog is the fixed set of songs known to the process.
// It is immutable after construction and safe for concurrent use.
type Catalog struct {
	songs  []*Song
	byName map[string]*Song
	custom *Song
}

// NewCatalog validates songs and builds a catalog preserving their order.
func NewCatalog(songs ...Song) (*Catalog, error) {
	c := &Catalog{
		songs:  make([]*Song, 0, len(songs)),
		byName: make(map[string]*Song, len(songs)),
	}
	patterns := make(map[string]string, len(songs))

	for i := range songs {
		s := songs[i]
		s.Name = normalizeName(s.Name)
		if s.Name == "" {
			return nil, &CatalogError{Field: fmt.Sprintf("song[%d]", i), Message: "name is required"}
		}
		if _, dup := c.byName[s.Name]; dup {
			return nil, &CatalogError{Field: s.Name, Message: "duplicate song name"}
		}
		for j, n := range s.Notes {
			if !n.Valid() {
				return nil, &CatalogError{Field: fmt.Sprintf("%s.notes[%d]", s.Name, j), Message: "invalid note"}
			}
		}

		if s.Custom {
			if len(s.Notes) > 0 {
				return nil, &CatalogError{Field: s.Name, Message: "custom song cannot have a fixed pattern"}
			}
			if c.custom != nil {
				return nil, &CatalogError{Field: s.Name, Message: fmt.Sprintf("only one custom song allowed, already have %s", c.custom.Name)}
			}
		} else if len(s.Notes) > 0 {
			key := FormatNotes(s.Notes)
			if other, dup := patterns[key]; dup {
				return nil, &CatalogError{Field: s.Name, Message: fmt.Sprintf("pattern %q already used by %s", key, other)}
			}
			patterns[key] = s.Name
		}

		entry := &Song{
			Name:   s.Name,
			Title:  s.Title,
			Notes:  slices.Clone(s.Notes),
			Custom: s.Custom,
		}
		if entry.Title == "" {
			entry.Title = entry.Name
		}
		if entry.Custom {
			c.custom = entry
		}
		c.songs = append(c.songs, entry)
		c.byName[entry.Name] = entry
	}

	return c, nil
}

// Lookup returns the song with the given identity.
func (c *Catalog) Lookup(name string) (*Song, bool) {
	s, ok := c.byName[normalizeName(name)]
	return s, ok
}

// MatchPattern returns the song whose fixed pattern equals played.
// Custom songs are never returned; their patterns belong to participants.
func (c *Catalog) MatchPattern(played []Note) (*Song, bool) {
	for _, s := range c.songs {
		if s.Matches(played) {
			return s, true
		}
	}
	return nil, false
}

// Custom returns the catalog's custom song, or nil if it has none.
func (c *Catalog) Custom() *Song {
	return c.custom
}

// Songs returns the songs in catalog order.
// The returned slice is a copy; the songs themselves are shared.
func (c *Catalog) Songs() []*Song {
	return slices.Clone(c.songs)
}

// Names returns every identity in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.songs))
	for i, s := range c.songs {
		names[i] = s.Name
	}
	return names
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	return len(c.songs)
}

// normalizeName puts identities in NFC so visually identical names written
// by different tools resolve to the same song.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
