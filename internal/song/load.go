package song

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed catalog.cue
var defaultCatalogSource string

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(defaultCatalogSource, "catalog.cue")
})

// Default returns the catalog compiled from the embedded catalog.cue.
// The result is computed once and shared.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// MustDefault is Default for program initialization and tests.
// It panics if the embedded catalog does not compile.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("song: embedded catalog: %v", err))
	}
	return c
}

// LoadCatalogFile compiles a catalog from a CUE file on disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return LoadCatalog(string(data), path)
}

// LoadCatalog compiles CUE source into a catalog.
//
// The source must define a top-level "song" struct whose labels are song
// identities:
//
//	song: eponas_song: {
//		title: "Epona's Song"
//		notes: ["D5", "B4", "A4", "D5", "B4", "A4"]
//	}
//
// Songs keep their declaration order.
func LoadCatalog(src, filename string) (*Catalog, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	songsVal := v.LookupPath(cue.ParsePath("song"))
	if !songsVal.Exists() {
		return nil, &CatalogError{Field: "song", Message: "song struct is required"}
	}
	if err := songsVal.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := songsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var songs []Song
	for iter.Next() {
		s, err := parseSong(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}

	if len(songs) == 0 {
		return nil, &CatalogError{Field: "song", Message: "at least one song is required", Pos: songsVal.Pos()}
	}

	return NewCatalog(songs...)
}

func parseSong(name string, v cue.Value) (Song, error) {
	s := Song{Name: name}

	titleVal := v.LookupPath(cue.ParsePath("title"))
	if titleVal.Exists() {
		title, err := titleVal.String()
		if err != nil {
			return s, formatCUEError(err)
		}
		s.Title = title
	}

	notesVal := v.LookupPath(cue.ParsePath("notes"))
	if notesVal.Exists() {
		list, err := notesVal.List()
		if err != nil {
			return s, formatCUEError(err)
		}
		for list.Next() {
			str, err := list.Value().String()
			if err != nil {
				return s, formatCUEError(err)
			}
			n, err := ParseNote(str)
			if err != nil {
				return s, &CatalogError{Field: name + ".notes", Message: err.Error(), Pos: list.Value().Pos()}
			}
			s.Notes = append(s.Notes, n)
		}
	}

	customVal := v.LookupPath(cue.ParsePath("custom"))
	if customVal.Exists() {
		resolved, _ := customVal.Default()
		custom, err := resolved.Bool()
		if err != nil {
			return s, formatCUEError(err)
		}
		s.Custom = custom
	}

	return s, nil
}

// CatalogError is a catalog definition error, with the CUE source position
// when one is known.
type CatalogError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CatalogError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := cueerrors.Positions(first)
	if len(positions) > 0 {
		return &CatalogError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
