// Package synset manages named synonym sets: where their rules come from,
// compiling them on demand, caching compiled maps and recompiling when rule
// files change.
package synset

import (
	"fmt"
	"os"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
	"github.com/Aman-CERP/synmap/internal/synonym"
)

// Source names a synonym set and where its rules live. Exactly one of Path
// and Synonyms is set.
type Source struct {
	Name     string
	Path     string
	Synonyms string
	Expand   bool
	Dedup    bool
	Analyzer string
}

// Options returns the parse options of the set.
func (s Source) Options() synonym.Options {
	return synonym.Options{Expand: s.Expand, Dedup: s.Dedup}
}

// Validate checks the source is well formed.
func (s Source) Validate() error {
	switch {
	case s.Name == "":
		return synerr.ValidationError("synonym set name is required", nil)
	case s.Path == "" && s.Synonyms == "":
		return synerr.ValidationError(fmt.Sprintf("synonym set %q needs a path or inline synonyms", s.Name), nil)
	case s.Path != "" && s.Synonyms != "":
		return synerr.ValidationError(fmt.Sprintf("synonym set %q sets both path and synonyms", s.Name), nil)
	}
	return nil
}

// Rules returns the rule text of the set, reading Path when it is file backed.
func (s Source) Rules() (string, error) {
	if s.Path == "" {
		return s.Synonyms, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", synerr.New(synerr.ErrCodeFileNotFound,
				fmt.Sprintf("synonym file not found: %s", s.Path), err).
				WithDetail("set", s.Name).
				WithDetail("path", s.Path)
		}
		if os.IsPermission(err) {
			return "", synerr.New(synerr.ErrCodeFilePermission,
				fmt.Sprintf("cannot read synonym file: %s", s.Path), err).
				WithDetail("set", s.Name)
		}
		return "", synerr.IOError(fmt.Sprintf("failed to read synonym file: %s", s.Path), err)
	}
	return string(data), nil
}
