// Package selection defines the independent betting propositions that every
// bet is built out of.
package selection

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidOdds   = errors.New("odds must be greater than 1")
	ErrEmptyName     = errors.New("selection name must not be empty")
	ErrDuplicateName = errors.New("duplicate selection name")
	ErrNoSelections  = errors.New("no selections")
	ErrUnknownFormat = errors.New("unknown selection file format")
)

// Selection is a single proposition with the bettor's fair price and the
// price offered by the book. Both are decimal odds.
type Selection struct {
	Name     string  `json:"name" yaml:"name"`
	OddsFair float64 `json:"odds_fair" yaml:"odds_fair"`
	OddsBook float64 `json:"odds_book" yaml:"odds_book"`
}

// Probability is the fair win probability.
func (s Selection) Probability() float64 {
	return 1 / s.OddsFair
}

// Edge is the expected return per unit staked on the single, at fair
// probability.
func (s Selection) Edge() float64 {
	return s.Probability()*s.OddsBook - 1
}

func (s Selection) String() string {
	return fmt.Sprintf("%s (fair %.3f, book %.3f)", s.Name, s.OddsFair, s.OddsBook)
}

func (s Selection) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if !(s.OddsFair > 1) {
		return fmt.Errorf("%w: %s has fair odds %v", ErrInvalidOdds, s.Name, s.OddsFair)
	}
	if !(s.OddsBook > 1) {
		return fmt.Errorf("%w: %s has book odds %v", ErrInvalidOdds, s.Name, s.OddsBook)
	}
	return nil
}

// ValidateAll validates every selection and checks that names are unique.
func ValidateAll(sels []Selection) error {
	if len(sels) == 0 {
		return ErrNoSelections
	}
	for _, s := range sels {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	dupes := lo.FindDuplicatesBy(sels, func(s Selection) string { return s.Name })
	if len(dupes) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateName, dupes[0].Name)
	}
	return nil
}

// Names returns the selection names in order.
func Names(sels []Selection) []string {
	return lo.Map(sels, func(s Selection, _ int) string { return s.Name })
}

type selectionFile struct {
	Selections []Selection `json:"selections" yaml:"selections"`
}

// Parse decodes a list of selections. format is "yaml" or "json". Both a
// bare list and a document with a top-level `selections` key are accepted.
func Parse(data []byte, format string) ([]Selection, error) {
	var sels []Selection
	var doc selectionFile
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &sels); err != nil {
			if err2 := yaml.Unmarshal(data, &doc); err2 != nil {
				return nil, err
			}
			sels = doc.Selections
		}
	case "json":
		if err := json.Unmarshal(data, &sels); err != nil {
			if err2 := json.Unmarshal(data, &doc); err2 != nil {
				return nil, err
			}
			sels = doc.Selections
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := ValidateAll(sels); err != nil {
		return nil, err
	}
	return sels, nil
}

// LoadFile reads selections from a yaml or json file, picking the format
// from the extension.
func LoadFile(path string) ([]Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	sels, err := Parse(data, ext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sels, nil
}
