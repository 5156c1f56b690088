package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Selector chooses which datasets to download.
type Selector string

const (
	All       Selector = "all"
	Goal      Selector = "libero_goal"
	Spatial   Selector = "libero_spatial"
	Object    Selector = "libero_object"
	Libero100 Selector = "libero_100"
)

// ErrInvalidSelector is returned for tokens outside the enumeration.
var ErrInvalidSelector = errors.New("invalid dataset selector")

// Selectors lists every accepted token in display order.
func Selectors() []Selector {
	return []Selector{All, Goal, Spatial, Object, Libero100}
}

// ParseSelector validates s against the closed set of selectors.
func ParseSelector(s string) (Selector, error) {
	for _, sel := range Selectors() {
		if string(sel) == s {
			return sel, nil
		}
	}
	return "", fmt.Errorf("%w: %q (choose from %s)", ErrInvalidSelector, s, choices())
}

func choices() string {
	names := make([]string, 0, len(Selectors()))
	for _, sel := range Selectors() {
		names = append(names, string(sel))
	}
	return strings.Join(names, ", ")
}

// Archives returns the archive names the selector covers, in download order.
func (s Selector) Archives() []string {
	if s == All {
		return []string{string(Object), string(Goal), string(Spatial), string(Libero100)}
	}
	return []string{string(s)}
}

func (s Selector) String() string {
	return string(s)
}

// Set implements flag.Value.
func (s *Selector) Set(v string) error {
	sel, err := ParseSelector(v)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}
