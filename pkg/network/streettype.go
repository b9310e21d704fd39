package network

import (
	"fmt"
	"strings"
)

// StreetType classifies a segment. Values match the GeoJSON "type" property.
type StreetType string

const (
	Primary     StreetType = "primary"
	Secondary   StreetType = "secondary"
	Tertiary    StreetType = "tertiary"
	Residential StreetType = "residential"
	Path        StreetType = "path"
	River       StreetType = "river"
)

// StreetTypes lists every known type, arterials first.
var StreetTypes = []StreetType{Primary, Secondary, Tertiary, Residential, Path, River}

// ParseStreetType accepts any known type name, case-insensitively.
func ParseStreetType(s string) (StreetType, error) {
	t := StreetType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range StreetTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStreetType, s)
}

// HighPriority reports whether the type is arterial class. Only
// intersections with at least one arterial get signals.
func (t StreetType) HighPriority() bool {
	return t == Primary || t == Secondary
}

// DefaultLanes is the total lane count used when a segment does not set one.
func (t StreetType) DefaultLanes(oneWay bool) int {
	switch t {
	case Primary, Secondary:
		if oneWay {
			return 2
		}
		return 4
	case Tertiary, Residential, Path:
		if oneWay {
			return 1
		}
		return 2
	case River:
		return 2
	default:
		return 0
	}
}

// DefaultMaxSpeed is the speed limit in km/h.
func (t StreetType) DefaultMaxSpeed() int {
	switch t {
	case Primary:
		return 70
	case Secondary:
		return 50
	case Tertiary, Residential, Path:
		return 30
	default:
		return 50
	}
}

// ExcludeRivers is the default nearest-street filter.
func ExcludeRivers(t StreetType) bool { return t == River }

// ExcludeNothing accepts every segment type.
func ExcludeNothing(StreetType) bool { return false }

// ExcludeTypes builds a filter that rejects the listed types.
func ExcludeTypes(types ...StreetType) func(StreetType) bool {
	set := make(map[StreetType]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return func(t StreetType) bool {
		_, ok := set[t]
		return ok
	}
}

// ParseExcludeTypes builds a filter from type names. An empty list
// excludes nothing.
func ParseExcludeTypes(names []string) (func(StreetType) bool, error) {
	types := make([]StreetType, 0, len(names))
	for _, name := range names {
		t, err := ParseStreetType(name)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return ExcludeTypes(types...), nil
}
