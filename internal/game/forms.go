package game

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormID is a 32-bit identifier for a game form (spell, magic effect, actor).
type FormID uint32

// PlayerID is the fixed form identifier of the player actor.
const PlayerID FormID = 0x14

// String renders the identifier in the conventional 8-digit hex form.
func (id FormID) String() string {
	return fmt.Sprintf("0x%08X", uint32(id))
}

// ParseFormID parses a form identifier from its textual representation.
//
// Accepted forms, matching what config files contain in the wild:
//
//	"0x000A1B2C"  - 0x-prefixed hex
//	"A1B2C"       - bare hex
//	"12345"       - decimal (only when it contains no hex letters)
//
// Bare strings are tried as hex first: identifiers are conventionally
// written in hex, so "12345" parses as 0x12345.
func ParseFormID(s string) (FormID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty form id")
	}

	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("parse form id %q: %w", s, err)
		}
		return FormID(v), nil
	}

	if v, err := strconv.ParseUint(s, 16, 32); err == nil {
		return FormID(v), nil
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse form id %q: %w", s, err)
	}
	return FormID(v), nil
}

// FormSet is a set of form identifiers.
//
// The zero value is NOT usable; construct with NewFormSet.
type FormSet map[FormID]struct{}

// NewFormSet creates a set containing the given identifiers.
func NewFormSet(ids ...FormID) FormSet {
	s := make(FormSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an identifier into the set.
func (s FormSet) Add(id FormID) {
	s[id] = struct{}{}
}

// Contains reports whether the identifier is in the set.
func (s FormSet) Contains(id FormID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identifiers in the set.
func (s FormSet) Len() int {
	return len(s)
}

// IDs returns the identifiers in ascending order.
// Sorted output keeps logging and journal payloads deterministic.
func (s FormSet) IDs() []FormID {
	ids := make([]FormID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Spell is a read-only view of a spell form: its identifier and the base
// effects it applies when cast.
type Spell struct {
	ID      FormID
	Name    string
	Effects []FormID
}

// HasAnyEffect reports whether the spell's effect list intersects the set.
func (sp Spell) HasAnyEffect(set FormSet) bool {
	for _, eff := range sp.Effects {
		if set.Contains(eff) {
			return true
		}
	}
	return false
}

// ActiveEffect is a live instance of a magic effect applied to an actor.
// InstanceID distinguishes concurrent instances of the same base effect.
type ActiveEffect struct {
	InstanceID uint32
	Effect     FormID
}
