package layout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField indicates a required top-level field is absent.
	ErrMissingField = errors.New("required layout field missing")

	// ErrDuplicateRoomID indicates two rooms share an id.
	ErrDuplicateRoomID = errors.New("duplicate room id")

	// ErrOrphanRoom indicates a room's floor does not match any declared level.
	ErrOrphanRoom = errors.New("room floor matches no declared level")
)

// Validate checks the structural invariants of a layout: required top-level
// fields present, every room id unique across all floors, and every room's
// floor field matching a declared Floor.Level.
func (l *Layout) Validate() error {
	if l == nil {
		return fmt.Errorf("%w: layout is nil", ErrMissingField)
	}
	if l.BuildingName == "" {
		return fmt.Errorf("%w: buildingName", ErrMissingField)
	}
	if l.Floors == nil {
		return fmt.Errorf("%w: floors", ErrMissingField)
	}
	if l.AccessRules == nil {
		return fmt.Errorf("%w: accessRules", ErrMissingField)
	}

	levels := make(map[int]bool, len(l.Floors))
	for _, f := range l.Floors {
		levels[f.Level] = true
	}

	seen := make(map[string]string) // id -> room name
	for _, f := range l.Floors {
		for _, r := range f.Rooms {
			if prev, ok := seen[r.ID]; ok {
				return fmt.Errorf("%w: %q shared by %q and %q", ErrDuplicateRoomID, r.ID, prev, r.Name)
			}
			seen[r.ID] = r.Name

			if !levels[r.Floor] {
				return fmt.Errorf("%w: room %q declares floor %d", ErrOrphanRoom, r.Name, r.Floor)
			}
		}
	}
	return nil
}

// FindNodeByName looks up a room by name: case-insensitive exact match
// first, then case-insensitive substring match. Returns the first match in
// floor/room order, or nil when nothing matches - absence is not an error.
func (l *Layout) FindNodeByName(name string) *Room {
	target := strings.ToLower(strings.TrimSpace(name))
	if target == "" {
		return nil
	}

	for fi := range l.Floors {
		for ri := range l.Floors[fi].Rooms {
			r := &l.Floors[fi].Rooms[ri]
			if strings.ToLower(r.Name) == target {
				return r
			}
		}
	}
	for fi := range l.Floors {
		for ri := range l.Floors[fi].Rooms {
			r := &l.Floors[fi].Rooms[ri]
			if strings.Contains(strings.ToLower(r.Name), target) {
				return r
			}
		}
	}
	return nil
}
