package interpreter

import (
	"github.com/google/uuid"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
)

// Normalize repairs oracle omissions in place. Every room missing a name
// becomes "Unknown Point", a missing block defaults to "A", a missing id is
// replaced with a generated unique token, and missing coordinates default to
// the map center {50,50}. Coordinates outside [0,100] are clamped into
// range. Normalization is idempotent and never drops a room.
func Normalize(l *layout.Layout) {
	if l == nil {
		return
	}
	for fi := range l.Floors {
		rooms := l.Floors[fi].Rooms
		for ri := range rooms {
			r := &rooms[ri]
			if r.Name == "" {
				r.Name = "Unknown Point"
			}
			if r.Block == "" {
				r.Block = "A"
			}
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			if r.Coordinates == nil {
				r.Coordinates = &layout.Coordinates{X: 50, Y: 50}
			} else {
				r.Coordinates.X = clamp(r.Coordinates.X)
				r.Coordinates.Y = clamp(r.Coordinates.Y)
			}
		}
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
