package resolver

import (
	"fmt"
	"math"
	"strings"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
)

// waypointTolerance is the map-unit distance within which a waypoint node
// counts as lying on a path segment. Coordinates are integers in [0,100].
const waypointTolerance = 10.0

// waypointMarkers are the naming conventions identifying path waypoints as
// opposed to destination rooms. There is no type discriminator in the model.
var waypointMarkers = []string{
	"corridor", "junction", "hallway", "lobby", "stairwell", "elevator", "passage",
}

// CheckWaypointCompleteness verifies that a path honors the waypoint
// enumeration contract: any waypoint-named node of the layout that lies on
// the straight segment between two consecutive path nodes (same floor,
// within tolerance) must itself appear in the path. A straight-line,
// destination-only answer that jumps over a known corridor is a contract
// violation. Used to vet oracle stubs, since the real oracle cannot be
// asserted deterministically.
func CheckWaypointCompleteness(l *layout.Layout, path []string) error {
	if len(path) < 2 {
		return nil
	}

	inPath := make(map[string]bool, len(path))
	var hops []*layout.Room
	for _, name := range path {
		inPath[strings.ToLower(strings.TrimSpace(name))] = true
		if r := l.FindNodeByName(name); r != nil {
			inPath[strings.ToLower(r.Name)] = true
			hops = append(hops, r)
		}
	}

	for i := 0; i+1 < len(hops); i++ {
		a, b := hops[i], hops[i+1]
		if a.Floor != b.Floor || a.Coordinates == nil || b.Coordinates == nil {
			continue
		}
		for fi := range l.Floors {
			if l.Floors[fi].Level != a.Floor {
				continue
			}
			for ri := range l.Floors[fi].Rooms {
				w := &l.Floors[fi].Rooms[ri]
				if w.Coordinates == nil || !isWaypointName(w.Name) {
					continue
				}
				if inPath[strings.ToLower(w.Name)] {
					continue
				}
				if distanceToSegment(w.Coordinates, a.Coordinates, b.Coordinates) <= waypointTolerance {
					return fmt.Errorf("path skips waypoint %q between %q and %q", w.Name, a.Name, b.Name)
				}
			}
		}
	}
	return nil
}

func isWaypointName(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range waypointMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// distanceToSegment returns the distance from p to the segment a-b.
func distanceToSegment(p, a, b *layout.Coordinates) float64 {
	px, py := float64(p.X), float64(p.Y)
	ax, ay := float64(a.X), float64(a.Y)
	bx, by := float64(b.X), float64(b.Y)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}

	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
