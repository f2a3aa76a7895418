package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
)

type stubOracle struct {
	response   string
	err        error
	lastSystem string
	lastQuery  string
}

func (s *stubOracle) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastQuery = userPrompt
	return s.response, s.err
}

func (s *stubOracle) CompleteWithImage(ctx context.Context, systemPrompt, userPrompt string, image []byte, mimeType string, schema map[string]interface{}) (string, error) {
	return s.response, s.err
}

func hospitalLayout() *layout.Layout {
	return &layout.Layout{
		BuildingName: "City General Hospital",
		BuildingType: "Hospital",
		Floors: []layout.Floor{
			{Level: 0, Blocks: []string{"A"}, Rooms: []layout.Room{
				{ID: "n1", Name: "Main Entrance", Block: "A", Floor: 0, Coordinates: &layout.Coordinates{X: 10, Y: 50}},
				{ID: "n2", Name: "Corridor A", Block: "A", Floor: 0, Coordinates: &layout.Coordinates{X: 50, Y: 50}},
				{ID: "n3", Name: "Reception", Block: "A", Floor: 0, Coordinates: &layout.Coordinates{X: 90, Y: 50}},
				{ID: "n4", Name: "Pharmacy", Block: "A", Floor: 0, Coordinates: &layout.Coordinates{X: 50, Y: 90}},
			}},
		},
		AccessRules: []layout.AccessRule{
			{Area: "ICU", RestrictedRoles: []layout.RoleType{layout.RoleVisitor}, Reason: "Sterile area"},
		},
	}
}

func TestResolve(t *testing.T) {
	stub := &stubOracle{response: `{
		"text": "Head straight down Corridor A to Reception.",
		"path": ["Main Entrance", "Corridor A", "Reception"],
		"instructions": ["Enter via Main Entrance", "Follow Corridor A", "Reception ahead"],
		"isReached": true,
		"isValid": true
	}`}

	answer, err := New(stub).Resolve(context.Background(), "where is reception?", hospitalLayout(), layout.RoleVisitor)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !answer.IsReached || !answer.IsValid {
		t.Errorf("Expected a reached, valid answer, got %+v", answer)
	}
	if len(answer.Path) != 3 {
		t.Errorf("Expected 3 path hops, got %v", answer.Path)
	}

	// The navigator contract must carry the node list and rules.
	for _, want := range []string{"Main Entrance", "Corridor A", "ICU", "Visitor"} {
		if !strings.Contains(stub.lastSystem, want) {
			t.Errorf("System instruction missing %q", want)
		}
	}
}

func TestResolveFencedResponse(t *testing.T) {
	stub := &stubOracle{response: "```json\n{\"text\": \"ok\", \"isReached\": true, \"isValid\": true}\n```"}
	answer, err := New(stub).Resolve(context.Background(), "q", hospitalLayout(), layout.RoleStaff)
	if err != nil {
		t.Fatalf("Resolve failed on fenced response: %v", err)
	}
	if answer.Text != "ok" {
		t.Errorf("Unexpected text %q", answer.Text)
	}
}

func TestResolveDefaultsSlices(t *testing.T) {
	stub := &stubOracle{response: `{"text": "I don't know that room.", "isValid": false}`}
	answer, err := New(stub).Resolve(context.Background(), "q", hospitalLayout(), layout.RoleVisitor)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if answer.Path == nil || answer.Instructions == nil {
		t.Error("Missing path/instructions should default to empty slices, not nil")
	}
	if answer.IsValid {
		t.Error("isValid should pass through as false")
	}
}

func TestResolvePropagatesTransportError(t *testing.T) {
	boom := errors.New("oracle unreachable")
	stub := &stubOracle{err: boom}
	_, err := New(stub).Resolve(context.Background(), "q", hospitalLayout(), layout.RoleVisitor)
	if !errors.Is(err, boom) {
		t.Fatalf("Transport error should propagate unchanged, got %v", err)
	}
}

func TestResolveMalformedResponse(t *testing.T) {
	stub := &stubOracle{response: "sorry, I can't help with that"}
	_, err := New(stub).Resolve(context.Background(), "q", hospitalLayout(), layout.RoleVisitor)
	if err == nil {
		t.Fatal("Expected an error for a non-JSON response")
	}
}

func TestResolveEnforcesPolicy(t *testing.T) {
	response := `{
		"text": "Follow Corridor A to the ICU.",
		"path": ["Main Entrance", "Corridor A", "Main ICU Ward"],
		"instructions": ["Go straight"],
		"isReached": true,
		"isValid": true
	}`

	// The oracle claims the restricted ward was reached; the local policy
	// check must convert that into a denial for a Visitor.
	answer, err := New(&stubOracle{response: response}).Resolve(context.Background(), "icu?", hospitalLayout(), layout.RoleVisitor)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if answer.IsReached {
		t.Error("Restricted destination must not be surfaced as reached")
	}
	if len(answer.Path) != 0 {
		t.Errorf("Denied answer must not expose a route, got %v", answer.Path)
	}
	if !strings.Contains(answer.Text, "Sterile area") {
		t.Errorf("Denial should carry the rule's reason, got %q", answer.Text)
	}

	// Doctors are not listed by the rule and pass through untouched.
	answer, err = New(&stubOracle{response: response}).Resolve(context.Background(), "icu?", hospitalLayout(), layout.RoleDoctor)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !answer.IsReached || len(answer.Path) != 3 {
		t.Errorf("Unrestricted role should keep the oracle answer, got %+v", answer)
	}
}

func TestCheckWaypointCompleteness(t *testing.T) {
	l := hospitalLayout()

	// Corridor A sits on the straight line between entrance and reception.
	err := CheckWaypointCompleteness(l, []string{"Main Entrance", "Reception"})
	if err == nil {
		t.Fatal("Expected a violation for a path that jumps over Corridor A")
	}
	if !strings.Contains(err.Error(), "Corridor A") {
		t.Errorf("Violation should name the skipped waypoint, got %v", err)
	}

	if err := CheckWaypointCompleteness(l, []string{"Main Entrance", "Corridor A", "Reception"}); err != nil {
		t.Errorf("Complete path flagged: %v", err)
	}

	// Pharmacy is off the entrance-reception line beyond tolerance, so a
	// two-hop path to it that bends at the corridor is fine.
	if err := CheckWaypointCompleteness(l, []string{"Main Entrance", "Corridor A", "Pharmacy"}); err != nil {
		t.Errorf("Bent path flagged: %v", err)
	}
}

func TestCheckWaypointCompletenessShortPath(t *testing.T) {
	l := hospitalLayout()
	if err := CheckWaypointCompleteness(l, []string{"Reception"}); err != nil {
		t.Errorf("Single-node path flagged: %v", err)
	}
	if err := CheckWaypointCompleteness(l, nil); err != nil {
		t.Errorf("Empty path flagged: %v", err)
	}
}

func TestDistanceToSegment(t *testing.T) {
	a := &layout.Coordinates{X: 0, Y: 0}
	b := &layout.Coordinates{X: 100, Y: 0}

	if d := distanceToSegment(&layout.Coordinates{X: 50, Y: 5}, a, b); d != 5 {
		t.Errorf("Expected distance 5, got %v", d)
	}
	// Beyond the segment end, distance is to the endpoint.
	if d := distanceToSegment(&layout.Coordinates{X: 110, Y: 0}, a, b); d != 10 {
		t.Errorf("Expected distance 10, got %v", d)
	}
	// Degenerate segment.
	if d := distanceToSegment(&layout.Coordinates{X: 3, Y: 4}, a, a); d != 5 {
		t.Errorf("Expected distance 5 to a point segment, got %v", d)
	}
}
