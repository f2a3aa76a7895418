package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
	"github.com/AkashRaja123/Smart-Receptionist/internal/oracle"
)

// stubOracle returns a canned completion, recording what it was asked.
type stubOracle struct {
	response   string
	err        error
	lastPrompt string
	lastSchema map[string]interface{}
	lastImage  []byte
}

func (s *stubOracle) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastPrompt = userPrompt
	return s.response, s.err
}

func (s *stubOracle) CompleteWithImage(ctx context.Context, systemPrompt, userPrompt string, image []byte, mimeType string, schema map[string]interface{}) (string, error) {
	s.lastPrompt = userPrompt
	s.lastSchema = schema
	s.lastImage = image
	return s.response, s.err
}

const validAnalysis = `{
	"buildingName": "City General Hospital",
	"buildingType": "Hospital",
	"predictedBlockType": "Medical Center",
	"floors": [
		{"level": 0, "blocks": ["A"], "rooms": [
			{"id": "n1", "name": "Main Entrance", "block": "A", "floor": 0, "description": "", "coordinates": {"x": 10, "y": 50}},
			{"id": "n2", "name": "Corridor A", "block": "A", "floor": 0, "coordinates": {"x": 50, "y": 50}}
		]}
	],
	"accessRules": [
		{"area": "ICU", "restrictedRoles": ["Visitor"], "reason": "Sterile area"}
	]
}`

func TestAnalyzeBlueprint(t *testing.T) {
	stub := &stubOracle{response: validAnalysis}
	l, err := New(stub).AnalyzeBlueprint(context.Background(), []byte("img"), "image/png", layout.DomainHospital, "City General")
	if err != nil {
		t.Fatalf("AnalyzeBlueprint failed: %v", err)
	}

	if l.BuildingName != "City General Hospital" {
		t.Errorf("Unexpected building name %q", l.BuildingName)
	}
	if l.RoomCount() != 2 {
		t.Errorf("Expected 2 rooms, got %d", l.RoomCount())
	}
	if len(stub.lastImage) == 0 {
		t.Error("Image bytes were not forwarded to the oracle")
	}
	if stub.lastSchema == nil {
		t.Error("Response schema was not enforced")
	}
}

func TestAnalyzeBlueprintEmptyResponse(t *testing.T) {
	stub := &stubOracle{err: oracle.ErrEmptyContent}
	_, err := New(stub).AnalyzeBlueprint(context.Background(), []byte("img"), "", layout.DomainHospital, "X")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnalyzeBlueprintMalformed(t *testing.T) {
	stub := &stubOracle{response: "I could not read this blueprint, sorry."}
	_, err := New(stub).AnalyzeBlueprint(context.Background(), []byte("img"), "", layout.DomainHospital, "X")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestAnalyzeBlueprintSchemaViolation(t *testing.T) {
	stub := &stubOracle{response: `{"buildingName": "X", "buildingType": "Hospital", "floors": []}`}
	_, err := New(stub).AnalyzeBlueprint(context.Background(), []byte("img"), "", layout.DomainHospital, "X")
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("Expected ErrSchemaViolation, got %v", err)
	}
}

func TestAnalyzeBlueprintRejectsDuplicateIDs(t *testing.T) {
	stub := &stubOracle{response: `{
		"buildingName": "X", "buildingType": "Hospital",
		"floors": [{"level": 0, "rooms": [
			{"id": "dup", "name": "A", "floor": 0},
			{"id": "dup", "name": "B", "floor": 0}
		]}],
		"accessRules": []
	}`}
	_, err := New(stub).AnalyzeBlueprint(context.Background(), []byte("img"), "", layout.DomainHospital, "X")
	if !errors.Is(err, layout.ErrDuplicateRoomID) {
		t.Fatalf("Expected duplicate-id validation failure, got %v", err)
	}
}

func rawFromOracle(t *testing.T) *layout.Layout {
	t.Helper()
	raw := `{
		"buildingName": "Tech Institute", "buildingType": "Educational",
		"floors": [{"level": 0, "rooms": [
			{"id": "", "name": "", "block": "", "floor": 0},
			{"id": "r2", "name": "Lab 1", "block": "B", "floor": 0, "coordinates": {"x": 120, "y": -5}}
		]}],
		"accessRules": []
	}`
	var l layout.Layout
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	return &l
}

func TestNormalizeDefaults(t *testing.T) {
	l := rawFromOracle(t)
	Normalize(l)

	r := l.Floors[0].Rooms[0]
	if r.Name != "Unknown Point" {
		t.Errorf("Missing name should default to 'Unknown Point', got %q", r.Name)
	}
	if r.Block != "A" {
		t.Errorf("Missing block should default to 'A', got %q", r.Block)
	}
	if r.ID == "" {
		t.Error("Missing id should be generated")
	}
	if r.Coordinates == nil || r.Coordinates.X != 50 || r.Coordinates.Y != 50 {
		t.Errorf("Missing coordinates should default to {50,50}, got %+v", r.Coordinates)
	}

	// Out-of-range coordinates are clamped into [0,100].
	r2 := l.Floors[0].Rooms[1]
	if r2.Coordinates.X != 100 || r2.Coordinates.Y != 0 {
		t.Errorf("Expected clamped coordinates {100,0}, got %+v", r2.Coordinates)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	l := rawFromOracle(t)
	Normalize(l)

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Failed to snapshot layout: %v", err)
	}
	var before layout.Layout
	if err := json.Unmarshal(data, &before); err != nil {
		t.Fatalf("Failed to restore snapshot: %v", err)
	}

	Normalize(l)
	if diff := cmp.Diff(&before, l); diff != "" {
		t.Errorf("Second normalization changed the layout (-first +second):\n%s", diff)
	}
}

func TestNormalizeNeverDropsRooms(t *testing.T) {
	l := rawFromOracle(t)
	want := l.RoomCount()
	Normalize(l)
	if l.RoomCount() != want {
		t.Errorf("Normalization changed room count from %d to %d", want, l.RoomCount())
	}
}

func TestNormalizeGeneratedIDsUnique(t *testing.T) {
	l := &layout.Layout{
		BuildingName: "X", BuildingType: "Hospital",
		Floors: []layout.Floor{{Level: 0, Rooms: []layout.Room{
			{Name: "A", Floor: 0}, {Name: "B", Floor: 0}, {Name: "C", Floor: 0},
		}}},
		AccessRules: []layout.AccessRule{},
	}
	Normalize(l)
	if err := l.Validate(); err != nil {
		t.Fatalf("Generated ids must be unique: %v", err)
	}
}
