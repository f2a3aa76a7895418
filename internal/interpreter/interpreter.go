// Package interpreter turns a blueprint image into a validated Layout by
// invoking the analysis oracle and repairing its output. The oracle response
// is untrusted input: everything is parsed, defaulted, and validated before
// a layout is surfaced, and no partial layout ever escapes.
package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
	"github.com/AkashRaja123/Smart-Receptionist/internal/logging"
	"github.com/AkashRaja123/Smart-Receptionist/internal/oracle"
)

// UserMessage is the single user-facing failure text for any analysis
// error. Oracle internals are never leaked to the end user.
const UserMessage = "The AI failed to process this image accurately. Please ensure the blueprint is clear."

var (
	// ErrEmptyResponse indicates the oracle returned no content.
	ErrEmptyResponse = errors.New("analysis oracle returned no content")

	// ErrMalformedResponse indicates the content was not parseable as the
	// expected schema.
	ErrMalformedResponse = errors.New("analysis response is not valid layout JSON")

	// ErrSchemaViolation indicates required top-level fields were absent
	// after parsing.
	ErrSchemaViolation = errors.New("analysis response missing required fields")
)

// Interpreter drives blueprint analysis through an oracle client.
type Interpreter struct {
	client oracle.Client
}

// New returns an Interpreter backed by the given oracle client.
func New(client oracle.Client) *Interpreter {
	return &Interpreter{client: client}
}

// AnalyzeBlueprint sends the blueprint image to the analysis oracle and
// returns a normalized, validated Layout. image is the raw image bytes;
// mimeType defaults to image/jpeg when empty. manualName is the
// administrator-entered institution name the oracle is told to analyze for.
func (i *Interpreter) AnalyzeBlueprint(ctx context.Context, image []byte, mimeType string, domain layout.DomainType, manualName string) (*layout.Layout, error) {
	timer := logging.StartTimer(logging.CategoryInterpreter, "AnalyzeBlueprint")
	defer timer.StopWithInfo()

	logging.Interpreter("AnalyzeBlueprint: domain=%s name=%q image_bytes=%d", domain, manualName, len(image))

	raw, err := i.client.CompleteWithImage(ctx, "", analysisPrompt(domain, manualName), image, mimeType, analysisResponseSchema())
	if err != nil {
		if errors.Is(err, oracle.ErrEmptyContent) {
			logging.InterpreterError("AnalyzeBlueprint: empty oracle response")
			return nil, fmt.Errorf("%w", ErrEmptyResponse)
		}
		logging.InterpreterError("AnalyzeBlueprint: oracle call failed: %v", err)
		return nil, fmt.Errorf("blueprint analysis failed: %w", err)
	}

	var l layout.Layout
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		logging.InterpreterError("AnalyzeBlueprint: unparseable response: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if missing := missingTopLevelFields(raw, &l); missing != "" {
		logging.InterpreterError("AnalyzeBlueprint: schema violation, missing %s", missing)
		return nil, fmt.Errorf("%w: %s", ErrSchemaViolation, missing)
	}

	Normalize(&l)

	if err := l.Validate(); err != nil {
		logging.InterpreterError("AnalyzeBlueprint: validation failed: %v", err)
		return nil, fmt.Errorf("analyzed layout is inconsistent: %w", err)
	}

	logging.Interpreter("AnalyzeBlueprint: layout %q floors=%d rooms=%d rules=%d",
		l.BuildingName, len(l.Floors), l.RoomCount(), len(l.AccessRules))
	return &l, nil
}

// missingTopLevelFields reports which required top-level fields are absent,
// distinguishing a missing array from an empty one via the raw JSON.
func missingTopLevelFields(raw string, l *layout.Layout) string {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return "object body"
	}

	for _, field := range []string{"buildingName", "buildingType", "floors", "accessRules"} {
		if _, ok := keys[field]; !ok {
			return field
		}
	}
	if l.BuildingName == "" {
		return "buildingName"
	}
	if l.BuildingType == "" {
		return "buildingType"
	}
	return ""
}

// analysisPrompt builds the fixed analysis instruction. Waypoint nodes are
// demanded explicitly because the resolver can only build multi-hop paths
// through nodes that exist in the rooms array.
func analysisPrompt(domain layout.DomainType, manualName string) string {
	return fmt.Sprintf(`You are a professional architectural AI analyst. Analyze this blueprint for a %s named "%s".

PERFORM THE FOLLOWING ANALYSES:
1. **Blueprint Understanding**: Identify all floors, blocks, and specific rooms.
   IMPORTANT: You MUST also identify "Path Nodes" such as "Main Entrance", "Hallway Junction A", "Corridor B", "Stairwell 1", and "Elevator Lobby". These are essential for navigation routing.
2. **Role & Access Inference**: For every area found, determine which roles (Admin, Visitor, Doctor, Patient, Staff, Student) should be restricted.
   - e.g., 'ICU' restricted for 'Visitor'.
3. **Building Purpose Prediction**: Predict the block type (e.g., 'Academic Block', 'Medical Center').

OUTPUT RULES:
- Coordinates (x, y) must be integers 0-100.
- Ensure every traversable hallway or junction has a node in the 'rooms' array so the navigator can build a path through them.
- Return strictly valid JSON.`, domain, manualName)
}

// analysisResponseSchema is the strict JSON schema the oracle must honor.
func analysisResponseSchema() map[string]interface{} {
	coordinates := map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "NUMBER"},
			"y": map[string]interface{}{"type": "NUMBER"},
		},
	}
	room := map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"id":          map[string]interface{}{"type": "STRING"},
			"name":        map[string]interface{}{"type": "STRING", "description": "Include room names AND path waypoints like 'Corridor 1'"},
			"block":       map[string]interface{}{"type": "STRING"},
			"floor":       map[string]interface{}{"type": "NUMBER"},
			"description": map[string]interface{}{"type": "STRING"},
			"coordinates": coordinates,
		},
		"required": []string{"id", "name", "block", "floor", "coordinates"},
	}
	floor := map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"level":  map[string]interface{}{"type": "NUMBER"},
			"blocks": map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
			"rooms":  map[string]interface{}{"type": "ARRAY", "items": room},
		},
		"required": []string{"level", "rooms"},
	}
	accessRule := map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"area":            map[string]interface{}{"type": "STRING"},
			"restrictedRoles": map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
			"reason":          map[string]interface{}{"type": "STRING"},
		},
	}
	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"buildingName":       map[string]interface{}{"type": "STRING"},
			"buildingType":       map[string]interface{}{"type": "STRING"},
			"predictedBlockType": map[string]interface{}{"type": "STRING"},
			"floors":             map[string]interface{}{"type": "ARRAY", "items": floor},
			"accessRules":        map[string]interface{}{"type": "ARRAY", "items": accessRule},
		},
		"required": []string{"buildingName", "buildingType", "floors", "accessRules", "predictedBlockType"},
	}
}
