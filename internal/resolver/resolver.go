// Package resolver answers free-text navigation requests against the active
// layout. The query oracle computes the path; the resolver owns the request
// contract and validates the response shape before anything is surfaced.
// Each query is independently resolved against the then-current layout and
// role - nothing is cached across calls.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
	"github.com/AkashRaja123/Smart-Receptionist/internal/logging"
	"github.com/AkashRaja123/Smart-Receptionist/internal/oracle"
	"github.com/AkashRaja123/Smart-Receptionist/internal/policy"
)

// NavigationAnswer is the validated oracle response for one query turn.
// IsValid=false or an unmatched destination is not a failure - the answer
// itself expresses "not found" or "not permitted" conversationally.
type NavigationAnswer struct {
	Text         string   `json:"text"`
	Path         []string `json:"path"`
	Instructions []string `json:"instructions"`
	IsReached    bool     `json:"isReached"`
	IsValid      bool     `json:"isValid"`
}

// Resolver resolves navigation queries through an oracle client.
type Resolver struct {
	client oracle.Client
}

// New returns a Resolver backed by the given oracle client.
func New(client oracle.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve sends the free-text query to the navigation oracle together with
// the building's node list, access rules, and the user's role. Transport
// failures propagate to the caller unchanged: no local recovery, no retry
// of a processed request - the caller decides whether to re-prompt.
func (r *Resolver) Resolve(ctx context.Context, query string, l *layout.Layout, role layout.RoleType) (*NavigationAnswer, error) {
	timer := logging.StartTimer(logging.CategoryResolver, "Resolve")
	defer timer.Stop()

	logging.Resolver("Resolve: role=%s query_len=%d building=%q", role, len(query), l.BuildingName)

	system, err := systemInstruction(l, role)
	if err != nil {
		return nil, fmt.Errorf("failed to build navigator instruction: %w", err)
	}

	raw, err := r.client.CompleteJSON(ctx, system, query)
	if err != nil {
		logging.ResolverError("Resolve: oracle call failed: %v", err)
		return nil, err
	}

	answer, err := parseAnswer(raw)
	if err != nil {
		logging.ResolverError("Resolve: %v", err)
		return nil, err
	}

	enforcePolicy(answer, l, role)

	logging.Resolver("Resolve: path_len=%d reached=%v valid=%v", len(answer.Path), answer.IsReached, answer.IsValid)
	return answer, nil
}

// enforcePolicy re-checks the oracle's access decision locally. The oracle
// is instructed to apply the rules itself, but its output is untrusted: a
// path whose destination is restricted for the role is converted into a
// denied answer, never surfaced as reached.
func enforcePolicy(answer *NavigationAnswer, l *layout.Layout, role layout.RoleType) {
	if !answer.IsReached || len(answer.Path) == 0 {
		return
	}
	dest := answer.Path[len(answer.Path)-1]
	rule := policy.FindRule(l.AccessRules, dest, role)
	if rule == nil {
		return
	}

	logging.Policy("Destination %q restricted for role %s (rule area %q)", dest, role, rule.Area)
	answer.IsReached = false
	answer.Path = []string{}
	answer.Instructions = []string{}
	answer.Text = deniedText(dest, role, rule)
}

func deniedText(dest string, role layout.RoleType, rule *layout.AccessRule) string {
	if rule.Reason != "" {
		return fmt.Sprintf("I'm sorry, access to %s is restricted for the %s role: %s.", dest, role, strings.TrimSuffix(rule.Reason, "."))
	}
	return fmt.Sprintf("I'm sorry, access to %s is restricted for the %s role.", dest, role)
}

// parseAnswer validates the response shape. Missing path/instructions
// default to empty sequences; everything else passes through as-is.
func parseAnswer(raw string) (*NavigationAnswer, error) {
	var answer NavigationAnswer
	if err := json.Unmarshal([]byte(stripFences(raw)), &answer); err != nil {
		return nil, fmt.Errorf("navigation response is not valid JSON: %w", err)
	}
	if answer.Path == nil {
		answer.Path = []string{}
	}
	if answer.Instructions == nil {
		answer.Instructions = []string{}
	}
	return &answer, nil
}

// stripFences removes a markdown code fence the oracle sometimes wraps
// around JSON bodies despite the mime-type instruction.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// systemInstruction builds the fixed navigator contract: the full (name,id)
// node list, the access rules, and the path-completeness requirement. The
// path MUST enumerate every intermediate waypoint because it is later
// rendered against the physical floor graph and has to follow corridors.
func systemInstruction(l *layout.Layout, role layout.RoleType) (string, error) {
	nodes, err := json.Marshal(l.Nodes())
	if err != nil {
		return "", err
	}
	rules, err := json.Marshal(l.AccessRules)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are the SmartReceptionist Navigator for %s.
User Role: %s.

CONTEXT:
Building Nodes: %s
Access Rules: %s

MISSION:
1. Calculate the topological path from the starting point (usually Entrance) to the destination.
2. IMPORTANT: The "path" array MUST NOT be a straight line. It MUST include every intermediate hallway, junction, or corridor node identified in the layout to follow the building's architecture.
3. Check the access rules - if the destination is restricted for this role, block it.
4. If destination is reached, set 'isReached' to true.

RESPONSE FORMAT (JSON ONLY):
{
  "text": "Conversational instructions",
  "path": ["Entrance", "Corridor A", "Junction 1", "Destination Room"],
  "instructions": ["Step 1: Go through Entrance", "Step 2: Turn left at Corridor A...", "Step 3: Arrived"],
  "isReached": boolean,
  "isValid": boolean
}`, l.BuildingName, role, nodes, rules), nil
}
