package policy

import (
	"testing"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
)

var icuRules = []layout.AccessRule{
	{Area: "ICU", RestrictedRoles: []layout.RoleType{layout.RoleVisitor}, Reason: "Sterile area"},
	{Area: "Server Room", RestrictedRoles: []layout.RoleType{layout.RoleVisitor, layout.RolePatient}},
}

func TestSubstringMatching(t *testing.T) {
	if !IsRestricted(icuRules, "Main ICU Ward", layout.RoleVisitor) {
		t.Error("Visitor should be restricted from 'Main ICU Ward' by the ICU rule")
	}
	if IsRestricted(icuRules, "Main ICU Ward", layout.RoleDoctor) {
		t.Error("Doctor is not listed and should not be restricted")
	}
}

func TestBidirectionalContainment(t *testing.T) {
	// The queried area may also be a fragment of the rule's area.
	if !IsRestricted(icuRules, "Server", layout.RolePatient) {
		t.Error("'Server' should match rule area 'Server Room'")
	}
}

func TestAdminNeverRestricted(t *testing.T) {
	rules := []layout.AccessRule{
		{Area: "Main Entrance", RestrictedRoles: []layout.RoleType{layout.RoleAdmin}},
	}
	if IsRestricted(rules, "Main Entrance", layout.RoleAdmin) {
		t.Error("Admin must bypass every rule, even one naming Admin explicitly")
	}
}

func TestRuleOrderIrrelevant(t *testing.T) {
	forward := []layout.AccessRule{
		{Area: "Lab", RestrictedRoles: []layout.RoleType{layout.RoleStudent}},
		{Area: "Lab", RestrictedRoles: []layout.RoleType{layout.RoleStaff}},
	}
	reversed := []layout.AccessRule{forward[1], forward[0]}

	for _, role := range []layout.RoleType{layout.RoleStudent, layout.RoleStaff, layout.RoleVisitor} {
		if IsRestricted(forward, "Lab", role) != IsRestricted(reversed, "Lab", role) {
			t.Errorf("Result for role %s depends on rule order", role)
		}
	}
}

func TestCaseInsensitiveRoleAndArea(t *testing.T) {
	rules := []layout.AccessRule{
		{Area: "pharmacy", RestrictedRoles: []layout.RoleType{"visitor"}},
	}
	if !IsRestricted(rules, "PHARMACY STORE", layout.RoleVisitor) {
		t.Error("Matching should ignore case in both area and role")
	}
}

func TestUnmatchedAreaUnrestricted(t *testing.T) {
	if IsRestricted(icuRules, "Cafeteria", layout.RoleVisitor) {
		t.Error("Area matching no rule must not be restricted")
	}
	if IsRestricted(icuRules, "", layout.RoleVisitor) {
		t.Error("Blank area must not be restricted")
	}
	if IsRestricted(nil, "ICU", layout.RoleVisitor) {
		t.Error("Empty rule set must not restrict")
	}
}

func TestFindRuleReturnsReason(t *testing.T) {
	rule := FindRule(icuRules, "ICU Wing", layout.RoleVisitor)
	if rule == nil {
		t.Fatal("Expected a matching rule")
	}
	if rule.Reason != "Sterile area" {
		t.Errorf("Expected the ICU rule, got %+v", rule)
	}

	if FindRule(icuRules, "ICU Wing", layout.RoleAdmin) != nil {
		t.Error("FindRule must return nil for Admin")
	}
}
