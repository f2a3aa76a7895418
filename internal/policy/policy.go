// Package policy evaluates role-based access rules against area names.
// Matching is deliberately loose: rules bind to rooms and blocks by
// case-insensitive substring comparison, not by key, because the analysis
// oracle names areas free-form.
package policy

import (
	"strings"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
)

// IsRestricted reports whether the named area is off-limits for the role.
// Admin is never restricted, regardless of rules. For everyone else the
// area is restricted when ANY rule matches the area name and lists the
// role; rule order does not affect the result.
func IsRestricted(rules []layout.AccessRule, area string, role layout.RoleType) bool {
	if role == layout.RoleAdmin {
		return false
	}

	target := strings.ToLower(strings.TrimSpace(area))
	if target == "" {
		return false
	}

	restricted := false
	for _, rule := range rules {
		if !areaMatches(rule.Area, target) {
			continue
		}
		for _, r := range rule.RestrictedRoles {
			if strings.EqualFold(string(r), string(role)) {
				restricted = true
			}
		}
	}
	return restricted
}

// FindRule returns the first rule restricting the role for the area, so
// callers can surface the rule's reason. Nil when the area is unrestricted.
func FindRule(rules []layout.AccessRule, area string, role layout.RoleType) *layout.AccessRule {
	if role == layout.RoleAdmin {
		return nil
	}

	target := strings.ToLower(strings.TrimSpace(area))
	if target == "" {
		return nil
	}

	for i := range rules {
		if !areaMatches(rules[i].Area, target) {
			continue
		}
		for _, r := range rules[i].RestrictedRoles {
			if strings.EqualFold(string(r), string(role)) {
				return &rules[i]
			}
		}
	}
	return nil
}

// areaMatches compares a rule's area against a lowercased target name.
// Equality or substring containment in either direction counts as a match.
func areaMatches(ruleArea, target string) bool {
	ra := strings.ToLower(strings.TrimSpace(ruleArea))
	if ra == "" {
		return false
	}
	return ra == target || strings.Contains(target, ra) || strings.Contains(ra, target)
}
