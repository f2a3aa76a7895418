// Package session implements the login gate in front of the shared layout
// store. Admins always pass; everyone else needs an uploaded layout whose
// building name matches the requested institution.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AkashRaja123/Smart-Receptionist/internal/layout"
	"github.com/AkashRaja123/Smart-Receptionist/internal/logging"
	"github.com/AkashRaja123/Smart-Receptionist/internal/store"
)

// ErrNoLayout blocks non-admin login while no blueprint has been uploaded.
var ErrNoLayout = errors.New("no institutional blueprint has been uploaded by the administrator yet")

// InstitutionMismatchError blocks login when the requested institution does
// not match the active layout's building name. It is a user-facing
// condition, not an internal failure, and it mutates no session state.
type InstitutionMismatchError struct {
	Requested string
	Active    string
}

func (e *InstitutionMismatchError) Error() string {
	return fmt.Sprintf("no records found for %q; the currently active navigation network is for %q", e.Requested, e.Active)
}

// Login runs the gate and, on success, installs the user session in the
// store. Matching against the stored building name is case-insensitive and
// allows exact match or substring containment in either direction - the
// looseness is intentional and matches how institutions are entered
// free-form at selection time.
func Login(st *store.Store, domain layout.DomainType, role layout.RoleType, username, institution string) (*layout.UserSession, error) {
	logging.Session("Login attempt: role=%s user=%q institution=%q", role, username, institution)

	if role != layout.RoleAdmin {
		l := st.GetLayout()
		if l == nil {
			logging.Session("Login blocked: no layout uploaded")
			return nil, ErrNoLayout
		}
		if !InstitutionMatches(institution, l.BuildingName) {
			logging.Session("Login blocked: institution mismatch %q vs %q", institution, l.BuildingName)
			return nil, &InstitutionMismatchError{Requested: institution, Active: l.BuildingName}
		}
	}

	sess := layout.UserSession{
		Domain:          domain,
		Role:            role,
		Username:        username,
		InstitutionName: institution,
	}
	st.SetSession(sess)
	return &sess, nil
}

// Logout destroys the active session.
func Logout(st *store.Store) {
	st.ClearSession()
}

// InstitutionMatches compares a requested institution name against the
// active layout's building name: lowercased, trimmed, accepting exact
// equality or substring containment either direction.
func InstitutionMatches(requested, active string) bool {
	req := strings.ToLower(strings.TrimSpace(requested))
	act := strings.ToLower(strings.TrimSpace(active))
	if req == "" || act == "" {
		return false
	}
	return req == act || strings.Contains(act, req) || strings.Contains(req, act)
}
