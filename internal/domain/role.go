package domain

import (
	"slices"
	"strings"
)

// Role is the capability class of an actor.
// swagger:model Role
type Role string

const (
	RoleSpeaker   Role = "SPEAKER"
	RoleOrganizer Role = "ORGANIZER"
	RolePublic    Role = "PUBLIC"
	RoleAdmin     Role = "ADMIN"
)

// AllRoles lists every role in a stable order.
var AllRoles = []Role{RoleSpeaker, RoleOrganizer, RolePublic, RoleAdmin}

// ParseRole normalizes s and returns the matching role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(AllRoles, r) {
		return "", false
	}
	return r, true
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	return slices.Contains(roles, r)
}

// CanReview reports whether the role may decide on and schedule talks.
func (r Role) CanReview() bool {
	return r.In(RoleOrganizer, RoleAdmin)
}

// Actor is the authenticated caller as supplied by the identity layer.
type Actor struct {
	ID   string
	Role Role
}
