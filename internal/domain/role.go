package domain

import "strings"

// Role is one of the three fixed identity domains.
type Role string

const (
	RoleNone        Role = ""
	RoleParticipant Role = "participant"
	RoleAdmin       Role = "admin"
	RoleOwner       Role = "owner"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleParticipant:
		return RoleParticipant, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleOwner:
		return RoleOwner, true
	}
	return RoleNone, false
}

// EmailDomain returns the synthetic mail domain for the role, e.g. karaoke.owner.app.
func (r Role) EmailDomain() string {
	return "karaoke." + string(r) + ".app"
}

// Roles is the role triple derived from an authenticated email.
// At most one field is set.
type Roles struct {
	IsOwner       bool `json:"isOwner"`
	IsAdmin       bool `json:"isAdmin"`
	IsParticipant bool `json:"isParticipant"`
}

// ResolveRoles derives the role triple from the email's domain suffix alone.
// Stored role fields are never consulted.
func ResolveRoles(email string) Roles {
	e := strings.ToLower(strings.TrimSpace(email))

	switch {
	case strings.HasSuffix(e, "@"+RoleOwner.EmailDomain()):
		return Roles{IsOwner: true}
	case strings.HasSuffix(e, "@"+RoleAdmin.EmailDomain()):
		return Roles{IsAdmin: true}
	case strings.HasSuffix(e, "@"+RoleParticipant.EmailDomain()):
		return Roles{IsParticipant: true}
	}

	return Roles{}
}

func (r Roles) IsStaff() bool {
	return r.IsOwner || r.IsAdmin
}

func (r Roles) Any() bool {
	return r.IsOwner || r.IsAdmin || r.IsParticipant
}

func (r Roles) Role() Role {
	switch {
	case r.IsOwner:
		return RoleOwner
	case r.IsAdmin:
		return RoleAdmin
	case r.IsParticipant:
		return RoleParticipant
	}
	return RoleNone
}
