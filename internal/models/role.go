package models

import (
	"sort"
	"strings"
)

// SpaceRole is the permission tier a member or invitee holds inside a space.
type SpaceRole string

const (
	RoleOwner     SpaceRole = "owner"
	RoleAdmin     SpaceRole = "admin"
	RoleModerator SpaceRole = "moderator"
	RoleMember    SpaceRole = "member"
	RoleGuest     SpaceRole = "guest"
)

// RoleInfo describes a role for display and says whether it can be handed out by invite.
type RoleInfo struct {
	Role        SpaceRole `json:"role"`
	Description string    `json:"description"`
	Assignable  bool      `json:"-"`
	rank        int
}

var roleTable = map[SpaceRole]RoleInfo{
	RoleOwner:     {Role: RoleOwner, Description: "Owns the space. Can do anything, including deleting it.", Assignable: false, rank: 4},
	RoleAdmin:     {Role: RoleAdmin, Description: "Can manage members, invites and all notes and boards.", Assignable: true, rank: 3},
	RoleModerator: {Role: RoleModerator, Description: "Can add, edit and delete any note or board.", Assignable: true, rank: 2},
	RoleMember:    {Role: RoleMember, Description: "Can add notes and edit or delete their own.", Assignable: true, rank: 1},
	RoleGuest:     {Role: RoleGuest, Description: "Can view notes and boards but not change them.", Assignable: true, rank: 0},
}

// ParseRole normalizes a raw role identifier. The boolean is false for unknown roles.
func ParseRole(raw string) (SpaceRole, bool) {
	role := SpaceRole(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := roleTable[role]
	return role, ok
}

// IsValidRole reports whether role exists at all, assignable or not.
func IsValidRole(role SpaceRole) bool {
	_, ok := roleTable[role]
	return ok
}

// Info returns the role description, or the zero value for an unknown role.
func (r SpaceRole) Info() RoleInfo {
	return roleTable[r]
}

// HasAtLeast reports whether r sits at or above required in the role hierarchy.
func (r SpaceRole) HasAtLeast(required SpaceRole) bool {
	have, ok := roleTable[r]
	if !ok {
		return false
	}
	want, ok := roleTable[required]
	if !ok {
		return false
	}
	return have.rank >= want.rank
}

// RoleCatalog maps every invite-assignable role to its description. Owner is never present.
type RoleCatalog map[SpaceRole]string

// DefaultRoleCatalog builds the catalog from the static role table.
func DefaultRoleCatalog() RoleCatalog {
	catalog := make(RoleCatalog, len(roleTable))
	for role, info := range roleTable {
		if !info.Assignable {
			continue
		}
		catalog[role] = info.Description
	}
	return catalog
}

// Contains reports whether role can be assigned through an invite.
func (c RoleCatalog) Contains(role SpaceRole) bool {
	_, ok := c[role]
	return ok
}

// Sorted returns the catalog entries from the most to the least privileged role.
func (c RoleCatalog) Sorted() []RoleInfo {
	out := make([]RoleInfo, 0, len(c))
	for role, desc := range c {
		info := roleTable[role]
		info.Description = desc
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].rank > out[j].rank
	})
	return out
}
