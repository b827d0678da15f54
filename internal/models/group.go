package models

import "strings"

// GroupType distinguishes special access groups from general ones.
type GroupType string

const (
	GroupSpecial GroupType = "Special"
	GroupGeneral GroupType = "General"
)

// GroupTypeOf maps the isSpecial flag onto a GroupType.
func GroupTypeOf(isSpecial bool) GroupType {
	if isSpecial {
		return GroupSpecial
	}
	return GroupGeneral
}

type Group struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type GroupType `json:"type"`
}

// Rights are the per-member (or per-scope) access flags.
type Rights struct {
	CanView  bool `json:"can_view"`
	CanAdmin bool `json:"can_admin"`
}

// Membership links a user to a group. Role is free text such as
// "Instructor" or "Viewer".
type Membership struct {
	GroupID  string `json:"group_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Rights
}

// InitialRights returns the rights of a new member. The first member of a
// group who joins as an instructor administers it; everyone else starts
// without rights.
func InitialRights(firstMember bool, role string) Rights {
	if firstMember && strings.EqualFold(strings.TrimSpace(role), string(RoleInstructor)) {
		return Rights{CanView: false, CanAdmin: true}
	}
	return Rights{}
}
