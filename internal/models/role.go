// Package models defines the domain types shared by repositories, services
// and the CLI: users and roles, invitations, groups with their memberships,
// articles and help messages.
package models

import (
	"strings"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
)

// Role is one of the closed set of account roles.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleInstructor    Role = "Instructor"
	RoleStudent       Role = "Student"
)

// AllRoles lists the roles in their canonical order.
var AllRoles = []Role{RoleAdministrator, RoleInstructor, RoleStudent}

// SelfRegistrationRoles are the roles a user may pick without an invitation.
var SelfRegistrationRoles = []Role{RoleStudent, RoleInstructor}

// ParseRole matches s against the known roles, ignoring case and surrounding spaces.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return "", common.Validation("Unknown role: " + s)
}

// RoleSet is a non-empty set of roles kept in canonical order.
type RoleSet []Role

// NewRoleSet normalises and deduplicates roles and rejects an empty set.
func NewRoleSet(roles ...Role) (RoleSet, error) {
	seen := make(map[Role]bool, len(roles))
	for _, r := range roles {
		p, err := ParseRole(string(r))
		if err != nil {
			return nil, err
		}
		seen[p] = true
	}

	set := make(RoleSet, 0, len(seen))
	for _, r := range AllRoles {
		if seen[r] {
			set = append(set, r)
		}
	}
	if len(set) == 0 {
		return nil, common.Validation("Select at least one role.")
	}
	return set, nil
}

// ParseRoleSet reads a comma separated list such as "Student,Instructor".
func ParseRoleSet(s string) (RoleSet, error) {
	var roles []Role
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		r, err := ParseRole(part)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NewRoleSet(roles...)
}

func (s RoleSet) Has(r Role) bool {
	for _, x := range s {
		if x == r {
			return true
		}
	}
	return false
}

// Within reports whether every role of s is in allowed.
func (s RoleSet) Within(allowed []Role) bool {
	for _, r := range s {
		ok := false
		for _, a := range allowed {
			if r == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// String is the storage form, e.g. "Administrator,Student".
func (s RoleSet) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}
