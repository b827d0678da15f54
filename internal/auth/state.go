// Package auth drives login, registration, password reset and role
// selection as an explicit state machine, and issues the session token that
// gates a role's capabilities.
package auth

import "github.com/dmitrijs2005/helpkeeper/internal/models"

type State int

const (
	LoggedOut State = iota
	AwaitingInvitedRegistration
	AwaitingSelfRegistration
	AwaitingProfileSetup
	AwaitingRoleSelection
	AwaitingPasswordReset
	Authenticated
)

var stateNames = map[State]string{
	LoggedOut:                   "LoggedOut",
	AwaitingInvitedRegistration: "AwaitingInvitedRegistration",
	AwaitingSelfRegistration:    "AwaitingSelfRegistration",
	AwaitingProfileSetup:        "AwaitingProfileSetup",
	AwaitingRoleSelection:       "AwaitingRoleSelection",
	AwaitingPasswordReset:       "AwaitingPasswordReset",
	Authenticated:               "Authenticated",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "Unknown"
}

// Flow is the state of one login attempt. It is passed into and returned
// from every transition; the zero value is LoggedOut.
type Flow struct {
	State    State
	Username string

	// Invitation being redeemed in AwaitingInvitedRegistration.
	InvitationCode  string
	InvitationRoles models.RoleSet

	// Roles of the user, offered in AwaitingRoleSelection.
	Roles models.RoleSet

	// Set once Authenticated.
	Role    models.Role
	Session *Session

	// password entered at login, kept for self-registration
	pendingPassword string
}

// Outcome is the result of a transition: the next flow and the message to
// show. An empty Message means nothing needs to be said.
type Outcome struct {
	Flow    Flow
	Message string
}

// LoginInput holds the fields of the login form.
type LoginInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	InvitationCode  string
}
