package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

// Messages shown by the workflow.
const (
	MsgInvalidInvitation  = "Invalid invitation code."
	MsgAdminCreated       = "Admin account created. Please log in again."
	MsgInvalidOTP         = "Invalid or expired one-time password."
	MsgInvalidCredentials = "Invalid username or password."
	MsgInvalidDetails     = "Invalid login or registration details."
	MsgPasswordsEmpty     = "Password fields cannot be empty."
	MsgPasswordsMismatch  = "Passwords do not match."
	MsgRegistered         = "Registration complete. Please log in."
	MsgSelectRoles        = "Please select at least one role."
	MsgSelfRolesOnly      = "Only Student and Instructor can be selected."
	MsgRequiredFields     = "Please fill in all required fields."
	MsgResetPasswords     = "Passwords do not match or are empty."
	MsgPasswordUpdated    = "Password updated. Please log in."
	MsgSelectRole         = "Select at least one role."
	MsgForeignRole        = "Please choose one of your roles."
	MsgChooseRole         = "Please choose a role for this session."
	MsgInvitationAccepted = "Invitation accepted. Choose a username and password."
	MsgChooseSelfRoles    = "New user. Please choose your roles."
	MsgCompleteProfile    = "Please complete your profile."
	MsgEnterNewPassword   = "Please enter a new password."
	MsgLoggedOut          = "You have been logged out."
	MsgActionNotAvailable = "This action is not available now."
)

// UserStore is what the workflow needs from the account service.
type UserStore interface {
	Count(ctx context.Context) (int, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Add(ctx context.Context, username, password string, roles ...models.Role) (*models.User, error)
	RegisterWithInvitation(ctx context.Context, code, username, password string) (*models.User, error)
	CompleteProfile(ctx context.Context, username string, p models.Profile) error
	CompletePasswordReset(ctx context.Context, username, password string) error
	CheckPassword(u *models.User, password string) bool
}

type InvitationLookup interface {
	Lookup(ctx context.Context, code string) (*models.Invitation, error)
}

// Workflow implements the transitions. Validation problems come back as an
// Outcome message with the state unchanged; only store failures are
// returned as errors.
type Workflow struct {
	users       UserStore
	invitations InvitationLookup
	sessions    *Sessions
	now         func() time.Time
	log         logging.Logger
}

func NewWorkflow(users UserStore, invitations InvitationLookup, sessions *Sessions, now func() time.Time, log logging.Logger) *Workflow {
	if now == nil {
		now = time.Now
	}
	return &Workflow{
		users:       users,
		invitations: invitations,
		sessions:    sessions,
		now:         now,
		log:         log.With("component", "auth"),
	}
}

// ValidatePasswords is the rule shared by every registration path.
func ValidatePasswords(password, confirm string) string {
	if password == "" || confirm == "" {
		return MsgPasswordsEmpty
	}
	if password != confirm {
		return MsgPasswordsMismatch
	}
	return ""
}

func stay(flow Flow, msg string) (Outcome, error) {
	return Outcome{Flow: flow, Message: msg}, nil
}

// settle turns a service error into an outcome. User-facing errors become
// messages; anything else is returned.
func settle(flow Flow, err error) (Outcome, error) {
	var e *common.Error
	if errors.As(err, &e) && !errors.Is(err, common.ErrorPersistence) {
		return stay(flow, common.Message(err))
	}
	return Outcome{Flow: flow}, err
}

// Submit handles the login form in LoggedOut.
func (w *Workflow) Submit(ctx context.Context, flow Flow, in LoginInput) (Outcome, error) {
	if flow.State != LoggedOut {
		return stay(flow, MsgActionNotAvailable)
	}

	if code := strings.TrimSpace(in.InvitationCode); code != "" {
		inv, err := w.invitations.Lookup(ctx, code)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return stay(flow, MsgInvalidInvitation)
			}
			return settle(flow, err)
		}
		return stay(Flow{
			State:           AwaitingInvitedRegistration,
			InvitationCode:  inv.Code,
			InvitationRoles: inv.Roles,
		}, MsgInvitationAccepted)
	}

	n, err := w.users.Count(ctx)
	if err != nil {
		return settle(flow, err)
	}
	if n == 0 {
		return w.bootstrap(ctx, flow, in)
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return stay(flow, MsgInvalidDetails)
	}

	u, err := w.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return settle(flow, err)
		}
		if ValidatePasswords(in.Password, in.ConfirmPassword) != "" {
			return stay(flow, MsgInvalidDetails)
		}
		return stay(Flow{
			State:           AwaitingSelfRegistration,
			Username:        username,
			pendingPassword: in.Password,
		}, MsgChooseSelfRoles)
	}

	if u.ResetPending(w.now()) {
		if subtle.ConstantTimeCompare([]byte(in.Password), []byte(u.OneTimePassword)) != 1 {
			return stay(flow, MsgInvalidOTP)
		}
		return stay(Flow{State: AwaitingPasswordReset, Username: u.Username}, MsgEnterNewPassword)
	}

	if !w.users.CheckPassword(u, in.Password) {
		w.log.Warn(ctx, "failed login", "username", username)
		return stay(flow, MsgInvalidCredentials)
	}

	if !u.SetupComplete {
		return stay(Flow{State: AwaitingProfileSetup, Username: u.Username, Roles: u.Roles}, MsgCompleteProfile)
	}
	return w.postLogin(ctx, u)
}

// bootstrap creates the first account, always as Administrator.
func (w *Workflow) bootstrap(ctx context.Context, flow Flow, in LoginInput) (Outcome, error) {
	if msg := ValidatePasswords(in.Password, in.ConfirmPassword); msg != "" {
		return stay(flow, msg)
	}
	if _, err := w.users.Add(ctx, in.Username, in.Password, models.RoleAdministrator); err != nil {
		return settle(flow, err)
	}
	w.log.Info(ctx, "first administrator created", "username", strings.TrimSpace(in.Username))
	return stay(Flow{}, MsgAdminCreated)
}

func (w *Workflow) RegisterInvited(ctx context.Context, flow Flow, username, password, confirm string) (Outcome, error) {
	if flow.State != AwaitingInvitedRegistration {
		return stay(flow, MsgActionNotAvailable)
	}
	if msg := ValidatePasswords(password, confirm); msg != "" {
		return stay(flow, msg)
	}

	if _, err := w.users.RegisterWithInvitation(ctx, flow.InvitationCode, username, password); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return stay(Flow{}, MsgInvalidInvitation)
		}
		return settle(flow, err)
	}
	return stay(Flow{}, MsgRegistered)
}

func (w *Workflow) RegisterSelf(ctx context.Context, flow Flow, roles []models.Role) (Outcome, error) {
	if flow.State != AwaitingSelfRegistration {
		return stay(flow, MsgActionNotAvailable)
	}
	if len(roles) == 0 {
		return stay(flow, MsgSelectRoles)
	}
	set, err := models.NewRoleSet(roles...)
	if err != nil {
		return stay(flow, MsgSelectRoles)
	}
	if !set.Within(models.SelfRegistrationRoles) {
		return stay(flow, MsgSelfRolesOnly)
	}

	if _, err := w.users.Add(ctx, flow.Username, flow.pendingPassword, set...); err != nil {
		return settle(flow, err)
	}
	return stay(Flow{}, MsgRegistered)
}

func (w *Workflow) CompleteProfile(ctx context.Context, flow Flow, p models.Profile) (Outcome, error) {
	if flow.State != AwaitingProfileSetup {
		return stay(flow, MsgActionNotAvailable)
	}
	if err := w.users.CompleteProfile(ctx, flow.Username, p); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return stay(flow, MsgRequiredFields)
		}
		return settle(flow, err)
	}

	u, err := w.users.FindByUsername(ctx, flow.Username)
	if err != nil {
		return settle(flow, err)
	}
	return w.postLogin(ctx, u)
}

func (w *Workflow) ResetPassword(ctx context.Context, flow Flow, password, confirm string) (Outcome, error) {
	if flow.State != AwaitingPasswordReset {
		return stay(flow, MsgActionNotAvailable)
	}
	if password == "" || password != confirm {
		return stay(flow, MsgResetPasswords)
	}
	if err := w.users.CompletePasswordReset(ctx, flow.Username, password); err != nil {
		return settle(flow, err)
	}
	return stay(Flow{}, MsgPasswordUpdated)
}

func (w *Workflow) SelectRole(ctx context.Context, flow Flow, role models.Role) (Outcome, error) {
	if flow.State != AwaitingRoleSelection {
		return stay(flow, MsgActionNotAvailable)
	}
	if role == "" {
		return stay(flow, MsgSelectRole)
	}
	if !flow.Roles.Has(role) {
		return stay(flow, MsgForeignRole)
	}

	u, err := w.users.FindByUsername(ctx, flow.Username)
	if err != nil {
		return settle(flow, err)
	}
	return w.authenticate(ctx, u, role)
}

func (w *Workflow) Logout(_ context.Context, _ Flow) Outcome {
	return Outcome{Flow: Flow{}, Message: MsgLoggedOut}
}

// postLogin asks for a role when the user has several, otherwise signs in.
func (w *Workflow) postLogin(ctx context.Context, u *models.User) (Outcome, error) {
	if len(u.Roles) > 1 {
		return stay(Flow{State: AwaitingRoleSelection, Username: u.Username, Roles: u.Roles}, MsgChooseRole)
	}
	if len(u.Roles) == 0 {
		return Outcome{}, fmt.Errorf("user %s has no roles", u.Username)
	}
	return w.authenticate(ctx, u, u.Roles[0])
}

func (w *Workflow) authenticate(ctx context.Context, u *models.User, role models.Role) (Outcome, error) {
	s, err := w.sessions.Issue(u.Username, role)
	if err != nil {
		return Outcome{}, err
	}
	w.log.Info(ctx, "user signed in", "username", u.Username, "role", string(role))
	return stay(Flow{
		State:    Authenticated,
		Username: u.Username,
		Roles:    u.Roles,
		Role:     role,
		Session:  s,
	}, Welcome(role, u))
}

// Welcome is the greeting shown on the home screen.
func Welcome(role models.Role, u *models.User) string {
	name := u.PreferredFirstNameOrDefault()
	if name == "" {
		name = u.Username
	}
	return fmt.Sprintf("Welcome, %s %s!", role, name)
}
