package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/helpkeeper/internal/auth"
	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

func (a *App) text(prompt string) (string, error) {
	return getSimpleText(a.reader, prompt, a.out)
}

// password reads a hidden value and returns it as a string, wiping the
// buffer.
func (a *App) password(prompt string) (string, error) {
	b, err := getPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	return string(b), nil
}

// Login drives the workflow from the login form until the user is signed
// in or back at LoggedOut.
func (a *App) Login(ctx context.Context) error {
	a.flow = auth.Flow{}
	for {
		out, err := a.step(ctx)
		if err != nil {
			a.report(ctx, err)
			a.flow = auth.Flow{}
			return err
		}
		if out.Message != "" {
			a.println(out.Message)
		}
		a.flow = out.Flow

		switch a.flow.State {
		case auth.LoggedOut, auth.Authenticated:
			return nil
		}
	}
}

// step shows the screen of the current state and applies one transition.
func (a *App) step(ctx context.Context) (auth.Outcome, error) {
	switch a.flow.State {
	case auth.LoggedOut:
		return a.loginForm(ctx)
	case auth.AwaitingInvitedRegistration:
		return a.invitedForm(ctx)
	case auth.AwaitingSelfRegistration:
		return a.selfRegistrationForm(ctx)
	case auth.AwaitingProfileSetup:
		return a.profileForm(ctx)
	case auth.AwaitingPasswordReset:
		return a.resetForm(ctx)
	case auth.AwaitingRoleSelection:
		return a.roleForm(ctx)
	}
	return auth.Outcome{Flow: a.flow}, nil
}

func (a *App) loginForm(ctx context.Context) (auth.Outcome, error) {
	var in auth.LoginInput
	var err error

	if in.InvitationCode, err = a.text("Invitation code (leave empty to log in)"); err != nil {
		return auth.Outcome{}, err
	}
	if in.InvitationCode == "" {
		if in.Username, err = a.text("Username"); err != nil {
			return auth.Outcome{}, err
		}
		if in.Password, err = a.password("Password"); err != nil {
			return auth.Outcome{}, err
		}
		if in.ConfirmPassword, err = a.password("Confirm password (new accounts only)"); err != nil {
			return auth.Outcome{}, err
		}
	}
	return a.workflow.Submit(ctx, a.flow, in)
}

func (a *App) invitedForm(ctx context.Context) (auth.Outcome, error) {
	a.println("Roles granted: " + a.flow.InvitationRoles.String())
	username, err := a.text("Choose a username")
	if err != nil {
		return auth.Outcome{}, err
	}
	pw, err := a.password("Password")
	if err != nil {
		return auth.Outcome{}, err
	}
	confirm, err := a.password("Confirm password")
	if err != nil {
		return auth.Outcome{}, err
	}
	return a.workflow.RegisterInvited(ctx, a.flow, username, pw, confirm)
}

// parseRoles reads a comma separated list, skipping unknown names.
func parseRoles(s string) []models.Role {
	var roles []models.Role
	for _, part := range strings.Split(s, ",") {
		if r, err := models.ParseRole(part); err == nil {
			roles = append(roles, r)
		}
	}
	return roles
}

func (a *App) selfRegistrationForm(ctx context.Context) (auth.Outcome, error) {
	s, err := a.text("Roles (Student, Instructor; comma separated)")
	if err != nil {
		return auth.Outcome{}, err
	}
	roles := parseRoles(s)
	if len(roles) == 0 && strings.TrimSpace(s) != "" {
		a.println("Unknown role: " + s)
	}
	return a.workflow.RegisterSelf(ctx, a.flow, roles)
}

func (a *App) profileForm(ctx context.Context) (auth.Outcome, error) {
	var p models.Profile
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Email *", &p.Email},
		{"First name *", &p.FirstName},
		{"Middle name", &p.MiddleName},
		{"Last name *", &p.LastName},
		{"Preferred first name", &p.PreferredFirstName},
	}
	for _, f := range fields {
		v, err := a.text(f.prompt)
		if err != nil {
			return auth.Outcome{}, err
		}
		*f.dst = v
	}
	return a.workflow.CompleteProfile(ctx, a.flow, p)
}

func (a *App) resetForm(ctx context.Context) (auth.Outcome, error) {
	pw, err := a.password("New password")
	if err != nil {
		return auth.Outcome{}, err
	}
	confirm, err := a.password("Confirm new password")
	if err != nil {
		return auth.Outcome{}, err
	}
	return a.workflow.ResetPassword(ctx, a.flow, pw, confirm)
}

func (a *App) roleForm(ctx context.Context) (auth.Outcome, error) {
	s, err := a.text("Choose a role: " + strings.Join(roleNames(a.flow.Roles), ", "))
	if err != nil {
		return auth.Outcome{}, err
	}
	var role models.Role
	if strings.TrimSpace(s) != "" {
		if role, err = models.ParseRole(s); err != nil {
			// unknown names are reported as a foreign role
			role = models.Role(strings.TrimSpace(s))
		}
	}
	return a.workflow.SelectRole(ctx, a.flow, role)
}

func roleNames(set models.RoleSet) []string {
	names := make([]string, len(set))
	for i, r := range set {
		names[i] = string(r)
	}
	return names
}

func (a *App) Logout(ctx context.Context) error {
	out := a.workflow.Logout(ctx, a.flow)
	a.flow = out.Flow
	a.println(out.Message)
	return nil
}
