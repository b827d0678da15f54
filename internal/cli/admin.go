package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

func (a *App) invite(ctx context.Context, _ []string) error {
	s, err := a.text("Roles for the invitation (Administrator, Instructor, Student; comma separated)")
	if err != nil {
		return err
	}
	set, err := models.ParseRoleSet(s)
	if err != nil {
		return err
	}
	code, err := a.invitations.Create(ctx, set...)
	if err != nil {
		return err
	}
	a.printf("Invitation code: %s (%s)\n", code, set)
	return nil
}

func (a *App) listInvitations(ctx context.Context, _ []string) error {
	list, err := a.invitations.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No open invitations.")
		return nil
	}
	for _, inv := range list {
		a.printf("%s  %s  %s\n", inv.Code, inv.Roles, inv.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (a *App) resetAccount(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("reset-account")
	}
	code, expiry, err := a.users.ResetAccount(ctx, args[0], a.config.ResetTTL)
	if err != nil {
		return err
	}
	a.printf("One-time password for %s: %s (valid until %s)\n", args[0], code, expiry.Format("2006-01-02 15:04"))
	return nil
}

func (a *App) deleteUser(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("delete-user")
	}
	if args[0] == a.flow.Username {
		a.println("You cannot delete your own account.")
		return nil
	}
	if err := a.users.Remove(ctx, args[0]); err != nil {
		return err
	}
	a.println("User deleted.")
	return nil
}

func (a *App) listUsers(ctx context.Context, _ []string) error {
	list, err := a.users.List(ctx)
	if err != nil {
		return err
	}
	a.println("Username, Name, Roles")
	for i := range list {
		u := &list[i]
		a.println(strings.Join([]string{u.Username, u.FullName(), u.Roles.String()}, ", "))
	}
	return nil
}

func (a *App) manageRoles(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("roles")
	}
	u, err := a.users.FindByUsername(ctx, args[0])
	if err != nil {
		return err
	}
	a.println("Current roles: " + u.Roles.String())

	s, err := a.text("New roles (comma separated)")
	if err != nil {
		return err
	}
	set, err := models.ParseRoleSet(s)
	if err != nil {
		return err
	}
	if err := a.users.UpdateRoles(ctx, u.Username, set...); err != nil {
		return err
	}
	a.println("Roles updated.")
	return nil
}
