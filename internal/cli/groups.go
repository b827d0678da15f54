package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

func (a *App) listGroups(ctx context.Context, _ []string) error {
	list, err := a.groups.ListGroups(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No groups.")
		return nil
	}
	for _, g := range list {
		a.printf("%s  %s  (%s)\n", g.ID, g.Name, g.Type)
	}
	return nil
}

func (a *App) createGroup(ctx context.Context, _ []string) error {
	name, err := a.text("Group name")
	if err != nil {
		return err
	}
	special, err := a.text("Special group? (y/N)")
	if err != nil {
		return err
	}
	g, err := a.groups.CreateGroup(ctx, name, yes(special))
	if err != nil {
		return err
	}
	a.printf("Group %s created with id %s.\n", g.Name, g.ID)
	return nil
}

func (a *App) deleteGroup(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("delete-group")
	}
	g, err := a.groups.ResolveGroup(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.groups.DeleteGroup(ctx, g.ID); err != nil {
		return err
	}
	a.println("Group deleted.")
	return nil
}

// groupArticle resolves "<group> <n>" where n is an article display id.
func (a *App) groupArticle(ctx context.Context, name string, args []string) (*models.Group, int64, error) {
	if len(args) != 2 {
		return nil, 0, a.usage(name)
	}
	g, err := a.groups.ResolveGroup(ctx, args[0])
	if err != nil {
		return nil, 0, err
	}
	n, err := displayID(args[1])
	if err != nil {
		return nil, 0, err
	}
	id, err := a.articles.ResolveDisplayID(ctx, n)
	if err != nil {
		return nil, 0, err
	}
	return g, id, nil
}

func (a *App) linkArticle(ctx context.Context, args []string) error {
	g, id, err := a.groupArticle(ctx, "link", args)
	if err != nil {
		return err
	}
	if err := a.groups.AddArticleToGroup(ctx, g.ID, id); err != nil {
		return err
	}
	a.println("Article added to group.")
	return nil
}

func (a *App) unlinkArticle(ctx context.Context, args []string) error {
	g, id, err := a.groupArticle(ctx, "unlink", args)
	if err != nil {
		return err
	}
	if err := a.groups.RemoveArticleFromGroup(ctx, g.ID, id); err != nil {
		return err
	}
	a.println("Article removed from group.")
	return nil
}

func (a *App) listMembers(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("members")
	}
	g, err := a.groups.ResolveGroup(ctx, args[0])
	if err != nil {
		return err
	}
	list, err := a.groups.ListMembers(ctx, g.ID)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No members.")
		return nil
	}
	for _, m := range list {
		a.printf("%s  %s  view=%t admin=%t\n", m.Username, m.Role, m.CanView, m.CanAdmin)
	}
	return nil
}

func (a *App) addMember(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return a.usage("add-member")
	}
	g, err := a.groups.ResolveGroup(ctx, args[0])
	if err != nil {
		return err
	}
	m, err := a.groups.AddUserToGroup(ctx, g.ID, args[1], args[2])
	if err != nil {
		return err
	}
	a.printf("%s added to %s (view=%t admin=%t).\n", m.Username, g.Name, m.CanView, m.CanAdmin)
	return nil
}

func (a *App) removeMember(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("remove-member")
	}
	g, err := a.groups.ResolveGroup(ctx, args[0])
	if err != nil {
		return err
	}
	removed, err := a.groups.DeleteUserFromGroup(ctx, g.ID, args[1])
	if err != nil {
		return err
	}
	if !removed {
		a.println(fmt.Sprintf("%s is not a member of %s.", args[1], g.Name))
		return nil
	}
	a.println("Member removed.")
	return nil
}

// memberArgs resolves "<group> <username> ..." for the rights commands.
func (a *App) memberArgs(ctx context.Context, name string, args []string, n int) (*models.Group, error) {
	if len(args) != n {
		return nil, a.usage(name)
	}
	return a.groups.ResolveGroup(ctx, args[0])
}

func onOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, common.Validation("Expected on or off.")
}

func (a *App) setView(ctx context.Context, args []string) error {
	g, err := a.memberArgs(ctx, "set-view", args, 3)
	if err != nil {
		return err
	}
	v, err := onOff(args[2])
	if err != nil {
		return err
	}
	if err := a.groups.UpdateViewRights(ctx, g.ID, args[1], v); err != nil {
		return err
	}
	a.println("Rights updated.")
	return nil
}

func (a *App) setAdmin(ctx context.Context, args []string) error {
	g, err := a.memberArgs(ctx, "set-admin", args, 3)
	if err != nil {
		return err
	}
	v, err := onOff(args[2])
	if err != nil {
		return err
	}
	if err := a.groups.UpdateAdminRights(ctx, g.ID, args[1], v); err != nil {
		return err
	}
	a.println("Rights updated.")
	return nil
}

func (a *App) grantView(ctx context.Context, args []string) error {
	g, err := a.memberArgs(ctx, "grant-view", args, 2)
	if err != nil {
		return err
	}
	if err := a.groups.GrantViewRights(ctx, g.ID, args[1]); err != nil {
		return err
	}
	a.println("Rights updated.")
	return nil
}

func (a *App) grantAdmin(ctx context.Context, args []string) error {
	g, err := a.memberArgs(ctx, "grant-admin", args, 2)
	if err != nil {
		return err
	}
	if err := a.groups.GrantAdminRights(ctx, g.ID, args[1]); err != nil {
		return err
	}
	a.println("Rights updated.")
	return nil
}
