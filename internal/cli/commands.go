package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

const (
	msgNoPermission   = "You do not have permission for this action."
	msgSessionExpired = "Session expired. Please log in again."
)

type command struct {
	name  string
	cap   models.Capability
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

// commands is filled in init; handlers look the table up for usage lines.
var commands []command

func init() {
	commands = []command{
		{"add-article", models.CapAddArticle, "add-article", (*App).addArticle},
		{"articles", models.CapListArticles, "articles", (*App).listArticles},
		{"stats", models.CapListArticles, "stats", (*App).levelStats},
		{"view", models.CapViewArticle, "view <n>", (*App).viewArticle},
		{"delete-article", models.CapDeleteArticle, "delete-article <n>", (*App).deleteArticle},
		{"search", models.CapSearchArticles, "search", (*App).search},

		{"backup", models.CapBackupRestore, "backup articles|groups [file]", (*App).backup},
		{"restore", models.CapBackupRestore, "restore articles|groups [file]", (*App).restore},

		{"invite", models.CapInviteUser, "invite", (*App).invite},
		{"invitations", models.CapInviteUser, "invitations", (*App).listInvitations},
		{"reset-account", models.CapResetAccount, "reset-account <username>", (*App).resetAccount},
		{"delete-user", models.CapDeleteUser, "delete-user <username>", (*App).deleteUser},
		{"users", models.CapListUsers, "users", (*App).listUsers},
		{"roles", models.CapManageRoles, "roles <username>", (*App).manageRoles},

		{"groups", models.CapManageGroups, "groups", (*App).listGroups},
		{"create-group", models.CapManageGroups, "create-group", (*App).createGroup},
		{"delete-group", models.CapManageGroups, "delete-group <group>", (*App).deleteGroup},
		{"link", models.CapManageGroups, "link <group> <n>", (*App).linkArticle},
		{"unlink", models.CapManageGroups, "unlink <group> <n>", (*App).unlinkArticle},

		{"members", models.CapGroupMembers, "members <group>", (*App).listMembers},
		{"add-member", models.CapGroupMembers, "add-member <group> <username> <role>", (*App).addMember},
		{"remove-member", models.CapGroupMembers, "remove-member <group> <username>", (*App).removeMember},
		{"set-view", models.CapGroupMembers, "set-view <group> <username> on|off", (*App).setView},
		{"set-admin", models.CapGroupMembers, "set-admin <group> <username> on|off", (*App).setAdmin},
		{"grant-view", models.CapGroupMembers, "grant-view <group> <username>", (*App).grantView},
		{"grant-admin", models.CapGroupMembers, "grant-admin <group> <username>", (*App).grantAdmin},

		{"group-articles", models.CapGroupArticles, "group-articles <group>", (*App).groupArticles},

		{"ask", models.CapHelp, "ask [topic]", (*App).ask},
		{"messages", models.CapHelp, "messages [topic]", (*App).messages},
		{"topics", models.CapHelp, "topics", (*App).topics},
		{"clear-messages", models.CapHelp, "clear-messages", (*App).clearMessages},

		{"whoami", "", "whoami", (*App).whoami},
		{"version", "", "version", (*App).version},
	}
}

func findCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// commandNames lists the commands the session role may run.
func (a *App) commandNames() []string {
	var names []string
	for _, c := range commands {
		if c.cap == "" || a.flow.Role.Can(c.cap) {
			names = append(names, c.name)
		}
	}
	return names
}

// authorize checks the session token for c. An expired session logs the
// user out.
func (a *App) authorize(ctx context.Context, c models.Capability) error {
	if a.flow.Session == nil {
		return common.ErrorUnauthorized
	}
	if c == "" {
		_, err := a.sessions.Parse(a.flow.Session.Token)
		return err
	}
	_, err := a.sessions.Authorize(a.flow.Session.Token, c)
	return err
}

// Exec runs the named command after the capability check.
func (a *App) Exec(ctx context.Context, name string, args []string) error {
	c, ok := findCommand(name)
	if !ok {
		return errUnknownCommand
	}

	if err := a.authorize(ctx, c.cap); err != nil {
		switch {
		case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrInvalidToken):
			a.println(msgSessionExpired)
			a.flow = a.workflow.Logout(ctx, a.flow).Flow
		default:
			a.println(msgNoPermission)
		}
		return err
	}

	if err := c.run(a, ctx, args); err != nil {
		if !errors.Is(err, errUsage) {
			a.report(ctx, err)
		}
		return err
	}
	return nil
}

var errUsage = errors.New("usage")

// usage prints the usage line of the command and returns errUsage.
func (a *App) usage(name string) error {
	if c, ok := findCommand(name); ok {
		a.println("Usage: " + c.usage)
	}
	return errUsage
}

// displayID parses a 1-based article number.
func displayID(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, common.NotFound("invalid id")
	}
	return n, nil
}
