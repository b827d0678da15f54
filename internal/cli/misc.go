package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/helpkeeper/internal/backup"
	"github.com/dmitrijs2005/helpkeeper/internal/buildinfo"
	"github.com/dmitrijs2005/helpkeeper/internal/models"
)

func (a *App) ask(ctx context.Context, args []string) error {
	msg, err := a.text("Your message")
	if err != nil {
		return err
	}
	if len(args) == 0 {
		err = a.help.SendGeneric(ctx, msg)
	} else {
		err = a.help.SendSpecific(ctx, strings.Join(args, " "), msg)
	}
	if err != nil {
		return err
	}
	a.println("Message sent.")
	return nil
}

func (a *App) messages(ctx context.Context, args []string) error {
	var (
		list []models.HelpMessage
		err  error
	)
	if len(args) == 0 {
		list, err = a.help.GenericMessages(ctx)
	} else {
		list, err = a.help.SpecificMessages(ctx, strings.Join(args, " "))
	}
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No messages.")
		return nil
	}
	for _, m := range list {
		a.println("- " + m.Message)
	}
	return nil
}

func (a *App) topics(ctx context.Context, _ []string) error {
	list, err := a.help.Queries(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No topics.")
		return nil
	}
	for _, q := range list {
		a.println("- " + q)
	}
	return nil
}

func (a *App) clearMessages(ctx context.Context, _ []string) error {
	if err := a.help.Clear(ctx); err != nil {
		return err
	}
	a.println("Messages cleared.")
	return nil
}

// backupTarget parses "articles|groups [name]".
func (a *App) backupTarget(name string, args []string) (kind, file string, err error) {
	if len(args) < 1 || len(args) > 2 {
		return "", "", a.usage(name)
	}
	kind = args[0]
	switch kind {
	case "articles":
		file = backup.ArticlesName
	case "groups":
		file = backup.GroupsName
	default:
		return "", "", a.usage(name)
	}
	if len(args) == 2 {
		file = args[1]
	}
	return kind, file, nil
}

func (a *App) backup(ctx context.Context, args []string) error {
	kind, file, err := a.backupTarget("backup", args)
	if err != nil {
		return err
	}
	var n int
	if kind == "articles" {
		n, err = a.backups.BackupArticles(ctx, file)
	} else {
		n, err = a.backups.BackupGroups(ctx, file)
	}
	if err != nil {
		return err
	}
	a.printf("Backed up %d %s to %s.\n", n, kind, file)
	return nil
}

func (a *App) restore(ctx context.Context, args []string) error {
	kind, file, err := a.backupTarget("restore", args)
	if err != nil {
		return err
	}
	var n int
	if kind == "articles" {
		n, err = a.backups.RestoreArticles(ctx, file)
	} else {
		n, err = a.backups.RestoreGroups(ctx, file)
	}
	if err != nil {
		return err
	}
	a.printf("Restored %d %s from %s.\n", n, kind, file)
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	u, err := a.users.FindByUsername(ctx, a.flow.Username)
	if err != nil {
		return err
	}
	a.printf("%s (%s), session role %s, roles %s\n", u.Username, u.FullName(), a.flow.Role, u.Roles)
	return nil
}

func (a *App) version(_ context.Context, _ []string) error {
	buildinfo.PrintBuildData(a.out)
	return nil
}
