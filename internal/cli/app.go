package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/helpkeeper/internal/auth"
	"github.com/dmitrijs2005/helpkeeper/internal/backup"
	"github.com/dmitrijs2005/helpkeeper/internal/common"
	"github.com/dmitrijs2005/helpkeeper/internal/config"
	"github.com/dmitrijs2005/helpkeeper/internal/cryptox"
	"github.com/dmitrijs2005/helpkeeper/internal/dbx"
	"github.com/dmitrijs2005/helpkeeper/internal/logging"
	"github.com/dmitrijs2005/helpkeeper/internal/repositories/repomanager"
	"github.com/dmitrijs2005/helpkeeper/internal/services"
)

type App struct {
	config *config.Config
	db     *dbx.DB
	log    logging.Logger

	users       *services.UserService
	invitations *services.InvitationService
	groups      *services.GroupService
	articles    *services.ArticleService
	help        *services.HelpService
	backups     *services.BackupService

	sessions *auth.Sessions
	workflow *auth.Workflow
	flow     auth.Flow

	reader *bufio.Reader
	out    io.Writer
}

// newSink picks the S3 sink when a bucket is configured, else a directory.
func newSink(ctx context.Context, c *config.Config) (backup.Sink, error) {
	if c.S3Enabled() {
		return backup.NewS3Sink(ctx, backup.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Prefix:       c.S3Prefix,
		})
	}
	return backup.NewFileSink(c.BackupDir)
}

// NewApp opens the store, applies migrations and wires the services.
// Logs go to logOut; the console reads os.Stdin and writes os.Stdout.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	log, err := logging.New(c.LogFormat, c.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	hasher, err := cryptox.NewPasswordHasher(c.PasswordHashing)
	if err != nil {
		return nil, err
	}
	transform, err := cryptox.NewTransform(c.BodyTransform, c.BodyKey)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error opening database", "error", err)
		return nil, err
	}

	rm := repomanager.NewSQLRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	sink, err := newSink(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	secret := []byte(c.SessionSecret)
	if len(secret) == 0 {
		secret = common.GenerateRandByteArray(32)
	}

	a := &App{
		config:      c,
		db:          db,
		log:         log,
		users:       services.NewUserService(db, rm, hasher, log),
		invitations: services.NewInvitationService(db, rm, log),
		groups:      services.NewGroupService(db, rm, log),
		articles:    services.NewArticleService(db, rm, transform, log),
		help:        services.NewHelpService(db, rm, log),
		backups:     services.NewBackupService(db, rm, sink, log),
		sessions:    auth.NewSessions(secret, c.SessionTTL, time.Now),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}
	a.workflow = auth.NewWorkflow(a.users, a.invitations, a.sessions, time.Now, log)
	return a, nil
}

// setIO replaces the console streams.
func (a *App) setIO(r io.Reader, w io.Writer) {
	a.reader = bufio.NewReader(r)
	a.out = w
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) isLoggedIn() bool {
	return a.flow.State == auth.Authenticated
}

func (a *App) status() string {
	if !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s %s)", a.flow.Username, a.flow.Role)
}

// report prints the display text of err. Store failures are logged too.
func (a *App) report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	var e *common.Error
	if !errors.As(err, &e) || errors.Is(err, common.ErrorPersistence) {
		a.log.Error(ctx, "command failed", "error", err)
	}
	a.println(common.Message(err))
}
