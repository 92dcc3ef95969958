package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/hrmis/internal/backend/authprovider"
	"github.com/dmitrijs2005/hrmis/internal/backend/mailer"
	"github.com/dmitrijs2005/hrmis/internal/backend/objectstore"
	"github.com/dmitrijs2005/hrmis/internal/backend/recordstore"
	"github.com/dmitrijs2005/hrmis/internal/backend/repositories/repomanager"
	"github.com/dmitrijs2005/hrmis/internal/client/config"
	"github.com/dmitrijs2005/hrmis/internal/client/localdb"
	"github.com/dmitrijs2005/hrmis/internal/client/profile"
	"github.com/dmitrijs2005/hrmis/internal/client/session"
	"github.com/dmitrijs2005/hrmis/internal/logging"
)

// Seams for tests.
var (
	openPostgres   = repomanager.Open
	openLocalDB    = localdb.InitDatabase
	newObjectStore = objectstore.New
)

// Bootstrap wires the production stack described by cfg: Postgres with
// migrations, the local session database, the S3 avatar store, the auth
// provider and the profile synchronizer. Logs go to logOut. The caller
// must Close the returned App.
func Bootstrap(ctx context.Context, cfg *config.Config, in io.Reader, out, logOut io.Writer) (app *App, err error) {
	logger, err := logging.New(cfg.LogFormat, logOut, cfg.Debug)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	db, err := openPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	closers = append(closers, db.Close)

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migrations: %w", err)
	}

	local, err := openLocalDB(ctx, cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("session db init error: %w", err)
	}
	closers = append(closers, local.Close)

	objects, err := newObjectStore(ctx, objectstore.Config{
		Region:        cfg.S3Region,
		RootUser:      cfg.S3RootUser,
		RootPassword:  cfg.S3RootPassword,
		BaseEndpoint:  cfg.S3BaseEndpoint,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.PublicBaseURL,
	}, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	var m mailer.Mailer = mailer.NewLogMailer(logger)
	if cfg.SMTPHost != "" {
		m = mailer.NewSMTPMailer(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort), cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	provider := authprovider.New(db, repos, authprovider.NewMetadataStorage(local.Metadata), m, logger, authprovider.Config{
		JWTSecret:          []byte(cfg.JWTSecret),
		AccessTokenTTL:     cfg.AccessTokenTTL,
		RefreshTokenTTL:    cfg.RefreshTokenTTL,
		ActionTokenTTL:     cfg.ActionTokenTTL,
		SiteURL:            cfg.SiteURL,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})

	state := session.New(provider, logger)
	closers = append(closers, func() error { state.Close(); return nil })

	syncer := profile.NewSynchronizer(recordstore.New(db, repos, logger), objects, logger)

	app = NewApp(cfg, state, provider, syncer, logger, in, out)
	app.autoRefresh = provider.StartAutoRefresh
	if zl, ok := logger.(*logging.ZapLogger); ok {
		closers = append([]func() error{func() error { _ = zl.Sync(); return nil }}, closers...)
	}
	app.closers = closers

	logger.Info(ctx, "client started", "log_format", cfg.LogFormat)
	return app, nil
}
