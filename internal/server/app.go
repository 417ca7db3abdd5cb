// Package server wires the backend together: database and migrations, the
// one-time code store, outgoing mail, object storage, metrics and the gRPC
// and HTTP listeners.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/server/config"
	"github.com/dmitrijs2005/rentable/internal/server/httpapi"
	"github.com/dmitrijs2005/rentable/internal/server/mailer"
	"github.com/dmitrijs2005/rentable/internal/server/metrics"
	"github.com/dmitrijs2005/rentable/internal/server/otp"
	"github.com/dmitrijs2005/rentable/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rentable/internal/server/services"

	gs "github.com/dmitrijs2005/rentable/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	repomanager     *repomanager.PostgresRepositoryManager
	otps            otp.Store
	metrics         *metrics.Metrics
	identityService *services.IdentityService
	profileService  *services.ProfileService
	storageService  *services.StorageService
}

// OpenDB opens the Postgres pool through the pgx stdlib driver and checks
// it is reachable.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	otps, err := newOTPStore(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	m, err := metrics.New()
	if err != nil {
		_ = db.Close()
		_ = otps.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	notifier := &countingNotifier{next: mailer.New(newSender(c, logger), c.PublicURL, c.RedirectURL, c.OTPValidityDuration), metrics: m}

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		repomanager:     rm,
		otps:            otps,
		metrics:         m,
		identityService: services.NewIdentityService(db, rm, otps, notifier, c, logger.With("module", "identity")),
		profileService:  services.NewProfileService(db, rm),
		storageService:  services.NewStorageService(c),
	}, nil
}

// newOTPStore uses Redis when an address is configured, process memory
// otherwise.
func newOTPStore(ctx context.Context, c *config.Config, logger logging.Logger) (otp.Store, error) {
	if c.RedisAddr == "" {
		logger.Info(ctx, "OTP store: memory")
		return otp.NewMemoryStore(c.OTPValidityDuration), nil
	}
	s, err := otp.NewRedisStore(ctx, c.RedisAddr, c.RedisDB)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "OTP store: redis", "address", c.RedisAddr)
	return s, nil
}

// newSender delivers over SMTP when a host is configured and only logs
// messages otherwise.
func newSender(c *config.Config, logger logging.Logger) mailer.Sender {
	if c.SMTPHost == "" {
		return mailer.NewLogSender(logger.With("module", "mailer"))
	}
	return mailer.NewSMTPSender(c.SMTPHost, c.SMTPPort, c.SMTPFrom, c.SMTPUser, c.SMTPPassword)
}

// countingNotifier records delivery results.
type countingNotifier struct {
	next    services.Notifier
	metrics *metrics.Metrics
}

func (n *countingNotifier) SendSignupCode(ctx context.Context, email, code string) error {
	err := n.next.SendSignupCode(ctx, email, code)
	n.metrics.CodeSent(string(otp.PurposeSignup), err)
	return err
}

func (n *countingNotifier) SendMagicLink(ctx context.Context, email, code string) error {
	err := n.next.SendMagicLink(ctx, email, code)
	n.metrics.CodeSent(string(otp.PurposeMagicLink), err)
	return err
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

func (app *App) runHTTPServer(ctx context.Context) error {
	h := httpapi.NewHandler(app.identityService, app.metrics, app.config.RedirectURL, app.logger)
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) runGRPCServer(ctx context.Context) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.identityService, app.profileService,
		app.storageService, app.metrics, app.config.SecretKey)
	return s.Run(ctx)
}

// Run serves gRPC and HTTP until a signal arrives, ctx is done or either
// listener fails, then releases the database and the code store.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.runGRPCServer(ctx) })
	g.Go(func() error { return app.runHTTPServer(ctx) })

	err := g.Wait()

	if cerr := app.otps.Close(); cerr != nil {
		app.logger.Warn(ctx, "OTP store close error", "error", cerr)
	}
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(ctx, "db close error", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}

// Migrate applies pending migrations and prints the resulting status.
func Migrate(ctx context.Context, c *config.Config, statusOnly bool) error {
	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if !statusOnly {
		if err := rm.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("migrations error: %w", err)
		}
	}
	return rm.MigrationStatus(ctx, db)
}

