package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/rentable/internal/client/assistant"
	"github.com/dmitrijs2005/rentable/internal/client/client"
	"github.com/dmitrijs2005/rentable/internal/client/config"
	"github.com/dmitrijs2005/rentable/internal/client/coordinator"
	"github.com/dmitrijs2005/rentable/internal/client/identity"
	"github.com/dmitrijs2005/rentable/internal/client/models"
	"github.com/dmitrijs2005/rentable/internal/client/profiles"
	"github.com/dmitrijs2005/rentable/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/rentable/internal/client/services"
	"github.com/dmitrijs2005/rentable/internal/client/state"
	"github.com/dmitrijs2005/rentable/internal/client/storage"
	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// linkBackend is the part of the identity backend the REPL calls directly.
type linkBackend interface {
	Ping(ctx context.Context) error
	SessionFromURL(ctx context.Context, rawURL string) (*models.Session, error)
}

type flowCoordinator interface {
	Initialize(ctx context.Context)
	CurrentFlow() coordinator.Flow
	CanHandleURL(rawURL string) bool
	HandleDeepLink(ctx context.Context, rawURL string) bool
	Logout(ctx context.Context)
	Close()
}

type sessionState interface {
	Snapshot() state.Snapshot
	UpdateUser(p models.Profile)
}

type chatClient interface {
	Send(ctx context.Context, message string) (string, error)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService services.AuthService
	backend     linkBackend
	profiles    profiles.Store
	state       sessionState
	coordinator flowCoordinator
	assistant   chatClient
	reader      *bufio.Reader
	now         func() time.Time

	modeMu sync.RWMutex
	mode   Mode

	// signup flow in progress
	draft        *models.SignupDraft
	pendingEmail string
	codeSentAt   time.Time

	closers []func()
}

// NewApp opens the local session database, dials the backend and wires the
// auth service, app state and coordinator on top of one shared connection.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewText(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	backend, conn, err := identity.Dial(c.ServerEndpointAddr, metadata.NewSQLiteRepository(db), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := backend.Load(ctx); err != nil {
		logger.Warn(ctx, "could not load stored session", "error", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	profileStore := profiles.NewGRPCStore(conn)
	objects := storage.NewGRPCStore(conn, httpClient, common.AvatarsBucket, c.StoragePublicURL)

	st := state.New(backend, profileStore, logger)
	st.Start(ctx)
	coord := coordinator.New(st, logger)

	a := &App{
		config:      c,
		logger:      logger,
		authService: services.NewAuthService(backend, profileStore, objects, logger),
		backend:     backend,
		profiles:    profileStore,
		state:       st,
		coordinator: coord,
		assistant: assistant.New(assistant.Config{
			BaseURL: c.AssistantBaseURL,
			Model:   c.AssistantModel,
			APIKey:  c.AssistantAPIKey,
		}, httpClient),
		reader: bufio.NewReader(os.Stdin),
		now:    time.Now,
	}
	a.closers = append(a.closers,
		coord.Close,
		st.Stop,
		func() { _ = backend.Close() },
		func() { _ = db.Close() },
	)
	return a, nil
}

// Close releases everything NewApp opened, in reverse dependency order.
func (a *App) Close() {
	for _, fn := range a.closers {
		fn()
	}
	a.closers = nil
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		printlnFn(fmt.Sprintf("Switched to %s mode", mode))
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.coordinator.CurrentFlow() == coordinator.FlowMain
}

// StartOnlineStatusWatcher pings the backend every interval and flips the
// mode on change. It blocks until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.backend.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
