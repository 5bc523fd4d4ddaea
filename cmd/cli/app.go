package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/reviewdesk/internal/apiclient"
	"github.com/aryan0dhankhar/reviewdesk/internal/domain"
	"github.com/aryan0dhankhar/reviewdesk/internal/featureflags"
	"github.com/aryan0dhankhar/reviewdesk/internal/infrastructure/redis"
	"github.com/aryan0dhankhar/reviewdesk/internal/mockapi"
	"github.com/aryan0dhankhar/reviewdesk/internal/observability/tracing"
	"github.com/aryan0dhankhar/reviewdesk/internal/reliability/retry"
	"github.com/aryan0dhankhar/reviewdesk/internal/repository"
	"github.com/aryan0dhankhar/reviewdesk/internal/router"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/audit"
	"github.com/aryan0dhankhar/reviewdesk/internal/security/auth"
	"github.com/aryan0dhankhar/reviewdesk/internal/service"
	"github.com/aryan0dhankhar/reviewdesk/internal/session"
	"github.com/aryan0dhankhar/reviewdesk/internal/view"
	"github.com/aryan0dhankhar/reviewdesk/pkg/config"
	"github.com/aryan0dhankhar/reviewdesk/pkg/database"
)

// errSignInRequired is returned when the guard sends a command to login
var errSignInRequired = errors.New("sign in required")

// app is the terminal dashboard: one session, one navigator and the
// views built on top of them.
type app struct {
	cfg     *config.Config
	out     io.Writer
	log     *slog.Logger
	session *session.Store
	nav     *router.Navigator
	auth    *service.AuthService
	client  *apiclient.Client
	toasts  *view.Notifier
	closers []func() error
}

type appOptions struct {
	storage   domain.LocalStorage
	transport http.RoundTripper
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer, log *slog.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, out: out, log: log}

	storage := opts.storage
	if storage == nil {
		s, err := a.openStorage(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		storage = s
	}

	transport := opts.transport
	if transport == nil {
		t, err := a.buildTransport()
		if err != nil {
			a.Close()
			return nil, err
		}
		transport = t
	}

	store, err := session.New(ctx, storage, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	a.session = store
	a.toasts = view.NewNotifier(cfg.ToastDuration)
	a.nav = router.NewNavigator(store, log)
	a.client = apiclient.NewClient(cfg.APIBaseURL, transport, cfg.APITimeout).
		WithTokenSource(store).
		WithRetry(retry.DefaultConfig(), log)
	a.auth = service.NewAuthService(a.client, store, a.nav, audit.NewLogger(log), log)
	return a, nil
}

// openStorage opens the configured durable storage backend
func (a *app) openStorage(ctx context.Context) (domain.LocalStorage, error) {
	switch a.cfg.StorageBackend {
	case config.StorageMemory:
		return repository.NewMemoryLocalStorage(), nil

	case config.StorageRedis:
		client, err := redis.NewClient(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return repository.NewRedisLocalStorage(client, "cli", a.log), nil

	case config.StoragePostgres:
		pg := a.cfg.Postgres
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			Host:         pg.Host,
			Port:         pg.Port,
			User:         pg.User,
			Password:     pg.Password,
			Database:     pg.Database,
			SSLMode:      pg.SSLMode,
			MaxOpenConns: 2,
			MaxIdleConns: 1,
		}, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		storage := repository.NewPostgresLocalStorage(pool.GetDB(), a.log)
		if err := storage.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return storage, nil

	default:
		return repository.NewFileLocalStorage(a.cfg.StoragePath, a.log)
	}
}

// buildTransport answers API calls in-process when the mock is enabled
func (a *app) buildTransport() (http.RoundTripper, error) {
	if !a.cfg.MockEnabled {
		return tracing.Transport(nil), nil
	}
	responder, err := mockapi.New(mockapi.Options{
		DelayScale: a.cfg.MockDelayScale,
		Tokens:     auth.NewTokenManager(a.cfg.JWTSecret, "reviewdesk"),
		Directory:  auth.NewDirectory(),
		TokenTTL:   a.cfg.TokenTTL,
		EnableXLSX: featureflags.Enabled(featureflags.XLSXReports),
		Logger:     a.log,
	})
	if err != nil {
		return nil, err
	}
	return tracing.Transport(responder.Transport(nil)), nil
}

// enter navigates to path and fails when the guard redirects elsewhere
func (a *app) enter(path string) error {
	loc := a.nav.Navigate(path)
	if loc.Route.Path != path {
		return fmt.Errorf("%w: run `reviewdesk auth login` to open %s", errSignInRequired, path)
	}
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("failed to close resource", slog.String("error", err.Error()))
		}
	}
}
