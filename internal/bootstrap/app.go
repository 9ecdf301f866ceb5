package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/church-agenda/agenda-client/config"
	"github.com/church-agenda/agenda-client/internal/api"
	domainauth "github.com/church-agenda/agenda-client/internal/domain/auth"
	"github.com/church-agenda/agenda-client/internal/gateway"
	"github.com/church-agenda/agenda-client/internal/observability/statsd"
	"github.com/church-agenda/agenda-client/internal/ports"
	"github.com/church-agenda/agenda-client/internal/service"
	"golang.org/x/oauth2"
)

// AppOptions configures NewApp. Storage, HTTPClient and Metrics override what
// Config would otherwise build.
type AppOptions struct {
	Config     config.AppConfig
	Logger     *slog.Logger
	Storage    ports.KVStore
	HTTPClient *http.Client
	Metrics    statsd.Sink
}

// App is the fully wired client: storage, gateway, typed API and the
// session, tenant and locale state holders.
type App struct {
	Config  config.AppConfig
	Logger  *slog.Logger
	Storage ports.KVStore
	Metrics statsd.Sink

	Gateway  *gateway.Client
	API      *api.Client
	Session  *service.SessionStore
	Tenant   *service.TenantContext
	Locale   *service.LocalePreference
	Accounts *service.AccountService

	closeOnce sync.Once
	closers   []io.Closer
}

// NewApp wires the application. Call Restore to hydrate persisted state and
// Close to release connections.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{Config: cfg, Logger: logger}

	if err := app.buildStorage(ctx, opts.Storage); err != nil {
		return nil, err
	}
	app.buildMetrics(ctx, opts.Metrics)

	// The gateway reads tokens from the session, and the session calls the
	// backend through the gateway. sessionTokens closes that loop.
	tokens := &sessionTokens{}
	gw, err := gateway.New(gateway.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.API.UserAgent,
		Tokens:     tokens,
		HTTPClient: opts.HTTPClient,
		Metrics:    app.Metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("build gateway: %w", err), app.Close())
	}
	app.Gateway = gw

	app.Tenant = service.NewTenantContext(service.TenantContextOptions{Storage: app.Storage, Logger: logger})
	app.API = api.New(gw, app.Tenant)
	app.Session = service.NewSessionStore(service.SessionStoreOptions{
		API:             app.API,
		Storage:         app.Storage,
		PrivilegedRoles: roles(cfg.Session.PrivilegedRoles),
		Logger:          logger,
	})
	tokens.set(app.Session)

	app.Locale = service.NewLocalePreference(app.Storage, logger)
	app.Accounts = service.NewAccountService(service.AccountsOptions{
		API:      app.API,
		Sessions: app.Session,
		Logger:   logger,
	})

	return app, nil
}

func (a *App) buildStorage(ctx context.Context, override ports.KVStore) error {
	if override != nil {
		a.Storage = override
		return nil
	}
	st, err := BuildStorage(ctx, a.Config.Storage, a.Logger)
	if err != nil {
		return fmt.Errorf("build storage: %w", err)
	}
	a.Storage = st.KV
	a.closers = append(a.closers, st)
	a.Logger.Debug("storage ready", "backend", st.Backend, "location", st.Location)
	return nil
}

// buildMetrics never fails the app: a StatsD agent that cannot be reached
// degrades to a no-op sink.
func (a *App) buildMetrics(ctx context.Context, override statsd.Sink) {
	if override != nil {
		a.Metrics = override
		return
	}
	m := a.Config.Observability.Metrics
	sink, err := statsd.New(ctx, statsd.Config{
		Enabled:    m.IsEnabled(),
		Address:    m.StatsdAddress,
		Prefix:     m.Prefix,
		GlobalTags: m.Tags,
		Logger:     a.Logger,
	})
	if err != nil {
		a.Logger.Warn("failed to initialise statsd client", "error", err)
		sink = statsd.Nop{}
	}
	if c, ok := sink.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	a.Metrics = sink
}

// Restore hydrates session, tenant and locale from storage.
func (a *App) Restore(ctx context.Context) {
	a.Session.Restore(ctx)
	a.Tenant.Restore(ctx)
	a.Locale.Restore(ctx)
}

// Teardown drops in-memory state. Persisted state is untouched.
func (a *App) Teardown() {
	a.Session.Teardown()
	a.Tenant.Teardown()
}

// Close releases storage and metrics connections. Safe to call more than once.
func (a *App) Close() error {
	var errs []error
	a.closeOnce.Do(func() {
		for i := len(a.closers) - 1; i >= 0; i-- {
			if err := a.closers[i].Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

func roles(names []string) []domainauth.Role {
	out := make([]domainauth.Role, 0, len(names))
	for _, n := range names {
		out = append(out, domainauth.Role(n))
	}
	return out
}

// sessionTokens forwards to the session once it exists.
type sessionTokens struct {
	mu      sync.RWMutex
	session *service.SessionStore
}

func (t *sessionTokens) set(s *service.SessionStore) {
	t.mu.Lock()
	t.session = s
	t.mu.Unlock()
}

func (t *sessionTokens) Token() (*oauth2.Token, error) {
	t.mu.RLock()
	s := t.session
	t.mu.RUnlock()
	if s == nil {
		return nil, service.ErrNotAuthenticated
	}
	return s.Token()
}
