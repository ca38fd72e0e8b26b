package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/canister/framework/config"
	"github.com/km-arc/canister/framework/container"
	"github.com/km-arc/canister/framework/providers"
	"github.com/km-arc/canister/framework/routing"
)

// Application is the top-level container. It embeds the Canister and the
// ProviderRegistry so user code can call app.Share(), app.Get() and
// app.Register() directly.
type Application struct {
	*container.Canister
	Providers *container.ProviderRegistry

	cfg *config.Config
}

// New loads and validates configuration, builds the logger and memo cache it
// selects, and registers the framework providers: config, log, manifest
// and (deferred) routing.
//
//	app, err := app.New(".env")
//	if err != nil { ... }
//	app.Share("mailer", NewMailer)
//	err = app.Run(ctx)
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig is New for an already loaded configuration.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	memo, err := config.NewCache(cfg)
	if err != nil {
		return nil, err
	}

	c := container.New(container.WithLogger(logger), container.WithCache(memo))
	app := &Application{
		Canister:  c,
		Providers: container.NewProviderRegistry(c),
		cfg:       cfg,
	}

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LogServiceProvider{Logger: logger},
		&providers.ManifestServiceProvider{Paths: cfg.Manifests},
		&providers.RoutingServiceProvider{},
	} {
		if err := app.Register(p); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config returns the configuration the application was built with.
func (a *Application) Config() *config.Config { return a.cfg }

// Router resolves the shared *routing.Router, loading the routing provider
// on first use.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Canister, "router")
}

// Run boots the application (if needed) and serves HTTP on HTTP.Addr until
// ctx is cancelled, then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	router, err := a.Router()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger().Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", a.cfg.App.Env),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Logger().Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns CANISTER_ENV.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }
