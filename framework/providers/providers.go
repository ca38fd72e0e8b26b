package providers

import (
	"errors"

	"go.uber.org/zap"

	"github.com/km-arc/canister/framework/config"
	"github.com/km-arc/canister/framework/container"
	"github.com/km-arc/canister/framework/manifest"
	"github.com/km-arc/canister/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider stores the application configuration.
//
// Keys:
//   - "config"                       → *config.Config
//   - "configuration"                → alias of "config"
//   - KeyOf[config.Config]()         → alias of "config", for autowiring
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config // loaded from EnvFiles when nil
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Canister) error {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load(p.EnvFiles...)
	}
	app.Set("config", cfg)
	return errors.Join(
		app.Alias("configuration", "config"),
		app.Alias(container.KeyOf[config.Config](), "config"),
	)
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider registers the application logger.
//
// Keys:
//   - "logger"                → *zap.Logger, Logger when set, otherwise built
//     once from "config"
//   - KeyOf[zap.Logger]()     → alias of "logger", for autowiring
type LogServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LogServiceProvider) Register(app *container.Canister) error {
	if p.Logger != nil {
		app.Set("logger", p.Logger)
	} else {
		build, err := container.NewCallable(config.NewLogger, "cfg")
		if err != nil {
			return err
		}
		if err := errors.Join(
			app.Share("logger", build),
			app.Define("logger", container.Definitions{"cfg": container.Ref("config")}),
		); err != nil {
			return err
		}
	}
	return app.Alias(container.KeyOf[zap.Logger](), "logger")
}

// ── ManifestServiceProvider ───────────────────────────────────────────────────

// ManifestServiceProvider applies HCL wiring files in order. Register fails
// when a file cannot be read or decoded.
type ManifestServiceProvider struct {
	container.BaseProvider
	Paths []string
}

func (p *ManifestServiceProvider) Register(app *container.Canister) error {
	if len(p.Paths) == 0 {
		return nil
	}
	m, err := manifest.Load(p.Paths...)
	if err != nil {
		return err
	}
	return m.Apply(app)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router on first use.
//
// Keys:
//   - "router"                  → *routing.Router, shared, logging to "logger"
//   - KeyOf[routing.Router]()   → alias of "router"
//
// Boot mounts the diagnostics endpoints at config HTTP.Prefix when
// HTTP.Diagnostics is on.
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) IsDeferred() bool { return true }

func (p *RoutingServiceProvider) Provides() []string {
	return []string{"router", container.KeyOf[routing.Router]()}
}

func (p *RoutingServiceProvider) Register(app *container.Canister) error {
	build, err := container.NewCallable(routing.New, "logger")
	if err != nil {
		return err
	}
	return errors.Join(
		app.Share("router", build),
		app.Define("router", container.Definitions{"logger": container.Ref("logger")}),
		app.Alias(container.KeyOf[routing.Router](), "router"),
	)
}

func (p *RoutingServiceProvider) Boot(app *container.Canister) error {
	cfg, err := container.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	if cfg == nil || !cfg.HTTP.Diagnostics {
		return nil
	}
	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		return err
	}
	router.Diagnostics(cfg.HTTP.Prefix, app)
	app.Logger().Debug("diagnostics mounted", zap.String("prefix", cfg.HTTP.Prefix))
	return nil
}
