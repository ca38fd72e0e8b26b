package container

import (
	"fmt"

	"go.uber.org/zap"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Register is called when the provider is added (or, for deferred providers,
// on the first Get of a key it provides). Boot is called after ALL eager
// providers have been registered, making it safe to resolve other keys inside
// Boot.
//
//	type MailServiceProvider struct{ container.BaseProvider }
//
//	func (p *MailServiceProvider) Register(app *container.Canister) error {
//	    if _, err := app.Provide(NewMailer, "host", "log"); err != nil {
//	        return err
//	    }
//	    return app.Alias("mailer", container.KeyOf[Mailer]())
//	}
//
//	func (p *MailServiceProvider) Boot(app *container.Canister) error {
//	    _, err := app.Instance("mailer")
//	    return err
//	}
type ServiceProvider interface {
	// Register adds aliases, factories, shared callables, definitions and
	// provided types. Do NOT resolve other keys here; use Boot for that.
	Register(app *Canister) error

	// Boot is called after all providers are registered.
	Boot(app *Canister) error

	// Provides returns the keys this provider registers. Only deferred
	// providers need it.
	Provides() []string

	// IsDeferred reports whether Register should wait until one of
	// Provides() is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot, Provides and IsDeferred.
//
//	type MyProvider struct{ container.BaseProvider }
//	func (p *MyProvider) Register(app *container.Canister) error { ... }
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Canister) error { return nil }
func (p *BaseProvider) Provides() []string     { return nil }
func (p *BaseProvider) IsDeferred() bool       { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app        *Canister
	eager      []ServiceProvider
	deferred   []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Canister) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register method, unless the
// provider is deferred. Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.deferred = append(r.deferred, provider)
		r.app.Defer(provider.Provides(), func(c *Canister) error {
			c.logger.Debug("registering deferred provider", zap.String("provider", providerName(provider)))
			if err := provider.Register(c); err != nil {
				return fmt.Errorf("register %s: %w", providerName(provider), err)
			}
			if r.booted {
				return r.boot(provider)
			}
			r.eager = append(r.eager, provider)
			return nil
		})
		return nil
	}

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("register %s: %w", providerName(provider), err)
	}
	r.eager = append(r.eager, provider)

	// If already booted, boot this provider immediately
	if r.booted {
		return r.boot(provider)
	}
	return nil
}

// Boot calls Boot on all eager providers. It stops at the first error.
// Calling Boot again is a no-op.
func (r *ProviderRegistry) Boot() error {
	if r.booted {
		return nil
	}
	r.booted = true
	for _, provider := range r.eager {
		if err := r.boot(provider); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProviderRegistry) boot(provider ServiceProvider) error {
	if err := provider.Boot(r.app); err != nil {
		return fmt.Errorf("boot %s: %w", providerName(provider), err)
	}
	return nil
}

// Booted returns true if Boot has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns the registered eager providers plus deferred ones loaded
// before Boot.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }

// Deferred returns all registered deferred providers, loaded or not.
func (r *ProviderRegistry) Deferred() []ServiceProvider { return r.deferred }

func providerName(p ServiceProvider) string {
	return fmt.Sprintf("%T", p)
}
