// Package container provides Canister, an autowiring dependency container,
// and the Service Provider system built on top of it.
//
// # Overview
//
// A Canister is a string-keyed box of values that can also build values on
// demand. Next to plain stored values it keeps four registration partitions:
//
//   - aliases: one name stands for another (single hop)
//   - factories: a fresh value on every Get
//   - shared: built once, then the same value on every Get
//   - definitions: per-parameter overrides used while autowiring
//
// Every registration is first-write-wins. Registering a name a second time
// is a silent no-op.
//
// # Callables and provided types
//
// Go functions carry neither parameter names nor default values, so targets
// are wrapped in a *Callable that records them:
//
//	adder := container.Fn(func(a, b int) int { return a + b }, "a", "b").
//	    WithDefault("b", 1)
//
// Constructible types live in a per-Canister catalog. Provide registers a
// constructor under the type key of its first return value:
//
//	key, _ := c.Provide(NewMailer, "host", "log") // container.KeyOf[Mailer]()
//
// Constructors may return T or (T, error). Panics are recovered into a
// ConstructorPanicError.
//
// # Resolving
//
//	c := container.New()
//	c.Share("adder", adder)
//	c.Define("adder", container.Definitions{"a": container.Val(5), "b": container.Val(21)})
//
//	v, err := c.Get("adder")                  // 26, nil
//	n, err := container.Resolve[int](c, "adder") // typed
//	m, err := container.ResolveType[*Mailer](c)  // by type key
//
// # Autowiring
//
// Each parameter of a target receives, in order of precedence:
//
//  1. its definition: Val(v) verbatim, Ref(key) as c.Get(key)
//  2. its default, set with WithDefault
//  3. the zero value when it is optional (WithOptional) or of type any
//  4. c.Get(TypeKey) for named structs, pointers to named types and named
//     interfaces; any failure degrades to the zero value
//  5. a no-op function for func types
//  6. an empty slice or map
//  7. the zero value
//
// # Contextual definitions
//
//	c.When("mailer").
//	    Needs("host").GiveValue("smtp.example.com").
//	    Needs("log").Give("logger").
//	    Define()
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Canister) error {
//	    return app.Share("clock", func() time.Time { return time.Now() })
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
//	func (p *HeavyProvider) Register(app *container.Canister) error {
//	    return app.Share("heavy", heavySetup) // only called on first app.Get("heavy")
//	}
package container
