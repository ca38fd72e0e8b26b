package container

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/canister/framework/cache"
	"github.com/km-arc/canister/framework/store"
)

// Reserved store keys holding the registration partitions. They show up in
// Keys() and Has() like any other stored value.
const (
	KeyAliases     = "_reflector.alias"
	KeyShared      = "_reflector.shared"
	KeyFactories   = "_reflector.factory"
	KeyDefinitions = "_reflector.definitions"
)

var _ store.Offsets = (*Canister)(nil)

// ── Partitions ────────────────────────────────────────────────────────────────

// partition is a first-write-wins registry map. Entries are never replaced.
type partition[V any] struct {
	name    string
	entries map[string]V
	order   []string
}

func newPartition[V any](name string) *partition[V] {
	return &partition[V]{name: name, entries: make(map[string]V)}
}

// insertIfAbsent stores v under key unless key is taken and reports whether
// it did.
func (p *partition[V]) insertIfAbsent(key string, v V) bool {
	if _, ok := p.entries[key]; ok {
		return false
	}
	p.entries[key] = v
	p.order = append(p.order, key)
	return true
}

func (p *partition[V]) has(key string) bool {
	_, ok := p.entries[key]
	return ok
}

func (p *partition[V]) lookup(key string) (V, error) {
	v, ok := p.entries[key]
	if !ok {
		return v, UnregisteredKeyError{Partition: p.name, Key: key}
	}
	return v, nil
}

// keys returns the registered keys in registration order.
func (p *partition[V]) keys() []string {
	return slices.Clone(p.order)
}

func (p *partition[V]) snapshot() map[string]V {
	return maps.Clone(p.entries)
}

func (p *partition[V]) len() int { return len(p.entries) }

// ── Canister ──────────────────────────────────────────────────────────────────

// Canister is a string-keyed registry that resolves values on demand.
//
// Besides plain values it keeps four first-write-wins partitions: aliases,
// factories, shared callables and per-parameter definitions. Constructible
// types live in a catalog filled by Provide. Get consults all of them; Has
// only looks at stored values.
//
// A Canister is not safe for concurrent use. Serialize access externally when
// it is shared between goroutines.
type Canister struct {
	id     string
	logger *zap.Logger

	values    *store.Store
	reflector *Reflector

	aliases     *partition[string]
	factories   *partition[any]
	shared      *partition[any]
	definitions *partition[Definitions]
	types       *partition[*Callable]

	// key → loader for deferred providers
	deferred map[string]*deferral
}

type deferral struct {
	keys []string
	load func(*Canister) error
}

// Option configures a Canister.
type Option func(*Canister)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Canister) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCache backs the default Reflector with memo instead of an in-memory
// map. It is ignored when WithReflector is also given.
func WithCache(memo cache.Cache) Option {
	return func(c *Canister) {
		if c.reflector == nil {
			c.reflector = NewReflector(memo)
		}
	}
}

// WithReflector sets the resolution engine. A Reflector already bound to
// another Canister is not shared: New logs a warning and uses a fresh one.
func WithReflector(r *Reflector) Option {
	return func(c *Canister) {
		if r != nil {
			c.reflector = r
		}
	}
}

// WithValues seeds the store with raw values.
func WithValues(values map[string]any) Option {
	return func(c *Canister) {
		for _, k := range slices.Sorted(maps.Keys(values)) {
			c.values.Set(k, values[k])
		}
	}
}

// New creates a Canister. The Canister stores itself under its own type key,
// so callables asking for a *Canister receive it.
//
//	c := container.New(container.WithLogger(logger))
//	c.Share("adder", container.Fn(func(a, b int) int { return a + b }, "a", "b"))
//	c.Define("adder", container.Definitions{"a": container.Val(5), "b": container.Val(21)})
//	sum, _ := container.Resolve[int](c, "adder") // 26
func New(opts ...Option) *Canister {
	c := &Canister{
		id:          uuid.NewString(),
		logger:      zap.NewNop(),
		values:      store.New(nil),
		aliases:     newPartition[string]("alias"),
		factories:   newPartition[any]("factory"),
		shared:      newPartition[any]("shared"),
		definitions: newPartition[Definitions]("definition"),
		types:       newPartition[*Callable]("type"),
		deferred:    make(map[string]*deferral),
	}

	c.values.Set(KeyAliases, c.aliases)
	c.values.Set(KeyShared, c.shared)
	c.values.Set(KeyFactories, c.factories)
	c.values.Set(KeyDefinitions, c.definitions)

	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("canister", c.id))

	if c.reflector == nil {
		c.reflector = NewReflector(nil)
	}
	if err := c.reflector.SetContainer(c); err != nil {
		c.logger.Warn("reflector not shared", zap.Error(err))
		c.reflector = NewReflector(nil)
		_ = c.reflector.SetContainer(c)
	}

	_, _ = c.Instance(c)
	return c
}

// ID returns the unique identifier of this Canister.
func (c *Canister) ID() string { return c.id }

// Logger returns the Canister's logger.
func (c *Canister) Logger() *zap.Logger { return c.logger }

// Reflector returns the resolution engine bound to this Canister.
func (c *Canister) Reflector() *Reflector { return c.reflector }

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves key. The first rule that applies wins:
//
//  1. key is not stored and is a factory with an invocable target: build fresh.
//  2. key is not stored and is shared with an invocable target: build once.
//  3. key is swapped for its alias target (one hop). Rules 1 and 2 apply to
//     the target as well.
//  4. the name is not stored and is a provided type: construct it, fresh when
//     the name is a factory, cached otherwise.
//  5. the stored value of key, else of the alias target, else nil.
//
// An unset plain key yields (nil, nil).
func (c *Canister) Get(key string) (any, error) {
	if key == "" {
		return nil, InvalidKeyError{Op: "get", Value: key}
	}
	if err := c.loadDeferred(key); err != nil {
		return nil, err
	}

	if !c.Has(key) {
		if v, ok, err := c.resolveRegistered(key); ok {
			return v, err
		}
	}

	name := key
	if target, err := c.aliases.lookup(key); err == nil {
		name = target
		if err := c.loadDeferred(name); err != nil {
			return nil, err
		}
		if !c.Has(key) && !c.Has(name) {
			if v, ok, err := c.resolveRegistered(name); ok {
				return v, err
			}
		}
	}

	if !c.Has(key) && !c.Has(name) && c.types.has(name) {
		factory := c.IsFactory(name)
		c.logger.Debug("resolving provided type", zap.String("key", key), zap.String("type", name), zap.String("mode", modeName(factory)))
		v, err := c.reflector.ResolveClass(name, factory)
		if err != nil {
			return nil, ResolutionError{Key: key, Cause: err}
		}
		return v, nil
	}

	if c.Has(key) {
		return c.values.Get(key), nil
	}
	return c.values.Get(name), nil
}

// resolveRegistered applies the factory and shared rules to name. ok is false
// when neither applies.
func (c *Canister) resolveRegistered(name string) (v any, ok bool, err error) {
	factory := true
	target, lookupErr := c.factories.lookup(name)
	if lookupErr != nil || !invocable(target) {
		factory = false
		target, lookupErr = c.shared.lookup(name)
		if lookupErr != nil || !invocable(target) {
			return nil, false, nil
		}
	}

	c.logger.Debug("resolving callable", zap.String("key", name), zap.String("mode", modeName(factory)))
	v, err = c.reflector.ResolveCallable(name, target, factory)
	if err != nil {
		return nil, true, ResolutionError{Key: name, Cause: err}
	}
	return v, true, nil
}

func modeName(factory bool) string {
	if factory {
		return "factory"
	}
	return "shared"
}

// Has reports whether key holds a stored non-nil value. It ignores aliases,
// factories, shared callables and provided types.
func (c *Canister) Has(key string) bool {
	return c.values.Exists(key)
}

// Set stores a raw value under key, replacing any previous value.
func (c *Canister) Set(key string, value any) {
	c.values.Set(key, value)
}

// Unset removes a stored value. Registrations are not affected.
func (c *Canister) Unset(key string) {
	c.values.Delete(key)
}

// Append stores value under the next free integer key and returns the key.
func (c *Canister) Append(value any) string {
	return c.values.Append(value)
}

// Keys returns the stored keys in insertion order.
func (c *Canister) Keys() []string {
	return c.values.Keys()
}

// OffsetGet returns the raw stored value for key without resolving anything.
func (c *Canister) OffsetGet(key string) any { return c.values.Get(key) }

// OffsetSet stores value under key. An empty key appends.
func (c *Canister) OffsetSet(key string, value any) {
	if key == "" {
		c.values.Append(value)
		return
	}
	c.values.Set(key, value)
}

func (c *Canister) OffsetExists(key string) bool { return c.Has(key) }
func (c *Canister) OffsetUnset(key string)       { c.Unset(key) }

// Instance stores an already constructed value under its type key, or, given
// a type name, eagerly constructs that type and stores it under the name.
//
//	c.Instance(&Mailer{})                       // stored under KeyOf[Mailer]()
//	c.Alias("mailer", container.KeyOf[Mailer]())
//	ok, err := c.Instance("mailer")             // constructs Mailer, stores it as "mailer"
//
// Instance reports false when the name doesn't lead to a provided type.
func (c *Canister) Instance(classOrInstance any) (bool, error) {
	switch v := classOrInstance.(type) {
	case nil:
		return false, InvalidKeyError{Op: "instance", Value: nil}
	case string:
		if v == "" {
			return false, InvalidKeyError{Op: "instance", Value: v}
		}
		name := v
		if target, err := c.aliases.lookup(v); err == nil {
			name = target
		}
		if !c.types.has(name) {
			return false, nil
		}
		resolved, err := c.reflector.ResolveClass(name, c.IsFactory(name))
		if err != nil {
			return false, ResolutionError{Key: v, Cause: err}
		}
		c.values.Set(v, resolved)
		return true, nil
	default:
		c.values.Set(TypeKey(v), v)
		return true, nil
	}
}

// ── Registration ──────────────────────────────────────────────────────────────
//
// Every registration is first-write-wins: registering a name twice keeps the
// first entry and silently ignores the second.

// Alias makes name resolve as target.
//
//	c.Alias("db", container.KeyOf[*sql.DB]())
func (c *Canister) Alias(name, target string) error {
	if name == "" || target == "" {
		return InvalidKeyError{Op: "alias", Value: name}
	}
	register(c, c.aliases, name, target)
	return nil
}

// Factory registers name so every Get builds a fresh value. target is a
// function or *Callable; without one, name is treated as a provided type
// name that should be built fresh on every Get.
//
//	c.Factory("request.id", func() string { return uuid.NewString() })
//	c.Factory(container.KeyOf[Counter]())
func (c *Canister) Factory(name string, target ...any) error {
	t, err := registrationTarget("factory", name, target)
	if err != nil {
		return err
	}
	register(c, c.factories, name, t)
	return nil
}

// Share registers name so the first Get builds a value and every later Get
// returns that same value.
//
//	c.Share("db", container.Fn(sql.Open, "driver", "dsn"))
func (c *Canister) Share(name string, target ...any) error {
	t, err := registrationTarget("share", name, target)
	if err != nil {
		return err
	}
	register(c, c.shared, name, t)
	return nil
}

// Define registers per-parameter overrides for name. They apply whenever name
// is built, whether it is a factory, a shared callable or a provided type.
//
//	c.Define("mailer", container.Definitions{
//	    "host": container.Val("smtp.example.com"),
//	    "log":  container.Ref("logger"),
//	})
func (c *Canister) Define(name string, defs Definitions) error {
	if name == "" {
		return InvalidKeyError{Op: "define", Value: name}
	}
	if defs == nil {
		defs = Definitions{}
	}
	register(c, c.definitions, name, maps.Clone(defs))
	return nil
}

// Provide adds a constructor to the type catalog. The type key of its first
// return value becomes a constructible type name that Get, Instance and
// autowiring can build. Parameter names enable definitions.
//
//	key, err := c.Provide(NewMailer, "host", "log") // key == KeyOf[Mailer]()
func (c *Canister) Provide(target any, names ...string) (string, error) {
	fn, err := NewCallable(target, names...)
	if err != nil {
		return "", err
	}
	if fn.ResultType() == nil {
		return "", InvalidTargetError{Target: target, Reason: "constructor must return a value"}
	}
	key := typeKeyOf(fn.ResultType())
	register(c, c.types, key, fn)
	return key, nil
}

func register[V any](c *Canister, p *partition[V], key string, v V) {
	if !p.insertIfAbsent(key, v) {
		c.logger.Debug("already registered, ignoring", zap.String("partition", p.name), zap.String("key", key))
	}
}

func registrationTarget(op, name string, target []any) (any, error) {
	if name == "" {
		return nil, InvalidKeyError{Op: op, Value: name}
	}
	switch {
	case len(target) == 0 || target[0] == nil:
		return name, nil
	case len(target) > 1:
		return nil, InvalidTargetError{Name: name, Target: target, Reason: fmt.Sprintf("%s takes at most one target", op)}
	}

	t := target[0]
	if _, ok := t.(string); ok || invocable(t) {
		return t, nil
	}
	return nil, InvalidTargetError{Name: name, Target: t, Reason: "expected a function, *Callable or type name"}
}

// ── Queries ───────────────────────────────────────────────────────────────────

func (c *Canister) IsAlias(key string) bool    { return c.aliases.has(key) }
func (c *Canister) IsFactory(key string) bool  { return c.factories.has(key) }
func (c *Canister) IsShared(key string) bool   { return c.shared.has(key) }
func (c *Canister) IsDefined(key string) bool  { return c.definitions.has(key) }
func (c *Canister) IsProvided(key string) bool { return c.types.has(key) }

// GetAlias returns the alias target of key.
func (c *Canister) GetAlias(key string) (string, error) { return c.aliases.lookup(key) }

// GetFactory returns the factory target of key.
func (c *Canister) GetFactory(key string) (any, error) { return c.factories.lookup(key) }

// GetShared returns the shared target of key.
func (c *Canister) GetShared(key string) (any, error) { return c.shared.lookup(key) }

// GetDefinition returns a copy of the definitions registered for key.
func (c *Canister) GetDefinition(key string) (Definitions, error) {
	defs, err := c.definitions.lookup(key)
	if err != nil {
		return nil, err
	}
	return maps.Clone(defs), nil
}

// GetProvided returns the constructor registered for a type key.
func (c *Canister) GetProvided(key string) (*Callable, error) { return c.types.lookup(key) }

// Aliases returns a snapshot of the alias partition.
func (c *Canister) Aliases() map[string]string { return c.aliases.snapshot() }

// Factories returns a snapshot of the factory partition.
func (c *Canister) Factories() map[string]any { return c.factories.snapshot() }

// Shared returns a snapshot of the shared partition.
func (c *Canister) Shared() map[string]any { return c.shared.snapshot() }

// Definitions returns a snapshot of the definition partition.
func (c *Canister) Definitions() map[string]Definitions {
	out := make(map[string]Definitions, c.definitions.len())
	for k, defs := range c.definitions.entries {
		out[k] = maps.Clone(defs)
	}
	return out
}

// Provided returns the type keys in the catalog in registration order.
func (c *Canister) Provided() []string { return c.types.keys() }

// ── Deferred loading ──────────────────────────────────────────────────────────

// Defer postpones load until the first Get of any of keys. load runs at most
// once; a failing load is reported by that Get and not retried.
func (c *Canister) Defer(keys []string, load func(*Canister) error) {
	d := &deferral{keys: slices.Clone(keys), load: load}
	for _, k := range keys {
		if _, taken := c.deferred[k]; !taken {
			c.deferred[k] = d
		}
	}
}

// IsDeferred reports whether a pending deferred loader announced key.
func (c *Canister) IsDeferred(key string) bool {
	_, ok := c.deferred[key]
	return ok
}

func (c *Canister) loadDeferred(key string) error {
	d, ok := c.deferred[key]
	if !ok {
		return nil
	}
	for _, k := range d.keys {
		if c.deferred[k] == d {
			delete(c.deferred, k)
		}
	}

	c.logger.Debug("loading deferred registrations", zap.String("key", key), zap.Strings("provides", d.keys))
	if err := d.load(c); err != nil {
		return ResolutionError{Key: key, Cause: err}
	}
	return nil
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls Get and type-asserts the result. A nil result yields the zero
// value of T.
//
//	// Instead of: v, _ := c.Get("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Canister, key string) (T, error) {
	var zero T
	v, err := c.Get(key)
	if err != nil || v == nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{
			Target:   key,
			Expected: reflect.TypeFor[T](),
			Actual:   reflect.TypeOf(v),
		}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Canister, key string) T {
	v, err := Resolve[T](c, key)
	if err != nil {
		panic(fmt.Sprintf("container: MustResolve: %v", err))
	}
	return v
}

// ResolveType resolves the value registered under T's type key.
//
//	mailer, err := container.ResolveType[*Mailer](c)
func ResolveType[T any](c *Canister) (T, error) {
	return Resolve[T](c, KeyOf[T]())
}
