package container

import (
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/canister/framework/cache"
)

// CacheCallablePrefix namespaces memoized callable results so a shared
// callable named "Foo" never shares a slot with a provided type "Foo".
const CacheCallablePrefix = "_cache.callable."

// Reflector is the resolution engine. It inspects a target's parameters,
// supplies an argument for each one and memoizes shared results.
type Reflector struct {
	cache     cache.Cache
	container *Canister
}

// NewReflector creates a Reflector backed by memo. A nil memo gets a fresh
// in-memory cache.
func NewReflector(memo cache.Cache) *Reflector {
	if memo == nil {
		memo = cache.NewArray()
	}
	return &Reflector{cache: memo}
}

// SetContainer binds the Reflector to the Canister it resolves against.
// New calls it. A Reflector belongs to one Canister: binding it to a second
// one fails with ErrReflectorBound.
func (r *Reflector) SetContainer(c *Canister) error {
	if r.container != nil && r.container != c {
		return ErrReflectorBound
	}
	r.container = c
	return nil
}

// Cache returns the memoization cache.
func (r *Reflector) Cache() cache.Cache { return r.cache }

// Store writes a resolved value into the memoization cache.
func (r *Reflector) Store(key string, value any, ttl time.Duration) error {
	_, err := r.cache.Set(key, value, ttl)
	return err
}

// ResolveCallable invokes target with autowired arguments. In factory mode
// every call re-resolves and re-invokes; otherwise the first result is cached
// under CacheCallablePrefix+name and returned from then on.
func (r *Reflector) ResolveCallable(name string, target any, factory bool) (any, error) {
	if r.container == nil {
		return nil, ErrUnboundReflector
	}
	fn, err := r.callable(name, target)
	if err != nil {
		return nil, err
	}
	if factory {
		return r.invoke(name, fn, name)
	}
	return r.cached(CacheCallablePrefix+name, func() (any, error) {
		return r.invoke(name, fn, name)
	})
}

// ResolveClass constructs the type provided under typeName. The cache key is
// the bare type name.
func (r *Reflector) ResolveClass(typeName string, factory bool) (any, error) {
	if r.container == nil {
		return nil, ErrUnboundReflector
	}
	fn, err := r.container.GetProvided(typeName)
	if err != nil {
		return nil, err
	}
	if factory {
		return r.invoke(typeName, fn, typeName)
	}
	return r.cached(typeName, func() (any, error) {
		return r.invoke(typeName, fn, typeName)
	})
}

func (r *Reflector) cached(key string, build func() (any, error)) (any, error) {
	log := r.logger().With(zap.String("cacheKey", key))

	hit, err := r.cache.Has(key)
	if err != nil {
		return nil, err
	}
	if hit {
		log.Debug("memo cache hit")
		return r.cache.Get(key, nil)
	}

	resolved, err := build()
	if err != nil {
		return nil, err
	}
	if err := r.Store(key, resolved, 0); err != nil {
		return nil, err
	}
	log.Debug("memo cache stored")
	return resolved, nil
}

// invoke resolves fn's parameters using the definitions registered under
// defined and calls it.
func (r *Reflector) invoke(target string, fn *Callable, defined string) (any, error) {
	var defs Definitions
	if r.container.IsDefined(defined) {
		defs, _ = r.container.GetDefinition(defined)
	}

	args, err := r.resolveParameters(target, fn, defs)
	if err != nil {
		return nil, err
	}
	return fn.call(target, args)
}

func (r *Reflector) resolveParameters(target string, fn *Callable, defs Definitions) ([]reflect.Value, error) {
	if len(fn.params) == 0 {
		return []reflect.Value{}, nil
	}

	args := make([]reflect.Value, 0, len(fn.params))
	for _, p := range fn.params {
		if p.Variadic {
			break
		}
		v, err := r.resolveParameter(target, p, defs)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// resolveParameter applies the autowiring rules in order; the first rule
// that matches supplies the argument.
func (r *Reflector) resolveParameter(target string, p Param, defs Definitions) (reflect.Value, error) {
	if def, ok := defs[p.Name]; ok && p.Name != "" {
		value := def.Value()
		if def.IsReference() {
			resolved, err := r.container.Get(def.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			value = resolved
		}
		return r.fit(target, p, value)
	}

	if p.HasDefault {
		return r.fit(target, p, p.Default)
	}

	if p.Optional || isUntyped(p.Type) {
		return reflect.Zero(p.Type), nil
	}

	if isClassLike(p.Type) {
		return r.autowire(target, p), nil
	}

	return fallback(p.Type), nil
}

// autowire resolves a class-typed parameter through the container. Any
// failure degrades to the zero value.
func (r *Reflector) autowire(target string, p Param) reflect.Value {
	key := typeKeyOf(p.Type)
	log := r.logger().With(zap.String("target", target), zap.String("param", p.Name), zap.String("type", key))

	resolved, err := r.tryGet(key)
	if err != nil {
		log.Debug("autowire failed, injecting zero value", zap.Error(err))
		return reflect.Zero(p.Type)
	}

	v, ok := coerce(resolved, p.Type)
	if !ok {
		log.Debug("autowired value has the wrong type, injecting zero value",
			zap.String("actual", fmt.Sprintf("%T", resolved)))
		return reflect.Zero(p.Type)
	}
	return v
}

func (r *Reflector) tryGet(key string) (v any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, ConstructorPanicError{Target: key, Panic: rec}
		}
	}()
	return r.container.Get(key)
}

func (r *Reflector) fit(target string, p Param, value any) (reflect.Value, error) {
	v, ok := coerce(value, p.Type)
	if !ok {
		return reflect.Value{}, TypeMismatchError{
			Target:   target,
			Param:    p.Name,
			Expected: p.Type,
			Actual:   reflect.TypeOf(value),
		}
	}
	return v, nil
}

func (r *Reflector) callable(name string, target any) (*Callable, error) {
	if !invocable(target) {
		return nil, InvalidTargetError{Name: name, Target: target, Reason: "not a function"}
	}
	return NewCallable(target)
}

func (r *Reflector) logger() *zap.Logger {
	if r.container == nil {
		return zap.NewNop()
	}
	return r.container.logger
}
