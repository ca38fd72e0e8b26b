package container

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/km-arc/canister/framework/cache"
)

// Sentinel errors. Typed errors below wrap them so callers can use errors.Is.
var (
	// ErrInvalidKey is returned for empty keys and nil instances.
	ErrInvalidKey = errors.New("invalid key")

	// ErrUnregisteredKey is returned by the Get* accessors when the matching
	// Is* predicate is false.
	ErrUnregisteredKey = errors.New("unregistered key")

	// ErrNotInvocable is returned when a target can't be called.
	ErrNotInvocable = errors.New("target is not invocable")

	// ErrUnboundReflector is returned when a Reflector resolves before it is
	// bound to a Canister.
	ErrUnboundReflector = errors.New("reflector is not bound to a canister")

	// ErrReflectorBound is returned when a Reflector already bound to one
	// Canister is bound to another.
	ErrReflectorBound = errors.New("reflector is bound to another canister")

	// ErrInvalidCacheKey is re-exported from the cache package.
	ErrInvalidCacheKey = cache.ErrInvalidCacheKey
)

var (
	_ error = InvalidKeyError{}
	_ error = UnregisteredKeyError{}
	_ error = InvalidTargetError{}
	_ error = ResolutionError{}
	_ error = TypeMismatchError{}
	_ error = ConstructorPanicError{}
)

// InvalidKeyError reports a key or instance that can't be used.
type InvalidKeyError struct {
	Op    string
	Value any
}

func (e InvalidKeyError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: key must be a non-empty string or an object, nil passed", e.Op)
	}
	return fmt.Sprintf("%s: key must be a non-empty string, %T passed", e.Op, e.Value)
}

func (e InvalidKeyError) Unwrap() error { return ErrInvalidKey }

// UnregisteredKeyError reports a lookup in a partition that has no entry.
type UnregisteredKeyError struct {
	Partition string // "alias", "factory", "shared", "definition", "type"
	Key       string
}

func (e UnregisteredKeyError) Error() string {
	return fmt.Sprintf("trying to get a %s offset that doesn't exist: %q", e.Partition, e.Key)
}

func (e UnregisteredKeyError) Unwrap() error { return ErrUnregisteredKey }

// InvalidTargetError reports a registration target that is neither a
// function, a *Callable nor a type name.
type InvalidTargetError struct {
	Name   string
	Target any
	Reason string
}

func (e InvalidTargetError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid target %T for %q: %s", e.Target, e.Name, e.Reason)
	}
	return fmt.Sprintf("invalid target %T: %s", e.Target, e.Reason)
}

func (e InvalidTargetError) Unwrap() error { return ErrNotInvocable }

// ResolutionError wraps a failure while resolving Key.
type ResolutionError struct {
	Key   string
	Cause error
}

func (e ResolutionError) Error() string {
	return fmt.Sprintf("resolving %q: %v", e.Key, e.Cause)
}

func (e ResolutionError) Unwrap() error { return e.Cause }

// TypeMismatchError reports a definition or default that doesn't fit the
// parameter it was meant for.
type TypeMismatchError struct {
	Target   string
	Param    string
	Expected reflect.Type
	Actual   reflect.Type
}

func (e TypeMismatchError) Error() string {
	param := e.Param
	if param == "" {
		param = "<unnamed>"
	}
	return fmt.Sprintf("%s: parameter %s expects %v, got %v", e.Target, param, e.Expected, e.Actual)
}

// ConstructorPanicError captures a panic raised by a factory, shared
// callable or provided constructor.
type ConstructorPanicError struct {
	Target string
	Panic  any
	Stack  []byte
}

func (e ConstructorPanicError) Error() string {
	return fmt.Sprintf("constructor for %q panicked: %v", e.Target, e.Panic)
}
