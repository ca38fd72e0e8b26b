package container

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

var errType = reflect.TypeFor[error]()

// Param describes one parameter of a Callable. Go functions carry neither
// parameter names nor defaults, so both are supplied at registration.
type Param struct {
	Name       string
	Type       reflect.Type
	Index      int
	Default    any
	HasDefault bool
	Optional   bool
	Variadic   bool
}

// Callable is an invocable target whose parameters can be autowired.
//
//	adder := container.Fn(func(a, b int) int { return a + b }, "a", "b")
//	c.Share("adder", adder)
type Callable struct {
	fn     reflect.Value
	typ    reflect.Type
	params []Param

	// result layout
	hasValue bool
	hasError bool
}

// NewCallable wraps fn, naming its parameters positionally. Fewer names than
// parameters is fine; unnamed parameters can't receive definitions.
func NewCallable(fn any, names ...string) (*Callable, error) {
	if fn == nil {
		return nil, InvalidTargetError{Target: fn, Reason: "nil function"}
	}
	if c, ok := fn.(*Callable); ok {
		return c, nil
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()
	if typ.Kind() != reflect.Func {
		return nil, InvalidTargetError{Target: fn, Reason: fmt.Sprintf("%s is not a function", typ)}
	}
	if val.IsNil() {
		return nil, InvalidTargetError{Target: fn, Reason: "nil function"}
	}
	if len(names) > typ.NumIn() {
		return nil, InvalidTargetError{
			Target: fn,
			Reason: fmt.Sprintf("%d parameter names given for %d parameters", len(names), typ.NumIn()),
		}
	}

	c := &Callable{fn: val, typ: typ}

	switch typ.NumOut() {
	case 0:
	case 1:
		if typ.Out(0) == errType {
			c.hasError = true
		} else {
			c.hasValue = true
		}
	case 2:
		if !typ.Out(1).Implements(errType) {
			return nil, InvalidTargetError{Target: fn, Reason: "second return value must be an error"}
		}
		c.hasValue, c.hasError = true, true
	default:
		return nil, InvalidTargetError{Target: fn, Reason: "functions may return at most (value, error)"}
	}

	c.params = make([]Param, typ.NumIn())
	for i := range c.params {
		c.params[i] = Param{
			Type:     typ.In(i),
			Index:    i,
			Variadic: typ.IsVariadic() && i == typ.NumIn()-1,
		}
		if i < len(names) {
			c.params[i].Name = names[i]
		}
	}

	return c, nil
}

// Fn is like NewCallable but panics on an invalid target. It is meant for
// registration code where a bad target is a programming error.
func Fn(fn any, names ...string) *Callable {
	c, err := NewCallable(fn, names...)
	if err != nil {
		panic(fmt.Sprintf("container: %v", err))
	}
	return c
}

// WithDefault sets the value used for the named parameter when no definition
// applies. It returns c for chaining.
func (c *Callable) WithDefault(name string, value any) *Callable {
	if p := c.param(name); p != nil {
		p.Default = value
		p.HasDefault = true
	}
	return c
}

// WithOptional marks the named parameters as nullable: without a definition
// or default they receive their zero value instead of being autowired.
func (c *Callable) WithOptional(names ...string) *Callable {
	for _, name := range names {
		if p := c.param(name); p != nil {
			p.Optional = true
		}
	}
	return c
}

// Params returns a copy of the parameter metadata.
func (c *Callable) Params() []Param {
	out := make([]Param, len(c.params))
	copy(out, c.params)
	return out
}

// Type returns the wrapped function's type.
func (c *Callable) Type() reflect.Type { return c.typ }

// ResultType returns the type of the produced value, or nil when the function
// returns nothing but (maybe) an error.
func (c *Callable) ResultType() reflect.Type {
	if !c.hasValue {
		return nil
	}
	return c.typ.Out(0)
}

func (c *Callable) String() string { return c.typ.String() }

func (c *Callable) param(name string) *Param {
	if name == "" {
		return nil
	}
	for i := range c.params {
		if c.params[i].Name == name {
			return &c.params[i]
		}
	}
	return nil
}

// call invokes the function, converting a returned error or a panic into err.
func (c *Callable) call(target string, args []reflect.Value) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = ConstructorPanicError{Target: target, Panic: r, Stack: debug.Stack()}
		}
	}()

	out := c.fn.Call(args)

	if c.hasError {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, e.Interface().(error)
		}
	}
	if c.hasValue {
		return out[0].Interface(), nil
	}
	return nil, nil
}

// invocable reports whether target can be called by the Reflector. Strings
// are names, not callables.
func invocable(target any) bool {
	switch t := target.(type) {
	case *Callable:
		return t != nil
	case nil, string:
		return false
	default:
		v := reflect.ValueOf(target)
		return v.Kind() == reflect.Func && !v.IsNil()
	}
}
